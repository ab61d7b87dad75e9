package predicate

import (
	"path/filepath"
	"strings"
)

// NameField selects which part of the walked path a name predicate reads.
type NameField int

const (
	FieldName  NameField = iota // full filename
	FieldStem                   // filename without extension
	FieldExt                    // extension without the dot
	FieldPath                   // the path as walked
	FieldDir                    // parent directory of the path
	FieldDepth                  // components below the walk root
)

func (f NameField) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldStem:
		return "stem"
	case FieldExt:
		return "ext"
	case FieldPath:
		return "path"
	case FieldDir:
		return "dir"
	case FieldDepth:
		return "depth"
	default:
		return "unknown"
	}
}

// NamePredicate matches on the walked path alone, with no I/O. Depth is part
// of this phase because the traversal backend derives it from the path.
type NamePredicate struct {
	Field NameField
	Match *StringMatcher // string fields
	Depth *NumberMatcher // FieldDepth only
}

func (p *NamePredicate) Phase() Phase    { return PhaseName }
func (p *NamePredicate) predicateNode() {}

// Eval matches path (and its walk depth) against the predicate.
func (p *NamePredicate) Eval(path string, depth int) bool {
	if p.Field == FieldDepth {
		if depth < 0 {
			depth = 0
		}
		return p.Depth.Match(uint64(depth))
	}
	return p.Match.Match(nameField(p.Field, path))
}

func (p *NamePredicate) String() string {
	if p.Field == FieldDepth {
		return "depth " + p.Depth.Describe()
	}
	return p.Field.String() + " " + p.Match.Describe()
}

func nameField(field NameField, path string) string {
	switch field {
	case FieldName:
		return filepath.Base(path)
	case FieldStem:
		stem, _ := splitExt(filepath.Base(path))
		return stem
	case FieldExt:
		_, ext := splitExt(filepath.Base(path))
		return ext
	case FieldPath:
		return path
	case FieldDir:
		return filepath.Dir(path)
	default:
		return ""
	}
}

// splitExt splits a filename at its final dot. A leading dot is part of the
// name, not an extension marker, so ".gitignore" has no extension.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
