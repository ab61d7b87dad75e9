package predicate

import (
	"io/fs"
	"time"
)

// Metadata is the stat-derived view of an entity. ChangeTime is the inode
// change time where the platform reports one; backends may leave AccessTime
// and ChangeTime zero, in which case temporal predicates on them match
// against the zero instant.
type Metadata struct {
	Size       uint64
	Mode       fs.FileMode
	ModTime    time.Time
	AccessTime time.Time
	ChangeTime time.Time
}

// MetadataField selects which metadata attribute a predicate reads.
type MetadataField int

const (
	FieldSize MetadataField = iota
	FieldType
	FieldModified
	FieldCreated
	FieldAccessed
)

func (f MetadataField) String() string {
	switch f {
	case FieldSize:
		return "size"
	case FieldType:
		return "type"
	case FieldModified:
		return "modified"
	case FieldCreated:
		return "created"
	case FieldAccessed:
		return "accessed"
	default:
		return "unknown"
	}
}

// MetadataPredicate matches one stat-derived attribute.
type MetadataPredicate struct {
	Field MetadataField
	Size  *NumberMatcher // FieldSize
	Type  *TypeMatcher   // FieldType
	Time  *TimeMatcher   // temporal fields
}

func (p *MetadataPredicate) Phase() Phase    { return PhaseMetadata }
func (p *MetadataPredicate) predicateNode() {}

func (p *MetadataPredicate) Eval(md Metadata) bool {
	switch p.Field {
	case FieldSize:
		return p.Size.Match(md.Size)
	case FieldType:
		return p.Type.Match(FileTypeFromMode(md.Mode))
	case FieldModified:
		return p.Time.Match(md.ModTime)
	case FieldCreated:
		return p.Time.Match(md.ChangeTime)
	case FieldAccessed:
		return p.Time.Match(md.AccessTime)
	default:
		return false
	}
}

func (p *MetadataPredicate) String() string {
	switch p.Field {
	case FieldSize:
		return "size " + p.Size.Describe()
	case FieldType:
		return "type " + p.Type.Describe()
	default:
		return p.Field.String() + " " + p.Time.Describe()
	}
}
