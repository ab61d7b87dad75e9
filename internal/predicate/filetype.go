package predicate

import (
	"io/fs"
	"sort"
	"strings"
)

// FileType classifies an entity by its mode bits.
type FileType int

const (
	TypeFile FileType = iota
	TypeDir
	TypeSymlink
	TypeSocket
	TypeFifo
	TypeBlockDevice
	TypeCharDevice
)

func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "dir"
	case TypeSymlink:
		return "symlink"
	case TypeSocket:
		return "socket"
	case TypeFifo:
		return "fifo"
	case TypeBlockDevice:
		return "block"
	case TypeCharDevice:
		return "char"
	default:
		return "unknown"
	}
}

var fileTypeAliases = map[string]FileType{
	"file":      TypeFile,
	"dir":       TypeDir,
	"directory": TypeDir,
	"symlink":   TypeSymlink,
	"link":      TypeSymlink,
	"socket":    TypeSocket,
	"sock":      TypeSocket,
	"fifo":      TypeFifo,
	"pipe":      TypeFifo,
	"block":     TypeBlockDevice,
	"blockdev":  TypeBlockDevice,
	"char":      TypeCharDevice,
	"chardev":   TypeCharDevice,
}

// ParseFileType resolves a type name or alias, case-insensitively.
func ParseFileType(s string) (FileType, bool) {
	t, ok := fileTypeAliases[strings.ToLower(s)]
	return t, ok
}

// FileTypeNames returns every accepted spelling, for error messages.
func FileTypeNames() []string {
	names := make([]string, 0, len(fileTypeAliases))
	for name := range fileTypeAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileTypeFromMode classifies mode. Anything that is not a special file is a
// regular file.
func FileTypeFromMode(mode fs.FileMode) FileType {
	switch {
	case mode.IsDir():
		return TypeDir
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink
	case mode&fs.ModeSocket != 0:
		return TypeSocket
	case mode&fs.ModeNamedPipe != 0:
		return TypeFifo
	case mode&fs.ModeDevice != 0 && mode&fs.ModeCharDevice != 0:
		return TypeCharDevice
	case mode&fs.ModeDevice != 0:
		return TypeBlockDevice
	default:
		return TypeFile
	}
}

// TypeMatcher tests an entity's file type against a set. Negate inverts the
// test, covering `type != dir`.
type TypeMatcher struct {
	Types  map[FileType]struct{}
	Negate bool
}

// TypeEquals matches exactly one file type.
func TypeEquals(t FileType) *TypeMatcher {
	return &TypeMatcher{Types: map[FileType]struct{}{t: {}}}
}

// TypeNotEquals matches every file type except t.
func TypeNotEquals(t FileType) *TypeMatcher {
	return &TypeMatcher{Types: map[FileType]struct{}{t: {}}, Negate: true}
}

// TypeIn matches any of the given file types.
func TypeIn(types []FileType) *TypeMatcher {
	set := make(map[FileType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return &TypeMatcher{Types: set}
}

func (m *TypeMatcher) Match(t FileType) bool {
	_, ok := m.Types[t]
	return ok != m.Negate
}

func (m *TypeMatcher) Describe() string {
	names := make([]string, 0, len(m.Types))
	for t := range m.Types {
		names = append(names, t.String())
	}
	sort.Strings(names)

	if len(names) == 1 {
		if m.Negate {
			return "!= " + names[0]
		}
		return "== " + names[0]
	}
	return "in [" + strings.Join(names, ", ") + "]"
}
