// Package resolve navigates parsed structured documents (YAML, JSON, TOML)
// with path expressions. A path is parsed once per query predicate and then
// shared, read-only, across every document evaluated against it.
package resolve

import (
	"fmt"
	"strconv"
)

// StepKind is the type of one path segment.
type StepKind int

const (
	StepKey          StepKind = iota // .field
	StepRecursiveKey                 // ..field, matches the key at any depth
	StepIndex                        // [n]
	StepWildcard                     // [*], expands to every array element
)

// Step is a single segment of a structured path.
type Step struct {
	Kind  StepKind
	Key   string // StepKey, StepRecursiveKey
	Index int    // StepIndex
}

func (s Step) String() string {
	switch s.Kind {
	case StepKey:
		return "." + s.Key
	case StepRecursiveKey:
		return ".." + s.Key
	case StepIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case StepWildcard:
		return "[*]"
	default:
		return "?"
	}
}

// ParsePath parses a path expression like ".spec.containers[0].image" or
// "..database.host" into its segments. Field names are alphanumeric plus
// underscore; everything else must be reached through an index segment.
func ParsePath(input string) ([]Step, error) {
	if input == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	var steps []Step
	i := 0
	for i < len(input) {
		switch input[i] {
		case '.':
			i++
			kind := StepKey
			if i < len(input) && input[i] == '.' {
				kind = StepRecursiveKey
				i++
			}
			if i < len(input) && input[i] == '.' {
				return nil, fmt.Errorf("unexpected '.' at offset %d in path %q", i, input)
			}
			start := i
			for i < len(input) && isIdentByte(input[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("expected field name at offset %d in path %q", i, input)
			}
			steps = append(steps, Step{Kind: kind, Key: input[start:i]})

		case '[':
			i++
			if i < len(input) && input[i] == '*' {
				i++
				if i >= len(input) || input[i] != ']' {
					return nil, fmt.Errorf("expected ']' at offset %d in path %q", i, input)
				}
				i++
				steps = append(steps, Step{Kind: StepWildcard})
				continue
			}
			start := i
			for i < len(input) && input[i] >= '0' && input[i] <= '9' {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("expected array index or '*' at offset %d in path %q", i, input)
			}
			if i >= len(input) || input[i] != ']' {
				return nil, fmt.Errorf("expected ']' at offset %d in path %q", i, input)
			}
			index, err := strconv.Atoi(input[start:i])
			if err != nil {
				return nil, fmt.Errorf("invalid array index %q in path %q", input[start:i], input)
			}
			i++
			steps = append(steps, Step{Kind: StepIndex, Index: index})

		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d in path %q", input[i], i, input)
		}
	}

	return steps, nil
}

func isIdentByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
