package compiler

import (
	"sort"
	"strings"

	"github.com/roach88/sift/internal/predicate"
)

// Selector and operator spellings resolve through static tables built once
// at package init. Spellings are case-insensitive; comparison values are not.

type selectorID int

const (
	selName selectorID = iota
	selStem
	selExt
	selPath
	selDir
	selDepth
	selSize
	selType
	selModified
	selCreated
	selAccessed
	selContent
)

func (id selectorID) String() string {
	switch id {
	case selName:
		return "name"
	case selStem:
		return "stem"
	case selExt:
		return "ext"
	case selPath:
		return "path"
	case selDir:
		return "dir"
	case selDepth:
		return "depth"
	case selSize:
		return "size"
	case selType:
		return "type"
	case selModified:
		return "modified"
	case selCreated:
		return "created"
	case selAccessed:
		return "accessed"
	case selContent:
		return "content"
	default:
		return "unknown"
	}
}

// family is a selector's value-type family, which bounds the operators and
// literal forms it accepts.
type family int

const (
	famString family = iota
	famNumeric
	famTemporal
	famEnum
	famContent
)

func (id selectorID) family() family {
	switch id {
	case selSize, selDepth:
		return famNumeric
	case selModified, selCreated, selAccessed:
		return famTemporal
	case selType:
		return famEnum
	case selContent:
		return famContent
	default:
		return famString
	}
}

var selectorTable = map[string]selectorID{
	"name": selName, "filename": selName,
	"basename": selStem, "stem": selStem,
	"ext": selExt, "extension": selExt,
	"path": selPath,
	"dir": selDir, "parent": selDir, "directory": selDir,
	"size": selSize, "filesize": selSize, "bytes": selSize,
	"depth": selDepth,
	"type": selType, "filetype": selType,
	"modified": selModified, "mtime": selModified,
	"created": selCreated, "ctime": selCreated,
	"accessed": selAccessed, "atime": selAccessed,
	"content": selContent, "contents": selContent, "text": selContent,
}

// selectorSpellings is every accepted spelling, for typo suggestions.
// canonicalSelectors is the shorter list used in unknown-selector help.
var (
	selectorSpellings  []string
	canonicalSelectors = []string{
		"name", "stem", "ext", "path", "dir", "depth", "size", "type",
		"modified", "created", "accessed", "content",
	}
)

func init() {
	selectorSpellings = make([]string, 0, len(selectorTable))
	for spelling := range selectorTable {
		selectorSpellings = append(selectorSpellings, spelling)
	}
	sort.Strings(selectorSpellings)

	fileTypeVocabulary = predicate.FileTypeNames()
}

// fileTypeVocabulary is the closed enum vocabulary, for error messages and
// bare-word suggestions.
var fileTypeVocabulary []string

func lookupSelector(s string) (selectorID, bool) {
	id, ok := selectorTable[strings.ToLower(s)]
	return id, ok
}

// stringOp is an operator of the string family.
type stringOp int

const (
	opEquals stringOp = iota
	opNotEquals
	opMatches
	opContains
	opIn
	opGlob
)

func parseStringOperator(s string) (stringOp, bool) {
	switch strings.ToLower(s) {
	case "==", "=", "eq":
		return opEquals, true
	case "!=", "<>", "ne", "neq":
		return opNotEquals, true
	case "~=", "=~", "~", "matches", "regex":
		return opMatches, true
	case "contains", "has", "includes":
		return opContains, true
	case "in":
		return opIn, true
	case "glob":
		return opGlob, true
	}
	return 0, false
}

func parseCompareOperator(s string) (predicate.CompareOp, bool) {
	switch strings.ToLower(s) {
	case "==", "=", "eq":
		return predicate.CompareEq, true
	case "!=", "<>", "ne", "neq":
		return predicate.CompareNe, true
	case ">", "gt":
		return predicate.CompareGt, true
	case ">=", "=>", "gte", "ge":
		return predicate.CompareGe, true
	case "<", "lt":
		return predicate.CompareLt, true
	case "<=", "=<", "lte", "le":
		return predicate.CompareLe, true
	}
	return 0, false
}

// parseTemporalOperator accepts the numeric set plus the word forms: before
// and after order instants, on compares calendar dates (as == does for
// temporal selectors).
func parseTemporalOperator(s string) (predicate.CompareOp, bool) {
	if op, ok := parseCompareOperator(s); ok {
		return op, true
	}
	switch strings.ToLower(s) {
	case "before":
		return predicate.CompareLt, true
	case "after":
		return predicate.CompareGt, true
	case "on":
		return predicate.CompareEq, true
	}
	return 0, false
}

type enumOp int

const (
	enumEquals enumOp = iota
	enumNotEquals
	enumIn
)

func parseEnumOperator(s string) (enumOp, bool) {
	switch strings.ToLower(s) {
	case "==", "=", "eq":
		return enumEquals, true
	case "!=", "<>", "ne", "neq":
		return enumNotEquals, true
	case "in":
		return enumIn, true
	}
	return 0, false
}

// knownOperator reports whether any type family recognizes the spelling,
// which decides unknown-operator versus incompatible-operator errors.
func knownOperator(s string) bool {
	if _, ok := parseStringOperator(s); ok {
		return true
	}
	if _, ok := parseTemporalOperator(s); ok {
		return true
	}
	return false
}

// suggest returns vocabulary entries within Levenshtein distance 2 of word,
// nearest first.
func suggest(word string, vocabulary []string) []string {
	word = strings.ToLower(word)

	type candidate struct {
		spelling string
		distance int
	}
	var near []candidate
	for _, spelling := range vocabulary {
		if d := levenshtein(word, spelling); d <= 2 {
			near = append(near, candidate{spelling, d})
		}
	}
	sort.Slice(near, func(i, j int) bool {
		if near[i].distance != near[j].distance {
			return near[i].distance < near[j].distance
		}
		return near[i].spelling < near[j].spelling
	})

	suggestions := make([]string, 0, len(near))
	for _, c := range near {
		suggestions = append(suggestions, c.spelling)
	}
	return suggestions
}

func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i, ac := range ar {
		curr[0] = i + 1
		for j, bc := range br {
			cost := 1
			if ac == bc {
				cost = 0
			}
			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}
