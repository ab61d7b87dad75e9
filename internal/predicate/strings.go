package predicate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"
)

// StringMatchKind selects the comparison a StringMatcher performs.
type StringMatchKind int

const (
	MatchEquals StringMatchKind = iota
	MatchNotEquals
	MatchContains
	MatchIn
	MatchRegex
	MatchGlob
)

// StringMatcher is a compiled string comparison. Literal comparisons
// (equality, sets, substring) normalize both sides to NFC so composed and
// decomposed spellings of the same name compare equal; regex and glob
// patterns match the text as given.
type StringMatcher struct {
	Kind    StringMatchKind
	Literal string              // MatchEquals, MatchNotEquals, MatchContains
	Set     map[string]struct{} // MatchIn
	Regex   *regexp.Regexp      // MatchRegex
	Pattern string              // MatchRegex, MatchGlob source text
}

// Equals matches strings exactly equal to s.
func Equals(s string) *StringMatcher {
	return &StringMatcher{Kind: MatchEquals, Literal: norm.NFC.String(s)}
}

// NotEquals matches strings different from s.
func NotEquals(s string) *StringMatcher {
	return &StringMatcher{Kind: MatchNotEquals, Literal: norm.NFC.String(s)}
}

// Contains matches strings with s as a substring.
func Contains(s string) *StringMatcher {
	return &StringMatcher{Kind: MatchContains, Literal: norm.NFC.String(s)}
}

// In matches strings equal to any item.
func In(items []string) *StringMatcher {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[norm.NFC.String(item)] = struct{}{}
	}
	return &StringMatcher{Kind: MatchIn, Set: set}
}

// Regex matches strings against pattern, unanchored. "*" is accepted as a
// match-all convenience.
func Regex(pattern string) (*StringMatcher, error) {
	source := pattern
	if pattern == "*" {
		pattern = ".*"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", source, err)
	}
	return &StringMatcher{Kind: MatchRegex, Regex: re, Pattern: source}, nil
}

// Glob matches whole strings against a doublestar pattern, so "src/**/*.go"
// crosses directory separators.
func Glob(pattern string) (*StringMatcher, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return &StringMatcher{Kind: MatchGlob, Pattern: pattern}, nil
}

// Match reports whether s satisfies the matcher.
func (m *StringMatcher) Match(s string) bool {
	switch m.Kind {
	case MatchEquals:
		return norm.NFC.String(s) == m.Literal
	case MatchNotEquals:
		return norm.NFC.String(s) != m.Literal
	case MatchContains:
		return strings.Contains(norm.NFC.String(s), m.Literal)
	case MatchIn:
		_, ok := m.Set[norm.NFC.String(s)]
		return ok
	case MatchRegex:
		return m.Regex.MatchString(s)
	case MatchGlob:
		ok, err := doublestar.Match(m.Pattern, s)
		return err == nil && ok
	default:
		return false
	}
}

// Describe renders the matcher as "operator value" query text.
func (m *StringMatcher) Describe() string {
	switch m.Kind {
	case MatchEquals:
		return fmt.Sprintf("== %q", m.Literal)
	case MatchNotEquals:
		return fmt.Sprintf("!= %q", m.Literal)
	case MatchContains:
		return fmt.Sprintf("contains %q", m.Literal)
	case MatchIn:
		items := make([]string, 0, len(m.Set))
		for item := range m.Set {
			items = append(items, item)
		}
		sort.Strings(items)
		return "in [" + strings.Join(items, ", ") + "]"
	case MatchRegex:
		return fmt.Sprintf("~= %q", m.Pattern)
	case MatchGlob:
		return fmt.Sprintf("glob %q", m.Pattern)
	default:
		return "?"
	}
}
