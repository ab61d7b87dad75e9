package predicate

import (
	"reflect"
	"strconv"
	"time"

	"github.com/roach88/sift/internal/resolve"
)

// StructuredPredicate matches a navigated document value. Exactly one of
// Exists, Compare, or Match is set: bare selectors test existence, the
// equality/ordering family compares against a literal parsed by the format's
// own parser, and the string family matches candidate renditions.
//
// The parsed path and literal are immutable and shared across every document
// evaluated against the predicate.
type StructuredPredicate struct {
	Format   resolve.Format
	Path     []resolve.Step
	PathText string // path as written, for display

	Exists  bool
	Compare *StructuredCompare
	Match   *StringMatcher
}

// StructuredCompare is one comparison against a native literal. Raw keeps
// the spelling as written: when native comparison fails on mismatched types,
// equality falls back to comparing the candidate's rendition against Raw, so
// "1_000" still equals a node that renders as "1_000".
type StructuredCompare struct {
	Op    CompareOp
	Value any
	Raw   string
}

func (p *StructuredPredicate) Phase() Phase    { return PhaseStructured }
func (p *StructuredPredicate) predicateNode() {}

func (p *StructuredPredicate) String() string {
	selector := p.Format.String() + ":" + p.PathText
	switch {
	case p.Compare != nil:
		return selector + " " + p.Compare.Op.String() + " " + p.Compare.Raw
	case p.Match != nil:
		return selector + " " + p.Match.Describe()
	default:
		return selector
	}
}

// Eval reports whether any candidate in any document satisfies the
// predicate. Wildcards, recursive descent, and multi-document streams all
// share this any-match shape.
func (p *StructuredPredicate) Eval(docs []any) bool {
	for _, doc := range docs {
		for _, candidate := range resolve.Navigate(doc, p.Path) {
			if p.matches(candidate) {
				return true
			}
		}
	}
	return false
}

func (p *StructuredPredicate) matches(candidate any) bool {
	switch {
	case p.Compare != nil:
		return p.Compare.matches(candidate)
	case p.Match != nil:
		s, ok := stringify(candidate)
		return ok && p.Match.Match(s)
	default:
		return p.Exists
	}
}

func (c *StructuredCompare) matches(candidate any) bool {
	switch c.Op {
	case CompareEq:
		return c.equals(candidate)
	case CompareNe:
		return !c.equals(candidate)
	default:
		return c.ordered(candidate)
	}
}

func (c *StructuredCompare) equals(candidate any) bool {
	if a, ok := toFloat(candidate); ok {
		if b, ok := toFloat(c.Value); ok {
			return a == b
		}
	}
	if a, ok := candidate.(time.Time); ok {
		if b, ok := c.Value.(time.Time); ok {
			return a.Equal(b)
		}
	}

	switch v := c.Value.(type) {
	case string:
		s, ok := candidate.(string)
		if ok && s == v {
			return true
		}
	case bool:
		if b, ok := candidate.(bool); ok {
			return b == v
		}
	case nil:
		return candidate == nil
	default:
		if reflect.DeepEqual(candidate, c.Value) {
			return true
		}
	}

	// String coercion fallback: a candidate whose rendition equals the
	// literal as written still matches.
	s, ok := stringify(candidate)
	return ok && s == c.Raw
}

// ordered applies an ordering comparison. The literal is numeric or a
// datetime, enforced at compile time; candidates compare numerically, with a
// parse retry for numeric strings, or chronologically for datetimes.
func (c *StructuredCompare) ordered(candidate any) bool {
	if want, ok := toFloat(c.Value); ok {
		got, ok := toFloat(candidate)
		if !ok {
			s, isStr := candidate.(string)
			if !isStr {
				return false
			}
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return false
			}
			got = parsed
		}
		return compareFloats(c.Op, got, want)
	}

	if want, ok := c.Value.(time.Time); ok {
		got, ok := candidate.(time.Time)
		if !ok {
			return false
		}
		return compareTimes(c.Op, got, want)
	}

	return false
}

func compareFloats(op CompareOp, got, want float64) bool {
	switch op {
	case CompareGt:
		return got > want
	case CompareGe:
		return got >= want
	case CompareLt:
		return got < want
	case CompareLe:
		return got <= want
	default:
		return false
	}
}

func compareTimes(op CompareOp, got, want time.Time) bool {
	switch op {
	case CompareGt:
		return got.After(want)
	case CompareGe:
		return !got.Before(want)
	case CompareLt:
		return got.Before(want)
	case CompareLe:
		return !got.After(want)
	default:
		return false
	}
}

// Orderable reports whether a literal can anchor an ordering comparison.
func Orderable(v any) bool {
	if _, ok := toFloat(v); ok {
		return true
	}
	_, ok := v.(time.Time)
	return ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// stringify renders a scalar candidate for string-family matching. Composite
// values have no string form.
func stringify(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case uint64:
		return strconv.FormatUint(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), true
	case time.Time:
		return s.Format(time.RFC3339), true
	default:
		return "", false
	}
}
