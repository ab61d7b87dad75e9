package predicate

import (
	"fmt"
	"time"
)

// NumberMatcher compares an unsigned quantity (byte count, depth) against a
// fixed bound.
type NumberMatcher struct {
	Op    CompareOp
	Value uint64
}

func (m *NumberMatcher) Match(x uint64) bool {
	switch m.Op {
	case CompareEq:
		return x == m.Value
	case CompareNe:
		return x != m.Value
	case CompareGt:
		return x > m.Value
	case CompareGe:
		return x >= m.Value
	case CompareLt:
		return x < m.Value
	case CompareLe:
		return x <= m.Value
	default:
		return false
	}
}

func (m *NumberMatcher) Describe() string {
	return fmt.Sprintf("%s %d", m.Op, m.Value)
}

// TimeMatcher compares a timestamp against a fixed reference. Equality is
// calendar-date equality in local time, so `modified == 2024-01-15` covers
// the whole day; ordering compares full instants.
type TimeMatcher struct {
	Op   CompareOp
	When time.Time
}

func (m *TimeMatcher) Match(t time.Time) bool {
	switch m.Op {
	case CompareEq:
		return sameDate(t, m.When)
	case CompareNe:
		return !sameDate(t, m.When)
	case CompareGt:
		return t.After(m.When)
	case CompareGe:
		return !t.Before(m.When)
	case CompareLt:
		return t.Before(m.When)
	case CompareLe:
		return !t.After(m.When)
	default:
		return false
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func (m *TimeMatcher) Describe() string {
	return fmt.Sprintf("%s %s", m.Op, m.When.Format(time.RFC3339))
}
