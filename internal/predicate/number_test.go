package predicate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNumberMatcher(t *testing.T) {
	tests := []struct {
		op      CompareOp
		value   uint64
		x       uint64
		matches bool
	}{
		{CompareEq, 100, 100, true},
		{CompareEq, 100, 99, false},
		{CompareNe, 100, 99, true},
		{CompareNe, 100, 100, false},
		{CompareGt, 100, 101, true},
		{CompareGt, 100, 100, false},
		{CompareGe, 100, 100, true},
		{CompareGe, 100, 99, false},
		{CompareLt, 100, 99, true},
		{CompareLt, 100, 100, false},
		{CompareLe, 100, 100, true},
		{CompareLe, 100, 101, false},
	}

	for _, tt := range tests {
		m := &NumberMatcher{Op: tt.op, Value: tt.value}
		assert.Equal(t, tt.matches, m.Match(tt.x), "%d %s %d", tt.x, tt.op, tt.value)
	}
}

func TestTimeMatcher_OrderingComparesInstants(t *testing.T) {
	ref := time.Date(2024, 1, 15, 12, 0, 0, 0, time.Local)

	after := &TimeMatcher{Op: CompareGt, When: ref}
	assert.True(t, after.Match(ref.Add(time.Second)))
	assert.False(t, after.Match(ref))
	assert.False(t, after.Match(ref.Add(-time.Second)))

	atLeast := &TimeMatcher{Op: CompareGe, When: ref}
	assert.True(t, atLeast.Match(ref))
	assert.False(t, atLeast.Match(ref.Add(-time.Second)))

	before := &TimeMatcher{Op: CompareLt, When: ref}
	assert.True(t, before.Match(ref.Add(-time.Second)))
	assert.False(t, before.Match(ref))

	atMost := &TimeMatcher{Op: CompareLe, When: ref}
	assert.True(t, atMost.Match(ref))
	assert.False(t, atMost.Match(ref.Add(time.Second)))
}

func TestTimeMatcher_EqualityComparesCalendarDates(t *testing.T) {
	noon := time.Date(2024, 1, 15, 12, 0, 0, 0, time.Local)

	eq := &TimeMatcher{Op: CompareEq, When: noon}
	assert.True(t, eq.Match(time.Date(2024, 1, 15, 0, 0, 1, 0, time.Local)),
		"any instant on the same day should match ==")
	assert.True(t, eq.Match(time.Date(2024, 1, 15, 23, 59, 59, 0, time.Local)))
	assert.False(t, eq.Match(time.Date(2024, 1, 16, 0, 0, 0, 0, time.Local)))

	ne := &TimeMatcher{Op: CompareNe, When: noon}
	assert.False(t, ne.Match(time.Date(2024, 1, 15, 8, 0, 0, 0, time.Local)))
	assert.True(t, ne.Match(time.Date(2024, 1, 14, 8, 0, 0, 0, time.Local)))
}

func TestMetadataPredicate(t *testing.T) {
	now := time.Now()
	md := Metadata{
		Size:    2048,
		Mode:    0,
		ModTime: now,
	}

	size := &MetadataPredicate{
		Field: FieldSize,
		Size:  &NumberMatcher{Op: CompareGt, Value: 1024},
	}
	assert.True(t, size.Eval(md))

	typ := &MetadataPredicate{Field: FieldType, Type: TypeEquals(TypeFile)}
	assert.True(t, typ.Eval(md))

	modified := &MetadataPredicate{
		Field: FieldModified,
		Time:  &TimeMatcher{Op: CompareGt, When: now.Add(-time.Hour)},
	}
	assert.True(t, modified.Eval(md))
	assert.Equal(t, PhaseMetadata, modified.Phase())
}
