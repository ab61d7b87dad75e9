package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sift/internal/predicate"
)

func nameLeaf(literal string) Leaf {
	return Leaf{Pred: &predicate.NamePredicate{
		Field: predicate.FieldName,
		Match: predicate.Equals(literal),
	}}
}

func sizeLeaf(limit uint64) Leaf {
	return Leaf{Pred: &predicate.MetadataPredicate{
		Field: predicate.FieldSize,
		Size:  &predicate.NumberMatcher{Op: predicate.CompareGt, Value: limit},
	}}
}

func contentLeaf(literal string) Leaf {
	return Leaf{Pred: predicate.NewContentContains(literal)}
}

func TestExprString(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{
			"leaf",
			nameLeaf("main.go"),
			`name == "main.go"`,
		},
		{
			"and",
			And{Exprs: []Expr{nameLeaf("a"), sizeLeaf(100)}},
			`name == "a" && size > 100`,
		},
		{
			"or of and keeps parens",
			Or{Exprs: []Expr{
				And{Exprs: []Expr{nameLeaf("a"), nameLeaf("b")}},
				contentLeaf("x"),
			}},
			`(name == "a" && name == "b") || content contains "x"`,
		},
		{
			"not leaf",
			Not{Inner: nameLeaf("a")},
			`!name == "a"`,
		},
		{
			"not compound",
			Not{Inner: Or{Exprs: []Expr{nameLeaf("a"), nameLeaf("b")}}},
			`!(name == "a" || name == "b")`,
		},
		{
			"known values",
			And{Exprs: []Expr{Known(true), Known(false)}},
			`true && false`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestVerdict(t *testing.T) {
	v, known := Verdict(Known(true))
	assert.True(t, known)
	assert.True(t, v)

	v, known = Verdict(Known(false))
	assert.True(t, known)
	assert.False(t, v)

	_, known = Verdict(nameLeaf("a"))
	assert.False(t, known, "an unevaluated leaf has no verdict")

	_, known = Verdict(And{Exprs: []Expr{Known(true), nameLeaf("a")}})
	assert.False(t, known)
}

func TestLeaves(t *testing.T) {
	tree := Or{Exprs: []Expr{
		And{Exprs: []Expr{nameLeaf("a"), sizeLeaf(1)}},
		Not{Inner: contentLeaf("x")},
		Known(true),
	}}

	var seen []string
	Leaves(tree, func(p predicate.Predicate) {
		seen = append(seen, p.String())
	})

	assert.Equal(t, []string{
		`name == "a"`,
		"size > 1",
		`content contains "x"`,
	}, seen, "leaves visit left to right, Known nodes are skipped")
}
