package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/predicate"
)

func evalAll(result bool) EvalFunc {
	return func(predicate.Predicate) bool { return result }
}

func TestReducePhase_EvaluatesOnlyCurrentPhase(t *testing.T) {
	tree := And{Exprs: []Expr{nameLeaf("a"), sizeLeaf(100), contentLeaf("x")}}

	var evaluated []predicate.Phase
	reduced := ReducePhase(tree, predicate.PhaseName, func(p predicate.Predicate) bool {
		evaluated = append(evaluated, p.Phase())
		return true
	})

	assert.Equal(t, []predicate.Phase{predicate.PhaseName}, evaluated,
		"metadata and content leaves must not be touched in the name phase")

	// The satisfied name leaf is pruned; the rest of the conjunction remains.
	and, ok := reduced.(And)
	require.True(t, ok)
	require.Len(t, and.Exprs, 2)
	assert.Equal(t, "size > 100", and.Exprs[0].String())
}

func TestReducePhase_AndShortCircuitsOnKnownFalse(t *testing.T) {
	tree := And{Exprs: []Expr{nameLeaf("a"), contentLeaf("x")}}

	reduced := ReducePhase(tree, predicate.PhaseName, evalAll(false))

	v, known := Verdict(reduced)
	require.True(t, known, "one known-false operand decides the conjunction")
	assert.False(t, v)
}

func TestReducePhase_OrShortCircuitsOnKnownTrue(t *testing.T) {
	tree := Or{Exprs: []Expr{nameLeaf("a"), contentLeaf("x")}}

	reduced := ReducePhase(tree, predicate.PhaseName, evalAll(true))

	v, known := Verdict(reduced)
	require.True(t, known, "one known-true operand decides the disjunction")
	assert.True(t, v)
}

func TestReducePhase_NeutralOperandsPrune(t *testing.T) {
	// true && x reduces to x, false || x reduces to x.
	and := And{Exprs: []Expr{nameLeaf("a"), sizeLeaf(1)}}
	reduced := ReducePhase(and, predicate.PhaseName, evalAll(true))
	assert.IsType(t, Leaf{}, reduced, "a single surviving operand replaces the And")
	assert.Equal(t, "size > 1", reduced.String())

	or := Or{Exprs: []Expr{nameLeaf("a"), sizeLeaf(1)}}
	reduced = ReducePhase(or, predicate.PhaseName, evalAll(false))
	assert.IsType(t, Leaf{}, reduced)
	assert.Equal(t, "size > 1", reduced.String())
}

func TestReducePhase_NotFolds(t *testing.T) {
	reduced := ReducePhase(Not{Inner: nameLeaf("a")}, predicate.PhaseName, evalAll(true))
	v, known := Verdict(reduced)
	require.True(t, known)
	assert.False(t, v)

	// A Not over an unevaluated leaf survives intact.
	reduced = ReducePhase(Not{Inner: sizeLeaf(1)}, predicate.PhaseName, evalAll(true))
	not, ok := reduced.(Not)
	require.True(t, ok)
	assert.Equal(t, "size > 1", not.Inner.String())
}

func TestReducePhase_NestedFolding(t *testing.T) {
	// (a && size) || !b: after the name phase with a=true, b=false the
	// disjunction is decided by !b alone.
	tree := Or{Exprs: []Expr{
		And{Exprs: []Expr{nameLeaf("a"), sizeLeaf(1)}},
		Not{Inner: nameLeaf("b")},
	}}

	reduced := ReducePhase(tree, predicate.PhaseName, func(p predicate.Predicate) bool {
		return p.String() == `name == "a"`
	})

	v, known := Verdict(reduced)
	require.True(t, known)
	assert.True(t, v)
}

func TestReducePhase_PhaseSequenceReachesVerdict(t *testing.T) {
	tree := And{Exprs: []Expr{nameLeaf("a"), sizeLeaf(1), contentLeaf("x")}}

	e := Expr(tree)
	for _, phase := range []predicate.Phase{
		predicate.PhaseName,
		predicate.PhaseMetadata,
		predicate.PhaseStructured,
		predicate.PhaseContent,
	} {
		e = ReducePhase(e, phase, evalAll(true))
	}

	v, known := Verdict(e)
	require.True(t, known, "after all four phases every leaf is resolved")
	assert.True(t, v)
}

// TestReducePhase_MatchesNaiveEvaluation folds a mixed-phase tree two ways
// over every leaf valuation: phase by phase, and naively all at once. The
// verdicts must agree.
func TestReducePhase_MatchesNaiveEvaluation(t *testing.T) {
	leaves := []Leaf{nameLeaf("a"), sizeLeaf(1), contentLeaf("x"), nameLeaf("b")}
	trees := []Expr{
		And{Exprs: []Expr{leaves[0], leaves[1], leaves[2]}},
		Or{Exprs: []Expr{leaves[0], And{Exprs: []Expr{leaves[1], leaves[2]}}}},
		Not{Inner: Or{Exprs: []Expr{leaves[0], leaves[3]}}},
		And{Exprs: []Expr{
			Or{Exprs: []Expr{leaves[0], Not{Inner: leaves[1]}}},
			Or{Exprs: []Expr{leaves[2], leaves[3]}},
		}},
		Not{Inner: Not{Inner: And{Exprs: []Expr{leaves[0], leaves[2]}}}},
	}

	phases := []predicate.Phase{
		predicate.PhaseName,
		predicate.PhaseMetadata,
		predicate.PhaseStructured,
		predicate.PhaseContent,
	}

	for ti, tree := range trees {
		for mask := 0; mask < 1<<len(leaves); mask++ {
			truth := make(map[predicate.Predicate]bool, len(leaves))
			for i, l := range leaves {
				truth[l.Pred] = mask&(1<<i) != 0
			}
			lookup := func(p predicate.Predicate) bool { return truth[p] }

			phased := tree
			for _, phase := range phases {
				phased = ReducePhase(phased, phase, lookup)
			}
			got, known := Verdict(phased)
			require.True(t, known, "tree %d mask %b did not resolve", ti, mask)

			want := naiveEval(tree, lookup)
			assert.Equal(t, want, got, "tree %d mask %b", ti, mask)
		}
	}
}

// naiveEval evaluates every leaf and folds with plain boolean logic, no
// phases and no short circuiting.
func naiveEval(e Expr, lookup func(predicate.Predicate) bool) bool {
	switch n := e.(type) {
	case Known:
		return bool(n)
	case Leaf:
		return lookup(n.Pred)
	case Not:
		return !naiveEval(n.Inner, lookup)
	case And:
		result := true
		for _, op := range n.Exprs {
			result = naiveEval(op, lookup) && result
		}
		return result
	case Or:
		result := false
		for _, op := range n.Exprs {
			result = naiveEval(op, lookup) || result
		}
		return result
	default:
		return false
	}
}

func TestReducePhase_DeeplyNestedInput(t *testing.T) {
	const depth = 500_000

	e := Expr(nameLeaf("a"))
	for i := 0; i < depth; i++ {
		e = Not{Inner: e}
	}

	reduced := ReducePhase(e, predicate.PhaseName, evalAll(true))
	v, known := Verdict(reduced)
	require.True(t, known)
	assert.True(t, v, "an even number of negations preserves the leaf result")
}

func TestReducePhase_DeeplyNestedConjunctions(t *testing.T) {
	const depth = 200_000

	e := Expr(nameLeaf("a"))
	for i := 0; i < depth; i++ {
		e = And{Exprs: []Expr{e, Known(true)}}
	}

	reduced := ReducePhase(e, predicate.PhaseName, evalAll(true))
	v, known := Verdict(reduced)
	require.True(t, known)
	assert.True(t, v)
}

func TestReducePhase_KnownOperandsPassThrough(t *testing.T) {
	// A tree carrying Knowns from an earlier phase keeps folding correctly.
	tree := And{Exprs: []Expr{Known(true), sizeLeaf(1)}}
	reduced := ReducePhase(tree, predicate.PhaseMetadata, evalAll(true))
	v, known := Verdict(reduced)
	require.True(t, known)
	assert.True(t, v)
}
