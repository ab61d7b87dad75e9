package expr

import "github.com/roach88/sift/internal/predicate"

// EvalFunc evaluates one predicate of the current phase against an entity.
type EvalFunc func(predicate.Predicate) bool

// ReducePhase runs one evaluation phase: every leaf whose predicate belongs
// to phase is replaced by the Known result of eval, and operators fold with
// three-valued logic. And is false as soon as any operand is known-false and
// Or is true as soon as any operand is known-true, whatever the rest still
// holds; known-neutral operands are dropped. Leaves of other phases pass
// through untouched.
//
// The fold is a post-order walk over an explicit frame stack, so deeply
// parenthesized queries cannot exhaust the call stack.
func ReducePhase(root Expr, phase predicate.Phase, eval EvalFunc) Expr {
	type frame struct {
		node    Expr
		entered bool
	}

	work := make([]frame, 1, 16)
	work[0] = frame{node: root}
	var results []Expr

	for len(work) > 0 {
		i := len(work) - 1

		if !work[i].entered {
			work[i].entered = true
			switch n := work[i].node.(type) {
			case Not:
				work = append(work, frame{node: n.Inner})
			case And:
				for j := len(n.Exprs) - 1; j >= 0; j-- {
					work = append(work, frame{node: n.Exprs[j]})
				}
			case Or:
				for j := len(n.Exprs) - 1; j >= 0; j-- {
					work = append(work, frame{node: n.Exprs[j]})
				}
			}
			continue
		}

		node := work[i].node
		work = work[:i]

		switch n := node.(type) {
		case Known:
			results = append(results, n)

		case Leaf:
			if n.Pred.Phase() == phase {
				results = append(results, Known(eval(n.Pred)))
			} else {
				results = append(results, n)
			}

		case Not:
			results[len(results)-1] = reduceNot(results[len(results)-1])

		case And:
			k := len(n.Exprs)
			reduced := reduceAnd(results[len(results)-k:])
			results = append(results[:len(results)-k], reduced)

		case Or:
			k := len(n.Exprs)
			reduced := reduceOr(results[len(results)-k:])
			results = append(results[:len(results)-k], reduced)
		}
	}

	return results[0]
}

func reduceNot(inner Expr) Expr {
	if k, ok := inner.(Known); ok {
		return Known(!k)
	}
	return Not{Inner: inner}
}

func reduceAnd(operands []Expr) Expr {
	remaining := make([]Expr, 0, len(operands))
	for _, op := range operands {
		if k, ok := op.(Known); ok {
			if !bool(k) {
				return Known(false)
			}
			continue
		}
		remaining = append(remaining, op)
	}

	switch len(remaining) {
	case 0:
		return Known(true)
	case 1:
		return remaining[0]
	default:
		return And{Exprs: remaining}
	}
}

func reduceOr(operands []Expr) Expr {
	remaining := make([]Expr, 0, len(operands))
	for _, op := range operands {
		if k, ok := op.(Known); ok {
			if bool(k) {
				return Known(true)
			}
			continue
		}
		remaining = append(remaining, op)
	}

	switch len(remaining) {
	case 0:
		return Known(false)
	case 1:
		return remaining[0]
	default:
		return Or{Exprs: remaining}
	}
}
