// Package expr holds the compiled matcher expression: boolean structure over
// typed predicates, plus the phase-by-phase reduction the evaluation engine
// drives. Compilation produces one immutable tree per query; reduction
// produces progressively smaller per-entity trees until a verdict is known.
package expr

import (
	"strings"

	"github.com/roach88/sift/internal/predicate"
)

// Expr is a node in the compiled expression tree.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern keeps the reduction's type switches exhaustive.
type Expr interface {
	exprNode() // Marker method - seals interface to this package

	// String renders the node in query syntax, with parentheses wherever
	// reparsing would otherwise change the shape.
	String() string
}

// Known is a fully resolved subtree. Reduction replaces evaluated leaves
// with Known values and folds them upward; a Known at the root is the
// entity's verdict.
type Known bool

// Leaf wraps one typed predicate.
type Leaf struct {
	Pred predicate.Predicate
}

// And is the conjunction of two or more operands.
type And struct {
	Exprs []Expr
}

// Or is the disjunction of two or more operands.
type Or struct {
	Exprs []Expr
}

// Not negates its operand.
type Not struct {
	Inner Expr
}

func (Known) exprNode() {}
func (Leaf) exprNode()  {}
func (And) exprNode()   {}
func (Or) exprNode()    {}
func (Not) exprNode()   {}

func (k Known) String() string {
	if k {
		return "true"
	}
	return "false"
}

func (l Leaf) String() string { return l.Pred.String() }
func (a And) String() string  { return joinOperands(a.Exprs, " && ") }
func (o Or) String() string   { return joinOperands(o.Exprs, " || ") }

func (n Not) String() string {
	if needsParens(n.Inner) {
		return "!(" + n.Inner.String() + ")"
	}
	return "!" + n.Inner.String()
}

func joinOperands(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		if needsParens(e) {
			parts[i] = "(" + e.String() + ")"
		} else {
			parts[i] = e.String()
		}
	}
	return strings.Join(parts, sep)
}

func needsParens(e Expr) bool {
	switch e.(type) {
	case And, Or:
		return true
	}
	return false
}

// Verdict unwraps the root when reduction has resolved the whole tree.
func Verdict(e Expr) (value, known bool) {
	k, ok := e.(Known)
	return bool(k), ok
}

// Leaves calls fn for every predicate in the tree, left to right. The walk
// uses an explicit stack, so arbitrarily nested input is fine.
func Leaves(e Expr, fn func(predicate.Predicate)) {
	stack := []Expr{e}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := node.(type) {
		case Leaf:
			fn(n.Pred)
		case Not:
			stack = append(stack, n.Inner)
		case And:
			for i := len(n.Exprs) - 1; i >= 0; i-- {
				stack = append(stack, n.Exprs[i])
			}
		case Or:
			for i := len(n.Exprs) - 1; i >= 0; i-- {
				stack = append(stack, n.Exprs[i])
			}
		}
	}
}
