package query

import "strings"

// Expr is a node in the raw (pre-compilation) expression tree. The raw tree
// records exactly what was written: selector, operator, and value spellings
// are kept verbatim, with byte offsets, so the compiler can report precise
// diagnostics and so String() round-trips through Parse.
//
// The interface is sealed: And, Or, Not, and Pred are the only
// implementations.
type Expr interface {
	exprNode()

	// String renders the node as query text. Parsing the result yields a
	// structurally identical tree.
	String() string
}

// And is the conjunction of two or more operands, collected left to right at
// one precedence level ("a && b && c" is a single And with three operands).
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

// Pred is a selector/operator/value leaf. Operator and Value are zero for
// the bare single-word form ("dir", "yaml:.server.port"), which the compiler
// resolves to a file-type shorthand or an existence predicate.
type Pred struct {
	Selector  string
	SelOffset int

	Operator string
	OpOffset int

	Value     Value
	ValOffset int
}

func (And) exprNode()  {}
func (Or) exprNode()   {}
func (Not) exprNode()  {}
func (Pred) exprNode() {}

// ValueKind distinguishes how a value was written, which the compiler needs:
// quoted values never re-enter alias resolution, and sets parse differently.
type ValueKind int

const (
	ValueNone ValueKind = iota // bare predicate, no operator/value
	ValueWord
	ValueString
	ValueSet // Text holds the raw interior of the brackets
)

// Value is a raw predicate value.
type Value struct {
	Kind ValueKind
	Text string
}

func (a And) String() string { return joinOperands(a.Exprs, " && ") }
func (o Or) String() string  { return joinOperands(o.Exprs, " || ") }

func (n Not) String() string {
	if needsParens(n.Inner) {
		return "!(" + n.Inner.String() + ")"
	}
	return "!" + n.Inner.String()
}

func (p Pred) String() string {
	if p.Operator == "" {
		return p.Selector
	}
	return p.Selector + " " + p.Operator + " " + p.Value.String()
}

func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return quote(v.Text)
	case ValueSet:
		return "[" + v.Text + "]"
	default:
		return v.Text
	}
}

// joinOperands parenthesizes compound operands so that reparsing preserves
// the tree shape: And{And{a,b}, c} prints as "(a && b) && c", not
// "a && b && c" (which would flatten on reparse).
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

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
