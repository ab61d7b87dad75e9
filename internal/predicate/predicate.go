// Package predicate holds the compiled leaf conditions a query evaluates
// against one entity: name and path matchers, metadata matchers, structured
// document matchers, and streaming content matchers. Everything here is
// immutable after construction and safe for concurrent use across entities.
package predicate

// Phase orders predicate evaluation by cost: name needs no I/O, metadata
// needs one stat, structured needs a bounded document parse, content streams
// the full bytes.
type Phase int

const (
	PhaseName Phase = iota
	PhaseMetadata
	PhaseStructured
	PhaseContent
)

func (p Phase) String() string {
	switch p {
	case PhaseName:
		return "name"
	case PhaseMetadata:
		return "metadata"
	case PhaseStructured:
		return "structured"
	case PhaseContent:
		return "content"
	default:
		return "unknown"
	}
}

// Predicate is one leaf condition of a compiled query.
//
// The interface is sealed: NamePredicate, MetadataPredicate,
// StructuredPredicate, and ContentPredicate are the only implementations.
// The evaluation engine dispatches on Phase and type-switches to reach the
// phase-specific Eval method.
type Predicate interface {
	Phase() Phase

	// String renders the predicate in query syntax for diagnostics and
	// explain output.
	String() string

	predicateNode()
}

// CompareOp is an ordering or equality comparison.
type CompareOp int

const (
	CompareEq CompareOp = iota
	CompareNe
	CompareGt
	CompareGe
	CompareLt
	CompareLe
)

func (op CompareOp) String() string {
	switch op {
	case CompareEq:
		return "=="
	case CompareNe:
		return "!="
	case CompareGt:
		return ">"
	case CompareGe:
		return ">="
	case CompareLt:
		return "<"
	case CompareLe:
		return "<="
	default:
		return "?"
	}
}
