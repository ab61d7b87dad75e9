package engine

import (
	"io"

	"github.com/roach88/sift/internal/predicate"
	"github.com/roach88/sift/internal/resolve"
)

// Entity is one candidate under evaluation. The evaluator is backend
// agnostic: the same compiled tree runs against filesystem entities,
// in-memory test entities, or anything else that implements this contract.
//
// Path and Depth must not perform I/O; they feed the free name phase. The
// remaining accessors are invoked only when their phase actually runs, so an
// implementation can defer the stat, the open, and the decode until asked.
type Entity interface {
	// Path is the path as walked.
	Path() string

	// Depth is the number of components below the walk root.
	Depth() int

	// Metadata returns the stat-derived view of the entity.
	Metadata() (predicate.Metadata, error)

	// Content opens the entity's byte stream. The caller closes it.
	Content() (io.ReadCloser, error)

	// Documents decodes the entity as format, reading at most limit bytes.
	// Oversized or undecodable entities return an error.
	Documents(format resolve.Format, limit int64) ([]any, error)
}
