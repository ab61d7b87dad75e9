// Package testutil provides deterministic in-memory entities for evaluator
// and traversal tests. An Entity satisfies the engine's accessor contract
// without touching a filesystem, and counts every accessor invocation so
// tests can prove which phases ran.
package testutil

import (
	"bytes"
	"io"
	"sync"

	"github.com/roach88/sift/internal/predicate"
	"github.com/roach88/sift/internal/resolve"
)

// Entity is a canned entity. Construct with NewEntity and options; the zero
// metadata describes an empty regular file.
//
// Thread-safety: counters are mutex-guarded, so a single Entity may be
// evaluated from any goroutine (though evaluations themselves are
// per-entity).
type Entity struct {
	path  string
	depth int

	meta    predicate.Metadata
	metaErr error

	content    []byte
	contentErr error

	docs    map[resolve.Format][]any
	docsErr error

	mu       sync.Mutex
	counters Counters
}

// Counters records how often each lazy accessor was invoked.
type Counters struct {
	Metadata  int
	Content   int
	Documents int
}

// EntityOption configures a test entity.
type EntityOption func(*Entity)

// WithDepth sets the walk depth. Default: 0.
func WithDepth(depth int) EntityOption {
	return func(e *Entity) { e.depth = depth }
}

// WithMetadata sets the stat-derived view returned by Metadata.
func WithMetadata(meta predicate.Metadata) EntityOption {
	return func(e *Entity) { e.meta = meta }
}

// WithMetadataError makes Metadata fail, standing in for a stat failure.
func WithMetadataError(err error) EntityOption {
	return func(e *Entity) { e.metaErr = err }
}

// WithContent sets the entity's bytes. Size metadata is set to match unless
// WithMetadata overrides it afterwards.
func WithContent(content string) EntityOption {
	return func(e *Entity) {
		e.content = []byte(content)
		e.meta.Size = uint64(len(content))
	}
}

// WithContentError makes Content fail, standing in for an open failure.
func WithContentError(err error) EntityOption {
	return func(e *Entity) { e.contentErr = err }
}

// WithDocuments cans decoded document roots for a format, bypassing the
// decoder entirely.
func WithDocuments(format resolve.Format, docs ...any) EntityOption {
	return func(e *Entity) {
		if e.docs == nil {
			e.docs = make(map[resolve.Format][]any)
		}
		e.docs[format] = docs
	}
}

// WithDocumentsError makes Documents fail, standing in for an oversized or
// undecodable document.
func WithDocumentsError(err error) EntityOption {
	return func(e *Entity) { e.docsErr = err }
}

// NewEntity creates an entity at path. Without options it is an empty
// regular file at depth 0.
func NewEntity(path string, opts ...EntityOption) *Entity {
	e := &Entity{path: path}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Entity) Path() string { return e.path }

func (e *Entity) Depth() int { return e.depth }

func (e *Entity) Metadata() (predicate.Metadata, error) {
	e.count(func(c *Counters) { c.Metadata++ })
	if e.metaErr != nil {
		return predicate.Metadata{}, e.metaErr
	}
	return e.meta, nil
}

func (e *Entity) Content() (io.ReadCloser, error) {
	e.count(func(c *Counters) { c.Content++ })
	if e.contentErr != nil {
		return nil, e.contentErr
	}
	return io.NopCloser(bytes.NewReader(e.content)), nil
}

// Documents returns canned roots when WithDocuments provided them, and
// otherwise decodes the entity's content the way the filesystem backend
// would, ceiling included.
func (e *Entity) Documents(format resolve.Format, limit int64) ([]any, error) {
	e.count(func(c *Counters) { c.Documents++ })
	if e.docsErr != nil {
		return nil, e.docsErr
	}
	if docs, ok := e.docs[format]; ok {
		return docs, nil
	}
	return resolve.Decode(bytes.NewReader(e.content), format, limit)
}

// Counters returns a snapshot of the accessor invocation counts.
func (e *Entity) Counters() Counters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters
}

func (e *Entity) count(bump func(*Counters)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	bump(&e.counters)
}
