// Package engine evaluates compiled expression trees against entities in
// ascending cost order: name (no I/O), metadata (one stat), structured
// (bounded document decode), content (streamed bytes). Each phase folds its
// leaves into the tree with three-valued reduction; once the root is known
// the remaining phases never run, so a query decided by names alone never
// touches the filesystem.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/sift/internal/expr"
	"github.com/roach88/sift/internal/predicate"
	"github.com/roach88/sift/internal/resolve"
)

// Evaluator runs one compiled tree against any number of entities. The tree
// and its compiled matchers are immutable, so a single Evaluator is safe for
// concurrent use; all per-entity state lives in the evaluation.
type Evaluator struct {
	tree        expr.Expr
	maxDocBytes int64
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithMaxDocumentBytes caps how much of an entity the structured phase will
// decode. It must match the ceiling the query was compiled with, so the
// synthetic size guard and the decoder agree.
//
// Default: resolve.DefaultMaxDocumentBytes.
func WithMaxDocumentBytes(n int64) EvaluatorOption {
	return func(ev *Evaluator) {
		if n > 0 {
			ev.maxDocBytes = n
		}
	}
}

// New creates an Evaluator for a compiled tree.
func New(tree expr.Expr, opts ...EvaluatorOption) *Evaluator {
	ev := &Evaluator{
		tree:        tree,
		maxDocBytes: resolve.DefaultMaxDocumentBytes,
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Evaluate resolves the tree for one entity. The returned error is non-nil
// only when ctx is cancelled before the verdict is known; accessor failures
// (I/O, permissions, oversized or undecodable documents, binary content)
// resolve the affected predicate to false and evaluation continues.
func (ev *Evaluator) Evaluate(ctx context.Context, entity Entity) (bool, error) {
	start := time.Now()
	slog.Debug("visit entity", "path", entity.Path())

	run := &evaluation{
		entity:      entity,
		tree:        ev.tree,
		maxDocBytes: ev.maxDocBytes,
	}
	for run.state != stateResolved {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		run.step()
	}

	slog.Debug("entity resolved",
		"path", entity.Path(),
		"matched", run.verdict,
		"duration", time.Since(start),
	)
	return run.verdict, nil
}

// evalState marks per-entity progress. States only advance; no phase is
// revisited, and stateResolved holds the verdict.
type evalState int

const (
	stateNamePending evalState = iota
	stateMetadataPending
	stateStructuredPending
	stateContentPending
	stateResolved
)

func (s evalState) phase() predicate.Phase {
	switch s {
	case stateMetadataPending:
		return predicate.PhaseMetadata
	case stateStructuredPending:
		return predicate.PhaseStructured
	case stateContentPending:
		return predicate.PhaseContent
	default:
		return predicate.PhaseName
	}
}

// evaluation is the per-entity state machine: the progressively reduced
// tree, the forward-only phase marker, and memoized accessor results.
// Nothing here outlives the entity; the compiled tree is shared read-only.
type evaluation struct {
	entity      Entity
	tree        expr.Expr
	state       evalState
	verdict     bool
	maxDocBytes int64

	metaOnce bool
	meta     predicate.Metadata
	metaErr  error

	docsOnce   bool
	docsFormat resolve.Format
	docs       []any
	docsErr    error
}

// step folds exactly one phase into the tree and advances the marker. A root
// that comes out Known skips every later phase.
func (run *evaluation) step() {
	phase := run.state.phase()
	switch run.state {
	case stateNamePending:
		run.tree = expr.ReducePhase(run.tree, phase, run.evalName)
	case stateMetadataPending:
		run.tree = expr.ReducePhase(run.tree, phase, run.evalMetadata)
	case stateStructuredPending:
		run.tree = expr.ReducePhase(run.tree, phase, run.evalStructured)
	case stateContentPending:
		run.tree = expr.ReducePhase(run.tree, phase, run.evalContent)
	}
	run.state++

	if v, known := expr.Verdict(run.tree); known {
		run.verdict = v
		if run.state != stateResolved {
			slog.Debug("short circuit",
				"path", run.entity.Path(),
				"after_phase", phase.String(),
				"matched", v,
			)
			run.state = stateResolved
		}
	}
}

func (run *evaluation) evalName(p predicate.Predicate) bool {
	np, ok := p.(*predicate.NamePredicate)
	if !ok {
		return false
	}
	return np.Eval(run.entity.Path(), run.entity.Depth())
}

// metadata stats at most once per entity, failure included.
func (run *evaluation) metadata() (predicate.Metadata, error) {
	if !run.metaOnce {
		run.meta, run.metaErr = run.entity.Metadata()
		run.metaOnce = true
	}
	return run.meta, run.metaErr
}

func (run *evaluation) evalMetadata(p predicate.Predicate) bool {
	mp, ok := p.(*predicate.MetadataPredicate)
	if !ok {
		return false
	}
	md, err := run.metadata()
	if err != nil {
		slog.Debug("metadata unavailable", "path", run.entity.Path(), "error", err)
		return false
	}
	return mp.Eval(md)
}

func (run *evaluation) evalStructured(p predicate.Predicate) bool {
	sp, ok := p.(*predicate.StructuredPredicate)
	if !ok {
		return false
	}
	docs, err := run.documents(sp.Format)
	if err != nil {
		slog.Debug("documents unavailable",
			"path", run.entity.Path(),
			"format", sp.Format.String(),
			"error", err,
		)
		return false
	}
	return sp.Eval(docs)
}

// documents memoizes one format's decode. The synthetic extension guard
// means a single entity sees a single format, so one slot suffices; a tree
// built without guards still evaluates correctly, just without reuse.
func (run *evaluation) documents(format resolve.Format) ([]any, error) {
	if run.docsOnce && run.docsFormat == format {
		return run.docs, run.docsErr
	}
	run.docs, run.docsErr = run.entity.Documents(format, run.maxDocBytes)
	run.docsOnce, run.docsFormat = true, format
	return run.docs, run.docsErr
}

// evalContent streams the entity once per content predicate. Content applies
// to regular files only; everything else is false without opening anything.
func (run *evaluation) evalContent(p predicate.Predicate) bool {
	cp, ok := p.(*predicate.ContentPredicate)
	if !ok {
		return false
	}
	md, err := run.metadata()
	if err != nil || predicate.FileTypeFromMode(md.Mode) != predicate.TypeFile {
		return false
	}
	rc, err := run.entity.Content()
	if err != nil {
		slog.Debug("content unavailable", "path", run.entity.Path(), "error", err)
		return false
	}
	defer rc.Close()
	return cp.Eval(rc)
}
