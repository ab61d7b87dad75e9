// Package walker enumerates filesystem roots and evaluates every entry
// against a compiled query on a pool of workers. A single producer walks
// the tree while workers run the phase evaluator; unreadable entries are
// logged and skipped, never fatal to the run.
package walker

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/roach88/sift/internal/engine"
	"github.com/roach88/sift/internal/expr"
)

// Options configure a traversal run. The zero value walks with
// GOMAXPROCS workers, unlimited depth and results, and no excludes.
type Options struct {
	// Excludes are doublestar patterns matched against the slash-form
	// path relative to the walk root. A matching directory is pruned
	// whole, so "**/.git" skips the directory and everything under it.
	Excludes []string

	// MaxDepth caps how many components below a root are entered. Zero
	// means unlimited.
	MaxDepth int

	// FollowSymlinks resolves link metadata to the target and descends
	// into linked directories, pruning cycles.
	FollowSymlinks bool

	// Workers sets the evaluation pool size. Zero means GOMAXPROCS.
	Workers int

	// MaxResults stops enumeration once that many matches have been
	// emitted; evaluations already in flight still complete. Zero means
	// unlimited.
	MaxResults int

	// MaxDocumentBytes is the structured-decode ceiling. It must agree
	// with the ceiling the query was compiled with.
	MaxDocumentBytes int64
}

// Match is one entity that satisfied the query.
type Match struct {
	Path string `json:"path"`
}

// Result summarizes a finished run.
type Result struct {
	Matched   int
	Evaluated int
	Skipped   int
	Duration  time.Duration
}

// Walker runs one compiled query over filesystem roots. A walker is
// good for any number of runs; each carries the walker's run_id through
// its log lines.
type Walker struct {
	eval *engine.Evaluator
	opts Options
	log  *slog.Logger
}

func New(tree expr.Expr, opts Options) *Walker {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Walker{
		eval: newEvaluator(tree, opts),
		opts: opts,
		log:  slog.With("run_id", uuid.Must(uuid.NewV7()).String()),
	}
}

func newEvaluator(tree expr.Expr, opts Options) *engine.Evaluator {
	if opts.MaxDocumentBytes > 0 {
		return engine.New(tree, engine.WithMaxDocumentBytes(opts.MaxDocumentBytes))
	}
	return engine.New(tree)
}

type item struct {
	path  string
	depth int
	entry fs.DirEntry
}

type verdict struct {
	path    string
	matched bool
}

// Walk enumerates the roots and calls emit once per match, from the
// calling goroutine, in completion order. It returns once enumeration
// and every in-flight evaluation are done. Cancellation is the only
// fatal condition.
func (w *Walker) Walk(ctx context.Context, roots []string, emit func(Match)) (Result, error) {
	start := time.Now()
	w.log.Info("walk start",
		"roots", roots,
		"workers", w.opts.Workers,
		"excludes", len(w.opts.Excludes))

	// Enumeration gets a child context so hitting the result cap stops
	// the producer while in-flight evaluations run on the outer one.
	enumCtx, stopEnum := context.WithCancel(ctx)
	defer stopEnum()

	items := make(chan item, w.opts.Workers*2)
	verdicts := make(chan verdict, w.opts.Workers)
	var skipped atomic.Int64

	go func() {
		defer close(items)
		seen := newVisitSet()
		for _, root := range roots {
			if enumCtx.Err() != nil {
				return
			}
			w.walkFrom(enumCtx, walk{fsRoot: root, displayRoot: root, origRoot: root}, items, &skipped, seen)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < w.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.work(ctx, items, verdicts)
		}()
	}
	go func() {
		wg.Wait()
		close(verdicts)
	}()

	var res Result
	capped := false
	for v := range verdicts {
		res.Evaluated++
		if !v.matched || capped {
			continue
		}
		res.Matched++
		if emit != nil {
			emit(Match{Path: v.path})
		}
		if w.opts.MaxResults > 0 && res.Matched >= w.opts.MaxResults {
			capped = true
			stopEnum()
			w.log.Debug("result cap reached", "max_results", w.opts.MaxResults)
		}
	}
	res.Skipped = int(skipped.Load())
	res.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		w.log.Info("walk cancelled",
			"matched", res.Matched,
			"evaluated", res.Evaluated,
			"duration", res.Duration)
		return res, err
	}
	w.log.Info("walk complete",
		"matched", res.Matched,
		"evaluated", res.Evaluated,
		"skipped", res.Skipped,
		"duration", res.Duration)
	return res, nil
}

func (w *Walker) work(ctx context.Context, items <-chan item, verdicts chan<- verdict) {
	for it := range items {
		entity := newFileEntity(ctx, it.path, it.depth, it.entry, w.opts.FollowSymlinks)
		matched, err := w.eval.Evaluate(ctx, entity)
		if err != nil {
			return
		}
		select {
		case verdicts <- verdict{path: it.path, matched: matched}:
		case <-ctx.Done():
			return
		}
	}
}

// walk is one traversal frame. fsRoot is what WalkDir actually reads;
// displayRoot is how its entries are named, which differs from fsRoot
// only below a followed symlink. origRoot anchors exclude matching and
// never changes across frames. baseDepth is the logical depth of fsRoot
// itself; skipRoot suppresses re-sending a symlink target already sent
// as the link.
type walk struct {
	fsRoot      string
	displayRoot string
	origRoot    string
	baseDepth   int
	skipRoot    bool
}

func (w *Walker) walkFrom(ctx context.Context, frame walk, items chan<- item, skipped *atomic.Int64, seen *visitSet) {
	_ = filepath.WalkDir(frame.fsRoot, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil {
			skipped.Add(1)
			w.log.Debug("walk error, skipping", "path", path, "error", err)
			return nil
		}

		rel := relSlash(frame.fsRoot, path)
		atRoot := rel == "."
		display := frame.displayRoot
		if !atRoot {
			display = filepath.Join(frame.displayRoot, filepath.FromSlash(rel))
		}
		depth := frame.baseDepth + pathDepth(rel)

		if !atRoot && matchAny(w.opts.Excludes, relSlash(frame.origRoot, display)) {
			w.log.Debug("excluded", "path", display)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if w.opts.MaxDepth > 0 && depth > w.opts.MaxDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if !(atRoot && frame.skipRoot) {
			select {
			case items <- item{path: display, depth: depth, entry: d}:
			case <-ctx.Done():
				return fs.SkipAll
			}
		}

		if d.IsDir() && w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
			return fs.SkipDir
		}
		if w.opts.FollowSymlinks && d.Type()&fs.ModeSymlink != 0 {
			w.followLink(ctx, frame, path, display, depth, items, skipped, seen)
		}
		return nil
	})
}

// followLink descends into a symlinked directory, continuing the logical
// depth from the link's position. Targets already entered once are
// pruned so link cycles terminate.
func (w *Walker) followLink(ctx context.Context, frame walk, linkPath, display string, depth int, items chan<- item, skipped *atomic.Int64, seen *visitSet) {
	target, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		skipped.Add(1)
		w.log.Debug("broken symlink, skipping", "path", display, "error", err)
		return
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return
	}
	if !seen.add(target) {
		w.log.Debug("symlink cycle pruned", "path", display, "target", target)
		return
	}
	w.walkFrom(ctx, walk{
		fsRoot:      target,
		displayRoot: display,
		origRoot:    frame.origRoot,
		baseDepth:   depth,
		skipRoot:    true,
	}, items, skipped, seen)
}

// visitSet records resolved directories entered through symlinks. The
// producer is the only writer.
type visitSet struct {
	dirs map[string]struct{}
}

func newVisitSet() *visitSet {
	return &visitSet{dirs: make(map[string]struct{})}
}

func (s *visitSet) add(dir string) bool {
	if _, ok := s.dirs[dir]; ok {
		return false
	}
	s.dirs[dir] = struct{}{}
	return true
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// pathDepth counts components below a root given the slash-form relative
// path, so "." is 0 and "a/b" is 2.
func pathDepth(rel string) int {
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(rel, "/") + 1
}
