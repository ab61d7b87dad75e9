package walker

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/roach88/sift/internal/engine"
	"github.com/roach88/sift/internal/expr"
)

// Watcher re-evaluates entities as the filesystem changes beneath the
// watched roots, streaming every match on Events. Directories created
// during the watch are added to the watch set.
type Watcher struct {
	eval   *engine.Evaluator
	opts   Options
	roots  []string
	fsw    *fsnotify.Watcher
	log    *slog.Logger
	events chan Match
}

func NewWatcher(tree expr.Expr, opts Options, roots []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		eval:   newEvaluator(tree, opts),
		opts:   opts,
		roots:  roots,
		fsw:    fsw,
		log:    slog.With("run_id", uuid.Must(uuid.NewV7()).String()),
		events: make(chan Match, 64),
	}, nil
}

// Events is closed when the watch loop stops.
func (w *Watcher) Events() <-chan Match { return w.events }

// Start adds watches for every directory under the roots and launches
// the event loop, which runs until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots {
		if err := w.addWatches(root, root); err != nil {
			return err
		}
	}
	go w.run(ctx)
	w.log.Info("watch start", "roots", w.roots)
	return nil
}

func (w *Watcher) Close() error { return w.fsw.Close() }

// addWatches registers dir under every directory below it, honoring the
// exclude patterns and the depth cap.
func (w *Watcher) addWatches(dir, root string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Debug("watch add skipped", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel := relSlash(root, path)
		if rel != "." && matchAny(w.opts.Excludes, rel) {
			return fs.SkipDir
		}
		if w.opts.MaxDepth > 0 && pathDepth(rel) >= w.opts.MaxDepth {
			return fs.SkipDir
		}
		if werr := w.fsw.Add(path); werr != nil {
			w.log.Warn("cannot watch directory", "path", path, "error", werr)
			return nil
		}
		w.log.Debug("watching directory", "path", path)
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", "error", err)
		}
	}
}

// handle evaluates one created or written path. New directories also
// join the watch set so later events under them arrive.
func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	path := event.Name
	root := w.rootFor(path)
	rel := relSlash(root, path)
	if matchAny(w.opts.Excludes, rel) {
		return
	}
	depth := pathDepth(rel)
	if w.opts.MaxDepth > 0 && depth > w.opts.MaxDepth {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			if err := w.addWatches(path, root); err != nil {
				w.log.Warn("cannot watch new directory", "path", path, "error", err)
			}
		}
	}

	matched, err := w.eval.Evaluate(ctx, newFileEntity(ctx, path, depth, nil, w.opts.FollowSymlinks))
	if err != nil || !matched {
		return
	}
	select {
	case w.events <- Match{Path: path}:
	case <-ctx.Done():
	}
}

// rootFor picks the watched root containing path.
func (w *Watcher) rootFor(path string) string {
	for _, root := range w.roots {
		prefix := filepath.Clean(root) + string(filepath.Separator)
		if path == filepath.Clean(root) || strings.HasPrefix(path, prefix) {
			return root
		}
	}
	return w.roots[0]
}
