package walker

import (
	"context"
	"io"
	"io/fs"
	"os"

	"github.com/dolmen-go/contextio"

	"github.com/roach88/sift/internal/predicate"
	"github.com/roach88/sift/internal/resolve"
)

// fileEntity adapts one filesystem entry to the evaluator's entity
// contract. It carries the run context so content reads stop at
// cancellation, and defers every stat and open until a predicate asks.
// entry is the DirEntry from the walk when one is at hand; watch events
// leave it nil and stat the path directly.
type fileEntity struct {
	ctx    context.Context
	path   string
	depth  int
	entry  fs.DirEntry
	follow bool
}

func newFileEntity(ctx context.Context, path string, depth int, entry fs.DirEntry, follow bool) *fileEntity {
	return &fileEntity{ctx: ctx, path: path, depth: depth, entry: entry, follow: follow}
}

func (e *fileEntity) Path() string { return e.path }
func (e *fileEntity) Depth() int   { return e.depth }

func (e *fileEntity) Metadata() (predicate.Metadata, error) {
	info, err := e.info()
	if err != nil {
		return predicate.Metadata{}, err
	}
	var size uint64
	if s := info.Size(); s > 0 {
		size = uint64(s)
	}
	atime, ctime := statTimes(info)
	return predicate.Metadata{
		Size:       size,
		Mode:       info.Mode(),
		ModTime:    info.ModTime(),
		AccessTime: atime,
		ChangeTime: ctime,
	}, nil
}

// info resolves the entry's FileInfo. With symlink following on, links
// report their target.
func (e *fileEntity) info() (fs.FileInfo, error) {
	if e.entry != nil {
		if e.follow && e.entry.Type()&fs.ModeSymlink != 0 {
			return os.Stat(e.path)
		}
		return e.entry.Info()
	}
	if e.follow {
		return os.Stat(e.path)
	}
	return os.Lstat(e.path)
}

func (e *fileEntity) Content() (io.ReadCloser, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return nil, err
	}
	return &contentReader{Reader: contextio.NewReader(e.ctx, f), file: f}, nil
}

func (e *fileEntity) Documents(format resolve.Format, limit int64) ([]any, error) {
	rc, err := e.Content()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return resolve.Decode(rc, format, limit)
}

// contentReader pairs a context-aware reader with the file it wraps so
// Close releases the descriptor.
type contentReader struct {
	io.Reader
	file *os.File
}

func (r *contentReader) Close() error { return r.file.Close() }
