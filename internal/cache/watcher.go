package cache

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Invalidator drops cached state for a source path.
type Invalidator interface {
	Invalidate(path string)
}

// Watcher invalidates cache entries when their source files change on disk.
// Parent directories are watched so editors that replace files are seen too.
type Watcher struct {
	log *slog.Logger
	inv Invalidator
	fsw *fsnotify.Watcher

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

func NewWatcher(log *slog.Logger, inv Invalidator) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		log:   log,
		inv:   inv,
		fsw:   fsw,
		files: map[string]struct{}{},
		dirs:  map[string]struct{}{},
	}, nil
}

// Add starts watching path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	dir := filepath.Dir(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[dir]; !ok {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.files[abs] = struct{}{}
	return nil
}

func (w *Watcher) watched(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(name)]
	return ok
}

// Run dispatches file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !w.watched(ev.Name) {
				continue
			}
			w.log.Info("watcher: source changed", "path", ev.Name, "op", ev.Op.String())
			w.inv.Invalidate(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher: error", "error", err)
		}
	}
}

func (w *Watcher) Close() error { return w.fsw.Close() }
