// Package fsnotify adapts fsnotify to the ChangeWatcher port. The whole
// directory tree under the root is watched recursively; directories
// created while watching are added on the fly.
package fsnotify

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
	"github.com/docdex/docdex/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeWatcher = (*Watcher)(nil)

// Watcher emits change events for files under a directory tree.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	closed  bool
	closeCh chan struct{}
}

// New creates an idle watcher.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{fsw: fsw, closeCh: make(chan struct{})}, nil
}

// Watch starts watching root recursively. The returned channels close
// when the context is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan domain.ChangeEvent, <-chan error, error) {
	if err := w.addTree(root); err != nil {
		return nil, nil, err
	}

	events := make(chan domain.ChangeEvent, 64)
	errs := make(chan error, 8)

	go w.run(ctx, events, errs)
	return events, errs, nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.closeCh)
	return w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context, events chan<- domain.ChangeEvent, errs chan<- error) {
	defer close(events)
	defer close(errs)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.closeCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if change, relevant := w.mapEvent(event); relevant {
				select {
				case events <- change:
				case <-ctx.Done():
					return
				case <-w.closeCh:
					return
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case errs <- err:
			default:
				// Error channel full; the consumer only logs these.
			}
		}
	}
}

// mapEvent translates an fsnotify event into a domain change event.
// Directory creations extend the watch instead of emitting a change.
func (w *Watcher) mapEvent(event fsnotify.Event) (domain.ChangeEvent, bool) {
	if isHidden(event.Name) {
		return domain.ChangeEvent{}, false
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Gone already; the remove event will follow.
			return domain.ChangeEvent{}, false
		}
		if info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("Cannot watch new directory %s: %v", event.Name, err)
			}
			return domain.ChangeEvent{}, false
		}
		return domain.ChangeEvent{Type: domain.ChangeAdd, Path: event.Name}, true

	case event.Op.Has(fsnotify.Write):
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return domain.ChangeEvent{}, false
		}
		return domain.ChangeEvent{Type: domain.ChangeModify, Path: event.Name}, true

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		// Renames deliver a fresh create for the new name.
		return domain.ChangeEvent{Type: domain.ChangeRemove, Path: event.Name}, true

	default:
		// Chmod and friends carry no content change.
		return domain.ChangeEvent{}, false
	}
}

// addTree registers root and every non-hidden subdirectory.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any element of the path is dot-prefixed.
// "." and ".." are path syntax, not hidden names.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
