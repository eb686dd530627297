package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
	"github.com/docdex/docdex/internal/core/ports/driving"
	"github.com/docdex/docdex/internal/logger"
)

// DefaultDebounce coalesces rapid change bursts for a single path.
// Editors often emit several writes per save.
const DefaultDebounce = 500 * time.Millisecond

// WatchRunner consumes filesystem change events and drives the ingest
// service. Events for one path are debounced; the handler always acts
// on the path's state at fire time, so a burst of add/modify/remove
// converges on the right outcome regardless of arrival order.
type WatchRunner struct {
	watcher  driven.ChangeWatcher
	ingest   driving.IngestService
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatchRunner wires a change watcher to the ingest service.
func NewWatchRunner(watcher driven.ChangeWatcher, ingest driving.IngestService, debounce time.Duration) *WatchRunner {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &WatchRunner{
		watcher:  watcher,
		ingest:   ingest,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Run watches root until the context is cancelled or the watcher fails.
func (w *WatchRunner) Run(ctx context.Context, root string) error {
	events, errs, err := w.watcher.Watch(ctx, root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	logger.Info("Watching %s", root)

	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				w.flush()
				return domain.ErrWatcherClosed
			}
			w.schedule(ctx, event)
		case watchErr, ok := <-errs:
			if !ok {
				continue
			}
			logger.Warn("Watcher error: %v", watchErr)
		}
	}
}

// schedule (re)arms the debounce timer for the event's path. The latest
// event type wins; the handler re-stats the path anyway.
func (w *WatchRunner) schedule(ctx context.Context, event domain.ChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[event.Path]; ok {
		timer.Stop()
	}
	w.timers[event.Path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, event.Path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := w.ingest.HandleEvent(ctx, event); err != nil {
			logger.Warn("Handling %s for %s failed: %v", event.Type, event.Path, err)
		}
	})
}

// flush stops all pending timers.
func (w *WatchRunner) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}
