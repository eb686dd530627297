package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driving"
)

// stubWatcher replays a scripted event stream.
type stubWatcher struct {
	events chan domain.ChangeEvent
	errs   chan error
}

func newStubWatcher() *stubWatcher {
	return &stubWatcher{
		events: make(chan domain.ChangeEvent, 16),
		errs:   make(chan error, 1),
	}
}

func (w *stubWatcher) Watch(context.Context, string) (<-chan domain.ChangeEvent, <-chan error, error) {
	return w.events, w.errs, nil
}

func (w *stubWatcher) Close() error {
	close(w.events)
	return nil
}

// recordingIngest counts handled events per path.
type recordingIngest struct {
	mu      sync.Mutex
	handled []domain.ChangeEvent
}

func (r *recordingIngest) Ingest(context.Context, string) (*domain.Document, error) {
	return &domain.Document{}, nil
}

func (r *recordingIngest) IngestDirectory(context.Context, string) (*driving.IngestReport, error) {
	return &driving.IngestReport{}, nil
}

func (r *recordingIngest) Remove(context.Context, string) error { return nil }

func (r *recordingIngest) HandleEvent(_ context.Context, event domain.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled = append(r.handled, event)
	return nil
}

func (r *recordingIngest) snapshot() []domain.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ChangeEvent(nil), r.handled...)
}

func TestWatchRunner(t *testing.T) {
	t.Run("delivers events to the ingest service", func(t *testing.T) {
		watcher := newStubWatcher()
		ingest := &recordingIngest{}
		runner := NewWatchRunner(watcher, ingest, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- runner.Run(ctx, "/docs") }()

		watcher.events <- domain.ChangeEvent{Type: domain.ChangeAdd, Path: "/docs/a.txt"}

		require.Eventually(t, func() bool {
			return len(ingest.snapshot()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, domain.ChangeAdd, ingest.snapshot()[0].Type)

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	t.Run("debounces bursts per path", func(t *testing.T) {
		watcher := newStubWatcher()
		ingest := &recordingIngest{}
		runner := NewWatchRunner(watcher, ingest, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = runner.Run(ctx, "/docs") }()

		// Editors emit several writes per save; only one should land.
		for i := 0; i < 5; i++ {
			watcher.events <- domain.ChangeEvent{Type: domain.ChangeModify, Path: "/docs/a.txt"}
		}

		require.Eventually(t, func() bool {
			return len(ingest.snapshot()) >= 1
		}, time.Second, 5*time.Millisecond)
		time.Sleep(100 * time.Millisecond)
		assert.Len(t, ingest.snapshot(), 1)
	})

	t.Run("distinct paths do not share a debounce window", func(t *testing.T) {
		watcher := newStubWatcher()
		ingest := &recordingIngest{}
		runner := NewWatchRunner(watcher, ingest, 20*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = runner.Run(ctx, "/docs") }()

		watcher.events <- domain.ChangeEvent{Type: domain.ChangeAdd, Path: "/docs/a.txt"}
		watcher.events <- domain.ChangeEvent{Type: domain.ChangeAdd, Path: "/docs/b.txt"}

		require.Eventually(t, func() bool {
			return len(ingest.snapshot()) == 2
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("closed event stream ends the run", func(t *testing.T) {
		watcher := newStubWatcher()
		runner := NewWatchRunner(watcher, &recordingIngest{}, 10*time.Millisecond)

		done := make(chan error, 1)
		go func() { done <- runner.Run(context.Background(), "/docs") }()

		require.NoError(t, watcher.Close())

		assert.ErrorIs(t, <-done, domain.ErrWatcherClosed)
	})
}
