package fsnotify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdex/docdex/internal/core/domain"
)

func collectEvents(t *testing.T, events <-chan domain.ChangeEvent, want int) []domain.ChangeEvent {
	t.Helper()
	var got []domain.ChangeEvent
	deadline := time.After(3 * time.Second)
	for len(got) < want {
		select {
		case event, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed after %d events, want %d", len(got), want)
			}
			got = append(got, event)
		case <-deadline:
			t.Fatalf("timed out after %d events, want %d", len(got), want)
		}
	}
	return got
}

func TestWatcher(t *testing.T) {
	t.Run("emits add for new files", func(t *testing.T) {
		dir := t.TempDir()
		w, err := New()
		require.NoError(t, err)
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events, _, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		path := filepath.Join(dir, "new.txt")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

		got := collectEvents(t, events, 1)
		assert.Equal(t, domain.ChangeAdd, got[0].Type)
		assert.Equal(t, path, got[0].Path)
	})

	t.Run("emits remove for deleted files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "doomed.txt")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

		w, err := New()
		require.NoError(t, err)
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events, _, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))

		got := collectEvents(t, events, 1)
		assert.Equal(t, domain.ChangeRemove, got[0].Type)
		assert.Equal(t, path, got[0].Path)
	})

	t.Run("watches directories created while running", func(t *testing.T) {
		dir := t.TempDir()
		w, err := New()
		require.NoError(t, err)
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events, _, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.Mkdir(sub, 0o755))
		// Give the watcher a beat to register the new directory.
		time.Sleep(100 * time.Millisecond)
		path := filepath.Join(sub, "nested.txt")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

		got := collectEvents(t, events, 1)
		assert.Equal(t, domain.ChangeAdd, got[0].Type)
		assert.Equal(t, path, got[0].Path)
	})

	t.Run("ignores hidden files", func(t *testing.T) {
		dir := t.TempDir()
		w, err := New()
		require.NoError(t, err)
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events, _, err := w.Watch(ctx, dir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("x"), 0o644))
		visible := filepath.Join(dir, "visible.txt")
		require.NoError(t, os.WriteFile(visible, []byte("x"), 0o644))

		got := collectEvents(t, events, 1)
		assert.Equal(t, visible, got[0].Path, "hidden file must not surface")
	})

	t.Run("close ends the streams", func(t *testing.T) {
		dir := t.TempDir()
		w, err := New()
		require.NoError(t, err)

		events, _, err := w.Watch(context.Background(), dir)
		require.NoError(t, err)

		require.NoError(t, w.Close())
		require.NoError(t, w.Close(), "closing twice is safe")

		select {
		case _, ok := <-events:
			assert.False(t, ok, "event channel should close")
		case <-time.After(2 * time.Second):
			t.Fatal("event channel did not close")
		}
	})
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{".hidden", true},
		{"path/.hidden", true},
		{".config/cache/data", true},
		{"/a/.b/c", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/./file", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(tt.path))
		})
	}
}
