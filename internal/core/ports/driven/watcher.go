package driven

import (
	"context"

	"github.com/docdex/docdex/internal/core/domain"
)

// ChangeWatcher emits filesystem change events for a directory tree.
// Events are delivered sequentially per path; no ordering is guaranteed
// across distinct paths.
type ChangeWatcher interface {
	// Watch starts watching the root and returns the event stream.
	// The channels close when the context is cancelled or the watcher
	// is closed.
	Watch(ctx context.Context, root string) (<-chan domain.ChangeEvent, <-chan error, error)

	// Close stops watching and releases resources.
	Close() error
}
