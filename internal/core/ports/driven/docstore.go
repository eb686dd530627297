package driven

import (
	"context"

	"github.com/docdex/docdex/internal/core/domain"
)

// DocumentStore persists document records. Backed by SQLite.
// Upsert is keyed by path: re-ingesting a path fully replaces the prior
// record, never creating a duplicate.
type DocumentStore interface {
	// Upsert stores or wholly replaces a document record, returning its
	// path-derived ID.
	Upsert(ctx context.Context, doc *domain.Document) (string, error)

	// GetByID retrieves a document by ID.
	GetByID(ctx context.Context, id string) (*domain.Document, error)

	// GetByPath retrieves a document by its full path.
	GetByPath(ctx context.Context, fullPath string) (*domain.Document, error)

	// Delete removes the document for the given full path. Deleting an
	// unknown path is not an error.
	Delete(ctx context.Context, fullPath string) error

	// ListAll returns every document record.
	ListAll(ctx context.Context) ([]domain.Document, error)

	// FilterOptions returns the distinct metadata values in the corpus.
	FilterOptions(ctx context.Context) (*domain.FilterOptions, error)

	// Stats returns aggregate corpus statistics.
	Stats(ctx context.Context) (*domain.Stats, error)

	// Close releases resources.
	Close() error
}
