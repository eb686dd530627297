package driven

import (
	"context"

	"github.com/docdex/docdex/internal/core/domain"
)

// SearchEngine answers ranked lexical queries over the document corpus.
// Build replaces the whole index atomically: a concurrent query sees
// either the old or the new index, never a partial one.
type SearchEngine interface {
	// Build replaces the index with one covering exactly the given
	// records. Rebuilding from the same records is idempotent.
	Build(ctx context.Context, docs []domain.Document) error

	// Search returns document IDs ranked by lexical relevance.
	// An index that has never been built returns no results.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

// SearchHit represents a lexical search result.
type SearchHit struct {
	// DocID is the matched document.
	DocID string

	// Score is the weighted term-frequency relevance score.
	Score float64
}
