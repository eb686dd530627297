package driving

import (
	"context"

	"github.com/docdex/docdex/internal/core/domain"
)

// SearchService answers ranked, filtered queries over the corpus.
type SearchService interface {
	// Search runs a lexical query and applies the filters. The query
	// must be non-empty.
	Search(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchResult, error)

	// HybridSearch fuses lexical and semantic result lists with
	// reciprocal rank fusion. Degrades to Search when the semantic
	// side is unavailable.
	HybridSearch(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchResult, error)

	// Filters returns the distinct filterable values in the corpus.
	Filters(ctx context.Context) (*domain.FilterOptions, error)

	// Stats returns aggregate corpus statistics.
	Stats(ctx context.Context) (*domain.Stats, error)
}
