package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
	"github.com/docdex/docdex/internal/core/ports/driving"
	"github.com/docdex/docdex/internal/logger"
)

// Ensure Searcher implements the interface.
var _ driving.SearchService = (*Searcher)(nil)

// DefaultLimit is the result count used when the caller passes none.
const DefaultLimit = 20

// candidateFactor widens the ranked candidate set before filters are
// applied, so a selective filter still yields up to limit results.
const candidateFactor = 3

// Searcher answers ranked queries. Lexical search runs against the
// inverted index; hybrid search fuses it with vector similarity via
// reciprocal rank fusion and degrades to lexical-only whenever the
// semantic side is unavailable.
type Searcher struct {
	docStore    driven.DocumentStore
	engine      driven.SearchEngine
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService

	embedTimeout time.Duration
}

// NewSearcher creates the search service. The vectorIndex and embedder
// are optional; when either is nil, HybridSearch behaves like Search.
func NewSearcher(
	docStore driven.DocumentStore,
	engine driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
) *Searcher {
	return &Searcher{
		docStore:     docStore,
		engine:       engine,
		vectorIndex:  vectorIndex,
		embedder:     embedder,
		embedTimeout: DefaultProviderTimeout,
	}
}

// Search runs a lexical query, hydrates the ranked IDs into full
// records, applies the filters in rank order and truncates to limit.
func (s *Searcher) Search(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	limit = normalizeLimit(limit)

	hits, err := s.engine.Search(ctx, query, candidateLimit(limit, filters))
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for rank, hit := range hits {
		doc, err := s.docStore.GetByID(ctx, hit.DocID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Index briefly ahead of the store; skip the orphan.
				continue
			}
			return nil, fmt.Errorf("hydrate %s: %w", hit.DocID, err)
		}
		results = append(results, domain.SearchResult{
			Document:     *doc,
			Score:        hit.Score,
			LexicalScore: hit.Score,
			LexicalRank:  rank,
			SemanticRank: domain.RankAbsent,
		})
	}

	return truncate(applyFilters(results, filters), limit), nil
}

// HybridSearch fuses the lexical and semantic ranked lists with
// reciprocal rank fusion: each list contributes 1/(rank+1) for a
// document, ranks 0-based. Any failure on the semantic side degrades
// the call to plain lexical search rather than erroring.
func (s *Searcher) HybridSearch(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	limit = normalizeLimit(limit)

	semantic, semErr := s.semanticSearch(ctx, query, candidateLimit(limit, filters))
	if semErr != nil {
		logger.Debug("Semantic search unavailable, lexical only: %v", semErr)
		return s.Search(ctx, query, filters, limit)
	}

	lexical, err := s.engine.Search(ctx, query, candidateLimit(limit, filters))
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	fused := fuseRanks(lexical, semantic)

	results := make([]domain.SearchResult, 0, len(fused))
	for _, f := range fused {
		doc, err := s.docStore.GetByID(ctx, f.docID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("hydrate %s: %w", f.docID, err)
		}
		results = append(results, domain.SearchResult{
			Document:      *doc,
			Score:         f.score,
			LexicalScore:  f.lexScore,
			SemanticScore: f.semScore,
			LexicalRank:   f.lexRank,
			SemanticRank:  f.semRank,
		})
	}

	return truncate(applyFilters(results, filters), limit), nil
}

// Filters returns the distinct filterable values across the corpus.
func (s *Searcher) Filters(ctx context.Context) (*domain.FilterOptions, error) {
	return s.docStore.FilterOptions(ctx)
}

// Stats returns aggregate corpus statistics.
func (s *Searcher) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.docStore.Stats(ctx)
}

// semanticSearch embeds the query and runs a vector similarity search.
func (s *Searcher) semanticSearch(ctx context.Context, query string, limit int) ([]driven.VectorHit, error) {
	if s.embedder == nil || s.vectorIndex == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	embedding, err := s.embedder.Embed(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embedding) == 0 {
		return nil, domain.ErrEmbeddingUnavailable
	}

	hits, err := s.vectorIndex.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// fusedHit carries a document through rank fusion with its provenance.
type fusedHit struct {
	docID    string
	score    float64
	lexScore float64
	semScore float64
	lexRank  int
	semRank  int
}

// fuseRanks merges the two ranked lists by reciprocal rank: a document
// at 0-based rank r contributes 1/(r+1) per list it appears in. Ties
// break by better lexical rank, then document ID, so fusion is fully
// deterministic.
func fuseRanks(lexical []driven.SearchHit, semantic []driven.VectorHit) []fusedHit {
	byID := make(map[string]*fusedHit, len(lexical)+len(semantic))

	get := func(id string) *fusedHit {
		f, ok := byID[id]
		if !ok {
			f = &fusedHit{docID: id, lexRank: domain.RankAbsent, semRank: domain.RankAbsent}
			byID[id] = f
		}
		return f
	}

	for rank, hit := range lexical {
		f := get(hit.DocID)
		f.score += 1.0 / float64(rank+1)
		f.lexScore = hit.Score
		f.lexRank = rank
	}
	for rank, hit := range semantic {
		f := get(hit.DocID)
		f.score += 1.0 / float64(rank+1)
		f.semScore = hit.Similarity
		f.semRank = rank
	}

	fused := make([]fusedHit, 0, len(byID))
	for _, f := range byID {
		fused = append(fused, *f)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		li, lj := fused[i].lexRank, fused[j].lexRank
		if li != lj {
			// A present lexical rank beats an absent one; among present
			// ranks, lower wins.
			if li == domain.RankAbsent {
				return false
			}
			if lj == domain.RankAbsent {
				return true
			}
			return li < lj
		}
		return fused[i].docID < fused[j].docID
	})

	return fused
}

// applyFilters keeps only matching documents, preserving rank order.
func applyFilters(results []domain.SearchResult, filters domain.SearchFilters) []domain.SearchResult {
	if filters.Empty() {
		return results
	}
	kept := results[:0]
	for _, r := range results {
		if filters.Match(&r.Document) {
			kept = append(kept, r)
		}
	}
	return kept
}

func candidateLimit(limit int, filters domain.SearchFilters) int {
	if filters.Empty() {
		return limit
	}
	return limit * candidateFactor
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func truncate(results []domain.SearchResult, limit int) []domain.SearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
