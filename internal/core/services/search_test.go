package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdex/docdex/internal/adapters/driven/storage/memory"
	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
)

// stubEngine serves a fixed ranked list.
type stubEngine struct {
	hits []driven.SearchHit
}

func (s *stubEngine) Build(context.Context, []domain.Document) error { return nil }

func (s *stubEngine) Search(_ context.Context, query string, limit int) ([]driven.SearchHit, error) {
	hits := s.hits
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// stubVector serves a fixed similarity list.
type stubVector struct {
	hits []driven.VectorHit
}

func (v *stubVector) Add(context.Context, string, []float32) error { return nil }
func (v *stubVector) Delete(context.Context, string) error         { return nil }
func (v *stubVector) Close() error                                 { return nil }

func (v *stubVector) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	hits := v.hits
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// stubEmbedder returns a fixed vector, or fails when broken.
type stubEmbedder struct {
	broken bool
}

func (e *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	if e.broken {
		return nil, errors.New("provider down")
	}
	return []float32{1, 0}, nil
}
func (e *stubEmbedder) Dimensions() int   { return 2 }
func (e *stubEmbedder) ModelName() string { return "stub" }
func (e *stubEmbedder) Close() error      { return nil }

func seedStore(t *testing.T, docs ...domain.Document) *memory.DocStore {
	t.Helper()
	store := memory.NewDocStore()
	for i := range docs {
		_, err := store.Upsert(context.Background(), &docs[i])
		require.NoError(t, err)
	}
	return store
}

func storedDoc(id string, categories ...string) domain.Document {
	return domain.Document{
		ID:         id,
		Filename:   id + ".txt",
		Path:       id + ".txt",
		FullPath:   "/docs/" + id + ".txt",
		Extension:  ".txt",
		Modified:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Categories: categories,
	}
}

func TestSearcher_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query is rejected", func(t *testing.T) {
		s := NewSearcher(memory.NewDocStore(), &stubEngine{}, nil, nil)

		_, err := s.Search(ctx, "  ", domain.SearchFilters{}, 10)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("hydrates ranked hits in order", func(t *testing.T) {
		store := seedStore(t, storedDoc("a"), storedDoc("b"))
		engine := &stubEngine{hits: []driven.SearchHit{{DocID: "a", Score: 9}, {DocID: "b", Score: 4}}}
		s := NewSearcher(store, engine, nil, nil)

		results, err := s.Search(ctx, "query", domain.SearchFilters{}, 10)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].Document.ID)
		assert.Equal(t, 9.0, results[0].Score)
		assert.Equal(t, 9.0, results[0].LexicalScore)
		assert.Equal(t, 0, results[0].LexicalRank)
		assert.Equal(t, domain.RankAbsent, results[0].SemanticRank)
	})

	t.Run("skips ids the store no longer has", func(t *testing.T) {
		store := seedStore(t, storedDoc("b"))
		engine := &stubEngine{hits: []driven.SearchHit{{DocID: "gone", Score: 9}, {DocID: "b", Score: 4}}}
		s := NewSearcher(store, engine, nil, nil)

		results, err := s.Search(ctx, "query", domain.SearchFilters{}, 10)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "b", results[0].Document.ID)
	})

	t.Run("filters preserve rank order", func(t *testing.T) {
		store := seedStore(t,
			storedDoc("a", "Analytics"),
			storedDoc("b", "Brand Strategy"),
			storedDoc("c", "Analytics"),
		)
		engine := &stubEngine{hits: []driven.SearchHit{
			{DocID: "a", Score: 9}, {DocID: "b", Score: 5}, {DocID: "c", Score: 2},
		}}
		s := NewSearcher(store, engine, nil, nil)

		results, err := s.Search(ctx, "query", domain.SearchFilters{Category: "Analytics"}, 10)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].Document.ID)
		assert.Equal(t, "c", results[1].Document.ID)
	})

	t.Run("date bounds are inclusive", func(t *testing.T) {
		doc := storedDoc("a")
		store := seedStore(t, doc)
		engine := &stubEngine{hits: []driven.SearchHit{{DocID: "a", Score: 1}}}
		s := NewSearcher(store, engine, nil, nil)

		exact := doc.Modified
		results, err := s.Search(ctx, "query", domain.SearchFilters{DateFrom: &exact, DateTo: &exact}, 10)

		require.NoError(t, err)
		assert.Len(t, results, 1, "a document modified exactly on the bound matches")
	})

	t.Run("limit truncates after filtering", func(t *testing.T) {
		store := seedStore(t, storedDoc("a"), storedDoc("b"), storedDoc("c"))
		engine := &stubEngine{hits: []driven.SearchHit{
			{DocID: "a", Score: 3}, {DocID: "b", Score: 2}, {DocID: "c", Score: 1},
		}}
		s := NewSearcher(store, engine, nil, nil)

		results, err := s.Search(ctx, "query", domain.SearchFilters{}, 2)

		require.NoError(t, err)
		assert.Len(t, results, 2)
	})
}

func TestSearcher_HybridSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("fuses by reciprocal rank", func(t *testing.T) {
		store := seedStore(t, storedDoc("a"), storedDoc("b"), storedDoc("c"), storedDoc("d"))
		// Lexical: a, b, c. Semantic: b, a, d.
		engine := &stubEngine{hits: []driven.SearchHit{
			{DocID: "a", Score: 9}, {DocID: "b", Score: 5}, {DocID: "c", Score: 2},
		}}
		vector := &stubVector{hits: []driven.VectorHit{
			{DocID: "b", Similarity: 0.9}, {DocID: "a", Similarity: 0.8}, {DocID: "d", Similarity: 0.7},
		}}
		s := NewSearcher(store, engine, vector, &stubEmbedder{})

		results, err := s.HybridSearch(ctx, "query", domain.SearchFilters{}, 10)

		require.NoError(t, err)
		require.Len(t, results, 4)

		// a: 1/1 + 1/2, b: 1/2 + 1/1, tie broken by better lexical rank.
		assert.Equal(t, "a", results[0].Document.ID)
		assert.Equal(t, "b", results[1].Document.ID)
		assert.InDelta(t, 1.5, results[0].Score, 1e-9)
		assert.InDelta(t, 1.5, results[1].Score, 1e-9)

		// c: 1/3 lexical only; d: 1/3 semantic only. A present lexical
		// rank wins the tie.
		assert.Equal(t, "c", results[2].Document.ID)
		assert.Equal(t, "d", results[3].Document.ID)
		assert.InDelta(t, 1.0/3.0, results[2].Score, 1e-9)
		assert.InDelta(t, 1.0/3.0, results[3].Score, 1e-9)
	})

	t.Run("records scoring provenance", func(t *testing.T) {
		store := seedStore(t, storedDoc("a"), storedDoc("d"))
		engine := &stubEngine{hits: []driven.SearchHit{{DocID: "a", Score: 9}}}
		vector := &stubVector{hits: []driven.VectorHit{
			{DocID: "a", Similarity: 0.8}, {DocID: "d", Similarity: 0.7},
		}}
		s := NewSearcher(store, engine, vector, &stubEmbedder{})

		results, err := s.HybridSearch(ctx, "query", domain.SearchFilters{}, 10)

		require.NoError(t, err)
		require.Len(t, results, 2)

		a := results[0]
		assert.Equal(t, 0, a.LexicalRank)
		assert.Equal(t, 0, a.SemanticRank)
		assert.Equal(t, 9.0, a.LexicalScore)
		assert.Equal(t, 0.8, a.SemanticScore)

		d := results[1]
		assert.Equal(t, domain.RankAbsent, d.LexicalRank)
		assert.Equal(t, 1, d.SemanticRank)
	})

	t.Run("degrades to lexical when the embedder fails", func(t *testing.T) {
		store := seedStore(t, storedDoc("a"), storedDoc("b"))
		engine := &stubEngine{hits: []driven.SearchHit{
			{DocID: "a", Score: 9}, {DocID: "b", Score: 4},
		}}
		vector := &stubVector{hits: []driven.VectorHit{{DocID: "b", Similarity: 0.9}}}

		s := NewSearcher(store, engine, vector, &stubEmbedder{broken: true})
		hybrid, err := s.HybridSearch(ctx, "query", domain.SearchFilters{}, 10)
		require.NoError(t, err)

		lexical, err := s.Search(ctx, "query", domain.SearchFilters{}, 10)
		require.NoError(t, err)

		assert.Equal(t, lexical, hybrid, "degraded hybrid equals plain lexical search")
	})

	t.Run("degrades to lexical without a vector index", func(t *testing.T) {
		store := seedStore(t, storedDoc("a"))
		engine := &stubEngine{hits: []driven.SearchHit{{DocID: "a", Score: 9}}}

		s := NewSearcher(store, engine, nil, nil)
		hybrid, err := s.HybridSearch(ctx, "query", domain.SearchFilters{}, 10)
		require.NoError(t, err)

		lexical, err := s.Search(ctx, "query", domain.SearchFilters{}, 10)
		require.NoError(t, err)

		assert.Equal(t, lexical, hybrid)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		s := NewSearcher(memory.NewDocStore(), &stubEngine{}, nil, nil)

		_, err := s.HybridSearch(ctx, "", domain.SearchFilters{}, 10)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSearcher_Passthrough(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t, storedDoc("a", "Analytics"))
	s := NewSearcher(store, &stubEngine{}, nil, nil)

	opts, err := s.Filters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Analytics"}, opts.Categories)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocuments)
}
