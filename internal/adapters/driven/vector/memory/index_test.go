package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdex/docdex/internal/core/domain"
)

func TestIndex_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		ix := New()
		require.NoError(t, ix.Add(ctx, "exact", []float32{1, 0}))
		require.NoError(t, ix.Add(ctx, "close", []float32{1, 1}))
		require.NoError(t, ix.Add(ctx, "orthogonal", []float32{0, 1}))

		hits, err := ix.Search(ctx, []float32{1, 0}, 10)

		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, "exact", hits[0].DocID)
		assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
		assert.Equal(t, "close", hits[1].DocID)
		assert.Equal(t, "orthogonal", hits[2].DocID)
	})

	t.Run("magnitude does not affect ranking", func(t *testing.T) {
		ix := New()
		require.NoError(t, ix.Add(ctx, "small", []float32{1, 0}))
		require.NoError(t, ix.Add(ctx, "large", []float32{100, 0}))

		hits, err := ix.Search(ctx, []float32{2, 0}, 10)

		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.InDelta(t, hits[0].Similarity, hits[1].Similarity, 1e-6)
		assert.Equal(t, "large", hits[0].DocID, "equal similarity breaks by id")
	})

	t.Run("k truncates results", func(t *testing.T) {
		ix := New()
		require.NoError(t, ix.Add(ctx, "a", []float32{1, 0}))
		require.NoError(t, ix.Add(ctx, "b", []float32{0.9, 0.1}))
		require.NoError(t, ix.Add(ctx, "c", []float32{0.8, 0.2}))

		hits, err := ix.Search(ctx, []float32{1, 0}, 2)

		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("mismatched dimensions are skipped", func(t *testing.T) {
		ix := New()
		require.NoError(t, ix.Add(ctx, "flat", []float32{1, 0}))
		require.NoError(t, ix.Add(ctx, "deep", []float32{1, 0, 0}))

		hits, err := ix.Search(ctx, []float32{1, 0}, 10)

		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "flat", hits[0].DocID)
	})

	t.Run("empty query vector is rejected", func(t *testing.T) {
		ix := New()

		_, err := ix.Search(ctx, nil, 10)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestIndex_AddDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("add replaces an existing vector", func(t *testing.T) {
		ix := New()
		require.NoError(t, ix.Add(ctx, "a", []float32{1, 0}))
		require.NoError(t, ix.Add(ctx, "a", []float32{0, 1}))

		hits, err := ix.Search(ctx, []float32{0, 1}, 1)

		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
		assert.Equal(t, 1, ix.Size())
	})

	t.Run("delete removes the vector", func(t *testing.T) {
		ix := New()
		require.NoError(t, ix.Add(ctx, "a", []float32{1, 0}))

		require.NoError(t, ix.Delete(ctx, "a"))

		hits, err := ix.Search(ctx, []float32{1, 0}, 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("deleting an unknown id is a no-op", func(t *testing.T) {
		ix := New()

		assert.NoError(t, ix.Delete(ctx, "ghost"))
	})

	t.Run("zero vector is rejected", func(t *testing.T) {
		ix := New()

		err := ix.Add(ctx, "z", []float32{0, 0})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
