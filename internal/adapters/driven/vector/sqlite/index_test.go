package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storage "github.com/docdex/docdex/internal/adapters/driven/storage/sqlite"
	"github.com/docdex/docdex/internal/core/domain"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func upsertDoc(t *testing.T, s *storage.Store, path string) string {
	t.Helper()
	id, err := s.Upsert(context.Background(), &domain.Document{
		ID:       domain.DocumentID(path),
		Filename: path,
		Path:     path,
		FullPath: path,
		Modified: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return id
}

func TestIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("indexed vectors are searchable", func(t *testing.T) {
		store := newTestStore(t)
		idA := upsertDoc(t, store, "/docs/a.txt")
		idB := upsertDoc(t, store, "/docs/b.txt")

		ix, err := New(ctx, store)
		require.NoError(t, err)
		require.NoError(t, ix.Add(ctx, idA, []float32{1, 0}))
		require.NoError(t, ix.Add(ctx, idB, []float32{0, 1}))

		hits, err := ix.Search(ctx, []float32{1, 0.1}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, idA, hits[0].DocID)
	})

	t.Run("vectors outlive the index instance", func(t *testing.T) {
		store := newTestStore(t)
		id := upsertDoc(t, store, "/docs/a.txt")

		first, err := New(ctx, store)
		require.NoError(t, err)
		require.NoError(t, first.Add(ctx, id, []float32{0.6, 0.8}))

		// A fresh index over the same store stands in for a new
		// process: queries must still see the embedding.
		second, err := New(ctx, store)
		require.NoError(t, err)
		assert.Equal(t, 1, second.Size())

		hits, err := second.Search(ctx, []float32{0.6, 0.8}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, id, hits[0].DocID)
		assert.InDelta(t, 1.0, hits[0].Similarity, 0.001)
	})

	t.Run("delete removes the vector durably", func(t *testing.T) {
		store := newTestStore(t)
		id := upsertDoc(t, store, "/docs/a.txt")

		first, err := New(ctx, store)
		require.NoError(t, err)
		require.NoError(t, first.Add(ctx, id, []float32{1, 0}))
		require.NoError(t, first.Delete(ctx, id))

		assert.Zero(t, first.Size())

		second, err := New(ctx, store)
		require.NoError(t, err)
		assert.Zero(t, second.Size())
	})

	t.Run("rejects unusable embeddings before persisting", func(t *testing.T) {
		store := newTestStore(t)
		id := upsertDoc(t, store, "/docs/a.txt")

		ix, err := New(ctx, store)
		require.NoError(t, err)

		assert.ErrorIs(t, ix.Add(ctx, id, []float32{0, 0}), domain.ErrInvalidInput)
		assert.ErrorIs(t, ix.Add(ctx, id, nil), domain.ErrInvalidInput)

		second, err := New(ctx, store)
		require.NoError(t, err)
		assert.Zero(t, second.Size())
	})

	t.Run("removing the document clears its vector for later runs", func(t *testing.T) {
		store := newTestStore(t)
		doc := "/docs/a.txt"
		id := upsertDoc(t, store, doc)

		first, err := New(ctx, store)
		require.NoError(t, err)
		require.NoError(t, first.Add(ctx, id, []float32{1, 0}))

		require.NoError(t, store.Delete(ctx, doc))

		second, err := New(ctx, store)
		require.NoError(t, err)
		assert.Zero(t, second.Size())
	})
}
