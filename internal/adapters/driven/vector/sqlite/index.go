// Package sqlite provides a durable vector index. Embeddings are
// persisted alongside the document store and answered from an
// in-memory copy loaded once at construction, so semantic search
// survives process restarts.
package sqlite

import (
	"context"
	"fmt"

	"github.com/docdex/docdex/internal/adapters/driven/vector/memory"
	"github.com/docdex/docdex/internal/core/ports/driven"
	"github.com/docdex/docdex/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// VectorStore is the persistence surface the index needs. The SQLite
// document store implements it.
type VectorStore interface {
	SaveVector(ctx context.Context, docID string, embedding []float32) error
	DeleteVector(ctx context.Context, docID string) error
	LoadVectors(ctx context.Context) (map[string][]float32, error)
}

// Index is a vector index backed by a VectorStore. Writes go to the
// store and the in-memory copy together; reads never touch the store.
type Index struct {
	store VectorStore
	mem   *memory.Index
}

// New loads every persisted embedding into memory. Vectors that no
// longer decode into a usable embedding are skipped with a warning.
func New(ctx context.Context, store VectorStore) (*Index, error) {
	vectors, err := store.LoadVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading vectors: %w", err)
	}

	mem := memory.New()
	for docID, vec := range vectors {
		if err := mem.Add(ctx, docID, vec); err != nil {
			logger.Warn("Skipping stored vector for %s: %v", docID, err)
		}
	}
	return &Index{store: store, mem: mem}, nil
}

// Add validates and indexes the embedding, then persists it.
func (ix *Index) Add(ctx context.Context, docID string, embedding []float32) error {
	if err := ix.mem.Add(ctx, docID, embedding); err != nil {
		return err
	}
	return ix.store.SaveVector(ctx, docID, embedding)
}

// Delete removes the embedding from memory and the store.
func (ix *Index) Delete(ctx context.Context, docID string) error {
	if err := ix.mem.Delete(ctx, docID); err != nil {
		return err
	}
	return ix.store.DeleteVector(ctx, docID)
}

// Search answers from the in-memory copy.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	return ix.mem.Search(ctx, query, k)
}

// Size returns the number of indexed vectors.
func (ix *Index) Size() int {
	return ix.mem.Size()
}

// Close is a no-op; the underlying store owns the connection.
func (ix *Index) Close() error { return nil }
