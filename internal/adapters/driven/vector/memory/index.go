// Package memory provides an in-memory vector index using cosine
// similarity. Vectors are normalised on insert, so a query reduces to a
// dot product per document.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a thread-safe in-memory vector index keyed by document ID.
type Index struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// New creates an empty index.
func New() *Index {
	return &Index{vectors: make(map[string][]float32)}
}

// Add inserts or replaces the vector for the document.
func (ix *Index) Add(_ context.Context, docID string, embedding []float32) error {
	if docID == "" || len(embedding) == 0 {
		return fmt.Errorf("%w: empty id or embedding", domain.ErrInvalidInput)
	}

	normalised, err := normalise(embedding)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	ix.vectors[docID] = normalised
	ix.mu.Unlock()
	return nil
}

// Delete removes the document's vector. Unknown IDs are a no-op.
func (ix *Index) Delete(_ context.Context, docID string) error {
	ix.mu.Lock()
	delete(ix.vectors, docID)
	ix.mu.Unlock()
	return nil
}

// Search returns the k most similar documents, similarity descending,
// document ID ascending on ties.
func (ix *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	q, err := normalise(query)
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	hits := make([]driven.VectorHit, 0, len(ix.vectors))
	for id, vec := range ix.vectors {
		if len(vec) != len(q) {
			continue
		}
		hits = append(hits, driven.VectorHit{DocID: id, Similarity: dot(q, vec)})
	}
	ix.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].DocID < hits[j].DocID
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Size returns the number of stored vectors.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Close is a no-op for the in-memory index.
func (ix *Index) Close() error { return nil }

func normalise(vec []float32) ([]float32, error) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return nil, fmt.Errorf("%w: zero vector", domain.ErrInvalidInput)
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
