package driven

import "context"

// VectorIndex provides semantic similarity search over document
// embeddings.
type VectorIndex interface {
	// Add inserts or replaces the vector for the given document ID.
	Add(ctx context.Context, docID string, embedding []float32) error

	// Delete removes a document's vector from the index.
	Delete(ctx context.Context, docID string) error

	// Search finds the k most similar documents to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// DocID is the matched document.
	DocID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
