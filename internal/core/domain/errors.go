package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as an
	// empty search query.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file extension outside the supported set.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrStoreUnavailable indicates the document store cannot be reached.
	// This is the only fatal condition for the search subsystem.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search degrades to lexical-only.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not
	// configured. Semantic similarity search is disabled.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrIndexNotBuilt indicates a query arrived before the first index
	// build. Callers receive empty results instead of this error; it is
	// used internally to distinguish the state.
	ErrIndexNotBuilt = errors.New("index not built")

	// ErrWatcherClosed indicates the change watcher has been closed.
	ErrWatcherClosed = errors.New("watcher closed")
)
