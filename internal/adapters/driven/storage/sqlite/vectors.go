package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

// SaveVector stores or replaces the embedding for the document. The
// document row must already exist; vectors are removed with it on
// delete.
func (s *Store) SaveVector(ctx context.Context, docID string, embedding []float32) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document_vectors (document_id, embedding, dimensions)
		VALUES (?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			embedding = excluded.embedding,
			dimensions = excluded.dimensions
	`, docID, encodeVector(embedding), len(embedding))
	if err != nil {
		return fmt.Errorf("saving vector: %w", err)
	}
	return nil
}

// DeleteVector removes the document's embedding. Unknown IDs are a
// no-op.
func (s *Store) DeleteVector(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM document_vectors WHERE document_id = ?", docID)
	if err != nil {
		return fmt.Errorf("deleting vector: %w", err)
	}
	return nil
}

// LoadVectors returns every stored embedding keyed by document ID.
func (s *Store) LoadVectors(ctx context.Context) (map[string][]float32, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT document_id, embedding FROM document_vectors")
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	vectors := make(map[string][]float32)
	for rows.Next() {
		var docID string
		var blob []byte
		if err := rows.Scan(&docID, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("vector for %s: %w", docID, err)
		}
		vectors[docID] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return vectors, nil
}

// encodeVector packs the embedding as little-endian float32 bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding blob of %d bytes", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
