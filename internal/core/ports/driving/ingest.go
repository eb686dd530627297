package driving

import (
	"context"

	"github.com/docdex/docdex/internal/core/domain"
)

// IngestReport summarises a bulk ingestion run.
type IngestReport struct {
	// JobID uniquely identifies the run.
	JobID string

	// Processed is the number of successfully ingested documents.
	Processed int

	// Failed is the number of per-file failures. Failures never abort
	// the batch.
	Failed int

	// Errors holds one message per failed file.
	Errors []string
}

// IngestService turns raw files into searchable document records.
type IngestService interface {
	// Ingest processes a single path end to end: extract, categorise,
	// persist, embed, index. Re-ingesting a known path fully replaces
	// its record.
	Ingest(ctx context.Context, path string) (*domain.Document, error)

	// IngestDirectory walks the root recursively, ingesting every
	// supported file. Per-file failures are collected, not fatal.
	IngestDirectory(ctx context.Context, root string) (*IngestReport, error)

	// Remove deletes the record for a path and reindexes.
	Remove(ctx context.Context, path string) error

	// HandleEvent applies one change-watcher event idempotently.
	HandleEvent(ctx context.Context, event domain.ChangeEvent) error
}
