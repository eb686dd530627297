package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docdex/docdex/internal/analysis"
	"github.com/docdex/docdex/internal/categorizer"
	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
	"github.com/docdex/docdex/internal/core/ports/driving"
	"github.com/docdex/docdex/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// SupportedExtensions is the fixed set of file types considered for
// ingestion.
var SupportedExtensions = map[string]struct{}{
	".pdf": {}, ".docx": {}, ".doc": {}, ".txt": {}, ".md": {}, ".html": {}, ".pptx": {},
}

// Default ingestion parameters.
const (
	// DefaultEmbedPrefixLen bounds the text sent to the embedding
	// provider: filename plus a content prefix.
	DefaultEmbedPrefixLen = 5000

	// DefaultProviderTimeout bounds each external provider call.
	DefaultProviderTimeout = 30 * time.Second

	// DefaultWorkers is the bulk-scan concurrency.
	DefaultWorkers = 4
)

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithWorkers sets the bulk-scan worker count.
func WithWorkers(n int) IngestorOption {
	return func(i *Ingestor) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithProviderTimeout bounds extractor and embedding calls.
func WithProviderTimeout(d time.Duration) IngestorOption {
	return func(i *Ingestor) {
		if d > 0 {
			i.providerTimeout = d
		}
	}
}

// Ingestor turns raw files into structured, scored document records and
// keeps the search index in sync. Concurrent ingestion of distinct paths
// is independent; ingestion of the same path serialises on a per-path
// lock so records are never partially overwritten.
type Ingestor struct {
	docStore    driven.DocumentStore
	extractor   driven.TextExtractor
	categorizer *categorizer.Categorizer
	engine      driven.SearchEngine
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService

	root            string
	workers         int
	providerTimeout time.Duration

	mu        sync.Mutex
	pathLocks map[string]*sync.Mutex
}

// NewIngestor creates the ingestion pipeline. The vectorIndex and
// embedder are optional; when nil, ingestion is lexical-only.
func NewIngestor(
	docStore driven.DocumentStore,
	extractor driven.TextExtractor,
	cat *categorizer.Categorizer,
	engine driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	root string,
	opts ...IngestorOption,
) *Ingestor {
	ing := &Ingestor{
		docStore:        docStore,
		extractor:       extractor,
		categorizer:     cat,
		engine:          engine,
		vectorIndex:     vectorIndex,
		embedder:        embedder,
		root:            root,
		workers:         DefaultWorkers,
		providerTimeout: DefaultProviderTimeout,
		pathLocks:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest processes a single path end to end and reindexes.
func (i *Ingestor) Ingest(ctx context.Context, path string) (*domain.Document, error) {
	doc, err := i.ingestOne(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := i.Reindex(ctx); err != nil {
		return nil, fmt.Errorf("reindex: %w", err)
	}
	return doc, nil
}

// ingestOne runs the pipeline for one file without reindexing:
// stat, extract, categorise, preview, persist, embed.
func (i *Ingestor) ingestOne(ctx context.Context, path string) (*domain.Document, error) {
	unlock := i.lockPath(path)
	defer unlock()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := SupportedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}

	// Extraction is best-effort: unreadable or corrupt files degrade
	// to empty content rather than failing the ingestion.
	content := i.extractText(ctx, path, ext)

	filename := filepath.Base(path)
	result := i.categorizer.Categorize(content, filename)

	relPath := path
	if i.root != "" {
		if rel, relErr := filepath.Rel(i.root, path); relErr == nil {
			relPath = rel
		}
	}

	doc := &domain.Document{
		ID:        domain.DocumentID(path),
		Filename:  filename,
		Path:      relPath,
		FullPath:  path,
		Content:   content,
		Extension: ext,
		Size:      info.Size(),
		// Creation time is not portable; modification time stands in.
		Created:    info.ModTime(),
		Modified:   info.ModTime(),
		Categories: result.Categories,
		Confidence: result.Confidence,
		Project:    firstOrEmpty(result.Projects),
		Team:       result.Team,
		Keywords:   result.Keywords,
		Preview:    analysis.BuildPreview(content, analysis.DefaultPreviewLength),
	}

	// The store write is the one step that must not fail silently: an
	// unstored record would be unsearchable and undiscoverable.
	id, err := i.docStore.Upsert(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("upsert %s: %w", path, err)
	}
	doc.ID = id

	i.embedDocument(ctx, doc)

	logger.Info("Ingested %s (%s, %.2f)", filename, doc.PrimaryCategory(), doc.Confidence)
	return doc, nil
}

// IngestDirectory walks the root recursively and ingests every supported
// file with a bounded worker pool. Per-file failures are collected and
// reported; they never abort the batch. The index is rebuilt once at the
// end.
func (i *Ingestor) IngestDirectory(ctx context.Context, root string) (*driving.IngestReport, error) {
	report := &driving.IngestReport{JobID: uuid.NewString()}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if _, ok := SupportedExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	logger.Section("Bulk Ingestion")
	logger.Info("Job %s: %d files under %s", report.JobID, len(files), root)

	var reportMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	for _, path := range files {
		path := path
		g.Go(func() error {
			_, ingErr := i.ingestOne(gctx, path)

			reportMu.Lock()
			defer reportMu.Unlock()
			if ingErr != nil {
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", path, ingErr))
				logger.Error("Ingest %s failed: %v", path, ingErr)
				return nil // per-file failures do not abort the batch
			}
			report.Processed++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := i.Reindex(ctx); err != nil {
		return nil, fmt.Errorf("reindex: %w", err)
	}

	logger.Info("Job %s done: %d ingested, %d failed", report.JobID, report.Processed, report.Failed)
	return report, nil
}

// Remove deletes the record and vector for a path and reindexes.
// Removing an unknown path is a no-op.
func (i *Ingestor) Remove(ctx context.Context, path string) error {
	unlock := i.lockPath(path)

	if err := i.docStore.Delete(ctx, path); err != nil {
		unlock()
		return fmt.Errorf("delete %s: %w", path, err)
	}
	if i.vectorIndex != nil {
		if err := i.vectorIndex.Delete(ctx, domain.DocumentID(path)); err != nil {
			logger.Warn("Vector delete for %s failed: %v", path, err)
		}
	}
	unlock()

	if err := i.Reindex(ctx); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	logger.Info("Removed %s", path)
	return nil
}

// HandleEvent applies one change event idempotently: the path's current
// state on disk decides between ingest and remove, so out-of-order
// add/modify/remove bursts converge on the right outcome.
func (i *Ingestor) HandleEvent(ctx context.Context, event domain.ChangeEvent) error {
	switch event.Type {
	case domain.ChangeAdd, domain.ChangeModify:
		if _, err := os.Stat(event.Path); err != nil {
			// The path vanished between the event and now.
			return i.Remove(ctx, event.Path)
		}
		_, err := i.Ingest(ctx, event.Path)
		return err
	case domain.ChangeRemove:
		return i.Remove(ctx, event.Path)
	default:
		return fmt.Errorf("%w: event type %q", domain.ErrInvalidInput, event.Type)
	}
}

// Reindex rebuilds the search index from the current record set. The
// engine swaps the new index in atomically, so queries in flight see
// either the old or the new index in full.
func (i *Ingestor) Reindex(ctx context.Context) error {
	docs, err := i.docStore.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	return i.engine.Build(ctx, docs)
}

// extractText calls the external extractor with a bounded timeout.
func (i *Ingestor) extractText(ctx context.Context, path, ext string) string {
	if i.extractor == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, i.providerTimeout)
	defer cancel()

	content, err := i.extractor.Extract(ctx, path, ext)
	if err != nil {
		logger.Warn("Extraction failed for %s: %v", path, err)
		return ""
	}
	return content
}

// embedDocument requests an embedding for a bounded prefix of the
// document and stores it in the vector index. Best-effort: failures are
// logged, never propagated.
func (i *Ingestor) embedDocument(ctx context.Context, doc *domain.Document) {
	if i.embedder == nil || i.vectorIndex == nil {
		return
	}

	text := doc.Filename + " " + doc.Content
	text = text[:analysis.TruncateOnRune(text, DefaultEmbedPrefixLen)]

	ctx, cancel := context.WithTimeout(ctx, i.providerTimeout)
	defer cancel()

	embedding, err := i.embedder.Embed(ctx, text)
	if err != nil || embedding == nil {
		logger.Warn("Embedding for %s unavailable: %v", doc.Filename, err)
		return
	}
	if err := i.vectorIndex.Add(ctx, doc.ID, embedding); err != nil {
		logger.Warn("Vector add for %s failed: %v", doc.Filename, err)
	}
}

// lockPath serialises ingestion per path. Distinct paths proceed in
// parallel.
func (i *Ingestor) lockPath(path string) func() {
	i.mu.Lock()
	lock, ok := i.pathLocks[path]
	if !ok {
		lock = &sync.Mutex{}
		i.pathLocks[path] = lock
	}
	i.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
