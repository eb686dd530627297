package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docdex/docdex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*Store)(nil)

const (
	recentLimit        = 5
	topCategoriesLimit = 5
)

// Store is the SQLite-backed document store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates the store at the specified data directory.
// If dataDir is empty, defaults to ~/.docdex/data/docdex.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docdex", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "docdex.db")

	// WAL mode for better concurrency between the watch loop and
	// queries. Foreign keys go in the DSN so every pooled connection
	// enforces the cascade rules.
	db, err := sql.Open("sqlite",
		dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert stores or wholly replaces the record for the document's path.
func (s *Store) Upsert(ctx context.Context, doc *domain.Document) (string, error) {
	id := doc.ID
	if id == "" {
		id = domain.DocumentID(doc.FullPath)
	}

	keywordsJSON, err := json.Marshal(doc.Keywords)
	if err != nil {
		return "", fmt.Errorf("marshalling keywords: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// A stale row for the same path under a different ID must not survive.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE full_path = ? AND id <> ?", doc.FullPath, id); err != nil {
		return "", fmt.Errorf("clearing stale record: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents
			(id, filename, path, full_path, content, extension, size,
			 created_at, modified_at, confidence, project, team, keywords, preview)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			path = excluded.path,
			full_path = excluded.full_path,
			content = excluded.content,
			extension = excluded.extension,
			size = excluded.size,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at,
			confidence = excluded.confidence,
			project = excluded.project,
			team = excluded.team,
			keywords = excluded.keywords,
			preview = excluded.preview
	`, id, doc.Filename, doc.Path, doc.FullPath, doc.Content, doc.Extension, doc.Size,
		doc.Created, doc.Modified, doc.Confidence, doc.Project, doc.Team,
		string(keywordsJSON), doc.Preview)
	if err != nil {
		return "", fmt.Errorf("saving document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM document_categories WHERE document_id = ?", id); err != nil {
		return "", fmt.Errorf("clearing categories: %w", err)
	}
	for pos, category := range doc.Categories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_categories (document_id, category, position)
			VALUES (?, ?, ?)
		`, id, category, pos); err != nil {
			return "", fmt.Errorf("saving category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

const documentColumns = `id, filename, path, full_path, content, extension, size,
	created_at, modified_at, confidence, project, team, keywords, preview`

// GetByID retrieves a document by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadCategories(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetByPath retrieves a document by its full path.
func (s *Store) GetByPath(ctx context.Context, fullPath string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE full_path = ?", fullPath)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadCategories(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes the record for the path. Unknown paths are a no-op.
func (s *Store) Delete(ctx context.Context, fullPath string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE full_path = ?", fullPath)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListAll returns every record, ordered by full path.
func (s *Store) ListAll(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY full_path")
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	if err := s.loadAllCategories(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// FilterOptions returns the distinct metadata values, each list sorted.
func (s *Store) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	opts := &domain.FilterOptions{}

	queries := []struct {
		sql  string
		dest *[]string
	}{
		{"SELECT DISTINCT category FROM document_categories ORDER BY category", &opts.Categories},
		{"SELECT DISTINCT project FROM documents WHERE project <> '' ORDER BY project", &opts.Projects},
		{"SELECT DISTINCT team FROM documents WHERE team <> '' ORDER BY team", &opts.Teams},
		{"SELECT DISTINCT extension FROM documents WHERE extension <> '' ORDER BY extension", &opts.Extensions},
	}

	for _, q := range queries {
		values, err := s.queryStrings(ctx, q.sql)
		if err != nil {
			return nil, err
		}
		*q.dest = values
	}
	return opts, nil
}

// Stats aggregates corpus statistics.
func (s *Store) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(size), 0),
		       COUNT(DISTINCT CASE WHEN project <> '' THEN project END),
		       COUNT(DISTINCT CASE WHEN team <> '' THEN team END)
		FROM documents
	`)
	if err := row.Scan(&stats.TotalDocuments, &stats.TotalSize,
		&stats.TotalProjects, &stats.TotalTeams); err != nil {
		return nil, fmt.Errorf("scanning totals: %w", err)
	}

	row = s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT category) FROM document_categories")
	if err := row.Scan(&stats.TotalCategories); err != nil {
		return nil, fmt.Errorf("scanning category count: %w", err)
	}

	recent, err := s.recentDocuments(ctx)
	if err != nil {
		return nil, err
	}
	stats.RecentDocuments = recent

	catRows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS n FROM document_categories
		GROUP BY category ORDER BY n DESC, category LIMIT ?
	`, topCategoriesLimit)
	if err != nil {
		return nil, fmt.Errorf("querying top categories: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var cc domain.CategoryCount
		if err := catRows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		stats.TopCategories = append(stats.TopCategories, cc)
	}
	if err := catRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating top categories: %w", err)
	}

	extRows, err := s.db.QueryContext(ctx, `
		SELECT extension, COUNT(*) AS n FROM documents
		WHERE extension <> '' GROUP BY extension ORDER BY n DESC, extension
	`)
	if err != nil {
		return nil, fmt.Errorf("querying file types: %w", err)
	}
	defer extRows.Close()
	for extRows.Next() {
		var ec domain.ExtensionCount
		if err := extRows.Scan(&ec.Extension, &ec.Count); err != nil {
			return nil, fmt.Errorf("scanning file type: %w", err)
		}
		stats.FileTypeBreakdown = append(stats.FileTypeBreakdown, ec)
	}
	if err := extRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating file types: %w", err)
	}

	return stats, nil
}

// recentDocuments loads the most recently modified records, newest first.
func (s *Store) recentDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+documentColumns+` FROM documents
		 ORDER BY modified_at DESC, full_path LIMIT ?`, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("querying recent documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent documents: %w", err)
	}

	if err := s.loadAllCategories(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// loadCategories fills the document's ordered category list.
func (s *Store) loadCategories(ctx context.Context, doc *domain.Document) error {
	categories, err := s.queryStrings(ctx,
		"SELECT category FROM document_categories WHERE document_id = ? ORDER BY position", doc.ID)
	if err != nil {
		return err
	}
	doc.Categories = categories
	return nil
}

// loadAllCategories fills category lists for a batch of documents with a
// single query.
func (s *Store) loadAllCategories(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, category FROM document_categories ORDER BY document_id, position
	`)
	if err != nil {
		return fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	byDoc := make(map[string][]string)
	for rows.Next() {
		var docID, category string
		if err := rows.Scan(&docID, &category); err != nil {
			return fmt.Errorf("scanning category: %w", err)
		}
		byDoc[docID] = append(byDoc[docID], category)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating categories: %w", err)
	}

	for i := range docs {
		docs[i].Categories = byDoc[docs[i].ID]
	}
	return nil
}

func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying values: %w", err)
	}
	defer rows.Close()

	var values []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating values: %w", err)
	}
	return values, nil
}

// scanner abstracts *sql.Row and *sql.Rows for document scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocumentFields(sc scanner) (*domain.Document, error) {
	var doc domain.Document
	var created, modified sql.NullTime
	var keywordsJSON string

	if err := sc.Scan(&doc.ID, &doc.Filename, &doc.Path, &doc.FullPath, &doc.Content,
		&doc.Extension, &doc.Size, &created, &modified, &doc.Confidence,
		&doc.Project, &doc.Team, &keywordsJSON, &doc.Preview); err != nil {
		return nil, err
	}

	if created.Valid {
		doc.Created = created.Time.UTC()
	}
	if modified.Valid {
		doc.Modified = modified.Time.UTC()
	}
	if keywordsJSON != "" {
		if err := json.Unmarshal([]byte(keywordsJSON), &doc.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshaling keywords: %w", err)
		}
	}
	return &doc, nil
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	doc, err := scanDocumentFields(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	doc, err := scanDocumentFields(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}
