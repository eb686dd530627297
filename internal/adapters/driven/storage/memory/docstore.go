// Package memory provides an in-memory DocumentStore, used in tests and
// as a lightweight backend when persistence is not needed.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
)

// Ensure DocStore implements the interface.
var _ driven.DocumentStore = (*DocStore)(nil)

const (
	recentLimit        = 5
	topCategoriesLimit = 5
)

// DocStore is a thread-safe in-memory document store keyed by path.
type DocStore struct {
	mu     sync.RWMutex
	byID   map[string]domain.Document
	byPath map[string]string
}

// NewDocStore creates an empty in-memory store.
func NewDocStore() *DocStore {
	return &DocStore{
		byID:   make(map[string]domain.Document),
		byPath: make(map[string]string),
	}
}

// Upsert stores or wholly replaces the record for the document's path.
func (s *DocStore) Upsert(_ context.Context, doc *domain.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := doc.ID
	if id == "" {
		id = domain.DocumentID(doc.FullPath)
	}

	// Re-ingesting a path replaces its record even if the ID changed.
	if oldID, ok := s.byPath[doc.FullPath]; ok && oldID != id {
		delete(s.byID, oldID)
	}

	stored := *doc
	stored.ID = id
	s.byID[id] = stored
	s.byPath[doc.FullPath] = id
	return id, nil
}

// GetByID retrieves a document by ID.
func (s *DocStore) GetByID(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetByPath retrieves a document by its full path.
func (s *DocStore) GetByPath(_ context.Context, fullPath string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPath[fullPath]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.byID[id]
	return &doc, nil
}

// Delete removes the record for the path. Unknown paths are a no-op.
func (s *DocStore) Delete(_ context.Context, fullPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byPath[fullPath]
	if !ok {
		return nil
	}
	delete(s.byPath, fullPath)
	delete(s.byID, id)
	return nil
}

// ListAll returns every record, ordered by full path for determinism.
func (s *DocStore) ListAll(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.byID))
	for _, doc := range s.byID {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].FullPath < docs[j].FullPath })
	return docs, nil
}

// FilterOptions returns the distinct metadata values, each list sorted.
func (s *DocStore) FilterOptions(_ context.Context) (*domain.FilterOptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make(map[string]struct{})
	projects := make(map[string]struct{})
	teams := make(map[string]struct{})
	extensions := make(map[string]struct{})

	for _, doc := range s.byID {
		for _, c := range doc.Categories {
			categories[c] = struct{}{}
		}
		if doc.Project != "" {
			projects[doc.Project] = struct{}{}
		}
		if doc.Team != "" {
			teams[doc.Team] = struct{}{}
		}
		if doc.Extension != "" {
			extensions[doc.Extension] = struct{}{}
		}
	}

	return &domain.FilterOptions{
		Categories: sortedKeys(categories),
		Projects:   sortedKeys(projects),
		Teams:      sortedKeys(teams),
		Extensions: sortedKeys(extensions),
	}, nil
}

// Stats aggregates corpus statistics.
func (s *DocStore) Stats(_ context.Context) (*domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.Stats{TotalDocuments: len(s.byID)}

	categories := make(map[string]int)
	projects := make(map[string]struct{})
	teams := make(map[string]struct{})
	extensions := make(map[string]int)

	docs := make([]domain.Document, 0, len(s.byID))
	for _, doc := range s.byID {
		docs = append(docs, doc)
		stats.TotalSize += doc.Size
		for _, c := range doc.Categories {
			categories[c]++
		}
		if doc.Project != "" {
			projects[doc.Project] = struct{}{}
		}
		if doc.Team != "" {
			teams[doc.Team] = struct{}{}
		}
		if doc.Extension != "" {
			extensions[doc.Extension]++
		}
	}

	stats.TotalCategories = len(categories)
	stats.TotalProjects = len(projects)
	stats.TotalTeams = len(teams)

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].Modified.Equal(docs[j].Modified) {
			return docs[i].Modified.After(docs[j].Modified)
		}
		return docs[i].FullPath < docs[j].FullPath
	})
	if len(docs) > recentLimit {
		docs = docs[:recentLimit]
	}
	stats.RecentDocuments = docs

	for cat, n := range categories {
		stats.TopCategories = append(stats.TopCategories, domain.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(stats.TopCategories, func(i, j int) bool {
		if stats.TopCategories[i].Count != stats.TopCategories[j].Count {
			return stats.TopCategories[i].Count > stats.TopCategories[j].Count
		}
		return stats.TopCategories[i].Category < stats.TopCategories[j].Category
	})
	if len(stats.TopCategories) > topCategoriesLimit {
		stats.TopCategories = stats.TopCategories[:topCategoriesLimit]
	}

	for ext, n := range extensions {
		stats.FileTypeBreakdown = append(stats.FileTypeBreakdown, domain.ExtensionCount{Extension: ext, Count: n})
	}
	sort.Slice(stats.FileTypeBreakdown, func(i, j int) bool {
		if stats.FileTypeBreakdown[i].Count != stats.FileTypeBreakdown[j].Count {
			return stats.FileTypeBreakdown[i].Count > stats.FileTypeBreakdown[j].Count
		}
		return stats.FileTypeBreakdown[i].Extension < stats.FileTypeBreakdown[j].Extension
	})

	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *DocStore) Close() error { return nil }

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
