package index

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/docdex/docdex/internal/analysis"
	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/core/ports/driven"
	"github.com/docdex/docdex/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Field identifies one of the indexed document fields.
type Field int

// Indexed fields. Filename and categorial metadata are weighted far
// above raw content: short document titles are highly discriminative.
const (
	FieldFilename Field = iota
	FieldContent
	FieldCategories
	FieldProject
	FieldTeam
	FieldKeywords
	FieldPath
	fieldCount
)

// Boosts are the per-field relevance multipliers.
var Boosts = [fieldCount]float64{
	FieldFilename:   10,
	FieldContent:    5,
	FieldCategories: 8,
	FieldProject:    7,
	FieldTeam:       7,
	FieldKeywords:   6,
	FieldPath:       3,
}

// posting records that a term occurs in one field of one document with
// some frequency.
type posting struct {
	docID string
	field Field
	tf    int
}

// Engine is the inverted index. Build constructs a fresh posting table
// and swaps it in under the lock, so queries always see either the old
// or the new index in full.
type Engine struct {
	mu       sync.RWMutex
	postings map[string][]posting
	docs     int
	built    bool
}

// NewEngine creates an empty, unbuilt engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Build replaces the entire index with postings for the given records.
// Building twice from identical records yields identical query results.
func (e *Engine) Build(_ context.Context, docs []domain.Document) error {
	postings := make(map[string][]posting)

	for i := range docs {
		addDocument(postings, &docs[i])
	}

	e.mu.Lock()
	e.postings = postings
	e.docs = len(docs)
	e.built = true
	e.mu.Unlock()

	logger.Debug("Index built: %d documents, %d terms", len(docs), len(postings))
	return nil
}

// Documents returns the number of documents in the current index.
func (e *Engine) Documents() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docs
}

// Search answers a ranked lexical query. A document's score sums
// tf * boost over every (term, field) match. Ranking is by distinct
// query terms matched first, then score, so covering more of the query
// always outranks repeating one term. Ordering is deterministic:
// document ID ascending breaks remaining ties.
func (e *Engine) Search(_ context.Context, query string, limit int) ([]driven.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}

	terms := analysis.Analyze(query)
	if len(terms) == 0 {
		return []driven.SearchHit{}, nil
	}

	// Distinct terms only: repeating a word in the query must not
	// double its contribution.
	distinct := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		distinct = append(distinct, t)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.built {
		// Index not yet built: empty result set, not an error.
		return []driven.SearchHit{}, nil
	}

	scores := make(map[string]float64)
	matched := make(map[string]int)
	for _, term := range distinct {
		hit := make(map[string]struct{})
		for _, p := range e.postings[term] {
			scores[p.docID] += float64(p.tf) * Boosts[p.field]
			hit[p.docID] = struct{}{}
		}
		for id := range hit {
			matched[id]++
		}
	}

	hits := make([]driven.SearchHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, driven.SearchHit{DocID: id, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if matched[hits[i].DocID] != matched[hits[j].DocID] {
			return matched[hits[i].DocID] > matched[hits[j].DocID]
		}
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// addDocument tokenises each field and accumulates postings.
func addDocument(postings map[string][]posting, doc *domain.Document) {
	fields := [fieldCount]string{
		FieldFilename:   doc.Filename,
		FieldContent:    doc.Content,
		FieldCategories: strings.Join(doc.Categories, " "),
		FieldProject:    doc.Project,
		FieldTeam:       doc.Team,
		FieldKeywords:   strings.Join(doc.Keywords, " "),
		FieldPath:       doc.Path,
	}

	for field, text := range fields {
		if text == "" {
			continue
		}
		freq := make(map[string]int)
		for _, term := range analysis.Analyze(text) {
			freq[term]++
		}
		for term, tf := range freq {
			postings[term] = append(postings[term], posting{
				docID: doc.ID,
				field: Field(field),
				tf:    tf,
			})
		}
	}
}
