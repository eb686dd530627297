package domain

import "time"

// SearchFilters narrows a ranked candidate set after scoring.
// Zero-valued fields impose no constraint.
type SearchFilters struct {
	// Extension restricts results to an exact file extension (".pdf").
	Extension string

	// Category restricts results to documents assigned the category.
	Category string

	// Project restricts results to an exact project tag.
	Project string

	// Team restricts results to an exact team tag.
	Team string

	// DateFrom is the inclusive lower bound on modification time.
	DateFrom *time.Time

	// DateTo is the inclusive upper bound on modification time.
	DateTo *time.Time
}

// Empty reports whether no filter field is set.
func (f SearchFilters) Empty() bool {
	return f.Extension == "" && f.Category == "" && f.Project == "" &&
		f.Team == "" && f.DateFrom == nil && f.DateTo == nil
}

// Match reports whether the document survives every set filter.
// Date bounds are inclusive on both ends.
func (f SearchFilters) Match(doc *Document) bool {
	if f.Extension != "" && doc.Extension != f.Extension {
		return false
	}
	if f.Category != "" && !doc.HasCategory(f.Category) {
		return false
	}
	if f.Project != "" && doc.Project != f.Project {
		return false
	}
	if f.Team != "" && doc.Team != f.Team {
		return false
	}
	if f.DateFrom != nil && doc.Modified.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && doc.Modified.After(*f.DateTo) {
		return false
	}
	return true
}

// RankAbsent marks a rank position for a document missing from one of the
// two fused source lists.
const RankAbsent = -1

// SearchResult is a ranked search hit with its scoring provenance.
type SearchResult struct {
	// Document is the matched document record.
	Document Document

	// Score is the final score: the lexical score for plain search, or
	// the fused score for hybrid search. Never negative.
	Score float64

	// LexicalScore is the weighted term-frequency score from the
	// inverted index, when the document appeared in the lexical list.
	LexicalScore float64

	// SemanticScore is the cosine similarity from the vector search,
	// when the document appeared in the semantic list.
	SemanticScore float64

	// LexicalRank is the 0-based position in the lexical list, or
	// RankAbsent when the document only surfaced semantically.
	LexicalRank int

	// SemanticRank is the 0-based position in the semantic list, or
	// RankAbsent when the document only surfaced lexically.
	SemanticRank int
}
