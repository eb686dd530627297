package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// FallbackCategory is assigned when no taxonomy category scores above the
// minimum confidence, or when a document yields no tokens at all.
const FallbackCategory = "General"

// Document represents an ingested office document with its extracted text
// and assigned organisational metadata.
type Document struct {
	// ID is derived from FullPath. Re-ingesting the same path always
	// produces the same ID, which is what makes upserts idempotent.
	ID string

	// Filename is the base name of the file.
	Filename string

	// Path is the path relative to the documents root.
	Path string

	// FullPath is the absolute path on disk. Unique across the corpus.
	FullPath string

	// Content is the extracted plain text. Empty when extraction failed.
	Content string

	// Extension is the lower-cased file extension including the dot.
	Extension string

	// Size is the file size in bytes.
	Size int64

	// Created is the filesystem creation time where available.
	Created time.Time

	// Modified is the filesystem modification time.
	Modified time.Time

	// Categories holds assigned taxonomy categories, primary first.
	Categories []string

	// Confidence is the normalised score of the primary category.
	Confidence float64

	// Project is the extracted project identifier. Empty when none found.
	Project string

	// Team is the extracted team or department tag. Empty when none found.
	Team string

	// Keywords holds the top descriptive keywords, most important first.
	Keywords []string

	// Preview is a short human-readable summary built from whole sentences.
	Preview string
}

// DocumentID derives the stable identifier for a document path.
// Same path always yields the same ID; content never influences it.
func DocumentID(fullPath string) string {
	sum := sha256.Sum256([]byte(fullPath))
	return hex.EncodeToString(sum[:])[:16]
}

// PrimaryCategory returns the first assigned category, or the fallback
// when the document carries none.
func (d *Document) PrimaryCategory() string {
	if len(d.Categories) == 0 {
		return FallbackCategory
	}
	return d.Categories[0]
}

// HasCategory reports whether the document is assigned the given category.
func (d *Document) HasCategory(category string) bool {
	for _, c := range d.Categories {
		if c == category {
			return true
		}
	}
	return false
}
