package driven

import "context"

// TextExtractor converts a file on disk into plain text.
// Extraction is best-effort: unsupported or corrupt files yield an empty
// string rather than an error that would fail the whole ingestion.
type TextExtractor interface {
	// Extract returns the plain text for the file, or "" when the
	// format cannot be decoded.
	Extract(ctx context.Context, path, extension string) (string, error)
}
