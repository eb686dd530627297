// Package extractor provides local plain-text extraction for supported
// document types. Formats without a local parser yield empty content;
// the pipeline then categorises on the filename alone.
package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/docdex/docdex/internal/core/ports/driven"
	"github.com/docdex/docdex/internal/logger"
)

// Ensure Local implements the interface.
var _ driven.TextExtractor = (*Local)(nil)

// maxFileSize caps how much of a file is read for extraction.
const maxFileSize = 10 << 20 // 10 MiB

var (
	htmlScriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	htmlTagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// htmlEntities covers the entities that commonly appear in exported
// office documents. Anything rarer is left as-is.
var htmlEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// Local extracts text from files on the local filesystem.
type Local struct{}

// New creates a local extractor.
func New() *Local {
	return &Local{}
}

// Extract returns the plain-text content of the file. Text formats are
// read directly, HTML is stripped of markup, and binary office formats
// return empty content.
func (l *Local) Extract(ctx context.Context, path, extension string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch extension {
	case ".txt", ".md":
		return readCapped(path, maxFileSize)
	case ".html":
		raw, err := readCapped(path, maxFileSize)
		if err != nil {
			return "", err
		}
		return StripHTML(raw), nil
	case ".pdf", ".docx", ".doc", ".pptx":
		// No local parser for binary office formats. The document is
		// still ingested; categorisation falls back to the filename.
		logger.Debug("No text extraction for %s, indexing metadata only", path)
		return "", nil
	default:
		return "", fmt.Errorf("extract %s: unsupported extension %q", path, extension)
	}
}

// StripHTML removes script and style blocks, tags and common entities,
// collapsing the remaining whitespace.
func StripHTML(raw string) string {
	text := htmlScriptRe.ReplaceAllString(raw, " ")
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = htmlEntities.Replace(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// readCapped reads at most limit bytes of the file, without buffering
// anything beyond the cap.
func readCapped(path string, limit int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
