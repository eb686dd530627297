package analysis

import (
	"strings"
	"unicode/utf8"
)

// DefaultPreviewLength is the character budget for document previews.
const DefaultPreviewLength = 200

// BuildPreview selects complete sentences from the content up to the
// length budget. Whole sentences are preferred over mid-sentence cuts;
// when not even the first sentence fits, the content is hard-truncated
// with an ellipsis.
func BuildPreview(content string, budget int) string {
	cleaned := strings.Join(strings.Fields(content), " ")
	if cleaned == "" {
		return ""
	}
	if len(cleaned) <= budget {
		return cleaned
	}

	var b strings.Builder
	for _, sentence := range SplitSentences(cleaned) {
		if b.Len()+len(sentence)+1 > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sentence)
	}
	if b.Len() > 0 {
		return b.String()
	}

	return cleaned[:TruncateOnRune(cleaned, budget)] + "..."
}

// TruncateOnRune returns the largest cut point not exceeding limit that
// does not split a multi-byte rune.
func TruncateOnRune(s string, limit int) int {
	if limit >= len(s) {
		return len(s)
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return limit
}

// SplitSentences splits content into sentences on common terminators.
func SplitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			s := strings.TrimSpace(current.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
