package analysis

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// Token length minimums per use. Keyword extraction keeps shorter tokens
// than categorisation, where short tokens add mostly noise.
const (
	MinTokenLengthIndex    = 2
	MinTokenLengthKeywords = 3
	MinTokenLengthCategory = 4
)

// Config controls the analysis pipeline.
type Config struct {
	// MinTokenLength drops tokens shorter than this after normalisation.
	MinTokenLength int

	// Stemming applies suffix-stripping via the Snowball stemmer.
	Stemming bool

	// Stopwords removes common English words.
	Stopwords bool
}

// DefaultConfig returns the configuration used for index building.
func DefaultConfig() Config {
	return Config{
		MinTokenLength: MinTokenLengthIndex,
		Stemming:       true,
		Stopwords:      true,
	}
}

// stopwords is the fixed stop-word set shared by all analysis passes.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "all": {},
	"an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"because": {}, "been": {}, "before": {}, "being": {}, "below": {},
	"between": {}, "both": {}, "but": {}, "by": {}, "can": {}, "did": {},
	"do": {}, "does": {}, "doing": {}, "down": {}, "during": {}, "each": {},
	"few": {}, "for": {}, "from": {}, "further": {}, "had": {}, "has": {},
	"have": {}, "having": {}, "he": {}, "her": {}, "here": {}, "hers": {},
	"him": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "its": {}, "just": {}, "me": {}, "more": {},
	"most": {}, "my": {}, "no": {}, "nor": {}, "not": {}, "now": {},
	"of": {}, "off": {}, "on": {}, "once": {}, "only": {}, "or": {},
	"other": {}, "our": {}, "out": {}, "over": {}, "own": {}, "same": {},
	"she": {}, "should": {}, "so": {}, "some": {}, "such": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"to": {}, "too": {}, "under": {}, "until": {}, "up": {}, "very": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "whom": {}, "why": {}, "will": {},
	"with": {}, "you": {}, "your": {}, "yours": {},
}

// Analyze transforms raw text into normalised tokens using the default
// index configuration.
func Analyze(text string) []string {
	return AnalyzeWithConfig(text, DefaultConfig())
}

// AnalyzeWithConfig transforms raw text into normalised tokens: split on
// non-alphanumeric runes, lower-case, drop stop words, drop short tokens,
// stem. The function is pure; identical input yields identical output.
func AnalyzeWithConfig(text string, cfg Config) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if cfg.Stopwords {
			if _, ok := stopwords[w]; ok {
				continue
			}
		}
		if len(w) < cfg.MinTokenLength {
			continue
		}
		if cfg.Stemming {
			w = snowballeng.Stem(w, false)
		}
		if len(w) < cfg.MinTokenLength {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}
