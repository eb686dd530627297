package analysis

import (
	"math"
	"sort"
	"sync"
)

// KeywordExtractor ranks tokens by term frequency weighted by inverse
// document frequency over the corpus seen so far. Document frequencies
// accumulate as documents are ingested; the extractor is safe for
// concurrent use.
type KeywordExtractor struct {
	mu       sync.Mutex
	docCount int
	docFreq  map[string]int
}

// NewKeywordExtractor creates an extractor with an empty corpus.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{docFreq: make(map[string]int)}
}

// Extract records the token stream as one more corpus document and
// returns the top descriptive keywords, most important first. Ordering
// is deterministic: score descending, then frequency descending, then
// alphabetical.
func (e *KeywordExtractor) Extract(tokens []string, top int) []string {
	if len(tokens) == 0 || top <= 0 {
		return nil
	}

	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}

	e.mu.Lock()
	e.docCount++
	for t := range freq {
		e.docFreq[t]++
	}
	n := e.docCount
	idf := make(map[string]float64, len(freq))
	for t := range freq {
		idf[t] = math.Log(1 + float64(n)/float64(1+e.docFreq[t]))
	}
	e.mu.Unlock()

	type scored struct {
		term  string
		tf    int
		score float64
	}
	ranked := make([]scored, 0, len(freq))
	for t, tf := range freq {
		ranked = append(ranked, scored{term: t, tf: tf, score: float64(tf) * idf[t]})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].tf != ranked[j].tf {
			return ranked[i].tf > ranked[j].tf
		}
		return ranked[i].term < ranked[j].term
	})

	if len(ranked) > top {
		ranked = ranked[:top]
	}
	keywords := make([]string, len(ranked))
	for i, r := range ranked {
		keywords[i] = r.term
	}
	return keywords
}

// Reset clears the accumulated corpus statistics. Used by tests to
// reproduce deterministic keyword ranking.
func (e *KeywordExtractor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docCount = 0
	e.docFreq = make(map[string]int)
}
