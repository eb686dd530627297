// Package analysis provides text normalisation shared by categorisation
// and indexing: tokenisation, stop-word removal, stemming, keyword
// extraction and preview generation.
package analysis
