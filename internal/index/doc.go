// Package index implements the weighted multi-field inverted index that
// answers lexical queries. Every document contributes postings across
// seven fields, each with its own relevance boost; scoring combines
// within-field term frequency with the field boost and favours documents
// matching more distinct query terms.
package index
