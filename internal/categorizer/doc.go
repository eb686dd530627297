// Package categorizer assigns topical and organisational metadata to
// documents: taxonomy categories with confidence, project tags, a team
// tag, and descriptive keywords. Rule-based keyword scoring is combined
// with an online naive Bayes classifier that learns from every
// confidently categorised document.
package categorizer
