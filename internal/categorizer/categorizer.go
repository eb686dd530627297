package categorizer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/docdex/docdex/internal/analysis"
	"github.com/docdex/docdex/internal/core/domain"
	"github.com/docdex/docdex/internal/logger"
)

// Config holds the categoriser's tunable parameters. The thresholds are
// empirically chosen and deliberately kept as named knobs rather than
// hard-coded literals.
type Config struct {
	// MinimalContentTokens is the token count below which body text is
	// considered unreliable (scanned or unparseable files) and the
	// filename signal dominates.
	MinimalContentTokens int

	// FilenameBonus is the raw score added when a minimal-content
	// document's filename contains a category keyword or phrase.
	FilenameBonus float64

	// PhraseWeight multiplies phrase occurrences relative to
	// single-word keyword occurrences.
	PhraseWeight float64

	// ClassifierBoost multiplies a category's normalised score when the
	// online classifier confidently agrees, capped at 1.0.
	ClassifierBoost float64

	// ClassifierMinConfidence gates the classifier boost.
	ClassifierMinConfidence float64

	// TrainMinConfidence gates the online-learning feedback loop.
	TrainMinConfidence float64

	// MinConfidence is the floor below which the primary category falls
	// back to "General".
	MinConfidence float64

	MaxCategories int
	MaxProjects   int
	MaxKeywords   int
}

// DefaultConfig returns the standard categoriser parameters.
func DefaultConfig() Config {
	return Config{
		MinimalContentTokens:    40,
		FilenameBonus:           25,
		PhraseWeight:            3,
		ClassifierBoost:         1.5,
		ClassifierMinConfidence: 0.6,
		TrainMinConfidence:      0.3,
		MinConfidence:           0.1,
		MaxCategories:           3,
		MaxProjects:             5,
		MaxKeywords:             10,
	}
}

// Result is the categoriser's output for one document.
type Result struct {
	// Categories are the assigned taxonomy categories, primary first.
	Categories []string

	// Confidence is the primary category's normalised score in [0,1].
	Confidence float64

	// Projects are extracted project identifiers, longest first.
	Projects []string

	// Team is the extracted team tag, empty when none matched.
	Team string

	// Keywords are the top descriptive keywords.
	Keywords []string
}

// compiledCategory is a taxonomy entry prepared for matching: long
// keywords stemmed for token comparison, short keywords and phrases as
// matchers against the raw lower-cased text.
type compiledCategory struct {
	name     string
	stemmed  map[string]float64
	matchers []textMatcher
	rawTerms []string
}

type textMatcher struct {
	re     *regexp.Regexp
	text   string
	weight float64
}

// Categorizer maps (content, filename) to categories, confidence,
// projects, team and keywords. Safe for concurrent use; the only mutable
// state is the owned classifier and keyword extractor.
type Categorizer struct {
	cfg        Config
	compiled   []compiledCategory
	classifier *Classifier
	keywords   *analysis.KeywordExtractor
}

// New compiles the taxonomy and creates a categoriser with a fresh
// classifier and keyword extractor.
func New(taxonomy Taxonomy, cfg Config) *Categorizer {
	names := append(taxonomy.Names(), domain.FallbackCategory)
	c := &Categorizer{
		cfg:        cfg,
		classifier: NewClassifier(names),
		keywords:   analysis.NewKeywordExtractor(),
	}

	stemCfg := analysis.Config{MinTokenLength: 1, Stemming: true}
	for _, cat := range taxonomy.Categories() {
		cc := compiledCategory{name: cat.Name, stemmed: make(map[string]float64)}
		for _, k := range cat.Keywords {
			cc.rawTerms = append(cc.rawTerms, k.Term)
			if len(k.Term) < analysis.MinTokenLengthCategory {
				// Short keywords never survive token normalisation;
				// match them as whole words in the raw text instead.
				cc.matchers = append(cc.matchers, textMatcher{
					re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(k.Term) + `\b`),
					weight: k.Weight,
				})
				continue
			}
			stems := analysis.AnalyzeWithConfig(k.Term, stemCfg)
			if len(stems) == 1 {
				cc.stemmed[stems[0]] += k.Weight
			}
		}
		for _, p := range cat.Phrases {
			cc.rawTerms = append(cc.rawTerms, p.Text)
			cc.matchers = append(cc.matchers, textMatcher{
				text:   strings.ToLower(p.Text),
				weight: p.Weight * cfg.PhraseWeight,
			})
		}
		c.compiled = append(c.compiled, cc)
	}
	return c
}

// Classifier exposes the owned online classifier, mainly so callers can
// snapshot or reset it.
func (c *Categorizer) Classifier() *Classifier {
	return c.classifier
}

// Reset clears all learned state: classifier weights and corpus keyword
// statistics.
func (c *Categorizer) Reset() {
	c.classifier.Reset()
	c.keywords.Reset()
}

// Categorize scores the document against the taxonomy. It never fails:
// degenerate input yields the fallback category with zero confidence and
// no keywords.
func (c *Categorizer) Categorize(content, filename string) Result {
	raw := content + " " + filename
	rawLower := strings.ToLower(raw)

	catTokens := analysis.AnalyzeWithConfig(raw, analysis.Config{
		MinTokenLength: analysis.MinTokenLengthCategory,
		Stemming:       true,
		Stopwords:      true,
	})

	result := Result{
		Projects: ExtractProjects(raw, c.cfg.MaxProjects),
		Team:     ExtractTeam(raw),
	}

	if len(catTokens) == 0 {
		result.Categories = []string{domain.FallbackCategory}
		result.Confidence = 0
		return result
	}

	kwTokens := analysis.AnalyzeWithConfig(content, analysis.Config{
		MinTokenLength: analysis.MinTokenLengthKeywords,
		Stemming:       true,
		Stopwords:      true,
	})
	result.Keywords = c.keywords.Extract(kwTokens, c.cfg.MaxKeywords)

	scores := c.ruleScores(catTokens, rawLower, strings.ToLower(filename))
	normalized := normalizeScores(scores)

	c.applyClassifierBoost(catTokens, scores, normalized)

	names := make([]string, 0, len(normalized))
	for name, score := range normalized {
		if score > 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if normalized[names[i]] != normalized[names[j]] {
			return normalized[names[i]] > normalized[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > c.cfg.MaxCategories {
		names = names[:c.cfg.MaxCategories]
	}

	if len(names) == 0 || normalized[names[0]] < c.cfg.MinConfidence {
		result.Categories = []string{domain.FallbackCategory}
		if len(names) > 0 {
			result.Confidence = normalized[names[0]]
		}
	} else {
		result.Categories = names
		result.Confidence = normalized[names[0]]
	}

	// Online learning: confidently categorised documents become
	// training examples, including fallback assignments.
	if result.Confidence > c.cfg.TrainMinConfidence {
		c.classifier.Learn(catTokens, result.Categories[0])
		logger.Debug("Classifier learned %q (%d observations)",
			result.Categories[0], c.classifier.Observations())
	}

	return result
}

// ruleScores computes the raw keyword/phrase score for every category.
func (c *Categorizer) ruleScores(tokens []string, rawLower, filenameLower string) map[string]float64 {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}

	minimal := len(tokens) < c.cfg.MinimalContentTokens
	scores := make(map[string]float64, len(c.compiled))

	for _, cat := range c.compiled {
		var score float64
		for stem, weight := range cat.stemmed {
			score += float64(freq[stem]) * weight
		}
		for _, m := range cat.matchers {
			if m.re != nil {
				score += float64(len(m.re.FindAllStringIndex(rawLower, -1))) * m.weight
			} else {
				score += float64(strings.Count(rawLower, m.text)) * m.weight
			}
		}

		// Filename signal dominates when body text is unreliable.
		if minimal && c.filenameMatches(cat, filenameLower) {
			score += c.cfg.FilenameBonus
		}

		scores[cat.name] = score
	}
	return scores
}

func (c *Categorizer) filenameMatches(cat compiledCategory, filenameLower string) bool {
	for _, term := range cat.rawTerms {
		if strings.Contains(filenameLower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// normalizeScores divides by the maximum observed score, flooring the
// divisor at 1 to avoid division by zero. Confidence stays comparable
// across documents with very different raw magnitudes.
func normalizeScores(scores map[string]float64) map[string]float64 {
	maxScore := 1.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	normalized := make(map[string]float64, len(scores))
	for name, s := range scores {
		normalized[name] = s / maxScore
	}
	return normalized
}

// applyClassifierBoost raises a category's normalised score when the
// online classifier confidently predicts it and the rule-based score
// agrees it is plausible.
func (c *Categorizer) applyClassifierBoost(tokens []string, raw, normalized map[string]float64) {
	predicted, confidence := c.classifier.Predict(tokens)
	if predicted == "" || confidence < c.cfg.ClassifierMinConfidence {
		return
	}
	if raw[predicted] <= 0 {
		return
	}
	boosted := normalized[predicted] * c.cfg.ClassifierBoost
	if boosted > 1.0 {
		boosted = 1.0
	}
	logger.Debug("Classifier boost: %q %.2f -> %.2f (p=%.2f)",
		predicted, normalized[predicted], boosted, confidence)
	normalized[predicted] = boosted
}
