package categorizer

import (
	"math"
	"sync"

	"github.com/jbrukh/bayesian"
)

// minObservations is the number of training examples the classifier must
// see before its predictions are trusted. Below this the rule-based
// scores stand alone.
const minObservations = 10

// Classifier is an online multinomial naive Bayes classifier over
// normalised token streams. Weights grow as documents are ingested; the
// instance owns its state explicitly and can be reset, so tests can
// reproduce deterministic classification.
type Classifier struct {
	mu           sync.Mutex
	classes      []bayesian.Class
	model        *bayesian.Classifier
	observations int
	seenClasses  map[bayesian.Class]struct{}
}

// NewClassifier creates a classifier over the given category names.
// At least two categories are required.
func NewClassifier(names []string) *Classifier {
	classes := make([]bayesian.Class, len(names))
	for i, n := range names {
		classes[i] = bayesian.Class(n)
	}
	return &Classifier{
		classes:     classes,
		model:       bayesian.NewClassifier(classes...),
		seenClasses: make(map[bayesian.Class]struct{}),
	}
}

// Learn feeds one labelled token stream into the model.
func (c *Classifier) Learn(tokens []string, category string) {
	if len(tokens) == 0 {
		return
	}
	class := bayesian.Class(category)
	if !c.knownClass(class) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.model.Learn(tokens, class)
	c.observations++
	c.seenClasses[class] = struct{}{}
}

// Predict returns the most probable category and its probability.
// It returns ("", 0) while the model has not accumulated enough
// observations across at least two distinct classes to be meaningful,
// and on long token streams whose probability products underflow.
func (c *Classifier) Predict(tokens []string) (string, float64) {
	if len(tokens) == 0 {
		return "", 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.observations < minObservations || len(c.seenClasses) < 2 {
		return "", 0
	}

	scores, inx, strict, err := c.model.SafeProbScores(tokens)
	if err != nil || !strict {
		return "", 0
	}
	if conf := scores[inx]; !math.IsNaN(conf) {
		return string(c.classes[inx]), conf
	}
	return "", 0
}

// Observations returns the number of training examples seen since the
// last reset.
func (c *Classifier) Observations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observations
}

// Reset discards all learned weights, returning the classifier to its
// untrained state.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = bayesian.NewClassifier(c.classes...)
	c.observations = 0
	c.seenClasses = make(map[bayesian.Class]struct{})
}

func (c *Classifier) knownClass(class bayesian.Class) bool {
	for _, cl := range c.classes {
		if cl == class {
			return true
		}
	}
	return false
}
