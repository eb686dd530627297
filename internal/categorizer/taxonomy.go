package categorizer

// Keyword is a single-word taxonomy entry with a relevance weight.
type Keyword struct {
	Term   string
	Weight float64
}

// Phrase is a multi-word taxonomy entry matched by substring against the
// un-stemmed lower-cased text. Phrase hits score higher than keyword hits.
type Phrase struct {
	Text   string
	Weight float64
}

// Category is one taxonomy entry: a name with its weighted keyword and
// phrase lists.
type Category struct {
	Name     string
	Keywords []Keyword
	Phrases  []Phrase
}

// Taxonomy is the fixed mapping from category name to weighted keyword
// and phrase lists. It is immutable once loaded; only the classifier's
// learned weights change at runtime.
type Taxonomy struct {
	categories []Category
}

// Categories returns the taxonomy entries in their declared order.
func (t Taxonomy) Categories() []Category {
	return t.categories
}

// Names returns all category names in declared order.
func (t Taxonomy) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// NewTaxonomy builds a taxonomy from the given categories.
func NewTaxonomy(categories []Category) Taxonomy {
	return Taxonomy{categories: categories}
}

func kw(term string, weight float64) Keyword { return Keyword{Term: term, Weight: weight} }
func ph(text string, weight float64) Phrase  { return Phrase{Text: text, Weight: weight} }

// DefaultTaxonomy returns the built-in marketing document taxonomy.
func DefaultTaxonomy() Taxonomy {
	return NewTaxonomy([]Category{
		{
			Name: "Brand Strategy",
			Keywords: []Keyword{
				kw("brand", 1), kw("branding", 2), kw("identity", 1), kw("positioning", 1),
			},
			Phrases: []Phrase{ph("brand guide", 1), ph("style guide", 1)},
		},
		{
			Name: "Social Media",
			Keywords: []Keyword{
				kw("social", 1), kw("facebook", 1), kw("twitter", 1), kw("instagram", 1),
				kw("linkedin", 1), kw("post", 1), kw("hashtag", 2), kw("engagement", 1),
			},
		},
		{
			Name: "Content Marketing",
			Keywords: []Keyword{
				kw("blog", 1), kw("article", 1), kw("content", 1), kw("seo", 2),
				kw("editorial", 1), kw("copywriting", 2),
			},
		},
		{
			Name: "Email Marketing",
			Keywords: []Keyword{
				kw("email", 1), kw("newsletter", 2), kw("campaign", 1),
				kw("mailchimp", 2), kw("subscriber", 1), kw("drip", 1),
			},
		},
		{
			Name: "Analytics",
			Keywords: []Keyword{
				kw("analytics", 2), kw("metrics", 1), kw("kpi", 2), kw("data", 1),
				kw("report", 1), kw("dashboard", 1), kw("performance", 1),
			},
		},
		{
			Name: "Advertising",
			Keywords: []Keyword{
				kw("ad", 1), kw("advertising", 2), kw("ppc", 2), kw("campaign", 1),
				kw("banner", 1),
			},
			Phrases: []Phrase{ph("google ads", 1), ph("facebook ads", 1)},
		},
		{
			Name: "Product Launch",
			Keywords: []Keyword{
				kw("launch", 2), kw("product", 1), kw("release", 1),
				kw("announcement", 1), kw("rollout", 2),
			},
		},
		{
			Name: "Public Relations",
			Keywords: []Keyword{
				kw("pr", 1), kw("press", 1), kw("media", 1), kw("release", 1),
				kw("publicity", 2),
			},
			Phrases: []Phrase{ph("public relations", 1), ph("press release", 1)},
		},
		{
			Name: "Design",
			Keywords: []Keyword{
				kw("design", 1), kw("graphic", 1), kw("visual", 1), kw("mockup", 2),
				kw("prototype", 1), kw("figma", 2), kw("photoshop", 2),
			},
		},
		{
			Name: "Video Marketing",
			Keywords: []Keyword{
				kw("video", 1), kw("youtube", 2), kw("vimeo", 2),
				kw("animation", 1), kw("multimedia", 1),
			},
		},
		{
			Name: "Market Research",
			Keywords: []Keyword{
				kw("research", 1), kw("survey", 2), kw("market", 1),
				kw("competitor", 2), kw("analysis", 1), kw("insights", 1),
			},
			Phrases: []Phrase{ph("market research", 1)},
		},
	})
}
