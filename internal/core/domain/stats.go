package domain

// FilterOptions lists the distinct metadata values present in the corpus,
// used to populate filter choices.
type FilterOptions struct {
	Categories []string
	Projects   []string
	Teams      []string
	Extensions []string
}

// CategoryCount is a category with its document count.
type CategoryCount struct {
	Category string
	Count    int
}

// ExtensionCount is a file extension with its document count.
type ExtensionCount struct {
	Extension string
	Count     int
}

// Stats summarises the indexed corpus.
type Stats struct {
	TotalDocuments  int
	TotalCategories int
	TotalProjects   int
	TotalTeams      int

	// TotalSize is the summed byte size of all documents.
	TotalSize int64

	// RecentDocuments holds the most recently modified documents,
	// newest first.
	RecentDocuments []Document

	// TopCategories holds the largest categories by document count.
	TopCategories []CategoryCount

	// FileTypeBreakdown holds per-extension document counts.
	FileTypeBreakdown []ExtensionCount
}
