package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docdex/docdex/internal/core/domain"
)

var (
	searchLimit    int
	searchJSON     bool
	searchSemantic bool
	searchExt      string
	searchCategory string
	searchProject  string
	searchTeam     string
	searchFrom     string
	searchTo       string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Runs a ranked query over the indexed corpus. By default the search is
lexical; --semantic fuses in vector similarity when embeddings are
configured, degrading to lexical-only when they are not.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchSemantic, "semantic", false, "fuse semantic similarity into the ranking")
	searchCmd.Flags().StringVar(&searchExt, "ext", "", `restrict to a file extension (".pdf")`)
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict to a category")
	searchCmd.Flags().StringVar(&searchProject, "project", "", "restrict to a project tag")
	searchCmd.Flags().StringVar(&searchTeam, "team", "", "restrict to a team tag")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "modified on or after (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "modified on or before (YYYY-MM-DD)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	filters, err := buildFilters()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// The lexical index lives in memory; rebuild it from the store
	// before answering.
	if err := ingestor.Reindex(ctx); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	var results []domain.SearchResult
	if searchSemantic {
		results, err = searchService.HybridSearch(ctx, query, filters, searchLimit)
	} else {
		results, err = searchService.Search(ctx, query, filters, searchLimit)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// buildFilters translates the flag values into search filters.
func buildFilters() (domain.SearchFilters, error) {
	filters := domain.SearchFilters{
		Extension: searchExt,
		Category:  searchCategory,
		Project:   searchProject,
		Team:      searchTeam,
	}

	if searchFrom != "" {
		from, err := time.Parse("2006-01-02", searchFrom)
		if err != nil {
			return filters, fmt.Errorf("invalid --from date %q: %w", searchFrom, err)
		}
		filters.DateFrom = &from
	}
	if searchTo != "" {
		to, err := time.Parse("2006-01-02", searchTo)
		if err != nil {
			return filters, fmt.Errorf("invalid --to date %q: %w", searchTo, err)
		}
		// Make the bound cover the whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		filters.DateTo = &to
	}
	return filters, nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		doc := &results[i].Document

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, doc.Filename, results[i].Score)
		cmd.Printf("      %s | %s\n", doc.PrimaryCategory(), doc.Path)
		if doc.Preview != "" {
			cmd.Printf("      %s\n", doc.Preview)
		}
		cmd.Println()
	}
	return nil
}
