package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var filtersJSON bool

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the filterable values in the corpus",
	Long:  `Prints the distinct categories, projects, teams and file extensions present in the indexed corpus.`,
	Args:  cobra.NoArgs,
	RunE:  runFilters,
}

func init() {
	filtersCmd.Flags().BoolVar(&filtersJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(filtersCmd)
}

func runFilters(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts, err := searchService.Filters(context.Background())
	if err != nil {
		return fmt.Errorf("loading filters: %w", err)
	}

	if filtersJSON {
		return outputJSON(cmd, opts)
	}

	printList := func(label string, values []string) {
		if len(values) == 0 {
			cmd.Printf("%s: (none)\n", label)
			return
		}
		cmd.Printf("%s: %s\n", label, strings.Join(values, ", "))
	}

	printList("Categories", opts.Categories)
	printList("Projects", opts.Projects)
	printList("Teams", opts.Teams)
	printList("Extensions", opts.Extensions)
	return nil
}
