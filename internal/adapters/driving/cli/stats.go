package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	stats, err := searchService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("loading stats: %w", err)
	}

	if statsJSON {
		return outputJSON(cmd, stats)
	}

	cmd.Printf("Documents:  %d (%s)\n", stats.TotalDocuments, formatSize(stats.TotalSize))
	cmd.Printf("Categories: %d\n", stats.TotalCategories)
	cmd.Printf("Projects:   %d\n", stats.TotalProjects)
	cmd.Printf("Teams:      %d\n", stats.TotalTeams)

	if len(stats.TopCategories) > 0 {
		cmd.Println("\nTop categories:")
		for _, cc := range stats.TopCategories {
			cmd.Printf("  %-24s %d\n", cc.Category, cc.Count)
		}
	}

	if len(stats.FileTypeBreakdown) > 0 {
		cmd.Println("\nFile types:")
		for _, ec := range stats.FileTypeBreakdown {
			cmd.Printf("  %-8s %d\n", ec.Extension, ec.Count)
		}
	}

	if len(stats.RecentDocuments) > 0 {
		cmd.Println("\nRecently modified:")
		for _, doc := range stats.RecentDocuments {
			cmd.Printf("  %s  %s\n", doc.Modified.Format("2006-01-02 15:04"), doc.Path)
		}
	}
	return nil
}

// formatSize renders a byte count in human-readable units.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
