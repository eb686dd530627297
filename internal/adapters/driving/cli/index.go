package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Ingest and index documents",
	Long: `Scans the path (or the configured documents root) and ingests every
supported document: text extraction, categorisation, persistence and
search indexing. A single file path ingests just that file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	target, err := resolveTarget(args)
	if err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat %s: %w", target, err)
	}

	ctx := context.Background()

	if !info.IsDir() {
		doc, err := ingestService.Ingest(ctx, target)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Ingested %s as %s (%.2f)\n", doc.Filename, doc.PrimaryCategory(), doc.Confidence)
		return nil
	}

	cmd.Printf("Indexing %s...\n", target)
	report, err := ingestService.IngestDirectory(ctx, target)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Job %s: %d documents ingested, %d failed.\n",
		report.JobID, report.Processed, report.Failed)
	for _, msg := range report.Errors {
		cmd.Printf("  %s\n", msg)
	}
	return nil
}
