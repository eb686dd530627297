package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	fswatcher "github.com/docdex/docdex/internal/adapters/driven/watcher/fsnotify"
	"github.com/docdex/docdex/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a directory and keep the index in sync",
	Long: `Runs an initial scan of the path (or the configured documents root),
then watches for filesystem changes. Added and modified files are
reingested; removed files are dropped from the index. Stops on Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	target, err := resolveTarget(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Scanning %s...\n", target)
	report, err := ingestService.IngestDirectory(ctx, target)
	if err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}
	cmd.Printf("Scan done: %d documents ingested, %d failed.\n", report.Processed, report.Failed)

	watcher, err := fswatcher.New()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	debounce := time.Duration(cfg.Ingest.DebounceMillis) * time.Millisecond
	runner := services.NewWatchRunner(watcher, ingestService, debounce)

	cmd.Printf("Watching %s (Ctrl-C to stop)...\n", target)
	if err := runner.Run(ctx, target); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Println("Stopped.")
	return nil
}
