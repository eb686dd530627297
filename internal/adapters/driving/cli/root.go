// Package cli implements the cobra command-line interface. Commands are
// registered in init() and share services wired once per invocation in
// the root command's PersistentPreRunE.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docdex/docdex/internal/adapters/driven/config/file"
	"github.com/docdex/docdex/internal/adapters/driven/embedding/openai"
	"github.com/docdex/docdex/internal/adapters/driven/extractor"
	"github.com/docdex/docdex/internal/adapters/driven/storage/sqlite"
	vectorsqlite "github.com/docdex/docdex/internal/adapters/driven/vector/sqlite"
	"github.com/docdex/docdex/internal/categorizer"
	"github.com/docdex/docdex/internal/core/ports/driven"
	"github.com/docdex/docdex/internal/core/ports/driving"
	"github.com/docdex/docdex/internal/core/services"
	"github.com/docdex/docdex/internal/index"
	"github.com/docdex/docdex/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// Shared services, wired in initApp.
var (
	cfg           file.Config
	store         *sqlite.Store
	engine        *index.Engine
	vectorIndex   driven.VectorIndex
	embedder      driven.EmbeddingService
	ingestor      *services.Ingestor
	ingestService driving.IngestService
	searchService driving.SearchService
)

var rootCmd = &cobra.Command{
	Use:   "docdex",
	Short: "Local document search with automatic categorisation",
	Long: `docdex indexes a directory of office documents, categorises them
against a marketing taxonomy and answers ranked, filtered queries.
Lexical search always works; semantic search joins in when an
embedding API key is configured.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
}

// Execute runs the CLI.
func Execute() error {
	defer cleanup()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.docdex/config.toml)")
}

// initApp loads configuration and wires the service graph.
func initApp(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	// Version needs no services and must work on a broken setup.
	if cmd.Name() == "version" {
		return nil
	}

	path := configPath
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return err
		}
	}

	var err error
	cfg, err = file.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	engine = index.NewEngine()

	if key := cfg.APIKey(); key != "" {
		embedder, err = openai.New(key, cfg.Embedding.Model)
		if err != nil {
			return fmt.Errorf("configuring embeddings: %w", err)
		}
		// Embeddings persist in the store; load them so queries see
		// vectors indexed by earlier runs.
		vi, err := vectorsqlite.New(cmd.Context(), store)
		if err != nil {
			return fmt.Errorf("loading vector index: %w", err)
		}
		vectorIndex = vi
		logger.Debug("Semantic search enabled (%s, %d vectors)", embedder.ModelName(), vi.Size())
	} else {
		logger.Debug("No embedding API key, lexical search only")
	}

	cat := categorizer.New(categorizer.DefaultTaxonomy(), cfg.CategorizerConfig())

	ingestor = services.NewIngestor(
		store, extractor.New(), cat, engine, vectorIndex, embedder,
		documentsRoot(),
		services.WithWorkers(cfg.Ingest.Workers),
	)
	ingestService = ingestor
	searchService = services.NewSearcher(store, engine, vectorIndex, embedder)

	return nil
}

// documentsRoot resolves the configured documents root, defaulting to
// the working directory.
func documentsRoot() string {
	if cfg.DocumentsRoot != "" {
		return cfg.DocumentsRoot
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// resolveTarget picks the path argument, the configured root, or cwd.
func resolveTarget(args []string) (string, error) {
	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("resolving path %s: %w", args[0], err)
		}
		return abs, nil
	}
	return documentsRoot(), nil
}

func cleanup() {
	if store != nil {
		_ = store.Close()
	}
	if vectorIndex != nil {
		_ = vectorIndex.Close()
	}
	if embedder != nil {
		_ = embedder.Close()
	}
}
