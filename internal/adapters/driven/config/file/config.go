// Package file provides the TOML configuration store. Configuration is
// stored in a TOML file within the docdex config directory and merged
// over built-in defaults, so a partial file is valid.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/docdex/docdex/internal/categorizer"
	"github.com/docdex/docdex/internal/core/services"
)

// Config is the application configuration.
type Config struct {
	// DocumentsRoot is the directory tree that gets indexed.
	DocumentsRoot string `toml:"documents_root"`

	// DataDir holds the SQLite database. Empty means ~/.docdex/data.
	DataDir string `toml:"data_dir"`

	Ingest      IngestConfig      `toml:"ingest"`
	Categorizer CategorizerConfig `toml:"categorizer"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	// Workers bounds bulk-scan concurrency.
	Workers int `toml:"workers"`

	// DebounceMillis coalesces watch events per path.
	DebounceMillis int `toml:"debounce_millis"`
}

// CategorizerConfig exposes the categoriser thresholds.
type CategorizerConfig struct {
	MinimalContentTokens int     `toml:"minimal_content_tokens"`
	FilenameBonus        float64 `toml:"filename_bonus"`
	MinConfidence        float64 `toml:"min_confidence"`
	TrainMinConfidence   float64 `toml:"train_min_confidence"`
	MaxCategories        int     `toml:"max_categories"`
	MaxKeywords          int     `toml:"max_keywords"`
}

// EmbeddingConfig configures the optional embedding provider. An empty
// API key disables semantic search.
type EmbeddingConfig struct {
	// APIKey falls back to the OPENAI_API_KEY environment variable.
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Default returns the built-in configuration.
func Default() Config {
	cat := categorizer.DefaultConfig()
	return Config{
		Ingest: IngestConfig{
			Workers:        services.DefaultWorkers,
			DebounceMillis: int(services.DefaultDebounce.Milliseconds()),
		},
		Categorizer: CategorizerConfig{
			MinimalContentTokens: cat.MinimalContentTokens,
			FilenameBonus:        cat.FilenameBonus,
			MinConfidence:        cat.MinConfidence,
			TrainMinConfidence:   cat.TrainMinConfidence,
			MaxCategories:        cat.MaxCategories,
			MaxKeywords:          cat.MaxKeywords,
		},
	}
}

// CategorizerConfig converts the file settings into the categoriser's
// config, with defaults for everything not exposed in the file.
func (c Config) CategorizerConfig() categorizer.Config {
	cfg := categorizer.DefaultConfig()
	if c.Categorizer.MinimalContentTokens > 0 {
		cfg.MinimalContentTokens = c.Categorizer.MinimalContentTokens
	}
	if c.Categorizer.FilenameBonus > 0 {
		cfg.FilenameBonus = c.Categorizer.FilenameBonus
	}
	if c.Categorizer.MinConfidence > 0 {
		cfg.MinConfidence = c.Categorizer.MinConfidence
	}
	if c.Categorizer.TrainMinConfidence > 0 {
		cfg.TrainMinConfidence = c.Categorizer.TrainMinConfidence
	}
	if c.Categorizer.MaxCategories > 0 {
		cfg.MaxCategories = c.Categorizer.MaxCategories
	}
	if c.Categorizer.MaxKeywords > 0 {
		cfg.MaxKeywords = c.Categorizer.MaxKeywords
	}
	return cfg
}

// APIKey resolves the embedding API key, preferring the config file.
func (c Config) APIKey() string {
	if c.Embedding.APIKey != "" {
		return c.Embedding.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

// DefaultPath returns ~/.docdex/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docdex", "config.toml"), nil
}

// Load reads the configuration file and merges it over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration with restricted permissions, creating
// the parent directory as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
