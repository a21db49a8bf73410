// Package file provides TOML-backed configuration loading and saving.
// Configuration lives at <configDir>/config.toml, defaulting to ~/.sift/.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	// DataDir is where the metadata database lives. Empty selects
	// ~/.sift/data.
	DataDir string `toml:"data_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Vector    VectorConfig    `toml:"vector"`
	Search    SearchConfig    `toml:"search"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

// ChunkingConfig controls document splitting.
type ChunkingConfig struct {
	// ChunkSize is the target chunk size in tokens.
	ChunkSize int `toml:"chunk_size"`

	// Overlap is the token overlap between adjacent chunks.
	Overlap int `toml:"overlap"`

	// MaxChunkSize is the hard ceiling in tokens.
	MaxChunkSize int `toml:"max_chunk_size"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Dimensions int    `toml:"dimensions"`

	// BatchSize caps texts per provider request.
	BatchSize int `toml:"batch_size"`

	// RequestsPerSecond limits outbound provider calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// VectorConfig selects and tunes the vector index.
type VectorConfig struct {
	// Provider is "qdrant" or "memory".
	Provider string `toml:"provider"`

	URL        string `toml:"url"`
	APIKey     string `toml:"api_key"`
	Collection string `toml:"collection"`
}

// SearchConfig tunes retrieval.
type SearchConfig struct {
	// SimilarityThreshold drops results scoring below it.
	SimilarityThreshold float64 `toml:"similarity_threshold"`

	// Limit is the default result cap.
	Limit int `toml:"limit"`
}

// SchedulerConfig controls background syncing.
type SchedulerConfig struct {
	Enabled bool `toml:"enabled"`

	// IntervalMinutes is the gap between automatic incremental syncs.
	IntervalMinutes int `toml:"interval_minutes"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			ChunkSize:    800,
			Overlap:      100,
			MaxChunkSize: 1500,
		},
		Embedding: EmbeddingConfig{
			Provider:          "ollama",
			BatchSize:         32,
			RequestsPerSecond: 5,
		},
		Vector: VectorConfig{
			Provider: "memory",
			URL:      "http://localhost:6333",
		},
		Search: SearchConfig{
			SimilarityThreshold: 0.3,
			Limit:               10,
		},
		Scheduler: SchedulerConfig{
			Enabled:         false,
			IntervalMinutes: 15,
		},
	}
}

// DefaultDir returns the standard config directory, ~/.sift.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".sift"), nil
}

// Load reads configuration from <configDir>/config.toml, filling defaults
// for anything unset. A missing file yields the defaults.
func Load(configDir string) (Config, error) {
	cfg := Default()

	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return cfg, err
		}
		configDir = dir
	}

	data, err := os.ReadFile(filepath.Join(configDir, "config.toml"))
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

// Save writes configuration to <configDir>/config.toml with restricted
// permissions, creating the directory if needed.
func Save(configDir string, cfg Config) error {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		configDir = dir
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return os.WriteFile(filepath.Join(configDir, "config.toml"), data, 0600)
}
