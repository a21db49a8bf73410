// Package cli implements the sift command line interface on top of the
// driving ports. Services are wired once per invocation from the TOML
// configuration.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/adapters/driven/config/file"
	ollamaembed "github.com/siftlabs/sift/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/siftlabs/sift/internal/adapters/driven/embedding/openai"
	"github.com/siftlabs/sift/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/siftlabs/sift/internal/adapters/driven/vector/memory"
	"github.com/siftlabs/sift/internal/adapters/driven/vector/qdrant"
	"github.com/siftlabs/sift/internal/chunker"
	"github.com/siftlabs/sift/internal/connectors/localfs"
	"github.com/siftlabs/sift/internal/core/ports/driven"
	"github.com/siftlabs/sift/internal/core/ports/driving"
	"github.com/siftlabs/sift/internal/core/services"
	"github.com/siftlabs/sift/internal/embedding"
	"github.com/siftlabs/sift/internal/logger"
)

// Set by Execute.
var version = "dev"

// Wired services, available to subcommands after PersistentPreRunE.
var (
	cfg              file.Config
	store            *sqlite.Store
	sourceStore      driven.SourceStore
	docStore         driven.DocumentStore
	syncOrchestrator driving.SyncOrchestrator
	searchService    driving.SearchService
)

var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Sync documents from your sources and search them semantically",
	Long: `sift keeps a local semantic index of documents pulled from configured
sources. Documents are chunked by structure, embedded, and served through
similarity search.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.sift)")
}

// Execute runs the CLI with the given build version.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}

// setup loads configuration and wires the service graph.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	// version needs no services and must work with a broken config.
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = file.Load(flagConfigDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	sourceStore = store.SourceStore()
	docStore = store.DocumentStore()

	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	vectorIndex, err := buildVectorIndex(cmd.Context(), cfg.Vector, embedder.Dimensions())
	if err != nil {
		return err
	}

	batcher := embedding.NewBatcher(embedder,
		embedding.WithBatchSize(cfg.Embedding.BatchSize),
		embedding.WithRateLimit(cfg.Embedding.RequestsPerSecond, 10),
	)

	chunk := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.ChunkSize),
		chunker.WithOverlap(cfg.Chunking.Overlap),
		chunker.WithMaxChunkSize(cfg.Chunking.MaxChunkSize),
	)

	registry := services.NewConnectorRegistry()
	registry.Register(localfs.Type, localfs.Builder)

	syncOrchestrator = services.NewSyncOrchestrator(
		sourceStore,
		store.SyncStateStore(),
		docStore,
		registry,
		chunk,
		batcher,
		vectorIndex,
	)
	searchService = services.NewSearchService(batcher, vectorIndex,
		services.WithSimilarityThreshold(cfg.Search.SimilarityThreshold))

	return nil
}

// buildEmbedder selects the embedding provider from configuration.
func buildEmbedder(cfg file.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case "", "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// buildVectorIndex selects the vector index from configuration.
func buildVectorIndex(ctx context.Context, cfg file.VectorConfig, dimensions int) (driven.VectorIndex, error) {
	switch cfg.Provider {
	case "qdrant":
		index := qdrant.NewIndex(qdrant.Config{
			URL:        cfg.URL,
			APIKey:     cfg.APIKey,
			Collection: cfg.Collection,
		})
		if err := index.Init(ctx, dimensions); err != nil {
			return nil, fmt.Errorf("initialising vector index: %w", err)
		}
		return index, nil
	case "", "memory":
		return vectormemory.NewIndex(), nil
	default:
		return nil, fmt.Errorf("unknown vector provider %q", cfg.Provider)
	}
}

// schedulerInterval converts the configured minutes to a duration.
func schedulerInterval(cfg file.SchedulerConfig) time.Duration {
	return time.Duration(cfg.IntervalMinutes) * time.Minute
}
