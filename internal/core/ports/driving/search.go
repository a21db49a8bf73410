package driving

import (
	"context"

	"github.com/siftlabs/sift/internal/core/domain"
)

// SearchService provides semantic search to external actors.
type SearchService interface {
	// Search turns one query into a ranked, deduplicated list of
	// document-level results. It degrades to an empty response rather
	// than failing when embedding generation is unavailable.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}

// Scheduler runs background synchronisation at a fixed interval.
type Scheduler interface {
	// Start launches the scheduler loop in the background. It runs
	// until the context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the scheduler.
	Stop() error
}
