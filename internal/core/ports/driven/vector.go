package driven

import (
	"context"

	"github.com/siftlabs/sift/internal/core/domain"
)

// VectorFilter restricts a similarity search at the index level.
type VectorFilter struct {
	// Sources limits hits to chunks from the named sources. Empty means
	// no restriction.
	Sources []string
}

// VectorIndex stores chunk embeddings and serves similarity search.
// Document ids are namespaced by source, so concurrent per-source writes
// never collide and no global lock is required.
type VectorIndex interface {
	// Upsert writes chunks (with embeddings) into the index, replacing
	// any existing entries with the same chunk ids.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to topN chunk hits for the query vector, best
	// score first, restricted by the filter.
	Search(ctx context.Context, vector []float32, filter VectorFilter, topN int) ([]domain.SearchHit, error)

	// DeleteByDocument removes every chunk belonging to a document and
	// returns how many were deleted.
	DeleteByDocument(ctx context.Context, documentID string) (int, error)

	// Close releases resources.
	Close() error
}
