package driven

import (
	"context"

	"github.com/siftlabs/sift/internal/core/domain"
)

// DocumentStore persists document metadata and content.
// Backed by SQLite; an in-memory mirror exists for tests.
type DocumentStore interface {
	// Save stores or updates a document (upsert on id).
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by id. Returns domain.ErrNotFound when
	// absent.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Exists reports whether a document id is present.
	Exists(ctx context.Context, id string) (bool, error)

	// Delete removes a document. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns documents for a source.
	List(ctx context.Context, source string) ([]domain.Document, error)

	// Count returns the number of documents, optionally per source
	// (empty source counts all).
	Count(ctx context.Context, source string) (int, error)
}
