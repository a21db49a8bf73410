package driven

import (
	"context"

	"github.com/siftlabs/sift/internal/core/domain"
)

// SyncStateStore persists per-source sync progress.
type SyncStateStore interface {
	// GetOrCreate retrieves the sync state for a source, creating an idle
	// default on first contact.
	GetOrCreate(ctx context.Context, source string) (*domain.SyncState, error)

	// Save stores or updates sync state.
	Save(ctx context.Context, state domain.SyncState) error

	// Delete removes sync state for a source.
	Delete(ctx context.Context, source string) error
}
