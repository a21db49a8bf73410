package driving

import (
	"context"
	"time"

	"github.com/siftlabs/sift/internal/core/domain"
)

// SyncOrchestrator coordinates document synchronisation from sources.
type SyncOrchestrator interface {
	// Sync runs one synchronisation for a source. full forces a complete
	// re-enumeration regardless of the stored continuation token.
	// Returns domain.ErrSyncInProgress if a run is already active for the
	// source.
	Sync(ctx context.Context, sourceID string, full bool) (*domain.SyncResult, error)

	// SyncAll runs synchronisation for every configured source in turn.
	// A failing source does not stop the rest.
	SyncAll(ctx context.Context, full bool) ([]domain.SyncResult, error)

	// Status returns the sync status for a source: live progress while a
	// run is active, the persisted state otherwise.
	Status(ctx context.Context, sourceID string) (*SyncStatus, error)
}

// SyncStatus reports the current state of a source's synchronisation.
type SyncStatus struct {
	// SourceID identifies the source.
	SourceID string

	// Status is the lifecycle state (idle, syncing, error).
	Status domain.SyncStatus

	// DocumentsProcessed counts documents handled by the active run.
	DocumentsProcessed int

	// ErrorCount counts per-item errors of the active run.
	ErrorCount int

	// LastSyncedAt is when the last run finished.
	LastSyncedAt time.Time

	// DocumentCount is added+updated of the last completed run.
	DocumentCount int

	// Error holds the last run's first error, if any.
	Error string
}
