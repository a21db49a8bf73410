package domain

import (
	"fmt"
	"strings"
	"time"
)

// Source represents a configured data source.
// Each source produces documents via a connector of the matching type.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Type identifies the connector type (e.g. "gdrive", "gmail").
	Type string

	// Name is the human-readable name for this source.
	Name string

	// Config contains connector-specific configuration.
	Config map[string]string

	// Credentials holds the tokens the connector authenticates with.
	Credentials Credentials

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// DisplayName returns the source name with account identifier if provided.
func (s *Source) DisplayName() string {
	if id := s.Credentials.AccountIdentifier; id != "" && !strings.Contains(s.Name, id) {
		return fmt.Sprintf("%s - %s", s.Name, id)
	}
	return s.Name
}

// Credentials stores authentication material for a source's connector.
// Empty for no-auth connectors.
type Credentials struct {
	// AccessToken is a bearer token for API access.
	AccessToken string

	// RefreshToken is used to obtain new access tokens.
	RefreshToken string

	// APIKey is a static key for key-authenticated providers.
	APIKey string

	// AccountIdentifier is the authenticated account (email, username).
	AccountIdentifier string
}

// Empty reports whether no credential material is present.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.APIKey == ""
}

// SyncStatus is the lifecycle state of a source's synchronisation.
type SyncStatus string

const (
	// SyncStatusIdle means no run is active and the last run succeeded (or
	// the source has never synced).
	SyncStatusIdle SyncStatus = "idle"

	// SyncStatusSyncing means a run is active. It doubles as the per-source
	// mutual-exclusion flag: a trigger while syncing is rejected.
	SyncStatusSyncing SyncStatus = "syncing"

	// SyncStatusError means the last run finished with errors.
	SyncStatusError SyncStatus = "error"
)

// SyncState tracks synchronisation progress for one source.
type SyncState struct {
	// Source names the source this state belongs to.
	Source string

	// Status is the lifecycle state.
	Status SyncStatus

	// Cursor is the opaque continuation token for incremental sync.
	// Updated only when a run completes; a failed run retries from the
	// last known-good cursor.
	Cursor string

	// LastSyncedAt is when the last run finished.
	LastSyncedAt time.Time

	// ErrorMessage holds the first error of the last run, if any.
	ErrorMessage string

	// DocumentCount is added+updated of the last run.
	DocumentCount int
}
