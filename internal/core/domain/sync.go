package domain

import "time"

// SourceItem describes one item enumerated by a connector, before content
// extraction. The connector maps provider metadata into these fields.
type SourceItem struct {
	// ID is the provider-native item id.
	ID string

	// Title is the item's display name.
	Title string

	// Path is an optional human-readable location.
	Path string

	// Author is the optional owner or sender.
	Author string

	// URL is an optional link to the item.
	URL string

	// ContentType classifies the item for chunking.
	ContentType ContentType

	// CreatedAt and ModifiedAt are provider-reported; zero when unknown.
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// ChangePage is one page of a connector's change feed. The orchestrator keeps
// requesting pages while NextPage is non-empty; the final page carries the
// fresh continuation token in NewCursor.
type ChangePage struct {
	// Items are added or updated items.
	Items []SourceItem

	// Removed lists provider-native ids of deleted items.
	Removed []string

	// NextPage is the token for the following page, empty on the last page.
	NextPage string

	// NewCursor anchors the next incremental sync. Only meaningful on the
	// last page.
	NewCursor string
}

// SyncResult is the outcome of one sync run.
type SyncResult struct {
	// Success is true only when the per-item error list is empty.
	Success bool

	// Source names the synced source.
	Source string

	// Added, Updated and Deleted count processed documents.
	Added   int
	Updated int
	Deleted int

	// Errors lists per-item failures, tagged with the item's identity.
	// Partial progress stays committed even when this is non-empty.
	Errors []string

	// Duration is the wall-clock time of the run.
	Duration time.Duration

	// Cursor is the fresh continuation token, empty if none was produced.
	Cursor string
}
