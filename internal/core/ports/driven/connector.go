package driven

import (
	"context"

	"github.com/siftlabs/sift/internal/core/domain"
)

// Connector fetches documents from a data source.
// Each connector type (gdrive, gmail, slack, hubspot, ...) implements this
// interface; the core never sees provider API details.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Source returns the source name this connector is bound to.
	Source() string

	// Authenticate verifies the supplied credentials against the provider.
	// Returns domain.ErrAuthenticationFailed when they are rejected.
	Authenticate(ctx context.Context, creds domain.Credentials) error

	// ListChanges returns one page of the source's change feed.
	//
	// With full=true (or an empty cursor) the connector enumerates all
	// current items. Otherwise it returns changes since the cursor and may
	// report removals. When a page's NextPage is non-empty the caller
	// passes it as the cursor of the following call, keeping the same
	// full flag. Returns domain.ErrTokenExpired when the cursor can no
	// longer be resumed, and domain.ErrRateLimited on throttling.
	ListChanges(ctx context.Context, cursor string, full bool) (*domain.ChangePage, error)

	// FetchContent extracts the text of one item. Returns
	// domain.ErrContentUnavailable for items with no extractable content;
	// the caller skips those without recording an error.
	FetchContent(ctx context.Context, item domain.SourceItem) (string, error)

	// Close releases resources.
	Close() error
}

// ConnectorBuilder creates a Connector from a Source.
type ConnectorBuilder func(source domain.Source) (Connector, error)

// ConnectorFactory creates connectors from source configuration.
// It maintains a registry of connector types and their builders.
type ConnectorFactory interface {
	// Create returns a Connector for the given source.
	// Returns domain.ErrUnsupportedType if the source type is unknown.
	Create(ctx context.Context, source domain.Source) (Connector, error)

	// Register adds a connector builder for the given type.
	Register(connectorType string, builder ConnectorBuilder)

	// SupportedTypes returns all registered connector types.
	SupportedTypes() []string
}
