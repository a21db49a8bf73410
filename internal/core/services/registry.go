package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driven"
)

// Ensure ConnectorRegistry implements the interface.
var _ driven.ConnectorFactory = (*ConnectorRegistry)(nil)

// ConnectorRegistry maps source types to connector builders. Registration
// happens at wiring time; Create is safe for concurrent use afterwards.
type ConnectorRegistry struct {
	mu       sync.RWMutex
	builders map[string]driven.ConnectorBuilder
}

// NewConnectorRegistry creates an empty registry.
func NewConnectorRegistry() *ConnectorRegistry {
	return &ConnectorRegistry{builders: make(map[string]driven.ConnectorBuilder)}
}

// Register adds a builder for a source type, replacing any prior one.
func (r *ConnectorRegistry) Register(connectorType string, builder driven.ConnectorBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[connectorType] = builder
}

// Create builds a connector for the source's type.
func (r *ConnectorRegistry) Create(_ context.Context, source domain.Source) (driven.Connector, error) {
	r.mu.RLock()
	builder, ok := r.builders[source.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: source type %q", domain.ErrUnsupportedType, source.Type)
	}
	return builder(source)
}

// SupportedTypes lists registered source types, sorted.
func (r *ConnectorRegistry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
