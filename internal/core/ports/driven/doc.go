// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// The core depends only on these contracts; concrete connectors, stores,
// embedding providers and vector backends plug in at the edge.
package driven
