// Package driving provides interfaces exposed by the core to its callers
// (primary/inbound ports): the CLI and the background scheduler.
package driving
