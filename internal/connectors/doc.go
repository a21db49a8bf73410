// Package connectors provides implementations of the Connector interface
// for document sources. Each connector knows how to enumerate changes and
// fetch content from one source type (local files, etc.).
//
// Connectors are registered with the connector registry at startup.
package connectors
