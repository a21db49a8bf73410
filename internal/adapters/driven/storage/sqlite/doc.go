// Package sqlite provides a SQLite-backed implementation of the storage
// ports. One database file holds sources, documents and sync state; the
// schema is managed through embedded migrations.
package sqlite
