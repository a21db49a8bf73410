package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/siftlabs/sift/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sift/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sift", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// SyncStateStore returns a SyncStateStore interface backed by this store.
func (s *Store) SyncStateStore() driven.SyncStateStore {
	return &syncStateStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// Save stores or updates a source.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	configJSON, err := json.Marshal(source.Config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	credsJSON, err := json.Marshal(source.Credentials)
	if err != nil {
		return fmt.Errorf("marshalling credentials: %w", err)
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sources (id, type, name, config, credentials, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			config = excluded.config,
			credentials = excluded.credentials,
			updated_at = excluded.updated_at
	`, source.ID, source.Type, source.Name, string(configJSON), string(credsJSON),
		source.CreatedAt, source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, type, name, config, credentials, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)

	return scanSource(row)
}

// List returns all configured sources.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, type, name, config, credentials, created_at, updated_at
		FROM sources ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSourceRows(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// Delete removes a source.
func (s *sourceStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Save stores or updates a document.
func (s *documentStore) Save(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, source, source_id, title, path, author, content_type, content, url,
			 created_at, modified_at, last_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			source_id = excluded.source_id,
			title = excluded.title,
			path = excluded.path,
			author = excluded.author,
			content_type = excluded.content_type,
			content = excluded.content,
			url = excluded.url,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at,
			last_synced = excluded.last_synced
	`, doc.ID, doc.Source, doc.SourceID, doc.Title, doc.Path, doc.Author,
		string(doc.ContentType), doc.Content, doc.URL,
		doc.CreatedAt, doc.ModifiedAt, doc.LastSynced)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source, source_id, title, path, author, content_type, content, url,
		       created_at, modified_at, last_synced
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// Exists reports whether a document is present.
func (s *documentStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking document: %w", err)
	}
	return count > 0, nil
}

// Delete removes a document. Absent ids are a no-op.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// List returns documents for a source.
func (s *documentStore) List(ctx context.Context, source string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source, source_id, title, path, author, content_type, content, url,
		       created_at, modified_at, last_synced
		FROM documents WHERE source = ? ORDER BY id
	`, source)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Count returns the number of documents, optionally per source.
func (s *documentStore) Count(ctx context.Context, source string) (int, error) {
	var count int
	var err error
	if source == "" {
		err = s.store.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM documents").Scan(&count)
	} else {
		err = s.store.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM documents WHERE source = ?", source).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// ==================== Sync State Store ====================

// syncStateStore implements driven.SyncStateStore.
type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

// GetOrCreate retrieves a source's sync state, creating an idle default on
// first contact.
func (s *syncStateStore) GetOrCreate(ctx context.Context, source string) (*domain.SyncState, error) {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_state (source, status) VALUES (?, ?)
		ON CONFLICT(source) DO NOTHING
	`, source, string(domain.SyncStatusIdle))
	if err != nil {
		return nil, fmt.Errorf("initialising sync state: %w", err)
	}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT source, status, cursor, error_message, document_count, last_synced_at
		FROM sync_state WHERE source = ?
	`, source)

	var state domain.SyncState
	var status string
	var lastSyncedAt sql.NullTime
	if err := row.Scan(&state.Source, &status, &state.Cursor,
		&state.ErrorMessage, &state.DocumentCount, &lastSyncedAt); err != nil {
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}

	state.Status = domain.SyncStatus(status)
	if lastSyncedAt.Valid {
		state.LastSyncedAt = lastSyncedAt.Time
	}

	return &state, nil
}

// Save stores or updates sync state.
func (s *syncStateStore) Save(ctx context.Context, state domain.SyncState) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_state (source, status, cursor, error_message, document_count, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			status = excluded.status,
			cursor = excluded.cursor,
			error_message = excluded.error_message,
			document_count = excluded.document_count,
			last_synced_at = excluded.last_synced_at
	`, state.Source, string(state.Status), state.Cursor,
		state.ErrorMessage, state.DocumentCount, nullTime(state.LastSyncedAt))

	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

// Delete removes sync state for a source.
func (s *syncStateStore) Delete(ctx context.Context, source string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sync_state WHERE source = ?", source)
	if err != nil {
		return fmt.Errorf("deleting sync state: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// nullTime maps the zero time to NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// scanSource scans a single source row.
func scanSource(row *sql.Row) (*domain.Source, error) {
	var source domain.Source
	var configJSON, credsJSON string
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&source.ID, &source.Type, &source.Name,
		&configJSON, &credsJSON, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if err := json.Unmarshal([]byte(configJSON), &source.Config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := json.Unmarshal([]byte(credsJSON), &source.Credentials); err != nil {
		return nil, fmt.Errorf("unmarshaling credentials: %w", err)
	}
	if createdAt.Valid {
		source.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		source.UpdatedAt = updatedAt.Time
	}

	return &source, nil
}

// scanSourceRows scans a source from *sql.Rows.
func scanSourceRows(rows *sql.Rows) (*domain.Source, error) {
	var source domain.Source
	var configJSON, credsJSON string
	var createdAt, updatedAt sql.NullTime

	if err := rows.Scan(&source.ID, &source.Type, &source.Name,
		&configJSON, &credsJSON, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if err := json.Unmarshal([]byte(configJSON), &source.Config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := json.Unmarshal([]byte(credsJSON), &source.Credentials); err != nil {
		return nil, fmt.Errorf("unmarshaling credentials: %w", err)
	}
	if createdAt.Valid {
		source.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		source.UpdatedAt = updatedAt.Time
	}

	return &source, nil
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var contentType string
	var createdAt, modifiedAt, lastSynced sql.NullTime

	if err := row.Scan(&doc.ID, &doc.Source, &doc.SourceID, &doc.Title, &doc.Path,
		&doc.Author, &contentType, &doc.Content, &doc.URL,
		&createdAt, &modifiedAt, &lastSynced); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.ContentType = domain.ContentType(contentType)
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if modifiedAt.Valid {
		doc.ModifiedAt = modifiedAt.Time
	}
	if lastSynced.Valid {
		doc.LastSynced = lastSynced.Time
	}

	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var contentType string
	var createdAt, modifiedAt, lastSynced sql.NullTime

	if err := rows.Scan(&doc.ID, &doc.Source, &doc.SourceID, &doc.Title, &doc.Path,
		&doc.Author, &contentType, &doc.Content, &doc.URL,
		&createdAt, &modifiedAt, &lastSynced); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.ContentType = domain.ContentType(contentType)
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if modifiedAt.Valid {
		doc.ModifiedAt = modifiedAt.Time
	}
	if lastSynced.Valid {
		doc.LastSynced = lastSynced.Time
	}

	return &doc, nil
}
