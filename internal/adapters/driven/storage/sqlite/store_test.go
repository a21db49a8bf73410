package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store := newTestStore(t)
	assert.NotEmpty(t, store.Path())
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	// Reopening must not re-run applied migrations.
	store2, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store2.Close())
}

func TestSourceStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	source := domain.Source{
		ID:     "gdrive",
		Type:   "gdrive",
		Name:   "Work Drive",
		Config: map[string]string{"folder": "Engineering"},
		Credentials: domain.Credentials{
			AccessToken:       "token-123",
			AccountIdentifier: "dev@example.com",
		},
	}
	require.NoError(t, sources.Save(ctx, source))

	saved, err := sources.Get(ctx, "gdrive")
	require.NoError(t, err)
	assert.Equal(t, "Work Drive", saved.Name)
	assert.Equal(t, "Engineering", saved.Config["folder"])
	assert.Equal(t, "token-123", saved.Credentials.AccessToken)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestSourceStore_Save_Update(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	require.NoError(t, sources.Save(ctx, domain.Source{ID: "gdrive", Type: "gdrive", Name: "v1"}))
	require.NoError(t, sources.Save(ctx, domain.Source{ID: "gdrive", Type: "gdrive", Name: "v2"}))

	saved, err := sources.Get(ctx, "gdrive")
	require.NoError(t, err)
	assert.Equal(t, "v2", saved.Name)

	list, err := sources.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSourceStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SourceStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceStore_List_Ordered(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	require.NoError(t, sources.Save(ctx, domain.Source{ID: "slack", Type: "slack"}))
	require.NoError(t, sources.Save(ctx, domain.Source{ID: "gdrive", Type: "gdrive"}))

	list, err := sources.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "gdrive", list[0].ID)
	assert.Equal(t, "slack", list[1].ID)
}

func TestSourceStore_Delete(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	require.NoError(t, sources.Save(ctx, domain.Source{ID: "gdrive", Type: "gdrive"}))
	require.NoError(t, sources.Delete(ctx, "gdrive"))

	_, err := sources.Get(ctx, "gdrive")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, sources.Delete(ctx, "gdrive"), domain.ErrNotFound)
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:          domain.DocumentID("gdrive", "file-1"),
		Source:      "gdrive",
		SourceID:    "file-1",
		Title:       "Q3 Planning",
		Path:        "Engineering/Plans",
		Author:      "dev@example.com",
		ContentType: domain.ContentTypeDocument,
		Content:     "quarterly planning notes",
		URL:         "https://drive.example.com/file-1",
		ModifiedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		LastSynced:  time.Now().UTC(),
	}
	require.NoError(t, docs.Save(ctx, doc))

	saved, err := docs.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q3 Planning", saved.Title)
	assert.Equal(t, domain.ContentTypeDocument, saved.ContentType)
	assert.Equal(t, doc.ModifiedAt.Unix(), saved.ModifiedAt.Unix())
}

func TestDocumentStore_Save_Upsert(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:       domain.DocumentID("gdrive", "file-1"),
		Source:   "gdrive",
		SourceID: "file-1",
		Content:  "v1",
	}
	require.NoError(t, docs.Save(ctx, doc))

	doc.Content = "v2"
	require.NoError(t, docs.Save(ctx, doc))

	saved, err := docs.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", saved.Content)

	count, err := docs.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDocumentStore_ExistsAndDelete(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:       domain.DocumentID("slack", "msg-1"),
		Source:   "slack",
		SourceID: "msg-1",
	}
	require.NoError(t, docs.Save(ctx, doc))

	ok, err := docs.Exists(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, docs.Delete(ctx, doc.ID))

	ok, err = docs.Exists(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is a no-op.
	assert.NoError(t, docs.Delete(ctx, doc.ID))
}

func TestDocumentStore_ListAndCount_PerSource(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, docs.Save(ctx, &domain.Document{
			ID: domain.DocumentID("gdrive", id), Source: "gdrive", SourceID: id,
		}))
	}
	require.NoError(t, docs.Save(ctx, &domain.Document{
		ID: domain.DocumentID("slack", "m"), Source: "slack", SourceID: "m",
	}))

	list, err := docs.List(ctx, "gdrive")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	count, err := docs.Count(ctx, "slack")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	total, err := docs.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestSyncStateStore_GetOrCreate_Default(t *testing.T) {
	store := newTestStore(t)
	states := store.SyncStateStore()

	state, err := states.GetOrCreate(context.Background(), "gdrive")
	require.NoError(t, err)
	assert.Equal(t, "gdrive", state.Source)
	assert.Equal(t, domain.SyncStatusIdle, state.Status)
	assert.Empty(t, state.Cursor)
	assert.True(t, state.LastSyncedAt.IsZero())
}

func TestSyncStateStore_SaveAndReload(t *testing.T) {
	store := newTestStore(t)
	states := store.SyncStateStore()
	ctx := context.Background()

	now := time.Now().UTC()
	state := domain.SyncState{
		Source:        "gdrive",
		Status:        domain.SyncStatusError,
		Cursor:        "cursor-token-123",
		ErrorMessage:  "rate limited",
		DocumentCount: 42,
		LastSyncedAt:  now,
	}
	require.NoError(t, states.Save(ctx, state))

	saved, err := states.GetOrCreate(ctx, "gdrive")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusError, saved.Status)
	assert.Equal(t, "cursor-token-123", saved.Cursor)
	assert.Equal(t, "rate limited", saved.ErrorMessage)
	assert.Equal(t, 42, saved.DocumentCount)
	assert.Equal(t, now.Unix(), saved.LastSyncedAt.Unix())
}

func TestSyncStateStore_Delete(t *testing.T) {
	store := newTestStore(t)
	states := store.SyncStateStore()
	ctx := context.Background()

	require.NoError(t, states.Save(ctx, domain.SyncState{
		Source: "gdrive", Status: domain.SyncStatusIdle, Cursor: "cursor-v1",
	}))
	require.NoError(t, states.Delete(ctx, "gdrive"))

	state, err := states.GetOrCreate(ctx, "gdrive")
	require.NoError(t, err)
	assert.Empty(t, state.Cursor)
}
