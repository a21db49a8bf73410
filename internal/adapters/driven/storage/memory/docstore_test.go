package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/internal/core/domain"
)

func testDocument(source, sourceID string) *domain.Document {
	return &domain.Document{
		ID:          domain.DocumentID(source, sourceID),
		Source:      source,
		SourceID:    sourceID,
		Title:       "Doc " + sourceID,
		ContentType: domain.ContentTypeDocument,
		Content:     "content of " + sourceID,
		ModifiedAt:  time.Now(),
	}
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := testDocument("gdrive", "file-1")
	require.NoError(t, store.Save(ctx, doc))

	saved, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, saved.ID)
	assert.Equal(t, "gdrive", saved.Source)
	assert.Equal(t, "content of file-1", saved.Content)
}

func TestDocumentStore_Save_Update(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := testDocument("gdrive", "file-1")
	require.NoError(t, store.Save(ctx, doc))

	doc.Content = "revised content"
	require.NoError(t, store.Save(ctx, doc))

	saved, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised content", saved.Content)

	count, err := store.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDocumentStore_Get_NotFound(t *testing.T) {
	store := NewDocumentStore()

	doc, err := store.Get(context.Background(), "gdrive:missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, doc)
}

func TestDocumentStore_Exists(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := testDocument("slack", "msg-1")
	require.NoError(t, store.Save(ctx, doc))

	ok, err := store.Exists(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "slack:other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentStore_Delete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := testDocument("gdrive", "file-1")
	require.NoError(t, store.Save(ctx, doc))

	require.NoError(t, store.Delete(ctx, doc.ID))

	_, err := store.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Delete_Absent(t *testing.T) {
	store := NewDocumentStore()

	err := store.Delete(context.Background(), "gdrive:never-existed")
	assert.NoError(t, err)
}

func TestDocumentStore_List_FiltersBySource(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testDocument("gdrive", "file-1")))
	require.NoError(t, store.Save(ctx, testDocument("gdrive", "file-2")))
	require.NoError(t, store.Save(ctx, testDocument("slack", "msg-1")))

	docs, err := store.List(ctx, "gdrive")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Equal(t, "gdrive", doc.Source)
	}
}

func TestDocumentStore_Count_PerSourceAndTotal(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testDocument("gdrive", "file-1")))
	require.NoError(t, store.Save(ctx, testDocument("gdrive", "file-2")))
	require.NoError(t, store.Save(ctx, testDocument("slack", "msg-1")))

	total, err := store.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	gdrive, err := store.Count(ctx, "gdrive")
	require.NoError(t, err)
	assert.Equal(t, 2, gdrive)
}

func TestDocumentStore_DataIsolation(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := testDocument("gdrive", "file-1")
	require.NoError(t, store.Save(ctx, doc))

	retrieved, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	retrieved.Content = "tampered"

	original, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "content of file-1", original.Content)
}

func TestDocumentStore_Concurrency(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	numGoroutines := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			_ = store.Save(ctx, testDocument("gdrive", fmt.Sprintf("file-%d", id)))
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx, "gdrive")
	require.NoError(t, err)
	assert.Equal(t, numGoroutines, count)
}
