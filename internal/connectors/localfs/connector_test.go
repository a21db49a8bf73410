package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestConnector(t *testing.T, root string) *Connector {
	t.Helper()
	conn, err := New(domain.Source{
		ID:     "notes",
		Type:   Type,
		Config: map[string]string{"root": root},
	})
	require.NoError(t, err)
	return conn
}

func TestNew_RequiresRoot(t *testing.T) {
	_, err := New(domain.Source{ID: "notes", Type: Type})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	dir := t.TempDir()
	conn := newTestConnector(t, dir)
	assert.NoError(t, conn.Authenticate(context.Background(), domain.Credentials{}))

	missing := newTestConnector(t, filepath.Join(dir, "nope"))
	assert.ErrorIs(t, missing.Authenticate(context.Background(), domain.Credentials{}),
		domain.ErrAuthenticationFailed)
}

func TestListChanges_FullPass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "hello")
	writeFile(t, dir, "notes/plan.txt", "plan")
	writeFile(t, dir, "image.png", "binary")
	writeFile(t, dir, ".hidden/secret.md", "hidden")

	conn := newTestConnector(t, dir)
	page, err := conn.ListChanges(context.Background(), "", true)
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Empty(t, page.Removed)
	assert.Empty(t, page.NextPage)
	assert.NotEmpty(t, page.NewCursor)

	ids := []string{page.Items[0].ID, page.Items[1].ID}
	assert.Contains(t, ids, "readme.md")
	assert.Contains(t, ids, filepath.Join("notes", "plan.txt"))
}

func TestListChanges_IncrementalUsesCursor(t *testing.T) {
	dir := t.TempDir()
	old := writeFile(t, dir, "old.md", "old")
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	conn := newTestConnector(t, dir)

	cursor := time.Now().Add(-time.Hour).Format(time.RFC3339Nano)
	page, err := conn.ListChanges(context.Background(), cursor, false)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	writeFile(t, dir, "fresh.md", "fresh")
	page, err = conn.ListChanges(context.Background(), cursor, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "fresh.md", page.Items[0].ID)
}

func TestListChanges_BadCursorReportsExpired(t *testing.T) {
	dir := t.TempDir()
	conn := newTestConnector(t, dir)

	_, err := conn.ListChanges(context.Background(), "not-a-timestamp", false)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestFetchContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "file body")

	conn := newTestConnector(t, dir)
	content, err := conn.FetchContent(context.Background(), domain.SourceItem{ID: "readme.md"})
	require.NoError(t, err)
	assert.Equal(t, "file body", content)
}

func TestFetchContent_MissingFile(t *testing.T) {
	conn := newTestConnector(t, t.TempDir())

	_, err := conn.FetchContent(context.Background(), domain.SourceItem{ID: "gone.md"})
	assert.ErrorIs(t, err, domain.ErrContentUnavailable)
}
