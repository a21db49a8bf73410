package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Chunking.ChunkSize)
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, 1500, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 0.3, cfg.Search.SimilarityThreshold)
	assert.Equal(t, "memory", cfg.Vector.Provider)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[chunking]
chunk_size = 400

[embedding]
provider = "openai"
api_key = "sk-test"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Chunking.ChunkSize)
	// Unset keys keep their defaults.
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, 32, cfg.Embedding.BatchSize)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid"), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.DataDir = "/var/lib/sift"
	cfg.Vector.Provider = "qdrant"
	cfg.Vector.Collection = "work_chunks"
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.IntervalMinutes = 30

	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/sift", loaded.DataDir)
	assert.Equal(t, "qdrant", loaded.Vector.Provider)
	assert.Equal(t, "work_chunks", loaded.Vector.Collection)
	assert.True(t, loaded.Scheduler.Enabled)
	assert.Equal(t, 30, loaded.Scheduler.IntervalMinutes)
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	require.NoError(t, Save(dir, Default()))

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
