package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("export_dir", "/tmp/exports")
	require.NoError(t, err)

	val, ok := store.Get("export_dir")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/exports", val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("data_dir", "/tmp/data"))
	require.NoError(t, store.Set("max_file_size", 1048576))
	require.NoError(t, store.Set("verbose", true))

	assert.Equal(t, "/tmp/data", store.GetString("data_dir"))
	assert.Equal(t, 1048576, store.GetInt("max_file_size"))
	assert.True(t, store.GetBool("verbose"))

	// Missing or mistyped keys fall back to zero values.
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("data_dir"))
	assert.False(t, store.GetBool("max_file_size"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("doc_truncate_limit", 100000))

	// Re-open from disk; TOML integers come back as int64.
	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 100000, reopened.GetInt("doc_truncate_limit"))
}

func TestConfigStore_MissingFileStartsEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	_, ok := store.Get("anything")
	assert.False(t, ok)
}
