package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndExists(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads/products/")
	require.NoError(t, err)

	path, err := store.Save("a.jpg", []byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/a.jpg", path)
	assert.True(t, store.Exists(path))

	data, err := os.ReadFile(filepath.Join(store.Dir(), "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)
}

func TestLocalStoreSaveRefusesOverwrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads/products")
	require.NoError(t, err)

	_, err = store.Save("a.jpg", []byte("first"))
	require.NoError(t, err)
	_, err = store.Save("a.jpg", []byte("second"))
	require.Error(t, err)
}

func TestLocalStoreRemoveToleratesMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads/products")
	require.NoError(t, err)

	path, err := store.Save("a.jpg", []byte("bytes"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	assert.False(t, store.Exists(path))
	require.NoError(t, store.Remove(path))
}

func TestLocalStorePathsCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "uploads"), "/uploads/products")
	require.NoError(t, err)

	secret := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("keep"), 0o644))

	require.NoError(t, store.Remove("/uploads/products/../../secret.txt"))
	_, err = os.Stat(secret)
	assert.NoError(t, err, "files outside the store directory must be untouchable")
}
