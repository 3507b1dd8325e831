package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	path, err := store.Save("plan/cronograma.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plan", "cronograma.csv"), path)
	assert.Equal(t, path, store.Path("plan/cronograma.csv"))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(body))
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../x.csv", "/etc/passwd", "a/../../x"} {
		_, err := store.Save(name, []byte("x"))
		assert.Error(t, err, name)
		assert.Empty(t, store.Path(name), name)
	}
}
