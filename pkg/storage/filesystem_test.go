package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveReadDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("2024/03/48213377.html", []byte("<html></html>"))
	require.NoError(t, err)
	require.Equal(t, "2024/03/48213377.html", name)

	data, err := store.Read(name)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(data))

	require.NoError(t, store.Delete(name))
	_, err = store.Read(name)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Delete(name))
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "/etc/passwd", "a/../../b"} {
		_, err := store.Save(name, []byte("x"))
		require.Error(t, err, name)
	}
	_, err = store.Read("../x")
	require.Error(t, err)
}
