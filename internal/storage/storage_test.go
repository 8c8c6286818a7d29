package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blackenaxe/icom/internal/storage"
)

// stores returns every Store implementation under test, keyed by name.
// The keyring backend is excluded: it needs a system keyring daemon.
func stores(t *testing.T) map[string]storage.Store {
	t.Helper()

	sqlite, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]storage.Store{
		"memory": storage.NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(storage.KeyToken, "abc123"))

			value, ok, err := store.Get(storage.KeyToken)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "abc123", value)
		})
	}
}

func TestStoreAbsentKeyIsNotAnError(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			value, ok, err := store.Get("never-written")
			require.NoError(t, err)
			require.False(t, ok)
			require.Empty(t, value)
		})
	}
}

func TestStoreSetOverwrites(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(storage.KeyUser, "first"))
			require.NoError(t, store.Set(storage.KeyUser, "second"))

			value, ok, err := store.Get(storage.KeyUser)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "second", value)
		})
	}
}

func TestStoreRemove(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(storage.KeyToken, "abc123"))
			require.NoError(t, store.Remove(storage.KeyToken))

			_, ok, err := store.Get(storage.KeyToken)
			require.NoError(t, err)
			require.False(t, ok)

			// Removing an already absent key is a no-op, not an error.
			require.NoError(t, store.Remove(storage.KeyToken))
		})
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")

	first, err := storage.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(storage.KeyToken, "persisted"))
	require.NoError(t, first.Close())

	second, err := storage.NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	value, ok, err := second.Get(storage.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "persisted", value)
}
