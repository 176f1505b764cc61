package repository

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestSQLite(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "jetrent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// kvBackends returns every backend that can run without external services.
// REDIS_URL adds Redis.
func kvBackends(t *testing.T) map[string]KV {
	t.Helper()
	backends := map[string]KV{
		"memory": NewMemoryStore(),
		"sqlite": newTestSQLite(t),
	}
	if url := os.Getenv("JETRENT_TEST_REDIS_URL"); url != "" {
		store, err := NewRedisStore(url)
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		backends["redis"] = store
	}
	return backends
}

func TestKV_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, "test:missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.SetMany(ctx, map[string][]byte{
				"test:a": []byte(`{"x":1}`),
				"test:b": []byte(`[1,2]`),
			}))

			value, ok, err := kv.Get(ctx, "test:a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"x":1}`, string(value))

			require.NoError(t, kv.SetMany(ctx, map[string][]byte{"test:a": []byte(`{"x":2}`)}))
			value, _, err = kv.Get(ctx, "test:a")
			require.NoError(t, err)
			assert.JSONEq(t, `{"x":2}`, string(value))

			require.NoError(t, kv.Delete(ctx, "test:a", "test:b", "test:never"))
			_, ok, err = kv.Get(ctx, "test:b")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, kv.Delete(ctx))
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, store.SetMany(ctx, map[string][]byte{"k": value}))
	value[0] = 'z'

	got, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "state.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, path)
	assert.Equal(t, DriverSQLite, store.Driver())
}
