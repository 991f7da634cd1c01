package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]Memory {
	t.Helper()
	ctx := context.Background()
	out := map[string]Memory{}
	for _, name := range Backends {
		m, err := Open(ctx, name, t.TempDir())
		require.NoError(t, err, name)
		t.Cleanup(func() { _ = m.Close() })
		out[name] = m
	}
	return out
}

func TestBackendsRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, mem := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, mem.Store(ctx, "tasks", []byte(`[]`)))
			require.NoError(t, mem.Store(ctx, "tasks", []byte(`[{"a":1}]`)))

			got, err := mem.Retrieve(ctx, "tasks")
			require.NoError(t, err)
			assert.Equal(t, `[{"a":1}]`, string(got))

			require.NoError(t, mem.Store(ctx, "other", []byte("x")))
			keys, err := mem.List(ctx, "ta")
			require.NoError(t, err)
			assert.Equal(t, []string{"tasks"}, keys)

			require.NoError(t, mem.Delete(ctx, "tasks"))
			_, err = mem.Retrieve(ctx, "tasks")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestBackendsRejectEmptyKey(t *testing.T) {
	ctx := context.Background()
	for name, mem := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, mem.Store(ctx, "", []byte("x")), ErrKeyEmpty)
			_, err := mem.Retrieve(ctx, "")
			assert.ErrorIs(t, err, ErrKeyEmpty)
			assert.ErrorIs(t, mem.Delete(ctx, ""), ErrKeyEmpty)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "redis", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestInMemoryStoragePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")

	first, err := NewInMemoryStorage(path)
	require.NoError(t, err)
	require.NoError(t, first.Store(ctx, "tasks", []byte(`["milk"]`)))
	require.NoError(t, first.Close())

	second, err := NewInMemoryStorage(path)
	require.NoError(t, err)
	got, err := second.Retrieve(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `["milk"]`, string(got))
}

func TestInMemoryStorageIgnoresCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	mem, err := NewInMemoryStorage(path)
	require.NoError(t, err)

	_, err = mem.Retrieve(ctx, "tasks")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, mem.Store(ctx, "tasks", []byte("[]")))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tasks"`)
}

func TestBadgerMemoryReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	mem, err := NewBadgerMemory(dir)
	require.NoError(t, err)
	require.NoError(t, StoreJSON(ctx, mem, "tasks", []string{"a", "b"}))
	require.NoError(t, mem.Close())

	mem, err = NewBadgerMemory(dir)
	require.NoError(t, err)
	defer mem.Close()

	got, err := mem.Retrieve(ctx, "tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(got))
}

func TestSQLiteListTreatsPrefixLiterally(t *testing.T) {
	ctx := context.Background()
	mem, err := NewSQLiteMemory(ctx, filepath.Join(t.TempDir(), "kv.sqlite"))
	require.NoError(t, err)
	defer mem.Close()

	require.NoError(t, mem.Store(ctx, "a%b", []byte("1")))
	require.NoError(t, mem.Store(ctx, "axb", []byte("2")))

	keys, err := mem.List(ctx, "a%")
	require.NoError(t, err)
	assert.Equal(t, []string{"a%b"}, keys)
}
