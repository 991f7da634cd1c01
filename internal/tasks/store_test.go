package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/adriangreen/tm-list/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, memory.Memory) {
	t.Helper()
	mem, err := memory.NewInMemoryStorage("")
	require.NoError(t, err)
	return NewStore(mem, "", nil), mem
}

func TestLoadAbsentSlotIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	seq := store.Load(context.Background())
	assert.NotNil(t, seq)
	assert.Empty(t, seq)
}

func TestLoadMalformedIsEmpty(t *testing.T) {
	cases := map[string]string{
		"not json":        `{oops`,
		"object":          `{"description":"a"}`,
		"old index field": `[{"description":"a","completed":false,"index":0}]`,
		"missing field":   `[{"description":"a","completed":false}]`,
		"wrong type":      `[{"description":"a","completed":"no","position":0}]`,
		"trailing data":   `[] []`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store, mem := newTestStore(t)
			require.NoError(t, mem.Store(context.Background(), DefaultKey, []byte(raw)))

			assert.Empty(t, store.Load(context.Background()))
		})
	}
}

func TestLoadReindexesStoredPositions(t *testing.T) {
	store, mem := newTestStore(t)
	raw := `[{"description":"a","completed":true,"position":7},{"description":"b","completed":false,"position":7}]`
	require.NoError(t, mem.Store(context.Background(), DefaultKey, []byte(raw)))

	seq := store.Load(context.Background())
	require.Len(t, seq, 2)
	assert.Equal(t, Task{Description: "a", Completed: true, Position: 0}, seq[0])
	assert.Equal(t, Task{Description: "b", Completed: false, Position: 1}, seq[1])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()
	seq := Sequence{
		{Description: "milk", Completed: false, Position: 0},
		{Description: "eggs", Completed: true, Position: 1},
		{Description: "milk", Completed: false, Position: 2},
	}

	require.NoError(t, store.Save(ctx, seq))
	assert.Equal(t, seq, store.Load(ctx))

	// saving what was loaded leaves the slot byte-for-byte unchanged
	before, err := mem.Retrieve(ctx, DefaultKey)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, store.Load(ctx)))
	after, err := mem.Retrieve(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.JSONEq(t, `[
		{"description":"milk","completed":false,"position":0},
		{"description":"eggs","completed":true,"position":1},
		{"description":"milk","completed":false,"position":2}
	]`, string(after))
}

func TestSaveUsesConfiguredKey(t *testing.T) {
	mem, err := memory.NewInMemoryStorage("")
	require.NoError(t, err)
	store := NewStore(mem, "groceries", nil)

	require.NoError(t, store.Save(context.Background(), Sequence{{Description: "a"}}))

	keys, err := mem.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"groceries"}, keys)
}

// failingMemory refuses every write, standing in for a full or unavailable medium.
type failingMemory struct {
	memory.Memory
}

var errDiskFull = errors.New("disk full")

func (failingMemory) Store(context.Context, string, []byte) error { return errDiskFull }

func TestSaveFailureIsWrapped(t *testing.T) {
	mem, err := memory.NewInMemoryStorage("")
	require.NoError(t, err)
	store := NewStore(failingMemory{mem}, "", nil)

	err = store.Save(context.Background(), Sequence{{Description: "a"}})
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, errDiskFull)
}

func TestReindex(t *testing.T) {
	seq := Sequence{{Position: 4}, {Position: 4}, {Position: 0}}
	Reindex(seq)
	for i, task := range seq {
		assert.Equal(t, Position(i), task.Position)
	}
}
