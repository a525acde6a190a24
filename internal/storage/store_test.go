package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := Load(ctx, s, "records", []record{{ID: "default"}})
	require.NoError(t, err)
	assert.Equal(t, []record{{ID: "default"}}, got, "missing key yields default")

	in := []record{{ID: "1", Name: "one"}, {ID: "2", Name: "two"}}
	require.NoError(t, Save(ctx, s, "records", in))
	in[0].Name = "mutated after save"

	got, err = Load(ctx, s, "records", []record(nil))
	require.NoError(t, err)
	assert.Equal(t, []record{{ID: "1", Name: "one"}, {ID: "2", Name: "two"}}, got)

	require.NoError(t, Save(ctx, s, "records", []record{}))
	got, err = Load(ctx, s, "records", []record{{ID: "default"}})
	require.NoError(t, err)
	assert.Empty(t, got, "stored empty collection wins over default")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	assert.Equal(t, 1, s.Keys())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	exerciseStore(t, s)

	v, err := s.Version(context.Background(), "records")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, Save(context.Background(), s, "k", map[string]int{"a": 1}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := Load(context.Background(), s, "k", map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, got)
}

func TestSQLiteStoreClosed(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Load(context.Background(), "k", &[]record{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Save(context.Background(), "k", 1), ErrClosed)
}

// plainStore hides the batch support of the wrapped store.
type plainStore struct{ Store }

func exerciseBatch(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, Save(ctx, s, "a", []record{{ID: "old"}}))

	err := SaveBatch(ctx, s, []Entry{
		{Key: "a", Value: []record{{ID: "new"}}},
		{Key: "b", Value: make(chan int)},
	})
	require.Error(t, err)

	got, err := Load(ctx, s, "a", []record(nil))
	require.NoError(t, err)
	assert.Equal(t, []record{{ID: "old"}}, got, "failed batch leaves earlier keys untouched")
	_, err = Load(ctx, s, "b", 0)
	require.NoError(t, err)

	require.NoError(t, SaveBatch(ctx, s, []Entry{
		{Key: "a", Value: []record{{ID: "new"}}},
		{Key: "b", Value: 7},
	}))
	got, err = Load(ctx, s, "a", []record(nil))
	require.NoError(t, err)
	assert.Equal(t, []record{{ID: "new"}}, got)
	n, err := Load(ctx, s, "b", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	assert.NoError(t, SaveBatch(ctx, s, nil))
}

func TestMemoryStoreBatch(t *testing.T) {
	exerciseBatch(t, NewMemoryStore())
}

func TestSQLiteStoreBatch(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	exerciseBatch(t, s)

	v, err := s.Version(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v, "rolled back write does not bump the version")
}

func TestSaveBatchWithoutBatchSupport(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	s := plainStore{mem}
	_, ok := Store(s).(BatchStore)
	require.False(t, ok)

	require.NoError(t, SaveBatch(ctx, s, []Entry{{Key: "a", Value: 1}, {Key: "b", Value: 2}}))
	assert.Equal(t, 2, mem.Keys())
}
