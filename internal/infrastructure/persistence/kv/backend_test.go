package kv

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runBackendContract exercises the behaviour every Backend must share.
func runBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, b.Set(ctx, "documents", `[{"id":"1"}]`))
	got, err := b.Get(ctx, "documents")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, got)

	require.NoError(t, b.Set(ctx, "documents", `[]`))
	got, err = b.Get(ctx, "documents")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	require.NoError(t, b.Delete(ctx, "documents"))
	_, err = b.Get(ctx, "documents")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, b.Delete(ctx, "never-set"))
	assert.ErrorIs(t, b.Set(ctx, "", "x"), ErrEmptyKey)
}

func TestMemory_Contract(t *testing.T) {
	runBackendContract(t, NewMemory())
}

func TestMemory_Quota(t *testing.T) {
	m := NewMemory()
	m.MaxValueBytes = 8

	assert.NoError(t, m.Set(context.Background(), "k", "12345678"))
	assert.ErrorIs(t, m.Set(context.Background(), "k", strings.Repeat("x", 9)), ErrQuotaExceeded)

	v, err := m.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "12345678", v)
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Set(context.Background(), "k", "v"), ErrClosed)
	_, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSQLite_Contract(t *testing.T) {
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "edumanage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runBackendContract(t, db)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "edumanage.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, "custom-subjects", `["Mathématiques"]`))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	v, err := db.Get(ctx, "custom-subjects")
	require.NoError(t, err)
	assert.Equal(t, `["Mathématiques"]`, v)
}

func TestSQLite_InMemory(t *testing.T) {
	db, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()

	runBackendContract(t, db)
}
