package redis

import (
	"context"
	"sort"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/kv"
)

func newTestBackend(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := NewBackendFromClient(client, DefaultKeyPrefix)
	t.Cleanup(func() { _ = b.Close() })
	return b, mr
}

func TestBackend_GetSetDelete(t *testing.T) {
	b, mr := newTestBackend(t)
	ctx := context.Background()

	_, err := b.Get(ctx, "documents")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	require.NoError(t, b.Set(ctx, "documents", `[]`))
	v, err := b.Get(ctx, "documents")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	// Keys are namespaced.
	raw, err := mr.Get("edumanage:documents")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)

	require.NoError(t, b.Delete(ctx, "documents"))
	assert.False(t, mr.Exists("edumanage:documents"))
}

func TestBackend_Keys(t *testing.T) {
	b, mr := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "notifications", `[]`))
	require.NoError(t, b.Set(ctx, "activity-feed", `[]`))
	require.NoError(t, mr.Set("other:key", "x"))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"activity-feed", "notifications"}, keys)
}

func TestBackend_EmptyKey(t *testing.T) {
	b, _ := newTestBackend(t)
	assert.ErrorIs(t, b.Set(context.Background(), "", "x"), kv.ErrEmptyKey)
}

func TestNewBackend_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Host, cfg.Port = hostPort(t, mr)
	cfg.MaxRetries = -1
	mr.Close()

	_, err := NewBackend(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestNewBackend_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Host, cfg.Port = hostPort(t, mr)

	b, err := NewBackend(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()

	assert.NoError(t, b.Ping(context.Background()))
}

func hostPort(t *testing.T, mr *miniredis.Miniredis) (string, int) {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return mr.Host(), port
}
