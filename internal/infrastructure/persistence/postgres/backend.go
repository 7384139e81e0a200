package postgres

import (
	"context"
	"fmt"

	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/kv"
	"github.com/edumanage/edumanage-core/pkg/retry"
)

// Backend stores each collection as one row of kv_slots.
type Backend struct {
	conn *Connection
}

var _ kv.Backend = (*Backend)(nil)

// Open connects, applies pending migrations and returns a ready backend.
// The connection attempt is retried with the retry.Database policy.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	conn, err := retry.Value(ctx, retry.Database(), func(ctx context.Context) (*Connection, error) {
		return NewConnection(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	if err := NewMigrator(conn).Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return NewBackend(conn), nil
}

// NewBackend wraps an existing, migrated connection.
func NewBackend(conn *Connection) *Backend {
	return &Backend{conn: conn}
}

// Get implements kv.Backend.
func (b *Backend) Get(ctx context.Context, key string) (string, error) {
	pool, err := b.conn.pooled()
	if err != nil {
		return "", err
	}

	var value string
	err = pool.QueryRow(ctx, `SELECT value FROM kv_slots WHERE key = $1`, key).Scan(&value)
	if IsNoRows(err) {
		return "", kv.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("postgres: get %q: %w", key, err)
	}
	return value, nil
}

// Set implements kv.Backend.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	pool, err := b.conn.pooled()
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO kv_slots (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("postgres: set %q: %w", key, err)
	}
	return nil
}

// Delete implements kv.Backend.
func (b *Backend) Delete(ctx context.Context, key string) error {
	pool, err := b.conn.pooled()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `DELETE FROM kv_slots WHERE key = $1`, key); err != nil {
		return fmt.Errorf("postgres: delete %q: %w", key, err)
	}
	return nil
}

// Ping checks the pool.
func (b *Backend) Ping(ctx context.Context) error {
	return b.conn.Ping(ctx)
}

// Close implements kv.Backend.
func (b *Backend) Close() error {
	b.conn.Close()
	return nil
}
