// Package kv defines the key-value storage medium that record stores persist
// into, plus the local backends: an in-memory map and a single-file SQLite
// database. Redis and PostgreSQL backends live in their own packages.
//
// Every store owns exactly one key and writes its whole collection as one
// serialized string value. Backends know nothing about the content.
package kv

import (
	"context"
	"errors"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrKeyNotFound is returned by Get when nothing is stored under the key.
	ErrKeyNotFound = errors.New("kv: key not found")

	// ErrQuotaExceeded is returned by Set when the value does not fit.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("kv: backend closed")

	// ErrEmptyKey is returned when an empty key is provided.
	ErrEmptyKey = errors.New("kv: key cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// BACKEND
// ══════════════════════════════════════════════════════════════════════════════

// Backend is a string-keyed, string-valued persistent slot store.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the value stored under key or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}
