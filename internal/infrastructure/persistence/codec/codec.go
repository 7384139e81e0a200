// Package codec binds one storage key of a kv.Backend to a typed JSON value.
//
// Reads never fail: a missing key, unparsable content or a value of the wrong
// container shape all yield an empty collection. Writes never fail either;
// backend errors such as kv.ErrQuotaExceeded are dropped. Both kinds of
// failure are reported to an optional DiagnosticFunc so they can be logged.
package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/kv"
)

// ══════════════════════════════════════════════════════════════════════════════
// DIAGNOSTICS
// ══════════════════════════════════════════════════════════════════════════════

// Op identifies the failing step.
type Op string

const (
	OpLoad   Op = "load"
	OpDecode Op = "decode"
	OpEncode Op = "encode"
	OpStore  Op = "store"
)

// Diagnostic describes a swallowed storage failure.
type Diagnostic struct {
	Key string
	Op  Op
	Err error
}

// DiagnosticFunc receives swallowed failures. It must not block.
type DiagnosticFunc func(ctx context.Context, d Diagnostic)

// LogDiagnostics returns a DiagnosticFunc that logs at WARN level.
func LogDiagnostics(logger *slog.Logger) DiagnosticFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, d Diagnostic) {
		logger.WarnContext(ctx, "storage operation failed",
			"key", d.Key,
			"op", string(d.Op),
			"error", d.Err,
		)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SLOT
// ══════════════════════════════════════════════════════════════════════════════

// slot holds what List and Object share.
type slot struct {
	backend kv.Backend
	key     string
	diag    DiagnosticFunc
}

func (s slot) report(ctx context.Context, op Op, err error) {
	if s.diag != nil {
		s.diag(ctx, Diagnostic{Key: s.key, Op: op, Err: err})
	}
}

// load returns the raw content, or false when there is nothing usable.
func (s slot) load(ctx context.Context) (string, bool) {
	raw, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			s.report(ctx, OpLoad, err)
		}
		return "", false
	}
	if raw == "" {
		return "", false
	}
	return raw, true
}

func (s slot) store(ctx context.Context, v any) {
	data, err := marshal(v)
	if err != nil {
		s.report(ctx, OpEncode, err)
		return
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		s.report(ctx, OpStore, err)
	}
}

// marshal encodes compactly without HTML escaping, so content written by
// other clients survives a read-write cycle byte for byte.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST
// ══════════════════════════════════════════════════════════════════════════════

// List is a JSON array of T stored under one key.
type List[T any] struct {
	slot
}

// NewList binds a list to key. diag may be nil.
func NewList[T any](backend kv.Backend, key string, diag DiagnosticFunc) *List[T] {
	return &List[T]{slot{backend: backend, key: key, diag: diag}}
}

// Key returns the storage key.
func (l *List[T]) Key() string { return l.key }

// Read returns the stored items, never nil.
func (l *List[T]) Read(ctx context.Context) []T {
	raw, ok := l.load(ctx)
	if !ok {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		l.report(ctx, OpDecode, err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// Write replaces the stored items. A nil slice is written as [].
func (l *List[T]) Write(ctx context.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	l.store(ctx, items)
}

// ══════════════════════════════════════════════════════════════════════════════
// OBJECT
// ══════════════════════════════════════════════════════════════════════════════

// Object is a single JSON value of T stored under one key. Stored fields are
// decoded over the value returned by defaults, so missing fields keep their
// default.
type Object[T any] struct {
	slot
	defaults func() T
}

// NewObject binds an object to key. defaults and diag may be nil.
func NewObject[T any](backend kv.Backend, key string, defaults func() T, diag DiagnosticFunc) *Object[T] {
	if defaults == nil {
		defaults = func() T {
			var zero T
			return zero
		}
	}
	return &Object[T]{slot: slot{backend: backend, key: key, diag: diag}, defaults: defaults}
}

// Key returns the storage key.
func (o *Object[T]) Key() string { return o.key }

// Read returns the stored value merged over the defaults.
func (o *Object[T]) Read(ctx context.Context) T {
	raw, ok := o.load(ctx)
	if !ok {
		return o.defaults()
	}
	v := o.defaults()
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		o.report(ctx, OpDecode, err)
		return o.defaults()
	}
	return v
}

// Write replaces the stored value.
func (o *Object[T]) Write(ctx context.Context, v T) {
	o.store(ctx, v)
}

// Clear removes the stored value; the next Read returns the defaults.
func (o *Object[T]) Clear(ctx context.Context) {
	if err := o.backend.Delete(ctx, o.key); err != nil {
		o.report(ctx, OpStore, err)
	}
}
