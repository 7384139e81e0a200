// Package messaging implements in-process typed topics. A topic fans a
// published value out to every live subscription on the publishing goroutine.
package messaging

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEventBusClosed is returned when operations are attempted on a closed topic.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrHandlerPanic is reported when a handler panics.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrNilHandler is returned by Subscribe for a nil handler.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// ══════════════════════════════════════════════════════════════════════════════
// TOPIC
// ══════════════════════════════════════════════════════════════════════════════

// Handler receives published values.
type Handler[T any] func(T)

// Topic delivers values of type T to its subscribers synchronously, in
// subscription order. A panicking handler is logged and does not prevent
// delivery to the others.
type Topic[T any] struct {
	name   string
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[uint64]Handler[T]
	order  []uint64
	nextID uint64
	closed bool

	published atomic.Int64
	failures  atomic.Int64
}

// NewTopic creates a topic. A nil logger falls back to slog.Default().
func NewTopic[T any](name string, logger *slog.Logger) *Topic[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Topic[T]{
		name:   name,
		logger: logger.With("topic", name),
		subs:   make(map[uint64]Handler[T]),
	}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string { return t.name }

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Subscribe registers h for every value published after the call returns.
func (t *Topic[T]) Subscribe(h Handler[T]) (*Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrEventBusClosed
	}

	t.nextID++
	id := t.nextID
	t.subs[id] = h
	t.order = append(t.order, id)
	t.logger.Debug("subscribed handler", "subscription_id", id)

	return &Subscription{cancel: func() { t.remove(id) }}, nil
}

func (t *Topic[T]) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.subs[id]; !ok {
		return
	}
	delete(t.subs, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Publish delivers v to every current subscriber and returns once all of
// them have run.
func (t *Topic[T]) Publish(v T) error {
	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]Handler[T], 0, len(t.order))
	for _, id := range t.order {
		handlers = append(handlers, t.subs[id])
	}
	t.mu.RUnlock()

	t.published.Add(1)
	for _, h := range handlers {
		if err := t.deliver(h, v); err != nil {
			t.failures.Add(1)
			t.logger.Error("handler error", "error", err)
		}
	}
	return nil
}

func (t *Topic[T]) deliver(h Handler[T], v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	h(v)
	return nil
}

// SubscriberCount returns the number of live subscriptions.
func (t *Topic[T]) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// Stats is a point-in-time snapshot of topic counters.
type Stats struct {
	Published       int64
	HandlerFailures int64
	Subscribers     int
}

// Stats returns the topic counters.
func (t *Topic[T]) Stats() Stats {
	return Stats{
		Published:       t.published.Load(),
		HandlerFailures: t.failures.Load(),
		Subscribers:     t.SubscriberCount(),
	}
}

// Close drops every subscription. Publish and Subscribe fail afterwards.
func (t *Topic[T]) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.subs = make(map[uint64]Handler[T])
	t.order = nil

	t.logger.Info("topic closed")
	return nil
}
