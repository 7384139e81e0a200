// Package retry runs an operation again with exponential backoff and jitter.
// Used by the school API client and when opening database connections.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// marked carries a retry decision made by the operation itself.
type marked struct {
	err   error
	retry bool
}

func (m *marked) Error() string { return m.err.Error() }
func (m *marked) Unwrap() error { return m.err }

// Retryable marks err as worth another attempt.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &marked{err: err, retry: true}
}

// Permanent marks err as final; Do returns it at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &marked{err: err}
}

// decision reports whether err was marked and, if so, whether to retry.
func decision(err error) (retry, ok bool) {
	var m *marked
	if errors.As(err, &m) {
		return m.retry, true
	}
	return false, false
}

// strip removes the outermost marker so callers see the original error.
func strip(err error) error {
	var m *marked
	if errors.As(err, &m) && error(m) == err {
		return m.err
	}
	return err
}

// Policy describes how many attempts to make and how long to wait between
// them. The zero value makes a single attempt.
type Policy struct {
	// Attempts is the total number of calls, the first one included.
	Attempts int

	// BaseDelay is the wait after the first failure; it doubles each time.
	BaseDelay time.Duration

	// MaxDelay caps the wait.
	MaxDelay time.Duration

	// Jitter spreads each wait by ±Jitter of its value (0..1).
	Jitter float64

	// RetryIf decides for errors the operation did not mark. Nil retries
	// only errors wrapped with Retryable.
	RetryIf func(error) bool

	// OnRetry observes each failed attempt that will be retried.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// SchoolAPI is the policy for remote school API calls.
func SchoolAPI(onRetry func(attempt int, err error, delay time.Duration)) Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  10 * time.Second,
		Jitter:    0.2,
		OnRetry:   onRetry,
	}
}

// Database is the policy for opening a database connection. Every error is
// retried.
func Database() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 50 * time.Millisecond,
		MaxDelay:  time.Second,
		Jitter:    0.05,
		RetryIf:   func(error) bool { return true },
	}
}

// Do calls op until it succeeds, returns a non-retryable error, the attempts
// run out or ctx ends. The returned error has its retry marker removed.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return strip(last)
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		last = err

		if !p.shouldRetry(err) || attempt == attempts {
			return strip(err)
		}

		delay := p.delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return strip(last)
		case <-timer.C:
		}
	}
	return strip(last)
}

func (p Policy) shouldRetry(err error) bool {
	if retry, ok := decision(err); ok {
		return retry
	}
	return p.RetryIf != nil && p.RetryIf(err)
}

func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		d += d * p.Jitter * (rand.Float64()*2 - 1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
