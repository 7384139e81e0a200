// Package handlers contains the health checker and middleware used by the
// HTTP server.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/kv"
	"github.com/edumanage/edumanage-core/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECK INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker reports service health for /health and /ready.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// HealthCheckFunc performs a single named check and fails with an error.
type HealthCheckFunc func(ctx context.Context) error

// HealthStatus is the aggregated result.
type HealthStatus struct {
	Healthy   bool                   `json:"healthy"`
	Ready     bool                   `json:"ready"`
	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPOSITE HEALTH CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// CompositeHealthChecker runs every registered check in parallel.
type CompositeHealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]HealthCheckFunc
	startTime time.Time
	version   string
	timeout   time.Duration
}

// NewCompositeHealthChecker creates a checker with a 5s per-check timeout.
func NewCompositeHealthChecker(version string) *CompositeHealthChecker {
	return &CompositeHealthChecker{
		checks:    make(map[string]HealthCheckFunc),
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// SetTimeout sets the timeout for individual health checks.
func (c *CompositeHealthChecker) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// AddCheck registers or replaces a named check.
func (c *CompositeHealthChecker) AddCheck(name string, check HealthCheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check runs all checks and aggregates them. One failing check marks the
// whole service unhealthy and not ready.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	timeout := c.timeout
	c.mu.RUnlock()

	status := HealthStatus{
		Healthy:   true,
		Ready:     true,
		Checks:    make(map[string]CheckResult, len(checks)),
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}
	if len(checks) == 0 {
		status.Message = "No health checks registered"
		return status
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := check(checkCtx)
			result := CheckResult{
				Healthy:  err == nil,
				Message:  "OK",
				Duration: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				result.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			status.Checks[name] = result
			if err != nil {
				failed = append(failed, name)
			}
		}(name, check)
	}
	wg.Wait()

	if len(failed) == 0 {
		status.Message = "All checks passed"
		return status
	}
	sort.Strings(failed)
	status.Healthy = false
	status.Ready = false
	status.Message = "Some checks failed: " + strings.Join(failed, ", ")
	return status
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDEFINED HEALTH CHECKS
// ══════════════════════════════════════════════════════════════════════════════

// healthCheckKey is read, never written, by the storage check.
const healthCheckKey = "__health__"

// Pinger is implemented by backends with a native liveness check
// (Redis, PostgreSQL).
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewStorageCheck checks a storage backend. Backends with Ping use it;
// others are checked with a read, where a missing key counts as healthy.
func NewStorageCheck(b kv.Backend) HealthCheckFunc {
	return func(ctx context.Context) error {
		if p, ok := b.(Pinger); ok {
			return p.Ping(ctx)
		}
		if _, err := b.Get(ctx, healthCheckKey); err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
			return err
		}
		return nil
	}
}

// ExternalAPIChecker reports whether a remote API is reachable.
type ExternalAPIChecker interface {
	IsHealthy(ctx context.Context) bool
}

// CircuitReporter is implemented by clients guarded by a circuit breaker.
type CircuitReporter interface {
	Circuit() circuitbreaker.Snapshot
}

// NewExternalAPICheck creates an external API health check function. When
// the client reports an open circuit the API is not called.
func NewExternalAPICheck(name string, api ExternalAPIChecker) HealthCheckFunc {
	return func(ctx context.Context) error {
		if r, ok := api.(CircuitReporter); ok {
			if snap := r.Circuit(); snap.State == circuitbreaker.StateOpen {
				return fmt.Errorf("%s circuit open since %s (%d calls rejected)",
					name, snap.OpenedAt.UTC().Format(time.RFC3339), snap.Rejected)
			}
		}
		if !api.IsHealthy(ctx) {
			return fmt.Errorf("%s is unreachable", name)
		}
		return nil
	}
}
