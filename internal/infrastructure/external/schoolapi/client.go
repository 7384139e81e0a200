// Package schoolapi is a read-only client for the institution's remote entity
// API (students and teachers). Failures degrade to empty results: callers get
// the error for logging, never a nil slice.
package schoolapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/roster"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/pkg/circuitbreaker"
	"github.com/edumanage/edumanage-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the school API client.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8000/api/v1".
	BaseURL string

	// Token is sent as a bearer token when set.
	Token string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 15 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client talks to the remote school API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	policy     retry.Policy
	breaker    *circuitbreaker.Breaker
}

// NewClient creates a new client.
func NewClient(config Config) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	logger := config.Logger
	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
		policy: retry.SchoolAPI(func(attempt int, err error, delay time.Duration) {
			logger.Warn("school api request retry", "attempt", attempt, "delay", delay, "error", err)
		}),
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:      "school-api",
			IsFailure: countsAgainstAPI,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// ListStudents fetches every student. On failure the slice is empty and the
// error says why.
func (c *Client) ListStudents(ctx context.Context) ([]roster.Student, error) {
	body, err := c.get(ctx, "/students")
	if err != nil {
		return []roster.Student{}, fmt.Errorf("list students: %w", err)
	}
	dtos, err := decodeList[StudentDTO](body)
	if err != nil {
		return []roster.Student{}, shared.WrapError("directory", "ListStudents", shared.ErrInvalidFormat, "decode students", err)
	}
	return toStudents(dtos), nil
}

// GetStudent fetches one student. A 404 yields ok == false with a nil error.
func (c *Client) GetStudent(ctx context.Context, id string) (roster.Student, bool, error) {
	body, err := c.get(ctx, "/students/"+url.PathEscape(id))
	if isNotFound(err) {
		return roster.Student{}, false, nil
	}
	if err != nil {
		return roster.Student{}, false, fmt.Errorf("get student %s: %w", id, err)
	}
	dto, err := decodeOne[StudentDTO](body)
	if err != nil {
		return roster.Student{}, false, shared.WrapError("directory", "GetStudent", shared.ErrInvalidFormat, "decode student", err)
	}
	return dto.ToStudent(), true, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// ListTeachers fetches every teacher. On failure the slice is empty.
func (c *Client) ListTeachers(ctx context.Context) ([]roster.Contact, error) {
	body, err := c.get(ctx, "/teachers")
	if err != nil {
		return []roster.Contact{}, fmt.Errorf("list teachers: %w", err)
	}
	dtos, err := decodeList[TeacherDTO](body)
	if err != nil {
		return []roster.Contact{}, shared.WrapError("directory", "ListTeachers", shared.ErrInvalidFormat, "decode teachers", err)
	}
	return toContacts(dtos), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// get performs a GET through the circuit breaker with retries.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		body, err = retry.Value(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
			return c.doSingleRequest(ctx, path)
		})
		return err
	})
	switch {
	case err == nil:
		return body, nil
	case errors.Is(err, circuitbreaker.ErrOpen):
		return nil, shared.WrapError("directory", "Request", shared.ErrServiceUnavailable, "circuit open", err)
	default:
		return nil, err
	}
}

// doSingleRequest performs one HTTP request and classifies its failure as
// retryable (network, 429, 5xx) or permanent (other 4xx).
func (c *Client) doSingleRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	c.logger.DebugContext(ctx, "school api request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Permanent(err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, retry.Retryable(shared.WrapError("directory", "Request", shared.ErrTimeout, "request timed out", err))
		}
		return nil, retry.Retryable(shared.WrapError("directory", "Request", shared.ErrServiceUnavailable, "request failed", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, retry.Retryable(shared.ErrDirectoryRateLimited)
	case resp.StatusCode >= 500:
		return nil, retry.Retryable(shared.WrapError("directory", "Request", shared.ErrServiceUnavailable,
			"server error "+strconv.Itoa(resp.StatusCode), apiError(resp.StatusCode, body)))
	case resp.StatusCode >= 400:
		return nil, retry.Permanent(apiError(resp.StatusCode, body))
	}
	return body, nil
}

func apiError(status int, body []byte) error {
	e := &APIErrorDTO{Status: status}
	_ = decodeInto(body, e)
	return e
}

// countsAgainstAPI keeps client errors (4xx other than 429) and caller
// cancellations from opening the breaker.
func countsAgainstAPI(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	return true
}

func isNotFound(err error) bool {
	var apiErr *APIErrorDTO
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsHealthy reports whether the API answers GET /students.
func (c *Client) IsHealthy(ctx context.Context) bool {
	_, err := c.doSingleRequest(ctx, "/students")
	return err == nil
}

// Circuit returns the circuit breaker counters for health reporting.
func (c *Client) Circuit() circuitbreaker.Snapshot {
	return c.breaker.Snapshot()
}
