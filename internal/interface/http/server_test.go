package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	settingsapp "github.com/edumanage/edumanage-core/internal/application/settings"
	"github.com/edumanage/edumanage-core/internal/domain/attendance"
	"github.com/edumanage/edumanage-core/internal/domain/document"
	"github.com/edumanage/edumanage-core/internal/domain/settings"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/kv"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/store"
	"github.com/edumanage/edumanage-core/internal/interface/http/handlers"
)

type stubSigner struct{}

func (stubSigner) Sign(_ context.Context, id string, signed bool, signer string) (document.Record, error) {
	if id != "doc-1" {
		return document.Record{}, shared.ErrDocumentNotFound
	}
	return document.Record{ID: id, Signed: signed, SignedBy: signer, DataURL: "data:application/pdf;base64,AA=="}, nil
}

type testEnv struct {
	handler  http.Handler
	stores   *store.Stores
	settings *settingsapp.Service
}

func newTestEnv(t *testing.T, mutate func(*Config)) testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := kv.NewMemory()
	stores := store.New(store.Config{Backend: backend, Logger: logger})
	svc := settingsapp.NewService(stores.Settings, logger)
	t.Cleanup(func() { _ = svc.Close() })

	checker := handlers.NewCompositeHealthChecker("test")
	checker.AddCheck("storage", handlers.NewStorageCheck(backend))

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	if mutate != nil {
		mutate(&cfg)
	}
	srv := NewServer(cfg, Dependencies{
		Settings:      svc,
		Attendance:    stores.Attendance,
		Documents:     stubSigner{},
		Logger:        logger,
		HealthChecker: checker,
	})
	return testEnv{handler: srv.Handler(), stores: stores, settings: svc}
}

func (e testEnv) do(t *testing.T, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeData[handlers.HealthStatus](t, rec)
	assert.True(t, status.Healthy)
	assert.Contains(t, status.Checks, "storage")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestServer_Settings(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/settings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, settings.Defaults().Name, decodeData[settings.Institution](t, rec).Name)

	var broadcast []settings.Institution
	_, err := env.settings.Subscribe(func(v settings.Institution) { broadcast = append(broadcast, v) })
	require.NoError(t, err)

	v := settings.Defaults()
	v.Name = "Lycée Al Khawarizmi"
	v.Language = "en"
	body, err := json.Marshal(v)
	require.NoError(t, err)

	rec = env.do(t, http.MethodPut, "/api/v1/settings", string(body), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, broadcast, 1)
	assert.Equal(t, "Lycée Al Khawarizmi", broadcast[0].Name)
	assert.Equal(t, "en", env.settings.Get(context.Background()).Language)

	v.Email = "nope"
	body, _ = json.Marshal(v)
	rec = env.do(t, http.MethodPut, "/api/v1/settings", string(body), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, broadcast, 1)

	rec = env.do(t, http.MethodPut, "/api/v1/settings", "{", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SettingsRequiresAPIKeyWhenConfigured(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.APIKeys = []string{"secret"} })
	body, _ := json.Marshal(settings.Defaults())

	rec := env.do(t, http.MethodPut, "/api/v1/settings", string(body), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/settings", string(body), map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/settings", string(body), map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/settings", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_AttendancePercentage(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	require.NoError(t, env.stores.Attendance.SaveBatch(ctx, "2025-03-10", "2BAC", []attendance.StudentStatus{
		{Student: "Sara", Status: attendance.StatusPresent},
	}))
	require.NoError(t, env.stores.Attendance.SaveBatch(ctx, "2025-03-11", "2BAC", []attendance.StudentStatus{
		{Student: "Sara", Status: attendance.StatusLate},
	}))

	rec := env.do(t, http.MethodGet, "/api/v1/attendance/percentage?group=2BAC&student=Sara", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeData[PercentageResponse](t, rec)
	require.True(t, resp.HasData)
	assert.Equal(t, 75.0, *resp.Percentage)

	rec = env.do(t, http.MethodGet, "/api/v1/attendance/percentage?group=2BAC&student=Karim", "", nil)
	resp = decodeData[PercentageResponse](t, rec)
	assert.False(t, resp.HasData)
	assert.Nil(t, resp.Percentage)

	rec = env.do(t, http.MethodGet, "/api/v1/attendance/percentage?group=2BAC", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_AttendanceExport(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	require.NoError(t, env.stores.Attendance.SaveBatch(ctx, "2025-03-10", "2BAC", []attendance.StudentStatus{
		{Student: "Sara", Status: attendance.StatusPresent},
	}))
	require.NoError(t, env.stores.Attendance.SaveBatch(ctx, "2025-03-10", "1BAC", []attendance.StudentStatus{
		{Student: "Karim", Status: attendance.StatusAbsent},
	}))

	rec := env.do(t, http.MethodGet, "/api/v1/attendance/export?group=2BAC", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\ufeff"))
	assert.Contains(t, body, "Sara")
	assert.NotContains(t, body, "Karim")
	assert.Contains(t, body, ";")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "presences_2bac.csv")

	rec = env.do(t, http.MethodGet, "/api/v1/attendance/export?format=xlsx", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))

	rec = env.do(t, http.MethodGet, "/api/v1/attendance/export?format=pdf", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SignDocument(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/documents/doc-1/sign", `{"signed":true,"signer":"M. Directeur"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeData[document.Record](t, rec)
	assert.True(t, doc.Signed)
	assert.Equal(t, "M. Directeur", doc.SignedBy)
	assert.Empty(t, doc.DataURL)

	rec = env.do(t, http.MethodPost, "/api/v1/documents/missing/sign", `{"signed":true}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
