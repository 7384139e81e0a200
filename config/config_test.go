package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EDUMANAGE_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	noDotEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "Africa/Casablanca", cfg.App.Timezone)
	assert.NotNil(t, cfg.App.Location)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "edumanage.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Empty(t, cfg.HTTP.APIKeys)
	assert.False(t, cfg.SchoolAPI.Enabled())
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	noDotEnv(t)
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("HTTP_API_KEYS", "alpha, beta,,")
	t.Setenv("SCHOOL_API_URL", "https://api.school.ma/v1")
	t.Setenv("SCHOOL_API_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.HTTP.APIKeys)
	assert.True(t, cfg.SchoolAPI.Enabled())
	assert.Equal(t, 3*time.Second, cfg.SchoolAPI.Timeout)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoad_DatabaseURLFromParts(t *testing.T) {
	noDotEnv(t)
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "edu")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://edu:pw@db:5432/edumanage?sslmode=disable", cfg.Database.URL)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE_BACKEND=memory\nHTTP_PORT=9191\n"), 0o600))
	t.Setenv("EDUMANAGE_DOTENV", path)
	t.Setenv("HTTP_PORT", "7070")
	t.Cleanup(func() { os.Unsetenv("STORAGE_BACKEND") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 7070, cfg.HTTP.Port, "process environment wins over the file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "mongo"}},
		{"postgres without url", map[string]string{"STORAGE_BACKEND": "postgres"}},
		{"memory in production", map[string]string{"STORAGE_BACKEND": "memory", "APP_ENV": "production"}},
		{"bad timezone", map[string]string{"APP_TIMEZONE": "Mars/Olympus"}},
		{"bad port", map[string]string{"HTTP_PORT": "70000"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "trace"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noDotEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
