// Command edumanage serves the EduManage record stores: it opens the
// configured storage backend, wires the stores, the settings service and
// the document manager, and exposes them over HTTP until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edumanage/edumanage-core/config"
	"github.com/edumanage/edumanage-core/internal/application/documents"
	settingsapp "github.com/edumanage/edumanage-core/internal/application/settings"
	"github.com/edumanage/edumanage-core/internal/domain/settings"
	"github.com/edumanage/edumanage-core/internal/infrastructure/external/schoolapi"
	"github.com/edumanage/edumanage-core/internal/infrastructure/pdf"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/kv"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/postgres"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/redis"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/store"
	httpapi "github.com/edumanage/edumanage-core/internal/interface/http"
	"github.com/edumanage/edumanage-core/internal/interface/http/handlers"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting EduManage",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"storage", cfg.Storage.Backend,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Storage backend
	// ─────────────────────────────────────────────────────────────────────────
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Storage.Backend, err)
	}
	defer func() {
		log.Info("closing storage backend")
		if err := backend.Close(); err != nil {
			log.Error("failed to close storage backend", "error", err)
		}
	}()

	stores := store.New(store.Config{
		Backend:     backend,
		Logger:      log.With("component", "store"),
		Diagnostics: codec.LogDiagnostics(log.With("component", "codec")),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Application services
	// ─────────────────────────────────────────────────────────────────────────
	settingsService := settingsapp.NewService(stores.Settings, log.With("component", "settings"))
	defer func() { _ = settingsService.Close() }()

	sub, err := settingsService.Subscribe(func(v settings.Institution) {
		log.Info("institution settings changed", "name", v.Name, "language", v.Language)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to settings: %w", err)
	}
	defer sub.Unsubscribe()

	checker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	checker.AddCheck("storage", handlers.NewStorageCheck(backend))

	managerCfg := documents.Config{
		Documents:    stores.Documents,
		Renderer:     pdf.NewRenderer(rendererConfig(cfg, log)),
		Settings:     stores.Settings,
		Activity:     stores.Activity,
		Coefficients: stores.Coefficients,
		Logger:       log.With("component", "documents"),
	}
	if cfg.SchoolAPI.Enabled() {
		directory := schoolapi.NewClient(schoolAPIConfig(cfg, log))
		managerCfg.Directory = directory
		checker.AddCheck("school_api", handlers.NewExternalAPICheck("school API", directory))
	}
	manager := documents.NewManager(managerCfg)

	if !cfg.HTTP.Enabled {
		log.Info("HTTP disabled, waiting for shutdown signal")
		<-ctx.Done()
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	server := httpapi.NewServer(httpConfig(cfg), httpapi.Dependencies{
		Settings:      settingsService,
		Attendance:    stores.Attendance,
		Documents:     manager,
		Logger:        log.With("component", "http"),
		HealthChecker: checker,
	})
	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err, ok := <-errCh:
		if ok && err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("http shutdown: %w", err)
	}

	log.Info("shutdown completed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRING
// ══════════════════════════════════════════════════════════════════════════════

func openBackend(ctx context.Context, cfg *config.Config) (kv.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return kv.NewMemory(), nil
	case config.BackendSQLite:
		return kv.OpenSQLite(ctx, cfg.Storage.SQLitePath)
	case config.BackendRedis:
		rc := redis.DefaultConfig()
		rc.Host = cfg.Redis.Host
		rc.Port = cfg.Redis.Port
		rc.Password = cfg.Redis.Password
		rc.DB = cfg.Redis.DB
		rc.KeyPrefix = cfg.Storage.KeyPrefix
		rc.PoolSize = cfg.Redis.PoolSize
		rc.MinIdleConns = cfg.Redis.MinIdleConns
		rc.DialTimeout = cfg.Redis.DialTimeout
		rc.ReadTimeout = cfg.Redis.ReadTimeout
		rc.WriteTimeout = cfg.Redis.WriteTimeout
		return redis.NewBackend(ctx, rc)
	case config.BackendPostgres:
		pc := postgres.DefaultConfig()
		pc.URL = cfg.Database.URL
		pc.MaxConns = int32(cfg.Database.MaxConns)
		pc.MinConns = int32(cfg.Database.MinConns)
		pc.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		pc.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
		pc.ConnectTimeout = cfg.Database.ConnectTimeout
		return postgres.Open(ctx, pc)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func rendererConfig(cfg *config.Config, log *slog.Logger) pdf.Config {
	rc := pdf.DefaultConfig()
	rc.Compress = cfg.Documents.CompressPDF
	rc.Logger = log.With("component", "pdf")
	return rc
}

func schoolAPIConfig(cfg *config.Config, log *slog.Logger) schoolapi.Config {
	sc := schoolapi.DefaultConfig(cfg.SchoolAPI.BaseURL)
	sc.Token = cfg.SchoolAPI.Token
	sc.Timeout = cfg.SchoolAPI.Timeout
	sc.Logger = log.With("component", "schoolapi")
	return sc
}

func httpConfig(cfg *config.Config) httpapi.Config {
	hc := httpapi.DefaultConfig()
	hc.Host = cfg.HTTP.Host
	hc.Port = cfg.HTTP.Port
	hc.ReadTimeout = cfg.HTTP.ReadTimeout
	hc.WriteTimeout = cfg.HTTP.WriteTimeout
	hc.EnableCORS = cfg.HTTP.EnableCORS
	hc.AllowedOrigins = cfg.HTTP.AllowedOrigins
	hc.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	hc.APIKeys = cfg.HTTP.APIKeys
	return hc
}

// setupLogger настраивает структурированное логирование: JSON в production,
// текст в остальных окружениях.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	format := cfg.Observability.LogFormat
	if format == "" {
		format = "text"
		if cfg.IsProduction() {
			format = "json"
		}
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler).With("app", cfg.App.Name)
	slog.SetDefault(log)
	return log
}
