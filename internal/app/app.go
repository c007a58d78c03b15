// Package app provides the main application struct for centralized dependency
// management and lifecycle control of the dashboard server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"findash/config"
	"findash/internal/cache"
	"findash/internal/market"
	"findash/internal/observability"
	"findash/internal/providers/alphavantage"
	"findash/internal/providers/exchangerate"
	"findash/internal/server"
	"findash/internal/transactions"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config *config.Config
	store  cache.Store
	server *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &App{config: cfg}

	metrics := observability.NewNopMetrics()
	if cfg.Server.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	app.store = store

	fetcher := market.NewFetcher(
		store,
		exchangerate.New(cfg.Providers.ExchangeRateAPIKey),
		alphavantage.New(cfg.Providers.AlphaVantageAPIKey),
		metrics,
	)

	app.server = server.New(fetcher, transactions.NewStore(), &server.Config{
		Env:               cfg.Server.Env,
		MetricsEnabled:    cfg.Server.MetricsEnabled,
		CORSOrigin:        cfg.Server.CORSOrigin,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	slog.Info("application initialized",
		"env", cfg.Server.Env,
		"cache_backend", cfg.Cache.Backend,
		"metrics_enabled", cfg.Server.MetricsEnabled,
	)

	return app, nil
}

func newStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemoryStore(cache.MemoryOptions{
			DefaultTTL:    cfg.Cache.DefaultTTL,
			SweepInterval: cfg.Cache.SweepInterval,
		}), nil
	case "redis":
		store, err := cache.NewRedisStore(cfg.Cache.RedisURL, cfg.Cache.DefaultTTL)
		if err != nil {
			return nil, fmt.Errorf("redis backend: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components in dependency order:
// the HTTP server stops accepting requests first, then the cache store
// releases its background resources.
//
// Shutdown is idempotent and safe for repeated calls.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}
	return errors.Join(errs...)
}
