package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "CORS_ORIGIN", "METRICS_ENABLED",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW",
		"EXCHANGE_RATE_API_KEY", "ALPHA_VANTAGE_API_KEY",
		"CACHE_BACKEND", "REDIS_URL", "CACHE_DEFAULT_TTL", "CACHE_SWEEP_INTERVAL",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "*", cfg.Server.CORSOrigin)
	assert.True(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, 100, cfg.Server.RateLimitRequests)
	assert.Equal(t, 15*time.Minute, cfg.Server.RateLimitWindow)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 2*time.Minute, cfg.Cache.SweepInterval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("CACHE_DEFAULT_TTL", "30s")
	t.Setenv("RATE_LIMIT_REQUESTS", "25")
	t.Setenv("EXCHANGE_RATE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis://cache:6379/1", cfg.Cache.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.Cache.DefaultTTL)
	assert.Equal(t, 25, cfg.Server.RateLimitRequests)
	assert.Equal(t, "test-key", cfg.Providers.ExchangeRateAPIKey)
}

func TestDurationAcceptsBareSeconds(t *testing.T) {
	t.Setenv("CACHE_DEFAULT_TTL", "600")
	t.Setenv("CACHE_SWEEP_INTERVAL", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 600*time.Second, cfg.Cache.DefaultTTL)
	assert.Equal(t, 120*time.Second, cfg.Cache.SweepInterval)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CACHE_DEFAULT_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_REQUESTS", "lots")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 100, cfg.Server.RateLimitRequests)
	assert.True(t, cfg.Server.MetricsEnabled)
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{Log: LogConfig{Level: tt.level}}
		assert.Equal(t, tt.want, cfg.LogLevel(), "level %q", tt.level)
	}
}
