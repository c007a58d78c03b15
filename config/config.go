// Package config provides configuration management for the application.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	Providers ProviderConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port              string
	Env               string
	CORSOrigin        string
	MetricsEnabled    bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// ProviderConfig holds API keys for the upstream market data providers.
// Both keys are optional; providers fall back to their keyless endpoints.
type ProviderConfig struct {
	ExchangeRateAPIKey string
	AlphaVantageAPIKey string
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	Backend       string
	RedisURL      string
	DefaultTTL    time.Duration
	SweepInterval time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	// Ignore error if .env file doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8080"),
			Env:               getEnv("ENV", "development"),
			CORSOrigin:        getEnv("CORS_ORIGIN", "*"),
			MetricsEnabled:    getEnvBool("METRICS_ENABLED", true),
			RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
		Providers: ProviderConfig{
			ExchangeRateAPIKey: getEnv("EXCHANGE_RATE_API_KEY", ""),
			AlphaVantageAPIKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),
		},
		Cache: CacheConfig{
			Backend:       getEnv("CACHE_BACKEND", "memory"),
			RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
			DefaultTTL:    getEnvDuration("CACHE_DEFAULT_TTL", 10*time.Minute),
			SweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", 2*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if cfg.Providers.ExchangeRateAPIKey == "" {
		slog.Warn("EXCHANGE_RATE_API_KEY not set, using keyless exchange rate endpoint")
	}
	if cfg.Providers.AlphaVantageAPIKey == "" {
		slog.Warn("ALPHA_VANTAGE_API_KEY not set, using demo quote endpoint")
	}

	return cfg, nil
}

// LogLevel converts the configured level string to a slog.Level.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}

// getEnvDuration accepts Go duration strings ("5m") or bare integer seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return d
}
