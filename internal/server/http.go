// Package server provides HTTP handlers and server setup for the finance
// dashboard API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"findash/internal/core"
)

// DefaultBodyLimit caps request body size.
const DefaultBodyLimit = "10M"

// Config holds server configuration options.
type Config struct {
	// Env selects error verbosity: "development" exposes error details,
	// anything else hides them.
	Env string

	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool

	// CORSOrigin is the allowed origin; "*" in development.
	CORSOrigin string

	// RateLimitRequests per RateLimitWindow per client IP; zero disables
	// rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Server wraps the Echo server.
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// New creates a new HTTP server routing to the given collaborators.
func New(market core.MarketData, txns TransactionSource, cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(cfg.Env)

	handler := NewHandler(market, txns)

	// Global middleware stack (order matters)
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(DefaultBodyLimit))

	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{origin},
	}))

	if cfg.RateLimitRequests > 0 {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = 15 * time.Minute
		}
		limit := rate.Limit(float64(cfg.RateLimitRequests) / window.Seconds())
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      limit,
				Burst:     cfg.RateLimitRequests,
				ExpiresIn: window,
			}),
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.JSON(http.StatusTooManyRequests, core.Fail(
					core.CodeRateLimitExceeded,
					"Too many requests from this IP, please try again later.",
				))
			},
		}))
	}

	// Public routes
	e.GET("/health", handler.Health)
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	// API routes
	e.GET("/api", handler.Index)
	e.GET("/api/exchange-rates", handler.ExchangeRates)
	e.GET("/api/stock/:symbol", handler.Stock)
	e.GET("/api/portfolio", handler.Portfolio)
	e.GET("/api/transactions", handler.Transactions)
	e.GET("/api/dashboard", handler.Dashboard)
	e.POST("/api/cache/invalidate", handler.CacheInvalidate)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements http.Handler, allowing Server to be used with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// errorHandler converts unhandled errors to the response envelope. Gateway
// errors never arrive here: the orchestrator absorbs every upstream
// failure, so anything landing in this handler is a routing miss or an
// unexpected internal fault.
func errorHandler(env string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.Code {
			case http.StatusNotFound:
				_ = c.JSON(http.StatusNotFound, core.Fail(
					core.CodeNotFound,
					"Route "+c.Request().Method+" "+c.Request().URL.Path+" not found",
				))
				return
			case http.StatusMethodNotAllowed:
				_ = c.JSON(http.StatusMethodNotAllowed, core.Fail(
					core.CodeValidationError, "method not allowed",
				))
				return
			}
		}

		slog.Error("unhandled server error", "error", err, "path", c.Request().URL.Path)

		message := "Internal server error"
		resp := core.Fail(core.CodeInternalError, message)
		if env == "development" {
			resp.Error.Details = err.Error()
		}
		_ = c.JSON(http.StatusInternalServerError, resp)
	}
}
