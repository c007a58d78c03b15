// Package main is the entry point for the finance dashboard server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"findash/config"
	"findash/internal/app"
	"findash/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	slog.SetDefault(slog.New(newLogHandler(cfg)))

	slog.Info("starting findash",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := application.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := application.Start(":" + cfg.Server.Port); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newLogHandler picks JSON output for production-style deployments and a
// colorized text handler for local development.
func newLogHandler(cfg *config.Config) slog.Handler {
	level := cfg.LogLevel()
	if cfg.Log.Format == "json" {
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}
