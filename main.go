package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ecovision-ai/birdsense/cmd"
	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/logging"
	"github.com/ecovision-ai/birdsense/internal/observability"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logLevel(settings))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := startTelemetry(ctx, settings)

	rootCmd := cmd.RootCommand(settings, metrics)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func logLevel(settings *conf.Settings) slog.Level {
	if settings.Debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(settings.Main.Log.Level) {
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

// startTelemetry exposes the Prometheus endpoint when enabled and returns the
// inference metrics to wire into the engine, or nil when telemetry is off.
func startTelemetry(ctx context.Context, settings *conf.Settings) *observability.InferenceMetrics {
	if !settings.Telemetry.Enabled {
		return nil
	}

	registry := prometheus.NewRegistry()
	metrics, err := observability.NewInferenceMetrics(registry)
	if err != nil {
		logging.Error("Failed to create inference metrics", "error", err)
		return nil
	}

	endpoint, err := observability.NewEndpoint(settings, registry)
	if err != nil {
		logging.Error("Failed to create telemetry endpoint", "error", err)
		return metrics
	}
	endpoint.Start()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := endpoint.Stop(shutdownCtx); err != nil {
			logging.Error("Failed to stop telemetry endpoint", "error", err)
		}
	}()

	return metrics
}
