package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/errors"
	"github.com/ecovision-ai/birdsense/internal/logging"
)

// Endpoint serves Prometheus-compatible metrics over HTTP.
type Endpoint struct {
	server   *http.Server
	registry *prometheus.Registry
}

// NewEndpoint creates a telemetry endpoint from the application settings.
// It returns an error if telemetry is not enabled.
func NewEndpoint(settings *conf.Settings, registry *prometheus.Registry) (*Endpoint, error) {
	if !settings.Telemetry.Enabled {
		return nil, errors.Newf("telemetry not enabled in settings").
			Component("observability").
			Category(errors.CategoryConfiguration).
			Build()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Endpoint{
		server: &http.Server{
			Addr:              settings.Telemetry.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		registry: registry,
	}, nil
}

// Start runs the metrics HTTP server until Stop is called.
func (e *Endpoint) Start() {
	log := logging.ForService("observability")
	go func() {
		log.Info("Starting metrics endpoint", "listen", e.server.Addr)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics endpoint failed", "error", err)
		}
	}()
}

// Stop shuts the metrics HTTP server down gracefully.
func (e *Endpoint) Stop(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
