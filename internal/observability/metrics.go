// Package observability provides Prometheus metrics for the hybrid inference
// engine.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// InferenceMetrics contains all Prometheus metrics related to hybrid
// inference operations.
type InferenceMetrics struct {
	ClassificationTotal  *prometheus.CounterVec
	ClassificationErrors *prometheus.CounterVec
	FallbackTotal        *prometheus.CounterVec
	RemoteErrors         *prometheus.CounterVec

	InferenceDuration *prometheus.HistogramVec

	LabelsLoadedGauge prometheus.Gauge

	registry *prometheus.Registry
}

// NewInferenceMetrics creates a new instance of InferenceMetrics registered
// on the given Prometheus registry.
func NewInferenceMetrics(registry *prometheus.Registry) (*InferenceMetrics, error) {
	m := &InferenceMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register inference metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for InferenceMetrics.
func (m *InferenceMetrics) initMetrics() {
	m.ClassificationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birdsense_classifications_total",
			Help: "Total number of completed classifications partitioned by method.",
		},
		[]string{"method"},
	)
	m.ClassificationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birdsense_classification_errors_total",
			Help: "Total number of failed classification calls partitioned by error category.",
		},
		[]string{"category"},
	)
	m.FallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birdsense_fallbacks_total",
			Help: "Total number of degradations to the local path partitioned by reason.",
		},
		[]string{"reason"},
	)
	m.RemoteErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birdsense_remote_errors_total",
			Help: "Total number of remote classification failures partitioned by kind.",
		},
		[]string{"kind"},
	)
	m.InferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "birdsense_inference_duration_seconds",
			Help:    "Time taken to complete a full inference call.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~32s
		},
		[]string{"method"},
	)
	m.LabelsLoadedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "birdsense_labels_loaded",
			Help: "Number of species labels currently loaded.",
		},
	)
}

// Describe implements prometheus.Collector.
func (m *InferenceMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ClassificationTotal.Describe(ch)
	m.ClassificationErrors.Describe(ch)
	m.FallbackTotal.Describe(ch)
	m.RemoteErrors.Describe(ch)
	m.InferenceDuration.Describe(ch)
	m.LabelsLoadedGauge.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *InferenceMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ClassificationTotal.Collect(ch)
	m.ClassificationErrors.Collect(ch)
	m.FallbackTotal.Collect(ch)
	m.RemoteErrors.Collect(ch)
	m.InferenceDuration.Collect(ch)
	m.LabelsLoadedGauge.Collect(ch)
}
