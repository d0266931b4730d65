// Package inference implements the hybrid bird identification decision
// engine: it prefers the networked high-accuracy classifier and transparently
// degrades to the local heuristic classifier when network conditions or the
// remote service are unavailable.
package inference

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ecovision-ai/birdsense/internal/acoustic"
	"github.com/ecovision-ai/birdsense/internal/audiofile"
	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/errors"
	"github.com/ecovision-ai/birdsense/internal/logging"
	"github.com/ecovision-ai/birdsense/internal/observability"
	"github.com/ecovision-ai/birdsense/internal/remote"
	"github.com/ecovision-ai/birdsense/internal/scorer"
)

// ConnectivityGate reports whether the remote classification path should be
// attempted.
type ConnectivityGate interface {
	IsOnline(ctx context.Context) bool
}

// Orchestrator sequences connectivity check, remote classification and the
// local fallback into one call. The loaded species label set is the only
// state shared between calls; it is written once at initialization and
// read-only afterwards, so concurrent classification calls need no locking
// around it.
type Orchestrator struct {
	settings *conf.Settings
	gate     ConnectivityGate
	remote   remote.Interface
	metrics  *observability.InferenceMetrics
	log      *slog.Logger

	mu          sync.RWMutex
	labels      []string
	initialized bool

	// initGroup collapses concurrent first-call initializations into a
	// single label asset load.
	initGroup singleflight.Group
}

// New creates an Orchestrator. Initialize must be called before
// RunBirdInference. metrics may be nil when telemetry is disabled.
func New(settings *conf.Settings, gate ConnectivityGate, remoteClient remote.Interface, metrics *observability.InferenceMetrics) *Orchestrator {
	return &Orchestrator{
		settings: settings,
		gate:     gate,
		remote:   remoteClient,
		metrics:  metrics,
		log:      logging.ForService("inference"),
	}
}

// Initialize loads the species label set. It is idempotent: calling it when
// already initialized is a no-op, and concurrent first calls share a single
// load.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.mu.RLock()
	ready := o.initialized
	o.mu.RUnlock()
	if ready {
		return nil
	}

	_, err, _ := o.initGroup.Do("init", func() (any, error) {
		// Re-check under the group in case another caller finished first.
		o.mu.RLock()
		ready := o.initialized
		o.mu.RUnlock()
		if ready {
			return nil, nil
		}

		labels, err := loadLabels(o.settings.Inference.LabelPath)
		if err != nil {
			return nil, errors.Wrap(err).
				Category(errors.CategoryModelInit).
				Build()
		}

		o.mu.Lock()
		o.labels = labels
		o.initialized = true
		o.mu.Unlock()

		if o.metrics != nil {
			o.metrics.LabelsLoadedGauge.Set(float64(len(labels)))
		}
		o.log.Info("Inference engine initialized", "label_count", len(labels))
		return nil, nil
	})
	return err
}

// Reinitialize clears loaded state and re-runs initialization, for
// recovering from a previously failed initialization.
func (o *Orchestrator) Reinitialize(ctx context.Context) error {
	o.Dispose()
	return o.Initialize(ctx)
}

// Dispose clears the loaded label set. RunBirdInference fails until
// Initialize succeeds again.
func (o *Orchestrator) Dispose() {
	o.mu.Lock()
	o.labels = nil
	o.initialized = false
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.LabelsLoadedGauge.Set(0)
	}
}

// Labels returns the loaded species label set, or nil before initialization.
func (o *Orchestrator) Labels() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.labels
}

// RunBirdInference classifies the recording at audioPath and returns exactly
// one complete envelope, or an error when the audio sample itself cannot be
// processed. Remote-path failures are never surfaced; they trigger the local
// fallback.
func (o *Orchestrator) RunBirdInference(ctx context.Context, audioPath string) (*Envelope, error) {
	o.mu.RLock()
	ready := o.initialized
	labels := o.labels
	o.mu.RUnlock()
	if !ready {
		return nil, errors.Newf("inference engine not initialized, call Initialize first").
			Component("inference").
			Category(errors.CategoryModelInit).
			Build()
	}

	start := time.Now()

	if o.gate.IsOnline(ctx) {
		results, err := o.remote.Classify(ctx, audioPath)
		switch {
		case err != nil:
			// Designed degrade path: any remote failure falls through to the
			// local classifier.
			reason := "remote_error"
			if errors.HasCategory(err, errors.CategoryTimeout) {
				reason = "remote_timeout"
			}
			o.recordFallback(reason)
			o.log.Warn("Remote classification failed, using local fallback",
				"audio_path", audioPath, "reason", reason, "error", err)
		case len(results) == 0:
			o.recordFallback("empty_results")
			o.log.Info("Remote classification returned no results, using local fallback",
				"audio_path", audioPath)
		default:
			o.observe(MethodCloudAPI, time.Since(start))
			return &Envelope{
				Results:         results,
				Method:          MethodCloudAPI,
				NominalAccuracy: CloudAccuracy,
				IsOnline:        true,
			}, nil
		}
	} else {
		o.recordFallback("offline")
		o.log.Info("Offline, using local classification", "audio_path", audioPath)
	}

	envelope, err := o.classifyLocally(audioPath, labels)
	if err != nil {
		if o.metrics != nil {
			var ee *errors.EnhancedError
			category := string(errors.CategoryGeneric)
			if errors.As(err, &ee) {
				category = string(ee.Category)
			}
			o.metrics.ClassificationErrors.WithLabelValues(category).Inc()
		}
		return nil, err
	}

	o.observe(MethodSignalProcessing, time.Since(start))
	return envelope, nil
}

// classifyLocally runs the deterministic signal-processing path: read the
// sample bytes, extract acoustic features and score them against the loaded
// label set. A failure here is fatal to the whole call since no further
// fallback exists.
func (o *Orchestrator) classifyLocally(audioPath string, labels []string) (*Envelope, error) {
	samples, err := audiofile.SampleBytes(audioPath)
	if err != nil {
		return nil, errors.Wrap(err).
			Context("stage", "read_sample").
			Build()
	}

	features, err := acoustic.Extract(samples)
	if err != nil {
		return nil, fmt.Errorf("local classification failed: %w", err)
	}

	results, err := scorer.Score(features, labels, scorer.SeedFromContent(samples))
	if err != nil {
		return nil, fmt.Errorf("local classification failed: %w", err)
	}

	return &Envelope{
		Results:         results,
		Method:          MethodSignalProcessing,
		NominalAccuracy: LocalAccuracy,
		IsOnline:        false,
	}, nil
}

func (o *Orchestrator) recordFallback(reason string) {
	if o.metrics == nil {
		return
	}
	o.metrics.FallbackTotal.WithLabelValues(reason).Inc()
	if reason == "remote_timeout" || reason == "remote_error" {
		o.metrics.RemoteErrors.WithLabelValues(reason).Inc()
	}
}

func (o *Orchestrator) observe(method string, elapsed time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.ClassificationTotal.WithLabelValues(method).Inc()
	o.metrics.InferenceDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
