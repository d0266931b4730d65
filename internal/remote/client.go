// Package remote implements the client for the networked species
// classification API, the high-accuracy path of the hybrid engine.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/detection"
	"github.com/ecovision-ai/birdsense/internal/errors"
	"github.com/ecovision-ai/birdsense/internal/logging"
)

// Package-level logger specific to the remote classification service
var (
	serviceLogger *slog.Logger
	closeLogger   func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "remote.log")

	serviceLogger, closeLogger, err = logging.NewFileLogger(logFilePath, "remote", slog.LevelDebug)
	if err != nil {
		// Fallback: log error to standard log and disable service file logging
		log.Printf("Failed to initialize remote service file logger at %s: %v. Service logging disabled.", logFilePath, err)
		serviceLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		closeLogger = func() error { return nil }
	}
}

// availabilityCacheKey is the single key under which probe results are cached.
const availabilityCacheKey = "availability"

// classifyResponse is the JSON structure returned by the classification API.
type classifyResponse struct {
	Results []struct {
		Species    string  `json:"species"`
		CommonName string  `json:"common_name"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// Client holds the configuration for interacting with the classification API.
type Client struct {
	Endpoint     string
	Latitude     float64
	Longitude    float64
	HTTPClient   *http.Client
	ProbeTimeout time.Duration

	probeCache *gocache.Cache
}

// Interface defines what methods a remote classification client must have.
type Interface interface {
	Classify(ctx context.Context, audioPath string) ([]detection.Result, error)
	IsAvailable(ctx context.Context) bool
	Close()
}

// New creates and initializes a new Client from the given settings. The HTTP
// client carries the hard classification timeout so a hung server can never
// stall a caller past it.
func New(settings *conf.Settings) *Client {
	probeTTL := settings.Remote.ProbeTTL
	if probeTTL <= 0 {
		probeTTL = time.Minute
	}
	return &Client{
		Endpoint:     settings.Remote.Endpoint,
		Latitude:     settings.Inference.Latitude,
		Longitude:    settings.Inference.Longitude,
		HTTPClient:   &http.Client{Timeout: settings.Remote.Timeout},
		ProbeTimeout: settings.Remote.ProbeTimeout,
		probeCache:   gocache.New(probeTTL, 2*probeTTL),
	}
}

// weekOfYear computes the coarse seasonal context sent with each request:
// ceil(days since Jan 1 / 7).
func weekOfYear(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := int(t.Sub(jan1).Hours() / 24)
	return int(math.Ceil(float64(days) / 7.0))
}

// Classify submits the audio file at audioPath for remote species
// classification and returns the ranked results, at most
// detection.MaxResults entries, sorted by confidence descending.
//
// Timeouts surface with the timeout error category so callers can tell them
// apart from other network failures. No retries happen here; the fallback
// policy lives in the orchestrator.
func (c *Client) Classify(ctx context.Context, audioPath string) ([]detection.Result, error) {
	requestID := uuid.New().String()
	serviceLogger.Info("Starting remote classification",
		"request_id", requestID, "audio_path", audioPath)

	body, contentType, err := c.buildUploadBody(audioPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to create classification request: %w", err)).
			Component("remote").
			Category(errors.CategoryNetwork).
			Context("endpoint", c.Endpoint).
			Build()
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "BirdSense")
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.classifyNetworkError(err, requestID, time.Since(start))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	serviceLogger.Debug("Received classification response",
		"request_id", requestID, "status_code", resp.StatusCode, "elapsed", time.Since(start).String())

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		serviceLogger.Error("Classification request rejected",
			"request_id", requestID, "status_code", resp.StatusCode, "body", string(respBody))
		return nil, errors.Newf("classification API returned status %d", resp.StatusCode).
			Component("remote").
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			Context("request_id", requestID).
			Build()
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to read classification response: %w", err)).
			Component("remote").
			Category(errors.CategoryNetwork).
			Context("request_id", requestID).
			Build()
	}

	var parsed classifyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		serviceLogger.Error("Failed to decode classification JSON",
			"request_id", requestID, "error", err)
		return nil, errors.New(fmt.Errorf("failed to decode classification response: %w", err)).
			Component("remote").
			Category(errors.CategoryHTTP).
			Context("request_id", requestID).
			Build()
	}

	now := time.Now()
	results := make([]detection.Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		label := r.Species
		if label == "" {
			label = r.CommonName
		}
		if label == "" {
			continue
		}
		results = append(results, detection.Result{
			Label:      label,
			Confidence: r.Confidence,
			Timestamp:  now,
		})
	}
	detection.SortDescending(results)
	results = detection.TrimToMax(results)

	serviceLogger.Info("Remote classification completed",
		"request_id", requestID, "result_count", len(results), "elapsed", time.Since(start).String())
	return results, nil
}

// buildUploadBody assembles the multipart payload: the audio file plus the
// location and week-of-year context fields.
func (c *Client) buildUploadBody(audioPath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(audioPath) //nolint:gosec // G304: path is caller supplied by design
	if err != nil {
		return nil, "", errors.New(fmt.Errorf("failed to open audio file for upload: %w", err)).
			Component("remote").
			Category(errors.CategoryFileIO).
			Context("audio_path", audioPath).
			Build()
	}
	defer func() {
		_ = file.Close()
	}()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, "", errors.New(fmt.Errorf("failed to create multipart field: %w", err)).
			Component("remote").
			Category(errors.CategoryNetwork).
			Build()
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", errors.New(fmt.Errorf("failed to copy audio into upload: %w", err)).
			Component("remote").
			Category(errors.CategoryFileIO).
			Context("audio_path", audioPath).
			Build()
	}

	// Location context is optional, an unset location is simply omitted.
	if c.Latitude != 0 || c.Longitude != 0 {
		if err := writer.WriteField("lat", strconv.FormatFloat(c.Latitude, 'f', 4, 64)); err != nil {
			return nil, "", fmt.Errorf("failed to write lat field: %w", err)
		}
		if err := writer.WriteField("lon", strconv.FormatFloat(c.Longitude, 'f', 4, 64)); err != nil {
			return nil, "", fmt.Errorf("failed to write lon field: %w", err)
		}
	}
	if err := writer.WriteField("week", strconv.Itoa(weekOfYear(time.Now()))); err != nil {
		return nil, "", fmt.Errorf("failed to write week field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// classifyNetworkError maps transport failures onto the error taxonomy,
// keeping timeouts distinguishable from other network errors.
func (c *Client) classifyNetworkError(err error, requestID string, elapsed time.Duration) error {
	var netErr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded)
	if errors.As(err, &netErr) && netErr.Timeout() {
		timedOut = true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		timedOut = true
	}

	if timedOut {
		serviceLogger.Warn("Classification request timed out",
			"request_id", requestID, "elapsed", elapsed.String())
		return errors.New(fmt.Errorf("classification request timed out: %w", err)).
			Component("remote").
			Category(errors.CategoryTimeout).
			Context("request_id", requestID).
			Timing("classify", elapsed).
			Build()
	}

	serviceLogger.Error("Classification request failed",
		"request_id", requestID, "error", err)
	return errors.New(fmt.Errorf("classification request failed: %w", err)).
		Component("remote").
		Category(errors.CategoryNetwork).
		Context("request_id", requestID).
		Build()
}

// IsAvailable probes the classification endpoint with a short timeout and
// reports whether it looks reachable. HTTP 200 and 405 both count as available
// since the endpoint only accepts POST. The result is advisory only and is
// cached briefly; Classify never consults it.
func (c *Client) IsAvailable(ctx context.Context) bool {
	if cached, found := c.probeCache.Get(availabilityCacheKey); found {
		if available, ok := cached.(bool); ok {
			return available
		}
	}

	available := c.probe(ctx)
	c.probeCache.SetDefault(availabilityCacheKey, available)
	return available
}

func (c *Client) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.Endpoint, http.NoBody)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "BirdSense")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		serviceLogger.Debug("Availability probe failed", "error", err)
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	available := resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusMethodNotAllowed
	serviceLogger.Debug("Availability probe completed",
		"status_code", resp.StatusCode, "available", available)
	return available
}

// Close releases client resources and the service log file.
func (c *Client) Close() {
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
	if closeLogger != nil {
		_ = closeLogger()
		closeLogger = nil
	}
}
