package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/errors"
)

const testEndpoint = "https://api.example.com/v1/birds/classify"

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{}
	settings.Remote.Endpoint = testEndpoint
	settings.Remote.Timeout = 30 * time.Second
	settings.Remote.ProbeTimeout = 5 * time.Second
	settings.Remote.ProbeTTL = time.Minute
	settings.Inference.Latitude = 60.17
	settings.Inference.Longitude = 24.94
	return settings
}

func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte{128, 64, 192, 128}, 0o644))
	return path
}

func mockedClient(t *testing.T) *Client {
	t.Helper()
	client := New(testSettings(t))
	httpmock.ActivateNonDefault(client.HTTPClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestClassify_Success(t *testing.T) {
	client := mockedClient(t)
	audioPath := writeTestAudio(t)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusOK, `{"results":[
			{"species":"Corvus brachyrhynchos","confidence":0.42},
			{"common_name":"Blue Jay","confidence":0.91},
			{"species":"Turdus migratorius","confidence":0.55},
			{"species":"Poecile atricapillus","confidence":0.61},
			{"species":"Haliaeetus leucocephalus","confidence":0.12},
			{"species":"Bubo virginianus","confidence":0.33}
		]}`))

	results, err := client.Classify(context.Background(), audioPath)
	require.NoError(t, err)

	// Six results come back, truncation keeps the top five.
	require.Len(t, results, 5)
	assert.Equal(t, "Blue Jay", results[0].Label)
	assert.InDelta(t, 0.91, results[0].Confidence, 1e-9)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Confidence, results[i].Confidence)
	}
	// Lowest confidence entry fell off the ranking.
	for _, r := range results {
		assert.NotEqual(t, "Haliaeetus leucocephalus", r.Label)
	}
}

func TestClassify_EmptyResults(t *testing.T) {
	client := mockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusOK, `{"results":[]}`))

	results, err := client.Classify(context.Background(), writeTestAudio(t))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClassify_HTTPError(t *testing.T) {
	client := mockedClient(t)

	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		httpmock.RegisterResponder(http.MethodPost, testEndpoint,
			httpmock.NewStringResponder(status, "nope"))

		_, err := client.Classify(context.Background(), writeTestAudio(t))
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryHTTP))

		var ee *errors.EnhancedError
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, status, ee.GetContext()["status_code"])
	}
}

func TestClassify_MalformedJSON(t *testing.T) {
	client := mockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusOK, `{"results": not json`))

	_, err := client.Classify(context.Background(), writeTestAudio(t))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryHTTP))
}

func TestClassify_NetworkError(t *testing.T) {
	client := mockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewErrorResponder(assert.AnError))

	_, err := client.Classify(context.Background(), writeTestAudio(t))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNetwork))
	assert.False(t, errors.HasCategory(err, errors.CategoryTimeout))
}

func TestClassify_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	settings := testSettings(t)
	settings.Remote.Endpoint = server.URL
	settings.Remote.Timeout = 50 * time.Millisecond
	client := New(settings)
	defer client.HTTPClient.CloseIdleConnections()

	_, err := client.Classify(context.Background(), writeTestAudio(t))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTimeout),
		"timeouts must be distinguishable from generic network errors")
}

func TestClassify_MissingAudioFile(t *testing.T) {
	client := mockedClient(t)

	_, err := client.Classify(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileIO))
	assert.Zero(t, httpmock.GetTotalCallCount(), "no request should be made without a readable file")
}

func TestClassify_MultipartFields(t *testing.T) {
	var gotAudio bool
	var gotLat, gotLon, gotWeek string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("audio")
		gotAudio = err == nil
		gotLat = r.FormValue("lat")
		gotLon = r.FormValue("lon")
		gotWeek = r.FormValue("week")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	settings := testSettings(t)
	settings.Remote.Endpoint = server.URL
	client := New(settings)
	defer client.HTTPClient.CloseIdleConnections()

	_, err := client.Classify(context.Background(), writeTestAudio(t))
	require.NoError(t, err)

	assert.True(t, gotAudio, "audio file part must be present")
	assert.Equal(t, "60.1700", gotLat)
	assert.Equal(t, "24.9400", gotLon)
	assert.NotEmpty(t, gotWeek)
}

func TestClassify_OmitsUnsetLocation(t *testing.T) {
	var latPresent bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, latPresent = r.MultipartForm.Value["lat"]
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	settings := testSettings(t)
	settings.Remote.Endpoint = server.URL
	settings.Inference.Latitude = 0
	settings.Inference.Longitude = 0
	client := New(settings)
	defer client.HTTPClient.CloseIdleConnections()

	_, err := client.Classify(context.Background(), writeTestAudio(t))
	require.NoError(t, err)
	assert.False(t, latPresent, "unset location must not be sent")
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"ok", http.StatusOK, true},
		{"method_not_allowed", http.StatusMethodNotAllowed, true},
		{"server_error", http.StatusInternalServerError, false},
		{"not_found", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mockedClient(t)
			httpmock.RegisterResponder(http.MethodGet, testEndpoint,
				httpmock.NewStringResponder(tt.status, ""))

			assert.Equal(t, tt.want, client.IsAvailable(context.Background()))
		})
	}
}

func TestIsAvailable_NetworkFailure(t *testing.T) {
	client := mockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testEndpoint,
		httpmock.NewErrorResponder(assert.AnError))

	assert.False(t, client.IsAvailable(context.Background()))
}

func TestIsAvailable_CachesResult(t *testing.T) {
	client := mockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testEndpoint,
		httpmock.NewStringResponder(http.StatusOK, ""))

	require.True(t, client.IsAvailable(context.Background()))

	// The endpoint now fails, but the cached probe result is still served.
	httpmock.RegisterResponder(http.MethodGet, testEndpoint,
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))
	assert.True(t, client.IsAvailable(context.Background()))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestWeekOfYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2026-01-01", 0}, // ceil(0/7)
		{"2026-01-02", 1}, // ceil(1/7)
		{"2026-01-08", 1}, // ceil(7/7)
		{"2026-01-09", 2}, // ceil(8/7)
		{"2026-12-31", 52},
	}

	for _, tt := range tests {
		ts, err := time.Parse("2006-01-02", tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, weekOfYear(ts), "date %s", tt.date)
	}
}
