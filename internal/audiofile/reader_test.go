package audiofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWAVAndSampleBytes_RoundTrip(t *testing.T) {
	samples := make([]byte, 1000)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 64
		} else {
			samples[i] = 192
		}
	}

	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, WriteWAV(path, samples, DefaultSampleRate))

	decoded, err := SampleBytes(path)
	require.NoError(t, err)
	require.Len(t, decoded, len(samples))

	// 8-bit -> 16-bit -> 8-bit requantization is exact for these values.
	assert.Equal(t, samples, decoded)
}

func TestSampleBytes_RawFallback(t *testing.T) {
	// Headerless 8-bit PCM is returned byte for byte.
	raw := []byte{128, 64, 192, 128, 200, 30}
	path := filepath.Join(t.TempDir(), "clip.raw")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	data, err := SampleBytes(path)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestSampleBytes_MissingFile(t *testing.T) {
	_, err := SampleBytes(filepath.Join(t.TempDir(), "does-not-exist.wav"))
	assert.Error(t, err)
}

func TestSampleBytes_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := SampleBytes(path)
	assert.Error(t, err)
}

func TestWriteWAV_EmptyBuffer(t *testing.T) {
	err := WriteWAV(filepath.Join(t.TempDir(), "clip.wav"), nil, DefaultSampleRate)
	assert.Error(t, err)
}
