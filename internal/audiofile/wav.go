package audiofile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ecovision-ai/birdsense/internal/errors"
)

// DefaultSampleRate matches the nominal recording rate of captured samples.
const DefaultSampleRate = 44100

// WriteWAV encodes unsigned 8-bit samples centered at 128 as a 16-bit mono
// WAV file at path. Parent directories are created as needed.
func WriteWAV(path string, samples []byte, sampleRate int) error {
	if len(samples) == 0 {
		return errors.Newf("cannot encode empty sample buffer").
			Component("audiofile").
			Category(errors.CategoryValidation).
			Build()
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(fmt.Errorf("failed to create output directory: %w", err)).
				Component("audiofile").
				Category(errors.CategoryFileIO).
				Context("path", dir).
				Build()
		}
	}

	file, err := os.Create(cleanPath) //nolint:gosec // G304: path is cleaned above
	if err != nil {
		return errors.New(fmt.Errorf("failed to create WAV file: %w", err)).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			Context("path", cleanPath).
			Build()
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		// Center and widen back to 16-bit
		buf.Data[i] = (int(s) - 128) << 8
	}

	enc := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = file.Close()
		return errors.New(fmt.Errorf("failed to write WAV data: %w", err)).
			Component("audiofile").
			Category(errors.CategoryAudio).
			Context("path", cleanPath).
			Build()
	}
	if err := enc.Close(); err != nil {
		_ = file.Close()
		return errors.New(fmt.Errorf("failed to finalize WAV file: %w", err)).
			Component("audiofile").
			Category(errors.CategoryAudio).
			Context("path", cleanPath).
			Build()
	}
	return file.Close()
}
