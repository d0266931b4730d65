// Package acoustic extracts deterministic scalar features from raw audio samples.
package acoustic

import (
	"math"

	"github.com/ecovision-ai/birdsense/internal/errors"
)

// rhythmChunks is the number of equal time chunks used for the rhythmicity feature.
const rhythmChunks = 10

// FeatureSet holds the scalar features derived from one audio sample buffer.
// All ratio-type features are finite; zero-magnitude audio yields zero centroid
// and rhythmicity rather than NaN/Inf.
type FeatureSet struct {
	AverageAmplitude float64 // mean byte value, 0-255
	MaxAmplitude     float64 // max byte value, 0-255
	MinAmplitude     float64 // min byte value, 0-255
	AmplitudeRange   float64 // max - min, 0-255
	ZeroCrossingRate float64 // fraction of adjacent sign changes, [0,1]
	AverageEnergy    float64 // mean of squared normalized samples, [0,1]
	SpectralCentroid float64 // magnitude-weighted mean sample index, [0,1]
	Rhythmicity      float64 // stddev of per-chunk energy across time chunks
}

// Extract computes the feature set for a buffer of unsigned 8-bit samples
// centered at 128. It is a pure function of its input.
func Extract(samples []byte) (FeatureSet, error) {
	if len(samples) == 0 {
		return FeatureSet{}, errors.Newf("cannot extract features from empty audio buffer").
			Component("acoustic").
			Category(errors.CategoryValidation).
			Build()
	}

	var fs FeatureSet
	n := len(samples)

	// Amplitude statistics, zero crossings, energy and centroid accumulators
	// in a single pass.
	var sum, weightedSum, totalMagnitude, energySum float64
	minAmp, maxAmp := samples[0], samples[0]
	crossings := 0
	prevSigned := int(samples[0]) - 128

	for i := range n {
		b := samples[i]
		sum += float64(b)
		if b > maxAmp {
			maxAmp = b
		}
		if b < minAmp {
			minAmp = b
		}

		signed := int(b) - 128
		if i > 0 && signed*prevSigned < 0 {
			crossings++
		}
		prevSigned = signed

		normalized := float64(signed) / 128.0
		energySum += normalized * normalized

		magnitude := math.Abs(float64(signed))
		weightedSum += float64(i) * magnitude
		totalMagnitude += magnitude
	}

	fs.AverageAmplitude = sum / float64(n)
	fs.MaxAmplitude = float64(maxAmp)
	fs.MinAmplitude = float64(minAmp)
	fs.AmplitudeRange = float64(maxAmp) - float64(minAmp)
	fs.ZeroCrossingRate = float64(crossings) / float64(n)
	fs.AverageEnergy = energySum / float64(n)

	// Silent audio has zero total magnitude, treat centroid as zero instead of
	// dividing by it.
	if totalMagnitude > 0 {
		fs.SpectralCentroid = (weightedSum / totalMagnitude) / float64(n)
	}

	fs.Rhythmicity = rhythmicity(samples)

	return fs, nil
}

// rhythmicity partitions the samples into equal contiguous chunks and returns
// the population standard deviation of per-chunk average energy.
func rhythmicity(samples []byte) float64 {
	chunkSize := len(samples) / rhythmChunks

	chunkEnergies := make([]float64, rhythmChunks)
	for i := range rhythmChunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(samples))
		if start >= end {
			continue
		}

		var energy float64
		for _, b := range samples[start:end] {
			normalized := float64(int(b)-128) / 128.0
			energy += normalized * normalized
		}
		chunkEnergies[i] = energy / float64(end-start)
	}

	var mean float64
	for _, e := range chunkEnergies {
		mean += e
	}
	mean /= rhythmChunks

	var variance float64
	for _, e := range chunkEnergies {
		diff := e - mean
		variance += diff * diff
	}
	variance /= rhythmChunks

	return math.Sqrt(variance)
}
