package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecovision-ai/birdsense/internal/acoustic"
)

// alternatingBuffer builds the high zero-crossing reference signal
// 64,192,64,192,... of the given length.
func alternatingBuffer(n int) []byte {
	samples := make([]byte, n)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 64
		} else {
			samples[i] = 192
		}
	}
	return samples
}

var testLabels = []string{
	"American Crow",
	"Great Horned Owl",
	"Black-capped Chickadee",
	"House Finch",
	"Downy Woodpecker",
	"Blue Jay",
	"American Robin",
	"Bald Eagle",
}

func TestScore_EmptyLabels(t *testing.T) {
	fs, err := acoustic.Extract(alternatingBuffer(1000))
	require.NoError(t, err)

	_, err = Score(fs, nil, 0)
	assert.Error(t, err)
}

func TestScore_Deterministic(t *testing.T) {
	samples := alternatingBuffer(44100)
	fs, err := acoustic.Extract(samples)
	require.NoError(t, err)
	seed := SeedFromContent(samples)

	first, err := Score(fs, testLabels, seed)
	require.NoError(t, err)
	second, err := Score(fs, testLabels, seed)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Label, second[i].Label)
		assert.Equal(t, first[i].Confidence, second[i].Confidence)
	}
}

func TestScore_ConfidenceBounds(t *testing.T) {
	buffers := [][]byte{
		alternatingBuffer(44100),
		make([]byte, 1000), // all zeros, maximum negative amplitude
		func() []byte {
			b := make([]byte, 5000)
			for i := range b {
				b[i] = byte((i * 17) % 256)
			}
			return b
		}(),
	}

	for _, samples := range buffers {
		fs, err := acoustic.Extract(samples)
		require.NoError(t, err)

		results, err := Score(fs, testLabels, SeedFromContent(samples))
		require.NoError(t, err)
		for _, r := range results {
			assert.GreaterOrEqual(t, r.Confidence, 0.20)
			assert.LessOrEqual(t, r.Confidence, 0.95)
		}
	}
}

func TestScore_Cardinality(t *testing.T) {
	fs, err := acoustic.Extract(alternatingBuffer(1000))
	require.NoError(t, err)

	results, err := Score(fs, testLabels, 42)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	results, err = Score(fs, []string{"crow", "owl"}, 42)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestScore_RankingOrder(t *testing.T) {
	samples := alternatingBuffer(44100)
	fs, err := acoustic.Extract(samples)
	require.NoError(t, err)

	results, err := Score(fs, testLabels, SeedFromContent(samples))
	require.NoError(t, err)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Confidence, results[i].Confidence,
			"results must be sorted by confidence descending")
	}
}

func TestScore_SilentBuffer(t *testing.T) {
	samples := make([]byte, 100)
	for i := range samples {
		samples[i] = 128
	}

	fs, err := acoustic.Extract(samples)
	require.NoError(t, err)

	results, err := Score(fs, testLabels, SeedFromContent(samples))
	require.NoError(t, err)
	assert.Len(t, results, 5)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Confidence, 0.20)
		assert.LessOrEqual(t, r.Confidence, 0.95)
	}
}

func TestScore_HighZeroCrossingDisfavorsCrowAndOwl(t *testing.T) {
	// The alternating signal flips sign on every sample. Crow and owl profiles
	// weight low zero-crossing heavily, so both must land below 0.5.
	samples := alternatingBuffer(44100)
	fs, err := acoustic.Extract(samples)
	require.NoError(t, err)

	results, err := Score(fs, []string{"crow", "owl"}, SeedFromContent(samples))
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Less(t, r.Confidence, 0.5, "label %s", r.Label)
	}

	// Same input, same ranking on a repeat run.
	again, err := Score(fs, []string{"crow", "owl"}, SeedFromContent(samples))
	require.NoError(t, err)
	assert.Equal(t, results[0].Label, again[0].Label)
	assert.Equal(t, results[1].Label, again[1].Label)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		label string
		want  speciesCategory
	}{
		{"American Crow", categoryCrow},
		{"common_raven", categoryCrow},
		{"BALD EAGLE", categoryRaptor},
		{"red-tailed hawk", categoryRaptor},
		{"Carolina Wren", categoryChickadee},
		{"house_sparrow", categoryFinch},
		{"Pileated Woodpecker", categoryWoodpecker},
		{"barred owl", categoryOwl},
		{"blue_jay", categoryJay},
		{"Northern Cardinal", categoryJay},
		{"american_robin", categoryRobin},
		{"Mallard", categoryOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, categorize(tt.label), "label %q", tt.label)
	}
}

func TestSeedFromContent(t *testing.T) {
	assert.Equal(t, uint64(0), SeedFromContent(nil))
	assert.Equal(t, uint64(384), SeedFromContent([]byte{128, 128, 128}))
	// Seed depends on content, not length alone.
	assert.NotEqual(t, SeedFromContent([]byte{1, 2, 3}), SeedFromContent([]byte{4, 2, 1}))
}

func TestSplitmix_Deterministic(t *testing.T) {
	a := newSplitmix(12345)
	b := newSplitmix(12345)
	for range 100 {
		va, vb := a.float64(), b.float64()
		assert.Equal(t, va, vb)
		assert.GreaterOrEqual(t, va, 0.0)
		assert.Less(t, va, 1.0)
	}
}
