package attribution

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"priceproof/internal/evidence"
)

func feats(magnitudes ...float64) []evidence.FeatureAttribution {
	out := make([]evidence.FeatureAttribution, len(magnitudes))
	for i, m := range magnitudes {
		out[i] = evidence.FeatureAttribution{Name: "f", Attribution: m}
	}
	return out
}

func sumAttribution(fs []evidence.FeatureAttribution) float64 {
	var total float64
	for _, f := range fs {
		total += f.Attribution
	}
	return total
}

func TestNormalizeSumsToOne(t *testing.T) {
	cases := [][]float64{
		{3, 1},
		{10, 10},
		{1, 1, 1},
		{0.7, 0.2, 0.05, 0.05},
		{50},
		{6.2, 9.8, 12.1, 3.1},
	}

	for _, magnitudes := range cases {
		fs := Normalize(feats(magnitudes...))
		assert.InDelta(t, 1.0, sumAttribution(fs), evidence.SumTolerance, "magnitudes %v", magnitudes)

		for _, f := range fs {
			cents := f.Attribution * 100
			assert.InDelta(t, math.Round(cents), cents, 1e-9, "attribution %v has more than two decimals", f.Attribution)
		}
	}
}

func TestNormalizeDriftGoesToFirstElement(t *testing.T) {
	// 1/3 each rounds to 0.33; the 0.01 drift lands on the first feature.
	fs := Normalize(feats(1, 1, 1))

	assert.InDelta(t, 0.34, fs[0].Attribution, 1e-9)
	assert.InDelta(t, 0.33, fs[1].Attribution, 1e-9)
	assert.InDelta(t, 0.33, fs[2].Attribution, 1e-9)
}

func TestNormalizeEmptyInputUnchanged(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]evidence.FeatureAttribution{}))
}

func TestNormalizeZeroTotalUnchanged(t *testing.T) {
	fs := Normalize(feats(0, 0))

	assert.Equal(t, 0.0, fs[0].Attribution)
	assert.Equal(t, 0.0, fs[1].Attribution)
}
