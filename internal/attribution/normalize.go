package attribution

import (
	"math"

	"priceproof/internal/evidence"
)

// Normalize rescales attribution magnitudes to two-decimal fractions summing
// to exactly 1.0. Empty input and an all-zero total are returned unchanged.
//
// Rounding drift is folded into the first element, a deterministic bias
// toward the first listed feature.
func Normalize(features []evidence.FeatureAttribution) []evidence.FeatureAttribution {
	if len(features) == 0 {
		return features
	}

	var total float64
	for _, f := range features {
		total += math.Abs(f.Attribution)
	}
	if total == 0 {
		return features
	}

	for i := range features {
		features[i].Attribution = round2(features[i].Attribution / total)
	}

	var sum float64
	for _, f := range features {
		sum += f.Attribution
	}

	if diff := round2(1.0 - sum); diff != 0 {
		features[0].Attribution = round2(features[0].Attribution + diff)
	}

	return features
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
