// Package confidence provides confidence score math utilities.
package confidence

// Label thresholds for the three-tier confidence scale.
const (
	HighThreshold   = 0.80
	MediumThreshold = 0.50
)

// Label maps a confidence score to its three-tier label.
func Label(score float64) string {
	switch {
	case score >= HighThreshold:
		return "High confidence"
	case score >= MediumThreshold:
		return "Medium confidence"
	default:
		return "Low confidence"
	}
}

// Clamp ensures confidence is in valid range [0, 1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
