package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{1.0, "High confidence"},
		{0.92, "High confidence"},
		{0.80, "High confidence"},
		{0.79, "Medium confidence"},
		{0.50, "Medium confidence"},
		{0.49, "Low confidence"},
		{0.0, "Low confidence"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Label(tc.score), "score %v", tc.score)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.5))
	assert.Equal(t, 1.0, Clamp(1.7))
	assert.Equal(t, 0.92, Clamp(0.92))
}
