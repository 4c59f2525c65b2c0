package evidence

import (
	"time"

	"github.com/google/uuid"

	"priceproof/pkg/confidence"
)

// windowDays is the fixed trailing observation window attached to every
// evidence record. It is a declared simplification: the window is not derived
// from the timestamps of the two observed states.
const windowDays = 7

// Builder assembles frozen evidence records. Confidence score and model
// version come from the model collaborator's metadata; the builder does not
// compute them. It is only invoked after attribution, normalization, and the
// sum check have all succeeded.
type Builder struct {
	productID    string
	currency     string
	modelVersion string
	confidence   float64
	flags        SafetyFlags
	now          func() time.Time
}

// NewBuilder creates an evidence builder for one product line.
func NewBuilder(productID, currency, modelVersion string, confidenceScore float64, flags SafetyFlags) *Builder {
	return &Builder{
		productID:    productID,
		currency:     currency,
		modelVersion: modelVersion,
		confidence:   confidence.Clamp(confidenceScore),
		flags:        flags,
		now:          time.Now,
	}
}

// WithClock overrides the time source.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build assembles a complete evidence record with a fresh event ID. All
// fields are fixed at construction; the record must not be mutated afterward.
func (b *Builder) Build(oldPrice, newPrice float64, features []FeatureAttribution) *Evidence {
	now := b.now().UTC()
	score := b.confidence
	flags := b.flags

	return &Evidence{
		EventID:      uuid.NewString(),
		ProductID:    b.productID,
		OldPrice:     oldPrice,
		NewPrice:     newPrice,
		Currency:     b.currency,
		EventTime:    now.Format(EventTimeFormat),
		ModelVersion: b.modelVersion,
		XAIMethod:    MethodSHAP,
		TimeWindow: &TimeWindow{
			From: now.AddDate(0, 0, -windowDays).Format(DateFormat),
			To:   now.Format(DateFormat),
		},
		FeaturesUsed:    features,
		ConfidenceScore: &score,
		SafetyFlags:     &flags,
	}
}
