package explain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"priceproof/internal/evidence"
)

func TestRedactReplacesCurrencyTokens(t *testing.T) {
	flags := evidence.SafetyFlags{HideExactCosts: true}

	got := Redact("Price moved from ₹1000.00 to ₹1200.00 INR", flags, "INR")
	assert.Equal(t, "Price moved from ₹~1000.00 to ₹~1200.00 INR~", got)
}

func TestRedactIsIdempotent(t *testing.T) {
	flags := evidence.SafetyFlags{HideExactCosts: true}
	text := "₹1000.00 → ₹1200.00 (INR), was ₹~900.00"

	once := Redact(text, flags, "INR")
	twice := Redact(once, flags, "INR")
	assert.Equal(t, once, twice)
}

func TestRedactNoopWithoutFlag(t *testing.T) {
	text := "₹1000.00 INR"
	assert.Equal(t, text, Redact(text, evidence.SafetyFlags{}, "INR"))
}

func TestRedactGlyphlessCurrency(t *testing.T) {
	flags := evidence.SafetyFlags{HideExactCosts: true}

	got := Redact("Price: CHF1000.00", flags, "CHF")
	assert.Equal(t, "Price: CHF~1000.00", got)
}

func TestRenderedTextCarriesNoUnredactedCurrency(t *testing.T) {
	ev := renderableEvidence()
	ev.SafetyFlags = &evidence.SafetyFlags{HideExactCosts: true}

	for _, audience := range []Audience{AudienceCustomer, AudienceRegulator} {
		text := Redact(Render(ev, audience), *ev.SafetyFlags, ev.Currency)

		// Every glyph and code occurrence must be followed by the redaction
		// marker, leaving no bare token adjacent to a digit.
		assert.NotContains(t, strings.ReplaceAll(text, "₹~", ""), "₹")
		assert.NotContains(t, strings.ReplaceAll(text, "INR~", ""), "INR")
	}
}
