package explain

import (
	"strings"

	"priceproof/internal/evidence"
)

// sentinel temporarily stands in for already-redacted tokens so re-filtering
// is a no-op. It never appears in rendered text.
const sentinel = "\x00"

// Redact applies the mandatory post-render safety filter. With
// hide_exact_costs set, every occurrence of the currency glyph and currency
// code is replaced with its redacted variant (token followed by "~").
// Redaction runs after rendering for every audience and is idempotent.
func Redact(text string, flags evidence.SafetyFlags, currencyCode string) string {
	if !flags.HideExactCosts {
		return text
	}

	glyph := currencyGlyph(currencyCode)
	text = redactToken(text, glyph)
	if glyph != currencyCode {
		text = redactToken(text, currencyCode)
	}
	return text
}

func redactToken(text, token string) string {
	if token == "" {
		return text
	}
	// Park already-redacted occurrences so they are not redacted twice.
	text = strings.ReplaceAll(text, token+"~", sentinel)
	text = strings.ReplaceAll(text, token, token+"~")
	return strings.ReplaceAll(text, sentinel, token+"~")
}
