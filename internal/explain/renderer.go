// Package explain renders frozen evidence into audience-specific
// explanations and applies the mandatory safety redaction afterward.
package explain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"priceproof/internal/evidence"
	"priceproof/pkg/confidence"
)

// Audience selects the rendering mode.
type Audience string

const (
	AudienceCustomer  Audience = "customer"
	AudienceRegulator Audience = "regulator"
)

// friendlyNames maps raw feature keys to customer-facing wording. Unknown
// keys fall back to a title-cased, underscore-to-space transform.
var friendlyNames = map[string]string{
	"raw_material_cost":    "Raw Material Costs",
	"demand_index":         "Market Demand",
	"inventory_level":      "Inventory Availability",
	"competitor_price_avg": "Competitor Pricing",
}

// Render produces the deterministic five-section explanation for one
// audience. It reads the evidence but never mutates it; re-rendering the same
// evidence is side-effect free.
func Render(ev *evidence.Evidence, audience Audience) string {
	cur := currencyGlyph(ev.Currency)
	var window evidence.TimeWindow
	if ev.TimeWindow != nil {
		window = *ev.TimeWindow
	}
	score := 0.0
	if ev.ConfidenceScore != nil {
		score = *ev.ConfidenceScore
	}
	hideSuppliers := ev.SafetyFlags != nil && ev.SafetyFlags.HideSupplierNames

	// Sort a copy: evidence feature order is frozen, display order is not.
	features := make([]evidence.FeatureAttribution, len(ev.FeaturesUsed))
	copy(features, ev.FeaturesUsed)
	sort.SliceStable(features, func(i, j int) bool {
		return math.Abs(features[i].Attribution) > math.Abs(features[j].Attribution)
	})

	var b strings.Builder

	// 1. Title
	if audience == AudienceRegulator {
		b.WriteString("# Price Change Explanation (Regulatory Audit)\n\n")
	} else {
		b.WriteString("# Price Change Explanation (Customer Summary)\n\n")
	}

	// 2. Price Change Summary
	b.WriteString("**Price Change Summary**\n")
	fmt.Fprintf(&b, "• Price: %s%s → %s%s\n", cur, money(ev.OldPrice), cur, money(ev.NewPrice))
	fmt.Fprintf(&b, "• Time Window: %s to %s\n", window.From, window.To)
	if audience == AudienceRegulator {
		fmt.Fprintf(&b, "• ML Model: %s\n", ev.ModelVersion)
	}
	b.WriteString("\n")

	// 3. Attribution narrative
	b.WriteString("**Machine Learning–Based Feature Attribution**\n")
	direction := "decrease"
	if ev.NewPrice > ev.OldPrice {
		direction = "increase"
	}
	if audience == AudienceRegulator {
		fmt.Fprintf(&b, "The model detected a price %s driven by the following factors:\n", direction)
	} else {
		b.WriteString("We adjusted the price due to the following main factors:\n")
	}

	for _, f := range features {
		impactPct := int(math.Round(f.Attribution * 100))

		if audience == AudienceRegulator {
			source := f.DataSource
			if hideSuppliers {
				source = "redacted"
			}
			fmt.Fprintf(&b, "• %s: %d%% attribution (Input change: %.1f%%) [source: %s]\n",
				f.Name, impactPct, f.ValueChangePct, source)
			continue
		}

		factorDirection := "decreased"
		if f.ValueChangePct > 0 {
			factorDirection = "increased"
		}
		if f.Name == "competitor_price_avg" {
			factorDirection = "fluctuation"
		}
		fmt.Fprintf(&b, "• %s: ≈%d%% impact (Factor %s)\n", friendlyName(f.Name), impactPct, factorDirection)
	}
	b.WriteString("\n")

	// 4. Confidence & Methodology
	b.WriteString("**Confidence Score & Methodology**\n")
	fmt.Fprintf(&b, "• Confidence Level: %s (%.2f)\n", confidence.Label(score), score)
	fmt.Fprintf(&b, "• Methodology: Feature importance calculated using %s.\n", ev.XAIMethod)
	if audience == AudienceRegulator {
		fmt.Fprintf(&b, "• Traceability: All values derived from Model %s via %s.\n", ev.ModelVersion, ev.XAIMethod)
	}
	b.WriteString("\n")

	// 5. Disclaimer
	b.WriteString("**Disclaimer**\n")
	b.WriteString("This explanation is generated automatically based on model inputs. ")
	b.WriteString("It does not constitute a legal or binding commitment. ")
	if audience == AudienceCustomer {
		b.WriteString("Please contact support for detailed inquiries.")
	}

	return b.String()
}

func friendlyName(raw string) string {
	if name, ok := friendlyNames[raw]; ok {
		return name
	}

	words := strings.Split(strings.ReplaceAll(raw, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// currencyGlyph returns the display glyph for known currency codes and the
// code itself otherwise.
func currencyGlyph(code string) string {
	switch code {
	case "INR":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return code
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
