package explain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priceproof/internal/evidence"
)

type recordedEvent struct {
	eventType string
	details   map[string]any
}

type recordingSink struct {
	events []recordedEvent
}

func (s *recordingSink) LogEvent(eventType string, details map[string]any) {
	s.events = append(s.events, recordedEvent{eventType, details})
}

func renderableEvidence() *evidence.Evidence {
	score := 0.92
	return &evidence.Evidence{
		EventID:      "7a1e42a6-8a2e-4e5b-9a77-0f2b2f6c1d55",
		ProductID:    "SKU-123",
		OldPrice:     1000,
		NewPrice:     1200,
		Currency:     "INR",
		EventTime:    "2026-08-23T10:00:00Z",
		ModelVersion: "pricing_xgboost_v1",
		XAIMethod:    evidence.MethodSHAP,
		TimeWindow:   &evidence.TimeWindow{From: "2026-08-16", To: "2026-08-23"},
		FeaturesUsed: []evidence.FeatureAttribution{
			{Name: "demand_index", ValueChangePct: -10, Attribution: 0.25, DataSource: "sales_forecast_model"},
			{Name: "raw_material_cost", ValueChangePct: 50, Attribution: 0.75, DataSource: "supplier_invoices"},
		},
		ConfidenceScore: &score,
		SafetyFlags:     &evidence.SafetyFlags{},
	}
}

func TestRenderSectionsInFixedOrder(t *testing.T) {
	text := Render(renderableEvidence(), AudienceCustomer)

	sections := []string{
		"# Price Change Explanation (Customer Summary)",
		"**Price Change Summary**",
		"**Machine Learning–Based Feature Attribution**",
		"**Confidence Score & Methodology**",
		"**Disclaimer**",
	}

	last := -1
	for _, s := range sections {
		idx := strings.Index(text, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}
}

func TestRenderOrdersFeaturesByAttributionMagnitude(t *testing.T) {
	text := Render(renderableEvidence(), AudienceCustomer)

	cost := strings.Index(text, "Raw Material Costs")
	demand := strings.Index(text, "Market Demand")
	require.GreaterOrEqual(t, cost, 0)
	require.GreaterOrEqual(t, demand, 0)
	assert.Less(t, cost, demand, "largest attribution renders first")
}

func TestRenderCustomer(t *testing.T) {
	text := Render(renderableEvidence(), AudienceCustomer)

	assert.Contains(t, text, "• Price: ₹1000.00 → ₹1200.00")
	assert.Contains(t, text, "• Time Window: 2026-08-16 to 2026-08-23")
	assert.Contains(t, text, "We adjusted the price due to the following main factors:")
	assert.Contains(t, text, "• Raw Material Costs: ≈75% impact (Factor increased)")
	assert.Contains(t, text, "• Market Demand: ≈25% impact (Factor decreased)")
	assert.Contains(t, text, "• Confidence Level: High confidence (0.92)")
	assert.Contains(t, text, "Please contact support for detailed inquiries.")

	assert.NotContains(t, text, "pricing_xgboost_v1", "customer summary never names the model version")
	assert.NotContains(t, text, "raw_material_cost", "customer summary uses friendly names only")
}

func TestRenderRegulator(t *testing.T) {
	text := Render(renderableEvidence(), AudienceRegulator)

	assert.Contains(t, text, "# Price Change Explanation (Regulatory Audit)")
	assert.Contains(t, text, "• ML Model: pricing_xgboost_v1")
	assert.Contains(t, text, "The model detected a price increase driven by the following factors:")
	assert.Contains(t, text, "• raw_material_cost: 75% attribution (Input change: 50.0%) [source: supplier_invoices]")
	assert.Contains(t, text, "• demand_index: 25% attribution (Input change: -10.0%) [source: sales_forecast_model]")
	assert.Contains(t, text, "• Methodology: Feature importance calculated using SHAP.")
	assert.Contains(t, text, "• Traceability: All values derived from Model pricing_xgboost_v1 via SHAP.")
}

func TestRenderMasksSupplierSources(t *testing.T) {
	ev := renderableEvidence()
	ev.SafetyFlags = &evidence.SafetyFlags{HideSupplierNames: true}

	text := Render(ev, AudienceRegulator)
	assert.NotContains(t, text, "supplier_invoices")
	assert.Contains(t, text, "[source: redacted]")
}

func TestRenderCompetitorDirectionIsFluctuation(t *testing.T) {
	ev := renderableEvidence()
	ev.FeaturesUsed = []evidence.FeatureAttribution{
		{Name: "competitor_price_avg", ValueChangePct: -3.1, Attribution: 1.0, DataSource: "market_scraper"},
	}

	text := Render(ev, AudienceCustomer)
	assert.Contains(t, text, "• Competitor Pricing: ≈100% impact (Factor fluctuation)")
}

func TestRenderUnknownFeatureFallsBackToTitleCase(t *testing.T) {
	ev := renderableEvidence()
	ev.FeaturesUsed = []evidence.FeatureAttribution{
		{Name: "fuel_surcharge", ValueChangePct: 12, Attribution: 1.0, DataSource: "unknown"},
	}

	text := Render(ev, AudienceCustomer)
	assert.Contains(t, text, "• Fuel Surcharge: ≈100% impact (Factor increased)")
}

func TestRenderPriceDecreaseWording(t *testing.T) {
	ev := renderableEvidence()
	ev.OldPrice, ev.NewPrice = 1200, 1000

	text := Render(ev, AudienceRegulator)
	assert.Contains(t, text, "The model detected a price decrease driven by the following factors:")
}

func TestRenderConfidenceLabels(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.92, "High confidence (0.92)"},
		{0.80, "High confidence (0.80)"},
		{0.65, "Medium confidence (0.65)"},
		{0.50, "Medium confidence (0.50)"},
		{0.30, "Low confidence (0.30)"},
	}

	for _, tc := range cases {
		ev := renderableEvidence()
		score := tc.score
		ev.ConfidenceScore = &score

		assert.Contains(t, Render(ev, AudienceCustomer), tc.want)
	}
}

func TestRenderDoesNotMutateEvidence(t *testing.T) {
	ev := renderableEvidence()
	Render(ev, AudienceCustomer)
	Render(ev, AudienceRegulator)

	// Frozen feature order survives rendering's display sort.
	assert.Equal(t, "demand_index", ev.FeaturesUsed[0].Name)
	assert.Equal(t, "raw_material_cost", ev.FeaturesUsed[1].Name)
}
