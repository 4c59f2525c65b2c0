// Package evidence defines the frozen evidence data contract and the
// components that enforce it: the builder that assembles records and the
// validator that gates both generation and rendering.
package evidence

// MethodSHAP is the single accepted explainability method tag. Evidence
// carrying any other xai_method fails validation.
const MethodSHAP = "SHAP"

// Wire time formats for the evidence contract.
const (
	DateFormat      = "2006-01-02"
	EventTimeFormat = "2006-01-02T15:04:05Z"
)

// State is one observed pricing cycle: the published price and the input
// feature vector that produced it. Owned by the caller, read-only here.
type State struct {
	Price  float64            `json:"price"`
	Inputs map[string]float64 `json:"inputs"`
}

// FeatureAttribution is one feature's share of a price change.
// Attribution holds an absolute magnitude before normalization and a
// normalized fraction after; RawSigned keeps the signed contribution for
// audit in explainable mode only.
type FeatureAttribution struct {
	Name           string   `json:"name"`
	ValueChangePct float64  `json:"value_change_pct"`
	Attribution    float64  `json:"attribution"`
	RawSigned      *float64 `json:"shap_raw,omitempty"`
	DataSource     string   `json:"data_source"`
}

// TimeWindow is the evidence observation window, dates as YYYY-MM-DD.
type TimeWindow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SafetyFlags instruct the renderer's output to be redacted for specific
// sensitive categories.
type SafetyFlags struct {
	HideExactCosts    bool `json:"hide_exact_costs"`
	HideSupplierNames bool `json:"hide_supplier_names"`
}

// Evidence is the frozen, validated record proving which features caused a
// price change and by how much. Once constructed it is never mutated;
// rendering reads it but produces no side effect on it.
//
// Field order mirrors the required-field check order of the validator.
type Evidence struct {
	EventID         string               `json:"event_id"`
	ProductID       string               `json:"product_id"`
	OldPrice        float64              `json:"old_price" validate:"required"`
	NewPrice        float64              `json:"new_price" validate:"required"`
	Currency        string               `json:"currency" validate:"required"`
	EventTime       string               `json:"event_time"`
	ModelVersion    string               `json:"model_version" validate:"required"`
	XAIMethod       string               `json:"xai_method" validate:"required,eq=SHAP"`
	TimeWindow      *TimeWindow          `json:"time_window" validate:"required"`
	FeaturesUsed    []FeatureAttribution `json:"features_used" validate:"required"`
	ConfidenceScore *float64             `json:"confidence_score" validate:"required"`
	SafetyFlags     *SafetyFlags         `json:"safety_flags" validate:"required"`
}

// dataSourceLabels maps feature names to the upstream system of record.
var dataSourceLabels = map[string]string{
	"raw_material_cost":    "supplier_invoices",
	"demand_index":         "sales_forecast_model",
	"inventory_level":      "warehouse_system",
	"competitor_price_avg": "market_scraper",
}

// DataSource returns the data-source label for a feature, "unknown" for
// features outside the fixed mapping.
func DataSource(feature string) string {
	if src, ok := dataSourceLabels[feature]; ok {
		return src
	}
	return "unknown"
}
