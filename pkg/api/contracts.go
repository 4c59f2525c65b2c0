// Package api defines the contracts between the evidence pipeline and its
// external collaborators: the pricing model, its optional explainability
// capability, and the audit sink.
package api

// PricingModel is the opaque pricing predictor. The pipeline never looks
// inside it; it only reads states the model produces and, when available,
// asks for per-feature contributions.
type PricingModel interface {
	// Predict maps an input feature vector to a price.
	Predict(inputs map[string]float64) float64

	// FeatureNames returns the fixed, ordered feature-name list agreed at
	// initialization. Attribution output follows this ordering.
	FeatureNames() []string
}

// Explainer is the optional explainability capability of a PricingModel.
// Explain returns signed per-feature contributions aligned to FeatureNames.
// Availability is probed once at process start; a model without this
// capability puts the pipeline into fallback attribution permanently.
type Explainer interface {
	Explain(inputs map[string]float64) ([]float64, error)
}

// AuditSink receives structured audit events. Calls are fire-and-forget:
// implementations must never block the pipeline on failure, and failures are
// not surfaced to the core.
type AuditSink interface {
	LogEvent(eventType string, details map[string]any)
}

// Audit event types emitted by the pipeline.
const (
	EventModelInitialized     = "MODEL_INITIALIZED"
	EventEvidenceGenerated    = "EVIDENCE_GENERATED"
	EventAttributionFailed    = "ATTRIBUTION_VALIDATION_FAILED"
	EventGenerationRefused    = "GENERATION_REFUSED"
	EventTextGenerated        = "TEXT_GENERATED"
	EventExplainerUnavailable = "EXPLAINABILITY_UNAVAILABLE"
)
