package explain

import (
	"priceproof/internal/evidence"
	"priceproof/pkg/api"
)

// RefusalText is returned for both audiences when evidence fails validation.
// Validation failure never yields a partially filled output.
const RefusalText = "Explanation unavailable due to data validation failure."

// Outputs is the result of one explanation request.
type Outputs struct {
	CustomerText  string `json:"customer_text"`
	RegulatorText string `json:"regulator_text"`
	EvidenceUsed  string `json:"evidence_used,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Explainer turns frozen evidence into safety-filtered explanations for both
// audiences. Evidence is validated again before rendering; records can arrive
// from files as well as from the tracker.
type Explainer struct {
	validator *evidence.Validator
	sink      api.AuditSink
}

// New creates an explainer reporting refusals and results to the given sink.
func New(validator *evidence.Validator, sink api.AuditSink) *Explainer {
	return &Explainer{validator: validator, sink: sink}
}

// Generate validates the evidence and produces both audience texts. On
// validation failure both texts carry the fixed refusal string and the error
// tag is set. Generate never panics and has no side effect on the evidence.
func (g *Explainer) Generate(ev *evidence.Evidence) Outputs {
	if err := g.validator.Validate(ev); err != nil {
		return Outputs{
			CustomerText:  RefusalText,
			RegulatorText: RefusalText,
			Error:         "Validation Failed",
		}
	}

	flags := *ev.SafetyFlags
	out := Outputs{
		CustomerText:  Redact(Render(ev, AudienceCustomer), flags, ev.Currency),
		RegulatorText: Redact(Render(ev, AudienceRegulator), flags, ev.Currency),
		EvidenceUsed:  ev.EventID,
	}

	g.sink.LogEvent(api.EventTextGenerated, map[string]any{
		"customer_text":  out.CustomerText,
		"regulator_text": out.RegulatorText,
		"evidence_used":  out.EvidenceUsed,
	})

	return out
}
