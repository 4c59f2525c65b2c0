package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priceproof/internal/evidence"
	"priceproof/pkg/api"
)

func newTestExplainer(sink api.AuditSink) *Explainer {
	return New(evidence.NewValidator(sink), sink)
}

func TestGenerateProducesBothAudiences(t *testing.T) {
	sink := &recordingSink{}
	g := newTestExplainer(sink)

	ev := renderableEvidence()
	ev.SafetyFlags = &evidence.SafetyFlags{HideExactCosts: true}

	out := g.Generate(ev)

	assert.Empty(t, out.Error)
	assert.Equal(t, ev.EventID, out.EvidenceUsed)
	assert.Contains(t, out.CustomerText, "(Customer Summary)")
	assert.Contains(t, out.RegulatorText, "(Regulatory Audit)")
	assert.Contains(t, out.CustomerText, "₹~", "safety filter applies to customer text")
	assert.Contains(t, out.RegulatorText, "₹~", "safety filter applies to regulator text")

	require.Len(t, sink.events, 1)
	assert.Equal(t, api.EventTextGenerated, sink.events[0].eventType)
}

func TestGenerateRefusesInvalidEvidence(t *testing.T) {
	sink := &recordingSink{}
	g := newTestExplainer(sink)

	ev := renderableEvidence()
	ev.XAIMethod = "LIME"

	out := g.Generate(ev)

	assert.Equal(t, RefusalText, out.CustomerText)
	assert.Equal(t, RefusalText, out.RegulatorText)
	assert.Equal(t, "Validation Failed", out.Error)
	assert.Empty(t, out.EvidenceUsed)

	require.Len(t, sink.events, 1)
	assert.Equal(t, api.EventGenerationRefused, sink.events[0].eventType)
}

func TestGenerateRefusesMissingField(t *testing.T) {
	g := newTestExplainer(&recordingSink{})

	ev := renderableEvidence()
	ev.Currency = ""

	out := g.Generate(ev)
	assert.Equal(t, RefusalText, out.CustomerText)
	assert.Equal(t, RefusalText, out.RegulatorText)
	assert.Equal(t, "Validation Failed", out.Error)
}

func TestGenerateIsRepeatable(t *testing.T) {
	// Re-rendering the same frozen evidence yields identical output.
	g := newTestExplainer(&recordingSink{})
	ev := renderableEvidence()

	first := g.Generate(ev)
	second := g.Generate(ev)

	assert.Equal(t, first.CustomerText, second.CustomerText)
	assert.Equal(t, first.RegulatorText, second.RegulatorText)
}
