// Package attribution turns an old/new state pair into normalized per-feature
// attributions and owns the change tracker that gates the whole pipeline.
package attribution

import (
	"math"
	"sort"

	"priceproof/internal/evidence"
	"priceproof/pkg/api"
	pperrors "priceproof/pkg/errors"
)

// dropThreshold excludes insignificant contributions from the output set
// entirely. Dropped features are not zeroed, they are absent.
const dropThreshold = 0.001

// Computer produces per-feature attribution magnitudes for one price change.
// The variant is selected once at construction and never re-probed per call.
type Computer interface {
	Compute(prev, curr evidence.State) ([]evidence.FeatureAttribution, error)
}

// NewComputer probes the model's explainability capability once. Models that
// expose Explain get SHAP-backed attribution; all others fall back to
// magnitude-of-change heuristics for the lifetime of the process.
func NewComputer(model api.PricingModel, sink api.AuditSink) Computer {
	if x, ok := model.(api.Explainer); ok {
		return &shapComputer{explainer: x, featureNames: model.FeatureNames()}
	}

	perr := pperrors.NewExplainabilityUnavailableError("model does not expose an explain capability")
	sink.LogEvent(api.EventExplainerUnavailable, map[string]any{
		"reason": perr.Message,
		"code":   perr.Code,
	})
	return &fallbackComputer{featureNames: model.FeatureNames()}
}

// shapComputer attributes a price change using the model's signed
// contributions for the new state's inputs.
type shapComputer struct {
	explainer    api.Explainer
	featureNames []string
}

func (c *shapComputer) Compute(prev, curr evidence.State) ([]evidence.FeatureAttribution, error) {
	contribs, err := c.explainer.Explain(curr.Inputs)
	if err != nil {
		return nil, err
	}

	var features []evidence.FeatureAttribution
	for i, name := range c.featureNames {
		if i >= len(contribs) {
			break
		}

		raw := contribs[i]
		if math.Abs(raw) <= dropThreshold {
			continue
		}

		signed := raw
		features = append(features, evidence.FeatureAttribution{
			Name:           name,
			ValueChangePct: round1(pctChange(prev.Inputs[name], curr.Inputs[name])),
			Attribution:    math.Abs(raw),
			RawSigned:      &signed,
			DataSource:     evidence.DataSource(name),
		})
	}

	return features, nil
}

// fallbackComputer attributes a price change by the magnitude of each input's
// own percentage change. No signed raw value is retained.
type fallbackComputer struct {
	featureNames []string
}

func (c *fallbackComputer) Compute(prev, curr evidence.State) ([]evidence.FeatureAttribution, error) {
	names := c.featureNames
	if len(names) == 0 {
		names = sortedKeys(prev.Inputs)
	}

	var features []evidence.FeatureAttribution
	for _, name := range names {
		pct := pctChange(prev.Inputs[name], curr.Inputs[name])
		score := math.Abs(pct)
		if score <= dropThreshold {
			continue
		}

		features = append(features, evidence.FeatureAttribution{
			Name:           name,
			ValueChangePct: round1(pct),
			Attribution:    score,
			DataSource:     evidence.DataSource(name),
		})
	}

	return features, nil
}

// pctChange guards the zero denominator explicitly: an input appearing from
// zero yields 0% change, never an error.
func pctChange(oldVal, newVal float64) float64 {
	if oldVal == 0 {
		return 0
	}
	return (newVal - oldVal) / oldVal * 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
