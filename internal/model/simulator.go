// Package model provides the simulated pricing model collaborator. The
// pipeline treats it as an opaque predictor; the simulator additionally
// exposes the explainability capability with exact additive contributions.
package model

import (
	"math"
	"math/rand"

	"priceproof/internal/evidence"
	"priceproof/pkg/api"
)

// Model collaborator metadata supplied to the evidence builder.
const (
	Version           = "pricing_xgboost_v1"
	DefaultConfidence = 0.92
)

var featureNames = []string{
	"raw_material_cost",
	"demand_index",
	"inventory_level",
	"competitor_price_avg",
}

// background holds the training-distribution means. Contributions are
// measured against this reference point, which makes the additive Explain
// exact for the additive price formula.
var background = map[string]float64{
	"raw_material_cost":    400.0,
	"demand_index":         100.0,
	"inventory_level":      5000.0,
	"competitor_price_avg": 1050.0,
}

// Simulator is a self-contained market: it owns the current inputs, moves
// them with random scenarios, and prices them with a fixed additive formula.
type Simulator struct {
	rng    *rand.Rand
	price  float64
	inputs map[string]float64
}

// NewSimulator seeds a simulator at the background state and reports
// initialization to the audit sink.
func NewSimulator(seed int64, sink api.AuditSink) *Simulator {
	s := &Simulator{
		rng:    rand.New(rand.NewSource(seed)),
		inputs: cloneInputs(background),
	}
	s.price = s.Predict(s.inputs)

	sink.LogEvent(api.EventModelInitialized, map[string]any{
		"initial_price":  s.price,
		"initial_inputs": s.inputs,
		"model_version":  Version,
	})
	return s
}

// FeatureNames implements api.PricingModel.
func (s *Simulator) FeatureNames() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}

// Predict implements api.PricingModel with the additive formula
// 2·cost + demand/100·50 + 10000/inventory·10 + 0.1·competitor.
func (s *Simulator) Predict(inputs map[string]float64) float64 {
	var price float64
	for _, name := range featureNames {
		price += term(name, inputs[name])
	}
	return math.Round(price*100) / 100
}

// Explain implements api.Explainer: signed per-feature contributions of the
// given inputs relative to the background means, aligned to FeatureNames.
func (s *Simulator) Explain(inputs map[string]float64) ([]float64, error) {
	contribs := make([]float64, len(featureNames))
	for i, name := range featureNames {
		contribs[i] = term(name, inputs[name]) - term(name, background[name])
	}
	return contribs, nil
}

// State returns the current observable state. The inputs map is a copy;
// callers cannot reach the simulator's internal cell through it.
func (s *Simulator) State() evidence.State {
	return evidence.State{Price: s.price, Inputs: cloneInputs(s.inputs)}
}

// SimulateMarketUpdate fluctuates one or more inputs with a random scenario
// and reprices, returning the new state.
func (s *Simulator) SimulateMarketUpdate() evidence.State {
	next := cloneInputs(s.inputs)

	switch s.rng.Intn(5) {
	case 0: // cost hike
		next["raw_material_cost"] *= 1.062
	case 1: // demand surge
		next["demand_index"] *= 1.098
	case 2: // inventory drop
		next["inventory_level"] = math.Trunc(next["inventory_level"] * 0.879)
	case 3: // competitor move
		next["competitor_price_avg"] *= 1.031
	default: // mixed
		next["raw_material_cost"] *= 1.02
		next["competitor_price_avg"] *= 0.98
	}

	s.inputs = next
	s.price = s.Predict(next)
	return s.State()
}

func term(name string, v float64) float64 {
	switch name {
	case "raw_material_cost":
		return v * 2.0
	case "demand_index":
		return v / 100.0 * 50.0
	case "inventory_level":
		if v == 0 {
			return 0
		}
		return 10000.0 / v * 10.0
	case "competitor_price_avg":
		return v * 0.1
	default:
		return 0
	}
}

func cloneInputs(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Opaque strips the explainability capability from a model, forcing the
// attribution computer into fallback mode.
func Opaque(m api.PricingModel) api.PricingModel {
	return opaqueModel{m}
}

type opaqueModel struct {
	inner api.PricingModel
}

func (o opaqueModel) Predict(inputs map[string]float64) float64 { return o.inner.Predict(inputs) }
func (o opaqueModel) FeatureNames() []string                    { return o.inner.FeatureNames() }
