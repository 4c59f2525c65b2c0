package attribution

import (
	"math"

	"priceproof/internal/evidence"
	"priceproof/pkg/api"
)

// MaterialityThreshold is the minimum absolute price delta that counts as an
// economically significant change.
const MaterialityThreshold = 0.01

// Tracker owns the previous-state baseline and gates evidence generation on
// price materiality. The baseline cell has a single writer: Observe. Callers
// serialize Observe calls; the tracker itself holds no locks.
type Tracker struct {
	computer  Computer
	validator *evidence.Validator
	builder   *evidence.Builder
	sink      api.AuditSink
	baseline  *evidence.State
}

// NewTracker creates a change tracker with an empty baseline.
func NewTracker(computer Computer, validator *evidence.Validator, builder *evidence.Builder, sink api.AuditSink) *Tracker {
	return &Tracker{
		computer:  computer,
		validator: validator,
		builder:   builder,
		sink:      sink,
	}
}

// Observe processes one pricing cycle and returns frozen evidence for a
// materially changed, successfully validated cycle, nil otherwise.
//
// The baseline is replaced on every call, including cycles that fail
// validation or fall below the materiality threshold. A rejected state still
// becomes the next reference point.
func (t *Tracker) Observe(state evidence.State) *evidence.Evidence {
	prev := t.baseline
	t.baseline = cloneState(state)

	// First call: no prior reference exists.
	if prev == nil {
		return nil
	}

	if math.Abs(state.Price-prev.Price) < MaterialityThreshold {
		return nil
	}

	features, err := t.computer.Compute(*prev, state)
	if err != nil {
		t.sink.LogEvent(api.EventAttributionFailed, map[string]any{
			"reason": err.Error(),
		})
		return nil
	}

	features = Normalize(features)

	if err := t.validator.SumCheck(features); err != nil {
		return nil
	}

	ev := t.builder.Build(prev.Price, state.Price, features)
	t.sink.LogEvent(api.EventEvidenceGenerated, map[string]any{"evidence": ev})
	return ev
}

// cloneState deep-copies the caller-owned state into the baseline cell so
// later caller mutations cannot reach it.
func cloneState(s evidence.State) *evidence.State {
	inputs := make(map[string]float64, len(s.Inputs))
	for k, v := range s.Inputs {
		inputs[k] = v
	}
	return &evidence.State{Price: s.Price, Inputs: inputs}
}
