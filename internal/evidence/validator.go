package evidence

import (
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"priceproof/pkg/api"
	pperrors "priceproof/pkg/errors"
)

// SumTolerance is the allowed deviation of the attribution sum from 1.0.
const SumTolerance = 0.001

// Validator enforces the evidence data contract. Every refusal is emitted to
// the audit sink as a structured event before the error is returned; callers
// recover locally and no failure crosses the pipeline boundary.
type Validator struct {
	validate *validator.Validate
	sink     api.AuditSink
}

// NewValidator creates a contract validator reporting to the given sink.
func NewValidator(sink api.AuditSink) *Validator {
	v := validator.New()

	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v, sink: sink}
}

// Validate checks the evidence contract: presence of all nine required
// top-level fields, a non-nil confidence score, and the accepted
// explainability method tag. Checks short-circuit on the first failure,
// presence before the method literal. Returns nil when the evidence is valid.
func (v *Validator) Validate(ev *Evidence) error {
	if ev == nil {
		return v.refuse(pperrors.NewMissingFieldError("evidence"))
	}

	err := v.validate.Struct(ev)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return v.refuse(pperrors.NewMissingFieldError("evidence"))
	}

	// Field presence first, in declared field order, then the method literal.
	for _, fe := range verrs {
		if fe.Tag() != "required" {
			continue
		}
		if fe.Field() == "confidence_score" {
			return v.refuse(pperrors.NewMissingConfidenceError())
		}
		return v.refuse(pperrors.NewMissingFieldError(fe.Field()))
	}

	return v.refuse(pperrors.NewInvalidXAIMethodError())
}

// SumCheck verifies the numeric attribution invariant before evidence is
// committed: a non-empty feature set must sum to 1.0 within SumTolerance, and
// an empty set is rejected outright.
func (v *Validator) SumCheck(features []FeatureAttribution) error {
	if len(features) == 0 {
		verr := pperrors.NewSumMismatchError(0)
		v.sink.LogEvent(api.EventAttributionFailed, map[string]any{
			"total":  0.0,
			"reason": "no features above attribution threshold",
		})
		return verr
	}

	var total float64
	for _, f := range features {
		total += f.Attribution
	}

	if math.Abs(total-1.0) > SumTolerance {
		verr := pperrors.NewSumMismatchError(total)
		v.sink.LogEvent(api.EventAttributionFailed, map[string]any{
			"total":    total,
			"features": features,
		})
		return verr
	}

	return nil
}

func (v *Validator) refuse(perr *pperrors.PipelineError) error {
	v.sink.LogEvent(api.EventGenerationRefused, map[string]any{
		"reason": perr.Message,
		"code":   perr.Code,
	})
	return perr
}
