// Package errors provides severity-aware error types for the evidence pipeline.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// PipelineError is a structured error with context.
// All pipeline errors are recovered locally: they degrade to "no evidence
// produced" at generation time or to a refusal payload at explanation time.
type PipelineError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Field       string   `json:"field,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *PipelineError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s (field: %s)", e.Severity, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Error codes
const (
	ErrCodeMissingField              = "MISSING_FIELD"
	ErrCodeInvalidXAIMethod          = "INVALID_XAI_METHOD"
	ErrCodeAttributionSumMismatch    = "ATTRIBUTION_SUM_MISMATCH"
	ErrCodeExplainabilityUnavailable = "EXPLAINABILITY_UNAVAILABLE"
)

// NewMissingFieldError creates an error for an absent required evidence field.
func NewMissingFieldError(field string) *PipelineError {
	return &PipelineError{
		Code:        ErrCodeMissingField,
		Message:     fmt.Sprintf("Missing field: %s", field),
		Severity:    SeverityError,
		Field:       field,
		Recoverable: true,
	}
}

// NewMissingConfidenceError creates an error for a null confidence score.
func NewMissingConfidenceError() *PipelineError {
	return &PipelineError{
		Code:        ErrCodeMissingField,
		Message:     "Missing confidence score",
		Severity:    SeverityError,
		Field:       "confidence_score",
		Recoverable: true,
	}
}

// NewInvalidXAIMethodError creates an error for an unaccepted explainability
// method tag.
func NewInvalidXAIMethodError() *PipelineError {
	return &PipelineError{
		Code:        ErrCodeInvalidXAIMethod,
		Message:     "Invalid XAI method (must be SHAP)",
		Severity:    SeverityError,
		Field:       "xai_method",
		Recoverable: true,
	}
}

// NewSumMismatchError creates an error for attributions that do not sum to 1.0.
func NewSumMismatchError(total float64) *PipelineError {
	return &PipelineError{
		Code:        ErrCodeAttributionSumMismatch,
		Message:     fmt.Sprintf("Attribution sum %.4f deviates from 1.0 by more than 0.001", total),
		Severity:    SeverityError,
		Recoverable: true,
	}
}

// NewExplainabilityUnavailableError records a failed capability probe.
// This is permanent for the process lifetime, not a per-cycle error.
func NewExplainabilityUnavailableError(reason string) *PipelineError {
	return &PipelineError{
		Code:        ErrCodeExplainabilityUnavailable,
		Message:     fmt.Sprintf("Explainability unavailable: %s", reason),
		Severity:    SeverityWarning,
		Recoverable: true,
	}
}
