package validator

import (
	"fmt"

	"birvalid/internal/domain"
)

// ValidationError is a single hard finding.
type ValidationError struct {
	Field    string                    `json:"field"`
	Message  string                    `json:"message"`
	Severity domain.ValidationSeverity `json:"severity"`
}

// ValidationWarning is a non-blocking advisory finding.
type ValidationWarning struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidationResult is the outcome of a completeness validation run.
type ValidationResult struct {
	IsValid  bool                `json:"is_valid"`
	Score    int                 `json:"score"`
	Errors   []ValidationError   `json:"errors"`
	Warnings []ValidationWarning `json:"warnings"`
	Summary  string              `json:"summary"`
}

// FieldPresence reports whether a required field carried a value.
type FieldPresence struct {
	Field   string `json:"field"`
	Present bool   `json:"present"`
}

// FieldCompleteness is the per-field breakdown attached to a BIR result.
type FieldCompleteness struct {
	RequiredFields []FieldPresence `json:"required_fields"`
	LineItems      *LineItemReport `json:"line_items"`
}

// BIRComplianceResult extends ValidationResult with the compliance gate and
// the field completeness report. IsCompliant requires both the weighted
// score at or above the set's minimum and zero hard errors.
type BIRComplianceResult struct {
	ValidationResult
	IsCompliant       bool              `json:"is_compliant"`
	MinimumScore      int               `json:"minimum_score"`
	FieldCompleteness FieldCompleteness `json:"field_completeness"`
}

func criticalError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message, Severity: domain.ValidationSeverityCritical}
}

func passSummary(passed, total, score int) string {
	return fmt.Sprintf("validation passed: %d/%d rules satisfied, score %d", passed, total, score)
}

func failSummary(errs, warns, score int) string {
	return fmt.Sprintf("validation failed: %d error(s), %d warning(s), score %d", errs, warns, score)
}
