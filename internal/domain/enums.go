package domain

// ValidationStatus tracks one validation step on an invoice. Each status
// field transitions pending → success|failed; a success is never re-run.
type ValidationStatus string

const (
	ValidationStatusPending ValidationStatus = "pending"
	ValidationStatusSuccess ValidationStatus = "success"
	ValidationStatusFailed  ValidationStatus = "failed"
)

// Retryable reports whether a validation step may be (re)run from this status.
func (s ValidationStatus) Retryable() bool {
	return s == ValidationStatusPending || s == ValidationStatusFailed
}

// ValidationSeverity classifies a single finding.
type ValidationSeverity string

const (
	ValidationSeverityCritical ValidationSeverity = "critical"
	ValidationSeverityMajor    ValidationSeverity = "major"
	ValidationSeverityMinor    ValidationSeverity = "minor"
)

// RuleSetKind distinguishes the unweighted completeness tier from the
// weighted BIR compliance tier.
type RuleSetKind string

const (
	RuleSetKindStandard RuleSetKind = "standard"
	RuleSetKindBIR      RuleSetKind = "bir"
)

// PredicateKind identifies a serializable rule predicate. Predicates are
// interpreted at run time so rule sets can be stored and audited without a
// code deployment.
type PredicateKind string

const (
	PredicateNonEmptyString PredicateKind = "non_empty_string"
	PredicatePositiveNumber PredicateKind = "positive_number"
	PredicateRegexMatch     PredicateKind = "regex_match"
	PredicateOneOf          PredicateKind = "one_of"
	PredicateBooleanTrue    PredicateKind = "boolean_true"
	PredicateCustom         PredicateKind = "custom"
)

// ValidPredicateKinds enumerates the accepted predicate kinds for rule set validation.
var ValidPredicateKinds = map[PredicateKind]bool{
	PredicateNonEmptyString: true,
	PredicatePositiveNumber: true,
	PredicateRegexMatch:     true,
	PredicateOneOf:          true,
	PredicateBooleanTrue:    true,
	PredicateCustom:         true,
}

// VAT registration classifications recognized by the BIR tier.
const (
	VATClassRegistered    = "vat_registered"
	VATClassNonRegistered = "non_vat_registered"
)

// Document control types and the certificate number scheme each requires.
// Manually printed invoices carry an ATP/OCN number; system-generated
// invoices carry a PTU/ACCN number.
const (
	ControlTypeManual = "manual"
	ControlTypeSystem = "system"
)

// BatchOutcome classifies a single document's result within a batch run.
type BatchOutcome string

const (
	BatchOutcomePassed BatchOutcome = "PASSED"
	BatchOutcomeFailed BatchOutcome = "FAILED"
	BatchOutcomeError  BatchOutcome = "ERROR"
)

// BatchMode selects which validation tier a batch run executes.
type BatchMode string

const (
	BatchModeStandard BatchMode = "standard"
	BatchModeBIR      BatchMode = "bir"
)
