package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"birvalid/internal/domain"
	"birvalid/internal/ruleset"
)

// lineItemWeight is the fixed score block reserved for line-item
// completeness, on top of the declared rule weights.
const lineItemWeight = 15

// highValueThreshold flags transactions worth additional review.
const highValueThreshold = 1_000_000

// ValidateBIR runs a weighted BIR compliance rule set against a raw
// extraction. The weighted score reserves a fixed 15-point block for
// line-item completeness; the compliance verdict requires both the score at
// or above the set's minimum and zero hard errors. Cross-field business
// rules run unconditionally, outside the weighted rule list.
func ValidateBIR(raw json.RawMessage, set *domain.RuleSet) *BIRComplianceResult {
	result := &BIRComplianceResult{MinimumScore: set.MinimumScore}
	result.Errors = []ValidationError{}
	result.Warnings = []ValidationWarning{}

	extract, violations := ParseRecord(raw, true)
	if len(violations) > 0 {
		schema := schemaFailure(violations)
		result.ValidationResult = *schema
		return result
	}

	totalWeight := lineItemWeight
	achieved := 0.0
	passedRules := 0
	for _, rule := range set.Rules {
		weight := rule.Weight
		if weight == 0 {
			weight = 1
		}
		totalWeight += weight
		if ruleset.Evaluate(rule.Predicate, extract.Field(rule.Field)) {
			achieved += float64(weight)
			passedRules++
			continue
		}
		result.Errors = append(result.Errors, criticalError(rule.Field, rule.Message))
	}

	report := CheckLineItems(extract.LineItems, true)
	if report.TotalItems == 0 {
		result.Errors = append(result.Errors, criticalError("line_items", "invoice must have at least one line item"))
	} else {
		achieved += float64(lineItemWeight) * float64(report.CompleteItems) / float64(report.TotalItems)
	}
	result.Errors = append(result.Errors, lineItemErrors(report)...)
	result.Warnings = append(result.Warnings, lineItemWarnings(report)...)

	result.Errors = append(result.Errors, crossFieldChecks(extract)...)

	errs, warns := advisoryChecks(extract)
	result.Errors = append(result.Errors, errs...)
	result.Warnings = append(result.Warnings, warns...)

	result.Score = int(math.Round(achieved / float64(totalWeight) * 100))
	result.IsValid = len(result.Errors) == 0
	result.IsCompliant = result.Score >= set.MinimumScore && len(result.Errors) == 0
	result.FieldCompleteness = FieldCompleteness{
		RequiredFields: requiredFieldReport(extract, set),
		LineItems:      report,
	}

	if result.IsCompliant {
		result.Summary = fmt.Sprintf("BIR compliant: score %d meets minimum %d with no errors", result.Score, set.MinimumScore)
	} else {
		result.Summary = fmt.Sprintf("not BIR compliant: score %d (minimum %d), %d error(s), %d warning(s)",
			result.Score, set.MinimumScore, len(result.Errors), len(result.Warnings))
	}
	return result
}

// lineItemErrors converts per-item hard requirements into errors keyed to
// the item index: quantity > 0, unit cost > 0, and a non-empty description.
func lineItemErrors(report *LineItemReport) []ValidationError {
	var errs []ValidationError
	for _, item := range report.IncompleteItems {
		for _, field := range item.MissingFields {
			switch field {
			case "quantity":
				errs = append(errs, criticalError(itemField(item.Index, field), "line item quantity must be greater than zero"))
			case "unit_cost":
				errs = append(errs, criticalError(itemField(item.Index, field), "line item unit cost must be greater than zero"))
			case "description":
				errs = append(errs, criticalError(itemField(item.Index, field), "line item description must not be empty"))
			}
		}
	}
	return errs
}

// lineItemWarnings reports the soft conditions: a missing line total and a
// failed arithmetic reconciliation. Both count against the completeness
// block but stay out of the error gate.
func lineItemWarnings(report *LineItemReport) []ValidationWarning {
	var warns []ValidationWarning
	for _, item := range report.IncompleteItems {
		for _, field := range item.MissingFields {
			switch field {
			case "line_total":
				warns = append(warns, ValidationWarning{
					Field:   itemField(item.Index, field),
					Message: "line item total is missing or not positive",
				})
			case fieldAccurateCalculation:
				warns = append(warns, ValidationWarning{
					Field:      itemField(item.Index, "line_total"),
					Message:    "line total does not reconcile with quantity × unit cost",
					Suggestion: "verify the extracted amounts against the scanned invoice",
				})
			}
		}
	}
	return warns
}

func itemField(index int, field string) string {
	return fmt.Sprintf("line_items[%d].%s", index, field)
}

// crossFieldChecks enforces the invariants that hold regardless of the
// configured rule list: VAT/Non-VAT mutual exclusivity and document-control
// number consistency.
func crossFieldChecks(extract *InvoiceExtract) []ValidationError {
	var errs []ValidationError

	if extract.VATClassification != nil {
		switch strings.ToLower(*extract.VATClassification) {
		case domain.VATClassRegistered:
			if !extract.ExemptMarked {
				errs = append(errs, criticalError("exempt_marked", "VAT-registered classification requires the EXEMPT statement"))
			}
			if extract.VATAmount != nil && *extract.VATAmount != 0 {
				errs = append(errs, criticalError("vat_amount", "VAT-registered invoice must not carry a non-zero VAT amount"))
			}
		case domain.VATClassNonRegistered:
			if extract.VATAmount == nil {
				errs = append(errs, criticalError("vat_amount", "Non-VAT-registered invoice must state a VAT amount, even if zero"))
			}
			if extract.ExemptMarked {
				errs = append(errs, criticalError("exempt_marked", "Non-VAT-registered invoice must not carry the EXEMPT statement"))
			}
		}
	}

	if extract.DocumentControlType != nil {
		switch strings.ToLower(*extract.DocumentControlType) {
		case domain.ControlTypeManual:
			if extract.ATPOCNNumber == nil || strings.TrimSpace(*extract.ATPOCNNumber) == "" {
				errs = append(errs, criticalError("atp_ocn_number", "manually printed invoice requires an ATP/OCN control number"))
			}
		case domain.ControlTypeSystem:
			if extract.PTUACCNNumber == nil || strings.TrimSpace(*extract.PTUACCNNumber) == "" {
				errs = append(errs, criticalError("ptu_accn_number", "system-generated invoice requires a PTU/ACCN control number"))
			}
		}
	}

	return errs
}

// advisoryChecks runs the supplementary checks. Only a future-dated
// transaction is a hard error; everything else is advisory.
func advisoryChecks(extract *InvoiceExtract) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warns []ValidationWarning

	for _, tin := range []struct {
		field string
		value *string
	}{
		{"vendor_tin", extract.VendorTIN},
		{"customer_tin", extract.CustomerTIN},
	} {
		if tin.value == nil {
			continue
		}
		if !ruleset.Evaluate(&domain.RulePredicate{Kind: domain.PredicateCustom, Custom: "tin_format"}, *tin.value) {
			warns = append(warns, ValidationWarning{
				Field:      tin.field,
				Message:    "TIN should have 9-12 digits after stripping separators",
				Suggestion: "confirm the TIN against the BIR registration",
			})
		}
	}

	if extract.InvoiceDate != nil {
		if d, err := parseDate(*extract.InvoiceDate); err == nil {
			now := time.Now()
			if d.After(now) {
				errs = append(errs, criticalError("invoice_date", "transaction date is in the future"))
			} else if d.Before(now.AddDate(-1, 0, 0)) {
				warns = append(warns, ValidationWarning{
					Field:   "invoice_date",
					Message: "transaction is older than one year",
				})
			}
		}
	}

	if extract.TotalAmount != nil && *extract.TotalAmount > highValueThreshold {
		warns = append(warns, ValidationWarning{
			Field:      "total_amount",
			Message:    fmt.Sprintf("high-value transaction: %.2f exceeds ₱%d", *extract.TotalAmount, highValueThreshold),
			Suggestion: "route for supervisor review",
		})
	}

	if extract.SerialNumber != nil && !strings.ContainsAny(*extract.SerialNumber, "0123456789") {
		warns = append(warns, ValidationWarning{
			Field:   "serial_number",
			Message: "serial number should contain at least one digit",
		})
	}

	return errs, warns
}

func requiredFieldReport(extract *InvoiceExtract, set *domain.RuleSet) []FieldPresence {
	report := make([]FieldPresence, 0, len(set.Rules))
	for _, rule := range set.Rules {
		if !rule.Required {
			continue
		}
		report = append(report, FieldPresence{
			Field:   rule.Field,
			Present: extract.Field(rule.Field) != nil,
		})
	}
	return report
}
