package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"birvalid/internal/domain"
	"birvalid/internal/ruleset"
)

// Monetary totals must agree within one peso; anything beyond that is worth
// a human look.
var pesoTolerance = decimal.NewFromInt(1)

// vatRate is the standard Philippine VAT rate applied to vatable sales.
var vatRate = decimal.NewFromFloat(0.12)

// ValidateCompleteness runs an unweighted rule set against a raw extraction.
// Schema violations abort immediately with a critical score-0 result. Every
// rule counts equally toward the score; the secondary arithmetic and date
// checks produce warnings only. isValid gates on zero errors, independent of
// the score at this tier.
func ValidateCompleteness(raw json.RawMessage, set *domain.RuleSet) *ValidationResult {
	extract, violations := ParseRecord(raw, false)
	if len(violations) > 0 {
		return schemaFailure(violations)
	}

	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	passed := 0
	for _, rule := range set.Rules {
		if ruleset.Evaluate(rule.Predicate, extract.Field(rule.Field)) {
			passed++
			continue
		}
		result.Errors = append(result.Errors, criticalError(rule.Field, rule.Message))
	}

	// Empty sets are rejected at registration; the guard keeps the score
	// defined if one slips through a direct call.
	if total := len(set.Rules); total > 0 {
		result.Score = int(math.Round(float64(passed) / float64(total) * 100))
	} else {
		result.Score = 100
	}

	result.Warnings = append(result.Warnings, secondaryChecks(extract)...)

	result.IsValid = len(result.Errors) == 0
	if result.IsValid {
		result.Summary = passSummary(passed, len(set.Rules), result.Score)
	} else {
		result.Summary = failSummary(len(result.Errors), len(result.Warnings), result.Score)
	}
	return result
}

func schemaFailure(violations []string) *ValidationResult {
	return &ValidationResult{
		IsValid: false,
		Score:   0,
		Errors: []ValidationError{
			criticalError("schema", "record does not match the expected invoice schema: "+strings.Join(violations, "; ")),
		},
		Warnings: []ValidationWarning{},
		Summary:  "validation aborted: schema mismatch",
	}
}

// secondaryChecks runs the heuristic arithmetic and date checks. They never
// affect the score or the error list at this tier.
func secondaryChecks(extract *InvoiceExtract) []ValidationWarning {
	var warnings []ValidationWarning

	if w := vatArithmeticCheck(extract); w != nil {
		warnings = append(warnings, *w)
	}
	if w := subtotalCheck(extract); w != nil {
		warnings = append(warnings, *w)
	}
	if w := futureDateCheck(extract); w != nil {
		warnings = append(warnings, *w)
	}
	for i := range extract.LineItems {
		if !Reconciles(&extract.LineItems[i]) {
			warnings = append(warnings, ValidationWarning{
				Field:      fmt.Sprintf("line_items[%d].line_total", i),
				Message:    "line total does not match quantity × unit cost",
				Suggestion: "verify the extracted quantity, unit cost, and line total",
			})
		}
	}
	return warnings
}

// vatArithmeticCheck flags a VAT amount off from 12% of vatable sales by
// more than one peso.
func vatArithmeticCheck(extract *InvoiceExtract) *ValidationWarning {
	if extract.VATStatus == nil || !strings.EqualFold(*extract.VATStatus, "vatable") {
		return nil
	}
	if extract.VatableSales == nil || extract.VATAmount == nil {
		return nil
	}
	expected := decimal.NewFromFloat(*extract.VatableSales).Mul(vatRate).Round(2)
	actual := decimal.NewFromFloat(*extract.VATAmount)
	if actual.Sub(expected).Abs().LessThanOrEqual(pesoTolerance) {
		return nil
	}
	return &ValidationWarning{
		Field:      "vat_amount",
		Message:    fmt.Sprintf("VAT amount %.2f differs from 12%% of vatable sales", *extract.VATAmount),
		Suggestion: fmt.Sprintf("expected ~%s", expected.StringFixed(2)),
	}
}

// subtotalCheck flags a stated subtotal off from the sum of line totals by
// more than one peso. A mismatch of exactly one peso is still in tolerance.
func subtotalCheck(extract *InvoiceExtract) *ValidationWarning {
	if extract.Subtotal == nil || len(extract.LineItems) == 0 {
		return nil
	}
	sum := decimal.Zero
	for i := range extract.LineItems {
		if lt := extract.LineItems[i].LineTotal; lt != nil {
			sum = sum.Add(decimal.NewFromFloat(*lt))
		}
	}
	stated := decimal.NewFromFloat(*extract.Subtotal)
	if stated.Sub(sum).Abs().LessThanOrEqual(pesoTolerance) {
		return nil
	}
	return &ValidationWarning{
		Field:      "subtotal",
		Message:    fmt.Sprintf("subtotal %.2f does not match the sum of line totals", *extract.Subtotal),
		Suggestion: fmt.Sprintf("line totals sum to %s", sum.StringFixed(2)),
	}
}

func futureDateCheck(extract *InvoiceExtract) *ValidationWarning {
	if extract.InvoiceDate == nil {
		return nil
	}
	d, err := parseDate(*extract.InvoiceDate)
	if err != nil {
		return nil
	}
	if !d.After(time.Now()) {
		return nil
	}
	return &ValidationWarning{
		Field:   "invoice_date",
		Message: "invoice date is in the future",
	}
}

// parseDate tries the date formats seen in Philippine invoice extractions.
func parseDate(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"02/01/2006",
		"01-02-2006",
		"2006/01/02",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %s", s)
}
