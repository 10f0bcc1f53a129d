package validator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Line-item arithmetic must reconcile within one centavo to absorb OCR and
// extraction rounding noise.
var lineItemTolerance = decimal.NewFromFloat(0.01)

// Pseudo-field recorded against an item whose quantity × unit cost does not
// reconcile with its line total.
const fieldAccurateCalculation = "accurate_calculation"

// LineItemReport is the completeness breakdown across all invoice lines.
type LineItemReport struct {
	TotalItems      int              `json:"total_items"`
	CompleteItems   int              `json:"complete_items"`
	IncompleteItems []IncompleteItem `json:"incomplete_items"`
}

// IncompleteItem names every violated condition for one line, keyed by index.
type IncompleteItem struct {
	Index         int      `json:"index"`
	MissingFields []string `json:"missing_fields"`
}

// CheckLineItems validates each invoice line: quantity, unit cost, and line
// total present and greater than zero, non-empty description, and — in
// strict mode — quantity × unit cost reconciling with the line total. Every
// violated condition is recorded against the item's index, never dropped.
func CheckLineItems(items []ExtractLineItem, strict bool) *LineItemReport {
	report := &LineItemReport{TotalItems: len(items)}
	for i := range items {
		item := &items[i]
		var missing []string

		if item.Quantity == nil || *item.Quantity <= 0 {
			missing = append(missing, "quantity")
		}
		cost := item.Cost()
		if cost == nil || *cost <= 0 {
			missing = append(missing, "unit_cost")
		}
		if item.Description == nil || strings.TrimSpace(*item.Description) == "" {
			missing = append(missing, "description")
		}
		if item.LineTotal == nil || *item.LineTotal <= 0 {
			missing = append(missing, "line_total")
		} else if strict && item.Quantity != nil && cost != nil && !Reconciles(item) {
			missing = append(missing, fieldAccurateCalculation)
		}

		if len(missing) == 0 {
			report.CompleteItems++
		} else {
			report.IncompleteItems = append(report.IncompleteItems, IncompleteItem{Index: i, MissingFields: missing})
		}
	}
	return report
}

// Reconciles reports whether quantity × unit cost matches the line total
// within the one-centavo tolerance. Items missing any of the three amounts
// reconcile trivially; presence is checked separately.
func Reconciles(item *ExtractLineItem) bool {
	cost := item.Cost()
	if item.Quantity == nil || cost == nil || item.LineTotal == nil {
		return true
	}
	expected := decimal.NewFromFloat(*item.Quantity).Mul(decimal.NewFromFloat(*cost)).Round(2)
	actual := decimal.NewFromFloat(*item.LineTotal)
	return actual.Sub(expected).Abs().LessThanOrEqual(lineItemTolerance)
}
