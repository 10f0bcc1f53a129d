package validator

import (
	"encoding/json"
	"fmt"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindBool
)

var schemaFields = []struct {
	name string
	kind fieldKind
}{
	{"invoice_number", kindString},
	{"invoice_date", kindString},
	{"serial_number", kindString},
	{"vendor_name", kindString},
	{"vendor_address", kindString},
	{"vendor_tin", kindString},
	{"customer_name", kindString},
	{"customer_address", kindString},
	{"customer_tin", kindString},
	{"subtotal", kindNumber},
	{"vatable_sales", kindNumber},
	{"vat_amount", kindNumber},
	{"vat_exempt_sales", kindNumber},
	{"zero_rated_sales", kindNumber},
	{"total_amount", kindNumber},
	{"currency", kindString},
	{"vat_status", kindString},
	{"vat_classification", kindString},
	{"exempt_marked", kindBool},
	{"signature_present", kindBool},
	{"bir_atp", kindBool},
	{"document_control_type", kindString},
	{"atp_ocn_number", kindString},
	{"ptu_accn_number", kindString},
}

var lineItemFields = []struct {
	name string
	kind fieldKind
}{
	{"description", kindString},
	{"quantity", kindNumber},
	{"unit_price", kindNumber},
	{"unit_cost", kindNumber},
	{"line_total", kindNumber},
}

// ParseRecord validates the shape of a raw extraction and decodes it into a
// typed record. Every field is nullable; any present field with the wrong
// type is a violation. When requireFlags is set (BIR schema) the boolean
// flags must be present and exactly true or false. A non-empty violation
// list means the whole validation aborts with a critical, score-0 result.
func ParseRecord(raw json.RawMessage, requireFlags bool) (*InvoiceExtract, []string) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, []string{"record is not a JSON object"}
	}

	var violations []string
	for _, f := range schemaFields {
		val, present := obj[f.name]
		if !present || isNull(val) {
			if f.kind == kindBool && requireFlags {
				violations = append(violations, fmt.Sprintf("%s: boolean flag must be present and true or false", f.name))
			}
			continue
		}
		if !matchesKind(val, f.kind) {
			violations = append(violations, fmt.Sprintf("%s: expected %s", f.name, kindName(f.kind)))
		}
	}

	if items, present := obj["line_items"]; present && !isNull(items) {
		violations = append(violations, checkLineItemShapes(items)...)
	}

	if len(violations) > 0 {
		return nil, violations
	}

	var extract InvoiceExtract
	if err := json.Unmarshal(raw, &extract); err != nil {
		return nil, []string{fmt.Sprintf("record could not be decoded: %v", err)}
	}
	return &extract, nil
}

func checkLineItemShapes(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{"line_items: expected an array"}
	}
	var violations []string
	for i, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			violations = append(violations, fmt.Sprintf("line_items[%d]: expected an object", i))
			continue
		}
		for _, f := range lineItemFields {
			val, present := obj[f.name]
			if !present || isNull(val) {
				continue
			}
			if !matchesKind(val, f.kind) {
				violations = append(violations, fmt.Sprintf("line_items[%d].%s: expected %s", i, f.name, kindName(f.kind)))
			}
		}
	}
	return violations
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func matchesKind(raw json.RawMessage, kind fieldKind) bool {
	switch kind {
	case kindString:
		var s string
		return json.Unmarshal(raw, &s) == nil
	case kindNumber:
		var n float64
		return json.Unmarshal(raw, &n) == nil
	case kindBool:
		var b bool
		return json.Unmarshal(raw, &b) == nil
	}
	return false
}

func kindName(kind fieldKind) string {
	switch kind {
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindBool:
		return "boolean"
	}
	return "unknown"
}
