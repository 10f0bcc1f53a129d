package validator_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birvalid/internal/validator"
)

// validRecord returns a fully populated extraction that satisfies every
// built-in rule set, as a mutable map.
func validRecord() map[string]any {
	return map[string]any{
		"invoice_number":        "SI-2025-0042",
		"invoice_date":          time.Now().AddDate(0, -1, 0).Format("2006-01-02"),
		"serial_number":         "SN-00991",
		"vendor_name":           "Mabuhay Office Supplies Inc.",
		"vendor_address":        "123 Rizal Ave, Manila",
		"vendor_tin":            "123-456-789-000",
		"customer_name":         "Bayanihan Trading Corp.",
		"customer_address":      "456 Bonifacio St, Quezon City",
		"customer_tin":          "987-654-321-000",
		"subtotal":              10000.00,
		"vatable_sales":         10000.00,
		"vat_amount":            1200.00,
		"vat_exempt_sales":      0.00,
		"zero_rated_sales":      0.00,
		"total_amount":          11200.00,
		"currency":              "PHP",
		"vat_status":            "vatable",
		"vat_classification":    "non_vat_registered",
		"exempt_marked":         false,
		"signature_present":     true,
		"bir_atp":               true,
		"document_control_type": "manual",
		"atp_ocn_number":        "OCN-556677",
		"ptu_accn_number":       nil,
		"line_items": []map[string]any{
			{"description": "Bond paper (ream)", "quantity": 20.0, "unit_cost": 250.00, "line_total": 5000.00},
			{"description": "Ink cartridge", "quantity": 10.0, "unit_cost": 500.00, "line_total": 5000.00},
		},
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestParseRecord_ValidRecord(t *testing.T) {
	extract, violations := validator.ParseRecord(mustJSON(t, validRecord()), true)
	require.Empty(t, violations)
	require.NotNil(t, extract)

	assert.Equal(t, "SI-2025-0042", *extract.InvoiceNumber)
	assert.Equal(t, 11200.00, *extract.TotalAmount)
	assert.True(t, extract.SignaturePresent)
	assert.Len(t, extract.LineItems, 2)
}

func TestParseRecord_NullFieldsAreAccepted(t *testing.T) {
	rec := validRecord()
	rec["vendor_name"] = nil
	rec["subtotal"] = nil

	extract, violations := validator.ParseRecord(mustJSON(t, rec), false)
	require.Empty(t, violations)
	assert.Nil(t, extract.VendorName)
	assert.Nil(t, extract.Subtotal)
}

func TestParseRecord_TypeMismatches(t *testing.T) {
	rec := validRecord()
	rec["total_amount"] = "11200"
	rec["invoice_number"] = 42

	_, violations := validator.ParseRecord(mustJSON(t, rec), false)
	require.Len(t, violations, 2)
	assert.Contains(t, violations, "total_amount: expected number")
	assert.Contains(t, violations, "invoice_number: expected string")
}

func TestParseRecord_FlagsRequiredOnlyInStrictMode(t *testing.T) {
	rec := validRecord()
	delete(rec, "signature_present")
	rec["bir_atp"] = nil

	_, violations := validator.ParseRecord(mustJSON(t, rec), false)
	assert.Empty(t, violations, "lenient mode tolerates missing flags")

	_, violations = validator.ParseRecord(mustJSON(t, rec), true)
	require.Len(t, violations, 2)
	for _, v := range violations {
		assert.Contains(t, v, "boolean flag must be present")
	}
}

func TestParseRecord_LineItemShapes(t *testing.T) {
	rec := validRecord()
	rec["line_items"] = []map[string]any{
		{"description": "ok", "quantity": "five", "line_total": 100.0},
	}

	_, violations := validator.ParseRecord(mustJSON(t, rec), false)
	require.Len(t, violations, 1)
	assert.Equal(t, "line_items[0].quantity: expected number", violations[0])
}

func TestParseRecord_NotAnObject(t *testing.T) {
	_, violations := validator.ParseRecord(json.RawMessage(`[1,2,3]`), false)
	require.Len(t, violations, 1)
	assert.Equal(t, "record is not a JSON object", violations[0])
}

func TestParseRecord_ViolationsNameEveryField(t *testing.T) {
	rec := validRecord()
	for i, field := range []string{"subtotal", "vat_amount", "vendor_tin"} {
		if i%2 == 0 {
			rec[field] = true
		} else {
			rec[field] = []string{"x"}
		}
	}

	_, violations := validator.ParseRecord(mustJSON(t, rec), false)
	assert.Len(t, violations, 3, fmt.Sprintf("got: %v", violations))
}
