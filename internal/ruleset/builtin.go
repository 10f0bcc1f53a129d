package ruleset

import (
	"time"

	"birvalid/internal/domain"
)

// Built-in rule set ids.
const (
	SetStandard         = "standard"
	SetGovernment       = "government"
	SetVATRegistered    = "vat_registered"
	SetNonVATRegistered = "non_vat_registered"
	SetEnhanced         = "enhanced"
	SetBIRStandard      = "bir_standard"
	SetBIRGovernment    = "bir_government"
)

func nonEmpty() *domain.RulePredicate {
	return &domain.RulePredicate{Kind: domain.PredicateNonEmptyString}
}

func positive() *domain.RulePredicate {
	return &domain.RulePredicate{Kind: domain.PredicatePositiveNumber}
}

func boolTrue() *domain.RulePredicate {
	return &domain.RulePredicate{Kind: domain.PredicateBooleanTrue}
}

func oneOf(choices ...string) *domain.RulePredicate {
	return &domain.RulePredicate{Kind: domain.PredicateOneOf, Choices: choices}
}

func custom(name string) *domain.RulePredicate {
	return &domain.RulePredicate{Kind: domain.PredicateCustom, Custom: name}
}

// BuiltinRuleSets returns fresh copies of every predefined rule set. The
// standard tier sets are unweighted; the BIR sets carry 1-10 weights and a
// minimum passing score.
func BuiltinRuleSets() []*domain.RuleSet {
	now := time.Now().UTC()
	sets := []*domain.RuleSet{
		{
			ID:          SetStandard,
			Name:        "Standard Invoice Validation",
			Description: "Baseline completeness checks for scanned sales invoices.",
			Kind:        domain.RuleSetKindStandard,
			Rules: []domain.ValidationRule{
				{Field: "invoice_number", Required: true, Predicate: nonEmpty(), Message: "Invoice number is missing"},
				{Field: "vendor_tin", Required: true, Predicate: nonEmpty(), Message: "Vendor TIN is missing"},
				{Field: "total_amount", Required: true, Predicate: positive(), Message: "Total amount must be greater than zero"},
				{Field: "signature_present", Required: true, Predicate: boolTrue(), Message: "Authorized signature is missing"},
				{Field: "bir_atp", Required: true, Predicate: boolTrue(), Message: "BIR authority-to-print marking is missing"},
			},
		},
		{
			ID:          SetGovernment,
			Name:        "Government Supplier Validation",
			Description: "Completeness checks for invoices billed to government agencies.",
			Kind:        domain.RuleSetKindStandard,
			Rules: []domain.ValidationRule{
				{Field: "invoice_number", Required: true, Predicate: nonEmpty(), Message: "Invoice number is missing"},
				{Field: "invoice_date", Required: true, Predicate: nonEmpty(), Message: "Invoice date is missing"},
				{Field: "vendor_name", Required: true, Predicate: nonEmpty(), Message: "Vendor name is missing"},
				{Field: "vendor_tin", Required: true, Predicate: custom("tin_format"), Message: "Vendor TIN must have 9-12 digits"},
				{Field: "vendor_address", Required: true, Predicate: nonEmpty(), Message: "Vendor address is missing"},
				{Field: "total_amount", Required: true, Predicate: positive(), Message: "Total amount must be greater than zero"},
				{Field: "signature_present", Required: true, Predicate: boolTrue(), Message: "Authorized signature is missing"},
				{Field: "bir_atp", Required: true, Predicate: boolTrue(), Message: "BIR authority-to-print marking is missing"},
				{Field: "atp_ocn_number", Required: true, Predicate: nonEmpty(), Message: "ATP/OCN number is required for government billing"},
			},
		},
		{
			ID:          SetVATRegistered,
			Name:        "VAT-Registered Validation",
			Description: "Completeness checks for VAT-registered vendor invoices.",
			Kind:        domain.RuleSetKindStandard,
			Rules: []domain.ValidationRule{
				{Field: "invoice_number", Required: true, Predicate: nonEmpty(), Message: "Invoice number is missing"},
				{Field: "vendor_tin", Required: true, Predicate: nonEmpty(), Message: "Vendor TIN is missing"},
				{Field: "total_amount", Required: true, Predicate: positive(), Message: "Total amount must be greater than zero"},
				{Field: "vatable_sales", Required: true, Predicate: positive(), Message: "Vatable sales amount is missing"},
				{Field: "vat_amount", Required: true, Message: "VAT amount is missing"},
				{Field: "vat_status", Required: true, Predicate: oneOf("vatable", "vat_exempt", "zero_rated"), Message: "VAT status must be vatable, vat_exempt, or zero_rated"},
				{Field: "signature_present", Required: true, Predicate: boolTrue(), Message: "Authorized signature is missing"},
			},
		},
		{
			ID:          SetNonVATRegistered,
			Name:        "Non-VAT-Registered Validation",
			Description: "Completeness checks for Non-VAT-registered vendor invoices.",
			Kind:        domain.RuleSetKindStandard,
			Rules: []domain.ValidationRule{
				{Field: "invoice_number", Required: true, Predicate: nonEmpty(), Message: "Invoice number is missing"},
				{Field: "vendor_tin", Required: true, Predicate: nonEmpty(), Message: "Vendor TIN is missing"},
				{Field: "total_amount", Required: true, Predicate: positive(), Message: "Total amount must be greater than zero"},
				{Field: "vat_amount", Required: true, Message: "VAT amount field must be present, even if zero"},
				{Field: "signature_present", Required: true, Predicate: boolTrue(), Message: "Authorized signature is missing"},
			},
		},
		{
			ID:          SetEnhanced,
			Name:        "Enhanced Invoice Validation",
			Description: "Extended completeness and format checks covering both parties.",
			Kind:        domain.RuleSetKindStandard,
			Rules: []domain.ValidationRule{
				{Field: "invoice_number", Required: true, Predicate: nonEmpty(), Message: "Invoice number is missing"},
				{Field: "invoice_date", Required: true, Predicate: nonEmpty(), Message: "Invoice date is missing"},
				{Field: "serial_number", Required: true, Predicate: custom("contains_digit"), Message: "Serial number should contain at least one digit"},
				{Field: "vendor_name", Required: true, Predicate: nonEmpty(), Message: "Vendor name is missing"},
				{Field: "vendor_address", Required: true, Predicate: nonEmpty(), Message: "Vendor address is missing"},
				{Field: "vendor_tin", Required: true, Predicate: custom("tin_format"), Message: "Vendor TIN must have 9-12 digits"},
				{Field: "customer_name", Required: true, Predicate: nonEmpty(), Message: "Customer name is missing"},
				{Field: "subtotal", Required: true, Predicate: positive(), Message: "Subtotal must be greater than zero"},
				{Field: "total_amount", Required: true, Predicate: positive(), Message: "Total amount must be greater than zero"},
				{Field: "currency", Required: true, Predicate: oneOf("PHP", "USD"), Message: "Currency must be PHP or USD"},
				{Field: "signature_present", Required: true, Predicate: boolTrue(), Message: "Authorized signature is missing"},
				{Field: "bir_atp", Required: true, Predicate: boolTrue(), Message: "BIR authority-to-print marking is missing"},
			},
		},
		{
			ID:           SetBIRStandard,
			Name:         "BIR Compliance (Standard)",
			Description:  "Weighted BIR invoicing-requirement checks for private transactions.",
			Kind:         domain.RuleSetKindBIR,
			MinimumScore: 75,
			Rules: []domain.ValidationRule{
				{Field: "invoice_number", Required: true, Predicate: nonEmpty(), Message: "Invoice number is missing", Weight: 8},
				{Field: "invoice_date", Required: true, Predicate: nonEmpty(), Message: "Invoice date is missing", Weight: 7},
				{Field: "vendor_name", Required: true, Predicate: nonEmpty(), Message: "Vendor name is missing", Weight: 6},
				{Field: "vendor_tin", Required: true, Predicate: custom("tin_format"), Message: "Vendor TIN must have 9-12 digits", Weight: 10},
				{Field: "vendor_address", Required: true, Predicate: nonEmpty(), Message: "Vendor address is missing", Weight: 4},
				{Field: "customer_name", Required: true, Predicate: nonEmpty(), Message: "Customer name is missing", Weight: 4},
				{Field: "total_amount", Required: true, Predicate: positive(), Message: "Total amount must be greater than zero", Weight: 10},
				{Field: "vat_status", Required: true, Predicate: oneOf("vatable", "vat_exempt", "zero_rated"), Message: "VAT status must be vatable, vat_exempt, or zero_rated", Weight: 5},
				{Field: "signature_present", Required: true, Predicate: boolTrue(), Message: "Authorized signature is missing", Weight: 6},
				{Field: "bir_atp", Required: true, Predicate: boolTrue(), Message: "BIR authority-to-print marking is missing", Weight: 8},
			},
		},
		{
			ID:           SetBIRGovernment,
			Name:         "BIR Compliance (Government)",
			Description:  "Stricter weighted BIR checks for government-payable invoices.",
			Kind:         domain.RuleSetKindBIR,
			MinimumScore: 85,
			Rules: []domain.ValidationRule{
				{Field: "invoice_number", Required: true, Predicate: nonEmpty(), Message: "Invoice number is missing", Weight: 8},
				{Field: "invoice_date", Required: true, Predicate: nonEmpty(), Message: "Invoice date is missing", Weight: 8},
				{Field: "serial_number", Required: true, Predicate: custom("contains_digit"), Message: "Serial number should contain at least one digit", Weight: 3},
				{Field: "vendor_name", Required: true, Predicate: nonEmpty(), Message: "Vendor name is missing", Weight: 6},
				{Field: "vendor_tin", Required: true, Predicate: custom("tin_format"), Message: "Vendor TIN must have 9-12 digits", Weight: 10},
				{Field: "vendor_address", Required: true, Predicate: nonEmpty(), Message: "Vendor address is missing", Weight: 5},
				{Field: "customer_name", Required: true, Predicate: nonEmpty(), Message: "Customer name is missing", Weight: 5},
				{Field: "customer_tin", Required: true, Predicate: custom("tin_format"), Message: "Customer TIN must have 9-12 digits", Weight: 5},
				{Field: "total_amount", Required: true, Predicate: positive(), Message: "Total amount must be greater than zero", Weight: 10},
				{Field: "vat_status", Required: true, Predicate: oneOf("vatable", "vat_exempt", "zero_rated"), Message: "VAT status must be vatable, vat_exempt, or zero_rated", Weight: 6},
				{Field: "signature_present", Required: true, Predicate: boolTrue(), Message: "Authorized signature is missing", Weight: 7},
				{Field: "bir_atp", Required: true, Predicate: boolTrue(), Message: "BIR authority-to-print marking is missing", Weight: 9},
			},
		},
	}

	for _, set := range sets {
		set.IsBuiltin = true
		set.IsActive = true
		set.CreatedAt = now
		set.UpdatedAt = now
	}
	return sets
}
