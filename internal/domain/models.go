package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Invoice represents a scanned sales invoice tracked through validation.
// ParsedData holds the full LLM extraction plus, after contract validation,
// the rag_validation sub-structure.
type Invoice struct {
	ID                       uuid.UUID        `db:"id" json:"id"`
	DocumentID               string           `db:"document_id" json:"document_id"`
	InvoiceNumber            string           `db:"invoice_number" json:"invoice_number"`
	InvoiceDate              string           `db:"invoice_date" json:"invoice_date"`
	VendorName               string           `db:"vendor_name" json:"vendor_name"`
	VendorTIN                string           `db:"vendor_tin" json:"vendor_tin"`
	TotalAmount              float64          `db:"total_amount" json:"total_amount"`
	Currency                 string           `db:"currency" json:"currency"`
	ParsedData               json.RawMessage  `db:"parsed_data" json:"parsed_data"`
	AttachmentValidation     ValidationStatus `db:"attachment_validation_status" json:"attachment_validation_status"`
	BIRValidation            ValidationStatus `db:"bir_validation_status" json:"bir_validation_status"`
	AmountValidation         ValidationStatus `db:"amount_validation_status" json:"amount_validation_status"`
	ContractValidation       ValidationStatus `db:"contract_validation_status" json:"contract_validation_status"`
	AttachmentScore          int              `db:"attachment_score" json:"attachment_score"`
	BIRScore                 int              `db:"bir_score" json:"bir_score"`
	LastValidationError      string           `db:"last_validation_error" json:"last_validation_error"`
	CreatedAt                time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time        `db:"updated_at" json:"updated_at"`
}

// RulePredicate is the serialized predicate attached to a rule. Kind selects
// the interpreter branch; Pattern, Choices, and Custom are kind-specific.
type RulePredicate struct {
	Kind    PredicateKind `json:"kind"`
	Pattern string        `json:"pattern,omitempty"`
	Choices []string      `json:"choices,omitempty"`
	Custom  string        `json:"custom,omitempty"`
}

// ValidationRule is a single field-level rule within a rule set. A nil
// Predicate degrades to a presence check. Weight is used only by BIR sets
// (1-10); standard sets count every rule equally.
type ValidationRule struct {
	Field     string         `json:"field"`
	Required  bool           `json:"required"`
	Predicate *RulePredicate `json:"predicate,omitempty"`
	Message   string         `json:"message"`
	Weight    int            `json:"weight,omitempty"`
}

// RuleSet is a named, versioned collection of rules. MinimumScore applies to
// BIR sets only; standard sets gate on zero errors alone.
type RuleSet struct {
	ID           string           `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Description  string           `db:"description" json:"description"`
	Kind         RuleSetKind      `db:"kind" json:"kind"`
	Rules        []ValidationRule `db:"-" json:"rules"`
	MinimumScore int              `db:"minimum_score" json:"minimum_score"`
	IsBuiltin    bool             `db:"is_builtin" json:"is_builtin"`
	IsActive     bool             `db:"is_active" json:"is_active"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// RuleSetSpec is the client-supplied shape for creating or updating a rule
// set. Pointer fields distinguish "absent" from "zero" on update.
type RuleSetSpec struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Kind         RuleSetKind       `json:"kind"`
	Rules        []ValidationRule  `json:"rules"`
	MinimumScore *int              `json:"minimum_score,omitempty"`
}

// RAGValidation is the contract-validation verdict returned by the RAG
// service, stored as a typed, versioned sub-structure under
// parsed_data.rag_validation rather than an untyped bag.
type RAGValidation struct {
	SchemaVersion           int                `json:"schema_version"`
	OverallAmountValidation string             `json:"overall_amount_validation"` // APPROVED | REJECTED
	ContractCompliant       bool               `json:"contract_compliant"`
	LineItems               []RAGLineItemCheck `json:"line_items,omitempty"`
	Remarks                 string             `json:"remarks,omitempty"`
	ValidatedAt             time.Time          `json:"validated_at"`
}

// RAGLineItemCheck is the per-line verdict within a RAG validation.
type RAGLineItemCheck struct {
	Description string  `json:"description"`
	Compliant   bool    `json:"compliant"`
	ContractRef string  `json:"contract_ref,omitempty"`
	PriceDelta  float64 `json:"price_delta,omitempty"`
}

// RAGSchemaVersion is the current rag_validation schema version.
const RAGSchemaVersion = 1
