package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"birvalid/internal/domain"
	"birvalid/internal/port"
	"birvalid/internal/validator"
)

// ValidationService runs the validation tiers against ad-hoc records and
// against stored invoices via the full extraction pipeline.
type ValidationService interface {
	ValidateCompleteness(ctx context.Context, record json.RawMessage, ruleSetID string) (*validator.ValidationResult, error)
	ValidateBIRCompliance(ctx context.Context, record json.RawMessage, ruleSetID string) (*validator.BIRComplianceResult, error)
	ValidateInvoice(ctx context.Context, invoiceID uuid.UUID, standardSetID, birSetID string) (*InvoiceValidationOutcome, error)
}

// InvoiceValidationOutcome bundles both tier results for one invoice.
type InvoiceValidationOutcome struct {
	InvoiceID    uuid.UUID                      `json:"invoice_id"`
	Completeness *validator.ValidationResult    `json:"completeness,omitempty"`
	BIR          *validator.BIRComplianceResult `json:"bir,omitempty"`
}

type validationService struct {
	invoiceRepo port.InvoiceRepository
	ruleSets    port.RuleSetRepository
	docs        port.DocumentSource
	extractor   port.FieldExtractor
}

// NewValidationService creates a ValidationService implementation.
func NewValidationService(
	invoiceRepo port.InvoiceRepository,
	ruleSets port.RuleSetRepository,
	docs port.DocumentSource,
	extractor port.FieldExtractor,
) ValidationService {
	return &validationService{
		invoiceRepo: invoiceRepo,
		ruleSets:    ruleSets,
		docs:        docs,
		extractor:   extractor,
	}
}

// resolveRuleSet loads an active rule set, optionally enforcing its kind.
func (s *validationService) resolveRuleSet(ctx context.Context, id string, kind domain.RuleSetKind) (*domain.RuleSet, error) {
	set, err := s.ruleSets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !set.IsActive {
		return nil, domain.ErrRuleSetNotFound
	}
	if kind != "" && set.Kind != kind {
		return nil, fmt.Errorf("rule set %q is not a %s set: %w", id, kind, domain.ErrInvalidRuleSet)
	}
	return set, nil
}

func (s *validationService) ValidateCompleteness(ctx context.Context, record json.RawMessage, ruleSetID string) (*validator.ValidationResult, error) {
	set, err := s.resolveRuleSet(ctx, ruleSetID, "")
	if err != nil {
		return nil, err
	}
	return validator.ValidateCompleteness(record, set), nil
}

func (s *validationService) ValidateBIRCompliance(ctx context.Context, record json.RawMessage, ruleSetID string) (*validator.BIRComplianceResult, error) {
	set, err := s.resolveRuleSet(ctx, ruleSetID, domain.RuleSetKindBIR)
	if err != nil {
		return nil, err
	}
	return validator.ValidateBIR(record, set), nil
}

// ValidateInvoice runs the full pipeline for a stored invoice: fetch OCR
// content, extract fields, run both tiers, persist the status transitions.
// A step whose status is already success is never re-run; re-validation is
// allowed only while a status is pending or failed.
func (s *validationService) ValidateInvoice(ctx context.Context, invoiceID uuid.UUID, standardSetID, birSetID string) (*InvoiceValidationOutcome, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	runStandard := inv.AttachmentValidation.Retryable()
	runBIR := inv.BIRValidation.Retryable()
	if !runStandard && !runBIR {
		return nil, domain.ErrValidationLocked
	}

	standardSet, err := s.resolveRuleSet(ctx, standardSetID, "")
	if err != nil {
		return nil, err
	}
	birSet, err := s.resolveRuleSet(ctx, birSetID, domain.RuleSetKindBIR)
	if err != nil {
		return nil, err
	}

	record, err := s.extractRecord(ctx, inv)
	if err != nil {
		s.markFailure(ctx, inv, runStandard, runBIR, err)
		return nil, err
	}

	inv.ParsedData = record
	applyExtract(inv, record)
	if uerr := s.invoiceRepo.UpdateParsedData(ctx, inv); uerr != nil {
		return nil, fmt.Errorf("storing parsed data: %w", uerr)
	}

	outcome := &InvoiceValidationOutcome{InvoiceID: invoiceID}
	if runStandard {
		result := validator.ValidateCompleteness(record, standardSet)
		outcome.Completeness = result
		status := domain.ValidationStatusFailed
		if result.IsValid {
			status = domain.ValidationStatusSuccess
		}
		if uerr := s.invoiceRepo.UpdateAttachmentValidation(ctx, invoiceID, status, result.Score, firstError(result.Errors)); uerr != nil {
			return nil, fmt.Errorf("updating attachment validation: %w", uerr)
		}
	}
	if runBIR {
		result := validator.ValidateBIR(record, birSet)
		outcome.BIR = result
		status := domain.ValidationStatusFailed
		if result.IsCompliant {
			status = domain.ValidationStatusSuccess
		}
		if uerr := s.invoiceRepo.UpdateBIRValidation(ctx, invoiceID, status, result.Score, firstError(result.Errors)); uerr != nil {
			return nil, fmt.Errorf("updating BIR validation: %w", uerr)
		}
	}

	log.Printf("validationService: invoice %s validated (standard=%v, bir=%v)", invoiceID, runStandard, runBIR)
	return outcome, nil
}

// extractRecord pulls the OCR text for the invoice's source document and
// runs the LLM extraction over it.
func (s *validationService) extractRecord(ctx context.Context, inv *domain.Invoice) (json.RawMessage, error) {
	doc, err := s.docs.GetDocument(ctx, inv.DocumentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("document %s: %w", inv.DocumentID, domain.ErrNoOCRContent)
	}
	record, err := s.extractor.ExtractInvoiceFields(ctx, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return record, nil
}

// markFailure records a collaborator failure on whichever statuses were
// eligible to run, so the board shows the step as failed rather than stuck.
func (s *validationService) markFailure(ctx context.Context, inv *domain.Invoice, runStandard, runBIR bool, cause error) {
	msg := cause.Error()
	if runStandard {
		if err := s.invoiceRepo.UpdateAttachmentValidation(ctx, inv.ID, domain.ValidationStatusFailed, 0, msg); err != nil {
			log.Printf("validationService: recording attachment failure for %s: %v", inv.ID, err)
		}
	}
	if runBIR {
		if err := s.invoiceRepo.UpdateBIRValidation(ctx, inv.ID, domain.ValidationStatusFailed, 0, msg); err != nil {
			log.Printf("validationService: recording BIR failure for %s: %v", inv.ID, err)
		}
	}
}

// applyExtract copies the extraction's headline fields onto the invoice
// columns so downstream lookups (contract validation keys on the invoice
// number) see them. A record that fails the schema gate leaves the columns
// untouched; the tier validators report the violations.
func applyExtract(inv *domain.Invoice, record json.RawMessage) {
	extract, violations := validator.ParseRecord(record, false)
	if len(violations) > 0 || extract == nil {
		return
	}
	if extract.InvoiceNumber != nil {
		inv.InvoiceNumber = *extract.InvoiceNumber
	}
	if extract.InvoiceDate != nil {
		inv.InvoiceDate = *extract.InvoiceDate
	}
	if extract.VendorName != nil {
		inv.VendorName = *extract.VendorName
	}
	if extract.VendorTIN != nil {
		inv.VendorTIN = *extract.VendorTIN
	}
	if extract.TotalAmount != nil {
		inv.TotalAmount = *extract.TotalAmount
	}
	if extract.Currency != nil {
		inv.Currency = *extract.Currency
	}
}

func firstError(errs []validator.ValidationError) string {
	if len(errs) == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s", errs[0].Field, errs[0].Message)
}
