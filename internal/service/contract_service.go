package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"birvalid/internal/domain"
	"birvalid/internal/port"
)

// ContractService merges the RAG contract-validation verdict into an
// invoice's parsed data and derives the amount-validation status from it.
type ContractService interface {
	ValidateContract(ctx context.Context, invoiceID uuid.UUID) (*domain.RAGValidation, error)
}

type contractService struct {
	invoiceRepo port.InvoiceRepository
	rag         port.ContractValidator
}

// NewContractService creates a ContractService implementation.
func NewContractService(invoiceRepo port.InvoiceRepository, rag port.ContractValidator) ContractService {
	return &contractService{invoiceRepo: invoiceRepo, rag: rag}
}

// ValidateContract fetches the RAG verdict for the invoice's number, stores
// it as the typed rag_validation sub-structure under parsed_data, and sets
// the amount and contract statuses. Amount validation succeeds only when
// the verdict is APPROVED and contract-compliant.
func (s *contractService) ValidateContract(ctx context.Context, invoiceID uuid.UUID) (*domain.RAGValidation, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.AmountValidation.Retryable() {
		return nil, domain.ErrValidationLocked
	}
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		s.markFailed(ctx, invoiceID)
		return nil, fmt.Errorf("invoice %s has no invoice number for contract lookup: %w", invoiceID, domain.ErrInvalidStructuredData)
	}

	verdict, err := s.rag.ValidateContract(ctx, inv.InvoiceNumber)
	if err != nil {
		s.markFailed(ctx, invoiceID)
		return nil, fmt.Errorf("contract validation for invoice %s: %w", invoiceID, err)
	}
	verdict.SchemaVersion = domain.RAGSchemaVersion
	verdict.ValidatedAt = time.Now().UTC()

	if err := s.mergeVerdict(ctx, inv, verdict); err != nil {
		return nil, err
	}

	amountStatus := domain.ValidationStatusFailed
	contractStatus := domain.ValidationStatusFailed
	if verdict.ContractCompliant {
		contractStatus = domain.ValidationStatusSuccess
	}
	if verdict.OverallAmountValidation == "APPROVED" && verdict.ContractCompliant {
		amountStatus = domain.ValidationStatusSuccess
	}
	if err := s.invoiceRepo.UpdateAmountValidation(ctx, invoiceID, amountStatus, contractStatus); err != nil {
		return nil, fmt.Errorf("updating amount validation: %w", err)
	}

	log.Printf("contractService: invoice %s amount=%s contract=%s", invoiceID, amountStatus, contractStatus)
	return verdict, nil
}

// mergeVerdict writes the verdict under parsed_data.rag_validation without
// disturbing the rest of the extraction blob.
func (s *contractService) mergeVerdict(ctx context.Context, inv *domain.Invoice, verdict *domain.RAGValidation) error {
	parsed := map[string]json.RawMessage{}
	if len(inv.ParsedData) > 0 {
		if err := json.Unmarshal(inv.ParsedData, &parsed); err != nil {
			return fmt.Errorf("decoding parsed data for invoice %s: %w", inv.ID, err)
		}
	}
	encoded, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("encoding rag verdict: %w", err)
	}
	parsed["rag_validation"] = encoded
	merged, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("encoding parsed data: %w", err)
	}
	inv.ParsedData = merged
	return s.invoiceRepo.UpdateParsedData(ctx, inv)
}

func (s *contractService) markFailed(ctx context.Context, invoiceID uuid.UUID) {
	if err := s.invoiceRepo.UpdateAmountValidation(ctx, invoiceID, domain.ValidationStatusFailed, domain.ValidationStatusFailed); err != nil {
		log.Printf("contractService: recording failure for %s: %v", invoiceID, err)
	}
}
