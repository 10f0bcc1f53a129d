package port

import (
	"context"

	"birvalid/internal/domain"
)

// ContractValidator abstracts the RAG contract-validation service, which
// checks invoice amounts against the vendor's contract and returns a fixed
// verdict shape.
type ContractValidator interface {
	ValidateContract(ctx context.Context, invoiceNumber string) (*domain.RAGValidation, error)
}
