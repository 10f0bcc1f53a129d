package port

import (
	"context"

	"github.com/google/uuid"

	"birvalid/internal/domain"
)

// InvoiceRepository defines the contract for invoice persistence. Status
// fields are mutated only through the explicit update methods after a
// validation step completes.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByDocumentID(ctx context.Context, documentID string) (*domain.Invoice, error)
	List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)
	UpdateParsedData(ctx context.Context, inv *domain.Invoice) error
	// UpdateAttachmentValidation and UpdateBIRValidation refuse to overwrite
	// a success status; callers check Retryable() first, the repository
	// enforces it again in the WHERE clause.
	UpdateAttachmentValidation(ctx context.Context, id uuid.UUID, status domain.ValidationStatus, score int, lastError string) error
	UpdateBIRValidation(ctx context.Context, id uuid.UUID, status domain.ValidationStatus, score int, lastError string) error
	UpdateAmountValidation(ctx context.Context, id uuid.UUID, amountStatus, contractStatus domain.ValidationStatus) error
}

// RuleSetRepository defines the contract for rule set storage. Get resolves
// by slug id; List returns active sets only; SoftDelete flips is_active and
// keeps the record.
type RuleSetRepository interface {
	Get(ctx context.Context, id string) (*domain.RuleSet, error)
	List(ctx context.Context) ([]domain.RuleSet, error)
	Create(ctx context.Context, set *domain.RuleSet) error
	Update(ctx context.Context, set *domain.RuleSet) error
	SoftDelete(ctx context.Context, id string) (bool, error)
}
