package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"birvalid/internal/domain"
	"birvalid/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}

	query := `INSERT INTO invoices (
		id, document_id, invoice_number, invoice_date,
		vendor_name, vendor_tin, total_amount, currency, parsed_data,
		attachment_validation_status, bir_validation_status,
		amount_validation_status, contract_validation_status,
		attachment_score, bir_score, last_validation_error,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9,
		$10, $11,
		$12, $13,
		$14, $15, $16,
		$17, $18
	)`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.DocumentID, inv.InvoiceNumber, inv.InvoiceDate,
		inv.VendorName, inv.VendorTIN, inv.TotalAmount, inv.Currency, inv.ParsedData,
		inv.AttachmentValidation, inv.BIRValidation,
		inv.AmountValidation, inv.ContractValidation,
		inv.AttachmentScore, inv.BIRScore, inv.LastValidationError,
		inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrInvoiceExists
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByDocumentID(ctx context.Context, documentID string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv,
		"SELECT * FROM invoices WHERE document_id = $1", documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByDocumentID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices")
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	var invoices []domain.Invoice
	err = r.db.SelectContext(ctx, &invoices,
		"SELECT * FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) UpdateParsedData(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			parsed_data = $1, invoice_number = $2, invoice_date = $3,
			vendor_name = $4, vendor_tin = $5, total_amount = $6, currency = $7,
			updated_at = $8
		 WHERE id = $9`,
		inv.ParsedData, inv.InvoiceNumber, inv.InvoiceDate,
		inv.VendorName, inv.VendorTIN, inv.TotalAmount, inv.Currency,
		inv.UpdatedAt, inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateParsedData: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// UpdateAttachmentValidation persists a completeness validation outcome. The
// WHERE clause re-checks that the previous status was retryable so a
// concurrent success is never overwritten.
func (r *invoiceRepo) UpdateAttachmentValidation(ctx context.Context, id uuid.UUID, status domain.ValidationStatus, score int, lastError string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			attachment_validation_status = $1, attachment_score = $2,
			last_validation_error = $3, updated_at = $4
		 WHERE id = $5 AND attachment_validation_status IN ('pending', 'failed')`,
		status, score, lastError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateAttachmentValidation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrValidationLocked
	}
	return nil
}

// UpdateBIRValidation persists a BIR compliance outcome under the same
// retryable-status guard as UpdateAttachmentValidation.
func (r *invoiceRepo) UpdateBIRValidation(ctx context.Context, id uuid.UUID, status domain.ValidationStatus, score int, lastError string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			bir_validation_status = $1, bir_score = $2,
			last_validation_error = $3, updated_at = $4
		 WHERE id = $5 AND bir_validation_status IN ('pending', 'failed')`,
		status, score, lastError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateBIRValidation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrValidationLocked
	}
	return nil
}

func (r *invoiceRepo) UpdateAmountValidation(ctx context.Context, id uuid.UUID, amountStatus, contractStatus domain.ValidationStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			amount_validation_status = $1, contract_validation_status = $2,
			updated_at = $3
		 WHERE id = $4 AND amount_validation_status IN ('pending', 'failed')`,
		amountStatus, contractStatus, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateAmountValidation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrValidationLocked
	}
	return nil
}
