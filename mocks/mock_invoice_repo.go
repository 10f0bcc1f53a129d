package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"birvalid/internal/domain"
)

// MockInvoiceRepo is a mock implementation of port.InvoiceRepository.
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) GetByDocumentID(ctx context.Context, documentID string) (*domain.Invoice, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceRepo) UpdateParsedData(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepo) UpdateAttachmentValidation(ctx context.Context, id uuid.UUID, status domain.ValidationStatus, score int, lastError string) error {
	args := m.Called(ctx, id, status, score, lastError)
	return args.Error(0)
}

func (m *MockInvoiceRepo) UpdateBIRValidation(ctx context.Context, id uuid.UUID, status domain.ValidationStatus, score int, lastError string) error {
	args := m.Called(ctx, id, status, score, lastError)
	return args.Error(0)
}

func (m *MockInvoiceRepo) UpdateAmountValidation(ctx context.Context, id uuid.UUID, amountStatus, contractStatus domain.ValidationStatus) error {
	args := m.Called(ctx, id, amountStatus, contractStatus)
	return args.Error(0)
}
