package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"birvalid/internal/domain"
)

// MockContractValidator is a mock implementation of port.ContractValidator.
type MockContractValidator struct {
	mock.Mock
}

func (m *MockContractValidator) ValidateContract(ctx context.Context, invoiceNumber string) (*domain.RAGValidation, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RAGValidation), args.Error(1)
}
