package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"birvalid/internal/domain"
	"birvalid/internal/service"
	"birvalid/mocks"
)

func setupContractService() (service.ContractService, *mocks.MockInvoiceRepo, *mocks.MockContractValidator) {
	invoiceRepo := new(mocks.MockInvoiceRepo)
	rag := new(mocks.MockContractValidator)
	svc := service.NewContractService(invoiceRepo, rag)
	return svc, invoiceRepo, rag
}

func TestValidateContract_ApprovedAndCompliant(t *testing.T) {
	svc, invoiceRepo, rag := setupContractService()
	ctx := context.Background()
	inv := pendingInvoice()
	inv.ParsedData = json.RawMessage(`{"invoice_number":"SI-2025-0042","total_amount":11200}`)

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	rag.On("ValidateContract", ctx, "SI-2025-0042").Return(&domain.RAGValidation{
		OverallAmountValidation: "APPROVED",
		ContractCompliant:       true,
		Remarks:                 "within contracted rates",
	}, nil)
	invoiceRepo.On("UpdateParsedData", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	invoiceRepo.On("UpdateAmountValidation", ctx, inv.ID, domain.ValidationStatusSuccess, domain.ValidationStatusSuccess).Return(nil)

	verdict, err := svc.ValidateContract(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RAGSchemaVersion, verdict.SchemaVersion)
	assert.False(t, verdict.ValidatedAt.IsZero())

	// The verdict lands under parsed_data.rag_validation; the original
	// extraction fields survive the merge.
	var parsed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(inv.ParsedData, &parsed))
	assert.Contains(t, parsed, "invoice_number")
	assert.Contains(t, parsed, "total_amount")
	var stored domain.RAGValidation
	require.NoError(t, json.Unmarshal(parsed["rag_validation"], &stored))
	assert.Equal(t, "APPROVED", stored.OverallAmountValidation)
	assert.True(t, stored.ContractCompliant)
	assert.Equal(t, domain.RAGSchemaVersion, stored.SchemaVersion)

	invoiceRepo.AssertExpectations(t)
	rag.AssertExpectations(t)
}

func TestValidateContract_RejectedAmounts(t *testing.T) {
	svc, invoiceRepo, rag := setupContractService()
	ctx := context.Background()
	inv := pendingInvoice()

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	rag.On("ValidateContract", ctx, "SI-2025-0042").Return(&domain.RAGValidation{
		OverallAmountValidation: "REJECTED",
		ContractCompliant:       true,
	}, nil)
	invoiceRepo.On("UpdateParsedData", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	invoiceRepo.On("UpdateAmountValidation", ctx, inv.ID, domain.ValidationStatusFailed, domain.ValidationStatusSuccess).Return(nil)

	_, err := svc.ValidateContract(ctx, inv.ID)
	require.NoError(t, err)
	invoiceRepo.AssertExpectations(t)
}

func TestValidateContract_NonCompliantFailsBoth(t *testing.T) {
	svc, invoiceRepo, rag := setupContractService()
	ctx := context.Background()
	inv := pendingInvoice()

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	rag.On("ValidateContract", ctx, "SI-2025-0042").Return(&domain.RAGValidation{
		OverallAmountValidation: "APPROVED",
		ContractCompliant:       false,
	}, nil)
	invoiceRepo.On("UpdateParsedData", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	invoiceRepo.On("UpdateAmountValidation", ctx, inv.ID, domain.ValidationStatusFailed, domain.ValidationStatusFailed).Return(nil)

	_, err := svc.ValidateContract(ctx, inv.ID)
	require.NoError(t, err)
	invoiceRepo.AssertExpectations(t)
}

func TestValidateContract_LockedAfterSuccess(t *testing.T) {
	svc, invoiceRepo, rag := setupContractService()
	ctx := context.Background()
	inv := pendingInvoice()
	inv.AmountValidation = domain.ValidationStatusSuccess

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)

	_, err := svc.ValidateContract(ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrValidationLocked)
	rag.AssertNotCalled(t, "ValidateContract", mock.Anything, mock.Anything)
}

func TestValidateContract_MissingInvoiceNumber(t *testing.T) {
	svc, invoiceRepo, rag := setupContractService()
	ctx := context.Background()
	inv := pendingInvoice()
	inv.InvoiceNumber = "  "

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	invoiceRepo.On("UpdateAmountValidation", ctx, inv.ID, domain.ValidationStatusFailed, domain.ValidationStatusFailed).Return(nil)

	_, err := svc.ValidateContract(ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStructuredData)
	rag.AssertNotCalled(t, "ValidateContract", mock.Anything, mock.Anything)
	invoiceRepo.AssertExpectations(t)
}

func TestValidateContract_RAGFailureMarksFailed(t *testing.T) {
	svc, invoiceRepo, rag := setupContractService()
	ctx := context.Background()
	inv := pendingInvoice()

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	rag.On("ValidateContract", ctx, "SI-2025-0042").Return(nil, errors.New("rag service timeout"))
	invoiceRepo.On("UpdateAmountValidation", ctx, inv.ID, domain.ValidationStatusFailed, domain.ValidationStatusFailed).Return(nil)

	_, err := svc.ValidateContract(ctx, inv.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rag service timeout")
	invoiceRepo.AssertExpectations(t)
}

func TestValidateContract_FailedStatusIsRetryable(t *testing.T) {
	svc, invoiceRepo, rag := setupContractService()
	ctx := context.Background()
	inv := pendingInvoice()
	inv.AmountValidation = domain.ValidationStatusFailed

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	rag.On("ValidateContract", ctx, "SI-2025-0042").Return(&domain.RAGValidation{
		OverallAmountValidation: "APPROVED",
		ContractCompliant:       true,
	}, nil)
	invoiceRepo.On("UpdateParsedData", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	invoiceRepo.On("UpdateAmountValidation", ctx, inv.ID, domain.ValidationStatusSuccess, domain.ValidationStatusSuccess).Return(nil)

	_, err := svc.ValidateContract(ctx, inv.ID)
	require.NoError(t, err)
	invoiceRepo.AssertExpectations(t)
}
