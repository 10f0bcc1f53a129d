package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"birvalid/internal/domain"
	"birvalid/internal/port"
	"birvalid/internal/ruleset"
	"birvalid/internal/service"
	"birvalid/mocks"
)

func validExtraction() json.RawMessage {
	date := time.Now().AddDate(0, -1, 0).Format("2006-01-02")
	return json.RawMessage(fmt.Sprintf(`{
		"invoice_number": "SI-2025-0042",
		"invoice_date": %q,
		"serial_number": "SN-00991",
		"vendor_name": "Mabuhay Office Supplies Inc.",
		"vendor_address": "123 Rizal Ave, Manila",
		"vendor_tin": "123-456-789-000",
		"customer_name": "Bayanihan Trading Corp.",
		"customer_address": "456 Bonifacio St, Quezon City",
		"customer_tin": "987-654-321-000",
		"subtotal": 10000,
		"vatable_sales": 10000,
		"vat_amount": 1200,
		"vat_exempt_sales": 0,
		"zero_rated_sales": 0,
		"total_amount": 11200,
		"currency": "PHP",
		"vat_status": "vatable",
		"vat_classification": "non_vat_registered",
		"exempt_marked": false,
		"signature_present": true,
		"bir_atp": true,
		"document_control_type": "manual",
		"atp_ocn_number": "OCN-556677",
		"ptu_accn_number": null,
		"line_items": [
			{"description": "Bond paper (ream)", "quantity": 20, "unit_cost": 250, "line_total": 5000},
			{"description": "Ink cartridge", "quantity": 10, "unit_cost": 500, "line_total": 5000}
		]
	}`, date))
}

func pendingInvoice() *domain.Invoice {
	return &domain.Invoice{
		ID:                   uuid.New(),
		DocumentID:           "301",
		InvoiceNumber:        "SI-2025-0042",
		AttachmentValidation: domain.ValidationStatusPending,
		BIRValidation:        domain.ValidationStatusPending,
		AmountValidation:     domain.ValidationStatusPending,
		ContractValidation:   domain.ValidationStatusPending,
	}
}

func setupValidationService() (service.ValidationService, *mocks.MockInvoiceRepo, *mocks.MockDocumentSource, *mocks.MockFieldExtractor) {
	invoiceRepo := new(mocks.MockInvoiceRepo)
	docs := new(mocks.MockDocumentSource)
	extractor := new(mocks.MockFieldExtractor)
	svc := service.NewValidationService(invoiceRepo, ruleset.NewRegistry(), docs, extractor)
	return svc, invoiceRepo, docs, extractor
}

func TestValidateCompleteness_AdHocRecord(t *testing.T) {
	svc, _, _, _ := setupValidationService()

	result, err := svc.ValidateCompleteness(context.Background(), validExtraction(), ruleset.SetStandard)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, 100, result.Score)
}

func TestValidateCompleteness_UnknownRuleSet(t *testing.T) {
	svc, _, _, _ := setupValidationService()

	_, err := svc.ValidateCompleteness(context.Background(), validExtraction(), "nope")
	assert.ErrorIs(t, err, domain.ErrRuleSetNotFound)
}

func TestValidateCompleteness_RuleSetRepoFailure(t *testing.T) {
	ruleSets := new(mocks.MockRuleSetRepo)
	svc := service.NewValidationService(new(mocks.MockInvoiceRepo), ruleSets, new(mocks.MockDocumentSource), new(mocks.MockFieldExtractor))

	ruleSets.On("Get", mock.Anything, ruleset.SetStandard).Return(nil, errors.New("rule sets table unavailable"))

	_, err := svc.ValidateCompleteness(context.Background(), validExtraction(), ruleset.SetStandard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule sets table unavailable")
}

func TestValidateCompleteness_InactiveRuleSet(t *testing.T) {
	ruleSets := new(mocks.MockRuleSetRepo)
	svc := service.NewValidationService(new(mocks.MockInvoiceRepo), ruleSets, new(mocks.MockDocumentSource), new(mocks.MockFieldExtractor))

	ruleSets.On("Get", mock.Anything, "retired_set").Return(&domain.RuleSet{ID: "retired_set", IsActive: false}, nil)

	_, err := svc.ValidateCompleteness(context.Background(), validExtraction(), "retired_set")
	assert.ErrorIs(t, err, domain.ErrRuleSetNotFound)
}

func TestValidateBIRCompliance_RejectsStandardSet(t *testing.T) {
	svc, _, _, _ := setupValidationService()

	_, err := svc.ValidateBIRCompliance(context.Background(), validExtraction(), ruleset.SetStandard)
	assert.ErrorIs(t, err, domain.ErrInvalidRuleSet)
}

func TestValidateInvoice_FullPipeline(t *testing.T) {
	svc, invoiceRepo, docs, extractor := setupValidationService()
	ctx := context.Background()
	inv := pendingInvoice()

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	docs.On("GetDocument", ctx, "301").Return(&port.SourceDocument{ID: "301", Title: "scan", Content: "OCR TEXT"}, nil)
	extractor.On("ExtractInvoiceFields", ctx, "OCR TEXT").Return(validExtraction(), nil)
	invoiceRepo.On("UpdateParsedData", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	invoiceRepo.On("UpdateAttachmentValidation", ctx, inv.ID, domain.ValidationStatusSuccess, 100, "").Return(nil)
	invoiceRepo.On("UpdateBIRValidation", ctx, inv.ID, domain.ValidationStatusSuccess, 100, "").Return(nil)

	outcome, err := svc.ValidateInvoice(ctx, inv.ID, ruleset.SetStandard, ruleset.SetBIRStandard)
	require.NoError(t, err)
	require.NotNil(t, outcome.Completeness)
	require.NotNil(t, outcome.BIR)
	assert.True(t, outcome.Completeness.IsValid)
	assert.True(t, outcome.BIR.IsCompliant)

	invoiceRepo.AssertExpectations(t)
	docs.AssertExpectations(t)
	extractor.AssertExpectations(t)
}

func TestValidateInvoice_CopiesExtractedFieldsOntoInvoice(t *testing.T) {
	svc, invoiceRepo, docs, extractor := setupValidationService()
	ctx := context.Background()

	// Registration-shaped invoice: only the document id is known up front.
	inv := &domain.Invoice{
		ID:                   uuid.New(),
		DocumentID:           "301",
		AttachmentValidation: domain.ValidationStatusPending,
		BIRValidation:        domain.ValidationStatusPending,
		AmountValidation:     domain.ValidationStatusPending,
		ContractValidation:   domain.ValidationStatusPending,
	}

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	docs.On("GetDocument", ctx, "301").Return(&port.SourceDocument{ID: "301", Content: "OCR TEXT"}, nil)
	extractor.On("ExtractInvoiceFields", ctx, "OCR TEXT").Return(validExtraction(), nil)

	var persisted domain.Invoice
	invoiceRepo.On("UpdateParsedData", ctx, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) {
			persisted = *args.Get(1).(*domain.Invoice)
		}).Return(nil)
	invoiceRepo.On("UpdateAttachmentValidation", ctx, inv.ID, domain.ValidationStatusSuccess, 100, "").Return(nil)
	invoiceRepo.On("UpdateBIRValidation", ctx, inv.ID, domain.ValidationStatusSuccess, 100, "").Return(nil)

	_, err := svc.ValidateInvoice(ctx, inv.ID, ruleset.SetStandard, ruleset.SetBIRStandard)
	require.NoError(t, err)

	assert.Equal(t, "SI-2025-0042", persisted.InvoiceNumber)
	assert.Equal(t, "Mabuhay Office Supplies Inc.", persisted.VendorName)
	assert.Equal(t, "123-456-789-000", persisted.VendorTIN)
	assert.Equal(t, 11200.0, persisted.TotalAmount)
	assert.Equal(t, "PHP", persisted.Currency)
	assert.NotEmpty(t, persisted.InvoiceDate)
	invoiceRepo.AssertExpectations(t)
}

func TestValidateInvoice_SchemaViolationLeavesColumnsUntouched(t *testing.T) {
	svc, invoiceRepo, docs, extractor := setupValidationService()
	ctx := context.Background()
	inv := pendingInvoice()
	inv.InvoiceNumber = ""

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	docs.On("GetDocument", ctx, "301").Return(&port.SourceDocument{ID: "301", Content: "OCR TEXT"}, nil)
	extractor.On("ExtractInvoiceFields", ctx, "OCR TEXT").Return(json.RawMessage(`{"total_amount": "lots"}`), nil)
	invoiceRepo.On("UpdateParsedData", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	invoiceRepo.On("UpdateAttachmentValidation", ctx, inv.ID, domain.ValidationStatusFailed, 0, mock.AnythingOfType("string")).Return(nil)
	invoiceRepo.On("UpdateBIRValidation", ctx, inv.ID, domain.ValidationStatusFailed, 0, mock.AnythingOfType("string")).Return(nil)

	_, err := svc.ValidateInvoice(ctx, inv.ID, ruleset.SetStandard, ruleset.SetBIRStandard)
	require.NoError(t, err)
	assert.Empty(t, inv.InvoiceNumber, "malformed extraction must not write columns")
	assert.Zero(t, inv.TotalAmount)
}

func TestValidateInvoice_SkipsSucceededTier(t *testing.T) {
	svc, invoiceRepo, docs, extractor := setupValidationService()
	ctx := context.Background()
	inv := pendingInvoice()
	inv.AttachmentValidation = domain.ValidationStatusSuccess

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	docs.On("GetDocument", ctx, "301").Return(&port.SourceDocument{ID: "301", Content: "OCR TEXT"}, nil)
	extractor.On("ExtractInvoiceFields", ctx, "OCR TEXT").Return(validExtraction(), nil)
	invoiceRepo.On("UpdateParsedData", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	invoiceRepo.On("UpdateBIRValidation", ctx, inv.ID, domain.ValidationStatusSuccess, 100, "").Return(nil)

	outcome, err := svc.ValidateInvoice(ctx, inv.ID, ruleset.SetStandard, ruleset.SetBIRStandard)
	require.NoError(t, err)
	assert.Nil(t, outcome.Completeness, "succeeded tier is not re-run")
	require.NotNil(t, outcome.BIR)

	invoiceRepo.AssertNotCalled(t, "UpdateAttachmentValidation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateInvoice_BothSucceededIsLocked(t *testing.T) {
	svc, invoiceRepo, _, _ := setupValidationService()
	ctx := context.Background()
	inv := pendingInvoice()
	inv.AttachmentValidation = domain.ValidationStatusSuccess
	inv.BIRValidation = domain.ValidationStatusSuccess

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)

	_, err := svc.ValidateInvoice(ctx, inv.ID, ruleset.SetStandard, ruleset.SetBIRStandard)
	assert.ErrorIs(t, err, domain.ErrValidationLocked)
}

func TestValidateInvoice_FailedTierIsRetryable(t *testing.T) {
	svc, invoiceRepo, docs, extractor := setupValidationService()
	ctx := context.Background()
	inv := pendingInvoice()
	inv.AttachmentValidation = domain.ValidationStatusFailed
	inv.BIRValidation = domain.ValidationStatusSuccess

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	docs.On("GetDocument", ctx, "301").Return(&port.SourceDocument{ID: "301", Content: "OCR TEXT"}, nil)
	extractor.On("ExtractInvoiceFields", ctx, "OCR TEXT").Return(validExtraction(), nil)
	invoiceRepo.On("UpdateParsedData", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	invoiceRepo.On("UpdateAttachmentValidation", ctx, inv.ID, domain.ValidationStatusSuccess, 100, "").Return(nil)

	outcome, err := svc.ValidateInvoice(ctx, inv.ID, ruleset.SetStandard, ruleset.SetBIRStandard)
	require.NoError(t, err)
	require.NotNil(t, outcome.Completeness)
	assert.Nil(t, outcome.BIR)
}

func TestValidateInvoice_NoOCRContent(t *testing.T) {
	svc, invoiceRepo, docs, _ := setupValidationService()
	ctx := context.Background()
	inv := pendingInvoice()

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	docs.On("GetDocument", ctx, "301").Return(&port.SourceDocument{ID: "301", Content: "   "}, nil)
	invoiceRepo.On("UpdateAttachmentValidation", ctx, inv.ID, domain.ValidationStatusFailed, 0, mock.AnythingOfType("string")).Return(nil)
	invoiceRepo.On("UpdateBIRValidation", ctx, inv.ID, domain.ValidationStatusFailed, 0, mock.AnythingOfType("string")).Return(nil)

	_, err := svc.ValidateInvoice(ctx, inv.ID, ruleset.SetStandard, ruleset.SetBIRStandard)
	assert.ErrorIs(t, err, domain.ErrNoOCRContent)
	invoiceRepo.AssertExpectations(t)
}

func TestValidateInvoice_ExtractionFailure(t *testing.T) {
	svc, invoiceRepo, docs, extractor := setupValidationService()
	ctx := context.Background()
	inv := pendingInvoice()

	invoiceRepo.On("GetByID", ctx, inv.ID).Return(inv, nil)
	docs.On("GetDocument", ctx, "301").Return(&port.SourceDocument{ID: "301", Content: "OCR TEXT"}, nil)
	extractor.On("ExtractInvoiceFields", ctx, "OCR TEXT").Return(nil, errors.New("model unavailable"))
	invoiceRepo.On("UpdateAttachmentValidation", ctx, inv.ID, domain.ValidationStatusFailed, 0, mock.AnythingOfType("string")).Return(nil)
	invoiceRepo.On("UpdateBIRValidation", ctx, inv.ID, domain.ValidationStatusFailed, 0, mock.AnythingOfType("string")).Return(nil)

	_, err := svc.ValidateInvoice(ctx, inv.ID, ruleset.SetStandard, ruleset.SetBIRStandard)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
