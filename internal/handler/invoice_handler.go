package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"birvalid/internal/domain"
	"birvalid/internal/port"
	"birvalid/internal/ruleset"
	"birvalid/internal/service"
)

// InvoiceHandler handles stored-invoice endpoints.
type InvoiceHandler struct {
	invoiceRepo       port.InvoiceRepository
	validationService service.ValidationService
	contractService   service.ContractService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceRepo port.InvoiceRepository, validationService service.ValidationService, contractService service.ContractService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceRepo:       invoiceRepo,
		validationService: validationService,
		contractService:   contractService,
	}
}

// Create handles POST /api/v1/invoices
// @Summary Register an invoice for a source document
// @Description Tracks a Paperless document through the validation pipeline.
// @Description All validation statuses start as pending
// @Tags invoices
// @Accept json
// @Produce json
// @Success 201 {object} APIResponse "Registered invoice"
// @Failure 409 {object} APIResponse "Document already registered"
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req struct {
		DocumentID string `json:"document_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document_id is required")
		return
	}

	inv := &domain.Invoice{
		DocumentID:           req.DocumentID,
		Currency:             "PHP",
		AttachmentValidation: domain.ValidationStatusPending,
		BIRValidation:        domain.ValidationStatusPending,
		AmountValidation:     domain.ValidationStatusPending,
		ContractValidation:   domain.ValidationStatusPending,
	}
	if err := h.invoiceRepo.Create(c.Request.Context(), inv); err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, inv)
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param offset query int false "Pagination offset"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} APIResponse "Invoices with pagination metadata"
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	invoices, total, err := h.invoiceRepo.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get an invoice by ID
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse "Invoice"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	inv, err := h.invoiceRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, inv)
}

// Validate handles POST /api/v1/invoices/:id/validate
// @Summary Run the validation pipeline for a stored invoice
// @Description Fetches OCR content, extracts fields, runs completeness and
// @Description BIR compliance, and persists the resulting statuses
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse "Validation outcome per tier"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Failure 409 {object} APIResponse "Validation already succeeded"
// @Failure 422 {object} APIResponse "Document has no OCR content"
// @Router /invoices/{id}/validate [post]
func (h *InvoiceHandler) Validate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var req struct {
		StandardRuleSetID string `json:"standard_rule_set_id"`
		BIRRuleSetID      string `json:"bir_rule_set_id"`
	}
	// Body is optional; defaults cover the common case.
	_ = c.ShouldBindJSON(&req)
	if req.StandardRuleSetID == "" {
		req.StandardRuleSetID = ruleset.SetStandard
	}
	if req.BIRRuleSetID == "" {
		req.BIRRuleSetID = ruleset.SetBIRStandard
	}

	outcome, err := h.validationService.ValidateInvoice(c.Request.Context(), id, req.StandardRuleSetID, req.BIRRuleSetID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, outcome)
}

// ValidateContract handles POST /api/v1/invoices/:id/validate-contract
// @Summary Validate invoice amounts against contract terms
// @Description Asks the contract validation service for a verdict and merges
// @Description it into the invoice's parsed data
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse "Contract validation verdict"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Failure 409 {object} APIResponse "Amount validation already succeeded"
// @Router /invoices/{id}/validate-contract [post]
func (h *InvoiceHandler) ValidateContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	verdict, err := h.contractService.ValidateContract(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, verdict)
}
