package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"birvalid/internal/domain"
	"birvalid/internal/ruleset"
	"birvalid/internal/service"
)

// ValidationHandler handles ad-hoc record validation endpoints.
type ValidationHandler struct {
	validationService service.ValidationService
}

// NewValidationHandler creates a new ValidationHandler.
func NewValidationHandler(validationService service.ValidationService) *ValidationHandler {
	return &ValidationHandler{validationService: validationService}
}

// ValidateCompleteness handles POST /api/v1/validate/completeness
// @Summary Validate record completeness
// @Description Run an extracted invoice record through a standard rule set
// @Tags validation
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse "Validation result"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 404 {object} APIResponse "Rule set not found"
// @Router /validate/completeness [post]
func (h *ValidationHandler) ValidateCompleteness(c *gin.Context) {
	var req struct {
		Record    json.RawMessage `json:"record" binding:"required"`
		RuleSetID string          `json:"rule_set_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "record is required")
		return
	}
	if req.RuleSetID == "" {
		req.RuleSetID = ruleset.SetStandard
	}

	result, err := h.validationService.ValidateCompleteness(c.Request.Context(), req.Record, req.RuleSetID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// ValidateBIR handles POST /api/v1/validate/bir
// @Summary Validate BIR compliance
// @Description Run an extracted invoice record through a weighted BIR rule set
// @Tags validation
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse "Compliance result"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 404 {object} APIResponse "Rule set not found"
// @Router /validate/bir [post]
func (h *ValidationHandler) ValidateBIR(c *gin.Context) {
	var req struct {
		Record    json.RawMessage `json:"record" binding:"required"`
		RuleSetID string          `json:"rule_set_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "record is required")
		return
	}
	if req.RuleSetID == "" {
		req.RuleSetID = ruleset.SetBIRStandard
	}

	result, err := h.validationService.ValidateBIRCompliance(c.Request.Context(), req.Record, req.RuleSetID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// batchRequest is the shared request body for batch runs and exports.
type batchRequest struct {
	DocumentIDs []string         `json:"document_ids" binding:"required"`
	RuleSetID   string           `json:"rule_set_id"`
	Mode        domain.BatchMode `json:"mode"`
}

func (r *batchRequest) normalize() (string, domain.BatchMode, bool) {
	mode := r.Mode
	if mode == "" {
		mode = domain.BatchModeStandard
	}
	if mode != domain.BatchModeStandard && mode != domain.BatchModeBIR {
		return "", "", false
	}
	setID := r.RuleSetID
	if setID == "" {
		if mode == domain.BatchModeBIR {
			setID = ruleset.SetBIRStandard
		} else {
			setID = ruleset.SetStandard
		}
	}
	return setID, mode, true
}

// BatchHandler handles batch validation endpoints.
type BatchHandler struct {
	batchService service.BatchService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchService service.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

// Run handles POST /api/v1/validate/batch
// @Summary Run a batch validation
// @Description Validate a list of stored documents against one rule set
// @Tags validation
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse "Batch result"
// @Failure 400 {object} APIResponse "Invalid request or empty batch"
// @Failure 413 {object} APIResponse "Batch exceeds size cap"
// @Router /validate/batch [post]
func (h *BatchHandler) Run(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document_ids is required")
		return
	}
	setID, mode, ok := req.normalize()
	if !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "mode must be 'standard' or 'bir'")
		return
	}

	result, err := h.batchService.RunBatch(c.Request.Context(), req.DocumentIDs, setID, mode)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}
