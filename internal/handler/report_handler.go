package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"birvalid/internal/report"
	"birvalid/internal/service"
)

// ReportHandler runs a batch and streams the result as a downloadable file.
type ReportHandler struct {
	batchService service.BatchService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(batchService service.BatchService) *ReportHandler {
	return &ReportHandler{batchService: batchService}
}

// Export handles POST /api/v1/validate/batch/export
// @Summary Run a batch validation and download the report
// @Description Same body as /validate/batch; format query selects csv or xlsx
// @Tags validation
// @Accept json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Report format: csv (default) or xlsx"
// @Success 200 {file} file "Batch report"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 413 {object} APIResponse "Batch exceeds size cap"
// @Router /validate/batch/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
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

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be 'csv' or 'xlsx'")
		return
	}

	result, err := h.batchService.RunBatch(c.Request.Context(), req.DocumentIDs, setID, mode)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("batch_%s_%s.%s", mode, time.Now().UTC().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == "xlsx" {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := report.WriteXLSX(c.Writer, result); err != nil {
			_ = c.Error(err)
		}
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	// BOM keeps Excel happy with UTF-8 content.
	_, _ = c.Writer.Write(report.BOM)
	w := report.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		_ = c.Error(err)
		return
	}
	if err := w.WriteResults(result.Results); err != nil {
		_ = c.Error(err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}
