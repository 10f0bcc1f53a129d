package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"birvalid/internal/domain"
	"birvalid/internal/report"
	"birvalid/internal/service"
)

func TestWriteXLSX(t *testing.T) {
	started := time.Now().Add(-2 * time.Second)
	batch := &service.BatchResult{
		BatchID:   uuid.New(),
		Mode:      domain.BatchModeBIR,
		RuleSetID: "bir_standard",
		Total:     3,
		Passed:    1,
		Failed:    1,
		Errored:   1,
		PassRate:  33.33,
		TotalMs:   857,
		AverageMs: 285,
		CommonIssues: []service.IssueCount{
			{Field: "invoice_number", Count: 2},
			{Field: "vendor_tin", Count: 1},
		},
		Results:    sampleResults(),
		StartedAt:  started,
		FinishedAt: started.Add(857 * time.Millisecond),
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, batch))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Summary", "Results"}, f.GetSheetList())

	label, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Batch ID", label)
	id, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, batch.BatchID.String(), id)

	mode, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "bir", mode)
	total, err := f.GetCellValue("Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "3", total)

	// Common issues start two rows below the aggregates.
	issueHeader, err := f.GetCellValue("Summary", "A14")
	require.NoError(t, err)
	assert.Equal(t, "Common Issue Field", issueHeader)
	topIssue, err := f.GetCellValue("Summary", "A15")
	require.NoError(t, err)
	assert.Equal(t, "invoice_number", topIssue)

	header, err := f.GetCellValue("Results", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Document ID", header)
	outcome, err := f.GetCellValue("Results", "B3")
	require.NoError(t, err)
	assert.Equal(t, "FAILED", outcome)
	score, err := f.GetCellValue("Results", "C3")
	require.NoError(t, err)
	assert.Equal(t, "40", score)
	failure, err := f.GetCellValue("Results", "F4")
	require.NoError(t, err)
	assert.Equal(t, "paperless unreachable", failure)
}
