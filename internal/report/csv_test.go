package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birvalid/internal/domain"
	"birvalid/internal/report"
	"birvalid/internal/service"
)

func sampleResults() []service.DocumentResult {
	return []service.DocumentResult{
		{
			DocumentID: "301",
			Outcome:    domain.BatchOutcomePassed,
			Score:      100,
			DurationMs: 412,
		},
		{
			DocumentID:  "302",
			Outcome:     domain.BatchOutcomeFailed,
			Score:       40,
			ErrorCount:  2,
			ErrorFields: []string{"invoice_number", "vendor_tin"},
			DurationMs:  390,
		},
		{
			DocumentID: "303",
			Outcome:    domain.BatchOutcomeError,
			Failure:    "paperless unreachable",
			DurationMs: 55,
		},
	}
}

func TestWriter_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteResults(sampleResults()))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Document ID", "Outcome", "Score", "Error Count", "Error Fields", "Failure", "Duration (ms)"}, rows[0])
	assert.Equal(t, []string{"301", "PASSED", "100", "0", "", "", "412"}, rows[1])
	assert.Equal(t, []string{"302", "FAILED", "40", "2", "invoice_number; vendor_tin", "", "390"}, rows[2])
	assert.Equal(t, []string{"303", "ERROR", "0", "0", "", "paperless unreachable", "55"}, rows[3])
}

func TestWriter_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteResults(nil))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBOM(t *testing.T) {
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, report.BOM)
}
