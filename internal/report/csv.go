package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"birvalid/internal/service"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row for batch reports.
var columns = []string{
	"Document ID",
	"Outcome",
	"Score",
	"Error Count",
	"Error Fields",
	"Failure",
	"Duration (ms)",
}

// Writer wraps csv.Writer for exporting batch results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResults converts a batch's per-document results to CSV rows and
// writes them.
func (w *Writer) WriteResults(results []service.DocumentResult) error {
	for i := range results {
		if err := w.csv.Write(resultToRow(&results[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from previous writes or the last Flush.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func resultToRow(res *service.DocumentResult) []string {
	return []string{
		res.DocumentID,
		string(res.Outcome),
		strconv.Itoa(res.Score),
		strconv.Itoa(res.ErrorCount),
		strings.Join(res.ErrorFields, "; "),
		res.Failure,
		strconv.FormatInt(res.DurationMs, 10),
	}
}
