package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"birvalid/internal/service"
)

const (
	summarySheet = "Summary"
	resultsSheet = "Results"
)

// WriteXLSX renders a batch result as a two-sheet workbook: a summary sheet
// with the aggregate figures and common issues, and a per-document results
// sheet.
func WriteXLSX(w io.Writer, batch *service.BatchResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName(f.GetSheetName(0), summarySheet)
	if err := writeSummary(f, batch); err != nil {
		return err
	}

	if _, err := f.NewSheet(resultsSheet); err != nil {
		return fmt.Errorf("report: create results sheet: %w", err)
	}
	if err := writeResults(f, batch.Results); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, batch *service.BatchResult) error {
	rows := [][]any{
		{"Batch ID", batch.BatchID.String()},
		{"Mode", string(batch.Mode)},
		{"Rule Set", batch.RuleSetID},
		{"Total Documents", batch.Total},
		{"Passed", batch.Passed},
		{"Failed", batch.Failed},
		{"Errored", batch.Errored},
		{"Pass Rate (%)", batch.PassRate},
		{"Total Duration (ms)", batch.TotalMs},
		{"Average Duration (ms)", batch.AverageMs},
		{"Started At", batch.StartedAt.Format(time.RFC3339)},
		{"Finished At", batch.FinishedAt.Format(time.RFC3339)},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("report: summary row %d: %w", i+1, err)
		}
	}

	next := len(rows) + 2
	header := []any{"Common Issue Field", "Count"}
	cell, _ := excelize.CoordinatesToCellName(1, next)
	if err := f.SetSheetRow(summarySheet, cell, &header); err != nil {
		return fmt.Errorf("report: issues header: %w", err)
	}
	for i, issue := range batch.CommonIssues {
		row := []any{issue.Field, issue.Count}
		cell, _ := excelize.CoordinatesToCellName(1, next+1+i)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("report: issue row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeResults(f *excelize.File, results []service.DocumentResult) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("report: results header: %w", err)
	}

	for i := range results {
		strs := resultToRow(&results[i])
		row := make([]any, len(strs))
		// Keep score, error count and duration numeric in the sheet.
		for j, s := range strs {
			row[j] = s
		}
		row[2] = results[i].Score
		row[3] = results[i].ErrorCount
		row[6] = results[i].DurationMs
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("report: results row %d: %w", i+1, err)
		}
	}
	return nil
}
