// Package excelize writes stored search results to xlsx workbooks.
package excelize

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/xuri/excelize/v2"
)

// Sheet names written by Export.
const (
	ResultsSheet    = "Results"
	StatisticsSheet = "Statistics"
)

var resultHeader = []any{"Keyword", "Engine", "Page", "Rank", "Title", "URL", "Snippet", "Fetched At"}

var statsHeader = []any{"Date", "Keyword", "Engine", "Runs", "Failed Runs", "Total Results", "Avg Duration (s)"}

// Exporter writes results, and optionally daily statistics, as a workbook.
type Exporter struct{}

// NewExporter creates a new Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes a workbook with a Results sheet and, when stats is not
// empty, a Statistics sheet. Rows keep the order they are given in.
func (e *Exporter) Export(w io.Writer, results []*serpwatch.SearchResult, stats []*serpwatch.Statistics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{
			r.Keyword, r.Engine, r.Page, r.Rank, r.Title, r.URL, r.Snippet,
			r.FetchedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, ResultsSheet, resultHeader, rows); err != nil {
		return err
	}

	if len(stats) > 0 {
		if _, err := f.NewSheet(StatisticsSheet); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		rows = rows[:0]
		for _, s := range stats {
			rows = append(rows, []any{
				s.Date, s.Keyword, s.Engine, s.Runs, s.FailedRuns, s.TotalResults,
				s.AverageDuration().Seconds(),
			})
		}
		if err := writeSheet(f, StatisticsSheet, statsHeader, rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeSheet writes a bold, frozen header row followed by rows.
func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}
