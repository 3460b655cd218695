package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"gunstats/internal/config"
)

// Workbook sheet names
const (
	SheetRates     = "Rates"
	SheetStateYear = "StateYear"
	SheetYearly    = "Yearly"
)

// WorkbookExporter writes every report table into one xlsx file with a line
// chart of the yearly evolution.
type WorkbookExporter struct {
	paths *config.Paths
}

// NewWorkbookExporter creates a workbook exporter
func NewWorkbookExporter(paths *config.Paths) *WorkbookExporter {
	return &WorkbookExporter{paths: paths}
}

// Export writes config.WorkbookFile to the reports directory and returns its path
func (e *WorkbookExporter) Export(r Report) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRates); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetStateYear, SheetYearly} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	rateRows := make([][]interface{}, len(r.Rates))
	for i, rate := range r.Rates {
		rateRows[i] = []interface{}{
			rate.State, rate.Permit, rate.Handgun, rate.LongGun, rate.Pop2014,
			rate.PermitPerc, rate.HandgunPerc, rate.LongGunPerc,
		}
	}
	stateYearRows := make([][]interface{}, len(r.StateYear))
	for i, t := range r.StateYear {
		stateYearRows[i] = []interface{}{t.Year, t.State, t.Permit, t.Handgun, t.LongGun}
	}
	yearlyRows := make([][]interface{}, len(r.Yearly))
	for i, y := range r.Yearly {
		yearlyRows[i] = []interface{}{y.Year, y.Permit, y.Handgun, y.LongGun}
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{SheetRates, rateHeaders, rateRows},
		{SheetStateYear, stateYearHeaders, stateYearRows},
		{SheetYearly, yearlyHeaders, yearlyRows},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.headers, s.rows, headerStyle); err != nil {
			return "", err
		}
	}

	if len(r.Yearly) > 0 {
		if err := addEvolutionChart(f, len(r.Yearly)); err != nil {
			return "", err
		}
	}

	path := e.paths.GetReportPath(config.WorkbookFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Exported workbook",
		slog.String("file", path),
		slog.Int("rates", len(r.Rates)),
		slog.Int("state_year", len(r.StateYear)),
		slog.Int("years", len(r.Yearly)))
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// addEvolutionChart plots permit, handgun and long_gun per year from the Yearly sheet
func addEvolutionChart(f *excelize.File, years int) error {
	last := years + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", SheetYearly, last)

	series := make([]excelize.ChartSeries, 0, 3)
	for _, col := range []string{"B", "C", "D"} {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", SheetYearly, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SheetYearly, col, col, last),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 5},
		})
	}

	err := f.AddChart(SheetYearly, "F2", &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Evolution of Permits, Handguns and Long Guns"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Year"}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Count"}}, MajorGridLines: true},
		Dimension: excelize.ChartDimension{
			Width:  720,
			Height: 360,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add evolution chart: %w", err)
	}
	return nil
}

// ReadSheet returns every row of a sheet in an exported workbook
func ReadSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetRows(sheet)
}
