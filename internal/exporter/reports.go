package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"gunstats/internal/config"
	"gunstats/pkg/contracts/domain"
)

var (
	stateYearHeaders = []string{domain.ColumnYear, domain.ColumnState, domain.ColumnPermit, domain.ColumnHandgun, domain.ColumnLongGun}
	rateHeaders      = []string{
		domain.ColumnState, domain.ColumnPermit, domain.ColumnHandgun, domain.ColumnLongGun, domain.ColumnPop2014,
		domain.ColumnPermitPerc, domain.ColumnHandgunPerc, domain.ColumnLongGunPerc,
	}
	yearlyHeaders = []string{domain.ColumnYear, domain.ColumnPermit, domain.ColumnHandgun, domain.ColumnLongGun}
)

// Report bundles the tables a full run exports
type Report struct {
	StateYear []domain.StateYearTotal
	Rates     []domain.RateRecord
	Yearly    []domain.YearTotal
}

// WriteReport writes every non-empty table of r and returns the written paths
func (w *CSVWriter) WriteReport(r Report) ([]string, error) {
	var written []string

	steps := []struct {
		name  string
		count int
		write func() (string, error)
	}{
		{config.StateYearTotalsCSV, len(r.StateYear), func() (string, error) { return w.WriteStateYearTotals(r.StateYear) }},
		{config.StateRatesCSV, len(r.Rates), func() (string, error) { return w.WriteRates(r.Rates) }},
		{config.YearlyTotalsCSV, len(r.Yearly), func() (string, error) { return w.WriteYearlyTotals(r.Yearly) }},
	}

	for _, step := range steps {
		if step.count == 0 {
			continue
		}
		path, err := step.write()
		if err != nil {
			return written, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteStateYearTotals writes the (year, state) aggregate
func (w *CSVWriter) WriteStateYearTotals(totals []domain.StateYearTotal) (string, error) {
	return w.writeRows(config.StateYearTotalsCSV, stateYearHeaders, len(totals), func(i int) []string {
		t := totals[i]
		return []string{strconv.Itoa(t.Year), t.State, formatInt(t.Permit), formatInt(t.Handgun), formatInt(t.LongGun)}
	})
}

// WriteRates writes the per-capita rate table
func (w *CSVWriter) WriteRates(rates []domain.RateRecord) (string, error) {
	return w.writeRows(config.StateRatesCSV, rateHeaders, len(rates), func(i int) []string {
		r := rates[i]
		return []string{
			r.State, formatInt(r.Permit), formatInt(r.Handgun), formatInt(r.LongGun), formatInt(r.Pop2014),
			formatPerc(r.PermitPerc), formatPerc(r.HandgunPerc), formatPerc(r.LongGunPerc),
		}
	})
}

// WriteYearlyTotals writes the national time series
func (w *CSVWriter) WriteYearlyTotals(years []domain.YearTotal) (string, error) {
	return w.writeRows(config.YearlyTotalsCSV, yearlyHeaders, len(years), func(i int) []string {
		y := years[i]
		return []string{strconv.Itoa(y.Year), formatInt(y.Permit), formatInt(y.Handgun), formatInt(y.LongGun)}
	})
}

func (w *CSVWriter) writeRows(name string, headers []string, n int, row func(int) []string) (string, error) {
	stream, err := w.CreateStreamWriter(name, headers)
	if err != nil {
		return "", err
	}

	for i := 0; i < n; i++ {
		if err := stream.WriteRecord(row(i)); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	path := stream.Path()
	if err := stream.Close(); err != nil {
		return "", err
	}

	slog.Info("Exported CSV", slog.String("file", path), slog.Int("rows", n))
	return path, nil
}
