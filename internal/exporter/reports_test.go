package exporter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gunstats/internal/config"
	"gunstats/internal/dataprocessing"
	"gunstats/pkg/contracts/domain"
)

func sampleReport() Report {
	c := func(p, h, l int64) domain.Counts { return domain.Counts{Permit: p, Handgun: h, LongGun: l} }

	return Report{
		StateYear: []domain.StateYearTotal{
			{Year: 2015, State: "Ohio", Counts: c(1, 2, 3)},
			{Year: 2016, State: "Ohio", Counts: c(4, 5, 6)},
		},
		Rates: []domain.RateRecord{
			{State: "Ohio", Counts: c(5, 7, 9), Pop2014: 1000, PermitPerc: 0.5, HandgunPerc: 0.7, LongGunPerc: 0.9},
			{State: "Utah", Counts: c(1, 1, 1), Pop2014: 3, PermitPerc: 100.0 / 3, HandgunPerc: 100.0 / 3, LongGunPerc: 100.0 / 3},
		},
		Yearly: []domain.YearTotal{
			{Year: 2015, Counts: c(1, 2, 3)},
			{Year: 2016, Counts: c(4, 5, 6)},
		},
	}
}

func TestWriteReport(t *testing.T) {
	writer, paths := setupTestEnv(t)

	files, err := writer.WriteReport(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, []string{
		paths.GetReportPath(config.StateYearTotalsCSV),
		paths.GetReportPath(config.StateRatesCSV),
		paths.GetReportPath(config.YearlyTotalsCSV),
	}, files)

	assert.Equal(t, []string{
		"year,state,permit,handgun,long_gun",
		"2015,Ohio,1,2,3",
		"2016,Ohio,4,5,6",
	}, readLines(t, files[0]))
	assert.Equal(t, "state,permit,handgun,long_gun,pop_2014,permit_perc,handgun_perc,longgun_perc", readLines(t, files[1])[0])
	assert.Equal(t, "Ohio,5,7,9,1000,0.5,0.7,0.9", readLines(t, files[1])[1])
	assert.Equal(t, []string{"year,permit,handgun,long_gun", "2015,1,2,3", "2016,4,5,6"}, readLines(t, files[2]))
}

func TestWriteReport_SkipsEmptyTables(t *testing.T) {
	writer, paths := setupTestEnv(t)

	files, err := writer.WriteReport(Report{Yearly: sampleReport().Yearly})
	require.NoError(t, err)
	assert.Equal(t, []string{paths.GetReportPath(config.YearlyTotalsCSV)}, files)
}

func TestWriteRates_RoundTrip(t *testing.T) {
	writer, _ := setupTestEnv(t)
	report := sampleReport()

	path, err := writer.WriteRates(report.Rates)
	require.NoError(t, err)

	table, err := dataprocessing.LoadTable(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, rateHeaders, table.Columns)

	percs, ok := table.Column(domain.ColumnPermitPerc)
	require.True(t, ok)
	assert.Equal(t, formatPerc(100.0/3), percs[1])
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.000123", formatPerc(0.000123))
	assert.Equal(t, "12", formatPerc(12))
	assert.Equal(t, "-7", formatInt(-7))
	assert.Equal(t, "9007199254740993", formatInt(9007199254740993))
}
