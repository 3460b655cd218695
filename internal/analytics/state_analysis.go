package analytics

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	apperrors "gunstats/internal/errors"
	"gunstats/pkg/contracts/domain"
)

// Mean returns the arithmetic mean of a percentage column
func Mean(rates []domain.RateRecord, column string) (float64, error) {
	if len(rates) == 0 {
		return 0, apperrors.NewNumericError("mean of an empty table is undefined")
	}

	values := make([]float64, len(rates))
	for i, r := range rates {
		v, ok := r.Perc(column)
		if !ok {
			return 0, apperrors.NewSchemaError(fmt.Sprintf("unknown percentage column %q", column))
		}
		values[i] = v
	}
	return stat.Mean(values, nil), nil
}

// Impute returns a copy of rates where every row of state has column set to
// value, plus the number of rows replaced.
func Impute(rates []domain.RateRecord, state, column string, value float64) ([]domain.RateRecord, int, error) {
	if _, ok := (domain.RateRecord{}).Perc(column); !ok {
		return nil, 0, apperrors.NewSchemaError(fmt.Sprintf("unknown percentage column %q", column))
	}

	out := make([]domain.RateRecord, len(rates))
	copy(out, rates)

	matches := 0
	for i := range out {
		if out[i].State != state {
			continue
		}
		switch column {
		case domain.ColumnPermitPerc:
			out[i].PermitPerc = value
		case domain.ColumnHandgunPerc:
			out[i].HandgunPerc = value
		case domain.ColumnLongGunPerc:
			out[i].LongGunPerc = value
		}
		matches++
	}
	return out, matches, nil
}

// AnalyzeStateData computes the mean permit_perc, replaces state's value by
// that mean and recomputes it. rates is left untouched; the corrected copy is
// returned in StateAnalysis.Imputed.
func AnalyzeStateData(rates []domain.RateRecord, state string) (domain.StateAnalysis, error) {
	oldMean, err := Mean(rates, domain.ColumnPermitPerc)
	if err != nil {
		return domain.StateAnalysis{}, err
	}

	imputed, matches, err := Impute(rates, state, domain.ColumnPermitPerc, oldMean)
	if err != nil {
		return domain.StateAnalysis{}, err
	}
	if matches == 0 {
		slog.Warn("Imputation target not found", slog.String("state", state))
	}

	newMean, err := Mean(imputed, domain.ColumnPermitPerc)
	if err != nil {
		return domain.StateAnalysis{}, err
	}

	return domain.StateAnalysis{
		State:   state,
		Matches: matches,
		OldMean: oldMean,
		NewMean: newMean,
		Imputed: imputed,
	}, nil
}

// Narrative renders the analysis as the lines printed by the analyze command
func Narrative(a domain.StateAnalysis) []string {
	return []string{
		fmt.Sprintf("Mean permit_perc: %.2f", a.OldMean),
		fmt.Sprintf("New mean permit_perc: %.2f", a.NewMean),
		fmt.Sprintf("The mean permit_perc changed from %.2f to %.2f.", a.OldMean, a.NewMean),
		fmt.Sprintf("This change illustrates the impact of outliers on statistical metrics. "+
			"%s's permit_perc was replaced by the mean of all states, bringing the metric "+
			"closer to the average of the data.", a.State),
	}
}
