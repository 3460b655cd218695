package analytics

import (
	"fmt"

	apperrors "gunstats/internal/errors"
	"gunstats/pkg/contracts/domain"
)

// BiggestHandguns returns the (state, year) with the most handgun checks
func BiggestHandguns(totals []domain.StateYearTotal) (domain.Extremum, error) {
	return MaxBy(totals, domain.ColumnHandgun)
}

// BiggestLongGuns returns the (state, year) with the most long-gun checks
func BiggestLongGuns(totals []domain.StateYearTotal) (domain.Extremum, error) {
	return MaxBy(totals, domain.ColumnLongGun)
}

// MaxBy scans totals in order and keeps the first row that is strictly
// greater than the current best, so ties resolve to the earliest row.
func MaxBy(totals []domain.StateYearTotal, column string) (domain.Extremum, error) {
	if len(totals) == 0 {
		return domain.Extremum{}, apperrors.NewSchemaError("cannot take the maximum of an empty table")
	}
	if _, ok := totals[0].Field(column); !ok {
		return domain.Extremum{}, apperrors.NewSchemaError(fmt.Sprintf("unknown count column %q", column))
	}

	best := 0
	bestValue, _ := totals[0].Field(column)
	for i := 1; i < len(totals); i++ {
		if v, _ := totals[i].Field(column); v > bestValue {
			best, bestValue = i, v
		}
	}

	return domain.Extremum{
		State: totals[best].State,
		Year:  totals[best].Year,
		Count: bestValue,
	}, nil
}
