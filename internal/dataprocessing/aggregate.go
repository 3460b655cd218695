package dataprocessing

import (
	"cmp"
	"slices"

	"gunstats/pkg/contracts/domain"
)

type stateYearKey struct {
	year  int
	state string
}

// GroupByStateAndYear sums the counts of every (year, state) pair. Output is
// sorted by year, then state.
func GroupByStateAndYear(records []domain.CheckRecord) []domain.StateYearTotal {
	sums := make(map[stateYearKey]*domain.StateYearTotal)
	for _, rec := range records {
		key := stateYearKey{year: rec.Year, state: rec.State}
		total, ok := sums[key]
		if !ok {
			total = &domain.StateYearTotal{Year: rec.Year, State: rec.State}
			sums[key] = total
		}
		total.Add(rec.Counts)
	}

	out := make([]domain.StateYearTotal, 0, len(sums))
	for _, total := range sums {
		out = append(out, *total)
	}
	slices.SortFunc(out, func(a, b domain.StateYearTotal) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.State, b.State)
	})
	return out
}

// GroupByState sums the yearly totals of each state. Output is sorted by state.
func GroupByState(totals []domain.StateYearTotal) []domain.StateTotal {
	sums := make(map[string]*domain.StateTotal)
	for _, t := range totals {
		total, ok := sums[t.State]
		if !ok {
			total = &domain.StateTotal{State: t.State}
			sums[t.State] = total
		}
		total.Add(t.Counts)
	}

	out := make([]domain.StateTotal, 0, len(sums))
	for _, total := range sums {
		out = append(out, *total)
	}
	slices.SortFunc(out, func(a, b domain.StateTotal) int {
		return cmp.Compare(a.State, b.State)
	})
	return out
}
