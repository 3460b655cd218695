package analytics

import (
	"cmp"
	"slices"

	"gunstats/pkg/contracts/domain"
)

// TimeEvolution sums every state's counts per year, sorted by year
func TimeEvolution(totals []domain.StateYearTotal) []domain.YearTotal {
	byYear := make(map[int]*domain.YearTotal)
	for _, t := range totals {
		y, ok := byYear[t.Year]
		if !ok {
			y = &domain.YearTotal{Year: t.Year}
			byYear[t.Year] = y
		}
		y.Add(t.Counts)
	}

	out := make([]domain.YearTotal, 0, len(byYear))
	for _, y := range byYear {
		out = append(out, *y)
	}
	slices.SortFunc(out, func(a, b domain.YearTotal) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return out
}
