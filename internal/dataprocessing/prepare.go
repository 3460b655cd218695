package dataprocessing

import (
	"gunstats/pkg/contracts/domain"
)

// Prepare runs the cleaning stages on a raw NICS table and returns typed
// records keyed by year and state.
func Prepare(raw *domain.Table) ([]domain.CheckRecord, error) {
	cleaned, err := CleanTable(raw)
	if err != nil {
		return nil, err
	}
	split, err := SplitDate(cleaned)
	if err != nil {
		return nil, err
	}
	erased, err := EraseMonth(split)
	if err != nil {
		return nil, err
	}
	return ToRecords(erased)
}
