package dataprocessing

import (
	"fmt"

	apperrors "gunstats/internal/errors"
	"gunstats/pkg/contracts/domain"
)

// CalculateRates returns a copy of merged with permit_perc, handgun_perc and
// longgun_perc recomputed as count*100/pop_2014. A non-positive population is
// an error naming the state.
func CalculateRates(merged []domain.RateRecord) ([]domain.RateRecord, error) {
	out := make([]domain.RateRecord, len(merged))
	for i, r := range merged {
		if r.Pop2014 <= 0 {
			return nil, apperrors.NewNumericError(fmt.Sprintf("state %q has non-positive population %d", r.State, r.Pop2014)).
				WithContext("state", r.State)
		}

		pop := float64(r.Pop2014)
		r.PermitPerc = float64(r.Permit) * 100 / pop
		r.HandgunPerc = float64(r.Handgun) * 100 / pop
		r.LongGunPerc = float64(r.LongGun) * 100 / pop
		out[i] = r
	}
	return out, nil
}
