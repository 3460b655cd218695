package store

import (
	"time"

	"gunstats/pkg/contracts/domain"
)

// Run is one persisted pipeline execution
type Run struct {
	ID               uint      `gorm:"primaryKey"`
	TraceID          string    `gorm:"uniqueIndex;not null"`
	CreatedAt        time.Time `gorm:"index"`
	NICSSource       string
	PopulationSource string
	ImputeState      string
	OldMean          float64
	NewMean          float64
	MatchedStates    int
	DroppedStates    int
	Rates            []RateRow `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// RateRow is a state's per-capita rates within a run
type RateRow struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       uint   `gorm:"index:idx_rate_rows_run_state,unique;not null"`
	State       string `gorm:"index:idx_rate_rows_run_state,unique;not null"`
	Permit      int64
	Handgun     int64
	LongGun     int64
	Pop2014     int64
	PermitPerc  float64
	HandgunPerc float64
	LongGunPerc float64
}

func rateRowFromDomain(r domain.RateRecord) RateRow {
	return RateRow{
		State:       r.State,
		Permit:      r.Permit,
		Handgun:     r.Handgun,
		LongGun:     r.LongGun,
		Pop2014:     r.Pop2014,
		PermitPerc:  r.PermitPerc,
		HandgunPerc: r.HandgunPerc,
		LongGunPerc: r.LongGunPerc,
	}
}

// ToDomain converts the row back to a rate record
func (r RateRow) ToDomain() domain.RateRecord {
	return domain.RateRecord{
		State:       r.State,
		Counts:      domain.Counts{Permit: r.Permit, Handgun: r.Handgun, LongGun: r.LongGun},
		Pop2014:     r.Pop2014,
		PermitPerc:  r.PermitPerc,
		HandgunPerc: r.HandgunPerc,
		LongGunPerc: r.LongGunPerc,
	}
}
