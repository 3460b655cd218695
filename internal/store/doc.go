// Package store persists pipeline runs to SQLite through GORM.
//
// Each Run row carries the merge and analysis summary of one pipeline run and
// owns its per-state RateRow children. Rows are written in a single
// transaction, so a run is either fully stored or absent.
//
//	db, err := store.Open("data/gunstats.db")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	run, err := db.SaveRun(ctx, summary, rates)
package store
