package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "gunstats/internal/errors"
	"gunstats/pkg/contracts/domain"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Store persists run summaries and their rate tables in SQLite
type Store struct {
	db *gorm.DB
}

// RunSummary is what a finished pipeline run reports for persistence
type RunSummary struct {
	TraceID          string
	NICSSource       string
	PopulationSource string
	Analysis         domain.StateAnalysis
	Merge            domain.MergeStats
}

// Open connects to the SQLite file at path, creating its directory, and
// migrates the schema.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, apperrors.NewStorageError("failed to create database directory", err).WithContext("path", path)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open SQLite database", err).WithContext("path", path)
	}

	if err := db.AutoMigrate(&Run{}, &RateRow{}); err != nil {
		return nil, apperrors.NewStorageError("failed to auto-migrate SQLite database", err).WithContext("path", path)
	}

	slog.Debug("SQLite store opened", slog.String("path", path))
	return &Store{db: db}, nil
}

// newGormLogger routes gorm warnings and errors through slog
func newGormLogger() logger.Interface {
	return logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// SaveRun stores a run and its rate rows in a single transaction
func (s *Store) SaveRun(ctx context.Context, summary RunSummary, rates []domain.RateRecord) (*Run, error) {
	run := &Run{
		TraceID:          summary.TraceID,
		NICSSource:       summary.NICSSource,
		PopulationSource: summary.PopulationSource,
		ImputeState:      summary.Analysis.State,
		OldMean:          summary.Analysis.OldMean,
		NewMean:          summary.Analysis.NewMean,
		MatchedStates:    summary.Merge.Matched,
		DroppedStates:    summary.Merge.Dropped(),
		Rates:            make([]RateRow, len(rates)),
	}
	for i, r := range rates {
		run.Rates[i] = rateRowFromDomain(r)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to save run", err).WithContext("trace_id", summary.TraceID)
	}

	slog.InfoContext(ctx, "Run persisted",
		slog.Uint64("run_id", uint64(run.ID)),
		slog.Int("rates", len(run.Rates)))
	return run, nil
}

// Runs returns the most recent runs first, without their rate rows. A
// non-positive limit returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	q := s.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, apperrors.NewStorageError("failed to list runs", err)
	}
	return runs, nil
}

// RatesForRun returns the rate table of a run, sorted by state
func (s *Store) RatesForRun(ctx context.Context, runID uint) ([]domain.RateRecord, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Run{}).Where("id = ?", runID).Count(&count).Error; err != nil {
		return nil, apperrors.NewStorageError("failed to look up run", err)
	}
	if count == 0 {
		return nil, apperrors.NewStorageError(fmt.Sprintf("run %d not found", runID), gorm.ErrRecordNotFound)
	}

	var rows []RateRow
	if err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("state").Find(&rows).Error; err != nil {
		return nil, apperrors.NewStorageError("failed to load rates", err)
	}

	out := make([]domain.RateRecord, len(rows))
	for i, r := range rows {
		out[i] = r.ToDomain()
	}
	return out, nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
