package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	apperrors "gunstats/internal/errors"
	"gunstats/pkg/contracts/domain"
)

// SplitDate decomposes every "YYYY-MM" month cell. The result carries the
// integer month in place and a new year column appended at the end.
func SplitDate(t *domain.Table) (*domain.Table, error) {
	monthIdx := t.ColumnIndex(domain.ColumnMonth)
	if monthIdx < 0 {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("missing required column %q", domain.ColumnMonth))
	}
	if t.HasColumn(domain.ColumnYear) {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("column %q already exists", domain.ColumnYear))
	}

	out := &domain.Table{
		Columns: append(slices.Clone(t.Columns), domain.ColumnYear),
		Rows:    make([][]string, len(t.Rows)),
	}

	for i, row := range t.Rows {
		year, month, err := splitYearMonth(row[monthIdx])
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid month %q", i+1, row[monthIdx]), err).
				WithContext("row", i+1)
		}

		split := make([]string, 0, len(row)+1)
		split = append(split, row...)
		split[monthIdx] = strconv.Itoa(month)
		split = append(split, strconv.Itoa(year))
		out.Rows[i] = split
	}

	slog.Debug("Split dates", slog.Any("columns", out.Columns), slog.Any("head", out.Head(5)))
	return out, nil
}

// splitYearMonth splits on the first hyphen; both halves must be integers
func splitYearMonth(value string) (int, int, error) {
	yearPart, monthPart, found := strings.Cut(strings.TrimSpace(value), "-")
	if !found {
		return 0, 0, fmt.Errorf("expected <year>-<month>")
	}

	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return 0, 0, fmt.Errorf("year: %w", err)
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil {
		return 0, 0, fmt.Errorf("month: %w", err)
	}
	return year, month, nil
}

// EraseMonth drops the month column once the year has been split out
func EraseMonth(t *domain.Table) (*domain.Table, error) {
	if !t.HasColumn(domain.ColumnYear) {
		return nil, apperrors.NewSchemaError("month can only be erased after the year has been split out")
	}

	keep := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c != domain.ColumnMonth {
			keep = append(keep, c)
		}
	}
	return KeepColumns(t, keep)
}

// ToRecords converts an erased table (year, state and the three counts) into
// typed records. Empty count cells are zero; negative or non-numeric counts fail.
func ToRecords(t *domain.Table) ([]domain.CheckRecord, error) {
	required := []string{domain.ColumnYear, domain.ColumnState, domain.ColumnPermit, domain.ColumnHandgun, domain.ColumnLongGun}
	idx := make(map[string]int, len(required))
	for _, name := range required {
		i := t.ColumnIndex(name)
		if i < 0 {
			return nil, apperrors.NewSchemaError(fmt.Sprintf("missing required column %q", name))
		}
		idx[name] = i
	}

	records := make([]domain.CheckRecord, len(t.Rows))
	for r, row := range t.Rows {
		year, err := strconv.Atoi(strings.TrimSpace(row[idx[domain.ColumnYear]]))
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid year", r+1), err)
		}

		rec := domain.CheckRecord{Year: year, State: row[idx[domain.ColumnState]]}
		for _, field := range []struct {
			column string
			dst    *int64
		}{
			{domain.ColumnPermit, &rec.Permit},
			{domain.ColumnHandgun, &rec.Handgun},
			{domain.ColumnLongGun, &rec.LongGun},
		} {
			v, err := parseCount(row[idx[field.column]])
			if err != nil {
				return nil, apperrors.NewParsingError(
					fmt.Sprintf("row %d: invalid %s count %q", r+1, field.column, row[idx[field.column]]), err).
					WithContext("row", r+1).
					WithContext("column", field.column)
			}
			*field.dst = v
		}
		records[r] = rec
	}

	return records, nil
}

// parseCount accepts integers and integral floats such as "12.0"
func parseCount(cell string) (int64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative count")
		}
		return v, nil
	}

	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if f < 0 || f != math.Trunc(f) || math.IsInf(f, 0) || f >= math.MaxInt64 {
		return 0, fmt.Errorf("not a non-negative integer")
	}
	return int64(f), nil
}
