package dataprocessing

import (
	"fmt"
	"log/slog"

	apperrors "gunstats/internal/errors"
	"gunstats/pkg/contracts/domain"
)

// RenameColumn returns a copy of t with column from renamed to to. A table
// without from is returned unchanged (as a copy).
func RenameColumn(t *domain.Table, from, to string) (*domain.Table, error) {
	out := t.Clone()
	idx := out.ColumnIndex(from)
	if idx < 0 {
		return out, nil
	}
	if from != to && out.HasColumn(to) {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("cannot rename %q to %q: column already exists", from, to))
	}

	out.Columns[idx] = to
	return out, nil
}

// KeepColumns projects t onto columns, in the given order
func KeepColumns(t *domain.Table, columns []string) (*domain.Table, error) {
	indexes := make([]int, len(columns))
	for i, name := range columns {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			return nil, apperrors.NewSchemaError(fmt.Sprintf("missing required column %q", name)).
				WithContext("columns", t.Columns)
		}
		indexes[i] = idx
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		projected := make([]string, len(indexes))
		for i, idx := range indexes {
			projected[i] = row[idx]
		}
		rows[r] = projected
	}

	return &domain.Table{Columns: append([]string(nil), columns...), Rows: rows}, nil
}

// CleanTable normalizes the legacy longgun header and keeps exactly
// month, state, permit, handgun and long_gun. Running it on its own output
// is a no-op.
func CleanTable(t *domain.Table) (*domain.Table, error) {
	renamed, err := RenameColumn(t, domain.ColumnLongGunLegacy, domain.ColumnLongGun)
	if err != nil {
		return nil, err
	}

	cleaned, err := KeepColumns(renamed, domain.CleanColumns)
	if err != nil {
		return nil, err
	}

	slog.Debug("Cleaned table", slog.Any("columns", cleaned.Columns), slog.Int("rows", cleaned.RowCount()))
	return cleaned, nil
}
