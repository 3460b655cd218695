package domain

import (
	"fmt"
	"slices"
)

// Table is an in-memory delimited table: ordered column names and rows of raw cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable builds a table after checking that every row matches the header width
func NewTable(columns []string, rows [][]string) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i+1, len(row), len(columns))
		}
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// ColumnIndex returns the position of name, or -1
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// HasColumn reports whether the table carries the named column
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Column returns a copy of every cell in the named column
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}

	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Head returns at most n rows, for verification logging
func (t *Table) Head(n int) [][]string {
	n = max(0, min(n, len(t.Rows)))
	return t.Rows[:n]
}

// Clone deep-copies the table so transformations never alias the caller's rows
func (t *Table) Clone() *Table {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = slices.Clone(row)
	}
	return &Table{Columns: slices.Clone(t.Columns), Rows: rows}
}
