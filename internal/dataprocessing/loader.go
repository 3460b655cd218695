package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jszwec/csvutil"

	apperrors "gunstats/internal/errors"
	"gunstats/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// LoadTable reads a delimited table from a filesystem path or an http(s) URL.
// The first record is the header. Every row is kept in file order.
func LoadTable(ctx context.Context, source string) (*domain.Table, error) {
	rc, err := OpenSource(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	table, err := readTable(rc, source)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Loaded table",
		slog.String("source", source),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", len(table.Columns)))
	slog.DebugContext(ctx, "Table head",
		slog.Any("columns", table.Columns),
		slog.Any("rows", table.Head(5)))

	return table, nil
}

func readTable(r io.Reader, source string) (*domain.Table, error) {
	reader := csv.NewReader(r)

	columns, err := readHeader(reader, source)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("malformed csv", err).WithContext("source", source)
		}
		rows = append(rows, record)
	}

	table, err := domain.NewTable(columns, rows)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeSchema, "ragged table", err).WithContext("source", source)
	}
	return table, nil
}

// readHeader reads the first record and normalizes the column names
func readHeader(reader *csv.Reader, source string) ([]string, error) {
	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewSchemaError("table has no header row").WithContext("source", source)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err).WithContext("source", source)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
	}
	return columns, nil
}

// LoadPopulation decodes the population reference table into typed records.
// The header must carry state and pop_2014; other columns are ignored.
func LoadPopulation(ctx context.Context, source string) ([]domain.PopulationRecord, error) {
	rc, err := OpenSource(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	header, err := readHeader(reader, source)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{domain.ColumnState, domain.ColumnPop2014} {
		if !slices.Contains(header, required) {
			return nil, apperrors.NewSchemaError(fmt.Sprintf("population table is missing column %q", required)).
				WithContext("source", source)
		}
	}

	decoder, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to create population decoder", err).
			WithContext("source", source)
	}

	var records []domain.PopulationRecord
	if err := decoder.Decode(&records); err != nil && err != io.EOF {
		return nil, apperrors.NewParsingError("failed to decode population table", err).
			WithContext("source", source)
	}

	validate := validator.New()
	for i := range records {
		records[i].State = strings.TrimSpace(records[i].State)
		if err := validate.Struct(records[i]); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrTypeSchema,
				fmt.Sprintf("population row %d is invalid", i+1), err).
				WithContext("source", source)
		}
	}

	slog.InfoContext(ctx, "Loaded population table",
		slog.String("source", source),
		slog.Int("states", len(records)))

	return records, nil
}

// OpenSource opens a local file or fetches an http(s) URL. The caller closes it.
func OpenSource(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, apperrors.NewResourceError("invalid url", err).WithContext("source", source)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, apperrors.NewResourceError("failed to fetch url", err).WithContext("source", source)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, apperrors.NewResourceError(fmt.Sprintf("unexpected status %s", resp.Status), nil).
				WithContext("source", source)
		}
		return resp.Body, nil
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, apperrors.NewResourceError("failed to open input", err).WithContext("source", source)
	}
	return file, nil
}
