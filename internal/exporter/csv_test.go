package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gunstats/internal/config"
)

func setupTestEnv(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()

	paths := config.NewPaths(t.TempDir())
	return NewCSVWriter(paths), paths
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, utf8BOM)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestNewCSVWriter(t *testing.T) {
	paths := &config.Paths{}
	writer := NewCSVWriter(paths)

	assert.NotNil(t, writer)
	assert.Equal(t, paths, writer.paths)
	assert.True(t, writer.bom)
	assert.False(t, writer.WithoutBOM().bom)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		bom      bool
		headers  []string
		records  [][]string
		validate func(t *testing.T, path string)
	}{
		{
			name:    "basic write with headers",
			headers: []string{"state", "permit"},
			records: [][]string{{"Ohio", "1"}, {"Utah", "2"}},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, []string{"state,permit", "Ohio,1", "Utah,2"}, readLines(t, path))
			},
		},
		{
			name:    "write with BOM prefix",
			bom:     true,
			headers: []string{"state"},
			records: [][]string{{"Ohio"}},
			validate: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(content, utf8BOM))
			},
		},
		{
			name:    "write without headers",
			records: [][]string{{"a", "b"}},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, []string{"a,b"}, readLines(t, path))
			},
		},
		{
			name:    "quoted values",
			headers: []string{"state"},
			records: [][]string{{"District, of Columbia"}},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, `"District, of Columbia"`, readLines(t, path)[1])
			},
		},
		{
			name:    "empty records",
			headers: []string{"col1", "col2"},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, []string{"col1,col2"}, readLines(t, path))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer, paths := setupTestEnv(t)
			if !tt.bom {
				writer.WithoutBOM()
			}

			require.NoError(t, writer.WriteCSV("out.csv", tt.headers, tt.records))
			tt.validate(t, paths.GetReportPath("out.csv"))
		})
	}
}

func TestCSVWriter_OverwritesExisting(t *testing.T) {
	writer, paths := setupTestEnv(t)

	require.NoError(t, writer.WriteCSV("x.csv", []string{"a"}, [][]string{{"1"}, {"2"}}))
	require.NoError(t, writer.WriteCSV("x.csv", []string{"a"}, [][]string{{"3"}}))

	assert.Equal(t, []string{"a", "3"}, readLines(t, paths.GetReportPath("x.csv")))
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	writer, _ := setupTestEnv(t)
	abs := filepath.Join(t.TempDir(), "nested", "abs.csv")

	require.NoError(t, writer.WriteCSV(abs, []string{"a"}, nil))
	assert.FileExists(t, abs)
}

func TestStreamWriter(t *testing.T) {
	writer, paths := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"n"})
	require.NoError(t, err)
	for _, v := range []string{"1", "2", "3"} {
		require.NoError(t, stream.WriteRecord([]string{v}))
	}
	assert.Equal(t, 3, stream.Rows())
	assert.Equal(t, paths.GetReportPath("stream.csv"), stream.Path())
	require.NoError(t, stream.Close())

	assert.Equal(t, []string{"n", "1", "2", "3"}, readLines(t, stream.Path()))
}

func TestCreateStreamWriter_BlockedDirectory(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "reports")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewCSVWriter(config.NewPaths(root)).CreateStreamWriter("a.csv", nil)
	assert.Error(t, err)
}
