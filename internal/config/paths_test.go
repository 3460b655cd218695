package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	tests := []struct {
		name      string
		outputDir string
		want      Paths
	}{
		{
			name:      "explicit output dir",
			outputDir: "out",
			want: Paths{
				DataDir:    "out",
				ReportsDir: filepath.Join("out", "reports"),
				MapsDir:    filepath.Join("out", "maps"),
				LogsDir:    filepath.Join("out", "logs"),
			},
		},
		{
			name:      "empty falls back to default",
			outputDir: "",
			want: Paths{
				DataDir:    DefaultOutputDir,
				ReportsDir: filepath.Join(DefaultOutputDir, "reports"),
				MapsDir:    filepath.Join(DefaultOutputDir, "maps"),
				LogsDir:    filepath.Join(DefaultOutputDir, "logs"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *NewPaths(tt.outputDir))
		})
	}
}

func TestPaths_EnsureDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "run")
	paths := NewPaths(root)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ReportsDir, paths.MapsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	// Idempotent
	require.NoError(t, paths.EnsureDirectories())
}

func TestPaths_EnsureDirectories_BlockedByFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewPaths(blocker).EnsureDirectories()
	assert.Error(t, err)
}

func TestPaths_Getters(t *testing.T) {
	paths := NewPaths("out")

	assert.Equal(t, filepath.Join("out", "reports", StateRatesCSV), paths.GetReportPath(StateRatesCSV))
	assert.Equal(t, filepath.Join("out", "maps", "permit_perc_map.html"), paths.GetMapPath("permit_perc_map.html"))
	assert.Equal(t, filepath.Join("out", "logs", "gunstats.log"), paths.GetLogPath("gunstats.log"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(file, []byte("a,b\n"), 0644))

	assert.True(t, FileExists(file))
	assert.True(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "absent.csv")))
}
