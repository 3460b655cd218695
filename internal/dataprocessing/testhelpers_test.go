package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gunstats/pkg/contracts/domain"
)

const sampleNICS = `month,state,permit,permit_recheck,handgun,long_gun,other
2016-12,Alabama,26996,0,26997,21609,1460
2016-12,Florida,1000,0,60000,40000,12
2016-11,Florida,1200,0,70000,41000,3
2015-12,Guam,10,0,12,8,0
2015-12,Alabama,20000,0,19000,25000,900
2015-11,Puerto Rico,5,0,6,7,0
2015-10,Kentucky,300000,0,14000,16000,10
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func mustTable(t *testing.T, columns []string, rows ...[]string) *domain.Table {
	t.Helper()

	table, err := domain.NewTable(columns, rows)
	require.NoError(t, err)
	return table
}

func counts(permit, handgun, longGun int64) domain.Counts {
	return domain.Counts{Permit: permit, Handgun: handgun, LongGun: longGun}
}
