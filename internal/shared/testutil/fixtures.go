package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NICSSample is a small NICS extract using the legacy longgun header. It
// contains two territories and an outlier permit count for Kentucky.
const NICSSample = `month,state,permit,permit_recheck,handgun,longgun,other
2016-12,Alabama,26996,0,26997,21609,1460
2016-12,Florida,1000,0,60000,40000,12
2016-11,Florida,1200,0,70000,41000,3
2015-12,Guam,10,0,12,8,0
2015-12,Alabama,20000,0,19000,25000,900
2015-11,Puerto Rico,5,0,6,7,0
2015-10,Kentucky,300000,0,14000,16000,10
`

// PopulationSample matches NICSSample plus Texas, which has no NICS rows
const PopulationSample = `state,pop_2014
Alabama,100000
Florida,200000
Kentucky,50000
Texas,1
`

// GeoJSONSample outlines the three states of PopulationSample that have NICS rows
const GeoJSONSample = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"name":"Alabama"},"geometry":{"type":"Polygon","coordinates":[[[-88,30],[-85,30],[-85,35],[-88,30]]]}},
{"type":"Feature","properties":{"name":"Florida"},"geometry":{"type":"Polygon","coordinates":[[[-87,25],[-80,25],[-80,31],[-87,25]]]}},
{"type":"Feature","properties":{"name":"Kentucky"},"geometry":{"type":"Polygon","coordinates":[[[-89,36],[-82,36],[-82,39],[-89,36]]]}}
]}`

// Inputs are the fixture files written for one test
type Inputs struct {
	Dir        string
	NICS       string
	Population string
	GeoJSON    string
	OutputDir  string
}

// WriteInputs writes the sample inputs to a fresh temp dir
func WriteInputs(t *testing.T) Inputs {
	t.Helper()

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	return Inputs{
		Dir:        dir,
		NICS:       write("nics.csv", NICSSample),
		Population: write("pop.csv", PopulationSample),
		GeoJSON:    write("states.json", GeoJSONSample),
		OutputDir:  filepath.Join(dir, "out"),
	}
}
