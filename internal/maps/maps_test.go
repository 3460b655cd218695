package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gunstats/internal/config"
	apperrors "gunstats/internal/errors"
	"gunstats/pkg/contracts/domain"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Ohio"},
     "geometry": {"type": "Polygon", "coordinates": [[[-84,39],[-81,39],[-81,42],[-84,42],[-84,39]]]}},
    {"type": "Feature", "properties": {"name": "Alabama"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[-88,30],[-85,30],[-85,35],[-88,35],[-88,30]]],
       [[[-88.5,30],[-88.2,30],[-88.2,30.3],[-88.5,30]]]
     ]}},
    {"type": "Feature", "properties": {"name": "Guam"},
     "geometry": {"type": "Polygon", "coordinates": [[[-80,25],[-79,25],[-79,26],[-80,25]]]}},
    {"type": "Feature", "properties": {"name": "Capital"},
     "geometry": {"type": "Point", "coordinates": [-82, 40]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}
  ]
}`

func sampleRates() []domain.RateRecord {
	return []domain.RateRecord{
		{State: "Alabama", PermitPerc: 1.5, HandgunPerc: 4, LongGunPerc: 6},
		{State: "Ohio", PermitPerc: 7.5, HandgunPerc: 2, LongGunPerc: 3},
	}
}

func TestParseBoundaries(t *testing.T) {
	boundaries, err := ParseBoundaries([]byte(sampleGeoJSON))
	require.NoError(t, err)

	names := make([]string, len(boundaries))
	for i, b := range boundaries {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"Alabama", "Guam", "Ohio"}, names)
	assert.IsType(t, orb.MultiPolygon{}, boundaries[0].Geometry)
}

func TestParseBoundaries_NullGeometry(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"Atlantis"},"geometry":null},
		{"type":"Feature","properties":{"name":"Ohio"},"geometry":{"type":"Polygon","coordinates":[[[-84,39],[-80,39],[-80,42],[-84,42],[-84,39]]]}}
	]}`

	var boundaries []Boundary
	var err error
	require.NotPanics(t, func() { boundaries, err = ParseBoundaries([]byte(data)) })
	require.NoError(t, err)
	require.Len(t, boundaries, 1)
	assert.Equal(t, "Ohio", boundaries[0].Name)

	_, err = ParseBoundaries([]byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"Atlantis"},"geometry":null}]}`))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestParseBoundaries_Errors(t *testing.T) {
	_, err := ParseBoundaries([]byte("{not json"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	_, err = ParseBoundaries([]byte(`{"type":"FeatureCollection","features":[]}`))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestLoadBoundaries(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "states.json")
		require.NoError(t, os.WriteFile(path, []byte(sampleGeoJSON), 0644))

		boundaries, err := LoadBoundaries(context.Background(), path)
		require.NoError(t, err)
		assert.Len(t, boundaries, 3)
	})

	t.Run("url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/geo+json")
			_, _ = w.Write([]byte(sampleGeoJSON))
		}))
		defer srv.Close()

		boundaries, err := LoadBoundaries(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Len(t, boundaries, 3)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadBoundaries(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeResource))
	})
}

func TestScale(t *testing.T) {
	s := NewScale([]float64{0, 6, 3}, YlGnBu)

	require.Len(t, s.Breaks, 7)
	assert.Equal(t, 0.0, s.Breaks[0])
	assert.Equal(t, 6.0, s.Breaks[6])

	assert.Equal(t, 0, s.Class(0))
	assert.Equal(t, 0, s.Class(-1), "clamped low")
	assert.Equal(t, 3, s.Class(3))
	assert.Equal(t, 5, s.Class(6))
	assert.Equal(t, 5, s.Class(100), "clamped high")
	assert.Equal(t, YlGnBu[5], s.Color(6))

	legend := s.Legend()
	require.Len(t, legend, 6)
	assert.Equal(t, "0.00 - 1.00", legend[0].Label)
	assert.Equal(t, YlGnBu[0], legend[0].Color)
}

func TestScale_Degenerate(t *testing.T) {
	s := NewScale(nil, YlGnBu)
	assert.Equal(t, 5, s.Class(0))

	same := NewScale([]float64{2, 2}, YlGnBu)
	assert.Equal(t, 5, same.Class(2))
}

func TestValues(t *testing.T) {
	values, err := Values(sampleRates(), domain.ColumnPermitPerc)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Alabama": 1.5, "Ohio": 7.5}, values)

	_, err = Values(sampleRates(), "permit")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestRenderChoropleth(t *testing.T) {
	boundaries, err := ParseBoundaries([]byte(sampleGeoJSON))
	require.NoError(t, err)

	var sb strings.Builder
	err = RenderChoropleth(&sb, boundaries, map[string]float64{"Alabama": 1.5, "Ohio": 7.5}, "Permit <Percentage>")
	require.NoError(t, err)
	html := sb.String()

	assert.Contains(t, html, "Permit &lt;Percentage&gt;", "title escaped")
	assert.Equal(t, 3, strings.Count(html, "<path "))
	assert.Contains(t, html, `fill="`+YlGnBu[0]+`"`)
	assert.Contains(t, html, `fill="`+YlGnBu[5]+`"`)
	assert.Contains(t, html, `fill="`+NoDataColor+`"`)
	assert.Contains(t, html, "Ohio: 7.50")
	assert.Contains(t, html, "No data: Guam")
	assert.Contains(t, html, `id="map"`)
}

func TestRenderChoropleth_NoBoundaries(t *testing.T) {
	err := RenderChoropleth(&strings.Builder{}, nil, nil, "x")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
}

func TestProjection_FitsViewport(t *testing.T) {
	boundaries, err := ParseBoundaries([]byte(sampleGeoJSON))
	require.NoError(t, err)

	p := newProjection(bounds(boundaries), svgWidth, svgHeight, svgPadding)
	for _, b := range boundaries {
		bb := b.Geometry.Bound()
		for _, pt := range []orb.Point{bb.Min, bb.Max} {
			x, y := p.point(pt)
			assert.GreaterOrEqual(t, x, float64(svgPadding)-0.001)
			assert.LessOrEqual(t, x, float64(svgWidth-svgPadding)+0.001)
			assert.GreaterOrEqual(t, y, float64(svgPadding)-0.001)
			assert.LessOrEqual(t, y, float64(svgHeight-svgPadding)+0.001)
		}
	}
}

func newTestRenderer(t *testing.T, screenshot bool) (*Renderer, *config.Paths) {
	t.Helper()

	boundaries, err := ParseBoundaries([]byte(sampleGeoJSON))
	require.NoError(t, err)

	paths := config.NewPaths(t.TempDir())
	cfg := config.Default().Maps
	cfg.Screenshot = screenshot
	return NewRenderer(paths, cfg, boundaries), paths
}

func TestRenderer_RenderAll(t *testing.T) {
	r, paths := newTestRenderer(t, true)

	var captured []string
	r.WithCapture(func(ctx context.Context, htmlPath, pngPath string, opts CaptureOptions) error {
		captured = append(captured, filepath.Base(htmlPath))
		assert.Equal(t, config.DefaultCaptureWidth, opts.Width)
		return os.WriteFile(pngPath, []byte("png"), 0644)
	})

	artifacts, err := r.RenderAll(context.Background(), sampleRates())
	require.NoError(t, err)
	require.Len(t, artifacts, 3)

	assert.Equal(t, []string{"permit_perc_map.html", "handgun_perc_map.html", "longgun_perc_map.html"}, captured)
	for _, a := range artifacts {
		assert.FileExists(t, a.HTMLPath)
		assert.FileExists(t, a.PNGPath)
		assert.Equal(t, paths.MapsDir, filepath.Dir(a.HTMLPath))
	}
}

func TestRenderer_CaptureFailureKeepsHTML(t *testing.T) {
	r, _ := newTestRenderer(t, true)
	r.WithCapture(func(context.Context, string, string, CaptureOptions) error {
		return errors.New("chrome not found")
	})

	art, err := r.Render(context.Background(), sampleRates(), DefaultLayers[0])
	require.NoError(t, err)
	assert.FileExists(t, art.HTMLPath)
	assert.Empty(t, art.PNGPath)
}

func TestRenderer_ScreenshotDisabled(t *testing.T) {
	r, _ := newTestRenderer(t, false)
	r.WithCapture(func(context.Context, string, string, CaptureOptions) error {
		t.Fatal("capture must not run")
		return nil
	})

	art, err := r.Render(context.Background(), sampleRates(), DefaultLayers[1])
	require.NoError(t, err)
	assert.Empty(t, art.PNGPath)
}

func TestRenderer_Cancelled(t *testing.T) {
	r, _ := newTestRenderer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RenderAll(ctx, sampleRates())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCapture_Chrome(t *testing.T) {
	if os.Getenv("GUNSTATS_CHROME_TESTS") != "1" {
		t.Skip("set GUNSTATS_CHROME_TESTS=1 to run browser capture")
	}

	r, _ := newTestRenderer(t, false)
	art, err := r.Render(context.Background(), sampleRates(), DefaultLayers[0])
	require.NoError(t, err)

	png := strings.TrimSuffix(art.HTMLPath, ".html") + ".png"
	opts := CaptureOptions{Headless: true, Width: 800, Height: 600}
	require.NoError(t, Capture(context.Background(), art.HTMLPath, png, opts))

	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))
}
