package maps

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	apperrors "gunstats/internal/errors"
)

const (
	svgWidth   = 960
	svgHeight  = 600
	svgPadding = 10
)

var pageTemplate = template.Must(template.New("choropleth").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 16px; }
path { stroke: #000; stroke-opacity: 0.2; stroke-width: 0.5; fill-opacity: 0.7; }
.legend { display: flex; gap: 4px; margin-top: 8px; font-size: 12px; }
.legend span { display: inline-block; width: 14px; height: 14px; vertical-align: middle; margin-right: 4px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<svg id="map" xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
{{- range .States}}
<path d="{{.D}}" fill="{{.Fill}}"><title>{{.Label}}</title></path>
{{- end}}
</svg>
<div class="legend">
{{- range .Legend}}
<div><span style="background: {{.Color}}"></span>{{.Label}}</div>
{{- end}}
</div>
{{- if .Missing}}
<p>No data: {{range $i, $s := .Missing}}{{if $i}}, {{end}}{{$s}}{{end}}</p>
{{- end}}
</body>
</html>
`))

type choroplethPage struct {
	Title   string
	Width   int
	Height  int
	States  []statePath
	Legend  []LegendEntry
	Missing []string
}

type statePath struct {
	D     string
	Fill  string
	Label string
}

// RenderChoropleth writes an HTML page shading each boundary by its value.
// Boundaries without a value get NoDataColor and are listed under the map.
func RenderChoropleth(w io.Writer, boundaries []Boundary, values map[string]float64, title string) error {
	if len(boundaries) == 0 {
		return apperrors.NewRenderError("no boundaries to render", nil)
	}

	present := make([]float64, 0, len(values))
	for _, v := range values {
		present = append(present, v)
	}
	scale := NewScale(present, YlGnBu)
	proj := newProjection(bounds(boundaries), svgWidth, svgHeight, svgPadding)

	page := choroplethPage{
		Title:  title,
		Width:  svgWidth,
		Height: svgHeight,
		States: make([]statePath, 0, len(boundaries)),
		Legend: scale.Legend(),
	}

	for _, b := range boundaries {
		v, ok := values[b.Name]
		fill, label := NoDataColor, b.Name+": no data"
		if ok {
			fill = scale.Color(v)
			label = fmt.Sprintf("%s: %.2f", b.Name, v)
		} else {
			page.Missing = append(page.Missing, b.Name)
		}
		page.States = append(page.States, statePath{
			D:     proj.path(b.Geometry),
			Fill:  fill,
			Label: label,
		})
	}
	sort.Strings(page.Missing)

	if err := pageTemplate.Execute(w, page); err != nil {
		return apperrors.NewRenderError("failed to render choropleth", err).WithContext("title", title)
	}
	return nil
}

// projection is an equirectangular projection scaled to fit the viewport,
// with longitudes shrunk by the cosine of the central latitude.
type projection struct {
	bound   orb.Bound
	k       float64
	lonK    float64
	padding float64
}

func newProjection(b orb.Bound, width, height, padding int) projection {
	lonK := math.Cos((b.Center().Lat()) * math.Pi / 180)
	dx := (b.Right() - b.Left()) * lonK
	dy := b.Top() - b.Bottom()

	innerW := float64(width - 2*padding)
	innerH := float64(height - 2*padding)
	k := 1.0
	if dx > 0 && dy > 0 {
		k = math.Min(innerW/dx, innerH/dy)
	}

	return projection{bound: b, k: k, lonK: lonK, padding: float64(padding)}
}

func (p projection) point(pt orb.Point) (float64, float64) {
	x := (pt.Lon()-p.bound.Left())*p.lonK*p.k + p.padding
	y := (p.bound.Top()-pt.Lat())*p.k + p.padding
	return x, y
}

// path converts a polygon or multipolygon to SVG path data
func (p projection) path(g orb.Geometry) string {
	var sb strings.Builder
	switch geom := g.(type) {
	case orb.Polygon:
		p.writePolygon(&sb, geom)
	case orb.MultiPolygon:
		for _, poly := range geom {
			p.writePolygon(&sb, poly)
		}
	}
	return sb.String()
}

func (p projection) writePolygon(sb *strings.Builder, poly orb.Polygon) {
	for _, ring := range poly {
		for i, pt := range ring {
			x, y := p.point(pt)
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(sb, "%s%.1f %.1f", cmd, x, y)
		}
		if len(ring) > 0 {
			sb.WriteString("Z")
		}
	}
}
