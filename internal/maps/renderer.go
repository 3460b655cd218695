package maps

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"os"

	"gunstats/internal/config"
	apperrors "gunstats/internal/errors"
	"gunstats/pkg/contracts/domain"
)

// Layer is one map drawn from a rate column
type Layer struct {
	Column string
	Title  string
	File   string
}

// DefaultLayers are the three per-capita maps
var DefaultLayers = []Layer{
	{Column: domain.ColumnPermitPerc, Title: "Permit Percentage", File: "permit_perc_map"},
	{Column: domain.ColumnHandgunPerc, Title: "Handgun Percentage", File: "handgun_perc_map"},
	{Column: domain.ColumnLongGunPerc, Title: "Long Gun Percentage", File: "longgun_perc_map"},
}

// Artifact records the files written for a layer. PNGPath is empty when no
// screenshot was taken.
type Artifact struct {
	Column   string
	HTMLPath string
	PNGPath  string
}

// CaptureFunc takes a screenshot of a rendered page
type CaptureFunc func(ctx context.Context, htmlPath, pngPath string, opts CaptureOptions) error

// Renderer writes choropleth pages under the maps directory
type Renderer struct {
	paths      *config.Paths
	cfg        config.MapsConfig
	boundaries []Boundary
	capture    CaptureFunc
}

// NewRenderer creates a renderer that captures with Chrome when cfg.Screenshot is set
func NewRenderer(paths *config.Paths, cfg config.MapsConfig, boundaries []Boundary) *Renderer {
	return &Renderer{
		paths:      paths,
		cfg:        cfg,
		boundaries: boundaries,
		capture:    Capture,
	}
}

// WithCapture replaces the screenshot function
func (r *Renderer) WithCapture(fn CaptureFunc) *Renderer {
	r.capture = fn
	return r
}

// Values extracts a percentage column keyed by state
func Values(rates []domain.RateRecord, column string) (map[string]float64, error) {
	values := make(map[string]float64, len(rates))
	for _, rec := range rates {
		v, ok := rec.Perc(column)
		if !ok {
			return nil, apperrors.NewSchemaError("unknown rate column").WithContext("column", column)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values[rec.State] = v
	}
	return values, nil
}

// Render draws one layer. A failed screenshot is logged and leaves the HTML in place.
func (r *Renderer) Render(ctx context.Context, rates []domain.RateRecord, layer Layer) (Artifact, error) {
	values, err := Values(rates, layer.Column)
	if err != nil {
		return Artifact{}, err
	}

	var buf bytes.Buffer
	if err := RenderChoropleth(&buf, r.boundaries, values, layer.Title); err != nil {
		return Artifact{}, err
	}

	if err := os.MkdirAll(r.paths.MapsDir, 0755); err != nil {
		return Artifact{}, apperrors.NewRenderError("failed to create maps directory", err)
	}

	art := Artifact{Column: layer.Column, HTMLPath: r.paths.GetMapPath(layer.File + ".html")}
	if err := os.WriteFile(art.HTMLPath, buf.Bytes(), 0644); err != nil {
		return Artifact{}, apperrors.NewRenderError("failed to write map", err).WithContext("path", art.HTMLPath)
	}

	slog.InfoContext(ctx, "Map rendered",
		slog.String("column", layer.Column),
		slog.String("html", art.HTMLPath),
		slog.Int("states", len(values)))

	if !r.cfg.Screenshot || r.capture == nil {
		return art, nil
	}

	png := r.paths.GetMapPath(layer.File + ".png")
	opts := CaptureOptions{
		Headless:   r.cfg.Headless,
		Width:      r.cfg.Width,
		Height:     r.cfg.Height,
		RenderWait: r.cfg.RenderWait,
	}
	if err := r.capture(ctx, art.HTMLPath, png, opts); err != nil {
		slog.WarnContext(ctx, "Map capture failed, keeping HTML only",
			slog.String("column", layer.Column),
			slog.String("error", err.Error()))
		return art, nil
	}
	art.PNGPath = png
	return art, nil
}

// RenderAll draws every default layer
func (r *Renderer) RenderAll(ctx context.Context, rates []domain.RateRecord) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(DefaultLayers))
	for _, layer := range DefaultLayers {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}
		art, err := r.Render(ctx, rates, layer)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, art)
	}
	return artifacts, nil
}
