package maps

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"gunstats/internal/dataprocessing"
	apperrors "gunstats/internal/errors"
)

// Boundary is the outline of one state
type Boundary struct {
	Name     string
	Geometry orb.Geometry
}

// LoadBoundaries reads a GeoJSON FeatureCollection from a path or URL
func LoadBoundaries(ctx context.Context, source string) ([]Boundary, error) {
	rc, err := dataprocessing.OpenSource(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.NewResourceError("failed to read boundaries", err).WithContext("source", source)
	}

	boundaries, err := ParseBoundaries(data)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Loaded state boundaries",
		slog.String("source", source),
		slog.Int("states", len(boundaries)))
	return boundaries, nil
}

// ParseBoundaries keeps the named polygon features of a FeatureCollection,
// sorted by name.
func ParseBoundaries(data []byte) ([]Boundary, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, apperrors.NewParsingError("invalid GeoJSON", err)
	}

	boundaries := make([]Boundary, 0, len(fc.Features))
	for i, f := range fc.Features {
		name := f.Properties.MustString("name", "")
		if name == "" {
			slog.Debug("Skipping feature without name", slog.Int("feature", i))
			continue
		}
		if f.Geometry == nil {
			slog.Debug("Skipping feature without geometry", slog.String("name", name))
			continue
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			boundaries = append(boundaries, Boundary{Name: name, Geometry: f.Geometry})
		default:
			slog.Debug("Skipping non-polygon feature",
				slog.String("name", name),
				slog.String("type", f.Geometry.GeoJSONType()))
		}
	}

	if len(boundaries) == 0 {
		return nil, apperrors.NewSchemaError("GeoJSON has no named polygon features")
	}

	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Name < boundaries[j].Name })
	return boundaries, nil
}

// bounds returns the envelope of all boundaries
func bounds(boundaries []Boundary) orb.Bound {
	b := boundaries[0].Geometry.Bound()
	for _, bd := range boundaries[1:] {
		b = b.Union(bd.Geometry.Bound())
	}
	return b
}
