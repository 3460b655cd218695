// Package maps renders per-capita rate tables as US state choropleths.
//
// Boundaries come from a GeoJSON FeatureCollection whose features carry the
// state name in properties.name. Each map is an HTML page with an inline SVG
// and a legend; when a browser is available the page is also captured to PNG.
//
//	boundaries, err := maps.LoadBoundaries(ctx, cfg.Data.GeoJSON)
//	r := maps.NewRenderer(paths, cfg.Maps, boundaries)
//	artifacts, err := r.RenderAll(ctx, rates)
package maps
