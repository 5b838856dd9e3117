// Package app wires configuration into the conversion pipelines shared by
// the CLI and the service.
package app

import (
	"log/slog"

	"github.com/couchcryptid/sea-ice-etl/internal/adapter/geojson"
	"github.com/couchcryptid/sea-ice-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/sea-ice-etl/internal/adapter/render"
	"github.com/couchcryptid/sea-ice-etl/internal/config"
	"github.com/couchcryptid/sea-ice-etl/internal/domain"
	"github.com/couchcryptid/sea-ice-etl/internal/observability"
	"github.com/couchcryptid/sea-ice-etl/internal/pipeline"
)

// Pipelines holds both conversion pipelines built from one configuration.
type Pipelines struct {
	Exporter *pipeline.PointExporter
	Renderer *pipeline.MapRenderer
}

// NewPipelines builds the loader, serializer, and renderer for cfg.
func NewPipelines(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) Pipelines {
	d := cfg.Dataset
	rng := ValidRange(cfg)

	loader := netcdf.NewLoader(netcdf.VariableNames{Lat: d.LatVar, Lon: d.LonVar, Field: d.FieldVar}, d.TimeIndex, logger)

	serializers := func(date string) pipeline.PointSerializer {
		return geojson.NewSerializer(geojson.Properties{
			ValueLabel: d.ValueLabel,
			DateLabel:  d.DateLabel,
			Date:       date,
		})
	}
	exporter := pipeline.NewPointExporter(loader, serializers,
		pipeline.ExportOptions{Range: rng, SampleStep: d.SampleStep}, logger, metrics)

	layers := render.NewLayerCache(cfg.Basemap.CacheSize, metrics)
	renderer := render.NewRenderer(RenderOptions(cfg), layers, logger)
	mapRenderer := pipeline.NewMapRenderer(loader, renderer,
		pipeline.RenderOptions{Range: rng, Title: cfg.Render.Title}, logger, metrics)

	return Pipelines{Exporter: exporter, Renderer: mapRenderer}
}

// ValidRange returns the configured valid value interval.
func ValidRange(cfg *config.Config) domain.ValidRange {
	return domain.ValidRange{Min: cfg.Dataset.ValidMin, Max: cfg.Dataset.ValidMax}
}

// RenderOptions maps the render and basemap sections onto renderer options.
func RenderOptions(cfg *config.Config) render.Options {
	r := cfg.Render
	return render.Options{
		WidthInches:        r.WidthInches,
		HeightInches:       r.HeightInches,
		DPI:                r.DPI,
		CentralLongitude:   r.CentralLongitude,
		MinLatitude:        r.MinLatitude,
		ColorMap:           r.ColorMap,
		ReverseColorMap:    r.ReverseColorMap,
		Alpha:              r.Alpha,
		Range:              ValidRange(cfg),
		ColorBarLabel:      r.ColorBarLabel,
		TrimPadInches:      r.TrimPadInches,
		LandShapefile:      cfg.Basemap.Land,
		CoastlineShapefile: cfg.Basemap.Coastline,
		BordersShapefile:   cfg.Basemap.Borders,
	}
}
