package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
)

// Converter implements Transformer by running the export and render
// pipelines for each dataset request.
type Converter struct {
	exporter  *PointExporter
	renderer  *MapRenderer
	outputDir string
	logger    *slog.Logger
}

// NewConverter creates a Converter. Outputs without an explicit path are
// written to outputDir, named after the input file.
func NewConverter(exporter *PointExporter, renderer *MapRenderer, outputDir string, logger *slog.Logger) *Converter {
	return &Converter{
		exporter:  exporter,
		renderer:  renderer,
		outputDir: outputDir,
		logger:    logger,
	}
}

func (c *Converter) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseDatasetRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	c.logger.Info("dataset request received", "request_id", req.ID, "input", req.InputPath, "outputs", req.Outputs)

	date, _ := domain.DataDate(req.InputPath, req.Date)
	var artifacts []domain.Artifact
	var summary *domain.Summary

	if req.Wants(domain.OutputGeoJSON) {
		out := req.GeoJSONPath
		if out == "" {
			out = domain.DefaultOutputPath(c.outputDir, req.InputPath, ".geojson")
		}
		res, err := c.exporter.Export(ctx, ExportRequest{InputPath: req.InputPath, OutputPath: out, Date: req.Date})
		if err != nil {
			return domain.OutputEvent{}, err
		}
		artifacts = append(artifacts, res.Artifact)
		summary = &res.Summary
	}

	if req.Wants(domain.OutputPNG) {
		out := req.PNGPath
		if out == "" {
			out = domain.DefaultOutputPath(c.outputDir, req.InputPath, ".png")
		}
		res, err := c.renderer.Render(ctx, RenderRequest{InputPath: req.InputPath, OutputPath: out, Date: req.Date})
		if err != nil {
			return domain.OutputEvent{}, err
		}
		artifacts = append(artifacts, res.Artifact)
	}

	result := domain.NewConversionResult(req, date, artifacts)
	result.Summary = summary
	return domain.SerializeResult(result)
}
