package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
	"github.com/couchcryptid/sea-ice-etl/internal/observability"
)

// DatasetLoader reads a grid from a dataset file.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (domain.Grid, error)
}

// PointSerializer writes retained cells as a point collection.
type PointSerializer interface {
	WriteFile(path string, cells []domain.Cell) (domain.Artifact, error)
}

// SerializerFactory returns a serializer stamping features with date.
type SerializerFactory func(date string) PointSerializer

// ExportOptions configures the grid-to-points pipeline.
type ExportOptions struct {
	Range      domain.ValidRange
	SampleStep int
}

// ExportRequest names one dataset and its output file.
type ExportRequest struct {
	InputPath  string
	OutputPath string
	// Date overrides the date parsed from the input file name.
	Date string
}

// ExportResult reports the artifact written and the exported value range.
type ExportResult struct {
	Artifact domain.Artifact
	Summary  domain.Summary
	Date     string
}

// PointExporter loads a dataset, keeps valid cells in row-major order, and
// writes them as GeoJSON points.
type PointExporter struct {
	loader        DatasetLoader
	newSerializer SerializerFactory
	opts          ExportOptions
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewPointExporter creates a PointExporter.
func NewPointExporter(loader DatasetLoader, newSerializer SerializerFactory, opts ExportOptions, logger *slog.Logger, metrics *observability.Metrics) *PointExporter {
	return &PointExporter{
		loader:        loader,
		newSerializer: newSerializer,
		opts:          opts,
		logger:        logger,
		metrics:       metrics,
	}
}

// Export runs the pipeline once. Nothing is written if loading fails.
func (e *PointExporter) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	start := time.Now()
	logger := e.logger.With("pipeline", "export", "input", req.InputPath)

	grid, err := e.loader.Load(ctx, req.InputPath)
	if err != nil {
		return ExportResult{}, fmt.Errorf("load dataset: %w", err)
	}
	observeStage(e.metrics, "load", start)
	e.metrics.CellsRead.Add(float64(grid.Values.Len()))
	logger.Info("dataset loaded", "rows", grid.Values.Rows, "cols", grid.Values.Cols, "variable", grid.Variable)

	stageStart := time.Now()
	cells := domain.Flatten(grid, e.opts.Range)
	exported := domain.Sample(cells, e.opts.SampleStep)
	observeStage(e.metrics, "flatten", stageStart)
	e.metrics.CellsRetained.Add(float64(len(cells)))

	summary := domain.Summarize(exported)
	logger.Info("cells retained",
		"total", grid.Values.Len(),
		"retained", len(cells),
		"exported", len(exported),
		"sample_step", e.opts.SampleStep,
		"min", summary.Min,
		"max", summary.Max,
		"mean", summary.Mean,
	)

	if err := ctx.Err(); err != nil {
		return ExportResult{}, err
	}

	date := resolveDate(logger, req.InputPath, req.Date)
	stageStart = time.Now()
	art, err := e.newSerializer(date).WriteFile(req.OutputPath, exported)
	if err != nil {
		return ExportResult{}, err
	}
	observeStage(e.metrics, "serialize", stageStart)
	e.metrics.ArtifactsWritten.WithLabelValues(art.Kind).Inc()

	logger.Info("geojson written",
		"path", art.Path,
		"features", art.Records,
		"bytes", art.Bytes,
		"duration", time.Since(start),
	)
	return ExportResult{Artifact: art, Summary: summary, Date: date}, nil
}

// resolveDate picks the product date, warning when none can be found.
func resolveDate(logger *slog.Logger, inputPath, override string) string {
	date, ok := domain.DataDate(inputPath, override)
	if !ok {
		logger.Warn("data date unknown, leaving it empty; set SEAICE_DATE to override")
	}
	return date
}

func observeStage(m *observability.Metrics, stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
