package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
	"github.com/couchcryptid/sea-ice-etl/internal/observability"
)

// MapWriter draws a masked grid to an image file.
type MapWriter interface {
	WriteFile(ctx context.Context, path string, g domain.Grid, title string) (domain.Artifact, error)
}

// DatePlaceholder in a title template is replaced by the product date.
const DatePlaceholder = "{date}"

// RenderOptions configures the grid-to-image pipeline.
type RenderOptions struct {
	Range domain.ValidRange
	// Title may contain DatePlaceholder.
	Title string
}

// RenderRequest names one dataset and its output image.
type RenderRequest struct {
	InputPath  string
	OutputPath string
	Date       string
}

// RenderResult reports the artifact written.
type RenderResult struct {
	Artifact domain.Artifact
	Masked   int
	Date     string
}

// MapRenderer loads a dataset, masks invalid cells, and renders a map.
type MapRenderer struct {
	loader  DatasetLoader
	writer  MapWriter
	opts    RenderOptions
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewMapRenderer creates a MapRenderer.
func NewMapRenderer(loader DatasetLoader, writer MapWriter, opts RenderOptions, logger *slog.Logger, metrics *observability.Metrics) *MapRenderer {
	return &MapRenderer{
		loader:  loader,
		writer:  writer,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Render runs the pipeline once. Nothing is written if loading fails.
func (r *MapRenderer) Render(ctx context.Context, req RenderRequest) (RenderResult, error) {
	start := time.Now()
	logger := r.logger.With("pipeline", "render", "input", req.InputPath)

	grid, err := r.loader.Load(ctx, req.InputPath)
	if err != nil {
		return RenderResult{}, fmt.Errorf("load dataset: %w", err)
	}
	observeStage(r.metrics, "load", start)
	r.metrics.CellsRead.Add(float64(grid.Values.Len()))
	logger.Info("dataset loaded", "rows", grid.Values.Rows, "cols", grid.Values.Cols, "variable", grid.Variable)

	stageStart := time.Now()
	grid.Values = domain.Mask(grid.Values, r.opts.Range)
	valid := domain.CountValid(grid.Values, r.opts.Range)
	masked := grid.Values.Len() - valid
	observeStage(r.metrics, "mask", stageStart)
	r.metrics.CellsMasked.Add(float64(masked))
	logger.Info("invalid cells masked", "valid", valid, "masked", masked)

	date := resolveDate(logger, req.InputPath, req.Date)
	title := FormatTitle(r.opts.Title, date)

	stageStart = time.Now()
	art, err := r.writer.WriteFile(ctx, req.OutputPath, grid, title)
	if err != nil {
		return RenderResult{}, fmt.Errorf("render map: %w", err)
	}
	observeStage(r.metrics, "render", stageStart)
	r.metrics.ArtifactsWritten.WithLabelValues(art.Kind).Inc()

	logger.Info("png written",
		"path", art.Path,
		"bytes", art.Bytes,
		"duration", time.Since(start),
	)
	return RenderResult{Artifact: art, Masked: masked, Date: date}, nil
}

// FormatTitle substitutes the date into a title template.
func FormatTitle(tmpl, date string) string {
	return strings.TrimSpace(strings.ReplaceAll(tmpl, DatePlaceholder, date))
}
