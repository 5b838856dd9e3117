package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
	"github.com/couchcryptid/sea-ice-etl/internal/fsutil"
)

// Options holds every layout and styling constant of the map.
type Options struct {
	WidthInches  float64
	HeightInches float64
	DPI          int

	CentralLongitude float64
	MinLatitude      float64

	ColorMap        string
	ReverseColorMap bool
	Alpha           float64
	Range           domain.ValidRange

	// ColorBarLabel overrides the label derived from the grid attributes.
	ColorBarLabel string
	TrimPadInches float64

	LandShapefile      string
	CoastlineShapefile string
	BordersShapefile   string
}

var (
	landColor      = color.Black
	coastlineStyle = draw.LineStyle{Color: color.White, Width: vg.Points(0.5)}
	bordersStyle   = draw.LineStyle{Color: color.Gray{Y: 128}, Width: vg.Points(0.3)}
	gridStyle      = draw.LineStyle{Color: color.NRGBA{R: 128, G: 128, B: 128, A: 128}, Width: vg.Points(0.5), Dashes: []vg.Length{vg.Points(2), vg.Points(2)}}
	gridLabelColor = color.Gray{Y: 96}
)

// Renderer draws a masked grid as a north polar stereographic map.
type Renderer struct {
	opts   Options
	proj   PolarStereographic
	layers *LayerCache
	logger *slog.Logger
}

// NewRenderer creates a Renderer. layers may be shared between renderers.
func NewRenderer(opts Options, layers *LayerCache, logger *slog.Logger) *Renderer {
	return &Renderer{
		opts:   opts,
		proj:   NewPolarStereographic(opts.CentralLongitude),
		layers: layers,
		logger: logger,
	}
}

// Render draws g, whose values must already be masked, and returns the
// trimmed raster.
func (r *Renderer) Render(ctx context.Context, g domain.Grid, title string) (image.Image, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	o := r.opts
	cmap, err := NewColorMap(o.ColorMap, o.ReverseColorMap, o.Range.Min, o.Range.Max, o.Alpha)
	if err != nil {
		return nil, err
	}

	mapPlot, err := r.mapPlot(ctx, g, cmap)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	titlePlot := plot.New()
	titlePlot.HideAxes()
	titlePlot.Title.Text = title
	titlePlot.Title.TextStyle.Font.Size = vg.Points(14)

	barPlot := plot.New()
	barPlot.HideY()
	barPlot.X.Label.Text = ColorBarLabel(o.ColorBarLabel, g)
	barPlot.Add(&plotter.ColorBar{ColorMap: cmap, Colors: 256})

	w := vg.Length(o.WidthInches) * vg.Inch
	h := vg.Length(o.HeightInches) * vg.Inch
	titleH := h * 0.09
	barH := h * 0.11
	side := min(w, h-titleH-barH)
	if side <= 0 {
		return nil, fmt.Errorf("canvas %gx%g in is too small", o.WidthInches, o.HeightInches)
	}
	padX := (w - side) / 2

	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(o.DPI))
	dc := draw.New(img)
	mapPlot.Draw(draw.Crop(dc, padX, -padX, barH, -(h - barH - side)))
	titlePlot.Draw(draw.Crop(dc, 0, 0, barH+side, 0))
	barPlot.Draw(draw.Crop(dc, w*0.1, -w*0.1, 0, -(h - barH)))

	pad := int(math.Round(o.TrimPadInches * float64(o.DPI)))
	return trimWhitespace(img.Image(), pad), nil
}

// WriteFile renders g and atomically replaces path with the PNG.
func (r *Renderer) WriteFile(ctx context.Context, path string, g domain.Grid, title string) (domain.Artifact, error) {
	start := time.Now()
	img, err := r.Render(ctx, g, title)
	if err != nil {
		return domain.Artifact{}, err
	}
	n, err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("write png %s: %w", path, err)
	}
	r.logger.Debug("map rendered",
		"path", path,
		"width_px", img.Bounds().Dx(),
		"height_px", img.Bounds().Dy(),
		"duration", time.Since(start),
	)
	return domain.Artifact{
		Kind:    domain.OutputPNG,
		Path:    path,
		Records: domain.CountValid(g.Values, r.opts.Range),
		Bytes:   n,
	}, nil
}

func (r *Renderer) mapPlot(ctx context.Context, g domain.Grid, cmap palette.ColorMap) (*plot.Plot, error) {
	o := r.opts
	extent := r.proj.Extent(o.MinLatitude)

	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = -extent, extent
	p.Y.Min, p.Y.Max = -extent, extent

	land, err := r.basemap(o.LandShapefile, FillLayer, "land")
	if err != nil {
		return nil, err
	}
	if land != nil {
		p.Add(&layerPlotter{layer: land, fill: landColor})
	}

	p.Add(newMesh(g.Lat.Data, g.Lon.Data, g.Values.Data, g.Values.Rows, g.Values.Cols, r.proj, cmap))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	coast, err := r.basemap(o.CoastlineShapefile, LineLayer, "coastline")
	if err != nil {
		return nil, err
	}
	if coast != nil {
		p.Add(&layerPlotter{layer: coast, line: coastlineStyle})
	}
	borders, err := r.basemap(o.BordersShapefile, LineLayer, "borders")
	if err != nil {
		return nil, err
	}
	if borders != nil {
		p.Add(&layerPlotter{layer: borders, line: bordersStyle})
	}

	p.Add(&layerPlotter{layer: Graticule(r.proj, o.MinLatitude, 10, 30), line: gridStyle})
	labels, err := r.graticuleLabels()
	if err != nil {
		return nil, err
	}
	p.Add(labels)
	return p, nil
}

// ColorBarLabel returns override when set, otherwise "<long_name> (<units>)"
// from the grid, falling back to the variable name.
func ColorBarLabel(override string, g domain.Grid) string {
	if override != "" {
		return override
	}
	name := g.LongName
	if name == "" {
		name = g.Variable
	}
	switch {
	case name != "" && g.Units != "":
		return fmt.Sprintf("%s (%s)", name, g.Units)
	case name != "":
		return name
	default:
		return g.Units
	}
}

// basemap loads one layer. A layer that cannot be drawn is skipped with a
// warning; only a file that exists but fails to decode is an error.
func (r *Renderer) basemap(path string, kind LayerKind, name string) (*Layer, error) {
	if path == "" {
		r.logger.Warn("basemap layer not configured, skipping", "layer", name)
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("basemap layer not found, skipping; run `seaice basemap` to download it",
			"layer", name, "path", path)
		return nil, nil
	}
	layer, err := r.layers.Load(path, kind, r.proj, r.opts.MinLatitude)
	if err != nil {
		return nil, err
	}
	if layer.Empty() {
		r.logger.Warn("basemap layer has no features inside the map, skipping",
			"layer", name, "path", path, "min_lat", r.opts.MinLatitude)
		return nil, nil
	}
	return layer, nil
}

func (r *Renderer) graticuleLabels() (*plotter.Labels, error) {
	o := r.opts
	var xys plotter.XYs
	var text []string

	labelLat := o.MinLatitude + 2
	for lon := -150.0; lon <= 180; lon += 30 {
		x, y := r.proj.Forward(lon, labelLat)
		xys = append(xys, plotter.XY{X: x, Y: y})
		text = append(text, LonLabel(lon))
	}
	labelLon := o.CentralLongitude + 45
	for lat := math.Ceil(o.MinLatitude/10) * 10; lat < 90; lat += 10 {
		x, y := r.proj.Forward(labelLon, lat)
		xys = append(xys, plotter.XY{X: x, Y: y})
		text = append(text, LatLabel(lat))
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, fmt.Errorf("graticule labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = gridLabelColor
	}
	return labels, nil
}
