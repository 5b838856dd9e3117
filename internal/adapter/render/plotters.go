package render

import (
	"image/color"
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// mesh draws a curvilinear grid as filled quads, like a pcolormesh. Corners
// are stored row-major on a (rows+1) x (cols+1) lattice in map meters.
type mesh struct {
	rows, cols int
	cornerX    []float64
	cornerY    []float64
	values     []float64
	cmap       palette.ColorMap
}

// newMesh projects cell centres and derives their corners.
func newMesh(lat, lon, values []float64, rows, cols int, p PolarStereographic, cmap palette.ColorMap) *mesh {
	xs := make([]float64, len(lat))
	ys := make([]float64, len(lat))
	for k := range lat {
		if math.IsNaN(lat[k]) || math.IsNaN(lon[k]) {
			xs[k], ys[k] = math.NaN(), math.NaN()
			continue
		}
		xs[k], ys[k] = p.Forward(lon[k], lat[k])
	}
	cx, cy := cellCorners(xs, ys, rows, cols)
	return &mesh{rows: rows, cols: cols, cornerX: cx, cornerY: cy, values: values, cmap: cmap}
}

// cellCorners averages the four centres around each lattice node. Centres
// outside the grid are extrapolated linearly from the nearest two.
func cellCorners(xs, ys []float64, rows, cols int) (cx, cy []float64) {
	center := func(v []float64, i, j int) float64 {
		ci, cj := clampIndex(i, rows), clampIndex(j, cols)
		base := v[ci*cols+cj]
		di, dj := i-ci, j-cj
		if di != 0 && rows > 1 {
			next := clampIndex(ci-di, rows)
			base += v[ci*cols+cj] - v[next*cols+cj]
		}
		if dj != 0 && cols > 1 {
			next := clampIndex(cj-dj, cols)
			base += v[ci*cols+cj] - v[ci*cols+next]
		}
		return base
	}

	n := (rows + 1) * (cols + 1)
	cx = make([]float64, n)
	cy = make([]float64, n)
	for i := 0; i <= rows; i++ {
		for j := 0; j <= cols; j++ {
			k := i*(cols+1) + j
			cx[k] = (center(xs, i-1, j-1) + center(xs, i-1, j) + center(xs, i, j-1) + center(xs, i, j)) / 4
			cy[k] = (center(ys, i-1, j-1) + center(ys, i-1, j) + center(ys, i, j-1) + center(ys, i, j)) / 4
		}
	}
	return cx, cy
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}

// Plot implements plot.Plotter. Missing cells are left transparent.
func (m *mesh) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	stride := m.cols + 1
	quad := make([]vg.Point, 4)
	for i := range m.rows {
		for j := range m.cols {
			v := m.values[i*m.cols+j]
			if math.IsNaN(v) {
				continue
			}
			clr, err := m.cmap.At(v)
			if err != nil {
				continue
			}
			corners := [4]int{i*stride + j, i*stride + j + 1, (i+1)*stride + j + 1, (i+1)*stride + j}
			ok := true
			for n, k := range corners {
				x, y := m.cornerX[k], m.cornerY[k]
				if math.IsNaN(x) || math.IsNaN(y) {
					ok = false
					break
				}
				quad[n] = vg.Point{X: trX(x), Y: trY(y)}
			}
			if !ok {
				continue
			}
			c.FillPolygon(clr, c.ClipPolygonXY(quad))
		}
	}
}

// layerPlotter draws a basemap layer. Fill is used for polygons; Line for
// paths and, when its width is positive, polygon outlines.
type layerPlotter struct {
	layer *Layer
	fill  color.Color
	line  draw.LineStyle
}

// Plot implements plot.Plotter.
func (lp *layerPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	toVG := func(pts []geom.Point) []vg.Point {
		out := make([]vg.Point, len(pts))
		for i, pt := range pts {
			out[i] = vg.Point{X: trX(pt.X), Y: trY(pt.Y)}
		}
		return out
	}

	for _, rings := range lp.layer.Polygons {
		var path vg.Path
		for _, ring := range rings {
			clipped := c.ClipPolygonXY(toVG(ring))
			if len(clipped) < 3 {
				continue
			}
			path.Move(clipped[0])
			for _, pt := range clipped[1:] {
				path.Line(pt)
			}
			path.Close()
		}
		if lp.fill != nil && len(path) > 0 {
			c.SetColor(lp.fill)
			c.Fill(path)
		}
		if lp.line.Width > 0 {
			for _, ring := range rings {
				pts := toVG(ring)
				pts = append(pts, pts[0])
				c.StrokeLines(lp.line, c.ClipLinesXY(pts)...)
			}
		}
	}

	if lp.line.Width <= 0 {
		return
	}
	for _, line := range lp.layer.Lines {
		c.StrokeLines(lp.line, c.ClipLinesXY(toVG(line))...)
	}
}
