package render

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
)

// LayerKind selects how a basemap layer is drawn.
type LayerKind int

const (
	// FillLayer draws closed rings as filled areas (land).
	FillLayer LayerKind = iota
	// LineLayer strokes paths (coastlines, borders, graticule).
	LineLayer
)

func (k LayerKind) String() string {
	if k == FillLayer {
		return "fill"
	}
	return "line"
}

// Layer is a set of projected geometries in map meters.
type Layer struct {
	Kind LayerKind
	// Polygons holds one entry per polygon; each is a list of rings.
	Polygons [][][]geom.Point
	// Lines holds open or closed paths.
	Lines [][]geom.Point
}

// Empty reports whether the layer has nothing to draw.
func (l *Layer) Empty() bool {
	return len(l.Polygons) == 0 && len(l.Lines) == 0
}

// southMargin includes features that start this many degrees south of the
// map edge so clipping, not culling, decides what shows.
const southMargin = 10.0

// LoadShapefile decodes a lon/lat shapefile, drops features entirely south
// of minLat, and projects the rest.
func LoadShapefile(path string, kind LayerKind, p PolarStereographic, minLat float64) (*Layer, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer dec.Close()

	layer := &Layer{Kind: kind}
	trans := p.Transformer()
	cutoff := minLat - southMargin
	for {
		g, _, more := dec.DecodeRowFields()
		if !more {
			break
		}
		if g == nil {
			continue
		}
		if b := g.Bounds(); b == nil || b.Max.Y < cutoff {
			continue
		}
		pg, err := g.Transform(trans)
		if err != nil {
			return nil, fmt.Errorf("project shapefile %s: %w", path, err)
		}
		layer.add(pg)
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("read shapefile %s: %w", path, err)
	}
	return layer, nil
}

func (l *Layer) add(g geom.Geom) {
	switch t := g.(type) {
	case geom.Polygon:
		l.addPolygon(t)
	case geom.MultiPolygon:
		for _, poly := range t {
			l.addPolygon(poly)
		}
	case geom.LineString:
		l.Lines = append(l.Lines, []geom.Point(t))
	case geom.MultiLineString:
		for _, ls := range t {
			l.Lines = append(l.Lines, []geom.Point(ls))
		}
	}
}

// addPolygon records rings for filling, or as outlines on a line layer.
func (l *Layer) addPolygon(poly geom.Polygon) {
	rings := make([][]geom.Point, 0, len(poly))
	for _, r := range poly {
		if len(r) < 3 {
			continue
		}
		rings = append(rings, []geom.Point(r))
	}
	if len(rings) == 0 {
		return
	}
	if l.Kind == LineLayer {
		l.Lines = append(l.Lines, rings...)
		return
	}
	l.Polygons = append(l.Polygons, rings)
}

// Graticule returns projected parallels every latStep degrees from minLat
// and meridians every lonStep degrees.
func Graticule(p PolarStereographic, minLat, latStep, lonStep float64) *Layer {
	layer := &Layer{Kind: LineLayer}
	first := math.Ceil(minLat/latStep) * latStep
	for lat := first; lat < 90; lat += latStep {
		ring := make([]geom.Point, 0, 361)
		for lon := -180.0; lon <= 180; lon++ {
			x, y := p.Forward(lon, lat)
			ring = append(ring, geom.Point{X: x, Y: y})
		}
		layer.Lines = append(layer.Lines, ring)
	}
	for lon := -180.0; lon < 180; lon += lonStep {
		line := make([]geom.Point, 0, 2)
		for _, lat := range []float64{minLat - southMargin, 90} {
			x, y := p.Forward(lon, lat)
			line = append(line, geom.Point{X: x, Y: y})
		}
		layer.Lines = append(layer.Lines, line)
	}
	return layer
}

// LatLabel formats a parallel, e.g. 70 -> "70°N".
func LatLabel(lat float64) string {
	switch {
	case lat > 0:
		return fmt.Sprintf("%g°N", lat)
	case lat < 0:
		return fmt.Sprintf("%g°S", -lat)
	default:
		return "0°"
	}
}

// LonLabel formats a meridian, e.g. -90 -> "90°W".
func LonLabel(lon float64) string {
	lon = normalizeLon(lon)
	switch {
	case lon == -180 || lon == 180:
		return "180°"
	case lon > 0:
		return fmt.Sprintf("%g°E", lon)
	case lon < 0:
		return fmt.Sprintf("%g°W", -lon)
	default:
		return "0°"
	}
}
