package geojson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
	"github.com/couchcryptid/sea-ice-etl/internal/fsutil"
)

// Default property labels, matching the downstream consumers of the export.
const (
	DefaultValueLabel = "海冰密集度(%)"
	DefaultDateLabel  = "数据日期"
	DefaultPrecision  = 2
)

// Properties configures the per-feature attributes.
type Properties struct {
	ValueLabel string
	DateLabel  string
	Date       string
	Precision  int
}

// Serializer renders cells as a GeoJSON FeatureCollection of points.
type Serializer struct {
	props Properties
}

// NewSerializer creates a Serializer. Empty labels fall back to the defaults.
func NewSerializer(props Properties) *Serializer {
	if props.ValueLabel == "" {
		props.ValueLabel = DefaultValueLabel
	}
	if props.DateLabel == "" {
		props.DateLabel = DefaultDateLabel
	}
	if props.Precision <= 0 {
		props.Precision = DefaultPrecision
	}
	return &Serializer{props: props}
}

// Collection builds one Point feature per cell in input order. Coordinates
// are (lon, lat); the value is a fixed-precision JSON number.
func (s *Serializer) Collection(cells []domain.Cell) *orbjson.FeatureCollection {
	fc := orbjson.NewFeatureCollection()
	fc.Features = make([]*orbjson.Feature, 0, len(cells))
	for _, c := range cells {
		f := orbjson.NewFeature(orb.Point{c.Lon, c.Lat})
		f.Properties[s.props.ValueLabel] = json.Number(domain.FormatValue(c.Value, s.props.Precision))
		f.Properties[s.props.DateLabel] = s.props.Date
		fc.Append(f)
	}
	return fc
}

// Encode writes the collection as UTF-8 JSON with non-ASCII text kept literal.
func (s *Serializer) Encode(w io.Writer, cells []domain.Cell) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.Collection(cells)); err != nil {
		return fmt.Errorf("encode feature collection: %w", err)
	}
	return nil
}

// WriteFile atomically replaces path with the encoded collection.
func (s *Serializer) WriteFile(path string, cells []domain.Cell) (domain.Artifact, error) {
	n, err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		return s.Encode(w, cells)
	})
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("write geojson %s: %w", path, err)
	}
	return domain.Artifact{
		Kind:    domain.OutputGeoJSON,
		Path:    path,
		Records: len(cells),
		Bytes:   n,
	}, nil
}
