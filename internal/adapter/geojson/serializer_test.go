package geojson

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
)

var testCells = []domain.Cell{
	{Lat: 80.25, Lon: -45.5, Value: 0},
	{Lat: 81, Lon: 10, Value: 33.3333},
	{Lat: 89.9, Lon: 179.99, Value: 100},
}

func TestSerializer_Collection(t *testing.T) {
	s := NewSerializer(Properties{Date: "2022-01-01"})
	fc := s.Collection(testCells)

	require.Len(t, fc.Features, 3)
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		require.True(t, ok)
		assert.InDelta(t, testCells[i].Lon, pt.Lon(), 0, "feature %d lon", i)
		assert.InDelta(t, testCells[i].Lat, pt.Lat(), 0, "feature %d lat", i)
		assert.Equal(t, "2022-01-01", f.Properties[DefaultDateLabel])
	}
	assert.Equal(t, json.Number("33.33"), fc.Features[1].Properties[DefaultValueLabel])
}

func TestSerializer_Encode(t *testing.T) {
	s := NewSerializer(Properties{Date: "2022-01-01"})

	var buf bytes.Buffer
	require.NoError(t, s.Encode(&buf, testCells))
	out := buf.String()

	assert.Contains(t, out, `"海冰密集度(%)":0.00`)
	assert.Contains(t, out, `"海冰密集度(%)":33.33`)
	assert.Contains(t, out, `"海冰密集度(%)":100.00`)
	assert.Contains(t, out, `"数据日期":"2022-01-01"`)
	assert.NotContains(t, out, `\u`)

	values := regexp.MustCompile(`"海冰密集度\(%\)":([0-9.]+)`).FindAllStringSubmatch(out, -1)
	require.Len(t, values, 3)
	twoDecimals := regexp.MustCompile(`^\d+\.\d{2}$`)
	for _, v := range values {
		assert.Regexp(t, twoDecimals, v[1])
	}

	fc, err := orbjson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	pt := fc.Features[0].Geometry.(orb.Point)
	assert.Equal(t, orb.Point{-45.5, 80.25}, pt)
}

func TestSerializer_CustomLabels(t *testing.T) {
	s := NewSerializer(Properties{ValueLabel: "ice_conc", DateLabel: "date", Date: "2022-01-02", Precision: 1})

	var buf bytes.Buffer
	require.NoError(t, s.Encode(&buf, testCells[1:2]))

	assert.Contains(t, buf.String(), `"ice_conc":33.3`)
	assert.Contains(t, buf.String(), `"date":"2022-01-02"`)
}

func TestSerializer_EmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSerializer(Properties{}).Encode(&buf, nil))

	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, buf.String())
}

func TestSerializer_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sea_ice_20220101.geojson")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than needed"), 0o644))

	art, err := NewSerializer(Properties{Date: "2022-01-01"}).WriteFile(path, testCells)
	require.NoError(t, err)

	assert.Equal(t, domain.OutputGeoJSON, art.Kind)
	assert.Equal(t, 3, art.Records)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), art.Bytes)
	assert.NotContains(t, string(data), "stale")

	fc, err := orbjson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 3)
}
