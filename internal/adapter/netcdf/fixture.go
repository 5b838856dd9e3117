package netcdf

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
)

const (
	// fixtureFill is the stored fill value for packed concentrations.
	fixtureFill int32 = -32767
	// fixtureScale packs percentages as hundredths.
	fixtureScale = 0.01
)

// Fixture is a small dataset laid out like an OSI SAF concentration file.
type Fixture struct {
	Names VariableNames
	Lat   domain.Field
	Lon   domain.Field
	// Steps holds one field per time step. NaN cells are written as fill.
	Steps []domain.Field
}

// WriteFixture writes f to path as a CDF classic file. The data variable is
// packed as int32 hundredths with a _FillValue, mirroring the real product.
func WriteFixture(path string, f Fixture) error {
	names := f.Names
	if names == (VariableNames{}) {
		names = DefaultVariables
	}
	if !f.Lat.SameShape(f.Lon) {
		return fmt.Errorf("%w: lat and lon differ", domain.ErrShapeMismatch)
	}
	for i, s := range f.Steps {
		if !s.SameShape(f.Lat) {
			return fmt.Errorf("%w: step %d differs from coordinates", domain.ErrShapeMismatch, i)
		}
	}

	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("create fixture %s: %w", path, err)
	}

	gridDims := []string{"yc", "xc"}
	vars := []struct {
		name string
		v    api.Variable
	}{
		{"time", api.Variable{
			Values:     timeAxis(len(f.Steps)),
			Dimensions: []string{"time"},
			Attributes: mustAttrs([]string{"units"}, map[string]any{"units": "seconds since 1978-01-01 00:00:00"}),
		}},
		{names.Lat, api.Variable{
			Values:     toFloat32Rows(f.Lat),
			Dimensions: gridDims,
			Attributes: mustAttrs([]string{"units", "standard_name"}, map[string]any{"units": "degrees_north", "standard_name": "latitude"}),
		}},
		{names.Lon, api.Variable{
			Values:     toFloat32Rows(f.Lon),
			Dimensions: gridDims,
			Attributes: mustAttrs([]string{"units", "standard_name"}, map[string]any{"units": "degrees_east", "standard_name": "longitude"}),
		}},
		{names.Field, api.Variable{
			Values:     packSteps(f.Steps),
			Dimensions: []string{"time", "yc", "xc"},
			Attributes: mustAttrs(
				[]string{"_FillValue", "scale_factor", "units", "long_name"},
				map[string]any{
					"_FillValue":   fixtureFill,
					"scale_factor": fixtureScale,
					"units":        "%",
					"long_name":    "fully filtered concentration of sea ice",
				}),
		}},
	}

	for _, v := range vars {
		if err := cw.AddVar(v.name, v.v); err != nil {
			cw.Close()
			return fmt.Errorf("write variable %q: %w", v.name, err)
		}
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("close fixture %s: %w", path, err)
	}
	return nil
}

func mustAttrs(keys []string, vals map[string]any) api.AttributeMap {
	m, err := util.NewOrderedMap(keys, vals)
	if err != nil {
		panic(fmt.Sprintf("fixture attributes: %v", err))
	}
	return m
}

func timeAxis(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1388577600 + float64(i)*86400 // 2022-01-01T12:00Z, daily
	}
	return out
}

func toFloat32Rows(f domain.Field) [][]float32 {
	out := make([][]float32, f.Rows)
	for i := range f.Rows {
		row := make([]float32, f.Cols)
		for j := range f.Cols {
			row[j] = float32(f.At(i, j))
		}
		out[i] = row
	}
	return out
}

func packSteps(steps []domain.Field) [][][]int32 {
	out := make([][][]int32, len(steps))
	for t, s := range steps {
		rows := make([][]int32, s.Rows)
		for i := range s.Rows {
			row := make([]int32, s.Cols)
			for j := range s.Cols {
				v := s.At(i, j)
				if domain.IsMissing(v) {
					row[j] = fixtureFill
					continue
				}
				row[j] = int32(math.Round(v / fixtureScale))
			}
			rows[i] = row
		}
		out[t] = rows
	}
	return out
}
