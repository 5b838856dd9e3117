package netcdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"time"

	nativecdf "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
)

// VariableNames names the coordinate and data variables inside a dataset.
type VariableNames struct {
	Lat   string
	Lon   string
	Field string
}

// DefaultVariables matches the OSI SAF sea-ice concentration products.
var DefaultVariables = VariableNames{Lat: "lat", Lon: "lon", Field: "ice_conc"}

// Loader reads a Grid from a NetCDF file. It implements pipeline.DatasetLoader.
type Loader struct {
	vars      VariableNames
	timeIndex int
	logger    *slog.Logger
}

// NewLoader creates a Loader for the given variable names and time slice.
func NewLoader(vars VariableNames, timeIndex int, logger *slog.Logger) *Loader {
	return &Loader{vars: vars, timeIndex: timeIndex, logger: logger}
}

// Load opens path and decodes the coordinate and data variables. It returns
// domain.ErrFileNotFound when path does not exist and a
// *domain.MissingVariableError when a configured variable is absent.
func (l *Loader) Load(ctx context.Context, path string) (domain.Grid, error) {
	if err := ctx.Err(); err != nil {
		return domain.Grid{}, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Grid{}, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return domain.Grid{}, fmt.Errorf("stat dataset: %w", err)
	}

	start := time.Now()
	nc, err := nativecdf.Open(path)
	if err != nil {
		return domain.Grid{}, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer nc.Close()

	available := nc.ListVariables()
	slices.Sort(available)

	latVar, err := lookup(nc, available, l.vars.Lat)
	if err != nil {
		return domain.Grid{}, err
	}
	lonVar, err := lookup(nc, available, l.vars.Lon)
	if err != nil {
		return domain.Grid{}, err
	}
	fieldVar, err := lookup(nc, available, l.vars.Field)
	if err != nil {
		return domain.Grid{}, err
	}

	values, err := l.decodeField(fieldVar)
	if err != nil {
		return domain.Grid{}, err
	}
	lat, lon, err := decodeCoordinates(latVar, lonVar, values)
	if err != nil {
		return domain.Grid{}, err
	}

	g := domain.Grid{
		Lat:      lat,
		Lon:      lon,
		Values:   values,
		Variable: l.vars.Field,
		Units:    attrString(fieldVar.Attributes, "units"),
		LongName: attrString(fieldVar.Attributes, "long_name"),
		Source:   path,
	}
	if err := g.Validate(); err != nil {
		return domain.Grid{}, err
	}

	l.logger.Debug("dataset loaded",
		"path", path,
		"variable", l.vars.Field,
		"rows", values.Rows,
		"cols", values.Cols,
		"duration", time.Since(start),
	)
	return g, nil
}

func lookup(nc api.Group, available []string, name string) (*api.Variable, error) {
	if _, found := slices.BinarySearch(available, name); !found {
		return nil, &domain.MissingVariableError{Name: name, Available: available}
	}
	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read variable %q: %w", name, err)
	}
	return v, nil
}

// decodeField unpacks the data variable and selects the configured time slice.
func (l *Loader) decodeField(v *api.Variable) (domain.Field, error) {
	arr, err := decode(v)
	if err != nil {
		return domain.Field{}, fmt.Errorf("decode %q: %w", l.vars.Field, err)
	}

	switch len(arr.Shape) {
	case 2:
		if l.timeIndex != 0 {
			return domain.Field{}, fmt.Errorf("%w: %q has no time dimension, index %d requested",
				domain.ErrTimeIndexOutOfRange, l.vars.Field, l.timeIndex)
		}
		return domain.NewField(arr.Shape[0], arr.Shape[1], arr.Data)
	case 3:
		steps, rows, cols := arr.Shape[0], arr.Shape[1], arr.Shape[2]
		if l.timeIndex < 0 || l.timeIndex >= steps {
			return domain.Field{}, fmt.Errorf("%w: index %d, %q has %d steps",
				domain.ErrTimeIndexOutOfRange, l.timeIndex, l.vars.Field, steps)
		}
		size := rows * cols
		slice := arr.Data[l.timeIndex*size : (l.timeIndex+1)*size]
		return domain.NewField(rows, cols, slice)
	default:
		return domain.Field{}, fmt.Errorf("%w: %q has %d dimensions, want 2 or 3",
			domain.ErrShapeMismatch, l.vars.Field, len(arr.Shape))
	}
}

// decodeCoordinates accepts 2-D curvilinear coordinates, or 1-D axes that
// are expanded to the field's grid.
func decodeCoordinates(latVar, lonVar *api.Variable, values domain.Field) (lat, lon domain.Field, err error) {
	latArr, err := decode(latVar)
	if err != nil {
		return lat, lon, fmt.Errorf("decode latitude: %w", err)
	}
	lonArr, err := decode(lonVar)
	if err != nil {
		return lat, lon, fmt.Errorf("decode longitude: %w", err)
	}

	if len(latArr.Shape) == 1 && len(lonArr.Shape) == 1 {
		return expandAxes(latArr.Data, lonArr.Data, values)
	}
	if len(latArr.Shape) != 2 || len(lonArr.Shape) != 2 {
		return lat, lon, fmt.Errorf("%w: coordinates must be 1-D axes or 2-D grids", domain.ErrShapeMismatch)
	}
	if lat, err = domain.NewField(latArr.Shape[0], latArr.Shape[1], latArr.Data); err != nil {
		return lat, lon, err
	}
	lon, err = domain.NewField(lonArr.Shape[0], lonArr.Shape[1], lonArr.Data)
	return lat, lon, err
}

func expandAxes(latAxis, lonAxis []float64, values domain.Field) (lat, lon domain.Field, err error) {
	rows, cols := len(latAxis), len(lonAxis)
	if rows != values.Rows || cols != values.Cols {
		return lat, lon, fmt.Errorf("%w: axes are %dx%d, field is %dx%d",
			domain.ErrShapeMismatch, rows, cols, values.Rows, values.Cols)
	}
	latData := make([]float64, rows*cols)
	lonData := make([]float64, rows*cols)
	for i := range rows {
		for j := range cols {
			latData[i*cols+j] = latAxis[i]
			lonData[i*cols+j] = lonAxis[j]
		}
	}
	return domain.Field{Rows: rows, Cols: cols, Data: latData},
		domain.Field{Rows: rows, Cols: cols, Data: lonData}, nil
}

func decode(v *api.Variable) (array, error) {
	arr, err := flatten(v.Values)
	if err != nil {
		return array{}, err
	}
	readPacking(v.Attributes).unpack(arr.Data)
	return arr, nil
}
