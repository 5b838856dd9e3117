// Command genfixture writes a synthetic north-polar sea-ice concentration
// dataset laid out like an OSI SAF product, plus an optional dataset request
// message for exercising the service.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -out data/fixture/ice_conc_nh_polstere-100_multi_202201011200.nc \
//	  -request-out data/fixture/request.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/couchcryptid/sea-ice-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/sea-ice-etl/internal/adapter/render"
	"github.com/couchcryptid/sea-ice-etl/internal/domain"
)

// outOfRange marks the corners outside the product's coverage, the way
// unfiltered products flag cells with values that are not percentages.
const outOfRange = -9999

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/fixture/ice_conc_nh_polstere-100_multi_202201011200.nc", "output NetCDF path")
	requestOut := flag.String("request-out", "", "optional path for a dataset request JSON message")
	rows := flag.Int("rows", 120, "grid rows")
	cols := flag.Int("cols", 120, "grid columns")
	steps := flag.Int("steps", 1, "number of time steps")
	minLat := flag.Float64("min-lat", 50, "latitude touched by the grid edges")
	centralLon := flag.Float64("central-lon", 0, "central meridian of the projection")
	flag.Parse()

	if *rows < 2 || *cols < 2 || *steps < 1 {
		flag.Usage()
		return fmt.Errorf("rows and cols must be at least 2, steps at least 1")
	}

	fx := build(*rows, *cols, *steps, *minLat, render.NewPolarStereographic(*centralLon))

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := netcdf.WriteFixture(*out, fx); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%dx%d, %d steps)", *out, *rows, *cols, *steps)

	for i, s := range fx.Steps {
		valid := domain.CountValid(s, domain.DefaultValidRange)
		log.Printf("step %d: %d valid, %d masked", i, valid, s.Len()-valid)
	}

	if *requestOut != "" {
		if err := writeRequest(*requestOut, *out); err != nil {
			return fmt.Errorf("writing request: %w", err)
		}
		log.Printf("wrote request: %s", *requestOut)
	}
	return nil
}

// build lays a rows x cols grid over the square bounding the minLat circle.
// Row 0 is the top of the map.
func build(rows, cols, steps int, minLat float64, p render.PolarStereographic) netcdf.Fixture {
	extent := p.Extent(minLat)
	lat := make([]float64, rows*cols)
	lon := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		y := extent - 2*extent*float64(i)/float64(rows-1)
		for j := 0; j < cols; j++ {
			x := -extent + 2*extent*float64(j)/float64(cols-1)
			lon[i*cols+j], lat[i*cols+j] = p.Inverse(x, y)
		}
	}

	fx := netcdf.Fixture{
		Names: netcdf.DefaultVariables,
		Lat:   domain.Field{Rows: rows, Cols: cols, Data: lat},
		Lon:   domain.Field{Rows: rows, Cols: cols, Data: lon},
	}
	for s := 0; s < steps; s++ {
		data := make([]float64, rows*cols)
		for k := range data {
			data[k] = concentration(lat[k], lon[k], minLat, float64(s))
		}
		fx.Steps = append(fx.Steps, domain.Field{Rows: rows, Cols: cols, Data: data})
	}
	return fx
}

// concentration is a smooth pack-ice field that thins toward the ice edge,
// with a land patch left as fill. step shifts the edge to mimic a melt season.
func concentration(lat, lon, minLat, step float64) float64 {
	switch {
	case lat < minLat:
		return outOfRange
	case lon > -110 && lon < -70 && lat > 62 && lat < 72:
		return domain.Missing
	}
	edge := 68 + 2*step + 4*math.Sin(3*lon*math.Pi/180)
	c := 100 * (lat - edge + 6) / 12
	return math.Round(math.Max(0, math.Min(100, c))*100) / 100
}

func writeRequest(path, input string) error {
	abs, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	req := domain.DatasetRequest{InputPath: abs}
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
