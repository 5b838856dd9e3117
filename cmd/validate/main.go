// Command validate cross-checks a GeoJSON point export against the NetCDF
// dataset it was produced from. It verifies feature counts, coordinate order,
// value precision and range, and the date property.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -nc data/fixture/ice_conc_nh_polstere-100_multi_202201011200.nc \
//	  -geojson ice_conc_nh_polstere-100_multi_202201011200.geojson
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/sea-ice-etl/internal/adapter/geojson"
	"github.com/couchcryptid/sea-ice-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/sea-ice-etl/internal/domain"
	"github.com/couchcryptid/sea-ice-etl/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

// maxErrors caps the detail kept per phase; a broken export fails every cell.
const maxErrors = 20

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) == maxErrors {
		p.errors = append(p.errors, "... further errors suppressed")
	}
	if len(p.errors) > maxErrors {
		return
	}
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// options are the export settings the GeoJSON is expected to follow.
type options struct {
	ncPath      string
	geojsonPath string
	vars        netcdf.VariableNames
	timeIndex   int
	sampleStep  int
	date        string
	valueLabel  string
	dateLabel   string
	validRange  domain.ValidRange
}

func main() {
	var o options
	flag.StringVar(&o.ncPath, "nc", "", "source NetCDF dataset")
	flag.StringVar(&o.geojsonPath, "geojson", "", "GeoJSON export to validate")
	flag.StringVar(&o.vars.Lat, "lat-var", netcdf.DefaultVariables.Lat, "latitude variable")
	flag.StringVar(&o.vars.Lon, "lon-var", netcdf.DefaultVariables.Lon, "longitude variable")
	flag.StringVar(&o.vars.Field, "field-var", netcdf.DefaultVariables.Field, "concentration variable")
	flag.IntVar(&o.timeIndex, "time-index", 0, "time step the export was taken from")
	flag.IntVar(&o.sampleStep, "sample-step", 1, "sample step the export was written with")
	flag.StringVar(&o.date, "date", "", "expected date property (default: parsed from the dataset name)")
	flag.StringVar(&o.valueLabel, "value-label", geojson.DefaultValueLabel, "value property name")
	flag.StringVar(&o.dateLabel, "date-label", geojson.DefaultDateLabel, "date property name")
	flag.Float64Var(&o.validRange.Min, "valid-min", domain.DefaultValidRange.Min, "lowest value the export kept (SEAICE_VALID_MIN)")
	flag.Float64Var(&o.validRange.Max, "valid-max", domain.DefaultValidRange.Max, "highest value the export kept (SEAICE_VALID_MAX)")
	flag.Parse()

	if o.ncPath == "" || o.geojsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	if o.validRange.Min > o.validRange.Max {
		fmt.Fprintf(os.Stderr, "-valid-min (%g) must not exceed -valid-max (%g)\n", o.validRange.Min, o.validRange.Max)
		os.Exit(1)
	}

	os.Exit(run(o, os.Stdout))
}

func run(o options, out io.Writer) int {
	fmt.Fprintln(out, "=== Sea Ice Export Validation ===")
	fmt.Fprintln(out)

	loader := netcdf.NewLoader(o.vars, o.timeIndex, observability.NewLoggerTo(os.Stderr, "warn", "text"))
	grid, err := loader.Load(context.Background(), o.ncPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load dataset: %v\n", err)
		return 1
	}
	want := domain.Sample(domain.Flatten(grid, o.validRange), o.sampleStep)

	data, err := os.ReadFile(o.geojsonPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: read geojson: %v\n", err)
		return 1
	}
	fc, err := orbjson.UnmarshalFeatureCollection(data)
	if err != nil {
		fmt.Fprintf(out, "FATAL: parse geojson: %v\n", err)
		return 1
	}
	props, err := rawProperties(data)
	if err != nil {
		fmt.Fprintf(out, "FATAL: parse geojson properties: %v\n", err)
		return 1
	}

	expectedDate, _ := domain.DataDate(o.ncPath, o.date)

	phases := []*phase{
		validateCount(fc, want, grid),
		validateCoordinates(fc, want),
		validatePrecision(props, want, o.valueLabel),
		validateRange(props, o.valueLabel, o.validRange),
		validateDate(props, o.dateLabel, expectedDate),
	}

	allPassed := true
	for _, p := range phases {
		allPassed = allPassed && p.passed()
	}
	fmt.Fprintln(out, phaseTable(phases))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Cells: %d in grid, %d valid, %d features\n",
		grid.Values.Len(), domain.CountValid(grid.Values, o.validRange), len(fc.Features))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// rawProperties decodes feature properties keeping numbers as their literal
// text, which orb does not preserve.
func rawProperties(data []byte) ([]map[string]any, error) {
	var doc struct {
		Features []struct {
			Properties json.RawMessage `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	props := make([]map[string]any, len(doc.Features))
	for i, f := range doc.Features {
		dec := json.NewDecoder(bytes.NewReader(f.Properties))
		dec.UseNumber()
		if err := dec.Decode(&props[i]); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
	}
	return props, nil
}

// ── Phase 1: Count parity ──

func validateCount(fc *orbjson.FeatureCollection, want []domain.Cell, grid domain.Grid) *phase {
	p := &phase{name: "Phase 1: Count parity"}
	if len(fc.Features) != len(want) {
		p.errorf("geojson has %d features, dataset has %d exportable cells (of %d)",
			len(fc.Features), len(want), grid.Values.Len())
	}
	return p
}

// ── Phase 2: Geometry and coordinate order ──

func validateCoordinates(fc *orbjson.FeatureCollection, want []domain.Cell) *phase {
	p := &phase{name: "Phase 2: Point geometry (lon, lat)"}
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			p.errorf("feature %d: geometry is %s, want Point", i, f.Geometry.GeoJSONType())
			continue
		}
		if pt.Lat() < -90 || pt.Lat() > 90 {
			p.errorf("feature %d: latitude %v out of range, coordinates may be swapped", i, pt.Lat())
			continue
		}
		if i >= len(want) {
			continue
		}
		c := want[i]
		if !floatEq(pt.Lon(), c.Lon) || !floatEq(pt.Lat(), c.Lat) {
			if floatEq(pt.Lon(), c.Lat) && floatEq(pt.Lat(), c.Lon) {
				p.errorf("feature %d: coordinates are (lat, lon)", i)
			} else {
				p.errorf("feature %d: at (%v, %v), want (%v, %v)", i, pt.Lon(), pt.Lat(), c.Lon, c.Lat)
			}
		}
	}
	return p
}

// ── Phase 3: Value precision ──

var twoDecimals = regexp.MustCompile(`^-?\d+\.\d{2}$`)

func validatePrecision(props []map[string]any, want []domain.Cell, label string) *phase {
	p := &phase{name: "Phase 3: Value precision (2 dp)"}
	for i, pr := range props {
		n, ok := pr[label].(json.Number)
		if !ok {
			p.errorf("feature %d: %q missing or not a number", i, label)
			continue
		}
		if !twoDecimals.MatchString(n.String()) {
			p.errorf("feature %d: value %s does not have exactly 2 decimals", i, n)
			continue
		}
		if i < len(want) {
			if expected := domain.FormatValue(want[i].Value, 2); n.String() != expected {
				p.errorf("feature %d: value %s, want %s", i, n, expected)
			}
		}
	}
	return p
}

// ── Phase 4: Value range ──

func validateRange(props []map[string]any, label string, rng domain.ValidRange) *phase {
	p := &phase{name: fmt.Sprintf("Phase 4: Value range [%g, %g]", rng.Min, rng.Max)}
	for i, pr := range props {
		n, ok := pr[label].(json.Number)
		if !ok {
			continue // reported by the precision phase
		}
		v, err := n.Float64()
		if err != nil || !rng.Contains(v) {
			p.errorf("feature %d: value %s outside [%g, %g]", i, n, rng.Min, rng.Max)
		}
	}
	return p
}

// ── Phase 5: Date property ──

func validateDate(props []map[string]any, label, want string) *phase {
	p := &phase{name: "Phase 5: Date property"}
	for i, pr := range props {
		got, ok := pr[label].(string)
		if !ok {
			p.errorf("feature %d: %q missing or not a string", i, label)
			continue
		}
		if got != want {
			p.errorf("feature %d: date %q, want %q", i, got, want)
		}
	}
	return p
}

// ── Helpers ──

func phaseTable(phases []*phase) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Phase", "Result", "Errors"})
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
		}
		tw.AppendRow(table.Row{p.name, status, len(p.errors)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
