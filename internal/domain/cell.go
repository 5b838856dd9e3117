package domain

import (
	"strconv"
	"strings"
)

// ValidRange is an inclusive [Min, Max] interval of physically valid values.
type ValidRange struct {
	Min float64
	Max float64
}

// DefaultValidRange covers concentration percentages.
var DefaultValidRange = ValidRange{Min: 0, Max: 100}

// Contains reports whether v lies within the range. NaN is never contained.
func (r ValidRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Cell is one retained grid cell.
type Cell struct {
	Lat   float64
	Lon   float64
	Value float64
}

// Flatten walks the grid in row-major order and keeps the cells whose value
// is within rng. The grid must already be validated.
func Flatten(g Grid, rng ValidRange) []Cell {
	cells := make([]Cell, 0, CountValid(g.Values, rng))
	for k, v := range g.Values.Data {
		if !rng.Contains(v) {
			continue
		}
		cells = append(cells, Cell{Lat: g.Lat.Data[k], Lon: g.Lon.Data[k], Value: v})
	}
	return cells
}

// Sample keeps every step-th cell starting with the first. A step of 1 or
// less returns cells unchanged.
func Sample(cells []Cell, step int) []Cell {
	if step <= 1 {
		return cells
	}
	out := make([]Cell, 0, (len(cells)+step-1)/step)
	for i := 0; i < len(cells); i += step {
		out = append(out, cells[i])
	}
	return out
}

// RoundTo rounds v to the given number of decimal places. It agrees with
// FormatValue, so a rounded value always prints as its formatted string.
func RoundTo(v float64, places int) float64 {
	r, _ := strconv.ParseFloat(FormatValue(v, places), 64)
	return r
}

// FormatValue renders v with exactly places decimals. Rounding works on the
// exact binary value in a single step, with exact ties going to even: 2.675
// is stored below the tie and gives "2.67", and 0.125 gives "0.12".
func FormatValue(v float64, places int) string {
	s := strconv.FormatFloat(v, 'f', places, 64)
	if s[0] == '-' && strings.Trim(s[1:], "0.") == "" {
		return s[1:] // drop negative zero
	}
	return s
}
