package domain

import (
	"fmt"
	"math"
)

// Missing is the sentinel stored for cells that carry no valid value.
var Missing = math.NaN()

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Field is a 2-D array of float64 stored row-major.
type Field struct {
	Rows int
	Cols int
	Data []float64
}

// NewField wraps data as a rows x cols field.
func NewField(rows, cols int, data []float64) (Field, error) {
	if rows < 0 || cols < 0 {
		return Field{}, fmt.Errorf("%w: negative dimensions %dx%d", ErrShapeMismatch, rows, cols)
	}
	if len(data) != rows*cols {
		return Field{}, fmt.Errorf("%w: %d values for %dx%d field", ErrShapeMismatch, len(data), rows, cols)
	}
	return Field{Rows: rows, Cols: cols, Data: data}, nil
}

// FieldFromRows builds a field from a slice of equal-length rows.
func FieldFromRows(rows [][]float64) (Field, error) {
	if len(rows) == 0 {
		return Field{}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return Field{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return Field{Rows: len(rows), Cols: cols, Data: data}, nil
}

// At returns the value at row i, column j.
func (f Field) At(i, j int) float64 {
	return f.Data[i*f.Cols+j]
}

// Len returns the number of cells.
func (f Field) Len() int {
	return len(f.Data)
}

// SameShape reports whether f and o have identical dimensions.
func (f Field) SameShape(o Field) bool {
	return f.Rows == o.Rows && f.Cols == o.Cols
}

// Grid is a scalar field on a curvilinear latitude/longitude grid.
type Grid struct {
	Lat    Field
	Lon    Field
	Values Field

	Variable string
	Units    string
	LongName string
	Source   string
}

// Validate checks that the coordinate and data fields share one shape.
func (g Grid) Validate() error {
	if !g.Lat.SameShape(g.Lon) {
		return fmt.Errorf("%w: lat is %dx%d, lon is %dx%d", ErrShapeMismatch, g.Lat.Rows, g.Lat.Cols, g.Lon.Rows, g.Lon.Cols)
	}
	if !g.Lat.SameShape(g.Values) {
		return fmt.Errorf("%w: lat is %dx%d, %s is %dx%d", ErrShapeMismatch, g.Lat.Rows, g.Lat.Cols, g.Variable, g.Values.Rows, g.Values.Cols)
	}
	if len(g.Lat.Data) != len(g.Lon.Data) || len(g.Lat.Data) != len(g.Values.Data) {
		return fmt.Errorf("%w: backing arrays differ in length", ErrShapeMismatch)
	}
	return nil
}
