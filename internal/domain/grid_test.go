package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewField(t *testing.T) {
	f, err := NewField(2, 2, []float64{10, 20, 30, 40})
	require.NoError(t, err)
	assert.InDelta(t, 30, f.At(1, 0), 0)
	assert.Equal(t, 4, f.Len())

	_, err = NewField(2, 3, []float64{1, 2})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFieldFromRows_Ragged(t *testing.T) {
	_, err := FieldFromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestGrid_Validate(t *testing.T) {
	square := Field{Rows: 2, Cols: 2, Data: make([]float64, 4)}
	wide := Field{Rows: 1, Cols: 4, Data: make([]float64, 4)}

	assert.NoError(t, Grid{Lat: square, Lon: square, Values: square}.Validate())
	assert.ErrorIs(t, Grid{Lat: square, Lon: wide, Values: square}.Validate(), ErrShapeMismatch)
	assert.ErrorIs(t, Grid{Lat: square, Lon: square, Values: wide, Variable: "ice_conc"}.Validate(), ErrShapeMismatch)
}

func TestMissingVariableError(t *testing.T) {
	var err error = &MissingVariableError{Name: "ice_conc", Available: []string{"lat", "lon"}}

	assert.True(t, errors.Is(err, ErrMissingVariable))
	assert.Equal(t, `missing variable "ice_conc" (available: lat, lon)`, err.Error())

	var mv *MissingVariableError
	require.True(t, errors.As(err, &mv))
	assert.Equal(t, "ice_conc", mv.Name)
}
