package domain

import (
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowGrid(t *testing.T, values []float64) Grid {
	t.Helper()
	lat := make([]float64, len(values))
	lon := make([]float64, len(values))
	for i := range values {
		lat[i] = 70 + float64(i)
		lon[i] = -10 + float64(i)
	}
	return Grid{
		Lat:    Field{Rows: 1, Cols: len(values), Data: lat},
		Lon:    Field{Rows: 1, Cols: len(values), Data: lon},
		Values: Field{Rows: 1, Cols: len(values), Data: values},
	}
}

func TestValidRange_Contains(t *testing.T) {
	tests := []struct {
		v    float64
		want bool
	}{
		{-9999, false},
		{-0.01, false},
		{0, true},
		{50, true},
		{100, true},
		{100.01, false},
		{150, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultValidRange.Contains(tt.v), "value %v", tt.v)
	}
}

func TestFlatten(t *testing.T) {
	t.Run("sentinels and out of range are dropped", func(t *testing.T) {
		g := rowGrid(t, []float64{-9999, 0, 50, 100, 150})
		cells := Flatten(g, DefaultValidRange)

		require.Len(t, cells, 3)
		assert.Equal(t, []float64{0, 50, 100}, []float64{cells[0].Value, cells[1].Value, cells[2].Value})
	})

	t.Run("row-major order", func(t *testing.T) {
		values, err := FieldFromRows([][]float64{{10, 20}, {30, 40}})
		require.NoError(t, err)
		g := Grid{
			Lat:    Field{Rows: 2, Cols: 2, Data: []float64{80, 80, 81, 81}},
			Lon:    Field{Rows: 2, Cols: 2, Data: []float64{0, 1, 0, 1}},
			Values: values,
		}

		want := []Cell{
			{Lat: 80, Lon: 0, Value: 10},
			{Lat: 80, Lon: 1, Value: 20},
			{Lat: 81, Lon: 0, Value: 30},
			{Lat: 81, Lon: 1, Value: 40},
		}
		if diff := cmp.Diff(want, Flatten(g, DefaultValidRange)); diff != "" {
			t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("count equals valid cells", func(t *testing.T) {
		g := rowGrid(t, []float64{math.NaN(), 12.5, 101, 99.999, -1, 0})
		assert.Len(t, Flatten(g, DefaultValidRange), CountValid(g.Values, DefaultValidRange))
		assert.Equal(t, 3, CountValid(g.Values, DefaultValidRange))
	})

	t.Run("coordinates follow their cell", func(t *testing.T) {
		g := rowGrid(t, []float64{200, 42})
		cells := Flatten(g, DefaultValidRange)

		require.Len(t, cells, 1)
		assert.Equal(t, Cell{Lat: 71, Lon: -9, Value: 42}, cells[0])
	})

	t.Run("empty grid", func(t *testing.T) {
		assert.Empty(t, Flatten(Grid{}, DefaultValidRange))
	})
}

func TestSample(t *testing.T) {
	cells := Flatten(rowGrid(t, []float64{1, 2, 3, 4, 5, 6, 7}), DefaultValidRange)

	assert.Len(t, Sample(cells, 0), 7)
	assert.Len(t, Sample(cells, 1), 7)

	sampled := Sample(cells, 3)
	require.Len(t, sampled, 3)
	assert.Equal(t, []float64{1, 4, 7}, []float64{sampled[0].Value, sampled[1].Value, sampled[2].Value})
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{12.346, 12.35},
		{12.344, 12.34},
		{99.999, 100},
		{0.004, 0},
		{-0.004, 0},
		{50, 50},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundTo(tt.in, 2), 1e-9, "input %v", tt.in)
	}
	assert.False(t, math.Signbit(RoundTo(-0.004, 2)))

	// Rounded values print as the formatted string.
	for _, v := range []float64{2.675, 0.125, 1.005, 66.6666} {
		assert.Equal(t, FormatValue(v, 2), strconv.FormatFloat(RoundTo(v, 2), 'f', 2, 64), "input %v", v)
	}
}

func TestFormatValue(t *testing.T) {
	tests := map[float64]string{
		0:       "0.00",
		50:      "50.00",
		100:     "100.00",
		12.5:    "12.50",
		33.3333: "33.33",
		66.6666: "66.67",
		2.675:   "2.67", // stored as 2.67499...
		0.125:   "0.12", // exact tie goes to even
		0.375:   "0.38",
		-0.001:  "0.00",
		-12.345: "-12.35", // stored as -12.3450000000000006...
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatValue(in, 2))
	}
}
