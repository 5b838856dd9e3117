package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sea-ice-etl/internal/adapter/render"
	"github.com/couchcryptid/sea-ice-etl/internal/domain"
)

func TestBuild(t *testing.T) {
	fx := build(20, 30, 2, 50, render.NewPolarStereographic(0))

	require.Len(t, fx.Steps, 2)
	assert.Equal(t, 20, fx.Lat.Rows)
	assert.Equal(t, 30, fx.Lat.Cols)
	for _, s := range fx.Steps {
		require.True(t, s.SameShape(fx.Lat))
	}

	// The centre of an even-sized grid sits close to the pole.
	assert.Greater(t, fx.Lat.At(10, 15), 85.0)
	// Corners lie outside the minLat circle and carry the out-of-range marker.
	assert.Less(t, fx.Lat.At(0, 0), 50.0)
	assert.InDelta(t, outOfRange, fx.Steps[0].At(0, 0), 0)

	valid := domain.CountValid(fx.Steps[0], domain.DefaultValidRange)
	assert.Positive(t, valid)
	assert.Less(t, valid, fx.Steps[0].Len())
}

func TestConcentration(t *testing.T) {
	assert.InDelta(t, 100, concentration(89, 0, 50, 0), 0)
	assert.InDelta(t, 0, concentration(55, 0, 50, 0), 0)
	assert.InDelta(t, outOfRange, concentration(45, 0, 50, 0), 0)
	assert.True(t, math.IsNaN(concentration(66, -90, 50, 0)), "land patch is fill")

	for lat := 50.0; lat <= 90; lat += 0.5 {
		c := concentration(lat, 45, 50, 1)
		if !math.IsNaN(c) && c != outOfRange {
			assert.True(t, domain.DefaultValidRange.Contains(c), "lat %v -> %v", lat, c)
		}
	}
}
