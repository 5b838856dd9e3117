package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellCorners(t *testing.T) {
	// 2x2 unit grid of centres at x in {0,1}, y in {0,1}.
	xs := []float64{0, 1, 0, 1}
	ys := []float64{0, 0, 1, 1}

	cx, cy := cellCorners(xs, ys, 2, 2)
	require.Len(t, cx, 9)

	assert.Equal(t, []float64{-0.5, 0.5, 1.5, -0.5, 0.5, 1.5, -0.5, 0.5, 1.5}, cx)
	assert.Equal(t, []float64{-0.5, -0.5, -0.5, 0.5, 0.5, 0.5, 1.5, 1.5, 1.5}, cy)
}

func TestCellCorners_NonUniform(t *testing.T) {
	xs := []float64{0, 2, 6}
	ys := []float64{0, 0, 0}

	cx, _ := cellCorners(xs, ys, 1, 3)
	require.Len(t, cx, 8)
	// Single row: no vertical extrapolation, so both corner rows match.
	assert.Equal(t, []float64{-1, 1, 4, 8}, cx[:4])
	assert.Equal(t, cx[:4], cx[4:])
}

func TestNewMesh_MissingCoordinates(t *testing.T) {
	lat := []float64{math.NaN(), 80, 81, 81}
	lon := []float64{0, 90, 180, 270}
	m := newMesh(lat, lon, []float64{10, 20, 30, 40}, 2, 2, NewPolarStereographic(0), nil)

	require.Len(t, m.cornerX, 9)
	assert.True(t, math.IsNaN(m.cornerX[0]), "corner next to a missing centre")
	assert.False(t, math.IsNaN(m.cornerX[8]), "far corner is unaffected")
}
