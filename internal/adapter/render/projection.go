package render

import (
	"math"

	"github.com/ctessum/geom/proj"
)

// EarthRadius is the WGS84 semi-major axis in meters. The projection uses a
// sphere of this radius, which is indistinguishable at map scale.
const EarthRadius = 6378137.0

// southLimit keeps projected coordinates finite near the south pole.
const southLimit = -80.0

const deg = math.Pi / 180

// PolarStereographic is a north polar stereographic projection with true
// scale at the pole.
type PolarStereographic struct {
	CentralLongitude float64
	Radius           float64
}

// NewPolarStereographic returns the projection centred on centralLon.
func NewPolarStereographic(centralLon float64) PolarStereographic {
	return PolarStereographic{CentralLongitude: centralLon, Radius: EarthRadius}
}

// Forward projects a lon/lat pair in degrees to map meters. The central
// meridian points down, as on a map viewed from above the pole.
func (p PolarStereographic) Forward(lon, lat float64) (x, y float64) {
	r := p.RadiusAt(lat)
	lam := (lon - p.CentralLongitude) * deg
	return r * math.Sin(lam), -r * math.Cos(lam)
}

// Inverse maps projected meters back to lon/lat degrees.
func (p PolarStereographic) Inverse(x, y float64) (lon, lat float64) {
	r := math.Hypot(x, y)
	lat = 90 - 2*math.Atan(r/(2*p.Radius))/deg
	if r == 0 {
		return p.CentralLongitude, 90
	}
	lon = math.Atan2(x, -y)/deg + p.CentralLongitude
	return normalizeLon(lon), lat
}

// RadiusAt returns the distance from the pole of the given parallel.
func (p PolarStereographic) RadiusAt(lat float64) float64 {
	lat = math.Max(lat, southLimit)
	return 2 * p.Radius * math.Tan(math.Pi/4-lat*deg/2)
}

// Extent returns the half-width of the square that bounds the minLat circle.
func (p PolarStereographic) Extent(minLat float64) float64 {
	return p.RadiusAt(minLat)
}

// Transformer adapts the projection for geom.Geom.Transform. Input X is
// longitude and Y is latitude.
func (p PolarStereographic) Transformer() proj.Transformer {
	return func(lon, lat float64) (float64, float64, error) {
		x, y := p.Forward(lon, lat)
		return x, y, nil
	}
}

func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
