// -*- tab-width:2 -*-

package netlat

import (
	"math"
)

// Coordinate is a named point on the Earth's surface, in degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// SurfaceDistance returns the haversine great-circle distance in
// meters between two coordinates on a sphere of radius EarthRadius.
func SurfaceDistance(a, b Coordinate) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) + //nolint:mnd
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2) //nolint:mnd
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h)) //nolint:mnd

	return EarthRadius * c
}

// DistanceTo is SurfaceDistance from c to other.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return SurfaceDistance(c, other)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180 //nolint:mnd
}
