// -*- tab-width:2 -*-

package netlat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSurfaceDistance(t *testing.T) {
	pretoria := Coordinate{Latitude: -25.7479, Longitude: 28.2293, Name: "Pretoria"}
	joburg := Coordinate{Latitude: -26.2041, Longitude: 28.0473, Name: "Johannesburg"}
	newYork := Coordinate{Latitude: 40.7128, Longitude: -74.0060, Name: "New York"}

	tests := []struct {
		name string
		a, b Coordinate
		want float64
		tol  float64
	}{
		{"same point", joburg, joburg, 0, floatTol},
		{"one degree of longitude on the equator", Coordinate{}, Coordinate{Longitude: 1}, EarthRadius * math.Pi / 180, 1e-6},
		{"quarter meridian", Coordinate{}, Coordinate{Latitude: 90}, EarthRadius * math.Pi / 2, 1e-6},
		{"antipodes", Coordinate{}, Coordinate{Longitude: 180}, EarthRadius * math.Pi, 1e-6},
		{"pretoria to johannesburg", pretoria, joburg, 53_890, 100},
		{"johannesburg to new york", joburg, newYork, 12_839_680, 1_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SurfaceDistance(tt.a, tt.b), tt.tol)
			assert.InDelta(t, SurfaceDistance(tt.a, tt.b), tt.b.DistanceTo(tt.a), floatTol)
		})
	}
}

func TestEquatorHelper(t *testing.T) {
	assert.InDelta(t, 1_000_000, SurfaceDistance(equatorAt("a", 0), equatorAt("b", 1000)), 1e-6)
}
