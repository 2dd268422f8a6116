package spherical

import (
	"math"

	"github.com/golang/geo/s1"

	"github.com/kailas-cloud/geoframe/pkg/ellipsoid"
)

// Haversine returns the great-circle distance in meters between two
// points on a sphere of the given radius.
func Haversine(latA, lonA, latB, lonB s1.Angle, radius float64) float64 {
	dLat := (latB - latA).Radians()
	dLon := (lonB - lonA).Radians()

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat +
		math.Cos(latA.Radians())*math.Cos(latB.Radians())*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return radius * c
}

// DistanceHaversine returns the great-circle distance in meters using the
// Earth mean radius, regardless of any configured surface.
func DistanceHaversine(latA, lonA, latB, lonB s1.Angle) float64 {
	return Haversine(latA, lonA, latB, lonB, ellipsoid.EarthRadius)
}

// DistanceOnSurface returns the great-circle distance in meters using the
// radius of the configured surface.
func (t *Transformer) DistanceOnSurface(latA, lonA, latB, lonB s1.Angle) float64 {
	return Haversine(latA, lonA, latB, lonB, t.model.Radius)
}

// ValidCoordinates checks that latitude is in [-90,90] and longitude in
// [-180,180], both in degrees.
func ValidCoordinates(latDeg, lonDeg float64) bool {
	return latDeg >= -90 && latDeg <= 90 && lonDeg >= -180 && lonDeg <= 180
}
