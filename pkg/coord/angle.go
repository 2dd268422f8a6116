package coord

import (
	"math"

	"github.com/golang/geo/s1"
)

// DefaultAngleTolerance is the angular tolerance used by Vector.Equals.
const DefaultAngleTolerance = 1e-3 * s1.Radian

// DefaultTolerance is the metric tolerance (meters) used by Vector.Equals.
const DefaultTolerance = 1e-3

// Degrees builds an angle from a value in degrees.
func Degrees(deg float64) s1.Angle {
	return s1.Angle(deg) * s1.Degree
}

// Radians builds an angle from a value in radians.
func Radians(rad float64) s1.Angle {
	return s1.Angle(rad) * s1.Radian
}

// ShortestDistance returns the signed angle that takes a to b, wrapped into [-π, π].
func ShortestDistance(a, b s1.Angle) s1.Angle {
	return s1.Angle(math.Remainder(float64(b-a), 2*math.Pi))
}

// AngleEqual reports whether a and b are within tol of each other, modulo a full turn.
func AngleEqual(a, b, tol s1.Angle) bool {
	return ShortestDistance(a, b).Abs() <= tol
}
