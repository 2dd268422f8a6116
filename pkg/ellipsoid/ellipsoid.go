// Package ellipsoid describes the reference surfaces that geodetic
// coordinates are expressed against.
package ellipsoid

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/geoframe/internal/domain"
)

// Earth WGS84 parameters.
const (
	earthAxisEquatorial = 6378137.0
	earthAxisPolar      = 6356752.314245
	earthFlattening     = 1.0 / 298.257223563
	// Mean radius used by great-circle distance.
	earthRadius = 6371000.0
)

// Moon parameters (NSSDC moon fact sheet, LRO selenodetic radius).
const (
	moonAxisEquatorial = 1738100.0
	moonAxisPolar      = 1736000.0
	moonFlattening     = 0.0012
	moonRadius         = 1737400.0
)

// EarthRadius is the Earth mean radius in meters.
const EarthRadius = earthRadius

var (
	// ErrInvalidEllipsoid is returned when custom axes are rejected.
	ErrInvalidEllipsoid = domain.ErrInvalidEllipsoid
	// ErrUnknownSurface is returned for selectors outside Surface's range.
	ErrUnknownSurface = domain.ErrUnknownSurface
	// ErrCustomNeedsAxes is returned by Preset(Custom).
	ErrCustomNeedsAxes = domain.ErrCustomNeedsAxes
)

// Surface selects an ellipsoid model.
type Surface int

// Surface constants.
const (
	EarthWGS84 Surface = iota + 1
	Moon
	Custom
)

var surfaceNames = map[Surface]string{
	EarthWGS84: "EARTH_WGS84",
	Moon:       "MOON_SCS",
	Custom:     "CUSTOM_SURFACE",
}

// IsValid checks if the surface is one of the supported values.
func (s Surface) IsValid() bool {
	_, ok := surfaceNames[s]
	return ok
}

// String returns the surface name. Unknown surfaces render as EARTH_WGS84.
func (s Surface) String() string {
	if n, ok := surfaceNames[s]; ok {
		return n
	}
	return surfaceNames[EarthWGS84]
}

// ParseSurface resolves a surface name. Unknown names yield EarthWGS84 and ErrUnknownSurface.
func ParseSurface(name string) (Surface, error) {
	for s, n := range surfaceNames {
		if n == name {
			return s, nil
		}
	}
	return EarthWGS84, fmt.Errorf("%w: %q, EARTH_WGS84 returned by default", ErrUnknownSurface, name)
}

// Model is an oblate ellipsoid plus the radius used for spherical distances.
type Model struct {
	Surface Surface
	// A is the equatorial semi-axis in meters.
	A float64
	// B is the polar semi-axis in meters.
	B float64
	// F is the flattening (A-B)/A.
	F float64
	// Radius is the mean surface radius in meters.
	Radius float64
}

// Earth returns the WGS84 model.
func Earth() Model {
	return Model{
		Surface: EarthWGS84,
		A:       earthAxisEquatorial,
		B:       earthAxisPolar,
		F:       earthFlattening,
		Radius:  earthRadius,
	}
}

// Preset returns the built-in model for s. Custom and unknown surfaces
// return the Earth model together with an error.
func Preset(s Surface) (Model, error) {
	switch s {
	case EarthWGS84:
		return Earth(), nil
	case Moon:
		return Model{
			Surface: Moon,
			A:       moonAxisEquatorial,
			B:       moonAxisPolar,
			F:       moonFlattening,
			Radius:  moonRadius,
		}, nil
	case Custom:
		return Earth(), ErrCustomNeedsAxes
	default:
		return Earth(), fmt.Errorf("%w[%d]", ErrUnknownSurface, int(s))
	}
}

// NewCustom builds a custom model from its semi-axes. The radius is the
// arithmetic mean (2a+b)/3. Axes that are not positive or have b > a are
// rejected: the Earth constants are returned, tagged Custom, along with an
// error wrapping ErrInvalidEllipsoid.
func NewCustom(a, b float64) (Model, error) {
	if !(a > 0 && b > 0 && b <= a) {
		m := Earth()
		m.Surface = Custom
		return m, domain.NewEllipsoidError(a, b)
	}
	return Model{
		Surface: Custom,
		A:       a,
		B:       b,
		F:       (a - b) / a,
		Radius:  (2*a + b) / 3,
	}, nil
}

// Eccentricity returns the first eccentricity sqrt(1 - b²/a²).
func (m Model) Eccentricity() float64 {
	return math.Sqrt(1 - (m.B*m.B)/(m.A*m.A))
}

// SecondEccentricity returns sqrt(a²/b² - 1).
func (m Model) SecondEccentricity() float64 {
	return math.Sqrt((m.A*m.A)/(m.B*m.B) - 1)
}

// PrimeVerticalRadius returns the radius of curvature in the prime vertical
// at geodetic latitude lat (radians).
func (m Model) PrimeVerticalRadius(lat float64) float64 {
	e := m.Eccentricity()
	s := math.Sin(lat)
	return m.A / math.Sqrt(1-e*e*s*s)
}
