// Package coord holds the tagged coordinate value shared by every frame
// conversion: a triple that is either metric (x, y, z in meters) or
// spherical (latitude, longitude, altitude in meters), never both.
package coord

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"

	"github.com/kailas-cloud/geoframe/internal/domain"
)

// ErrTagMismatch is returned by the checked arithmetic helpers.
var ErrTagMismatch = domain.ErrTagMismatch

// Kind tells which representation a Vector carries.
type Kind uint8

// Vector kinds.
const (
	KindMetric Kind = iota
	KindSpherical
)

func (k Kind) String() string {
	switch k {
	case KindMetric:
		return "metric"
	case KindSpherical:
		return "spherical"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Vector is a metric or spherical triple. The zero value is Metric(0, 0, 0).
//
// The tag is fixed by the constructor; accessors for the other
// representation report ok=false instead of converting.
type Vector struct {
	kind Kind
	// u is x or latitude in radians, v is y or longitude in radians.
	u, v float64
	z    float64
}

// Metric builds a metric vector.
func Metric(x, y, z float64) Vector {
	return Vector{kind: KindMetric, u: x, v: y, z: z}
}

// MetricFrom builds a metric vector from an r3 vector.
func MetricFrom(p r3.Vector) Vector {
	return Metric(p.X, p.Y, p.Z)
}

// Spherical builds a spherical vector. alt is in meters.
func Spherical(lat, lon s1.Angle, alt float64) Vector {
	return Vector{kind: KindSpherical, u: lat.Radians(), v: lon.Radians(), z: alt}
}

// Kind returns the representation tag.
func (c Vector) Kind() Kind { return c.kind }

// IsMetric reports whether c carries x, y, z.
func (c Vector) IsMetric() bool { return c.kind == KindMetric }

// IsSpherical reports whether c carries latitude, longitude, altitude.
func (c Vector) IsSpherical() bool { return c.kind == KindSpherical }

// X returns the metric x coordinate.
func (c Vector) X() (float64, bool) {
	if !c.IsMetric() {
		return 0, false
	}
	return c.u, true
}

// Y returns the metric y coordinate.
func (c Vector) Y() (float64, bool) {
	if !c.IsMetric() {
		return 0, false
	}
	return c.v, true
}

// Z returns the metric z coordinate or the altitude. It is present for both kinds.
func (c Vector) Z() float64 { return c.z }

// Lat returns the latitude of a spherical vector.
func (c Vector) Lat() (s1.Angle, bool) {
	if !c.IsSpherical() {
		return 0, false
	}
	return s1.Angle(c.u), true
}

// Lon returns the longitude of a spherical vector.
func (c Vector) Lon() (s1.Angle, bool) {
	if !c.IsSpherical() {
		return 0, false
	}
	return s1.Angle(c.v), true
}

// AsR3 returns the metric triple as an r3 vector.
func (c Vector) AsR3() (r3.Vector, bool) {
	if !c.IsMetric() {
		return r3.Vector{}, false
	}
	return r3.Vector{X: c.u, Y: c.v, Z: c.z}, true
}

// SetX sets x. It returns false and leaves c untouched when c is spherical.
func (c *Vector) SetX(x float64) bool {
	if !c.IsMetric() {
		return false
	}
	c.u = x
	return true
}

// SetY sets y. It returns false and leaves c untouched when c is spherical.
func (c *Vector) SetY(y float64) bool {
	if !c.IsMetric() {
		return false
	}
	c.v = y
	return true
}

// SetLat sets the latitude. It returns false and leaves c untouched when c is metric.
func (c *Vector) SetLat(lat s1.Angle) bool {
	if !c.IsSpherical() {
		return false
	}
	c.u = lat.Radians()
	return true
}

// SetLon sets the longitude. It returns false and leaves c untouched when c is metric.
func (c *Vector) SetLon(lon s1.Angle) bool {
	if !c.IsSpherical() {
		return false
	}
	c.v = lon.Radians()
	return true
}

// SetZ sets z or the altitude.
func (c *Vector) SetZ(z float64) { c.z = z }

// SetMetric replaces c with a metric vector.
func (c *Vector) SetMetric(x, y, z float64) { *c = Metric(x, y, z) }

// SetSpherical replaces c with a spherical vector.
func (c *Vector) SetSpherical(lat, lon s1.Angle, alt float64) { *c = Spherical(lat, lon, alt) }

// poisoned returns a vector of kind k with every field NaN.
func poisoned(k Kind) Vector {
	nan := math.NaN()
	return Vector{kind: k, u: nan, v: nan, z: nan}
}

// Add returns c + o component-wise. When the kinds differ the result keeps
// c's kind and every field is NaN.
func (c Vector) Add(o Vector) Vector {
	if c.kind != o.kind {
		return poisoned(c.kind)
	}
	return Vector{kind: c.kind, u: c.u + o.u, v: c.v + o.v, z: c.z + o.z}
}

// Sub returns c - o component-wise. When the kinds differ the result keeps
// c's kind and every field is NaN.
func (c Vector) Sub(o Vector) Vector {
	if c.kind != o.kind {
		return poisoned(c.kind)
	}
	return Vector{kind: c.kind, u: c.u - o.u, v: c.v - o.v, z: c.z - o.z}
}

// AddInPlace is c += o with the same mismatch rule as Add.
func (c *Vector) AddInPlace(o Vector) { *c = c.Add(o) }

// SubInPlace is c -= o with the same mismatch rule as Sub.
func (c *Vector) SubInPlace(o Vector) { *c = c.Sub(o) }

// AddChecked is Add that refuses mismatched kinds.
func (c Vector) AddChecked(o Vector) (Vector, error) {
	if c.kind != o.kind {
		return Vector{}, fmt.Errorf("add %s to %s: %w", o.kind, c.kind, ErrTagMismatch)
	}
	return c.Add(o), nil
}

// SubChecked is Sub that refuses mismatched kinds.
func (c Vector) SubChecked(o Vector) (Vector, error) {
	if c.kind != o.kind {
		return Vector{}, fmt.Errorf("subtract %s from %s: %w", o.kind, c.kind, ErrTagMismatch)
	}
	return c.Sub(o), nil
}

// Neg returns -c, keeping the kind.
func (c Vector) Neg() Vector {
	return Vector{kind: c.kind, u: -c.u, v: -c.v, z: -c.z}
}

// Equal compares c and o within tol meters and angTol for angles. Angles
// are compared by their shortest wrapped distance. Vectors of different
// kinds are never equal.
func (c Vector) Equal(o Vector, tol float64, angTol s1.Angle) bool {
	if c.kind != o.kind {
		return false
	}
	if !within(c.z, o.z, tol) {
		return false
	}
	switch c.kind {
	case KindMetric:
		return within(c.u, o.u, tol) && within(c.v, o.v, tol)
	case KindSpherical:
		return AngleEqual(s1.Angle(c.u), s1.Angle(o.u), angTol) &&
			AngleEqual(s1.Angle(c.v), s1.Angle(o.v), angTol)
	default:
		return false
	}
}

// Equals compares with DefaultTolerance and DefaultAngleTolerance.
func (c Vector) Equals(o Vector) bool {
	return c.Equal(o, DefaultTolerance, DefaultAngleTolerance)
}

// Identical reports exact field equality. NaN fields are never identical.
func (c Vector) Identical(o Vector) bool {
	return c.kind == o.kind && c.u == o.u && c.v == o.v && c.z == o.z
}

// IsFinite reports whether no field is NaN or infinite.
func (c Vector) IsFinite() bool {
	return isFinite(c.u) && isFinite(c.v) && isFinite(c.z)
}

func (c Vector) String() string {
	switch c.kind {
	case KindMetric:
		return fmt.Sprintf("metric(%g, %g, %g)", c.u, c.v, c.z)
	case KindSpherical:
		return fmt.Sprintf("spherical(%s, %s, %g)", s1.Angle(c.u), s1.Angle(c.v), c.z)
	default:
		return fmt.Sprintf("%s(%g, %g, %g)", c.kind, c.u, c.v, c.z)
	}
}

func within(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
