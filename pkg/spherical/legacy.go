package spherical

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"

	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/frame"
)

// PositionTransformLegacy is the compatibility form of Position. Spherical
// values are packed as (lat, lon, alt) with angles in radians. frame.Local
// uses the historical sign pattern. On failure the input is returned
// unmodified and the error is only logged.
//
// Deprecated: use Position, which reports failures.
func (t *Transformer) PositionTransformLegacy(v r3.Vector, from, to frame.Type) r3.Vector {
	out, err := t.Position(pack(v, from), from, to)
	if err != nil {
		return v
	}
	return unpack(out)
}

// VelocityTransformLegacy is the compatibility form of Velocity. On failure
// the input is returned unmodified.
//
// Deprecated: use Velocity, which reports failures.
func (t *Transformer) VelocityTransformLegacy(v r3.Vector, from, to frame.Type) r3.Vector {
	out, err := t.Velocity(coord.MetricFrom(v), from, to)
	if err != nil {
		return v
	}
	return unpack(out)
}

// SphericalFromLocalPosition converts a legacy Local position to
// (lat, lon, alt) with angles in degrees.
func (t *Transformer) SphericalFromLocalPosition(xyz r3.Vector) r3.Vector {
	out := t.PositionTransformLegacy(xyz, frame.Local, frame.Spherical)
	out.X = s1.Angle(out.X).Degrees()
	out.Y = s1.Angle(out.Y).Degrees()
	return out
}

// LocalFromSphericalPosition converts (lat, lon, alt) with angles in
// degrees to a Local position.
func (t *Transformer) LocalFromSphericalPosition(latLonAlt r3.Vector) r3.Vector {
	in := latLonAlt
	in.X = coord.Degrees(in.X).Radians()
	in.Y = coord.Degrees(in.Y).Radians()
	return t.PositionTransformLegacy(in, frame.Spherical, frame.Local)
}

// GlobalFromLocalVelocity converts a legacy Local velocity to Global.
func (t *Transformer) GlobalFromLocalVelocity(xyz r3.Vector) r3.Vector {
	return t.VelocityTransformLegacy(xyz, frame.Local, frame.Global)
}

// LocalFromGlobalVelocity converts a Global velocity to Local.
func (t *Transformer) LocalFromGlobalVelocity(xyz r3.Vector) r3.Vector {
	return t.VelocityTransformLegacy(xyz, frame.Global, frame.Local)
}

func pack(v r3.Vector, f frame.Type) coord.Vector {
	if f == frame.Spherical {
		return coord.Spherical(s1.Angle(v.X), s1.Angle(v.Y), v.Z)
	}
	return coord.MetricFrom(v)
}

func unpack(c coord.Vector) r3.Vector {
	if p, ok := c.AsR3(); ok {
		return p
	}
	lat, _ := c.Lat()
	lon, _ := c.Lon()
	return r3.Vector{X: lat.Radians(), Y: lon.Radians(), Z: c.Z()}
}
