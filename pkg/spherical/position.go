package spherical

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geoframe/internal/domain"
	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/frame"
)

// Position converts a position from one frame to another, pivoting
// through ECEF. v must be spherical when from is frame.Spherical and
// metric otherwise. On failure the error is logged and the returned
// vector is the zero value.
func (t *Transformer) Position(v coord.Vector, from, to frame.Type) (coord.Vector, error) {
	if err := checkFrames(from, to); err != nil {
		return t.fail("position", v, from, to, err)
	}
	if (from == frame.Spherical) != v.IsSpherical() {
		err := fmt.Errorf("%w: %s value in %s frame", ErrTagMismatch, v.Kind(), from)
		return t.fail("position", v, from, to, err)
	}

	ecef, err := t.positionToECEF(v, from)
	if err != nil {
		return t.fail("position", v, from, to, err)
	}
	out, err := t.positionFromECEF(ecef, to)
	if err != nil {
		return t.fail("position", v, from, to, err)
	}
	return out, nil
}

func (t *Transformer) positionToECEF(v coord.Vector, from frame.Type) (r3.Vector, error) {
	if from == frame.Spherical {
		lat, _ := v.Lat()
		lon, _ := v.Lon()
		return t.sphericalToECEF(lat.Radians(), lon.Radians(), v.Z()), nil
	}

	p, _ := v.AsR3()
	switch from {
	case frame.Local, frame.LocalCorrected:
		return t.origin.Add(t.globalToECEF.apply(t.localToGlobal(p, from))), nil
	case frame.Global:
		return t.origin.Add(t.globalToECEF.apply(p)), nil
	case frame.ECEF:
		return p, nil
	default:
		return r3.Vector{}, &domain.FrameError{Frame: int(from)}
	}
}

func (t *Transformer) positionFromECEF(p r3.Vector, to frame.Type) (coord.Vector, error) {
	switch to {
	case frame.Spherical:
		return t.ecefToSpherical(p), nil
	case frame.Global:
		return coord.MetricFrom(t.ecefToGlobal.apply(p.Sub(t.origin))), nil
	case frame.Local, frame.LocalCorrected:
		return coord.MetricFrom(t.globalToLocal(t.ecefToGlobal.apply(p.Sub(t.origin)))), nil
	case frame.ECEF:
		return coord.MetricFrom(p), nil
	default:
		return coord.Vector{}, &domain.FrameError{Frame: int(to)}
	}
}

// localToGlobal undoes the heading rotation. frame.Local keeps the
// historical sign error: with zero heading it mirrors X and Y.
func (t *Transformer) localToGlobal(p r3.Vector, from frame.Type) r3.Vector {
	c, s := t.cosHea, t.sinHea
	if from == frame.Local {
		return r3.Vector{
			X: -p.X*c + p.Y*s,
			Y: -p.X*s - p.Y*c,
			Z: p.Z,
		}
	}
	return r3.Vector{
		X: p.X*c + p.Y*s,
		Y: -p.X*s + p.Y*c,
		Z: p.Z,
	}
}

// globalToLocal applies the heading rotation. Both local frames share it.
func (t *Transformer) globalToLocal(g r3.Vector) r3.Vector {
	c, s := t.cosHea, t.sinHea
	return r3.Vector{
		X: g.X*c - g.Y*s,
		Y: g.X*s + g.Y*c,
		Z: g.Z,
	}
}

// sphericalToECEF is the closed-form geodetic to ECEF conversion.
func (t *Transformer) sphericalToECEF(lat, lon, alt float64) r3.Vector {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	// Radius of curvature in the prime vertical.
	n := t.model.A / math.Sqrt(1-t.ecc*t.ecc*sinLat*sinLat)

	a, b := t.model.A, t.model.B
	return r3.Vector{
		X: (alt + n) * cosLat * cosLon,
		Y: (alt + n) * cosLat * sinLon,
		Z: ((b*b)/(a*a)*n + alt) * sinLat,
	}
}

// ecefToSpherical is Bowring's single-step inverse. It is not
// special-cased at the poles.
func (t *Transformer) ecefToSpherical(p r3.Vector) coord.Vector {
	a, b := t.model.A, t.model.B
	e, ep := t.ecc, t.ecc2

	rho := math.Hypot(p.X, p.Y)
	theta := math.Atan((p.Z * a) / (rho * b))
	sinTheta, cosTheta := math.Sincos(theta)

	lat := math.Atan(
		(p.Z + ep*ep*b*sinTheta*sinTheta*sinTheta) /
			(rho - e*e*a*cosTheta*cosTheta*cosTheta))
	lon := math.Atan2(p.Y, p.X)

	sinLat := math.Sin(lat)
	n := a / math.Sqrt(1-e*e*sinLat*sinLat)

	return coord.Spherical(s1.Angle(lat), s1.Angle(lon), rho/math.Cos(lat)-n)
}

func checkFrames(from, to frame.Type) error {
	if !from.IsValid() {
		return &domain.FrameError{Frame: int(from)}
	}
	if !to.IsValid() {
		return &domain.FrameError{Frame: int(to)}
	}
	return nil
}

func (t *Transformer) fail(kind string, v coord.Vector, from, to frame.Type, err error) (coord.Vector, error) {
	t.logger.Warn(kind+" transform failed",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Stringer("value", v),
		zap.Error(err),
	)
	return coord.Vector{}, fmt.Errorf("%s transform %s->%s: %w", kind, from, to, err)
}
