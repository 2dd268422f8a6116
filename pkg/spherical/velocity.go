package spherical

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/kailas-cloud/geoframe/internal/domain"
	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/frame"
)

// Velocity converts a velocity between metric frames. Velocities are
// pure rotations: the anchor offset never applies. Spherical frames and
// spherical values are rejected with ErrVelocitySpherical.
func (t *Transformer) Velocity(v coord.Vector, from, to frame.Type) (coord.Vector, error) {
	if err := checkFrames(from, to); err != nil {
		return t.fail("velocity", v, from, to, err)
	}
	if from == frame.Spherical || to == frame.Spherical || v.IsSpherical() {
		return t.fail("velocity", v, from, to, ErrVelocitySpherical)
	}

	p, _ := v.AsR3()
	ecef, err := t.velocityToECEF(p, from)
	if err != nil {
		return t.fail("velocity", v, from, to, err)
	}
	out, err := t.velocityFromECEF(ecef, to)
	if err != nil {
		return t.fail("velocity", v, from, to, err)
	}
	return coord.MetricFrom(out), nil
}

func (t *Transformer) velocityToECEF(p r3.Vector, from frame.Type) (r3.Vector, error) {
	switch from {
	case frame.Local, frame.LocalCorrected:
		return t.globalToECEF.apply(t.localToGlobal(p, from)), nil
	case frame.Global:
		return t.globalToECEF.apply(p), nil
	case frame.ECEF:
		return p, nil
	default:
		return r3.Vector{}, fmt.Errorf("velocity source: %w", &domain.FrameError{Frame: int(from)})
	}
}

func (t *Transformer) velocityFromECEF(p r3.Vector, to frame.Type) (r3.Vector, error) {
	switch to {
	case frame.Global:
		return t.ecefToGlobal.apply(p), nil
	case frame.Local, frame.LocalCorrected:
		return t.globalToLocal(t.ecefToGlobal.apply(p)), nil
	case frame.ECEF:
		return p, nil
	default:
		return r3.Vector{}, fmt.Errorf("velocity target: %w", &domain.FrameError{Frame: int(to)})
	}
}
