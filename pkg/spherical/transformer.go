// Package spherical converts positions and velocities between geodetic,
// body-fixed Cartesian (ECEF) and local tangent-plane frames anchored at a
// reference point on an ellipsoid.
//
// A Transformer owns its ellipsoid model and reference point. Mutations
// (SetSurface, SetCustomSurface, Update and the Set* helpers) recompute
// every cached quantity before returning. Conversions only read, so they
// may run concurrently as long as no mutation is in flight; the
// Transformer itself does not lock.
package spherical

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geoframe/internal/domain"
	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/ellipsoid"
)

// Errors returned by conversions. Every failure is also logged.
var (
	ErrTagMismatch       = domain.ErrTagMismatch
	ErrVelocitySpherical = domain.ErrVelocitySpherical
	ErrUnknownFrame      = domain.ErrUnknownFrame
)

// Reference is the anchor of the local tangent-plane frames.
type Reference struct {
	Latitude  s1.Angle
	Longitude s1.Angle
	// Elevation above the ellipsoid, meters.
	Elevation float64
	// Heading is the angle from East to the local X axis, or equivalently
	// from North to the local Y axis.
	Heading s1.Angle
}

// Transformer converts coordinates between frames.
type Transformer struct {
	model  ellipsoid.Model
	ref    Reference
	logger *zap.Logger

	// Derived from model and ref by recompute.
	ecc, ecc2    float64
	ecefToGlobal rotation
	globalToECEF rotation
	// Cosine and sine of the negated heading. Heading has historically been
	// a clockwise rotation from GLOBAL to LOCAL; right-handed frames need it
	// anticlockwise.
	cosHea, sinHea float64
	origin         r3.Vector
}

// Option configures a Transformer.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	surface ellipsoid.Surface
	axes    *[2]float64
	ref     Reference
}

// WithLogger sets the sink for diagnostics. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSurface selects a preset surface.
func WithSurface(s ellipsoid.Surface) Option {
	return func(o *options) {
		o.surface = s
		o.axes = nil
	}
}

// WithCustomSurface selects a custom ellipsoid.
func WithCustomSurface(axisEquatorial, axisPolar float64) Option {
	return func(o *options) {
		o.surface = ellipsoid.Custom
		o.axes = &[2]float64{axisEquatorial, axisPolar}
	}
}

// WithReference sets the anchor point and heading.
func WithReference(ref Reference) Option {
	return func(o *options) { o.ref = ref }
}

// New creates a Transformer. Without options it uses Earth WGS84 and a
// reference at latitude 0, longitude 0, elevation 0, heading 0.
func New(opts ...Option) *Transformer {
	o := options{surface: ellipsoid.EarthWGS84}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	t := &Transformer{model: ellipsoid.Earth(), ref: o.ref, logger: o.logger}
	if o.axes != nil {
		t.selectCustom(o.axes[0], o.axes[1])
	} else {
		t.selectPreset(o.surface)
	}
	t.recompute()
	return t
}

// Surface returns the selected surface.
func (t *Transformer) Surface() ellipsoid.Surface { return t.model.Surface }

// Model returns the ellipsoid in use.
func (t *Transformer) Model() ellipsoid.Model { return t.model }

// SurfaceRadius returns the mean radius used by DistanceOnSurface.
func (t *Transformer) SurfaceRadius() float64 { return t.model.Radius }

// Reference returns the anchor point and heading.
func (t *Transformer) Reference() Reference { return t.ref }

// Origin returns the ECEF position of the reference point.
func (t *Transformer) Origin() r3.Vector { return t.origin }

// SetSurface selects a preset surface and recomputes the frame. Custom
// without axes and unknown surfaces are logged and leave the axes as they
// were.
func (t *Transformer) SetSurface(s ellipsoid.Surface) {
	t.selectPreset(s)
	t.recompute()
}

// SetCustomSurface selects a custom ellipsoid and recomputes the frame.
// Invalid axes are logged and replaced with the Earth WGS84 constants.
func (t *Transformer) SetCustomSurface(axisEquatorial, axisPolar float64) {
	t.selectCustom(axisEquatorial, axisPolar)
	t.recompute()
}

// Update mutates the reference and recomputes the frame.
func (t *Transformer) Update(fn func(ref *Reference)) {
	fn(&t.ref)
	t.recompute()
}

// SetLatitude sets the reference latitude.
func (t *Transformer) SetLatitude(lat s1.Angle) {
	t.Update(func(r *Reference) { r.Latitude = lat })
}

// SetLongitude sets the reference longitude.
func (t *Transformer) SetLongitude(lon s1.Angle) {
	t.Update(func(r *Reference) { r.Longitude = lon })
}

// SetElevation sets the reference elevation in meters.
func (t *Transformer) SetElevation(elev float64) {
	t.Update(func(r *Reference) { r.Elevation = elev })
}

// SetHeading sets the heading offset.
func (t *Transformer) SetHeading(heading s1.Angle) {
	t.Update(func(r *Reference) { r.Heading = heading })
}

// Equal reports whether both transformers use the same surface and
// reference, with the default angular and metric tolerances.
func (t *Transformer) Equal(o *Transformer) bool {
	return t.model.Surface == o.model.Surface &&
		coord.AngleEqual(t.ref.Latitude, o.ref.Latitude, coord.DefaultAngleTolerance) &&
		coord.AngleEqual(t.ref.Longitude, o.ref.Longitude, coord.DefaultAngleTolerance) &&
		math.Abs(t.ref.Elevation-o.ref.Elevation) <= coord.DefaultTolerance &&
		coord.AngleEqual(t.ref.Heading, o.ref.Heading, coord.DefaultAngleTolerance)
}

func (t *Transformer) selectPreset(s ellipsoid.Surface) {
	m, err := ellipsoid.Preset(s)
	if err != nil {
		t.logger.Warn("surface not applied",
			zap.Stringer("surface", s),
			zap.Int("surface_id", int(s)),
			zap.Error(err),
		)
		if s == ellipsoid.Custom {
			t.model.Surface = ellipsoid.Custom
		}
		return
	}
	t.model = m
}

func (t *Transformer) selectCustom(a, b float64) {
	m, err := ellipsoid.NewCustom(a, b)
	if err != nil {
		t.logger.Warn("invalid custom surface", zap.Error(err))
	}
	t.model = m
}

// recompute refreshes every cached quantity from model and ref.
func (t *Transformer) recompute() {
	t.ecc = t.model.Eccentricity()
	t.ecc2 = t.model.SecondEccentricity()

	t.ecefToGlobal = ecefToENU(t.ref.Latitude.Radians(), t.ref.Longitude.Radians())
	t.globalToECEF = t.ecefToGlobal.transpose()

	t.sinHea, t.cosHea = math.Sincos(-t.ref.Heading.Radians())

	t.origin = t.sphericalToECEF(t.ref.Latitude.Radians(), t.ref.Longitude.Radians(), t.ref.Elevation)

	t.logger.Debug("reference frame updated",
		zap.Stringer("surface", t.model.Surface),
		zap.Float64("latitude_deg", t.ref.Latitude.Degrees()),
		zap.Float64("longitude_deg", t.ref.Longitude.Degrees()),
		zap.Float64("elevation_m", t.ref.Elevation),
		zap.Float64("heading_deg", t.ref.Heading.Degrees()),
	)
}
