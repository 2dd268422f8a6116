package spherical

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/frame"
)

func TestVelocityECEFIdentity(t *testing.T) {
	got, err := New().Velocity(coord.Metric(1, 2, -4), frame.ECEF, frame.ECEF)
	require.NoError(t, err)
	assert.True(t, got.Identical(coord.Metric(1, 2, -4)))
}

func TestVelocityIgnoresAnchor(t *testing.T) {
	tr := New(WithReference(testReference()))
	in := coord.Metric(1, 2, -4)

	got, err := tr.Velocity(in, frame.Global, frame.ECEF)
	require.NoError(t, err)
	p, _ := got.AsR3()
	assert.InDelta(t, r3.Vector{X: 1, Y: 2, Z: -4}.Norm(), p.Norm(), 1e-9)
}

func TestVelocityRoundTrip(t *testing.T) {
	tr := New(WithReference(testReference()))
	in := coord.Metric(1, 2, -4)
	frames := []frame.Type{frame.ECEF, frame.Global, frame.LocalCorrected}

	for _, from := range frames {
		for _, to := range frames {
			out, err := tr.Velocity(in, from, to)
			require.NoError(t, err)
			if from != to {
				assert.False(t, out.Equals(in), "%s->%s", from, to)
			}
			back, err := tr.Velocity(out, to, from)
			require.NoError(t, err)
			assert.True(t, back.Equal(in, 1e-9, 0), "%s->%s->%s: %s", from, to, from, back)
		}
	}
}

func TestVelocityZeroHeadingIdentity(t *testing.T) {
	tr := New(WithReference(Reference{Latitude: coord.Degrees(-22.9), Longitude: coord.Degrees(-43.2)}))
	for _, v := range []r3.Vector{{X: 1}, {Y: 1}, {Z: 1}, {X: -1}, {Y: -1}, {Z: -1}} {
		local, err := tr.Velocity(coord.MetricFrom(v), frame.Global, frame.LocalCorrected)
		require.NoError(t, err)
		assertR3(t, v, local, 1e-12)

		global, err := tr.Velocity(local, frame.LocalCorrected, frame.Global)
		require.NoError(t, err)
		assertR3(t, v, global, 1e-12)
	}
}

func TestVelocityLegacyLocalSigns(t *testing.T) {
	in := coord.Metric(1, 2, -4)

	// With sin(heading) == 0 the legacy frame mirrors X and Y.
	for _, h := range []s1.Angle{0, math.Pi} {
		tr := New(WithReference(Reference{Latitude: 0.3, Longitude: -1.2, Heading: h}))
		legacy, err := tr.Velocity(in, frame.Local, frame.Global)
		require.NoError(t, err)
		fixed, err := tr.Velocity(in, frame.LocalCorrected, frame.Global)
		require.NoError(t, err)

		lp, _ := legacy.AsR3()
		fp, _ := fixed.AsR3()
		assert.InDelta(t, -fp.X, lp.X, 1e-9, "heading %v", h)
		assert.InDelta(t, -fp.Y, lp.Y, 1e-9, "heading %v", h)
		assert.InDelta(t, fp.Z, lp.Z, 1e-9, "heading %v", h)
	}

	// At a quarter turn both patterns agree.
	for _, h := range []s1.Angle{math.Pi / 2, -math.Pi / 2} {
		tr := New(WithReference(Reference{Heading: h}))
		legacy, err := tr.Velocity(in, frame.Local, frame.Global)
		require.NoError(t, err)
		fixed, err := tr.Velocity(in, frame.LocalCorrected, frame.Global)
		require.NoError(t, err)
		assert.True(t, legacy.Equal(fixed, 1e-9, 0), "heading %v", h)
	}
}

func TestVelocityWithHeading(t *testing.T) {
	tr := New(WithReference(Reference{
		Latitude:  coord.Degrees(-22.9),
		Longitude: coord.Degrees(-43.2),
		Heading:   coord.Degrees(90),
	}))

	cases := []struct{ global, local r3.Vector }{
		{r3.Vector{X: 1}, r3.Vector{Y: -1}},
		{r3.Vector{X: -1}, r3.Vector{Y: 1}},
		{r3.Vector{Y: 1}, r3.Vector{X: 1}},
		{r3.Vector{Y: -1}, r3.Vector{X: -1}},
	}
	for _, c := range cases {
		local, err := tr.Velocity(coord.MetricFrom(c.global), frame.Global, frame.LocalCorrected)
		require.NoError(t, err)
		assertR3(t, c.local, local, 1e-9)

		global, err := tr.Velocity(coord.MetricFrom(c.local), frame.LocalCorrected, frame.Global)
		require.NoError(t, err)
		assertR3(t, c.global, global, 1e-9)
	}
}

func TestVelocityRejectsSpherical(t *testing.T) {
	logger, logs := observed()
	tr := New(WithLogger(logger))

	cases := []struct {
		v        coord.Vector
		from, to frame.Type
	}{
		{coord.Metric(1, 2, -4), frame.Spherical, frame.Global},
		{coord.Metric(1, 2, -4), frame.Global, frame.Spherical},
		{coord.Metric(1, 2, -4), frame.Spherical, frame.ECEF},
		{coord.Spherical(0.1, 0.2, 3), frame.ECEF, frame.Global},
	}
	for _, c := range cases {
		got, err := tr.Velocity(c.v, c.from, c.to)
		assert.ErrorIs(t, err, ErrVelocitySpherical)
		assert.True(t, got.Identical(coord.Vector{}))
	}
	assert.Equal(t, len(cases), logs.FilterMessage("velocity transform failed").Len())
}

func TestVelocityUnknownFrame(t *testing.T) {
	tr := New()
	_, err := tr.Velocity(coord.Metric(1, 2, -4), 7, frame.ECEF)
	assert.ErrorIs(t, err, ErrUnknownFrame)
	_, err = tr.Velocity(coord.Metric(1, 2, -4), frame.ECEF, 7)
	assert.ErrorIs(t, err, ErrUnknownFrame)
}
