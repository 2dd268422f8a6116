package spherical

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/geoframe/internal/domain"
	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/ellipsoid"
	"github.com/kailas-cloud/geoframe/pkg/frame"
)

// Degree factor used to build the OSRF fixture.
const osrfDegToRad = 0.0174532925

var (
	osrfECEF   = r3.Vector{X: -2693701.91434394, Y: -4299942.14687992, Z: 3851691.0393571}
	googleENU  = r3.Vector{X: -1510.88, Y: 3766.64, Z: -3.29}
	osrfLatDeg = 37.3877349
	osrfLonDeg = -122.0651166
)

func osrfTransformer() *Transformer {
	return New(WithReference(Reference{
		Latitude:  s1.Angle(osrfLatDeg * osrfDegToRad),
		Longitude: s1.Angle(osrfLonDeg * osrfDegToRad),
		Elevation: 32.0,
	}))
}

func TestSphericalToECEF(t *testing.T) {
	tr := osrfTransformer()
	in := coord.Spherical(s1.Angle(osrfLatDeg*osrfDegToRad), s1.Angle(osrfLonDeg*osrfDegToRad), 32.0)

	ecef, err := tr.Position(in, frame.Spherical, frame.ECEF)
	require.NoError(t, err)
	p, ok := ecef.AsR3()
	require.True(t, ok)
	assert.InDelta(t, osrfECEF.X, p.X, 8e-2)
	assert.InDelta(t, osrfECEF.Y, p.Y, 8e-2)
	assert.InDelta(t, osrfECEF.Z, p.Z, 1e-2)

	back, err := tr.Position(ecef, frame.ECEF, frame.Spherical)
	require.NoError(t, err)
	lat, ok := back.Lat()
	require.True(t, ok)
	lon, _ := back.Lon()
	assert.InDelta(t, osrfLatDeg*osrfDegToRad, lat.Radians(), 1e-9)
	assert.InDelta(t, osrfLonDeg*osrfDegToRad, lon.Radians(), 1e-9)
	assert.InDelta(t, 32.0, back.Z(), 1e-3)
}

func TestSphericalToGlobal(t *testing.T) {
	tr := osrfTransformer()
	google := coord.Spherical(coord.Degrees(37.4216719), coord.Degrees(-122.0821853), 30.0)

	for _, to := range []frame.Type{frame.Global, frame.LocalCorrected, frame.Local} {
		got, err := tr.Position(google, frame.Spherical, to)
		require.NoError(t, err, to.String())
		assertR3(t, googleENU, got, 8e-2)
	}
}

func TestECEFToGlobalAtDefaultReference(t *testing.T) {
	got, err := New().Position(coord.Metric(-1510.88, 2, -4), frame.ECEF, frame.Global)
	require.NoError(t, err)
	assertR3(t, r3.Vector{X: 2, Y: -4, Z: -6379647.88}, got, 1e-6)
}

func TestPositionRoundTrip(t *testing.T) {
	tr := New(WithReference(testReference()))
	points := []r3.Vector{
		{X: 1, Y: 2, Z: -4},
		{X: 0, Y: 0, Z: 0},
		{X: 2243.52334, Y: 556.35, Z: 435.6553},
		{X: -15000, Y: 42000, Z: -120},
	}
	frames := []frame.Type{frame.ECEF, frame.Global, frame.LocalCorrected, frame.Spherical}

	for _, p := range points {
		for _, via := range frames {
			out, err := tr.Position(coord.MetricFrom(p), frame.LocalCorrected, via)
			require.NoError(t, err)
			back, err := tr.Position(out, via, frame.LocalCorrected)
			require.NoError(t, err)
			assertR3(t, p, back, 1e-3)
		}
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	for _, s := range []ellipsoid.Surface{ellipsoid.EarthWGS84, ellipsoid.Moon} {
		tr := New(WithSurface(s), WithReference(testReference()))
		in := coord.Spherical(coord.Degrees(-22.9), coord.Degrees(-43.2), 120)

		for _, via := range []frame.Type{frame.ECEF, frame.Global, frame.LocalCorrected} {
			out, err := tr.Position(in, frame.Spherical, via)
			require.NoError(t, err)
			back, err := tr.Position(out, via, frame.Spherical)
			require.NoError(t, err)
			assert.True(t, in.Equal(back, 1e-3, 1e-9), "%s via %s: %s", s, via, back)
		}
	}
}

func TestZeroHeadingIdentity(t *testing.T) {
	tr := New(WithReference(Reference{
		Latitude:  0.3,
		Longitude: -1.2,
		Elevation: 354.1,
	}))
	for _, p := range []r3.Vector{{X: 1}, {Y: 1}, {X: 1, Y: -1}, {X: 2243.52334, Y: 556.35, Z: 435.6553}} {
		got, err := tr.Position(coord.MetricFrom(p), frame.Global, frame.LocalCorrected)
		require.NoError(t, err)
		assertR3(t, p, got, 1e-6)

		got, err = tr.Position(coord.MetricFrom(p), frame.LocalCorrected, frame.Global)
		require.NoError(t, err)
		assertR3(t, p, got, 1e-6)
	}
}

func TestLocalKeepsLegacySignPattern(t *testing.T) {
	tr := New(WithReference(testReference()))
	in := coord.Metric(1, 2, -4)

	legacy, err := tr.Position(in, frame.Local, frame.Global)
	require.NoError(t, err)
	fixed, err := tr.Position(in, frame.LocalCorrected, frame.Global)
	require.NoError(t, err)
	assert.False(t, legacy.Equals(fixed))

	// Leaving the local frame is shared by both variants.
	g := coord.Metric(5, -3, 7)
	a, err := tr.Position(g, frame.Global, frame.Local)
	require.NoError(t, err)
	b, err := tr.Position(g, frame.Global, frame.LocalCorrected)
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
}

func TestInverse(t *testing.T) {
	tr := New(WithReference(testReference()))
	in := coord.Metric(1, 2, -4)

	vel, err := tr.Velocity(in, frame.LocalCorrected, frame.Global)
	require.NoError(t, err)
	assert.False(t, vel.Equals(in))
	back, err := tr.Velocity(vel, frame.Global, frame.LocalCorrected)
	require.NoError(t, err)
	assert.True(t, back.Equals(in), back.String())

	for _, via := range []frame.Type{frame.Global, frame.Spherical} {
		out, err := tr.Position(in, frame.LocalCorrected, via)
		require.NoError(t, err)
		assert.False(t, out.Equals(in), "via %s", via)
		back, err := tr.Position(out, via, frame.LocalCorrected)
		require.NoError(t, err)
		assert.True(t, back.Equals(in), "via %s: %s", via, back)
	}
}

// A LOCAL position sent out through SPHERICAL comes back through the shared
// output stage, so the legacy input mirror shows up as a reflection about
// the heading axis.
func TestInverseLegacyLocalThroughSpherical(t *testing.T) {
	for _, heading := range []float64{0, 0.5, math.Pi / 2, math.Pi} {
		ref := testReference()
		ref.Heading = s1.Angle(heading)
		tr := New(WithReference(ref))
		x, y, z := 1.0, 2.0, -4.0

		out, err := tr.Position(coord.Metric(x, y, z), frame.Local, frame.Spherical)
		require.NoError(t, err)
		require.True(t, out.IsSpherical())

		back, err := tr.Position(out, frame.Spherical, frame.Local)
		require.NoError(t, err)

		sin2, cos2 := math.Sincos(2 * heading)
		want := r3.Vector{
			X: -x*cos2 - y*sin2,
			Y: x*sin2 - y*cos2,
			Z: z,
		}
		assertR3(t, want, back, 1e-3)
	}
}

func TestPositionTagMismatch(t *testing.T) {
	logger, logs := observed()
	tr := New(WithLogger(logger))

	_, err := tr.Position(coord.Metric(1, 2, 3), frame.Spherical, frame.ECEF)
	assert.ErrorIs(t, err, ErrTagMismatch)

	_, err = tr.Position(coord.Spherical(0.1, 0.2, 3), frame.Global, frame.ECEF)
	assert.ErrorIs(t, err, ErrTagMismatch)

	entries := logs.FilterMessage("position transform failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "SPHERICAL", entries[0].ContextMap()["from"])
	assert.Equal(t, "ECEF", entries[0].ContextMap()["to"])
}

func TestPositionUnknownFrame(t *testing.T) {
	logger, logs := observed()
	tr := New(WithLogger(logger))
	in := coord.Metric(1, 2, -4)

	for _, c := range []struct{ from, to frame.Type }{
		{7, 6},
		{frame.Local, 6},
		{0, frame.ECEF},
	} {
		got, err := tr.Position(in, c.from, c.to)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownFrame))

		var fe *domain.FrameError
		assert.True(t, errors.As(err, &fe))
		assert.True(t, got.Identical(coord.Vector{}))
	}
	assert.Equal(t, 3, logs.Len())
}

func TestPositionNoHeadingDirections(t *testing.T) {
	tr := New(WithReference(Reference{
		Latitude:  coord.Degrees(-22.9),
		Longitude: coord.Degrees(-43.2),
	}))
	at := func(dLat, dLon, dAlt float64) r3.Vector {
		t.Helper()
		in := coord.Spherical(coord.Degrees(-22.9+dLat), coord.Degrees(-43.2+dLon), dAlt)
		out, err := tr.Position(in, frame.Spherical, frame.LocalCorrected)
		require.NoError(t, err)
		p, _ := out.AsR3()
		return p
	}

	origin := at(0, 0, 0)
	assert.InDelta(t, 0, origin.Norm(), 1e-3)

	north := at(1, 0, 0)
	assert.InDelta(t, origin.X, north.X, 1e-4)
	assert.Greater(t, north.Y, origin.Y)

	south := at(-1, 0, 0)
	assert.InDelta(t, origin.X, south.X, 1e-4)
	assert.Less(t, south.Y, origin.Y)

	// Parallels bend toward the south pole in the southern hemisphere.
	east := at(0, 1, 0)
	assert.Greater(t, east.X, origin.X)
	assert.Less(t, east.Y, origin.Y)

	west := at(0, -1, 0)
	assert.Less(t, west.X, origin.X)
	assert.Less(t, west.Y, origin.Y)

	up := at(0, 0, 10)
	assert.InDelta(t, origin.X, up.X, 1e-4)
	assert.InDelta(t, origin.Y, up.Y, 1e-4)
	assert.InDelta(t, origin.Z+10, up.Z, 1e-4)

	down := at(0, 0, -10)
	assert.InDelta(t, origin.Z-10, down.Z, 1e-4)
}

func TestPositionWithHeadingDirections(t *testing.T) {
	// Heading 90°: X is North, Y is West.
	tr := New(WithReference(Reference{
		Latitude:  coord.Degrees(-22.9),
		Longitude: coord.Degrees(-43.2),
		Heading:   coord.Degrees(90),
	}))
	at := func(dLat, dLon float64) r3.Vector {
		t.Helper()
		in := coord.Spherical(coord.Degrees(-22.9+dLat), coord.Degrees(-43.2+dLon), 0)
		out, err := tr.Position(in, frame.Spherical, frame.LocalCorrected)
		require.NoError(t, err)
		p, _ := out.AsR3()
		return p
	}

	origin := at(0, 0)
	assert.InDelta(t, 0, origin.Norm(), 1e-3)

	north := at(1, 0)
	assert.InDelta(t, origin.Y, north.Y, 1e-4)
	assert.Greater(t, north.X, origin.X)

	south := at(-1, 0)
	assert.InDelta(t, origin.Y, south.Y, 1e-4)
	assert.Less(t, south.X, origin.X)

	east := at(0, 1)
	assert.Less(t, east.Y, origin.Y)
	assert.Less(t, east.X, origin.X)

	west := at(0, -1)
	assert.Greater(t, west.Y, origin.Y)
	assert.Less(t, west.X, origin.X)
}
