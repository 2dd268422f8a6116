package conversion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/geo/s1"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/geoframe/internal/domain"
	"github.com/kailas-cloud/geoframe/internal/logger"
	"github.com/kailas-cloud/geoframe/internal/metrics"
	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/ellipsoid"
	"github.com/kailas-cloud/geoframe/pkg/frame"
	"github.com/kailas-cloud/geoframe/pkg/spherical"
)

func newService() *Service {
	tr := spherical.New(spherical.WithReference(spherical.Reference{
		Latitude:  coord.Degrees(-22.9),
		Longitude: coord.Degrees(-43.2),
		Heading:   coord.Degrees(90),
	}))
	return New(tr, zap.NewNop())
}

func TestPosition_RecordsSuccess(t *testing.T) {
	svc := newService()
	before := testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("position", "GLOBAL", "LOCAL_CORRECTED", "ok"))

	out, err := svc.Position(context.Background(), coord.Metric(0, 1, 0), frame.Global, frame.LocalCorrected)
	require.NoError(t, err)
	assert.True(t, out.Equals(coord.Metric(1, 0, 0)), out.String())

	after := testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("position", "GLOBAL", "LOCAL_CORRECTED", "ok"))
	assert.InDelta(t, 1, after-before, 1e-9)
}

func TestPosition_RecordsFailure(t *testing.T) {
	svc := newService()
	before := testutil.ToFloat64(metrics.ConversionErrorsTotal.WithLabelValues("position", "tag_mismatch"))

	_, err := svc.Position(context.Background(), coord.Metric(1, 2, 3), frame.Spherical, frame.ECEF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTagMismatch))

	after := testutil.ToFloat64(metrics.ConversionErrorsTotal.WithLabelValues("position", "tag_mismatch"))
	assert.InDelta(t, 1, after-before, 1e-9)
}

func TestVelocity_RejectsSpherical(t *testing.T) {
	svc := newService()
	before := testutil.ToFloat64(metrics.ConversionErrorsTotal.WithLabelValues("velocity", "velocity_spherical"))

	_, err := svc.Velocity(context.Background(), coord.Metric(1, 2, 3), frame.Spherical, frame.Global)
	assert.ErrorIs(t, err, domain.ErrVelocitySpherical)

	after := testutil.ToFloat64(metrics.ConversionErrorsTotal.WithLabelValues("velocity", "velocity_spherical"))
	assert.InDelta(t, 1, after-before, 1e-9)
}

func TestReconfigure_Reference(t *testing.T) {
	svc := newService()
	before := testutil.ToFloat64(metrics.ReferenceUpdatesTotal)

	f := svc.Reconfigure(context.Background(), func(tr *spherical.Transformer) {
		tr.SetHeading(0)
	})
	assert.Equal(t, s1.Angle(0), f.Reference.Heading)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ReferenceUpdatesTotal)-before, 1e-9)

	out, err := svc.Velocity(context.Background(), coord.Metric(0, 1, 0), frame.Global, frame.LocalCorrected)
	require.NoError(t, err)
	assert.True(t, out.Equals(coord.Metric(0, 1, 0)), out.String())
}

func TestReconfigure_Surface(t *testing.T) {
	svc := newService()

	f := svc.Reconfigure(context.Background(), func(tr *spherical.Transformer) { tr.SetSurface(ellipsoid.Moon) })
	assert.Equal(t, ellipsoid.Moon, f.Surface)
	assert.InDelta(t, 1737400.0, f.Model.Radius, 1e-6)
	assert.Less(t, f.Origin.Norm(), 2e6)

	f = svc.Reconfigure(context.Background(), func(tr *spherical.Transformer) { tr.SetCustomSurface(100, 100) })
	assert.Equal(t, ellipsoid.Custom, f.Surface)
	assert.InDelta(t, 100, svc.Frame().Model.Radius, 1e-9)
}

func TestReconfigure_SurfaceAndReferenceTogether(t *testing.T) {
	svc := newService()
	before := testutil.ToFloat64(metrics.ReferenceUpdatesTotal)

	f := svc.Reconfigure(context.Background(), func(tr *spherical.Transformer) {
		tr.SetSurface(ellipsoid.Moon)
		tr.SetElevation(100)
	})
	assert.Equal(t, ellipsoid.Moon, f.Surface)
	assert.InDelta(t, 100, f.Reference.Elevation, 1e-12)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ReferenceUpdatesTotal)-before, 1e-9)
}

func TestDistanceOnSurface(t *testing.T) {
	svc := newService()
	d := svc.DistanceOnSurface(
		coord.Degrees(46.250944), coord.Degrees(-122.249972),
		coord.Degrees(46.124953), coord.Degrees(-122.251683),
	)
	assert.InDelta(t, 14002, d, 20)
}

func TestRequestLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	svc := newService()
	_, _ = svc.Velocity(ctx, coord.Metric(1, 2, 3), frame.ECEF, frame.Spherical)

	entries := logs.FilterMessage("Conversion rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "velocity_spherical", entries[0].ContextMap()["reason"])
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				out, err := svc.Velocity(ctx, coord.Metric(3, 4, 0), frame.Global, frame.LocalCorrected)
				if err != nil {
					t.Error(err)
					return
				}
				p, _ := out.AsR3()
				if d := p.Norm() - 5; d > 1e-9 || d < -1e-9 {
					t.Errorf("rotation changed norm: %v", p)
					return
				}
			}
		}()
	}
	for j := 0; j < 50; j++ {
		h := float64(j)
		svc.Reconfigure(ctx, func(tr *spherical.Transformer) { tr.SetHeading(coord.Degrees(h)) })
	}
	wg.Wait()
}

func TestReason(t *testing.T) {
	assert.Equal(t, "tag_mismatch", Reason(domain.ErrTagMismatch))
	assert.Equal(t, "velocity_spherical", Reason(domain.ErrVelocitySpherical))
	assert.Equal(t, "unknown_frame", Reason(&domain.FrameError{Frame: 9}))
	assert.Equal(t, "other", Reason(errors.New("boom")))
}
