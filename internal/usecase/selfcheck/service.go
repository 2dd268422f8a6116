// Package selfcheck verifies the configured reference frame by converting
// probe points around it and checking the results are consistent.
package selfcheck

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geoframe/internal/metrics"
	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/frame"
)

// Check names.
const (
	CheckRoundTrip         = "round_trip"
	CheckVelocityRoundTrip = "velocity_round_trip"
	CheckLegacyPattern     = "legacy_pattern"
	CheckRotationNorm      = "rotation_norm"
	CheckSurfaceDistance   = "surface_distance"
)

// surfaceDistanceSlack is the relative gap allowed between the great-circle
// distance on the mean radius and the tangent-plane distance.
const surfaceDistanceSlack = 0.01

// Converter performs frame conversions.
type Converter interface {
	Position(ctx context.Context, v coord.Vector, from, to frame.Type) (coord.Vector, error)
	Velocity(ctx context.Context, v coord.Vector, from, to frame.Type) (coord.Vector, error)
	DistanceOnSurface(latA, lonA, latB, lonB s1.Angle) float64
}

// Service runs the self-check.
type Service struct {
	conv      Converter
	probes    []r3.Vector
	tolerance float64
	logger    *zap.Logger
}

// New creates a Service. probes are LocalCorrected positions in meters.
func New(conv Converter, probes []r3.Vector, tolerance float64, logger *zap.Logger) *Service {
	return &Service{conv: conv, probes: probes, tolerance: tolerance, logger: logger}
}

// Run executes every check. A nil entry means the check passed.
func (s *Service) Run(ctx context.Context) map[string]error {
	results := map[string]error{
		CheckRoundTrip:         s.roundTrip(ctx),
		CheckVelocityRoundTrip: s.velocityRoundTrip(ctx),
		CheckLegacyPattern:     s.legacyPattern(ctx),
		CheckRotationNorm:      s.rotationNorm(ctx),
		CheckSurfaceDistance:   s.surfaceDistance(ctx),
	}
	for name, err := range results {
		if err != nil {
			metrics.SelfCheckFailuresTotal.WithLabelValues(name).Inc()
			s.logger.Warn("Self-check failed", zap.String("check", name), zap.Error(err))
		}
	}
	return results
}

// roundTrip sends every probe out of LocalCorrected and back.
func (s *Service) roundTrip(ctx context.Context) error {
	for _, p := range s.probes {
		in := coord.MetricFrom(p)
		for _, via := range []frame.Type{frame.ECEF, frame.Global, frame.Spherical} {
			out, err := s.conv.Position(ctx, in, frame.LocalCorrected, via)
			if err != nil {
				return err
			}
			back, err := s.conv.Position(ctx, out, via, frame.LocalCorrected)
			if err != nil {
				return err
			}
			if !back.Equal(in, s.tolerance, 0) {
				return fmt.Errorf("probe %s via %s came back as %s", in, via, back)
			}
		}
	}
	return nil
}

func (s *Service) velocityRoundTrip(ctx context.Context) error {
	for _, p := range s.probes {
		in := coord.MetricFrom(p)
		out, err := s.conv.Velocity(ctx, in, frame.LocalCorrected, frame.ECEF)
		if err != nil {
			return err
		}
		back, err := s.conv.Velocity(ctx, out, frame.ECEF, frame.LocalCorrected)
		if err != nil {
			return err
		}
		if !back.Equal(in, s.tolerance, 0) {
			return fmt.Errorf("velocity %s came back as %s", in, back)
		}
	}
	return nil
}

// legacyPattern checks that LOCAL keeps its historical sign error: entering
// the global frame from (x, y) must match LOCAL_CORRECTED from (-x, y) with
// the north component negated, at any heading.
func (s *Service) legacyPattern(ctx context.Context) error {
	for _, p := range s.probes {
		legacy, err := s.conv.Position(ctx, coord.MetricFrom(p), frame.Local, frame.Global)
		if err != nil {
			return err
		}
		mirrored := coord.Metric(-p.X, p.Y, p.Z)
		fixed, err := s.conv.Position(ctx, mirrored, frame.LocalCorrected, frame.Global)
		if err != nil {
			return err
		}
		f, _ := fixed.AsR3()
		want := coord.Metric(f.X, -f.Y, f.Z)
		if !legacy.Equal(want, s.tolerance, 0) {
			return fmt.Errorf("probe %v: LOCAL gave %s, expected %s", p, legacy, want)
		}
	}
	return nil
}

// rotationNorm checks that velocity conversions preserve magnitude.
func (s *Service) rotationNorm(ctx context.Context) error {
	for _, p := range s.probes {
		out, err := s.conv.Velocity(ctx, coord.MetricFrom(p), frame.LocalCorrected, frame.Global)
		if err != nil {
			return err
		}
		q, _ := out.AsR3()
		if math.Abs(q.Norm()-p.Norm()) > s.tolerance {
			return fmt.Errorf("velocity %v changed magnitude to %g", p, q.Norm())
		}
	}
	return nil
}

// surfaceDistance checks that the great-circle distance from the reference
// point to each probe matches the probe's horizontal offset.
func (s *Service) surfaceDistance(ctx context.Context) error {
	originLat, originLon, err := s.latLon(ctx, r3.Vector{})
	if err != nil {
		return err
	}
	for _, p := range s.probes {
		lat, lon, err := s.latLon(ctx, p)
		if err != nil {
			return err
		}
		d := s.conv.DistanceOnSurface(originLat, originLon, lat, lon)
		h := math.Hypot(p.X, p.Y)
		if math.Abs(d-h) > s.tolerance+surfaceDistanceSlack*h {
			return fmt.Errorf("probe %v: surface distance %g m, horizontal offset %g m", p, d, h)
		}
	}
	return nil
}

func (s *Service) latLon(ctx context.Context, p r3.Vector) (s1.Angle, s1.Angle, error) {
	out, err := s.conv.Position(ctx, coord.MetricFrom(p), frame.LocalCorrected, frame.Spherical)
	if err != nil {
		return 0, 0, err
	}
	lat, ok := out.Lat()
	if !ok {
		return 0, 0, fmt.Errorf("probe %v: expected spherical output, got %s", p, out)
	}
	lon, _ := out.Lon()
	return lat, lon, nil
}
