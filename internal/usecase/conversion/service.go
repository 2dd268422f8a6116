// Package conversion serves frame conversions from a shared, reconfigurable
// transformer and records their metrics.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geoframe/internal/domain"
	"github.com/kailas-cloud/geoframe/internal/logger"
	"github.com/kailas-cloud/geoframe/internal/metrics"
	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/ellipsoid"
	"github.com/kailas-cloud/geoframe/pkg/frame"
	"github.com/kailas-cloud/geoframe/pkg/spherical"
)

const (
	kindPosition = "position"
	kindVelocity = "velocity"
)

// Frame is a consistent snapshot of the transformer state.
type Frame struct {
	Surface   ellipsoid.Surface
	Model     ellipsoid.Model
	Reference spherical.Reference
	Origin    r3.Vector
}

// Service wraps a Transformer with a single-writer/multi-reader lock.
type Service struct {
	mu     sync.RWMutex
	tr     *spherical.Transformer
	logger *zap.Logger
}

// New creates a Service around tr.
func New(tr *spherical.Transformer, logger *zap.Logger) *Service {
	return &Service{tr: tr, logger: logger}
}

// Position converts a position and records the outcome.
func (s *Service) Position(ctx context.Context, v coord.Vector, from, to frame.Type) (coord.Vector, error) {
	start := time.Now()

	s.mu.RLock()
	out, err := s.tr.Position(v, from, to)
	s.mu.RUnlock()

	s.observe(ctx, kindPosition, from, to, time.Since(start), err)
	if err != nil {
		return coord.Vector{}, fmt.Errorf("convert position: %w", err)
	}
	return out, nil
}

// Velocity converts a velocity and records the outcome.
func (s *Service) Velocity(ctx context.Context, v coord.Vector, from, to frame.Type) (coord.Vector, error) {
	start := time.Now()

	s.mu.RLock()
	out, err := s.tr.Velocity(v, from, to)
	s.mu.RUnlock()

	s.observe(ctx, kindVelocity, from, to, time.Since(start), err)
	if err != nil {
		return coord.Vector{}, fmt.Errorf("convert velocity: %w", err)
	}
	return out, nil
}

// DistanceOnSurface returns the great-circle distance on the configured surface.
func (s *Service) DistanceOnSurface(latA, lonA, latB, lonB s1.Angle) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tr.DistanceOnSurface(latA, lonA, latB, lonB)
}

// Frame returns the current surface and reference.
func (s *Service) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Frame{
		Surface:   s.tr.Surface(),
		Model:     s.tr.Model(),
		Reference: s.tr.Reference(),
		Origin:    s.tr.Origin(),
	}
}

// Reconfigure runs fn against the transformer under the write lock, so
// surface and reference changes land together.
func (s *Service) Reconfigure(ctx context.Context, fn func(tr *spherical.Transformer)) Frame {
	s.mu.Lock()
	fn(s.tr)
	s.mu.Unlock()

	return s.updated(ctx)
}

func (s *Service) updated(ctx context.Context) Frame {
	metrics.ReferenceUpdatesTotal.Inc()

	f := s.Frame()
	s.log(ctx).Info("Reference frame updated",
		zap.Stringer("surface", f.Surface),
		zap.Float64("latitude_deg", f.Reference.Latitude.Degrees()),
		zap.Float64("longitude_deg", f.Reference.Longitude.Degrees()),
		zap.Float64("elevation_m", f.Reference.Elevation),
		zap.Float64("heading_deg", f.Reference.Heading.Degrees()),
	)
	return f
}

func (s *Service) observe(ctx context.Context, kind string, from, to frame.Type, d time.Duration, err error) {
	metrics.ConversionDuration.WithLabelValues(kind).Observe(d.Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		reason := Reason(err)
		metrics.ConversionErrorsTotal.WithLabelValues(kind, reason).Inc()
		s.log(ctx).Debug("Conversion rejected",
			zap.String("kind", kind),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
	metrics.ConversionsTotal.WithLabelValues(kind, from.String(), to.String(), status).Inc()
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// Reason maps a conversion error to a metrics label.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTagMismatch):
		return "tag_mismatch"
	case errors.Is(err, domain.ErrVelocitySpherical):
		return "velocity_spherical"
	case errors.Is(err, domain.ErrUnknownFrame):
		return "unknown_frame"
	default:
		return "other"
	}
}
