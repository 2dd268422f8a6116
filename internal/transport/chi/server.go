package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geoframe/internal/domain"
	"github.com/kailas-cloud/geoframe/internal/logger"
	conversionuc "github.com/kailas-cloud/geoframe/internal/usecase/conversion"
	healthuc "github.com/kailas-cloud/geoframe/internal/usecase/health"
	"github.com/kailas-cloud/geoframe/internal/version"
	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/ellipsoid"
	"github.com/kailas-cloud/geoframe/pkg/spherical"
)

const maxBodyBytes = 1 << 16

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the diagnostic HTTP API.
type Server struct {
	frames        *conversionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(frames *conversionuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		frames: frames,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidEllipsoid, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrUnknownSurface, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidReference, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
	}
	return s
}

type route struct {
	method    string
	pattern   string
	operation string
	handler   http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{http.MethodGet, "/healthz", "health", s.HealthCheck},
		{http.MethodGet, "/metrics", "metrics", s.Metrics},
		{http.MethodGet, "/v1/frame", "get_frame", s.GetFrame},
		{http.MethodPut, "/v1/frame", "update_frame", s.UpdateFrame},
	}
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	for _, rt := range s.routes() {
		r.MethodFunc(rt.method, rt.pattern, rt.handler)
	}
}

// Operations maps "METHOD /pattern" of every route to its operation name,
// for metrics labelling.
func (s *Server) Operations() map[string]string {
	ops := make(map[string]string)
	for _, rt := range s.routes() {
		ops[rt.method+" "+rt.pattern] = rt.operation
	}
	return ops
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// GetFrame handles GET /v1/frame.
func (s *Server) GetFrame(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, frameToResponse(s.frames.Frame()))
}

// UpdateFrame handles PUT /v1/frame.
func (s *Server) UpdateFrame(w http.ResponseWriter, r *http.Request) {
	var req UpdateFrameRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid request body")
		return
	}

	apply, err := planUpdate(req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	f := s.frames.Reconfigure(r.Context(), apply)
	logger.FromContextOr(r.Context(), s.logger).Debug("Frame reconfigured over HTTP",
		zap.Stringer("surface", f.Surface))
	writeJSON(w, http.StatusOK, frameToResponse(f))
}

// planUpdate validates req and returns the mutation to apply. Only fields
// present in req are written, so concurrent updates to other fields survive.
// Nothing is applied when validation fails.
func planUpdate(req UpdateFrameRequest) (func(tr *spherical.Transformer), error) {
	if req.LatitudeDeg != nil && !spherical.ValidCoordinates(*req.LatitudeDeg, 0) {
		return nil, fmt.Errorf("%w: latitude %g", domain.ErrInvalidReference, *req.LatitudeDeg)
	}
	if req.LongitudeDeg != nil && !spherical.ValidCoordinates(0, *req.LongitudeDeg) {
		return nil, fmt.Errorf("%w: longitude %g", domain.ErrInvalidReference, *req.LongitudeDeg)
	}

	var setSurface func(tr *spherical.Transformer)
	if req.Surface != nil {
		surface, err := ellipsoid.ParseSurface(req.Surface.Type)
		if err != nil {
			return nil, err
		}
		if surface == ellipsoid.Custom {
			a, b := req.Surface.AxisEquatorial, req.Surface.AxisPolar
			if _, err := ellipsoid.NewCustom(a, b); err != nil {
				return nil, err
			}
			setSurface = func(tr *spherical.Transformer) { tr.SetCustomSurface(a, b) }
		} else {
			setSurface = func(tr *spherical.Transformer) { tr.SetSurface(surface) }
		}
	}

	return func(tr *spherical.Transformer) {
		if setSurface != nil {
			setSurface(tr)
		}
		tr.Update(func(ref *spherical.Reference) {
			if req.LatitudeDeg != nil {
				ref.Latitude = coord.Degrees(*req.LatitudeDeg)
			}
			if req.LongitudeDeg != nil {
				ref.Longitude = coord.Degrees(*req.LongitudeDeg)
			}
			if req.ElevationM != nil {
				ref.Elevation = *req.ElevationM
			}
			if req.HeadingDeg != nil {
				ref.Heading = coord.Degrees(*req.HeadingDeg)
			}
		})
	}, nil
}

func frameToResponse(f conversionuc.Frame) FrameResponse {
	return FrameResponse{
		Surface: SurfaceBody{
			Type:           f.Surface.String(),
			AxisEquatorial: f.Model.A,
			AxisPolar:      f.Model.B,
			Flattening:     f.Model.F,
			Radius:         f.Model.Radius,
		},
		Reference: ReferenceBody{
			LatitudeDeg:  f.Reference.Latitude.Degrees(),
			LongitudeDeg: f.Reference.Longitude.Degrees(),
			ElevationM:   f.Reference.Elevation,
			HeadingDeg:   f.Reference.Heading.Degrees(),
		},
		Origin:  ECEFBody{X: f.Origin.X, Y: f.Origin.Y, Z: f.Origin.Z},
		Version: version.String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidEllipsoid,
		domain.ErrUnknownSurface,
		domain.ErrInvalidReference,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
