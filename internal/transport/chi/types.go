package chi

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// FrameResponse describes the active surface and reference frame.
type FrameResponse struct {
	Surface   SurfaceBody   `json:"surface"`
	Reference ReferenceBody `json:"reference"`
	Origin    ECEFBody      `json:"origin_ecef"`
	Version   string        `json:"version"`
}

// SurfaceBody describes an ellipsoid.
type SurfaceBody struct {
	Type           string  `json:"type"`
	AxisEquatorial float64 `json:"axis_equatorial"`
	AxisPolar      float64 `json:"axis_polar"`
	Flattening     float64 `json:"flattening"`
	Radius         float64 `json:"radius"`
}

// ReferenceBody describes the reference point in degrees and meters.
type ReferenceBody struct {
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	ElevationM   float64 `json:"elevation_m"`
	HeadingDeg   float64 `json:"heading_deg"`
}

// ECEFBody is a body-fixed Cartesian position in meters.
type ECEFBody struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// UpdateFrameRequest is the body of PUT /v1/frame. Absent fields keep
// their current value.
type UpdateFrameRequest struct {
	Surface      *SurfaceRequest `json:"surface,omitempty"`
	LatitudeDeg  *float64        `json:"latitude_deg,omitempty"`
	LongitudeDeg *float64        `json:"longitude_deg,omitempty"`
	ElevationM   *float64        `json:"elevation_m,omitempty"`
	HeadingDeg   *float64        `json:"heading_deg,omitempty"`
}

// SurfaceRequest selects a surface. Axes are read for CUSTOM_SURFACE only.
type SurfaceRequest struct {
	Type           string  `json:"type"`
	AxisEquatorial float64 `json:"axis_equatorial"`
	AxisPolar      float64 `json:"axis_polar"`
}
