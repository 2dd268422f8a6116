package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEllipsoid signals custom axes that do not describe an oblate ellipsoid.
	ErrInvalidEllipsoid = errors.New("invalid ellipsoid parameters")
	// ErrUnknownSurface signals a surface selector outside the supported set.
	ErrUnknownSurface = errors.New("unknown surface type")
	// ErrCustomNeedsAxes signals a custom surface selected without axis lengths.
	ErrCustomNeedsAxes = errors.New("custom surface requires axis lengths")

	// ErrTagMismatch signals a coordinate whose metric/spherical tag does not fit the frame.
	ErrTagMismatch = errors.New("coordinate vector has wrong type")
	// ErrVelocitySpherical signals a velocity routed through the spherical frame.
	ErrVelocitySpherical = errors.New("velocity cannot be expressed in spherical coordinates")
	// ErrUnknownFrame signals a frame identifier outside the supported set.
	ErrUnknownFrame = errors.New("unknown coordinate type")

	// ErrInvalidReference signals reference coordinates outside their valid range.
	ErrInvalidReference = errors.New("invalid reference coordinates")
)

// EllipsoidError wraps ErrInvalidEllipsoid with the rejected axes.
type EllipsoidError struct {
	AxisEquatorial float64
	AxisPolar      float64
}

func (e *EllipsoidError) Error() string {
	return fmt.Sprintf("%s: equatorial=%g polar=%g, defaulting to Earth's parameters",
		ErrInvalidEllipsoid.Error(), e.AxisEquatorial, e.AxisPolar)
}

func (e *EllipsoidError) Unwrap() error { return ErrInvalidEllipsoid }

// NewEllipsoidError creates an invalid ellipsoid error.
func NewEllipsoidError(a, b float64) error {
	return &EllipsoidError{AxisEquatorial: a, AxisPolar: b}
}

// FrameError wraps ErrUnknownFrame with the offending identifier.
type FrameError struct {
	Frame int
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s[%d]", ErrUnknownFrame.Error(), e.Frame)
}

func (e *FrameError) Unwrap() error { return ErrUnknownFrame }
