// Package frame names the coordinate frames a position or velocity can be
// expressed in.
package frame

import (
	"fmt"
	"strings"
)

// Type identifies a coordinate frame.
type Type int

// Frame constants.
const (
	// Spherical is geodetic latitude, longitude (radians) and altitude (meters).
	Spherical Type = iota + 1
	// ECEF is the body-centered, body-fixed Cartesian frame.
	ECEF
	// Global is the East-North-Up tangent plane at the reference point.
	Global
	// Local is the heading-rotated tangent plane with the historical sign
	// error on the way into ECEF. Kept for compatibility.
	Local
	// LocalCorrected is the heading-rotated tangent plane with the right-handed convention.
	LocalCorrected
)

var names = map[Type]string{
	Spherical:      "SPHERICAL",
	ECEF:           "ECEF",
	Global:         "GLOBAL",
	Local:          "LOCAL",
	LocalCorrected: "LOCAL_CORRECTED",
}

// IsValid checks if the frame is one of the supported values.
func (t Type) IsValid() bool {
	_, ok := names[t]
	return ok
}

// IsLocal reports whether t is one of the heading-rotated frames.
func (t Type) IsLocal() bool {
	return t == Local || t == LocalCorrected
}

// IsMetric reports whether values in t are metric triples.
func (t Type) IsMetric() bool {
	return t.IsValid() && t != Spherical
}

func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("FRAME(%d)", int(t))
}

// Parse resolves a frame name, case-insensitively. LOCAL2 is accepted as an
// alias of LOCAL_CORRECTED.
func Parse(s string) (Type, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	if up == "LOCAL2" {
		return LocalCorrected, nil
	}
	for t, n := range names {
		if n == up {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown frame %q", s)
}
