package spherical

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// rotation is an orthonormal 3×3 matrix.
type rotation struct {
	m *mat.Dense
}

func newRotation(
	m00, m01, m02,
	m10, m11, m12,
	m20, m21, m22 float64,
) rotation {
	return rotation{m: mat.NewDense(3, 3, []float64{
		m00, m01, m02,
		m10, m11, m12,
		m20, m21, m22,
	})}
}

// ecefToENU is the rotation from ECEF to East-North-Up at (lat, lon).
// See navipedia, "Transformations between ECEF and ENU coordinates".
func ecefToENU(lat, lon float64) rotation {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	return newRotation(
		-sinLon, cosLon, 0,
		-cosLon*sinLat, -sinLon*sinLat, cosLat,
		cosLon*cosLat, sinLon*cosLat, sinLat,
	)
}

// transpose returns the inverse rotation.
func (r rotation) transpose() rotation {
	return rotation{m: mat.DenseCopyOf(r.m.T())}
}

// apply returns r·v.
func (r rotation) apply(v r3.Vector) r3.Vector {
	var out mat.VecDense
	out.MulVec(r.m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
