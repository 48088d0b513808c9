package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Perp returns the transverse radius of v (distance from the z axis).
func Perp(v r3.Vec) float64 {
	return math.Hypot(v.X, v.Y)
}

// Phi returns the azimuthal angle of v in (-pi, pi].
func Phi(v r3.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// PointAt returns pos advanced by path along dir.
func PointAt(pos, dir r3.Vec, path float64) r3.Vec {
	return r3.Add(pos, r3.Scale(path, dir))
}
