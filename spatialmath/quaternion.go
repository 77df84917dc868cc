// Package spatialmath implements the rigid-body math underneath the
// estimation core: unit quaternions, the rotation exponential and log
// maps, and the 7-parameter rigid transformation with its 6-dof tangent
// space.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Below this rotation angle (radians) the closed forms divide by a
// vanishing norm, so series limits are used instead.
const smallAngle = 1e-10

// Norm returns the 4-norm of a quaternion.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Normalize scales q to unit norm.
func Normalize(q quat.Number) quat.Number {
	return quat.Scale(1./Norm(q), q)
}

// Exp maps a rotation vector (axis times angle, radians) to the unit
// quaternion performing that rotation.
func Exp(aa r3.Vector) quat.Number {
	theta := aa.Norm()
	if theta < smallAngle {
		return Normalize(quat.Number{Real: 1, Imag: aa.X / 2, Jmag: aa.Y / 2, Kmag: aa.Z / 2})
	}
	s := math.Sin(theta/2) / theta
	return quat.Number{Real: math.Cos(theta / 2), Imag: s * aa.X, Jmag: s * aa.Y, Kmag: s * aa.Z}
}

// Log inverts Exp, returning the rotation vector of a unit quaternion
// with angle in [0, pi]. q and -q rotate identically; the short arc is
// always taken.
func Log(q quat.Number) r3.Vector {
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	vn := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if vn < smallAngle {
		return r3.Vector{X: 2 * q.Imag, Y: 2 * q.Jmag, Z: 2 * q.Kmag}
	}
	theta := 2 * math.Atan2(vn, q.Real)
	return r3.Vector{X: theta * q.Imag / vn, Y: theta * q.Jmag / vn, Z: theta * q.Kmag / vn}
}

// Rotate applies the rotation of unit quaternion q to v.
func Rotate(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// RotationMatrix returns the 3x3 rotation matrix of a unit quaternion.
func RotationMatrix(q quat.Number) *mat.Dense {
	x, y, z, w := q.Imag, q.Jmag, q.Kmag, q.Real
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}

// Skew returns the 3x3 cross-product matrix of v, so that Skew(v)*u
// equals v x u.
func Skew(v r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})
}

// RightMatrix returns the 4x4 matrix Q(q) acting on quaternion
// coefficient vectors ordered (x, y, z, w) such that
// Q(q) * vec(p) = vec(p * q).
func RightMatrix(q quat.Number) *mat.Dense {
	x, y, z, w := q.Imag, q.Jmag, q.Kmag, q.Real
	return mat.NewDense(4, 4, []float64{
		w, z, -y, x,
		-z, w, x, y,
		y, -x, w, z,
		-x, -y, -z, w,
	})
}

// QuaternionAlmostEqual reports whether a and b represent rotations
// within tol of each other, treating q and -q as equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	d := quat.Mul(a, quat.Conj(b))
	return Log(d).Norm() < tol
}
