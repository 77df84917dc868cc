package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Transformation is a rigid transform stored as a unit quaternion plus a
// translation. Its storage representation is 7 numbers ordered
// [tx ty tz qx qy qz qw]; its tangent space is 6-dimensional,
// [dtx dty dtz dax day daz], with the rotational perturbation applied on
// the left: q <- Exp(da) * q. Values are immutable; every operation
// returns a new Transformation with a unit-norm quaternion.
type Transformation struct {
	q quat.Number
	t r3.Vector
}

// NewTransformation builds a transformation from a rotation quaternion
// (normalized internally) and a translation.
func NewTransformation(rotation quat.Number, translation r3.Vector) Transformation {
	return Transformation{q: Normalize(rotation), t: translation}
}

// Identity returns the identity transformation.
func Identity() Transformation {
	return Transformation{q: quat.Number{Real: 1}}
}

// FromParameters reads the 7-number storage representation
// [tx ty tz qx qy qz qw]. The quaternion is renormalized, so parameter
// vectors carrying norm drift from repeated solver updates are accepted.
func FromParameters(p []float64) Transformation {
	return Transformation{
		q: Normalize(quat.Number{Real: p[6], Imag: p[3], Jmag: p[4], Kmag: p[5]}),
		t: r3.Vector{X: p[0], Y: p[1], Z: p[2]},
	}
}

// Parameters writes the 7-number storage representation into dst.
func (T Transformation) Parameters(dst []float64) {
	dst[0], dst[1], dst[2] = T.t.X, T.t.Y, T.t.Z
	dst[3], dst[4], dst[5], dst[6] = T.q.Imag, T.q.Jmag, T.q.Kmag, T.q.Real
}

// Rotation returns the unit rotation quaternion.
func (T Transformation) Rotation() quat.Number { return T.q }

// Translation returns the translation component.
func (T Transformation) Translation() r3.Vector { return T.t }

// Inverse returns the transformation undoing T.
func (T Transformation) Inverse() Transformation {
	qi := quat.Conj(T.q)
	return Transformation{q: qi, t: Rotate(qi, T.t.Mul(-1))}
}

// Compose returns T * U, the transformation applying U first and T
// second.
func (T Transformation) Compose(U Transformation) Transformation {
	return Transformation{q: Normalize(quat.Mul(T.q, U.q)), t: T.Apply(U.t)}
}

// Apply transforms a point: R*p + t.
func (T Transformation) Apply(p r3.Vector) r3.Vector {
	return Rotate(T.q, p).Add(T.t)
}

// ApplyHomogeneous transforms a homogeneous point [x y z w]; the scale
// component w passes through unchanged, so points at infinity (w == 0)
// are rotated without translation.
func (T Transformation) ApplyHomogeneous(hp [4]float64) [4]float64 {
	v := Rotate(T.q, r3.Vector{X: hp[0], Y: hp[1], Z: hp[2]}).Add(T.t.Mul(hp[3]))
	return [4]float64{v.X, v.Y, v.Z, hp[3]}
}

// Oplus applies a tangent-space perturbation [dt da] (len 6) and
// renormalizes the resulting quaternion.
func (T Transformation) Oplus(delta []float64) Transformation {
	dq := Exp(r3.Vector{X: delta[3], Y: delta[4], Z: delta[5]})
	return Transformation{
		q: Normalize(quat.Mul(dq, T.q)),
		t: T.t.Add(r3.Vector{X: delta[0], Y: delta[1], Z: delta[2]}),
	}
}

// Ominus writes into dst (len 6) the tangent vector delta such that
// U.Oplus(delta) equals T.
func (T Transformation) Ominus(U Transformation, dst []float64) {
	dt := T.t.Sub(U.t)
	da := Log(quat.Mul(T.q, quat.Conj(U.q)))
	dst[0], dst[1], dst[2] = dt.X, dt.Y, dt.Z
	dst[3], dst[4], dst[5] = da.X, da.Y, da.Z
}

// AlmostEqual reports whether two transformations agree to within tol in
// both rotation (geodesic angle, radians) and translation (euclidean).
func (T Transformation) AlmostEqual(U Transformation, tol float64) bool {
	return QuaternionAlmostEqual(T.q, U.q, tol) && T.t.Sub(U.t).Norm() < tol
}
