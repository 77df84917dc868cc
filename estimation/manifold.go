package estimation

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/lvslam/okvis/spatialmath"
)

// Manifold relates a parameter block's over-parameterized storage to the
// minimal tangent space the solver steps along.
type Manifold interface {
	// AmbientSize is the dimension of the raw storage representation.
	AmbientSize() int

	// TangentSize is the dimension of the tangent space.
	TangentSize() int

	// Plus applies a tangent-space perturbation:
	// xPlusDelta = x [+] delta.
	Plus(x, delta, xPlusDelta []float64)

	// Minus computes the tangent vector delta such that
	// Plus(y, delta) == x.
	Minus(x, y, delta []float64)

	// PlusJacobian fills jacobian (AmbientSize x TangentSize) with the
	// partials of Plus(x, delta) with respect to delta at delta = 0.
	PlusJacobian(x []float64, jacobian *mat.Dense)

	// LiftJacobian fills jacobian (TangentSize x AmbientSize) with the
	// matrix relating an ambient differential to the tangent
	// differential; it is the pseudo-inverse of the plus Jacobian, so
	// LiftJacobian * PlusJacobian is the tangent-space identity.
	LiftJacobian(x []float64, jacobian *mat.Dense)
}

// PoseParameterization is the manifold of rigid transformations stored
// as [tx ty tz qx qy qz qw] with the 6-dof tangent [dt da]; the
// rotational perturbation is applied on the left via the quaternion
// exponential map. The quaternion has unit norm immediately after every
// Plus, regardless of pre-existing drift in x.
type PoseParameterization struct{}

// AmbientSize returns 7.
func (PoseParameterization) AmbientSize() int { return 7 }

// TangentSize returns 6.
func (PoseParameterization) TangentSize() int { return 6 }

// Plus applies [dt da] and renormalizes the quaternion.
func (PoseParameterization) Plus(x, delta, xPlusDelta []float64) {
	spatialmath.FromParameters(x).Oplus(delta).Parameters(xPlusDelta)
}

// Minus computes the tangent vector taking y to x.
func (PoseParameterization) Minus(x, y, delta []float64) {
	spatialmath.FromParameters(x).Ominus(spatialmath.FromParameters(y), delta)
}

// PlusJacobian fills the 7x6 derivative of Plus at delta = 0. The
// quaternion rows are d(Exp(da) * q)/d(da) = Q(q) * 0.5 * [I3; 0] with
// Q(q) the right-multiplication matrix.
func (PoseParameterization) PlusJacobian(x []float64, jacobian *mat.Dense) {
	jacobian.Zero()
	for i := 0; i < 3; i++ {
		jacobian.Set(i, i, 1)
	}
	qr := spatialmath.RightMatrix(rotationOf(x))
	for r := 0; r < 4; r++ {
		for c := 0; c < 3; c++ {
			jacobian.Set(3+r, 3+c, 0.5*qr.At(r, c))
		}
	}
}

// LiftJacobian fills the 6x7 pseudo-inverse of the plus Jacobian: the
// quaternion columns are 2 * [I3 0] * Q(q^-1).
func (PoseParameterization) LiftJacobian(x []float64, jacobian *mat.Dense) {
	jacobian.Zero()
	for i := 0; i < 3; i++ {
		jacobian.Set(i, i, 1)
	}
	qr := spatialmath.RightMatrix(quat.Conj(rotationOf(x)))
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			jacobian.Set(3+r, 3+c, 2*qr.At(r, c))
		}
	}
}

func rotationOf(x []float64) quat.Number {
	return spatialmath.Normalize(quat.Number{Real: x[6], Imag: x[3], Jmag: x[4], Kmag: x[5]})
}

// HomogeneousPointParameterization is the manifold of homogeneous
// landmarks [x y z w] with the 3-dof tangent perturbing the euclidean
// part and leaving w fixed, so points at infinity stay at infinity.
type HomogeneousPointParameterization struct{}

// AmbientSize returns 4.
func (HomogeneousPointParameterization) AmbientSize() int { return 4 }

// TangentSize returns 3.
func (HomogeneousPointParameterization) TangentSize() int { return 3 }

// Plus adds delta to the euclidean part.
func (HomogeneousPointParameterization) Plus(x, delta, xPlusDelta []float64) {
	xPlusDelta[0] = x[0] + delta[0]
	xPlusDelta[1] = x[1] + delta[1]
	xPlusDelta[2] = x[2] + delta[2]
	xPlusDelta[3] = x[3]
}

// Minus subtracts the euclidean parts.
func (HomogeneousPointParameterization) Minus(x, y, delta []float64) {
	delta[0] = x[0] - y[0]
	delta[1] = x[1] - y[1]
	delta[2] = x[2] - y[2]
}

// PlusJacobian fills the constant 4x3 matrix [I3; 0].
func (HomogeneousPointParameterization) PlusJacobian(_ []float64, jacobian *mat.Dense) {
	jacobian.Zero()
	for i := 0; i < 3; i++ {
		jacobian.Set(i, i, 1)
	}
}

// LiftJacobian fills the constant 3x4 matrix [I3 0].
func (HomogeneousPointParameterization) LiftJacobian(_ []float64, jacobian *mat.Dense) {
	jacobian.Zero()
	for i := 0; i < 3; i++ {
		jacobian.Set(i, i, 1)
	}
}
