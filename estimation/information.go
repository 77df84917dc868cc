package estimation

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// informationWeight holds a 2x2 information (inverse-covariance) matrix
// together with its eagerly computed Cholesky square root and inverse,
// so that whitening on the hot evaluation path is a cached multiply.
type informationWeight struct {
	information *mat.SymDense
	// squareRoot is the upper-triangular factor U with U^T U equal to
	// the information matrix; whitening multiplies residuals and
	// Jacobians by U.
	squareRoot *mat.Dense
	covariance *mat.SymDense
}

// set validates and stores a new information matrix. A matrix that is
// not symmetric positive definite is a configuration error reported
// here, at set time, never at evaluation time.
func (w *informationWeight) set(information *mat.SymDense) error {
	if information == nil {
		return errors.New("information matrix is required")
	}
	if n := information.SymmetricDim(); n != 2 {
		return errors.Errorf("information matrix must be 2x2, got %dx%d", n, n)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(information); !ok {
		return errors.New("information matrix is not positive definite")
	}
	covariance := mat.NewSymDense(2, nil)
	if err := chol.InverseTo(covariance); err != nil {
		return errors.Wrap(err, "inverting information matrix")
	}
	var u mat.TriDense
	chol.UTo(&u)

	stored := mat.NewSymDense(2, nil)
	stored.CopySym(information)
	w.information = stored
	w.squareRoot = mat.DenseCopyOf(&u)
	w.covariance = covariance
	return nil
}

// whiten multiplies a raw 2-vector residual by the square-root
// information.
func (w *informationWeight) whiten(ex, ey float64) (float64, float64) {
	s := w.squareRoot
	return s.At(0, 0)*ex + s.At(0, 1)*ey, s.At(1, 0)*ex + s.At(1, 1)*ey
}
