package cameras

import "gonum.org/v1/gonum/mat"

// NoDistortion is the identity distortion model of an ideal lens.
type NoDistortion struct{}

// ModelType returns the type of distortion model.
func (n *NoDistortion) ModelType() DistortionType { return NoDistortionType }

// CheckValid always passes; the model has no parameters to validate.
func (n *NoDistortion) CheckValid() error { return nil }

// Parameters returns the empty parameter list.
func (n *NoDistortion) Parameters() []float64 { return []float64{} }

// Distort returns the point unchanged.
func (n *NoDistortion) Distort(x, y float64) (float64, float64, bool) {
	return x, y, true
}

// DistortWithJacobian returns the point unchanged with an identity
// Jacobian.
func (n *NoDistortion) DistortWithJacobian(x, y float64, jacobian *mat.Dense) (float64, float64, bool) {
	jacobian.Set(0, 0, 1)
	jacobian.Set(0, 1, 0)
	jacobian.Set(1, 0, 0)
	jacobian.Set(1, 1, 1)
	return x, y, true
}

// Undistort returns the point unchanged.
func (n *NoDistortion) Undistort(xd, yd float64) (float64, float64, bool) {
	return xd, yd, true
}
