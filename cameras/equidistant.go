package cameras

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// EquidistantDistortion is the fisheye model of Kannala and Brandt. With
// r the radius of the undistorted normalized point and theta = atan(r),
// the distorted radius is
//
//	theta_d = theta * (1 + k1*theta² + k2*theta⁴ + k3*theta⁶ + k4*theta⁸)
//
// and the point is scaled by theta_d/r along its own direction.
type EquidistantDistortion struct {
	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
	K3 float64 `json:"k3"`
	K4 float64 `json:"k4"`
}

// Below this radius the scaling theta_d/r approaches its limit 1 and the
// model degenerates to the identity.
const equidistantRadiusEpsilon = 1e-8

// NewEquidistantDistortion takes in a slice of up to 4 floats
// (k1, k2, k3, k4) that will be passed into the struct in order, filling
// missing values with 0.
func NewEquidistantDistortion(inp []float64) (*EquidistantDistortion, error) {
	if len(inp) > 4 {
		return nil, errors.Errorf("list of parameters too long, expected max 4, got %d", len(inp))
	}
	for i := len(inp); i < 4; i++ {
		inp = append(inp, 0.0)
	}
	return &EquidistantDistortion{inp[0], inp[1], inp[2], inp[3]}, nil
}

// ModelType returns the type of distortion model.
func (e *EquidistantDistortion) ModelType() DistortionType {
	return EquidistantDistortionType
}

// CheckValid checks if the fields for EquidistantDistortion have valid
// inputs.
func (e *EquidistantDistortion) CheckValid() error {
	if e == nil {
		return InvalidDistortionError("EquidistantDistortion shaped parameters not provided")
	}
	return nil
}

// Parameters returns the parameters of the distortion model as a list of
// floats.
func (e *EquidistantDistortion) Parameters() []float64 {
	return []float64{e.K1, e.K2, e.K3, e.K4}
}

// Distort applies the forward fisheye model.
func (e *EquidistantDistortion) Distort(x, y float64) (float64, float64, bool) {
	r := math.Sqrt(x*x + y*y)
	if r <= equidistantRadiusEpsilon {
		return x, y, true
	}
	s := e.thetaD(math.Atan(r)) / r
	return s * x, s * y, !math.IsNaN(s)
}

// DistortWithJacobian applies the forward model and fills the 2x2
// Jacobian of the distorted point with respect to the undistorted one.
//
// With s(r) = theta_d/r the forward map is s(r)*[x y], so the Jacobian
// has the closed form s*I + a*[x y]*[x y]^T with
// a = (dtheta_d/dtheta / (1+r²) - s) / r².
func (e *EquidistantDistortion) DistortWithJacobian(x, y float64, jacobian *mat.Dense) (float64, float64, bool) {
	r2 := x*x + y*y
	r := math.Sqrt(r2)
	if r <= equidistantRadiusEpsilon {
		jacobian.Set(0, 0, 1)
		jacobian.Set(0, 1, 0)
		jacobian.Set(1, 0, 0)
		jacobian.Set(1, 1, 1)
		return x, y, true
	}
	theta := math.Atan(r)
	theta2 := theta * theta
	theta4 := theta2 * theta2
	theta6 := theta4 * theta2
	theta8 := theta4 * theta4

	thetaD := theta * (1 + e.K1*theta2 + e.K2*theta4 + e.K3*theta6 + e.K4*theta8)
	dThetaD := 1 + 3*e.K1*theta2 + 5*e.K2*theta4 + 7*e.K3*theta6 + 9*e.K4*theta8

	s := thetaD / r
	a := (dThetaD/(1+r2) - s) / r2

	jacobian.Set(0, 0, s+a*x*x)
	jacobian.Set(0, 1, a*x*y)
	jacobian.Set(1, 0, a*x*y)
	jacobian.Set(1, 1, s+a*y*y)
	return s * x, s * y, !math.IsNaN(s)
}

// Undistort inverts the forward model with a Gauss-Newton iteration
// started at the distorted point.
func (e *EquidistantDistortion) Undistort(xd, yd float64) (float64, float64, bool) {
	const maxIterations = 20
	const tolerance = 1e-10

	xu, yu := xd, yd
	jac := mat.NewDense(2, 2, nil)
	converged := false
	for i := 0; i < maxIterations; i++ {
		xdEst, ydEst, ok := e.DistortWithJacobian(xu, yu, jac)
		if !ok {
			return xu, yu, false
		}
		errX := xdEst - xd
		errY := ydEst - yd
		if errX*errX+errY*errY < tolerance*tolerance {
			converged = true
			break
		}

		a, b := jac.At(0, 0), jac.At(0, 1)
		c, d := jac.At(1, 0), jac.At(1, 1)
		det := a*d - b*c
		if det == 0 {
			break
		}
		xu -= (d*errX - b*errY) / det
		yu -= (-c*errX + a*errY) / det
	}
	return xu, yu, converged
}

func (e *EquidistantDistortion) thetaD(theta float64) float64 {
	theta2 := theta * theta
	theta4 := theta2 * theta2
	return theta * (1 + e.K1*theta2 + e.K2*theta4 + e.K3*theta4*theta2 + e.K4*theta4*theta4)
}
