package cameras

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// RadialTangentialDistortion is the Brown-Conrady model:
//
//	x_d = x_u * (1 + k1*r² + k2*r⁴ + k3*r⁶) + 2*p1*x_u*y_u + p2*(r² + 2*x_u²)
//	y_d = y_u * (1 + k1*r² + k2*r⁴ + k3*r⁶) + 2*p2*x_u*y_u + p1*(r² + 2*y_u²)
//
// where (x_u, y_u) are undistorted normalized coordinates and r² their
// squared radius.
type RadialTangentialDistortion struct {
	RadialK1     float64 `json:"rk1"`
	RadialK2     float64 `json:"rk2"`
	RadialK3     float64 `json:"rk3"`
	TangentialP1 float64 `json:"tp1"`
	TangentialP2 float64 `json:"tp2"`
}

// NewRadialTangentialDistortion takes in a slice of up to 5 floats
// (k1, k2, k3, p1, p2) that will be passed into the struct in order,
// filling missing values with 0.
func NewRadialTangentialDistortion(inp []float64) (*RadialTangentialDistortion, error) {
	if len(inp) > 5 {
		return nil, errors.Errorf("list of parameters too long, expected max 5, got %d", len(inp))
	}
	for i := len(inp); i < 5; i++ {
		inp = append(inp, 0.0)
	}
	return &RadialTangentialDistortion{inp[0], inp[1], inp[2], inp[3], inp[4]}, nil
}

// ModelType returns the type of distortion model.
func (rt *RadialTangentialDistortion) ModelType() DistortionType {
	return RadialTangentialDistortionType
}

// CheckValid checks if the fields for RadialTangentialDistortion have
// valid inputs.
func (rt *RadialTangentialDistortion) CheckValid() error {
	if rt == nil {
		return InvalidDistortionError("RadialTangentialDistortion shaped parameters not provided")
	}
	return nil
}

// Parameters returns the parameters of the distortion model as a list of
// floats.
func (rt *RadialTangentialDistortion) Parameters() []float64 {
	return []float64{rt.RadialK1, rt.RadialK2, rt.RadialK3, rt.TangentialP1, rt.TangentialP2}
}

// Distort applies the forward Brown-Conrady model.
func (rt *RadialTangentialDistortion) Distort(x, y float64) (float64, float64, bool) {
	r2 := x*x + y*y
	r4 := r2 * r2
	r6 := r4 * r2
	radDist := 1.0 + rt.RadialK1*r2 + rt.RadialK2*r4 + rt.RadialK3*r6
	xd := x*radDist + 2.0*rt.TangentialP1*x*y + rt.TangentialP2*(r2+2.0*x*x)
	yd := y*radDist + 2.0*rt.TangentialP2*x*y + rt.TangentialP1*(r2+2.0*y*y)
	return xd, yd, !math.IsNaN(xd) && !math.IsNaN(yd)
}

// DistortWithJacobian applies the forward model and fills the 2x2
// Jacobian of the distorted point with respect to the undistorted one.
func (rt *RadialTangentialDistortion) DistortWithJacobian(x, y float64, jacobian *mat.Dense) (float64, float64, bool) {
	r2 := x*x + y*y
	r4 := r2 * r2
	radDist := 1.0 + rt.RadialK1*r2 + rt.RadialK2*r4 + rt.RadialK3*r4*r2

	// d(radDist)/dx and /dy share the factor k1 + 2*k2*r² + 3*k3*r⁴
	g := rt.RadialK1 + 2.0*rt.RadialK2*r2 + 3.0*rt.RadialK3*r4
	dRadDx := 2.0 * x * g
	dRadDy := 2.0 * y * g

	jacobian.Set(0, 0, radDist+x*dRadDx+2.0*rt.TangentialP1*y+6.0*rt.TangentialP2*x)
	jacobian.Set(0, 1, x*dRadDy+2.0*rt.TangentialP1*x+2.0*rt.TangentialP2*y)
	jacobian.Set(1, 0, y*dRadDx+2.0*rt.TangentialP2*y+2.0*rt.TangentialP1*x)
	jacobian.Set(1, 1, radDist+y*dRadDy+2.0*rt.TangentialP2*x+6.0*rt.TangentialP1*y)

	xd := x*radDist + 2.0*rt.TangentialP1*x*y + rt.TangentialP2*(r2+2.0*x*x)
	yd := y*radDist + 2.0*rt.TangentialP2*x*y + rt.TangentialP1*(r2+2.0*y*y)
	return xd, yd, !math.IsNaN(xd) && !math.IsNaN(yd)
}

// Undistort inverts the forward model with a Newton-Raphson iteration
// started at the distorted point.
func (rt *RadialTangentialDistortion) Undistort(xd, yd float64) (float64, float64, bool) {
	const maxIterations = 20
	const tolerance = 1e-10

	xu, yu := xd, yd
	jac := mat.NewDense(2, 2, nil)
	converged := false
	for i := 0; i < maxIterations; i++ {
		xdEst, ydEst, ok := rt.DistortWithJacobian(xu, yu, jac)
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
