package cameras

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrNoIntrinsics is when a camera does not have valid intrinsic
// parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intrinsics are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCamera is a perspective camera with focal lengths (fu, fv),
// principal point (cu, cv) and a distortion model D applied between the
// ideal pinhole projection and the final pixel mapping. It is generic
// over the distortion model so that in-package call sites dispatch
// statically; the CameraGeometry interface is the shared boundary.
//
// Immutable after construction.
type PinholeCamera[D Distortion] struct {
	width, height  int
	fu, fv, cu, cv float64
	distortion     D
}

// NewPinholeCamera validates the intrinsics and distortion parameters and
// builds the camera. Invalid configuration is reported here, before any
// optimization begins.
func NewPinholeCamera[D Distortion](
	width, height int,
	fu, fv, cu, cv float64,
	distortion D,
) (*PinholeCamera[D], error) {
	if width <= 0 || height <= 0 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("invalid size (%#v, %#v)", width, height))
	}
	if fu <= 0 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("invalid focal length fu = %#v", fu))
	}
	if fv <= 0 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("invalid focal length fv = %#v", fv))
	}
	if cu < 0 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("invalid principal point cu = %#v", cu))
	}
	if cv < 0 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("invalid principal point cv = %#v", cv))
	}
	if err := distortion.CheckValid(); err != nil {
		return nil, err
	}
	return &PinholeCamera[D]{width, height, fu, fv, cu, cv, distortion}, nil
}

// Width returns the image width in pixels.
func (c *PinholeCamera[D]) Width() int { return c.width }

// Height returns the image height in pixels.
func (c *PinholeCamera[D]) Height() int { return c.height }

// FocalLengths returns (fu, fv) in pixels.
func (c *PinholeCamera[D]) FocalLengths() (float64, float64) { return c.fu, c.fv }

// PrincipalPoint returns (cu, cv) in pixels.
func (c *PinholeCamera[D]) PrincipalPoint() (float64, float64) { return c.cu, c.cv }

// Distortion returns the distortion model.
func (c *PinholeCamera[D]) Distortion() D { return c.distortion }

// ModelName identifies the lens+distortion pair for diagnostics.
func (c *PinholeCamera[D]) ModelName() string {
	return "pinhole_" + string(c.distortion.ModelType())
}

// CameraMatrix creates the 3x3 camera matrix
//
//	[[fu 0 cu],
//	 [0 fv cv],
//	 [0 0  1]]
func (c *PinholeCamera[D]) CameraMatrix() *mat.Dense {
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, c.fu)
	cameraMatrix.Set(1, 1, c.fv)
	cameraMatrix.Set(0, 2, c.cu)
	cameraMatrix.Set(1, 2, c.cv)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// IsInImage reports whether a pixel lies inside the image bounds.
func (c *PinholeCamera[D]) IsInImage(pixel r2.Point) bool {
	return pixel.X >= 0 && pixel.X <= float64(c.width-1) &&
		pixel.Y >= 0 && pixel.Y <= float64(c.height-1)
}

// Project maps a point in the camera frame to pixel coordinates.
func (c *PinholeCamera[D]) Project(point r3.Vector) (r2.Point, ProjectionStatus) {
	return c.project(point, nil)
}

// ProjectWithJacobian maps a point in the camera frame to pixel
// coordinates and fills jacobian (2x3, may be nil) with the partials of
// the pixel with respect to the point.
func (c *PinholeCamera[D]) ProjectWithJacobian(point r3.Vector, jacobian *mat.Dense) (r2.Point, ProjectionStatus) {
	return c.project(point, jacobian)
}

func (c *PinholeCamera[D]) project(p r3.Vector, jacobian *mat.Dense) (r2.Point, ProjectionStatus) {
	if jacobian != nil {
		jacobian.Zero()
	}
	if p.Z <= 0 {
		return r2.Point{}, ProjectionBehind
	}
	rz := 1.0 / p.Z
	x := p.X * rz
	y := p.Y * rz

	var xd, yd float64
	var ok bool
	if jacobian == nil {
		xd, yd, ok = c.distortion.Distort(x, y)
	} else {
		jd := mat.NewDense(2, 2, nil)
		xd, yd, ok = c.distortion.DistortWithJacobian(x, y, jd)
		if ok {
			// chain through the normalization (x, y) = (X/Z, Y/Z)
			jacobian.Set(0, 0, c.fu*jd.At(0, 0)*rz)
			jacobian.Set(0, 1, c.fu*jd.At(0, 1)*rz)
			jacobian.Set(0, 2, -c.fu*(jd.At(0, 0)*x+jd.At(0, 1)*y)*rz)
			jacobian.Set(1, 0, c.fv*jd.At(1, 0)*rz)
			jacobian.Set(1, 1, c.fv*jd.At(1, 1)*rz)
			jacobian.Set(1, 2, -c.fv*(jd.At(1, 0)*x+jd.At(1, 1)*y)*rz)
		}
	}
	if !ok {
		if jacobian != nil {
			jacobian.Zero()
		}
		return r2.Point{}, ProjectionInvalid
	}

	pixel := r2.Point{X: c.fu*xd + c.cu, Y: c.fv*yd + c.cv}
	if !c.IsInImage(pixel) {
		if jacobian != nil {
			jacobian.Zero()
		}
		return pixel, ProjectionOutsideImage
	}
	return pixel, ProjectionSuccessful
}

// BackProject maps a pixel to the ray through it with unit depth.
func (c *PinholeCamera[D]) BackProject(pixel r2.Point) (r3.Vector, bool) {
	xd := (pixel.X - c.cu) / c.fu
	yd := (pixel.Y - c.cv) / c.fv
	x, y, ok := c.distortion.Undistort(xd, yd)
	return r3.Vector{X: x, Y: y, Z: 1}, ok
}
