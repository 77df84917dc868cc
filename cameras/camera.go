// Package cameras models lens geometry for the estimation core: the
// projection from a 3D point in the camera frame to a pixel, its inverse,
// and the analytic Jacobians the optimizer depends on. Camera objects are
// immutable after construction and shared read-only across arbitrarily
// many concurrently evaluating error terms.
package cameras

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// ProjectionStatus reports whether a projection constrains a residual.
// Anything other than ProjectionSuccessful means "this point does not
// constrain this residual at the current iterate".
type ProjectionStatus int

const (
	// ProjectionSuccessful means the point projected inside the image.
	ProjectionSuccessful ProjectionStatus = iota
	// ProjectionOutsideImage means the pixel landed outside the bounds.
	ProjectionOutsideImage
	// ProjectionBehind means the point has non-positive depth.
	ProjectionBehind
	// ProjectionInvalid means the distortion model broke down numerically.
	ProjectionInvalid
)

func (s ProjectionStatus) String() string {
	switch s {
	case ProjectionSuccessful:
		return "successful"
	case ProjectionOutsideImage:
		return "outside_image"
	case ProjectionBehind:
		return "behind"
	case ProjectionInvalid:
		return "invalid"
	}
	return "unknown"
}

// CameraGeometry projects 3D points expressed in the camera's local
// frame to pixels and back. Implementations must be deterministic and
// safe for concurrent use.
type CameraGeometry interface {
	// Width and Height are the image dimensions in pixels.
	Width() int
	Height() int

	// ModelName identifies the concrete lens+distortion pair for
	// diagnostics.
	ModelName() string

	// Project maps a point in the camera frame to pixel coordinates.
	Project(point r3.Vector) (r2.Point, ProjectionStatus)

	// ProjectWithJacobian additionally fills jacobian, a caller-supplied
	// 2x3 matrix, with the partials of the pixel with respect to the
	// point. A nil jacobian skips the derivative computation. On a
	// non-successful status the jacobian is zeroed.
	ProjectWithJacobian(point r3.Vector, jacobian *mat.Dense) (r2.Point, ProjectionStatus)

	// BackProject maps a pixel to the ray through it, returned as the
	// direction with unit depth (x, y, 1). ok is false if the distortion
	// inversion did not converge.
	BackProject(pixel r2.Point) (r3.Vector, bool)

	// IsInImage reports whether a pixel lies inside the image bounds.
	IsInImage(pixel r2.Point) bool
}
