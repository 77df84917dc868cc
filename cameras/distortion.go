package cameras

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DistortionType is the name of the distortion model.
type DistortionType string

const (
	// NoDistortionType is for an ideal lens with no distortion at all.
	NoDistortionType = DistortionType("none")
	// RadialTangentialDistortionType is the Brown-Conrady model for simple
	// lenses of narrow field.
	RadialTangentialDistortionType = DistortionType("radial_tangential")
	// EquidistantDistortionType is for wide-angle and fisheye lenses.
	EquidistantDistortionType = DistortionType("equidistant")
)

// Distortion warps ideal (undistorted) normalized image coordinates into
// the distorted coordinates a real lens produces. Implementations are
// immutable after construction and safe for concurrent use.
type Distortion interface {
	ModelType() DistortionType
	CheckValid() error
	Parameters() []float64

	// Distort maps an undistorted normalized point to its distorted
	// counterpart. ok is false on numerical breakdown.
	Distort(x, y float64) (xd, yd float64, ok bool)

	// DistortWithJacobian additionally fills jacobian, a caller-supplied
	// 2x2 matrix, with the partials of the distorted point with respect
	// to the undistorted one.
	DistortWithJacobian(x, y float64, jacobian *mat.Dense) (xd, yd float64, ok bool)

	// Undistort inverts Distort. ok is false if the inversion did not
	// converge.
	Undistort(xd, yd float64) (x, y float64, ok bool)
}

// InvalidDistortionError is used when the distortion parameters are
// invalid.
func InvalidDistortionError(msg string) error {
	return errors.Wrap(errors.New("invalid distortion parameters"), msg)
}

// NewDistortion returns a Distortion given a valid DistortionType and its
// parameters.
func NewDistortion(distortionType DistortionType, parameters []float64) (Distortion, error) {
	switch distortionType {
	case NoDistortionType:
		if len(parameters) != 0 {
			return nil, InvalidDistortionError("model takes no parameters")
		}
		return &NoDistortion{}, nil
	case RadialTangentialDistortionType:
		return NewRadialTangentialDistortion(parameters)
	case EquidistantDistortionType:
		return NewEquidistantDistortion(parameters)
	default:
		return nil, errors.Errorf("do not know how to parse %q distortion model", distortionType)
	}
}
