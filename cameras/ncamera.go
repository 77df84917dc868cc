package cameras

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/lvslam/okvis/spatialmath"
)

// NCameraSystem is a calibrated multi-camera rig: one geometry and one
// camera-to-body extrinsic transformation T_SC per camera index.
// Immutable after construction and shared read-only by measurements that
// reference cameras by index.
type NCameraSystem struct {
	cameras    []CameraGeometry
	extrinsics []spatialmath.Transformation
}

// NewNCameraSystem validates and assembles a rig. cameras[i] is paired
// with extrinsics[i], the pose of camera i in the body frame.
func NewNCameraSystem(cameras []CameraGeometry, extrinsics []spatialmath.Transformation) (*NCameraSystem, error) {
	if len(cameras) == 0 {
		return nil, errors.New("rig needs at least one camera")
	}
	if len(cameras) != len(extrinsics) {
		return nil, errors.Errorf("got %d cameras but %d extrinsics", len(cameras), len(extrinsics))
	}
	var err error
	for i, cam := range cameras {
		if cam == nil {
			err = multierr.Append(err, errors.Errorf("camera %d is nil", i))
		}
	}
	if err != nil {
		return nil, err
	}
	return &NCameraSystem{
		cameras:    append([]CameraGeometry(nil), cameras...),
		extrinsics: append([]spatialmath.Transformation(nil), extrinsics...),
	}, nil
}

// NumCameras returns the number of cameras in the rig.
func (s *NCameraSystem) NumCameras() int { return len(s.cameras) }

// Camera returns the geometry registered at index.
func (s *NCameraSystem) Camera(index int) (CameraGeometry, error) {
	if index < 0 || index >= len(s.cameras) {
		return nil, errors.Errorf("no camera with index %d in a rig of %d", index, len(s.cameras))
	}
	return s.cameras[index], nil
}

// Extrinsics returns T_SC, the pose of the camera at index in the body
// frame.
func (s *NCameraSystem) Extrinsics(index int) (spatialmath.Transformation, error) {
	if index < 0 || index >= len(s.extrinsics) {
		return spatialmath.Transformation{}, errors.Errorf("no camera with index %d in a rig of %d", index, len(s.extrinsics))
	}
	return s.extrinsics[index], nil
}
