package estimation

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/lvslam/okvis/cameras"
	"github.com/lvslam/okvis/spatialmath"
)

// ReprojectionError is the 2D keypoint reprojection cost function. It
// binds one pixel measurement, one shared read-only camera geometry and
// one information matrix, and evaluates the whitened difference between
// the measurement and the projection of a homogeneous world landmark
// through the body pose and the camera extrinsics.
//
// Parameter blocks, in order:
//
//	0: T_WS, the body pose in the world frame (7: [t q])
//	1: hp_W, the homogeneous landmark in the world frame (4)
//	2: T_SC, the camera pose in the body frame (7: [t q])
//
// Evaluation is stateless: with no setter calls in between, identical
// inputs produce bit-identical outputs, and many instances may be
// evaluated concurrently.
type ReprojectionError struct {
	cameraID    uint64
	camera      cameras.CameraGeometry
	measurement r2.Point
	informationWeight
}

// NewReprojectionError constructs the error term. The information matrix
// must be 2x2 symmetric positive definite; violating that is a
// configuration error reported here, before any optimization begins.
func NewReprojectionError(
	camera cameras.CameraGeometry,
	cameraID uint64,
	measurement r2.Point,
	information *mat.SymDense,
) (*ReprojectionError, error) {
	if camera == nil {
		return nil, errors.New("camera geometry is required")
	}
	e := &ReprojectionError{cameraID: cameraID, camera: camera, measurement: measurement}
	if err := e.SetInformation(information); err != nil {
		return nil, err
	}
	return e, nil
}

// SetMeasurement replaces the pixel measurement.
func (e *ReprojectionError) SetMeasurement(measurement r2.Point) {
	e.measurement = measurement
}

// SetCameraGeometry replaces the underlying camera model.
func (e *ReprojectionError) SetCameraGeometry(camera cameras.CameraGeometry) error {
	if camera == nil {
		return errors.New("camera geometry is required")
	}
	e.camera = camera
	return nil
}

// SetInformation stores the information matrix and eagerly caches its
// Cholesky square root and its inverse.
func (e *ReprojectionError) SetInformation(information *mat.SymDense) error {
	return e.informationWeight.set(information)
}

// Measurement returns the pixel measurement.
func (e *ReprojectionError) Measurement() r2.Point { return e.measurement }

// Information returns the 2x2 information (weight) matrix.
func (e *ReprojectionError) Information() *mat.SymDense { return e.information }

// Covariance returns the inverse information matrix.
func (e *ReprojectionError) Covariance() *mat.SymDense { return e.covariance }

// CameraID returns the index of the camera in the rig this measurement
// came from.
func (e *ReprojectionError) CameraID() uint64 { return e.cameraID }

// ResidualDim returns 2.
func (e *ReprojectionError) ResidualDim() int { return 2 }

// ParameterBlocks returns 3.
func (e *ReprojectionError) ParameterBlocks() int { return 3 }

// ParameterBlockDim returns the raw storage dimension of one block.
func (e *ReprojectionError) ParameterBlockDim(blockIndex int) int {
	return [3]int{7, 4, 7}[blockIndex]
}

// TypeInfo identifies the residual block type for diagnostics.
func (e *ReprojectionError) TypeInfo() string { return "ReprojectionError" }

// Evaluate computes the residual and the Jacobians with respect to the
// raw parameter blocks.
func (e *ReprojectionError) Evaluate(parameters [][]float64, residuals []float64, jacobians []*mat.Dense) bool {
	return e.EvaluateWithMinimalJacobians(parameters, residuals, jacobians, nil)
}

// EvaluateWithMinimalJacobians computes the residual and, where
// destinations are non-nil, both the raw-storage Jacobians (2x7, 2x4,
// 2x7) and the minimal tangent-space Jacobians (2x6, 2x3, 2x6).
//
// A degenerate projection (behind the camera, outside the validity
// region) zeroes the residual and every requested Jacobian for this
// iterate and still reports success: the constraint is temporarily
// disabled, not removed.
func (e *ReprojectionError) EvaluateWithMinimalJacobians(
	parameters [][]float64,
	residuals []float64,
	jacobians, jacobiansMinimal []*mat.Dense,
) bool {
	tWS := spatialmath.FromParameters(parameters[0])
	hpW := [4]float64{parameters[1][0], parameters[1][1], parameters[1][2], parameters[1][3]}
	tSC := spatialmath.FromParameters(parameters[2])

	tSW := tWS.Inverse()
	tCS := tSC.Inverse()
	hpS := tSW.ApplyHomogeneous(hpW)
	hpC := tCS.ApplyHomogeneous(hpS)

	// The pinhole projection is scale invariant, so the homogeneous
	// point enters it through its sign-corrected euclidean part; points
	// at infinity (w == 0) project as directions.
	sign := 1.0
	if hpC[3] < 0 {
		sign = -1.0
	}
	pC := r3.Vector{X: sign * hpC[0], Y: sign * hpC[1], Z: sign * hpC[2]}

	wantJacobians := anyRequested(jacobians) || anyRequested(jacobiansMinimal)
	var jp *mat.Dense
	if wantJacobians {
		jp = mat.NewDense(2, 3, nil)
	}
	kp, status := e.camera.ProjectWithJacobian(pC, jp)
	if status != cameras.ProjectionSuccessful {
		residuals[0], residuals[1] = 0, 0
		zeroRequested(jacobians)
		zeroRequested(jacobiansMinimal)
		return true
	}

	residuals[0], residuals[1] = e.whiten(e.measurement.X-kp.X, e.measurement.Y-kp.Y)
	if !wantJacobians {
		return true
	}

	// Whitened, sign-corrected point Jacobian. The residual is
	// measurement minus projection; the resulting minus is applied
	// explicitly in each block below.
	var jpw mat.Dense
	jpw.Mul(e.squareRoot, jp)
	jpw.Scale(sign, &jpw)

	cCS := spatialmath.RotationMatrix(tCS.Rotation())
	var cCW mat.Dense
	cCW.Mul(cCS, spatialmath.RotationMatrix(tSW.Rotation()))
	w := hpW[3]

	var pose PoseParameterization

	// block 0: body pose T_WS, perturbed in the world frame
	if requested(jacobians, 0) || requested(jacobiansMinimal, 0) {
		var ja mat.Dense
		ja.Mul(&jpw, &cCW)
		v := r3.Vector{X: hpW[0], Y: hpW[1], Z: hpW[2]}.Sub(tWS.Translation().Mul(w))
		var jb mat.Dense
		jb.Mul(&ja, spatialmath.Skew(v))

		jMin := mat.NewDense(2, 6, nil)
		for r := 0; r < 2; r++ {
			for c := 0; c < 3; c++ {
				jMin.Set(r, c, w*ja.At(r, c))
				jMin.Set(r, 3+c, -jb.At(r, c))
			}
		}
		storePoseJacobians(pose, parameters[0], jMin, jacobians, jacobiansMinimal, 0)
	}

	// block 1: homogeneous landmark hp_W
	if requested(jacobians, 1) || requested(jacobiansMinimal, 1) {
		var ja mat.Dense
		ja.Mul(&jpw, &cCW)
		rCW := tCS.Compose(tSW).Translation()
		if j := jacobianAt(jacobians, 1); j != nil {
			for r := 0; r < 2; r++ {
				for c := 0; c < 3; c++ {
					j.Set(r, c, -ja.At(r, c))
				}
				j.Set(r, 3, -(jpw.At(r, 0)*rCW.X + jpw.At(r, 1)*rCW.Y + jpw.At(r, 2)*rCW.Z))
			}
		}
		if j := jacobianAt(jacobiansMinimal, 1); j != nil {
			for r := 0; r < 2; r++ {
				for c := 0; c < 3; c++ {
					j.Set(r, c, -ja.At(r, c))
				}
			}
		}
	}

	// block 2: camera extrinsics T_SC, perturbed in the body frame
	if requested(jacobians, 2) || requested(jacobiansMinimal, 2) {
		var ja mat.Dense
		ja.Mul(&jpw, cCS)
		v := r3.Vector{X: hpS[0], Y: hpS[1], Z: hpS[2]}.Sub(tSC.Translation().Mul(w))
		var jb mat.Dense
		jb.Mul(&ja, spatialmath.Skew(v))

		jMin := mat.NewDense(2, 6, nil)
		for r := 0; r < 2; r++ {
			for c := 0; c < 3; c++ {
				jMin.Set(r, c, w*ja.At(r, c))
				jMin.Set(r, 3+c, -jb.At(r, c))
			}
		}
		storePoseJacobians(pose, parameters[2], jMin, jacobians, jacobiansMinimal, 2)
	}
	return true
}

// storePoseJacobians writes a pose block's minimal Jacobian and, if
// requested, lifts it to the raw 7-parameter storage.
func storePoseJacobians(
	pose PoseParameterization,
	blockParams []float64,
	jMin *mat.Dense,
	jacobians, jacobiansMinimal []*mat.Dense,
	blockIndex int,
) {
	if j := jacobianAt(jacobiansMinimal, blockIndex); j != nil {
		j.Copy(jMin)
	}
	if j := jacobianAt(jacobians, blockIndex); j != nil {
		lift := mat.NewDense(6, 7, nil)
		pose.LiftJacobian(blockParams, lift)
		j.Mul(jMin, lift)
	}
}

func requested(jacobians []*mat.Dense, i int) bool {
	return jacobians != nil && jacobians[i] != nil
}

func jacobianAt(jacobians []*mat.Dense, i int) *mat.Dense {
	if jacobians == nil {
		return nil
	}
	return jacobians[i]
}

func anyRequested(jacobians []*mat.Dense) bool {
	for _, j := range jacobians {
		if j != nil {
			return true
		}
	}
	return false
}

func zeroRequested(jacobians []*mat.Dense) {
	for _, j := range jacobians {
		if j != nil {
			j.Zero()
		}
	}
}
