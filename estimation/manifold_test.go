package estimation

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func randomPose(rng *rand.Rand) []float64 {
	q := [4]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	return []float64{
		rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(),
		q[0] / n, q[1] / n, q[2] / n, q[3] / n,
	}
}

func TestPosePlusMinusRoundTrip(t *testing.T) {
	var m PoseParameterization
	test.That(t, m.AmbientSize(), test.ShouldEqual, 7)
	test.That(t, m.TangentSize(), test.ShouldEqual, 6)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		x := randomPose(rng)
		delta := make([]float64, 6)
		for d := range delta {
			delta[d] = 0.3 * rng.NormFloat64()
		}
		stepped := make([]float64, 7)
		m.Plus(x, delta, stepped)

		back := make([]float64, 6)
		m.Minus(stepped, x, back)
		for d := range delta {
			test.That(t, back[d], test.ShouldAlmostEqual, delta[d], 1e-10)
		}
	}
}

func TestPosePlusNormalizes(t *testing.T) {
	var m PoseParameterization
	// quaternion with deliberate norm drift
	x := []float64{1, 2, 3, 0.2, -0.1, 0.3, 1.5}
	stepped := make([]float64, 7)
	m.Plus(x, []float64{0.1, -0.2, 0.05, 0.02, 0.01, -0.03}, stepped)
	n := math.Sqrt(stepped[3]*stepped[3] + stepped[4]*stepped[4] + stepped[5]*stepped[5] + stepped[6]*stepped[6])
	test.That(t, n, test.ShouldAlmostEqual, 1, 1e-12)
}

func TestPosePlusJacobianMatchesNumeric(t *testing.T) {
	var m PoseParameterization
	rng := rand.New(rand.NewSource(11))
	x := randomPose(rng)

	analytic := mat.NewDense(7, 6, nil)
	m.PlusJacobian(x, analytic)

	const h = 1e-7
	for c := 0; c < 6; c++ {
		delta := make([]float64, 6)
		delta[c] = h
		plus := make([]float64, 7)
		m.Plus(x, delta, plus)
		delta[c] = -h
		minus := make([]float64, 7)
		m.Plus(x, delta, minus)
		for r := 0; r < 7; r++ {
			test.That(t, analytic.At(r, c), test.ShouldAlmostEqual, (plus[r]-minus[r])/(2*h), 1e-6)
		}
	}
}

func TestLiftTimesPlusIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for name, m := range map[string]Manifold{
		"pose":  PoseParameterization{},
		"point": HomogeneousPointParameterization{},
	} {
		t.Run(name, func(t *testing.T) {
			var x []float64
			if m.AmbientSize() == 7 {
				x = randomPose(rng)
			} else {
				x = []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(), 1}
			}
			plus := mat.NewDense(m.AmbientSize(), m.TangentSize(), nil)
			lift := mat.NewDense(m.TangentSize(), m.AmbientSize(), nil)
			m.PlusJacobian(x, plus)
			m.LiftJacobian(x, lift)

			var prod mat.Dense
			prod.Mul(lift, plus)
			for r := 0; r < m.TangentSize(); r++ {
				for c := 0; c < m.TangentSize(); c++ {
					want := 0.0
					if r == c {
						want = 1.0
					}
					test.That(t, prod.At(r, c), test.ShouldAlmostEqual, want, 1e-12)
				}
			}
		})
	}
}

func TestHomogeneousPointPlusMinus(t *testing.T) {
	var m HomogeneousPointParameterization
	test.That(t, m.AmbientSize(), test.ShouldEqual, 4)
	test.That(t, m.TangentSize(), test.ShouldEqual, 3)

	x := []float64{1, -2, 3, 1}
	stepped := make([]float64, 4)
	m.Plus(x, []float64{0.5, 0.25, -0.75}, stepped)
	test.That(t, stepped, test.ShouldResemble, []float64{1.5, -1.75, 2.25, 1})

	back := make([]float64, 3)
	m.Minus(stepped, x, back)
	test.That(t, back, test.ShouldResemble, []float64{0.5, 0.25, -0.75})

	// the homogeneous scale never moves, points at infinity stay there
	atInfinity := []float64{0.2, 0.4, 1, 0}
	m.Plus(atInfinity, []float64{1, 1, 1}, stepped)
	test.That(t, stepped[3], test.ShouldEqual, 0)
}
