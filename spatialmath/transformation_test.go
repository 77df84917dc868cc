package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestExpLogRoundTrip(t *testing.T) {
	for _, aa := range []r3.Vector{
		{X: 0.3, Y: -0.2, Z: 0.1},
		{X: 1.2, Y: 0.7, Z: -0.4},
		{X: 1e-12, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 0},
		{X: -2.9, Y: 0.1, Z: 0.3},
	} {
		back := Log(Exp(aa))
		test.That(t, back.X, test.ShouldAlmostEqual, aa.X, 1e-12)
		test.That(t, back.Y, test.ShouldAlmostEqual, aa.Y, 1e-12)
		test.That(t, back.Z, test.ShouldAlmostEqual, aa.Z, 1e-12)
		test.That(t, Norm(Exp(aa)), test.ShouldAlmostEqual, 1, 1e-12)
	}
}

func TestRotateMatchesRotationMatrix(t *testing.T) {
	q := Exp(r3.Vector{X: 0.4, Y: -0.8, Z: 0.3})
	v := r3.Vector{X: 0.7, Y: -1.2, Z: 2.5}
	rotated := Rotate(q, v)
	m := RotationMatrix(q)
	test.That(t, rotated.X, test.ShouldAlmostEqual, m.At(0, 0)*v.X+m.At(0, 1)*v.Y+m.At(0, 2)*v.Z, 1e-12)
	test.That(t, rotated.Y, test.ShouldAlmostEqual, m.At(1, 0)*v.X+m.At(1, 1)*v.Y+m.At(1, 2)*v.Z, 1e-12)
	test.That(t, rotated.Z, test.ShouldAlmostEqual, m.At(2, 0)*v.X+m.At(2, 1)*v.Y+m.At(2, 2)*v.Z, 1e-12)
}

func TestRightMatrixMatchesQuaternionProduct(t *testing.T) {
	p := Exp(r3.Vector{X: 0.2, Y: 0.5, Z: -0.1})
	q := Exp(r3.Vector{X: -0.7, Y: 0.3, Z: 0.9})
	want := quat.Mul(p, q)
	m := RightMatrix(q)
	pv := []float64{p.Imag, p.Jmag, p.Kmag, p.Real}
	got := make([]float64, 4)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			got[r] += m.At(r, c) * pv[c]
		}
	}
	test.That(t, got[0], test.ShouldAlmostEqual, want.Imag, 1e-12)
	test.That(t, got[1], test.ShouldAlmostEqual, want.Jmag, 1e-12)
	test.That(t, got[2], test.ShouldAlmostEqual, want.Kmag, 1e-12)
	test.That(t, got[3], test.ShouldAlmostEqual, want.Real, 1e-12)
}

func TestInverseCompose(t *testing.T) {
	tf := NewTransformation(Exp(r3.Vector{X: 0.3, Y: -0.6, Z: 0.2}), r3.Vector{X: 1, Y: -2, Z: 3})
	ident := tf.Compose(tf.Inverse())
	test.That(t, ident.AlmostEqual(Identity(), 1e-12), test.ShouldBeTrue)

	p := r3.Vector{X: 0.4, Y: 0.9, Z: -1.3}
	back := tf.Inverse().Apply(tf.Apply(p))
	test.That(t, back.X, test.ShouldAlmostEqual, p.X, 1e-12)
	test.That(t, back.Y, test.ShouldAlmostEqual, p.Y, 1e-12)
	test.That(t, back.Z, test.ShouldAlmostEqual, p.Z, 1e-12)
}

func TestApplyHomogeneous(t *testing.T) {
	tf := NewTransformation(Exp(r3.Vector{X: -0.2, Y: 0.1, Z: 0.5}), r3.Vector{X: 0.4, Y: -0.7, Z: 1.1})

	p := r3.Vector{X: 1.5, Y: -0.3, Z: 2.2}
	hp := tf.ApplyHomogeneous([4]float64{p.X, p.Y, p.Z, 1})
	euclidean := tf.Apply(p)
	test.That(t, hp[0], test.ShouldAlmostEqual, euclidean.X, 1e-12)
	test.That(t, hp[1], test.ShouldAlmostEqual, euclidean.Y, 1e-12)
	test.That(t, hp[2], test.ShouldAlmostEqual, euclidean.Z, 1e-12)
	test.That(t, hp[3], test.ShouldAlmostEqual, 1, 1e-15)

	// a point at infinity is rotated, never translated
	inf := tf.ApplyHomogeneous([4]float64{p.X, p.Y, p.Z, 0})
	rotated := Rotate(tf.Rotation(), p)
	test.That(t, inf[0], test.ShouldAlmostEqual, rotated.X, 1e-12)
	test.That(t, inf[1], test.ShouldAlmostEqual, rotated.Y, 1e-12)
	test.That(t, inf[2], test.ShouldAlmostEqual, rotated.Z, 1e-12)
	test.That(t, inf[3], test.ShouldAlmostEqual, 0, 1e-15)
}

func TestOplusOminusRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		tf := NewTransformation(
			Exp(r3.Vector{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}),
			r3.Vector{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()},
		)
		delta := make([]float64, 6)
		for d := range delta {
			delta[d] = 0.4 * rng.NormFloat64()
		}
		back := make([]float64, 6)
		tf.Oplus(delta).Ominus(tf, back)
		for d := range delta {
			test.That(t, back[d], test.ShouldAlmostEqual, delta[d], 1e-10)
		}
	}
}

func TestOplusRenormalizes(t *testing.T) {
	// storage with deliberate norm drift
	drifted := []float64{1, 2, 3, 0.1, 0.2, 0.3, 1.4}
	tf := FromParameters(drifted)
	test.That(t, Norm(tf.Rotation()), test.ShouldAlmostEqual, 1, 1e-12)

	stepped := tf.Oplus([]float64{0.1, 0, 0, 0.2, -0.1, 0.05})
	test.That(t, Norm(stepped.Rotation()), test.ShouldAlmostEqual, 1, 1e-12)
}

func TestParametersRoundTrip(t *testing.T) {
	tf := NewTransformation(Exp(r3.Vector{X: 0.2, Y: -0.4, Z: 0.6}), r3.Vector{X: 5, Y: 6, Z: 7})
	p := make([]float64, 7)
	tf.Parameters(p)
	test.That(t, FromParameters(p).AlmostEqual(tf, 1e-12), test.ShouldBeTrue)
	test.That(t, math.Sqrt(p[3]*p[3]+p[4]*p[4]+p[5]*p[5]+p[6]*p[6]), test.ShouldAlmostEqual, 1, 1e-12)
}
