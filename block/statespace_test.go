package block

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestStateSpaceConfig(t *testing.T) {
	square := mat.NewDense(2, 2, []float64{0.9, 0.1, 0, 0.8})

	_, err := NewStateSpace(square, []float64{1, 0}, []float64{0, 1}, 0, 0.001, 10)
	test.That(t, err, test.ShouldBeNil)

	_, err = NewStateSpace(mat.NewDense(2, 3, nil), []float64{1, 0}, []float64{0, 1}, 0, 0.001, 10)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "square")

	_, err = NewStateSpace(square, []float64{1}, []float64{0, 1}, 0, 0.001, 10)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "length")

	_, err = NewStateSpace(square, []float64{1, 0}, []float64{0, 1}, 0, -1, 10)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStateSpaceScalar(t *testing.T) {
	// x+ = 0.5x + u, y = x: a one-pole filter with a one-step delay
	ss, err := NewStateSpace(mat.NewDense(1, 1, []float64{0.5}), []float64{1}, []float64{1}, 0, 0.001, 10)
	test.That(t, err, test.ShouldBeNil)

	var x float64
	for _, u := range []float64{1, 0, 0, 2, -1} {
		y, err := ss.Step(u)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, y, test.ShouldAlmostEqual, x, 1e-12)
		x = 0.5*x + u
	}

	ss.Reset()
	test.That(t, ss.State()[0], test.ShouldEqual, 0)
}

func TestStateSpaceFeedthrough(t *testing.T) {
	// pure gain: y = 3u, no state dynamics
	ss, err := NewStateSpace(mat.NewDense(1, 1, []float64{0}), []float64{0}, []float64{0}, 3, 0.001, 10)
	test.That(t, err, test.ShouldBeNil)
	y, err := ss.Step(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, y, test.ShouldEqual, 6)
}
