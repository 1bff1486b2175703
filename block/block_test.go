package block

import (
	"testing"

	"go.viam.com/test"
)

func TestDelay(t *testing.T) {
	d, err := NewDelay(0.001, 10)
	test.That(t, err, test.ShouldBeNil)

	// y[0] = 0, afterwards y[k] = u[k-1]
	inputs := []float64{1.5, -2.0, 0.25, 7}
	prev := 0.0
	for _, u := range inputs {
		y, err := d.Step(u)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, y, test.ShouldEqual, prev)
		prev = u
	}
	test.That(t, d.LastInput(), test.ShouldEqual, 7)

	d.Reset()
	y, err := d.Step(3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, y, test.ShouldEqual, 0)
}

func TestDelayInvalidTs(t *testing.T) {
	_, err := NewDelay(0, 10)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewDelay(-0.1, 10)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestHold(t *testing.T) {
	h, err := NewHold(0.001, 10)
	test.That(t, err, test.ShouldBeNil)

	for _, u := range []float64{0, 1.5, -3.25, 1e6} {
		y, err := h.Step(u)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, y, test.ShouldEqual, u)
		test.That(t, h.LastOutput(), test.ShouldEqual, u)
	}

	h.Reset()
	test.That(t, h.LastOutput(), test.ShouldEqual, 0)
}

func TestSubtract(t *testing.T) {
	s, err := NewSubtract(0.01, 10)
	test.That(t, err, test.ShouldBeNil)

	for _, c := range []struct {
		r, y, want float64
	}{
		{1, 0.25, 0.75},
		{0, 0, 0},
		{-1, 1, -2},
		{2.5, -2.5, 5},
	} {
		e, err := s.Step2(c.r, c.y)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, e, test.ShouldEqual, c.want)
		test.That(t, s.LastOutput(), test.ShouldEqual, c.want)
	}
}

func TestSampleHistoryBounded(t *testing.T) {
	d, err := NewDelay(0.001, 4)
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < 20; i++ {
		_, err := d.Step(float64(i))
		test.That(t, err, test.ShouldBeNil)
	}
	samples := d.Samples()
	test.That(t, len(samples), test.ShouldEqual, 4)
	// oldest first, most recent input last
	test.That(t, samples[3].U, test.ShouldEqual, 19)
	test.That(t, samples[0].U, test.ShouldEqual, 16)
	test.That(t, samples[3].K, test.ShouldEqual, 19)
}
