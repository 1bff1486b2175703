package signal

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestStepGenerator(t *testing.T) {
	s, err := NewStep(0.01, 2.0, 0.05, 0)
	test.That(t, err, test.ShouldBeNil)

	// edge at t = 0.05 means samples 0..4 are 0 and sample 5 on are 2
	for k := 0; k < 10; k++ {
		want := 0.0
		if k >= 5 {
			want = 2.0
		}
		test.That(t, s.Next(), test.ShouldAlmostEqual, want)
	}

	s.Reset()
	test.That(t, s.Next(), test.ShouldEqual, 0)
}

func TestStepInvalidTs(t *testing.T) {
	_, err := NewStep(0, 1, 0, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPWMGenerator(t *testing.T) {
	// 1 s period, 25% duty, sampled at 0.1 s
	p, err := NewPWM(0.1, 1.0, 0.25, 1.0, 0)
	test.That(t, err, test.ShouldBeNil)

	var got []float64
	for k := 0; k < 10; k++ {
		got = append(got, p.Next())
	}
	want := []float64{1, 1, 1, 0, 0, 0, 0, 0, 0, 0}
	for i := range want {
		test.That(t, got[i], test.ShouldAlmostEqual, want[i])
	}

	_, err = NewPWM(0.1, 1, 1.5, 1, 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewPWM(0.1, 1, 0.5, 0, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSineGenerator(t *testing.T) {
	// 1 Hz at 8 samples per second
	s, err := NewSine(0.125, 1.0, 1.0, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, s.Next(), test.ShouldAlmostEqual, 0, 1e-12)                  // t = 0
	test.That(t, s.Next(), test.ShouldAlmostEqual, math.Sqrt2/2, 1e-12)      // t = 1/8
	test.That(t, s.Next(), test.ShouldAlmostEqual, 1, 1e-12)                 // t = 1/4
}

func TestOffsetLiveUpdate(t *testing.T) {
	s, err := NewStep(0.01, 1.0, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Next(), test.ShouldAlmostEqual, 1)

	s.SetOffset(0.5)
	test.That(t, s.Offset(), test.ShouldEqual, 0.5)
	test.That(t, s.Next(), test.ShouldAlmostEqual, 1.5)
}

func TestComputeAtHasNoSideEffects(t *testing.T) {
	s, err := NewSine(0.1, 1.0, 1.0, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	at3 := s.ComputeAt(3)
	test.That(t, at3, test.ShouldAlmostEqual, math.Sin(2*math.Pi*0.3), 1e-12)
	// internal time still at zero
	test.That(t, s.Next(), test.ShouldAlmostEqual, 0, 1e-12)
}

func TestMixer(t *testing.T) {
	a, err := NewStep(0.01, 1.0, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	b, err := NewStep(0.01, 2.0, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	m, err := NewMixer(0.01, []Generator{a, b}, []float64{0.5, 2}, 0.25)
	test.That(t, err, test.ShouldBeNil)
	// 0.25 + 0.5*1 + 2*2 = 4.75
	test.That(t, m.Next(), test.ShouldAlmostEqual, 4.75)
	test.That(t, m.ComputeAt(5), test.ShouldAlmostEqual, 4.75)

	_, err = NewMixer(0.01, nil, nil, 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewMixer(0.01, []Generator{a}, []float64{1, 2}, 0)
	test.That(t, err, test.ShouldNotBeNil)
}
