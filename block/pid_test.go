package block

import (
	"testing"

	"go.viam.com/test"
)

func TestPIDConfig(t *testing.T) {
	_, err := NewPID(1, 0.5, 0.1, 0.01, 10)
	test.That(t, err, test.ShouldBeNil)

	_, err = NewPID(1, 0, 0, 0, 10)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewPID(-1, 0, 0, 0.01, 10)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPIDPureProportional(t *testing.T) {
	// with Ki = Kd = 0 the velocity form telescopes to u[k] = Kp e[k]
	pid, err := NewPID(2, 0, 0, 0.01, 10)
	test.That(t, err, test.ShouldBeNil)
	for _, e := range []float64{1, 0.5, -0.25, 0, 3} {
		u, err := pid.Step(e)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, u, test.ShouldAlmostEqual, 2*e, 1e-12)
	}
}

func TestPIDVelocityRecurrence(t *testing.T) {
	const (
		kp = 1.5
		ki = 0.7
		ts = 0.01
	)
	pid, err := NewPID(kp, ki, 0, ts, 10)
	test.That(t, err, test.ShouldBeNil)

	// PI velocity form: u[k] = u[k-1] + (kp + ki Ts) e[k] - kp e[k-1]
	var uPrev, ePrev float64
	for _, e := range []float64{1, 1, 0.5, -0.5, 0, 2, 2} {
		want := uPrev + (kp+ki*ts)*e - kp*ePrev
		u, err := pid.Step(e)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, u, test.ShouldAlmostEqual, want, 1e-12)
		uPrev, ePrev = u, e
	}
	test.That(t, pid.LastControl(), test.ShouldAlmostEqual, uPrev, 1e-12)
}

func TestPIDSetGainsAffectsOnlyLaterSteps(t *testing.T) {
	pid, err := NewPID(1, 0, 0, 0.01, 10)
	test.That(t, err, test.ShouldBeNil)

	u1, err := pid.Step(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u1, test.ShouldAlmostEqual, 1)

	pid.SetGains(3, 0, 0)
	kp, ki, kd := pid.Gains()
	test.That(t, kp, test.ShouldEqual, 3)
	test.That(t, ki, test.ShouldEqual, 0)
	test.That(t, kd, test.ShouldEqual, 0)

	// u[k] = u[k-1] + 3 e[k] - 3 e[k-1] = 1 + 3 - 3 = 1 for a held error
	u2, err := pid.Step(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u2, test.ShouldAlmostEqual, 1, 1e-12)

	// a new error moves with the new gain
	u3, err := pid.Step(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u3, test.ShouldAlmostEqual, 1+3*2-3*1, 1e-12)
}

func TestPIDReset(t *testing.T) {
	pid, err := NewPID(1, 1, 0.1, 0.01, 10)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 5; i++ {
		_, err := pid.Step(1)
		test.That(t, err, test.ShouldBeNil)
	}
	pid.Reset()
	test.That(t, pid.LastControl(), test.ShouldEqual, 0)
}
