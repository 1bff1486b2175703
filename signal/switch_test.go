package signal

import (
	"testing"

	"go.viam.com/test"
)

func newTestSwitch(t *testing.T) *Switch {
	t.Helper()
	step, err := NewStep(0.01, 1.0, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	pwm, err := NewPWM(0.01, 2.0, 1.0, 1.0, 0)
	test.That(t, err, test.ShouldBeNil)
	sine, err := NewSine(0.01, 3.0, 1.0, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	sw, err := NewSwitch(step, pwm, sine, SelectStep)
	test.That(t, err, test.ShouldBeNil)
	return sw
}

func TestSwitchSelectorValidation(t *testing.T) {
	sw := newTestSwitch(t)

	for _, s := range []int{-1, 3, 42} {
		err := sw.SetSelector(s)
		test.That(t, err, test.ShouldNotBeNil)
		// failed set leaves the selector untouched
		test.That(t, sw.Selector(), test.ShouldEqual, SelectStep)
	}
	test.That(t, sw.SetSelector(SelectSine), test.ShouldBeNil)
	test.That(t, sw.Selector(), test.ShouldEqual, SelectSine)
}

func TestSwitchDelegation(t *testing.T) {
	sw := newTestSwitch(t)

	// step with zero step time emits its amplitude immediately
	test.That(t, sw.Next(), test.ShouldAlmostEqual, 1.0)

	// full-duty pwm emits its amplitude every sample
	test.That(t, sw.SetSelector(SelectPWM), test.ShouldBeNil)
	test.That(t, sw.Next(), test.ShouldAlmostEqual, 2.0)

	// sine starts at zero
	test.That(t, sw.SetSelector(SelectSine), test.ShouldBeNil)
	test.That(t, sw.Next(), test.ShouldAlmostEqual, 0, 1e-12)
}

func TestSwitchSelectedOffset(t *testing.T) {
	sw := newTestSwitch(t)
	sw.Selected().SetOffset(0.75)
	test.That(t, sw.Next(), test.ShouldAlmostEqual, 1.75)

	// offsets are per generator
	test.That(t, sw.SetSelector(SelectPWM), test.ShouldBeNil)
	test.That(t, sw.Next(), test.ShouldAlmostEqual, 2.0)
}

func TestSwitchNeedsAllGenerators(t *testing.T) {
	step, err := NewStep(0.01, 1.0, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	_, err = NewSwitch(step, nil, nil, SelectStep)
	test.That(t, err, test.ShouldNotBeNil)
}
