package signal

import "github.com/pkg/errors"

// Selector values of the switch. The mapping is part of the external
// parameter-message contract.
const (
	SelectStep = 0
	SelectPWM  = 1
	SelectSine = 2
)

// Switch owns one generator per selectable waveform and delegates each
// step to the selected one.
type Switch struct {
	step     *Step
	pwm      *PWM
	sine     *Sine
	selector int
}

// NewSwitch builds a switch over the three waveforms.
func NewSwitch(step *Step, pwm *PWM, sine *Sine, initialSelector int) (*Switch, error) {
	if step == nil || pwm == nil || sine == nil {
		return nil, errors.New("switch needs all three generators")
	}
	s := &Switch{step: step, pwm: pwm, sine: sine}
	if err := s.SetSelector(initialSelector); err != nil {
		return nil, err
	}
	return s, nil
}

// SetSelector picks the active generator. Values outside {0, 1, 2} fail
// and leave the selector unchanged.
func (s *Switch) SetSelector(selector int) error {
	if selector < SelectStep || selector > SelectSine {
		return errors.Errorf("signal selector %d outside {0, 1, 2}", selector)
	}
	s.selector = selector
	return nil
}

// Selector returns the current selector value.
func (s *Switch) Selector() int {
	return s.selector
}

// Selected returns the active generator.
func (s *Switch) Selected() Generator {
	switch s.selector {
	case SelectPWM:
		return s.pwm
	case SelectSine:
		return s.sine
	default:
		return s.step
	}
}

// Next advances the selected generator by one sample.
func (s *Switch) Next() float64 {
	return s.Selected().Next()
}
