// Package signal implements the stateful reference generators and the
// switch selecting between them. Each generator produces one sample per
// Next call and advances its internal time by Ts; a vertical offset can be
// rewritten live, which is how the setpoint reaches the reference.
package signal

import (
	"math"

	"github.com/pkg/errors"
)

// Generator is a lazy scalar sequence with a sampling period and a live
// vertical offset.
type Generator interface {
	// Next returns the sample at the current internal time and advances
	// that time by Ts.
	Next() float64
	// ComputeAt evaluates the sample at k·Ts without side effects.
	ComputeAt(k int) float64
	// Reset rewinds the internal time to zero.
	Reset()
	// Offset returns the vertical offset.
	Offset() float64
	// SetOffset rewrites the vertical offset.
	SetOffset(offset float64)
	// SamplingPeriod returns Ts in seconds.
	SamplingPeriod() float64
}

type generator struct {
	ts     float64
	offset float64
	t      float64
	inner  func(t float64) float64
}

func newGenerator(ts, offset float64, inner func(t float64) float64) (*generator, error) {
	if ts <= 0 {
		return nil, errors.Errorf("generator sampling period must be > 0, got %f", ts)
	}
	return &generator{ts: ts, offset: offset, inner: inner}, nil
}

func (g *generator) Next() float64 {
	v := g.inner(g.t) + g.offset
	g.t += g.ts
	return v
}

func (g *generator) ComputeAt(k int) float64 {
	return g.inner(float64(k)*g.ts) + g.offset
}

func (g *generator) Reset()                  { g.t = 0 }
func (g *generator) Offset() float64         { return g.offset }
func (g *generator) SetOffset(off float64)   { g.offset = off }
func (g *generator) SamplingPeriod() float64 { return g.ts }

// Step produces 0 before StepTime and Amplitude from StepTime on.
type Step struct {
	generator
	amplitude float64
	stepTime  float64
}

// NewStep builds a delayed-edge step generator.
func NewStep(ts, amplitude, stepTime, offset float64) (*Step, error) {
	s := &Step{amplitude: amplitude, stepTime: stepTime}
	g, err := newGenerator(ts, offset, func(t float64) float64 {
		if t >= s.stepTime {
			return s.amplitude
		}
		return 0
	})
	if err != nil {
		return nil, err
	}
	s.generator = *g
	return s, nil
}

// Amplitude returns the step height.
func (s *Step) Amplitude() float64 { return s.amplitude }

// SetAmplitude rewrites the step height.
func (s *Step) SetAmplitude(a float64) { s.amplitude = a }

// PWM produces Amplitude for the first Duty fraction of each Period and 0
// for the rest.
type PWM struct {
	generator
	amplitude float64
	duty      float64
	period    float64
}

// NewPWM builds a square/PWM generator. duty is in [0, 1].
func NewPWM(ts, amplitude, duty, period, offset float64) (*PWM, error) {
	if period <= 0 {
		return nil, errors.Errorf("pwm period must be > 0, got %f", period)
	}
	if duty < 0 || duty > 1 {
		return nil, errors.Errorf("pwm duty must be in [0, 1], got %f", duty)
	}
	p := &PWM{amplitude: amplitude, duty: duty, period: period}
	g, err := newGenerator(ts, offset, func(t float64) float64 {
		frac := math.Mod(t, p.period) / p.period
		if frac < p.duty {
			return p.amplitude
		}
		return 0
	})
	if err != nil {
		return nil, err
	}
	p.generator = *g
	return p, nil
}

// Sine produces Amplitude·sin(2π·Freq·t + Phase).
type Sine struct {
	generator
	amplitude float64
	freq      float64
	phase     float64
}

// NewSine builds a sinusoid generator. freq is in Hz, phase in radians.
func NewSine(ts, amplitude, freq, phase, offset float64) (*Sine, error) {
	s := &Sine{amplitude: amplitude, freq: freq, phase: phase}
	g, err := newGenerator(ts, offset, func(t float64) float64 {
		return s.amplitude * math.Sin(2*math.Pi*s.freq*t+s.phase)
	})
	if err != nil {
		return nil, err
	}
	s.generator = *g
	return s, nil
}

// Mixer combines child generators as a weighted sum plus its own offset.
// Next advances every child.
type Mixer struct {
	ts      float64
	offset  float64
	signals []Generator
	weights []float64
}

// NewMixer builds a weighted mixer. With no weights given, every child
// weighs 1.
func NewMixer(ts float64, signals []Generator, weights []float64, offset float64) (*Mixer, error) {
	if ts <= 0 {
		return nil, errors.Errorf("mixer sampling period must be > 0, got %f", ts)
	}
	if len(signals) == 0 {
		return nil, errors.New("mixer needs at least one child signal")
	}
	if len(weights) == 0 {
		weights = make([]float64, len(signals))
		for i := range weights {
			weights[i] = 1.0
		}
	}
	if len(weights) != len(signals) {
		return nil, errors.Errorf("mixer has %d signals but %d weights", len(signals), len(weights))
	}
	return &Mixer{
		ts:      ts,
		offset:  offset,
		signals: signals,
		weights: append([]float64(nil), weights...),
	}, nil
}

// Next advances every child and returns the weighted sum.
func (m *Mixer) Next() float64 {
	v := m.offset
	for i, s := range m.signals {
		v += m.weights[i] * s.Next()
	}
	return v
}

// ComputeAt evaluates the weighted sum at k·Ts without side effects.
func (m *Mixer) ComputeAt(k int) float64 {
	v := m.offset
	for i, s := range m.signals {
		v += m.weights[i] * s.ComputeAt(k)
	}
	return v
}

// Reset rewinds every child.
func (m *Mixer) Reset() {
	for _, s := range m.signals {
		s.Reset()
	}
}

// Offset returns the mixer's own vertical offset.
func (m *Mixer) Offset() float64 { return m.offset }

// SetOffset rewrites the mixer's own vertical offset.
func (m *Mixer) SetOffset(off float64) { m.offset = off }

// SamplingPeriod returns Ts in seconds.
func (m *Mixer) SamplingPeriod() float64 { return m.ts }
