package block

import (
	"sync"

	"github.com/pkg/errors"
)

// PID is a velocity-form PID controller:
//
//	Δu[k] = a0 e[k] + a1 e[k-1] + a2 e[k-2]
//	u[k]  = u[k-1] + Δu[k]
//
// with a0 = Kp + Ki·Ts + Kd/Ts, a1 = -Kp - 2·Kd/Ts, a2 = Kd/Ts. Gains may
// be retuned while the loop runs; the task applies them between steps.
type PID struct {
	base
	mu sync.Mutex
	kp float64
	ki float64
	kd float64

	e1    float64
	e2    float64
	uPrev float64
}

// NewPID builds a PID controller with the given gains and sampling period.
func NewPID(kp, ki, kd, ts float64, bufferSize int) (*PID, error) {
	bs, err := newBase(ts, bufferSize)
	if err != nil {
		return nil, err
	}
	if kp < 0 || ki < 0 || kd < 0 {
		return nil, errors.Errorf("pid gains must be >= 0, got Kp=%f Ki=%f Kd=%f", kp, ki, kd)
	}
	return &PID{base: bs, kp: kp, ki: ki, kd: kd}, nil
}

// Step advances the difference equation by one error sample.
func (p *PID) Step(e float64) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a0 := p.kp + p.ki*p.ts + p.kd/p.ts
	a1 := -p.kp - 2.0*p.kd/p.ts
	a2 := p.kd / p.ts

	du := a0*e + a1*p.e1 + a2*p.e2
	u := p.uPrev + du

	p.e2 = p.e1
	p.e1 = e
	p.uPrev = u
	p.hist.store(e, u)
	return u, nil
}

// Reset clears the error and control histories.
func (p *PID) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.e1, p.e2, p.uPrev = 0, 0, 0
	p.hist.reset()
}

// SetKp updates the proportional gain.
func (p *PID) SetKp(kp float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kp = kp
}

// SetKi updates the integral gain.
func (p *PID) SetKi(ki float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ki = ki
}

// SetKd updates the derivative gain.
func (p *PID) SetKd(kd float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kd = kd
}

// SetGains updates all three gains at once.
func (p *PID) SetGains(kp, ki, kd float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kp, p.ki, p.kd = kp, ki, kd
}

// Gains returns the current gains.
func (p *PID) Gains() (kp, ki, kd float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kp, p.ki, p.kd
}

// LastControl returns the most recent control action u[k-1].
func (p *PID) LastControl() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uPrev
}
