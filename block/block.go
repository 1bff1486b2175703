// Package block implements the discrete-time computation blocks of the
// control pipeline. Every block carries an immutable sampling period and a
// small ring of recent samples kept for diagnostics.
//
// One-input and two-input blocks are distinct interfaces so that handing a
// summing junction to a one-input task is a compile error, not a runtime
// one.
package block

import "github.com/pkg/errors"

// Block is a discrete system with a single scalar input.
type Block interface {
	// Step computes the next output from the input sample.
	Step(u float64) (float64, error)
	// Reset returns the internal state to its construction-time values.
	Reset()
	// SamplingPeriod returns Ts in seconds. It must equal 1/f of the
	// enclosing task.
	SamplingPeriod() float64
}

// TwoInputBlock is a discrete system with two scalar inputs.
type TwoInputBlock interface {
	// Step2 computes the next output from both input samples.
	Step2(u1, u2 float64) (float64, error)
	Reset()
	SamplingPeriod() float64
}

// Sample is one recorded (input, output) pair.
type Sample struct {
	U float64
	Y float64
	K int
}

// history is a fixed-capacity ring of recent samples.
type history struct {
	buf   []Sample
	write int
	count int
	k     int
}

func newHistory(size int) history {
	if size <= 0 {
		size = 100
	}
	return history{buf: make([]Sample, size)}
}

func (h *history) store(u, y float64) {
	h.buf[h.write] = Sample{U: u, Y: y, K: h.k}
	h.k++
	if h.count < len(h.buf) {
		h.count++
	}
	h.write = (h.write + 1) % len(h.buf)
}

func (h *history) reset() {
	h.write, h.count, h.k = 0, 0, 0
}

// Samples returns the recorded window, oldest first.
func (h *history) Samples() []Sample {
	out := make([]Sample, 0, h.count)
	start := h.write - h.count
	for i := 0; i < h.count; i++ {
		out = append(out, h.buf[(start+i+len(h.buf))%len(h.buf)])
	}
	return out
}

// base carries the fields common to every block.
type base struct {
	ts   float64
	hist history
}

func newBase(ts float64, bufferSize int) (base, error) {
	if ts <= 0 {
		return base{}, errors.Errorf("sampling period must be > 0, got %f", ts)
	}
	return base{ts: ts, hist: newHistory(bufferSize)}, nil
}

// SamplingPeriod returns Ts in seconds.
func (b *base) SamplingPeriod() float64 {
	return b.ts
}

// Samples returns the diagnostic window of recent samples, oldest first.
func (b *base) Samples() []Sample {
	return b.hist.Samples()
}
