package block

// Delay models an A/D converter as a one-sample delay: y[k] = u[k-1],
// with y[0] = 0.
type Delay struct {
	base
	uPrev float64
}

// NewDelay builds an A/D delay with the given sampling period.
func NewDelay(ts float64, bufferSize int) (*Delay, error) {
	b, err := newBase(ts, bufferSize)
	if err != nil {
		return nil, err
	}
	return &Delay{base: b}, nil
}

// Step returns the previous input and stores the current one.
func (d *Delay) Step(u float64) (float64, error) {
	y := d.uPrev
	d.uPrev = u
	d.hist.store(u, y)
	return y, nil
}

// Reset clears the held sample.
func (d *Delay) Reset() {
	d.uPrev = 0
	d.hist.reset()
}

// LastInput returns the sample currently held in the delay line.
func (d *Delay) LastInput() float64 {
	return d.uPrev
}

// Hold models a D/A converter as a zero-order hold: y[k] = u[k]. The most
// recent output stays applied between samples.
type Hold struct {
	base
	uOut float64
}

// NewHold builds a D/A hold with the given sampling period.
func NewHold(ts float64, bufferSize int) (*Hold, error) {
	b, err := newBase(ts, bufferSize)
	if err != nil {
		return nil, err
	}
	return &Hold{base: b}, nil
}

// Step passes the input through and retains it.
func (h *Hold) Step(u float64) (float64, error) {
	h.uOut = u
	h.hist.store(u, u)
	return u, nil
}

// Reset clears the held output.
func (h *Hold) Reset() {
	h.uOut = 0
	h.hist.reset()
}

// LastOutput returns the output currently applied by the hold.
func (h *Hold) LastOutput() float64 {
	return h.uOut
}
