package block

import (
	"math"

	"github.com/pkg/errors"
)

// TransferFunction runs the difference equation of a discrete transfer
// function B(z^-1)/A(z^-1). The denominator is normalised so a[0] = 1 at
// construction.
type TransferFunction struct {
	base
	b     []float64
	a     []float64
	uHist []float64 // u[k], u[k-1], ... len(b)
	yHist []float64 // y[k-1], y[k-2], ... len(a)-1
}

// NewTransferFunction builds a transfer function from numerator and
// denominator coefficients in ascending powers of z^-1.
func NewTransferFunction(b, a []float64, ts float64, bufferSize int) (*TransferFunction, error) {
	bs, err := newBase(ts, bufferSize)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("transfer function numerator is empty")
	}
	if len(a) == 0 {
		return nil, errors.New("transfer function denominator is empty")
	}
	if math.Abs(a[0]) < 1e-12 {
		return nil, errors.New("transfer function denominator has zero leading coefficient")
	}
	tf := &TransferFunction{
		base: bs,
		b:    append([]float64(nil), b...),
		a:    append([]float64(nil), a...),
	}
	if tf.a[0] != 1.0 {
		a0 := tf.a[0]
		for i := range tf.a {
			tf.a[i] /= a0
		}
		for i := range tf.b {
			tf.b[i] /= a0
		}
	}
	tf.uHist = make([]float64, len(tf.b))
	tf.yHist = make([]float64, len(tf.a)-1)
	return tf, nil
}

// Step shifts the input history, evaluates the difference equation and
// shifts the output history.
func (tf *TransferFunction) Step(u float64) (float64, error) {
	copy(tf.uHist[1:], tf.uHist)
	tf.uHist[0] = u

	var y float64
	for i, bi := range tf.b {
		y += bi * tf.uHist[i]
	}
	for i := 1; i < len(tf.a); i++ {
		y -= tf.a[i] * tf.yHist[i-1]
	}

	if len(tf.yHist) > 0 {
		copy(tf.yHist[1:], tf.yHist)
		tf.yHist[0] = y
	}
	tf.hist.store(u, y)
	return y, nil
}

// Reset zeroes both histories.
func (tf *TransferFunction) Reset() {
	for i := range tf.uHist {
		tf.uHist[i] = 0
	}
	for i := range tf.yHist {
		tf.yHist[i] = 0
	}
	tf.hist.reset()
}

// Numerator returns the normalised numerator coefficients.
func (tf *TransferFunction) Numerator() []float64 {
	return append([]float64(nil), tf.b...)
}

// Denominator returns the normalised denominator coefficients.
func (tf *TransferFunction) Denominator() []float64 {
	return append([]float64(nil), tf.a...)
}
