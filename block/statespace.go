package block

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// StateSpace runs a discrete state-space model
//
//	x[k+1] = A x[k] + B u[k]
//	y[k]   = C x[k] + D u[k]
//
// with a single input and a single output.
type StateSpace struct {
	base
	a *mat.Dense
	b *mat.VecDense
	c *mat.VecDense
	d float64
	x *mat.VecDense
}

// NewStateSpace builds a state-space block. a must be n×n, b length n,
// c length n; d is the scalar feed-through.
func NewStateSpace(a *mat.Dense, b, c []float64, d, ts float64, bufferSize int) (*StateSpace, error) {
	bs, err := newBase(ts, bufferSize)
	if err != nil {
		return nil, err
	}
	ra, ca := a.Dims()
	if ra != ca {
		return nil, errors.Errorf("state matrix must be square, got %dx%d", ra, ca)
	}
	if len(b) != ra || len(c) != ra {
		return nil, errors.Errorf("input/output vectors must have length %d, got %d and %d", ra, len(b), len(c))
	}
	return &StateSpace{
		base: bs,
		a:    mat.DenseCopyOf(a),
		b:    mat.NewVecDense(ra, append([]float64(nil), b...)),
		c:    mat.NewVecDense(ra, append([]float64(nil), c...)),
		d:    d,
		x:    mat.NewVecDense(ra, nil),
	}, nil
}

// Step computes y = Cx + Du, then advances the state x = Ax + Bu.
func (ss *StateSpace) Step(u float64) (float64, error) {
	y := mat.Dot(ss.c, ss.x) + ss.d*u

	n := ss.x.Len()
	next := mat.NewVecDense(n, nil)
	next.MulVec(ss.a, ss.x)
	next.AddScaledVec(next, u, ss.b)
	ss.x.CopyVec(next)

	ss.hist.store(u, y)
	return y, nil
}

// Reset zeroes the state vector.
func (ss *StateSpace) Reset() {
	ss.x.Zero()
	ss.hist.reset()
}

// State returns a copy of the current state vector.
func (ss *StateSpace) State() []float64 {
	out := make([]float64, ss.x.Len())
	for i := range out {
		out[i] = ss.x.AtVec(i)
	}
	return out
}
