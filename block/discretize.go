package block

import (
	"math"

	"github.com/pkg/errors"
)

// Method selects how a continuous transfer function is discretised.
type Method int

const (
	// Tustin applies the bilinear transform s = (2/Ts)(1-z^-1)/(1+z^-1).
	Tustin Method = iota
	// ZOH is enumerated for completeness but not implemented.
	ZOH
)

// DiscreteTF holds discretised coefficients in ascending powers of z^-1,
// with A[0] normalised to 1.
type DiscreteTF struct {
	B []float64
	A []float64
}

func polyMul(a, b []float64) []float64 {
	r := make([]float64, len(a)+len(b)-1)
	for i := range a {
		for j := range b {
			r[i+j] += a[i] * b[j]
		}
	}
	return r
}

func polyAdd(a, b []float64) []float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	r := make([]float64, n)
	for i := range r {
		if i < len(a) {
			r[i] += a[i]
		}
		if i < len(b) {
			r[i] += b[i]
		}
	}
	return r
}

// binomialPoly expands (1 + sign·x)^k in ascending powers of x.
func binomialPoly(k, sign int) []float64 {
	c := make([]float64, k+1)
	c[0] = 1.0
	for i := 1; i <= k; i++ {
		c[i] = c[i-1] * float64(k-i+1) / float64(i)
	}
	if sign == -1 {
		for i := 1; i <= k; i++ {
			if i%2 == 1 {
				c[i] = -c[i]
			}
		}
	}
	return c
}

// transformTerm expands c·s^p after the substitution s = K(1-x)/(1+x),
// multiplied through by (1+x)^N.
func transformTerm(c float64, p int, k float64, n int) []float64 {
	if p == 0 {
		term := binomialPoly(n, +1)
		for i := range term {
			term[i] *= c
		}
		return term
	}
	term := polyMul(binomialPoly(p, -1), binomialPoly(n-p, +1))
	scale := c * math.Pow(k, float64(p))
	for i := range term {
		term[i] *= scale
	}
	return term
}

// bilinearPoly transforms a polynomial in s (descending powers) into a
// polynomial in z^-1 (ascending powers), common denominator (1+z^-1)^n.
func bilinearPoly(coeffs []float64, ts float64, n int) []float64 {
	order := len(coeffs) - 1
	k := 2.0 / ts
	acc := []float64{0.0}
	for i, c := range coeffs {
		acc = polyAdd(acc, transformTerm(c, order-i, k, n))
	}
	return acc
}

// Discretize converts a continuous transfer function, given as numerator
// and denominator coefficients in descending powers of s, into a discrete
// one at sampling period ts.
func Discretize(numS, denS []float64, ts float64, method Method) (DiscreteTF, error) {
	if ts <= 0 {
		return DiscreteTF{}, errors.Errorf("sampling period must be > 0, got %f", ts)
	}
	if len(denS) == 0 || math.Abs(denS[0]) < 1e-12 {
		return DiscreteTF{}, errors.New("continuous denominator is empty or has zero leading coefficient")
	}
	if len(numS) > len(denS) {
		return DiscreteTF{}, errors.New("transfer function must be proper (deg num <= deg den)")
	}
	switch method {
	case Tustin:
		n := len(denS) - 1
		bd := bilinearPoly(numS, ts, n)
		ad := bilinearPoly(denS, ts, n)
		a0 := ad[0]
		if math.Abs(a0) < 1e-12 {
			return DiscreteTF{}, errors.New("discretisation produced a zero leading denominator coefficient")
		}
		for i := range bd {
			bd[i] /= a0
		}
		for i := range ad {
			ad[i] /= a0
		}
		return DiscreteTF{B: bd, A: ad}, nil
	case ZOH:
		return DiscreteTF{}, errors.New("zero-order-hold discretisation not implemented")
	default:
		return DiscreteTF{}, errors.Errorf("unsupported discretisation method %d", method)
	}
}
