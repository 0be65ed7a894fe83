// Package poly implements the polynomial engine: coefficient-form
// evaluation, scaling, multiplication (direct and FFT-based), and division
// (long and fast, via a Newton-iterated reciprocal).
package poly

import (
	"errors"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/fft"
	"github.com/eth2030/go-kzg-das/internal/utils"
)

// ScaleFactor is the scaling coset generator k used by Scale/Unscale.
const ScaleFactor = 5

// Thresholds mirroring the reference implementation's tuning: below these
// sizes the O(n^2) direct algorithms are cheaper than the FFT/Newton
// machinery.
const (
	directMulMaxOperand = 64
	directMulMaxOutLen  = 128
	longDivMinDivisor   = 128
)

var (
	ErrEmptyPolynomial  = errors.New("poly: polynomial is empty")
	ErrZeroDivisor      = errors.New("poly: division by a polynomial with zero leading coefficient")
	ErrDivisorTooLong   = errors.New("poly: divisor longer than dividend")
	ErrInverseBadLength = errors.New("poly: inverse requested with n=0")
)

// P is a coefficient-form polynomial, index 0 is the constant term.
type P []bls.Fr

// Eval evaluates p at x using Horner's rule.
func Eval(p P, x bls.Fr) bls.Fr {
	if len(p) == 0 {
		return bls.FrZero()
	}
	if x.IsZero() {
		return p[0]
	}
	acc := p[len(p)-1]
	for i := len(p) - 2; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &p[i])
	}
	return acc
}

// Scale multiplies coefficient i by k^(-i), k = ScaleFactor.
func Scale(p P) P {
	out := make(P, len(p))
	k := bls.FrFromUint64(ScaleFactor)
	k.Inverse(&k)
	factor := bls.FrOne()
	for i := range p {
		out[i].Mul(&p[i], &factor)
		factor.Mul(&factor, &k)
	}
	return out
}

// Unscale multiplies coefficient i by k^i, k = ScaleFactor.
func Unscale(p P) P {
	out := make(P, len(p))
	k := bls.FrFromUint64(ScaleFactor)
	factor := bls.FrOne()
	for i := range p {
		out[i].Mul(&p[i], &factor)
		factor.Mul(&factor, &k)
	}
	return out
}

// Normalize trims trailing zero coefficients.
func Normalize(p P) P {
	n := len(p)
	for n > 0 && p[n-1].IsZero() {
		n--
	}
	return p[:n]
}

// Mul computes the truncated product of a and b, to length outLen.
func Mul(a, b P, outLen int) (P, error) {
	if outLen == 0 {
		return P{}, nil
	}
	if len(a) == 0 || len(b) == 0 {
		return make(P, outLen), nil
	}
	if len(a) < directMulMaxOperand && len(b) < directMulMaxOperand || outLen < directMulMaxOutLen {
		return mulDirect(a, b, outLen), nil
	}
	return mulFFT(a, b, outLen)
}

func mulDirect(a, b P, outLen int) P {
	out := make(P, outLen)
	for i := 0; i < len(a) && i < outLen; i++ {
		if a[i].IsZero() {
			continue
		}
		maxJ := outLen - i
		if maxJ > len(b) {
			maxJ = len(b)
		}
		for j := 0; j < maxJ; j++ {
			var t bls.Fr
			t.Mul(&a[i], &b[j])
			out[i+j].Add(&out[i+j], &t)
		}
	}
	return out
}

func mulFFT(a, b P, outLen int) (P, error) {
	need := len(a) + len(b) - 1
	width := utils.NextPowerOfTwo(uint64(need))
	scale, err := utils.Log2PowTwo(width)
	if err != nil {
		return nil, err
	}
	settings, err := fft.NewSettings(scale)
	if err != nil {
		return nil, err
	}

	pa := padFr(a, int(width))
	pb := padFr(b, int(width))

	fa, err := settings.FFTFr(pa, false)
	if err != nil {
		return nil, err
	}
	fb, err := settings.FFTFr(pb, false)
	if err != nil {
		return nil, err
	}
	prod := make([]bls.Fr, width)
	for i := range prod {
		prod[i].Mul(&fa[i], &fb[i])
	}
	coeffs, err := settings.FFTFr(prod, true)
	if err != nil {
		return nil, err
	}
	if outLen > len(coeffs) {
		out := make(P, outLen)
		copy(out, coeffs)
		return out, nil
	}
	return P(coeffs[:outLen]), nil
}

func padFr(p P, n int) []bls.Fr {
	out := make([]bls.Fr, n)
	copy(out, p)
	return out
}

// Div computes a/b, choosing long division or the fast Newton-iterated
// reciprocal path based on operand sizes.
func Div(a, b P) (P, error) {
	if len(b) == 0 {
		return nil, ErrEmptyPolynomial
	}
	if len(b) >= len(a) || len(b) < longDivMinDivisor {
		return LongDiv(a, b)
	}
	return FastDiv(a, b)
}

// LongDiv performs schoolbook polynomial division. Fails if b is empty or
// its leading coefficient is zero.
func LongDiv(a, b P) (P, error) {
	if len(b) == 0 {
		return nil, ErrEmptyPolynomial
	}
	if b[len(b)-1].IsZero() {
		return nil, ErrZeroDivisor
	}
	if len(a) < len(b) {
		return P{}, nil
	}
	rem := make([]bls.Fr, len(a))
	copy(rem, a)

	outLen := len(a) - len(b) + 1
	out := make(P, outLen)

	var leadInv bls.Fr
	leadInv.Inverse(&b[len(b)-1])

	for i := outLen - 1; i >= 0; i-- {
		var coef bls.Fr
		coef.Mul(&rem[i+len(b)-1], &leadInv)
		out[i] = coef
		if coef.IsZero() {
			continue
		}
		for j := 0; j < len(b); j++ {
			var t bls.Fr
			t.Mul(&coef, &b[j])
			rem[i+j].Sub(&rem[i+j], &t)
		}
	}
	return out, nil
}

// FastDiv computes a/b via flip(flip(a) * inverse(flip(b), |a|-|b|+1)).
func FastDiv(a, b P) (P, error) {
	if len(b) == 0 || b[0].IsZero() {
		return nil, ErrZeroDivisor
	}
	qLen := len(a) - len(b) + 1
	if qLen <= 0 {
		return P{}, nil
	}
	flipB := flip(b)
	invFlipB, err := Inverse(flipB, qLen)
	if err != nil {
		return nil, err
	}
	flipA := flip(a)
	prod, err := Mul(flipA, invFlipB, qLen)
	if err != nil {
		return nil, err
	}
	return flip(prod), nil
}

func flip(p P) P {
	out := make(P, len(p))
	for i, c := range p {
		out[len(p)-1-i] = c
	}
	return out
}

// Inverse computes the first newLen coefficients of the formal power
// series inverse of p via Newton iteration:
//
//	c_{d+1} = c_d * (2 - b*c_d) mod x^(d+1), doubling d up to newLen-1.
func Inverse(p P, newLen int) (P, error) {
	if newLen == 0 {
		return nil, ErrInverseBadLength
	}
	if len(p) == 0 || p[0].IsZero() {
		return nil, ErrZeroDivisor
	}
	if len(p) == 1 {
		out := make(P, newLen)
		out[0].Inverse(&p[0])
		return out, nil
	}

	c := make(P, 1)
	c[0].Inverse(&p[0])

	two := bls.FrFromUint64(2)
	d := 1
	for d < newLen {
		newD := d * 2
		if newD > newLen {
			newD = newLen
		}
		bTrunc := p
		if len(bTrunc) > newD {
			bTrunc = bTrunc[:newD]
		}
		prod, err := Mul(bTrunc, c, newD)
		if err != nil {
			return nil, err
		}
		inner := make(P, newD)
		for i := range inner {
			if i == 0 {
				inner[i].Sub(&two, &prod[i])
			} else {
				inner[i].Neg(&prod[i])
			}
		}
		next, err := Mul(c, inner, newD)
		if err != nil {
			return nil, err
		}
		c = next
		d = newD
	}
	return c, nil
}
