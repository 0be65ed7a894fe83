// Package recovery implements zero-polynomial construction over a set of
// missing domain indices and coset-shift recovery of a polynomial's
// coefficients from a partial set of its evaluations.
package recovery

import (
	"errors"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/fft"
	"github.com/eth2030/go-kzg-das/poly"
)

// PerLeaf bounds how many roots go into one directly-multiplied leaf
// polynomial before leaves are multiplied together ReductionFactor at a
// time through poly.Mul.
const PerLeaf = 63

// ReductionFactor is how many leaves are folded together per reduction
// round.
const ReductionFactor = 4

var (
	ErrTooManyMissing       = errors.New("recovery: more than half the samples are missing")
	ErrLengthMismatch       = errors.New("recovery: sample count does not match domain width")
	ErrReconstructionFailed = errors.New("recovery: recovered values disagree with given samples")
)

// Sample is one evaluation-domain entry: either a known field element, or
// missing (Present=false). The zero Value of a missing sample is never
// read by the reconstruction formula itself.
type Sample struct {
	Value   bls.Fr
	Present bool
}

// vanishingLeaf builds the monomial-form polynomial ∏(x - roots[i]) for
// i in indices, by repeated multiplication by a linear factor.
func vanishingLeaf(roots []bls.Fr, indices []int) poly.P {
	coeffs := poly.P{bls.FrOne()}
	for _, idx := range indices {
		r := roots[idx]
		var negR bls.Fr
		negR.Neg(&r)

		next := make(poly.P, len(coeffs)+1)
		for i := range coeffs {
			var t bls.Fr
			t.Mul(&negR, &coeffs[i])
			next[i].Add(&next[i], &t)
			next[i+1].Add(&next[i+1], &coeffs[i])
		}
		coeffs = next
	}
	return coeffs
}

// reduceGroup multiplies a group of leaf polynomials together. The
// reference implementation reuses a hand-managed scratch buffer across an
// explicit FFT convolution here; this folds the group through the
// polynomial engine's own Mul, which already picks direct vs. FFT
// multiplication by operand size, instead of duplicating that choice.
func reduceGroup(group []poly.P) (poly.P, error) {
	if len(group) == 0 {
		return poly.P{bls.FrOne()}, nil
	}
	acc := group[0]
	for _, p := range group[1:] {
		outLen := len(acc) + len(p) - 1
		var err error
		acc, err = poly.Mul(acc, p, outLen)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// ZeroPolynomial builds the vanishing polynomial over the given missing
// domain indices (in [0, domain.MaxWidth)) and its evaluation over the
// full domain. Leaves of up to PerLeaf roots are built directly, then
// reduced ReductionFactor leaves at a time until one polynomial remains,
// which is zero-padded to domain.MaxWidth before the final evaluation.
func ZeroPolynomial(domain *fft.Settings, missing []int) (zeroEval []bls.Fr, zeroCoeffs poly.P, err error) {
	length := domain.MaxWidth
	if len(missing) == 0 {
		// The empty product is the constant polynomial 1.
		zeroEval = make([]bls.Fr, length)
		for i := range zeroEval {
			zeroEval[i] = bls.FrOne()
		}
		zeroCoeffs = make(poly.P, length)
		zeroCoeffs[0] = bls.FrOne()
		return zeroEval, zeroCoeffs, nil
	}

	leaves := make([]poly.P, 0, (len(missing)+PerLeaf-1)/PerLeaf)
	for offset := 0; offset < len(missing); offset += PerLeaf {
		end := offset + PerLeaf
		if end > len(missing) {
			end = len(missing)
		}
		leaves = append(leaves, vanishingLeaf(domain.Roots, missing[offset:end]))
	}

	for len(leaves) > 1 {
		reducedCount := (len(leaves) + ReductionFactor - 1) / ReductionFactor
		reduced := make([]poly.P, reducedCount)
		for i := 0; i < reducedCount; i++ {
			start := i * ReductionFactor
			end := start + ReductionFactor
			if end > len(leaves) {
				end = len(leaves)
			}
			r, err := reduceGroup(leaves[start:end])
			if err != nil {
				return nil, nil, err
			}
			reduced[i] = r
		}
		leaves = reduced
	}

	zeroCoeffs = make(poly.P, length)
	copy(zeroCoeffs, leaves[0])

	zeroEval, err = domain.FFTFr(zeroCoeffs, false)
	if err != nil {
		return nil, nil, err
	}
	return zeroEval, zeroCoeffs, nil
}

// RecoverPolynomial reconstructs the coefficient form of a polynomial from
// a partial set of its evaluations over domain, and returns both the
// coefficients and the full re-evaluated sample set. Fails if more than
// half the samples are missing, or if the reconstructed values disagree
// with the samples that were given (the division performed here is exact
// whenever reconstruction is feasible at all, so disagreement indicates a
// caller error rather than a transient failure).
func RecoverPolynomial(domain *fft.Settings, samples []Sample) (poly.P, []bls.Fr, error) {
	length := int(domain.MaxWidth)
	if len(samples) != length {
		return nil, nil, ErrLengthMismatch
	}

	missing := make([]int, 0, length/2)
	for i, s := range samples {
		if !s.Present {
			missing = append(missing, i)
		}
	}
	if len(missing) > length/2 {
		return nil, nil, ErrTooManyMissing
	}

	zEval, zCoeffs, err := ZeroPolynomial(domain, missing)
	if err != nil {
		return nil, nil, err
	}

	ez := make([]bls.Fr, length)
	for i, s := range samples {
		if s.Present {
			ez[i].Mul(&s.Value, &zEval[i])
		}
	}
	ezCoeffs, err := domain.FFTFr(ez, true)
	if err != nil {
		return nil, nil, err
	}

	scaledEZ := poly.Scale(ezCoeffs)
	scaledZ := poly.Scale(zCoeffs)

	fe, err := domain.FFTFr(scaledEZ, false)
	if err != nil {
		return nil, nil, err
	}
	fz, err := domain.FFTFr(scaledZ, false)
	if err != nil {
		return nil, nil, err
	}

	q := make([]bls.Fr, length)
	for i := range q {
		var inv bls.Fr
		inv.Inverse(&fz[i])
		q[i].Mul(&fe[i], &inv)
	}

	qCoeffsScaled, err := domain.FFTFr(q, true)
	if err != nil {
		return nil, nil, err
	}
	qCoeffs := poly.Unscale(qCoeffsScaled)

	recovered, err := domain.FFTFr(qCoeffs, false)
	if err != nil {
		return nil, nil, err
	}

	for i, s := range samples {
		if s.Present && !bls.FrEqual(recovered[i], s.Value) {
			return nil, nil, ErrReconstructionFailed
		}
	}

	return qCoeffs, recovered, nil
}
