// Package kzg implements the KZG trusted-setup artifacts and the
// commit/open/verify operations: single-point commitment and proof in both
// coefficient and evaluation form, and multi-point (coset) opening.
package kzg

import (
	"fmt"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/fft"
	"github.com/eth2030/go-kzg-das/internal/utils"
	"github.com/eth2030/go-kzg-das/msm"
	"github.com/eth2030/go-kzg-das/poly"
)

// Settings holds everything commit/open/verify need: the FFT settings for
// the blob-sized domain, the monomial and Lagrange G1 vectors, and the G2
// monomial powers used by the pairing check. FK20's Toeplitz matrix lives
// alongside it in the fk20 package, keyed off the same G1 monomial vector.
type Settings struct {
	FFT *fft.Settings

	// G1Monomial[i] = [s^i]_1; setup.Load and setup.Insecure fill i in [0, N).
	G1Monomial []bls.G1
	// G1LagrangeBRP[i] = [L_i(s)]_1 in bit-reversal-permuted order, i in [0,N).
	G1LagrangeBRP []bls.G1
	// G2Monomial[i] = [s^i]_2, i in [0, maxG2].
	G2Monomial []bls.G2
}

// N is the number of field elements the settings are sized for (the
// Lagrange setup length, i.e. FFT.MaxWidth).
func (s *Settings) N() uint64 { return s.FFT.MaxWidth }

// Commit computes sum(p[i] * G1Monomial[i]) for a coefficient-form
// polynomial of length <= N.
func (s *Settings) Commit(p poly.P) (bls.G1, error) {
	if len(p) > len(s.G1Monomial) {
		return bls.G1{}, fmt.Errorf("%w: polynomial longer than setup", ErrInvalidArgument)
	}
	return msm.MSM(s.G1Monomial[:len(p)], []bls.Fr(p))
}

// CommitEvaluation computes sum(blob[i] * G1LagrangeBRP[i]) for a blob in
// BRP evaluation form.
func (s *Settings) CommitEvaluation(blob []bls.Fr) (bls.G1, error) {
	if len(blob) != len(s.G1LagrangeBRP) {
		return bls.G1{}, fmt.Errorf("%w: blob length does not match setup", ErrInvalidSize)
	}
	return msm.MSM(s.G1LagrangeBRP, blob)
}

// ComputeProofSingle computes the coefficient-form single-point opening
// proof for p at z: commit((p(x)-p(z))/(x-z)).
//
// Synthetic division by the linear divisor (x-z) is a single backward
// pass: q has |p|-1 coefficients, with q[n-2] = p[n-1] and
// q[i] = p[i+1] + z*q[i+1] for i counting down from n-3.
func (s *Settings) ComputeProofSingle(p poly.P, z bls.Fr) (bls.G1, bls.Fr, error) {
	y := poly.Eval(p, z)
	n := len(p)
	if n < 2 {
		proof, err := s.Commit(poly.P{})
		return proof, y, err
	}
	q := make(poly.P, n-1)
	q[n-2] = p[n-1]
	for i := n - 3; i >= 0; i-- {
		var t bls.Fr
		t.Mul(&z, &q[i+1])
		q[i].Add(&p[i+1], &t)
	}
	proof, err := s.Commit(q)
	return proof, y, err
}

// ComputeProofEvaluation computes the evaluation-form single-point opening
// proof for a blob at z, handling the in-domain removable singularity.
func (s *Settings) ComputeProofEvaluation(blobEvals []bls.Fr, z bls.Fr) (bls.G1, bls.Fr, error) {
	n := len(blobEvals)
	if uint64(n) != s.FFT.MaxWidth {
		return bls.G1{}, bls.Fr{}, fmt.Errorf("%w: blob length does not match domain", ErrInvalidSize)
	}

	roots := brpRoots(s.FFT)
	y := EvalInEvaluationForm(blobEvals, roots, z)

	inDomain := -1
	for i, w := range roots {
		if bls.FrEqual(w, z) {
			inDomain = i
			break
		}
	}

	q := make([]bls.Fr, n)
	if inDomain < 0 {
		denom := make([]bls.Fr, n)
		for i := 0; i < n; i++ {
			denom[i].Sub(&roots[i], &z)
		}
		inv, err := utils.FrBatchInv(denom)
		if err != nil {
			return bls.G1{}, bls.Fr{}, fmt.Errorf("%w: %v", ErrInternalInconsistency, err)
		}
		for i := 0; i < n; i++ {
			var num bls.Fr
			num.Sub(&blobEvals[i], &y)
			q[i].Mul(&num, &inv[i])
		}
	} else {
		denom := make([]bls.Fr, 0, n-1)
		numer := make([]bls.Fr, 0, n-1)
		idx := make([]int, 0, n-1)
		for i := 0; i < n; i++ {
			if i == inDomain {
				continue
			}
			var d bls.Fr
			d.Sub(&z, &roots[i])
			d.Mul(&d, &z)
			denom = append(denom, d)
			var num bls.Fr
			num.Sub(&blobEvals[i], &y)
			num.Mul(&num, &roots[i])
			numer = append(numer, num)
			idx = append(idx, i)
		}
		inv, err := utils.FrBatchInv(denom)
		if err != nil {
			return bls.G1{}, bls.Fr{}, fmt.Errorf("%w: %v", ErrInternalInconsistency, err)
		}
		var sum bls.Fr
		for j, i := range idx {
			var term bls.Fr
			term.Mul(&numer[j], &inv[j])
			sum.Add(&sum, &term)
			// q[i] = (p_i - y)/(ω_i - z) = (y - p_i)·z / (z·(z - ω_i)).
			var qi bls.Fr
			qi.Sub(&y, &blobEvals[i])
			qi.Mul(&qi, &z)
			q[i].Mul(&qi, &inv[j])
		}
		q[inDomain] = sum
	}

	proof, err := s.CommitEvaluation(q)
	return proof, y, err
}

// EvalInEvaluationForm evaluates a blob given in BRP evaluation form at an
// arbitrary point z, using the barycentric formula with an early-return on
// an exact in-domain match.
func EvalInEvaluationForm(blobEvals []bls.Fr, roots []bls.Fr, z bls.Fr) bls.Fr {
	n := len(blobEvals)
	for i, w := range roots {
		if bls.FrEqual(w, z) {
			return blobEvals[i]
		}
	}

	denom := make([]bls.Fr, n)
	for i := 0; i < n; i++ {
		denom[i].Sub(&z, &roots[i])
	}
	inv, err := utils.FrBatchInv(denom)
	if err != nil {
		// z coincided with a root after all (should not happen given the
		// exact-match scan above); fall back to direct Horner on the
		// interpolation is not attempted here since evaluation-form blobs
		// are only ever queried at powers reachable by the transcript.
		return bls.FrZero()
	}

	var sum bls.Fr
	for i := 0; i < n; i++ {
		var term bls.Fr
		term.Mul(&blobEvals[i], &roots[i])
		term.Mul(&term, &inv[i])
		sum.Add(&sum, &term)
	}

	var zN, one bls.Fr
	one.SetOne()
	zN = bls.FrPow(z, uint64(n))
	zN.Sub(&zN, &one)
	var nInv bls.Fr
	nInv.SetUint64(uint64(n))
	nInv.Inverse(&nInv)
	zN.Mul(&zN, &nInv)
	sum.Mul(&sum, &zN)
	return sum
}

// brpRoots returns the FFT domain's roots of unity in bit-reversal
// permuted order, the canonical evaluation-point ordering for blobs.
func brpRoots(settings *fft.Settings) []bls.Fr {
	n := settings.MaxWidth
	roots := make([]bls.Fr, n)
	copy(roots, settings.Roots[:n])
	_ = utils.ReverseBitOrderFr(roots)
	return roots
}

// VerifySingle checks e(com - [y]_1, g2) == e(proof, [s]_2 - [z]_2).
func (s *Settings) VerifySingle(commitment bls.G1, z, y bls.Fr, proof bls.G1) (bool, error) {
	g1 := bls.G1Generator()
	yG1 := bls.G1ScalarMul(g1, y)
	lhsG1 := bls.G1Sub(commitment, yG1)

	if len(s.G2Monomial) < 2 {
		return false, fmt.Errorf("%w: setup has no G2 trapdoor power", ErrInternalInconsistency)
	}
	zG2 := bls.G2ScalarMul(bls.G2Generator(), z)
	rhsG2 := bls.G2Sub(s.G2Monomial[1], zG2)

	return bls.PairingsEqual(lhsG1, bls.G2Generator(), proof, rhsG2)
}

// ComputeProofMulti computes the multi-point (coset) opening proof: the
// quotient of p by (x^n - z^n), committed in monomial form.
func (s *Settings) ComputeProofMulti(p poly.P, z bls.Fr, n int) (bls.G1, error) {
	zn := bls.FrPow(z, uint64(n))
	divisor := make(poly.P, n+1)
	var negZn bls.Fr
	negZn.Neg(&zn)
	divisor[0] = negZn
	divisor[n] = bls.FrOne()

	q, err := poly.Div(p, divisor)
	if err != nil {
		return bls.G1{}, err
	}
	return s.Commit(q)
}

// VerifyMulti verifies a coset opening: interpolate ys over the coset
// {z*omega^i}, commit the interpolation polynomial, and check the
// degree-n pairing equation.
func (s *Settings) VerifyMulti(commitment bls.G1, proof bls.G1, z bls.Fr, ys []bls.Fr) (bool, error) {
	n := len(ys)
	scale, err := utils.Log2PowTwo(uint64(n))
	if err != nil {
		return false, fmt.Errorf("%w: coset size must be a power of two", ErrInvalidArgument)
	}
	cosetFFT, err := fft.NewSettings(scale)
	if err != nil {
		return false, err
	}

	coeffs, err := cosetFFT.FFTFr(ys, true)
	if err != nil {
		return false, err
	}

	zInv := z
	zInv.Inverse(&zInv)
	factor := bls.FrOne()
	interp := make(poly.P, n)
	for i := 0; i < n; i++ {
		interp[i].Mul(&coeffs[i], &factor)
		factor.Mul(&factor, &zInv)
	}

	interpCommit, err := s.Commit(interp)
	if err != nil {
		return false, err
	}
	lhsG1 := bls.G1Sub(commitment, interpCommit)

	if len(s.G2Monomial) <= n {
		return false, fmt.Errorf("%w: setup missing G2 power for coset size %d", ErrInternalInconsistency, n)
	}
	znG2 := bls.G2ScalarMul(bls.G2Generator(), bls.FrPow(z, uint64(n)))
	rhsG2 := bls.G2Sub(s.G2Monomial[n], znG2)

	return bls.PairingsEqual(lhsG1, bls.G2Generator(), proof, rhsG2)
}
