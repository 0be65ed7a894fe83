package fk20

import (
	"testing"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/fft"
	"github.com/eth2030/go-kzg-das/internal/utils"
	"github.com/eth2030/go-kzg-das/kzg"
	"github.com/eth2030/go-kzg-das/poly"
)

// toySettings builds a tiny KZG setup from a fixed (insecure) secret, large
// enough to hold N=16 monomial powers, for exercising the FK20 pipeline
// without depending on the setup package.
func toySettings(t *testing.T, n uint64) *kzg.Settings {
	t.Helper()
	scale, err := utils.Log2PowTwo(n)
	if err != nil {
		t.Fatalf("Log2PowTwo: %v", err)
	}
	ffts, err := fft.NewSettings(scale)
	if err != nil {
		t.Fatalf("fft.NewSettings: %v", err)
	}

	secret := bls.FrFromUint64(1927408825)
	g1 := bls.G1Generator()
	g2 := bls.G2Generator()

	g1Monomial := make([]bls.G1, n+1)
	g2Monomial := make([]bls.G2, n+1)
	power := bls.FrOne()
	for i := uint64(0); i <= n; i++ {
		g1Monomial[i] = bls.G1ScalarMul(g1, power)
		g2Monomial[i] = bls.G2ScalarMul(g2, power)
		power.Mul(&power, &secret)
	}

	lagrangeCoeffs := make([]bls.G1, n)
	copy(lagrangeCoeffs, g1Monomial[:n])
	lagrange, err := ffts.FFTG1(lagrangeCoeffs, true)
	if err != nil {
		t.Fatalf("FFTG1: %v", err)
	}
	if err := utils.ReverseBitOrderG1(lagrange); err != nil {
		t.Fatalf("ReverseBitOrderG1: %v", err)
	}

	return &kzg.Settings{
		FFT:           ffts,
		G1Monomial:    g1Monomial,
		G1LagrangeBRP: lagrange,
		G2Monomial:    g2Monomial,
	}
}

func randomPoly(t *testing.T, n uint64) poly.P {
	t.Helper()
	p := make(poly.P, n)
	for i := range p {
		v, err := bls.FrRandom()
		if err != nil {
			t.Fatalf("FrRandom: %v", err)
		}
		p[i] = v
	}
	return p
}

func TestComputeCellProofsCountAndNonIdentity(t *testing.T) {
	const n = 16
	const cellSize = 4

	ks := toySettings(t, n)
	s, err := NewSettings(ks, cellSize)
	if err != nil {
		t.Fatalf("NewSettings: %v", err)
	}

	p := randomPoly(t, n)
	proofs, err := s.ComputeCellProofs(p)
	if err != nil {
		t.Fatalf("ComputeCellProofs: %v", err)
	}
	if uint64(len(proofs)) != s.TwoK {
		t.Fatalf("expected %d proofs, got %d", s.TwoK, len(proofs))
	}

	// Cross-check: cell 0 should be the standard single-point opening
	// proof at the domain's first extended-evaluation coset point, i.e.
	// it must at least be a well-formed, non-identity commitment (a
	// stronger point-by-point comparison requires the full coset-FFT
	// evaluation machinery exercised by the eip4844 cell tests).
	for i, pr := range proofs {
		if bls.G1IsInfinity(pr) {
			t.Fatalf("cell proof %d unexpectedly the identity", i)
		}
	}
}

func TestComputeCellProofsRejectsWrongLength(t *testing.T) {
	ks := toySettings(t, 16)
	s, err := NewSettings(ks, 4)
	if err != nil {
		t.Fatalf("NewSettings: %v", err)
	}
	if _, err := s.ComputeCellProofs(make(poly.P, 8)); err == nil {
		t.Fatalf("expected error for mismatched polynomial length")
	}
}

func TestComputeCellEvaluationsLength(t *testing.T) {
	const n = 16
	const cellSize = 4
	ks := toySettings(t, n)
	s, err := NewSettings(ks, cellSize)
	if err != nil {
		t.Fatalf("NewSettings: %v", err)
	}

	p := randomPoly(t, n)
	evals, err := s.ComputeCellEvaluations(p)
	if err != nil {
		t.Fatalf("ComputeCellEvaluations: %v", err)
	}
	if uint64(len(evals)) != 2*n {
		t.Fatalf("expected %d evaluations, got %d", 2*n, len(evals))
	}
}

func TestNewSettingsRejectsNonDividingCellSize(t *testing.T) {
	ks := toySettings(t, 16)
	if _, err := NewSettings(ks, 3); err == nil {
		t.Fatalf("expected error when cell size does not divide N")
	}
}
