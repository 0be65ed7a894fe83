package kzg_test

import (
	"testing"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/fft"
	"github.com/eth2030/go-kzg-das/internal/utils"
	"github.com/eth2030/go-kzg-das/poly"
	"github.com/eth2030/go-kzg-das/setup"
)

func randomPoly(t *testing.T, n int) poly.P {
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

func TestCommitAndVerifySingle(t *testing.T) {
	ks, err := setup.Insecure(16)
	if err != nil {
		t.Fatalf("setup.Insecure: %v", err)
	}

	p := randomPoly(t, 16)
	commitment, err := ks.Commit(p)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	z, err := bls.FrRandom()
	if err != nil {
		t.Fatalf("FrRandom: %v", err)
	}

	proof, y, err := ks.ComputeProofSingle(p, z)
	if err != nil {
		t.Fatalf("ComputeProofSingle: %v", err)
	}

	ok, err := ks.VerifySingle(commitment, z, y, proof)
	if err != nil {
		t.Fatalf("VerifySingle: %v", err)
	}
	if !ok {
		t.Fatalf("expected proof to verify")
	}

	wrongY := y
	wrongY.Add(&wrongY, new(bls.Fr).SetOne())
	ok, err = ks.VerifySingle(commitment, z, wrongY, proof)
	if err != nil {
		t.Fatalf("VerifySingle: %v", err)
	}
	if ok {
		t.Fatalf("expected proof against wrong evaluation to fail")
	}
}

func TestCommitEvaluationMatchesCommitOfCoefficients(t *testing.T) {
	ks, err := setup.Insecure(16)
	if err != nil {
		t.Fatalf("setup.Insecure: %v", err)
	}

	p := randomPoly(t, 16)
	commitment, err := ks.Commit(p)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	coeffs := make([]bls.Fr, len(p))
	copy(coeffs, p)
	evals, err := ks.FFT.FFTFr(coeffs, false)
	if err != nil {
		t.Fatalf("FFTFr: %v", err)
	}
	if err := utils.ReverseBitOrderFr(evals); err != nil {
		t.Fatalf("ReverseBitOrderFr: %v", err)
	}

	evalCommitment, err := ks.CommitEvaluation(evals)
	if err != nil {
		t.Fatalf("CommitEvaluation: %v", err)
	}

	a := bls.G1ToCompressed(commitment)
	b := bls.G1ToCompressed(evalCommitment)
	if a != b {
		t.Fatalf("CommitEvaluation disagrees with Commit on the same polynomial")
	}
}

func TestVerifyMultiAcceptsValidCosetOpening(t *testing.T) {
	const n = 32
	const cosetSize = 8
	ks, err := setup.Insecure(n)
	if err != nil {
		t.Fatalf("setup.Insecure: %v", err)
	}

	p := randomPoly(t, n)
	commitment, err := ks.Commit(p)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	z, err := bls.FrRandom()
	if err != nil {
		t.Fatalf("FrRandom: %v", err)
	}

	proof, err := ks.ComputeProofMulti(p, z, cosetSize)
	if err != nil {
		t.Fatalf("ComputeProofMulti: %v", err)
	}

	cosetScale, err := utils.Log2PowTwo(cosetSize)
	if err != nil {
		t.Fatalf("Log2PowTwo: %v", err)
	}
	cosetFFT, err := fft.NewSettings(cosetScale)
	if err != nil {
		t.Fatalf("fft.NewSettings: %v", err)
	}

	ys := make([]bls.Fr, cosetSize)
	for i := 0; i < cosetSize; i++ {
		var zi bls.Fr
		zi.Mul(&z, &cosetFFT.Roots[i])
		ys[i] = poly.Eval(p, zi)
	}

	ok, err := ks.VerifyMulti(commitment, proof, z, ys)
	if err != nil {
		t.Fatalf("VerifyMulti: %v", err)
	}
	if !ok {
		t.Fatalf("expected multi-opening proof to verify")
	}
}
