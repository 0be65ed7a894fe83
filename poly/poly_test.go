package poly

import (
	"testing"

	"github.com/eth2030/go-kzg-das/bls"
)

func mk(vals ...uint64) P {
	out := make(P, len(vals))
	for i, v := range vals {
		out[i] = bls.FrFromUint64(v)
	}
	return out
}

func TestEvalHorner(t *testing.T) {
	// p(x) = 1 + 2x + 3x^2
	p := mk(1, 2, 3)
	got := Eval(p, bls.FrFromUint64(2))
	want := bls.FrFromUint64(1 + 2*2 + 3*4)
	if !bls.FrEqual(got, want) {
		t.Fatalf("Eval = %v want %v", got, want)
	}
}

func TestEvalEmpty(t *testing.T) {
	got := Eval(P{}, bls.FrFromUint64(5))
	if !bls.FrEqual(got, bls.FrZero()) {
		t.Fatalf("Eval(empty) should be zero")
	}
}

func TestScaleUnscaleRoundTrip(t *testing.T) {
	p := mk(1, 2, 3, 4, 5)
	got := Unscale(Scale(p))
	for i := range p {
		if !bls.FrEqual(got[i], p[i]) {
			t.Fatalf("index %d: Unscale(Scale(p)) != p", i)
		}
	}
}

func TestMulDirectMatchesSchoolbook(t *testing.T) {
	a := mk(1, 2)    // 1 + 2x
	b := mk(3, 4)    // 3 + 4x
	got, err := Mul(a, b, 3)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	// (1+2x)(3+4x) = 3 + 10x + 8x^2
	want := mk(3, 10, 8)
	for i := range want {
		if !bls.FrEqual(got[i], want[i]) {
			t.Fatalf("coeff %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestDivisionCorrectness(t *testing.T) {
	a := mk(3, 10, 8) // (1+2x)(3+4x)
	b := mk(3, 4)
	q, err := LongDiv(a, b)
	if err != nil {
		t.Fatalf("LongDiv: %v", err)
	}
	want := mk(1, 2)
	if len(q) != len(want) {
		t.Fatalf("quotient length = %d want %d", len(q), len(want))
	}
	for i := range want {
		if !bls.FrEqual(q[i], want[i]) {
			t.Fatalf("coeff %d: got %v want %v", i, q[i], want[i])
		}
	}
}

func TestInverseConstant(t *testing.T) {
	p := mk(4)
	inv, err := Inverse(p, 3)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	var check bls.Fr
	check.Mul(&p[0], &inv[0])
	if !bls.FrEqual(check, bls.FrOne()) {
		t.Fatalf("p[0]*inv[0] != 1")
	}
	for i := 1; i < len(inv); i++ {
		if !inv[i].IsZero() {
			t.Fatalf("constant-poly inverse should have zero tail, index %d", i)
		}
	}
}

func TestInverseRejectsZeroConstantTerm(t *testing.T) {
	p := mk(0, 1)
	if _, err := Inverse(p, 4); err != ErrZeroDivisor {
		t.Fatalf("expected ErrZeroDivisor, got %v", err)
	}
}
