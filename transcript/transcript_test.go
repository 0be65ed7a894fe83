package transcript

import "testing"

func TestComputeChallengeDeterministic(t *testing.T) {
	blob := make([]byte, 131072)
	commitment := make([]byte, 48)
	commitment[0] = 0xc0 // infinity flag

	a := ComputeChallenge(4096, blob, commitment)
	b := ComputeChallenge(4096, blob, commitment)
	if !a.Equal(&b) {
		t.Fatalf("ComputeChallenge should be deterministic for identical input")
	}

	blob[0] = 1
	c := ComputeChallenge(4096, blob, commitment)
	if a.Equal(&c) {
		t.Fatalf("ComputeChallenge should change when the blob changes")
	}
}

func TestRPowersBatchLength(t *testing.T) {
	entries := []BatchEntry{
		{Commitment: make([]byte, 48), Z: make([]byte, 32), Y: make([]byte, 32), Proof: make([]byte, 48)},
		{Commitment: make([]byte, 48), Z: make([]byte, 32), Y: make([]byte, 32), Proof: make([]byte, 48)},
	}
	powers := ComputeRPowersBatch(4096, entries)
	if len(powers) != 2 {
		t.Fatalf("expected 2 powers, got %d", len(powers))
	}
	one := powers[0]
	want := one
	want.SetOne()
	if !one.Equal(&want) {
		t.Fatalf("r^0 should be one")
	}
}
