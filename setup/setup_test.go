package setup

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/kzg"
)

// serialize renders a kzg.Settings back into the §6 trusted-setup text
// format, the inverse of Load, so the round-trip property can be exercised
// without a real ceremony file on disk.
func serialize(ks *kzg.Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(ks.G1LagrangeBRP))
	fmt.Fprintf(&b, "%d\n", len(ks.G2Monomial))
	for _, p := range ks.G1LagrangeBRP {
		enc := bls.G1ToCompressed(p)
		b.WriteString(hex.EncodeToString(enc[:]))
		b.WriteString("\n")
	}
	for _, p := range ks.G2Monomial {
		enc := bls.G2ToCompressed(p)
		b.WriteString(hex.EncodeToString(enc[:]))
		b.WriteString("\n")
	}
	return b.String()
}

func TestInsecureThenLoadRoundTrips(t *testing.T) {
	const n = 64
	ks, err := Insecure(n)
	if err != nil {
		t.Fatalf("Insecure: %v", err)
	}

	reloaded, err := Load(bytes.NewBufferString(serialize(ks)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(reloaded.G1Monomial) != len(ks.G1Monomial) {
		t.Fatalf("G1Monomial length mismatch: %d vs %d", len(reloaded.G1Monomial), len(ks.G1Monomial))
	}
	for i := range ks.G1Monomial {
		a := bls.G1ToCompressed(reloaded.G1Monomial[i])
		b := bls.G1ToCompressed(ks.G1Monomial[i])
		if a != b {
			t.Fatalf("G1Monomial[%d] mismatch after round trip", i)
		}
	}
	for i := range ks.G1LagrangeBRP {
		a := bls.G1ToCompressed(reloaded.G1LagrangeBRP[i])
		b := bls.G1ToCompressed(ks.G1LagrangeBRP[i])
		if a != b {
			t.Fatalf("G1LagrangeBRP[%d] mismatch after round trip", i)
		}
	}
	for i := range ks.G2Monomial {
		a := bls.G2ToCompressed(reloaded.G2Monomial[i])
		b := bls.G2ToCompressed(ks.G2Monomial[i])
		if a != b {
			t.Fatalf("G2Monomial[%d] mismatch after round trip", i)
		}
	}
}

func TestLoadRejectsMismatchedG1Count(t *testing.T) {
	const n = 16
	ks, err := Insecure(n)
	if err != nil {
		t.Fatalf("Insecure: %v", err)
	}
	text := serialize(ks)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	// Duplicate the first G1 line to create one extra point beyond N.
	extra := append(append([]string{}, lines[:2+n]...), lines[2])
	extra = append(extra, lines[2+n:]...)
	corrupted := strings.Join(extra, "\n") + "\n"

	if _, err := Load(strings.NewReader(corrupted)); err == nil {
		t.Fatalf("expected error for mismatched G1 point count")
	}
}

func TestLoadRejectsNonPowerOfTwoN(t *testing.T) {
	text := "3\n1\n" + strings.Repeat("00", 48) + "\n" + strings.Repeat("00", 96) + "\n"
	if _, err := Load(strings.NewReader(text)); err == nil {
		t.Fatalf("expected error for non-power-of-two N")
	}
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	const n = 16
	ks, err := Insecure(n)
	if err != nil {
		t.Fatalf("Insecure: %v", err)
	}
	text := serialize(ks)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	truncated := strings.Join(lines[:len(lines)-1], "\n") + "\n"

	if _, err := Load(strings.NewReader(truncated)); err == nil {
		t.Fatalf("expected error for truncated setup file")
	}
}

func TestInsecureRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := Insecure(100); err == nil {
		t.Fatalf("expected error for non-power-of-two n")
	}
}
