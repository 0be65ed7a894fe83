package eip4844

import (
	"testing"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/fft"
	"github.com/eth2030/go-kzg-das/internal/utils"
	"github.com/eth2030/go-kzg-das/kzg"
)

// toyKZGSettings builds a full blob-sized (FieldElementsPerBlob) KZG setup
// from a fixed insecure secret, for exercising the façade without depending
// on the setup package.
func toyKZGSettings(t *testing.T) *kzg.Settings {
	t.Helper()
	const n = FieldElementsPerBlob
	scale, err := utils.Log2PowTwo(n)
	if err != nil {
		t.Fatalf("Log2PowTwo: %v", err)
	}
	ffts, err := fft.NewSettings(scale)
	if err != nil {
		t.Fatalf("fft.NewSettings: %v", err)
	}

	secret := bls.FrFromUint64(944261656037)
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

func randomBlobBytes(t *testing.T) []byte {
	t.Helper()
	out := make([]byte, BytesPerBlob)
	for i := 0; i < FieldElementsPerBlob; i++ {
		v, err := bls.FrRandom()
		if err != nil {
			t.Fatalf("FrRandom: %v", err)
		}
		b := bls.FrToBytes(v)
		copy(out[i*BytesPerFieldElement:], b[:])
	}
	return out
}

func TestBytesToBlobRejectsWrongSize(t *testing.T) {
	if _, err := BytesToBlob(make([]byte, BytesPerBlob-1)); err == nil {
		t.Fatalf("expected error for short blob")
	}
}

func TestBytesToBlobRejectsNonCanonicalElement(t *testing.T) {
	b := make([]byte, BytesPerBlob)
	for i := range b[:BytesPerFieldElement] {
		b[i] = 0xff // modulus-exceeding field element
	}
	if _, err := BytesToBlob(b); err == nil {
		t.Fatalf("expected error for non-canonical field element")
	}
}

func TestBlobToKZGCommitmentAndProofRoundTrip(t *testing.T) {
	ks := toyKZGSettings(t)
	blobBytes := randomBlobBytes(t)

	commitmentBytes, err := BlobToKZGCommitment(ks, blobBytes)
	if err != nil {
		t.Fatalf("BlobToKZGCommitment: %v", err)
	}

	z, err := bls.FrRandom()
	if err != nil {
		t.Fatalf("FrRandom: %v", err)
	}
	zBytes := bls.FrToBytes(z)

	proofBytes, yBytes, err := ComputeKZGProof(ks, blobBytes, zBytes[:])
	if err != nil {
		t.Fatalf("ComputeKZGProof: %v", err)
	}

	ok, err := VerifyKZGProof(ks, commitmentBytes, zBytes[:], yBytes[:], proofBytes[:])
	if err != nil {
		t.Fatalf("VerifyKZGProof: %v", err)
	}
	if !ok {
		t.Fatalf("expected proof to verify")
	}
}

func TestComputeAndVerifyBlobKZGProof(t *testing.T) {
	ks := toyKZGSettings(t)
	blobBytes := randomBlobBytes(t)

	commitmentBytes, err := BlobToKZGCommitment(ks, blobBytes)
	if err != nil {
		t.Fatalf("BlobToKZGCommitment: %v", err)
	}
	proofBytes, err := ComputeBlobKZGProof(ks, blobBytes, commitmentBytes)
	if err != nil {
		t.Fatalf("ComputeBlobKZGProof: %v", err)
	}

	ok, err := VerifyBlobKZGProof(ks, blobBytes, commitmentBytes, proofBytes[:])
	if err != nil {
		t.Fatalf("VerifyBlobKZGProof: %v", err)
	}
	if !ok {
		t.Fatalf("expected blob proof to verify")
	}
}

func TestVerifyBlobKZGProofBatchEmptyAndSingle(t *testing.T) {
	ks := toyKZGSettings(t)

	ok, err := VerifyBlobKZGProofBatch(ks, nil, nil, nil)
	if err != nil {
		t.Fatalf("VerifyBlobKZGProofBatch(empty): %v", err)
	}
	if !ok {
		t.Fatalf("expected empty batch to verify trivially")
	}

	blobBytes := randomBlobBytes(t)
	commitmentBytes, err := BlobToKZGCommitment(ks, blobBytes)
	if err != nil {
		t.Fatalf("BlobToKZGCommitment: %v", err)
	}
	proofBytes, err := ComputeBlobKZGProof(ks, blobBytes, commitmentBytes)
	if err != nil {
		t.Fatalf("ComputeBlobKZGProof: %v", err)
	}

	ok, err = VerifyBlobKZGProofBatch(ks, [][]byte{blobBytes}, [][]byte{commitmentBytes}, [][]byte{proofBytes[:]})
	if err != nil {
		t.Fatalf("VerifyBlobKZGProofBatch(single): %v", err)
	}
	if !ok {
		t.Fatalf("expected single-element batch to verify")
	}
}

func TestVerifyBlobKZGProofBatchMultiple(t *testing.T) {
	ks := toyKZGSettings(t)

	const batchSize = 5
	blobs := make([][]byte, batchSize)
	commitments := make([][]byte, batchSize)
	proofs := make([][]byte, batchSize)
	for i := 0; i < batchSize; i++ {
		blobBytes := randomBlobBytes(t)
		commitmentBytes, err := BlobToKZGCommitment(ks, blobBytes)
		if err != nil {
			t.Fatalf("BlobToKZGCommitment: %v", err)
		}
		proofBytes, err := ComputeBlobKZGProof(ks, blobBytes, commitmentBytes)
		if err != nil {
			t.Fatalf("ComputeBlobKZGProof: %v", err)
		}
		blobs[i] = blobBytes
		commitments[i] = commitmentBytes
		proofs[i] = proofBytes[:]
	}

	ok, err := VerifyBlobKZGProofBatch(ks, blobs, commitments, proofs)
	if err != nil {
		t.Fatalf("VerifyBlobKZGProofBatch: %v", err)
	}
	if !ok {
		t.Fatalf("expected batch to verify")
	}

	// Corrupt one proof: the aggregated check must reject the whole batch.
	badProofs := make([][]byte, batchSize)
	copy(badProofs, proofs)
	var corrupt [BytesPerCommitment]byte
	copy(corrupt[:], proofs[2])
	corrupt[0] ^= 0xff
	badProofs[2] = corrupt[:]

	ok, err = VerifyBlobKZGProofBatch(ks, blobs, commitments, badProofs)
	if err == nil && ok {
		t.Fatalf("expected corrupted batch to fail verification")
	}
}
