// Package eip4844 implements the blob-commitment façade: blob/polynomial
// conversion, single and batched point-evaluation proofs, and the EIP-7594
// cell-proof pipeline built on top of it (cells.go).
package eip4844

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/internal/utils"
	"github.com/eth2030/go-kzg-das/kzg"
	"github.com/eth2030/go-kzg-das/transcript"
)

// Byte-exact wire sizes.
const (
	BytesPerFieldElement = bls.BytesPerFieldElement
	BytesPerCommitment   = bls.BytesPerG1
	BytesPerProof        = bls.BytesPerG1
	FieldElementsPerBlob = 4096
	BytesPerBlob         = FieldElementsPerBlob * BytesPerFieldElement
)

// BytesToBlob parses BytesPerBlob bytes into FieldElementsPerBlob canonical
// field elements, rejecting any 32-byte group that is not a reduced
// representative.
func BytesToBlob(b []byte) ([]bls.Fr, error) {
	if len(b) != BytesPerBlob {
		return nil, fmt.Errorf("%w: blob must be %d bytes", ErrInvalidSize, BytesPerBlob)
	}
	out := make([]bls.Fr, FieldElementsPerBlob)
	for i := range out {
		off := i * BytesPerFieldElement
		v, err := bls.FrFromCanonicalBytes(b[off : off+BytesPerFieldElement])
		if err != nil {
			return nil, fmt.Errorf("%w: field element %d: %v", ErrInvalidEncoding, i, err)
		}
		out[i] = v
	}
	return out, nil
}

func decodeCommitment(b []byte) (bls.G1, error) {
	p, err := bls.G1FromCompressed(b)
	if err != nil {
		return bls.G1{}, fmt.Errorf("%w: commitment: %v", ErrInvalidEncoding, err)
	}
	return p, nil
}

func decodeProof(b []byte) (bls.G1, error) {
	p, err := bls.G1FromCompressed(b)
	if err != nil {
		return bls.G1{}, fmt.Errorf("%w: proof: %v", ErrInvalidEncoding, err)
	}
	return p, nil
}

func decodeScalar(b []byte) (bls.Fr, error) {
	v, err := bls.FrFromCanonicalBytes(b)
	if err != nil {
		return bls.Fr{}, fmt.Errorf("%w: scalar: %v", ErrInvalidEncoding, err)
	}
	return v, nil
}

// BlobToKZGCommitment commits a blob (evaluation form, bit-reversal
// permuted) via the Lagrange G1 vector.
func BlobToKZGCommitment(ks *kzg.Settings, blobBytes []byte) ([]byte, error) {
	blob, err := BytesToBlob(blobBytes)
	if err != nil {
		return nil, err
	}
	commitment, err := ks.CommitEvaluation(blob)
	if err != nil {
		return nil, err
	}
	out := bls.G1ToCompressed(commitment)
	return out[:], nil
}

// ComputeKZGProof computes the opening proof for a blob at z, returning the
// proof and y = p(z).
func ComputeKZGProof(ks *kzg.Settings, blobBytes []byte, zBytes []byte) (proofBytes [BytesPerCommitment]byte, yBytes [BytesPerFieldElement]byte, err error) {
	blob, err := BytesToBlob(blobBytes)
	if err != nil {
		return proofBytes, yBytes, err
	}
	z, err := decodeScalar(zBytes)
	if err != nil {
		return proofBytes, yBytes, err
	}
	proof, y, err := ks.ComputeProofEvaluation(blob, z)
	if err != nil {
		return proofBytes, yBytes, err
	}
	return bls.G1ToCompressed(proof), bls.FrToBytes(y), nil
}

// VerifyKZGProof checks a single-point opening proof.
func VerifyKZGProof(ks *kzg.Settings, commitmentBytes, zBytes, yBytes, proofBytes []byte) (bool, error) {
	commitment, err := decodeCommitment(commitmentBytes)
	if err != nil {
		return false, err
	}
	z, err := decodeScalar(zBytes)
	if err != nil {
		return false, err
	}
	y, err := decodeScalar(yBytes)
	if err != nil {
		return false, err
	}
	proof, err := decodeProof(proofBytes)
	if err != nil {
		return false, err
	}
	return ks.VerifySingle(commitment, z, y, proof)
}

// ComputeBlobKZGProof derives the evaluation challenge z from the blob and
// its commitment via Fiat-Shamir, then computes the opening proof at z
// (discarding y, which the verifier recomputes).
func ComputeBlobKZGProof(ks *kzg.Settings, blobBytes, commitmentBytes []byte) ([BytesPerCommitment]byte, error) {
	var empty [BytesPerCommitment]byte
	blob, err := BytesToBlob(blobBytes)
	if err != nil {
		return empty, err
	}
	z := transcript.ComputeChallenge(FieldElementsPerBlob, blobBytes, commitmentBytes)
	proof, _, err := ks.ComputeProofEvaluation(blob, z)
	if err != nil {
		return empty, err
	}
	return bls.G1ToCompressed(proof), nil
}

// VerifyBlobKZGProof re-derives z, evaluates the blob at z, and checks the
// opening proof.
func VerifyBlobKZGProof(ks *kzg.Settings, blobBytes, commitmentBytes, proofBytes []byte) (bool, error) {
	blob, err := BytesToBlob(blobBytes)
	if err != nil {
		return false, err
	}
	commitment, err := decodeCommitment(commitmentBytes)
	if err != nil {
		return false, err
	}
	proof, err := decodeProof(proofBytes)
	if err != nil {
		return false, err
	}
	z := transcript.ComputeChallenge(FieldElementsPerBlob, blobBytes, commitmentBytes)
	roots := brpDomainRoots(ks)
	y := kzg.EvalInEvaluationForm(blob, roots, z)
	return ks.VerifySingle(commitment, z, y, proof)
}

func brpDomainRoots(ks *kzg.Settings) []bls.Fr {
	n := ks.N()
	roots := make([]bls.Fr, n)
	copy(roots, ks.FFT.Roots[:n])
	_ = utils.ReverseBitOrderFr(roots)
	return roots
}

// VerifyBlobKZGProofBatch verifies many (blob, commitment, proof) triples
// with one aggregated pairing check per group, splitting work across
// runtime.GOMAXPROCS groups via errgroup, each group sized by ceiling
// division so every blob lands in exactly one group; the batch is accepted
// only if every group's check passes. An empty batch is
// trivially accepted; a single-element batch delegates to
// VerifyBlobKZGProof.
func VerifyBlobKZGProofBatch(ks *kzg.Settings, blobs, commitments, proofs [][]byte) (bool, error) {
	n := len(blobs)
	if len(commitments) != n || len(proofs) != n {
		return false, fmt.Errorf("%w: blobs/commitments/proofs length mismatch", ErrInvalidArgument)
	}
	if n == 0 {
		return true, nil
	}
	if n == 1 {
		return VerifyBlobKZGProof(ks, blobs[0], commitments[0], proofs[0])
	}

	numCores := runtime.GOMAXPROCS(0)
	if numCores > n {
		numCores = n
	}
	groupSize := (n + numCores - 1) / numCores

	var g errgroup.Group
	results := make([]bool, numCores)
	for gi := 0; gi < numCores; gi++ {
		gi := gi
		start := gi * groupSize
		if start >= n {
			results[gi] = true
			continue
		}
		end := start + groupSize
		if end > n {
			end = n
		}
		g.Go(func() error {
			ok, err := verifyBlobBatchGroup(ks, blobs[start:end], commitments[start:end], proofs[start:end])
			if err != nil {
				return err
			}
			results[gi] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	for _, ok := range results {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// verifyBlobBatchGroup checks one group's random-linear-combination pairing
// equation: e(Σ rᵢ(Cᵢ−[yᵢ]) + Σ rᵢzᵢ·proofᵢ, G2gen) == e(Σ rᵢ·proofᵢ, [s]₂).
func verifyBlobBatchGroup(ks *kzg.Settings, blobs, commitments, proofs [][]byte) (bool, error) {
	n := len(blobs)
	zs := make([]bls.Fr, n)
	ys := make([]bls.Fr, n)
	commitmentPoints := make([]bls.G1, n)
	proofPoints := make([]bls.G1, n)

	roots := brpDomainRoots(ks)
	entries := make([]transcript.BatchEntry, n)
	for i := 0; i < n; i++ {
		blob, err := BytesToBlob(blobs[i])
		if err != nil {
			return false, err
		}
		cp, err := decodeCommitment(commitments[i])
		if err != nil {
			return false, err
		}
		pp, err := decodeProof(proofs[i])
		if err != nil {
			return false, err
		}
		commitmentPoints[i] = cp
		proofPoints[i] = pp

		z := transcript.ComputeChallenge(FieldElementsPerBlob, blobs[i], commitments[i])
		y := kzg.EvalInEvaluationForm(blob, roots, z)
		zs[i] = z
		ys[i] = y

		zBytes := bls.FrToBytes(z)
		yBytes := bls.FrToBytes(y)
		entries[i] = transcript.BatchEntry{
			Commitment: commitments[i],
			Z:          zBytes[:],
			Y:          yBytes[:],
			Proof:      proofs[i],
		}
	}

	rPowers := transcript.ComputeRPowersBatch(FieldElementsPerBlob, entries)

	lhs := bls.G1Identity()
	g1Gen := bls.G1Generator()
	for i := 0; i < n; i++ {
		yG1 := bls.G1ScalarMul(g1Gen, ys[i])
		cMinusY := bls.G1Sub(commitmentPoints[i], yG1)
		var rz bls.Fr
		rz.Mul(&rPowers[i], &zs[i])
		term := bls.G1Add(
			bls.G1ScalarMul(cMinusY, rPowers[i]),
			bls.G1ScalarMul(proofPoints[i], rz),
		)
		lhs = bls.G1Add(lhs, term)
	}

	proofLincomb := bls.G1Identity()
	for i := 0; i < n; i++ {
		proofLincomb = bls.G1Add(proofLincomb, bls.G1ScalarMul(proofPoints[i], rPowers[i]))
	}

	if len(ks.G2Monomial) < 2 {
		return false, fmt.Errorf("%w: setup has no G2 trapdoor power", ErrInternalInconsistency)
	}
	return bls.PairingsEqual(lhs, bls.G2Generator(), proofLincomb, ks.G2Monomial[1])
}
