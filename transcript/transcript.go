// Package transcript implements the Fiat-Shamir challenge derivation used
// by single-blob proof computation and by the batched-verification random
// linear combinations, for both EIP-4844 blobs and EIP-7594 cells.
package transcript

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/eth2030/go-kzg-das/bls"
)

// Domain separation tags, byte-exact per the wire format.
const (
	FiatShamirProtocolDomain        = "FSBLOBVERIFY_V1_"
	RandomChallengeKZGBatchDomain   = "RCKZGBATCH___V1_"
	RandomChallengeKZGCellBatchDomain = "RCKZGCBATCH__V1_"
)

func le8(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func be8(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func hashToFr(h []byte) bls.Fr {
	fr, _ := bls.FrFromBytesUnchecked(h)
	return fr
}

// ComputeChallenge derives z for a single blob: SHA-256 of
// domain || field_elements_per_blob(8B LE) || 0(8B LE) || blob || commitment.
func ComputeChallenge(fieldElementsPerBlob uint64, blobBytes, commitmentBytes []byte) bls.Fr {
	h := sha256.New()
	h.Write([]byte(FiatShamirProtocolDomain))
	h.Write(le8(fieldElementsPerBlob))
	h.Write(le8(0))
	h.Write(blobBytes)
	h.Write(commitmentBytes)
	return hashToFr(h.Sum(nil))
}

// BatchEntry is one (commitment, z, y, proof) record in the blob-batch
// transcript. The order these are hashed in must never be reordered once
// assembled: it is part of the byte-exact transcript.
type BatchEntry struct {
	Commitment []byte
	Z          []byte
	Y          []byte
	Proof      []byte
}

// ComputeRPowersBatch derives r for batched single-proof verification and
// returns [1, r, ..., r^(n-1)].
func ComputeRPowersBatch(fieldElementsPerBlob uint64, entries []BatchEntry) []bls.Fr {
	h := sha256.New()
	h.Write([]byte(RandomChallengeKZGBatchDomain))
	h.Write(le8(fieldElementsPerBlob))
	h.Write(le8(uint64(len(entries))))
	for _, e := range entries {
		h.Write(e.Commitment)
		h.Write(e.Z)
		h.Write(e.Y)
		h.Write(e.Proof)
	}
	r := hashToFr(h.Sum(nil))
	return computePowers(r, len(entries))
}

// CellBatchEntry is one (commitment_index, cell_index, cell, proof) record
// used by the EIP-7594 cell-batch verification transcript.
type CellBatchEntry struct {
	CommitmentIndex uint64
	CellIndex       uint64
	Cell            []bls.Fr
	Proof           []byte
}

// ComputeRPowersCellBatch derives r for EIP-7594 batched cell-proof
// verification, using the cell-batch domain tag.
func ComputeRPowersCellBatch(cellSize, numCommitments, numCells uint64, commitments [][]byte, entries []CellBatchEntry) []bls.Fr {
	h := sha256.New()
	h.Write([]byte(RandomChallengeKZGCellBatchDomain))
	h.Write(le8(cellSize))
	h.Write(le8(numCommitments))
	h.Write(le8(numCells))
	for _, c := range commitments {
		h.Write(c)
	}
	for _, e := range entries {
		h.Write(be8(e.CommitmentIndex))
		h.Write(be8(e.CellIndex))
		for _, f := range e.Cell {
			b := bls.FrToBytes(f)
			h.Write(b[:])
		}
		h.Write(e.Proof)
	}
	r := hashToFr(h.Sum(nil))
	return computePowers(r, len(entries))
}

func computePowers(base bls.Fr, n int) []bls.Fr {
	out := make([]bls.Fr, n)
	if n == 0 {
		return out
	}
	out[0] = bls.FrOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], &base)
	}
	return out
}
