// EIP-7594 cell operations: computing all data-availability cells and their
// FK20 proofs for a blob, recovering a full cell set from a partial one, and
// batched cell-proof verification.
package eip4844

import (
	"errors"
	"fmt"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/fft"
	"github.com/eth2030/go-kzg-das/fk20"
	"github.com/eth2030/go-kzg-das/internal/utils"
	"github.com/eth2030/go-kzg-das/kzg"
	"github.com/eth2030/go-kzg-das/poly"
	"github.com/eth2030/go-kzg-das/recovery"
	"github.com/eth2030/go-kzg-das/transcript"
)

// ErrCellIndexOutOfRange and ErrDuplicateCellIndex guard the recovery and
// batch-verification entry points, which both key off caller-supplied cell
// indices rather than deriving them positionally.
var (
	ErrCellIndexOutOfRange = errors.New("eip4844: cell index out of range")
	ErrDuplicateCellIndex  = errors.New("eip4844: duplicate cell index")
)

// BytesPerCell is the wire size of one cell: fk.CellSize field elements.
func BytesPerCell(fkSettings *fk20.Settings) int {
	return int(fkSettings.CellSize) * BytesPerFieldElement
}

func decodeCellBytes(b []byte, cellSize uint64) ([]bls.Fr, error) {
	if uint64(len(b)) != cellSize*BytesPerFieldElement {
		return nil, fmt.Errorf("%w: cell must be %d bytes", ErrInvalidSize, cellSize*BytesPerFieldElement)
	}
	out := make([]bls.Fr, cellSize)
	for i := range out {
		off := i * BytesPerFieldElement
		v, err := bls.FrFromCanonicalBytes(b[off : off+BytesPerFieldElement])
		if err != nil {
			return nil, fmt.Errorf("%w: cell element %d: %v", ErrInvalidEncoding, i, err)
		}
		out[i] = v
	}
	return out, nil
}

func encodeCell(vals []bls.Fr) []byte {
	out := make([]byte, len(vals)*BytesPerFieldElement)
	for i, v := range vals {
		b := bls.FrToBytes(v)
		copy(out[i*BytesPerFieldElement:], b[:])
	}
	return out
}

// blobCoefficients recovers a blob's monomial-form coefficients from its
// (bit-reversal permuted) evaluation-form bytes.
func blobCoefficients(ks *kzg.Settings, blobBytes []byte) (poly.P, error) {
	blob, err := BytesToBlob(blobBytes)
	if err != nil {
		return nil, err
	}
	natural := make([]bls.Fr, len(blob))
	copy(natural, blob)
	if err := utils.ReverseBitOrderFr(natural); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalInconsistency, err)
	}
	coeffs, err := ks.FFT.FFTFr(natural, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalInconsistency, err)
	}
	return poly.P(coeffs), nil
}

// extDomain builds the 2N-wide FFT settings the cell layout is expressed
// over (distinct from fk.ExtFFT, which is sized 2k for the Toeplitz
// columns).
func extDomain(fkSettings *fk20.Settings) (*fft.Settings, error) {
	scale, err := utils.Log2PowTwo(2 * fkSettings.N)
	if err != nil {
		return nil, err
	}
	return fft.NewSettings(scale)
}

// ComputeCellsAndKZGProofs computes all CELLS_PER_EXT_BLOB cells and their
// FK20 proofs for a blob, each cell holding fk.CellSize consecutive
// evaluations of the blob polynomial (degree < N) over the 2N-point
// extended domain, in canonical (bit-reversed) cell order.
func ComputeCellsAndKZGProofs(ks *kzg.Settings, fkSettings *fk20.Settings, blobBytes []byte) ([][]byte, [][]byte, error) {
	coeffs, err := blobCoefficients(ks, blobBytes)
	if err != nil {
		return nil, nil, err
	}

	evals, err := fkSettings.ComputeCellEvaluations(coeffs)
	if err != nil {
		return nil, nil, err
	}
	proofs, err := fkSettings.ComputeCellProofs(coeffs)
	if err != nil {
		return nil, nil, err
	}

	cellsBytes := make([][]byte, fkSettings.TwoK)
	for c := uint64(0); c < fkSettings.TwoK; c++ {
		start := c * fkSettings.CellSize
		cellsBytes[c] = encodeCell(evals[start : start+fkSettings.CellSize])
	}
	proofsBytes := make([][]byte, len(proofs))
	for i, p := range proofs {
		enc := bls.G1ToCompressed(p)
		proofsBytes[i] = enc[:]
	}
	return cellsBytes, proofsBytes, nil
}

// RecoverCellsAndKZGProofs reconstructs the full set of CELLS_PER_EXT_BLOB
// cells and proofs from a partial set of known cells, identified by their
// canonical cell index. At least half the cells must be present.
func RecoverCellsAndKZGProofs(ks *kzg.Settings, fkSettings *fk20.Settings, cellIndices []uint64, cellsBytes [][]byte) ([][]byte, [][]byte, error) {
	if len(cellIndices) != len(cellsBytes) {
		return nil, nil, fmt.Errorf("%w: cellIndices/cells length mismatch", ErrInvalidArgument)
	}

	extN := 2 * fkSettings.N
	samples := make([]recovery.Sample, extN)
	seen := make(map[uint64]bool, len(cellIndices))
	for i, ci := range cellIndices {
		if ci >= fkSettings.TwoK {
			return nil, nil, fmt.Errorf("%w: cell index %d", ErrCellIndexOutOfRange, ci)
		}
		if seen[ci] {
			return nil, nil, fmt.Errorf("%w: cell index %d", ErrDuplicateCellIndex, ci)
		}
		seen[ci] = true

		vals, err := decodeCellBytes(cellsBytes[i], fkSettings.CellSize)
		if err != nil {
			return nil, nil, err
		}
		start := ci * fkSettings.CellSize
		for j, v := range vals {
			samples[start+uint64(j)] = recovery.Sample{Value: v, Present: true}
		}
	}

	// RecoverPolynomial works in the domain's natural (non-bit-reversed)
	// evaluation order; cell data is stored bit-reversed, so un-permute the
	// whole sample array before handing it over.
	if err := reverseSampleOrder(samples); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternalInconsistency, err)
	}

	domain, err := extDomain(fkSettings)
	if err != nil {
		return nil, nil, err
	}
	recoveredCoeffs, _, err := recovery.RecoverPolynomial(domain, samples)
	if err != nil {
		if err == recovery.ErrTooManyMissing {
			return nil, nil, fmt.Errorf("%w: %v", ErrNotEnoughData, err)
		}
		return nil, nil, err
	}

	blobCoeffs := poly.P(recoveredCoeffs[:fkSettings.N])
	evals, err := fkSettings.ComputeCellEvaluations(blobCoeffs)
	if err != nil {
		return nil, nil, err
	}
	proofs, err := fkSettings.ComputeCellProofs(blobCoeffs)
	if err != nil {
		return nil, nil, err
	}

	recoveredCells := make([][]byte, fkSettings.TwoK)
	for c := uint64(0); c < fkSettings.TwoK; c++ {
		start := c * fkSettings.CellSize
		recoveredCells[c] = encodeCell(evals[start : start+fkSettings.CellSize])
	}
	recoveredProofs := make([][]byte, len(proofs))
	for i, p := range proofs {
		enc := bls.G1ToCompressed(p)
		recoveredProofs[i] = enc[:]
	}
	return recoveredCells, recoveredProofs, nil
}

func reverseSampleOrder(samples []recovery.Sample) error {
	n := uint64(len(samples))
	if !utils.IsPowerOfTwo(n) {
		return utils.ErrNotPowerOfTwo
	}
	for i := uint64(0); i < n; i++ {
		j, err := utils.BitReverseIndex(i, n)
		if err != nil {
			return err
		}
		if i < j {
			samples[i], samples[j] = samples[j], samples[i]
		}
	}
	return nil
}

// cellCoset returns the coset interpolation commitment of one cell's values
// plus the coset base point z, so the caller can fold the per-cell pairing
// equation into a single batched check.
func cellCoset(ks *kzg.Settings, fkSettings *fk20.Settings, cosetFFT *fft.Settings, ext *fft.Settings, cellIndex uint64, vals []bls.Fr) (interpCommit bls.G1, z bls.Fr, err error) {
	natural := make([]bls.Fr, len(vals))
	copy(natural, vals)
	if err := utils.ReverseBitOrderFr(natural); err != nil {
		return bls.G1{}, bls.Fr{}, fmt.Errorf("%w: %v", ErrInternalInconsistency, err)
	}

	coeffs, err := cosetFFT.FFTFr(natural, true)
	if err != nil {
		return bls.G1{}, bls.Fr{}, err
	}

	rowIdx, err := utils.BitReverseIndex(cellIndex, fkSettings.TwoK)
	if err != nil {
		return bls.G1{}, bls.Fr{}, err
	}
	z = ext.Roots[rowIdx]

	zInv := z
	zInv.Inverse(&zInv)
	factor := bls.FrOne()
	interp := make(poly.P, len(coeffs))
	for i := range coeffs {
		interp[i].Mul(&coeffs[i], &factor)
		factor.Mul(&factor, &zInv)
	}

	commit, err := ks.Commit(interp)
	if err != nil {
		return bls.G1{}, bls.Fr{}, err
	}
	return commit, z, nil
}

// VerifyCellKZGProofBatch checks many (commitment, cell index, cell, proof)
// entries with a single aggregated pairing check. commitments[i] is the
// commitment the i-th cell/proof pair opens against; the same commitment
// bytes may repeat across entries belonging to the same blob.
func VerifyCellKZGProofBatch(ks *kzg.Settings, fkSettings *fk20.Settings, commitments [][]byte, cellIndices []uint64, cells [][]byte, proofs [][]byte) (bool, error) {
	n := len(cellIndices)
	if len(commitments) != n || len(cells) != n || len(proofs) != n {
		return false, fmt.Errorf("%w: commitments/cellIndices/cells/proofs length mismatch", ErrInvalidArgument)
	}
	if n == 0 {
		return true, nil
	}

	cellSize := fkSettings.CellSize
	cosetScale, err := utils.Log2PowTwo(cellSize)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	cosetFFT, err := fft.NewSettings(cosetScale)
	if err != nil {
		return false, err
	}
	ext, err := extDomain(fkSettings)
	if err != nil {
		return false, err
	}

	commitmentPoints := make([]bls.G1, n)
	proofPoints := make([]bls.G1, n)
	interpCommits := make([]bls.G1, n)
	zs := make([]bls.Fr, n)
	entries := make([]transcript.CellBatchEntry, n)

	for i := 0; i < n; i++ {
		if cellIndices[i] >= fkSettings.TwoK {
			return false, fmt.Errorf("%w: cell index %d", ErrCellIndexOutOfRange, cellIndices[i])
		}
		cp, err := decodeCommitment(commitments[i])
		if err != nil {
			return false, err
		}
		pp, err := decodeProof(proofs[i])
		if err != nil {
			return false, err
		}
		vals, err := decodeCellBytes(cells[i], cellSize)
		if err != nil {
			return false, err
		}

		interpCommit, z, err := cellCoset(ks, fkSettings, cosetFFT, ext, cellIndices[i], vals)
		if err != nil {
			return false, err
		}

		commitmentPoints[i] = cp
		proofPoints[i] = pp
		interpCommits[i] = interpCommit
		zs[i] = z
		entries[i] = transcript.CellBatchEntry{
			CommitmentIndex: uint64(i),
			CellIndex:       cellIndices[i],
			Cell:            vals,
			Proof:           proofs[i],
		}
	}

	rPowers := transcript.ComputeRPowersCellBatch(cellSize, uint64(n), uint64(n), commitments, entries)

	// e(Cᵢ - interpCommitᵢ + zᵢ^cellSize·proofᵢ, g2) == e(proofᵢ, [s^cellSize]₂)
	// per cell; aggregate both sides by rᵢ and check with one pairing.
	lhs := bls.G1Identity()
	proofLincomb := bls.G1Identity()
	for i := 0; i < n; i++ {
		diff := bls.G1Sub(commitmentPoints[i], interpCommits[i])
		zn := bls.FrPow(zs[i], cellSize)
		var rzn bls.Fr
		rzn.Mul(&rPowers[i], &zn)
		term := bls.G1Add(
			bls.G1ScalarMul(diff, rPowers[i]),
			bls.G1ScalarMul(proofPoints[i], rzn),
		)
		lhs = bls.G1Add(lhs, term)
		proofLincomb = bls.G1Add(proofLincomb, bls.G1ScalarMul(proofPoints[i], rPowers[i]))
	}

	if uint64(len(ks.G2Monomial)) <= cellSize {
		return false, fmt.Errorf("%w: setup missing G2 power for cell size %d", ErrInternalInconsistency, cellSize)
	}
	return bls.PairingsEqual(lhs, bls.G2Generator(), proofLincomb, ks.G2Monomial[cellSize])
}
