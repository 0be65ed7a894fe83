// Package fk20 implements the FK20 / Toeplitz-matrix batched proof
// generation: given a blob's coefficient-form polynomial, it produces all
// CELLS_PER_EXT_BLOB quotient commitments in O(N log N) time instead of
// one MSM per cell.
package fk20

import (
	"fmt"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/fft"
	"github.com/eth2030/go-kzg-das/internal/utils"
	"github.com/eth2030/go-kzg-das/kzg"
	"github.com/eth2030/go-kzg-das/msm"
)

var ErrInvalidArgument = kzg.ErrInvalidArgument

// Settings holds the column-wise Toeplitz FFT matrix built once from a
// KZG setup's monomial G1 vector.
type Settings struct {
	CellSize uint64 // k in the spec's F.1-6 description is N/CellSize
	N        uint64
	K        uint64 // N / CellSize
	TwoK     uint64
	// XExtFFTColumns[row][col] for row in [0,2k), col in [0,CellSize).
	XExtFFTColumns [][]bls.G1
	ExtFFT         *fft.Settings // FFT settings of width 2k
}

// NewSettings precomputes the Toeplitz matrix (toeplitz_part_1) from the
// KZG setup's monomial G1 vector.
func NewSettings(kzgSettings *kzg.Settings, cellSize uint64) (*Settings, error) {
	n := kzgSettings.N()
	if cellSize == 0 || n%cellSize != 0 {
		return nil, fmt.Errorf("%w: cell size must divide N", ErrInvalidArgument)
	}
	k := n / cellSize
	twoK := 2 * k
	scale, err := utils.Log2PowTwo(twoK)
	if err != nil {
		return nil, err
	}
	extFFT, err := fft.NewSettings(scale)
	if err != nil {
		return nil, err
	}

	columns := make([][]bls.G1, twoK)
	for row := range columns {
		columns[row] = make([]bls.G1, cellSize)
	}

	for i := uint64(0); i < cellSize; i++ {
		// x[j] = G1Monomial[n-1-i-(j+1)*cellSize] for j in [0,k-2]; x[k-1]
		// is the point at infinity (both the Toeplitz vector's required
		// trailing zero and the zero-padding toeplitz_part_1 needs before
		// the width-2k FFT, so the rest of x is left at identity too).
		x := make([]bls.G1, twoK)
		identity := bls.G1Identity()
		for j := range x {
			x[j] = identity
		}
		for j := uint64(0); j+1 < k; j++ {
			idx := n - 1 - i - (j+1)*cellSize
			x[j] = kzgSettings.G1Monomial[idx]
		}
		xHat, err := extFFT.FFTG1(x, false)
		if err != nil {
			return nil, err
		}
		for row := uint64(0); row < twoK; row++ {
			columns[row][i] = xHat[row]
		}
	}

	return &Settings{
		CellSize:       cellSize,
		N:              n,
		K:              k,
		TwoK:           twoK,
		XExtFFTColumns: columns,
		ExtFFT:         extFFT,
	}, nil
}

// toeplitzCoeffsStride builds the length-2k Toeplitz coefficient vector
// t[i] for column offset i, reading coeffs (the N-length monomial
// polynomial) with stride CellSize. Indices 1..K+1 are the zero block
// that separates the two Toeplitz diagonals; only the first N entries of
// coeffs are ever read.
func (s *Settings) toeplitzCoeffsStride(coeffs []bls.Fr, offset uint64) []bls.Fr {
	out := make([]bls.Fr, s.TwoK)
	out[0] = coeffs[s.N-1-offset]

	for idx := uint64(1); idx <= s.K+1 && idx < s.TwoK; idx++ {
		out[idx] = bls.FrZero()
	}

	j := 2*s.CellSize - offset - 1
	for idx := s.K + 2; idx < s.TwoK; idx++ {
		out[idx] = coeffs[j]
		j += s.CellSize
	}
	return out
}

// ComputeCellProofs runs the full proof-time procedure on the blob's N
// coefficients: build per-column Toeplitz vectors, FFT, combine via one
// MSM per extended-domain row, inverse-FFT, zero the upper half (indices
// [K, 2K)), FFT again, and bit-reverse to canonical cell order.
func (s *Settings) ComputeCellProofs(blobCoeffs []bls.Fr) ([]bls.G1, error) {
	if uint64(len(blobCoeffs)) != s.N {
		return nil, fmt.Errorf("%w: polynomial length must equal N", ErrInvalidArgument)
	}

	// Column-wise FFT of each Toeplitz coefficient vector.
	colFFT := make([][]bls.Fr, s.CellSize)
	for i := uint64(0); i < s.CellSize; i++ {
		t := s.toeplitzCoeffsStride(blobCoeffs, i)
		tHat, err := s.ExtFFT.FFTFr(t, false)
		if err != nil {
			return nil, err
		}
		colFFT[i] = tHat
	}

	hExtFFT := make([]bls.G1, s.TwoK)
	for row := uint64(0); row < s.TwoK; row++ {
		scalars := make([]bls.Fr, s.CellSize)
		for i := uint64(0); i < s.CellSize; i++ {
			scalars[i] = colFFT[i][row]
		}
		acc, err := msm.MSM(s.XExtFFTColumns[row], scalars)
		if err != nil {
			return nil, err
		}
		hExtFFT[row] = acc
	}

	h, err := s.ExtFFT.FFTG1(hExtFFT, true)
	if err != nil {
		return nil, err
	}
	identity := bls.G1Identity()
	for i := s.K; i < s.TwoK; i++ {
		h[i] = identity
	}
	proofsExt, err := s.ExtFFT.FFTG1(h, false)
	if err != nil {
		return nil, err
	}
	if err := utils.ReverseBitOrderG1(proofsExt); err != nil {
		return nil, err
	}
	return proofsExt, nil
}

// ComputeCellEvaluations evaluates the (zero-padded to 2N) blob polynomial
// over the extended domain, returning cell evaluations in canonical
// (bit-reversed) cell index order.
func (s *Settings) ComputeCellEvaluations(blobCoeffs []bls.Fr) ([]bls.Fr, error) {
	padded := make([]bls.Fr, 2*s.N)
	copy(padded, blobCoeffs)
	evals, err := s.ExtFFT2N(padded)
	if err != nil {
		return nil, err
	}
	if err := utils.ReverseBitOrderFr(evals); err != nil {
		return nil, err
	}
	return evals, nil
}

// ExtFFT2N runs the forward FFT over the full 2N-wide extended domain
// (distinct from ExtFFT, which is sized 2k for the Toeplitz columns).
func (s *Settings) ExtFFT2N(padded []bls.Fr) ([]bls.Fr, error) {
	scale, err := utils.Log2PowTwo(uint64(len(padded)))
	if err != nil {
		return nil, err
	}
	settings, err := fft.NewSettings(scale)
	if err != nil {
		return nil, err
	}
	return settings.FFTFr(padded, false)
}
