// Package fft implements the radix-2 decimation-in-time FFT/iFFT used by
// the polynomial engine, the FK20 Toeplitz pipeline, and blob recovery. It
// hand-rolls the butterfly network over both Fr and G1 — the transform
// itself is core business logic, not delegated to gnark-crypto's own
// fr/fft.Domain, which exists for a different consumer (the SNARK prover)
// and is not wired here.
package fft

import (
	"errors"
	"math/big"
	"sync"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/internal/utils"
	"golang.org/x/sync/errgroup"
)

// MaxScale is the largest supported max_scale: the BLS12-381 scalar field
// has 2-adicity 32, so a primitive 2^32-th root of unity exists but scales
// at or above 32 are rejected as a domain violation.
const MaxScale = 31

// parallelThreshold is the minimum half-width at which a butterfly
// recursion level is split across goroutines.
const parallelThreshold = 256

var (
	ErrDomainViolation     = errors.New("fft: max_scale exceeds 31")
	ErrLengthMismatch      = errors.New("fft: input length does not equal max_width")
	ErrNotPowerOfTwo       = errors.New("fft: width is not a power of two")
	ErrRootOfUnityCorrupt  = errors.New("fft: root-of-unity table did not return to one at max_width")
	ErrEmptyTransform      = errors.New("fft: transform width must be positive")
)

// primitiveRootGenerator is the standard multiplicative generator used to
// derive all primitive roots of unity of the BLS12-381 scalar field: 7 is a
// generator of Fr*, and since r-1 is divisible by 2^32, 7^((r-1)/2^32) is a
// primitive 2^32-th root of unity.
var primitiveRootGenerator = bls.FrFromUint64(7)

// Settings holds the forward, reverse, and bit-reversal-permuted root
// tables for one max_scale, plus the max_scale itself.
type Settings struct {
	MaxScale  uint64
	MaxWidth  uint64
	Roots     []bls.Fr // [1, ω, ω^2, ..., ω^(w-1)]
	RootsRev  []bls.Fr // [1, ω^-1, ω^-2, ..., ω^-(w-1)]
	RootsBRP  []bls.Fr // Roots bit-reversal permuted
	Generator bls.Fr   // primitive w-th root of unity ω
}

// NewSettings builds FFT settings for max_scale s (0 <= s <= MaxScale).
func NewSettings(scale uint64) (*Settings, error) {
	if scale > MaxScale {
		return nil, ErrDomainViolation
	}
	width := uint64(1) << scale

	// ω = 7^((r-1)/2^32), then raised to 2^(32-scale) to get the
	// primitive width-th root.
	rMinus1 := new(big.Int).Sub(bls.FrModulus(), big.NewInt(1))
	exp32 := new(big.Int).Rsh(rMinus1, 32)
	var root32 bls.Fr
	root32.Exp(primitiveRootGenerator, exp32)

	reduceExp := uint64(1) << (MaxScale + 1 - scale)
	var gen bls.Fr
	gen.Exp(root32, new(big.Int).SetUint64(reduceExp))

	roots, err := expandRoots(gen, width)
	if err != nil {
		return nil, err
	}

	// rev holds powers of ω^-1: rev[0] = 1, rev[i] = ω^(width-i) for i >= 1.
	rev := make([]bls.Fr, width)
	rev[0] = roots[0]
	for i := uint64(1); i < width; i++ {
		rev[i] = roots[width-i]
	}

	brp := make([]bls.Fr, width)
	copy(brp, roots)
	if width > 1 {
		if err := utils.ReverseBitOrderFr(brp); err != nil {
			return nil, err
		}
	}

	return &Settings{
		MaxScale:  scale,
		MaxWidth:  width,
		Roots:     roots,
		RootsRev:  rev,
		RootsBRP:  brp,
		Generator: gen,
	}, nil
}

// expandRoots produces [1, ω, ω^2, ..., ω^(w-1)] and verifies that walking
// the powers returns to one exactly at position w.
func expandRoots(omega bls.Fr, w uint64) ([]bls.Fr, error) {
	out := make([]bls.Fr, w)
	out[0] = bls.FrOne()
	for i := uint64(1); i < w; i++ {
		out[i].Mul(&out[i-1], &omega)
	}
	var next bls.Fr
	next.Mul(&out[w-1], &omega)
	if !bls.FrEqual(next, bls.FrOne()) {
		return nil, ErrRootOfUnityCorrupt
	}
	return out, nil
}

// FFTFr computes the forward or inverse DFT of values over Fr. len(values)
// must equal s.MaxWidth.
func (s *Settings) FFTFr(values []bls.Fr, inverse bool) ([]bls.Fr, error) {
	n := uint64(len(values))
	if n != s.MaxWidth {
		return nil, ErrLengthMismatch
	}
	if n == 0 {
		return nil, ErrEmptyTransform
	}

	roots := s.Roots
	stride := s.MaxWidth
	if inverse {
		roots = s.RootsRev
	}

	out := make([]bls.Fr, n)
	frFFTRecurse(out, values, roots, 1, stride/n)

	if inverse {
		var nInv bls.Fr
		nInv.SetUint64(n)
		nInv.Inverse(&nInv)
		for i := range out {
			out[i].Mul(&out[i], &nInv)
		}
	}
	return out, nil
}

// frFFTRecurse is the radix-2 DIT butterfly. `stride` indexes into the
// root table at `stride`-increments so a single precomputed table of width
// MaxWidth services every recursion depth.
func frFFTRecurse(out, in []bls.Fr, roots []bls.Fr, rootStride, baseStride uint64) {
	n := uint64(len(in))
	if n <= 4 {
		frFFTDirect(out, in, roots, baseStride*rootStride)
		return
	}

	half := n / 2
	even := make([]bls.Fr, half)
	odd := make([]bls.Fr, half)
	for i := uint64(0); i < half; i++ {
		even[i] = in[2*i]
		odd[i] = in[2*i+1]
	}

	evenOut := make([]bls.Fr, half)
	oddOut := make([]bls.Fr, half)

	if half >= parallelThreshold {
		var g errgroup.Group
		g.Go(func() error {
			frFFTRecurse(evenOut, even, roots, rootStride*2, baseStride)
			return nil
		})
		g.Go(func() error {
			frFFTRecurse(oddOut, odd, roots, rootStride*2, baseStride)
			return nil
		})
		_ = g.Wait()
	} else {
		frFFTRecurse(evenOut, even, roots, rootStride*2, baseStride)
		frFFTRecurse(oddOut, odd, roots, rootStride*2, baseStride)
	}

	for i := uint64(0); i < half; i++ {
		var t bls.Fr
		t.Mul(&oddOut[i], &roots[i*rootStride*baseStride%uint64(len(roots))])
		var lo, hi bls.Fr
		lo.Add(&evenOut[i], &t)
		hi.Sub(&evenOut[i], &t)
		out[i] = lo
		out[i+half] = hi
	}
}

// frFFTDirect is the O(n^2) base case used for n <= 4.
func frFFTDirect(out, in []bls.Fr, roots []bls.Fr, stride uint64) {
	n := uint64(len(in))
	tableLen := uint64(len(roots))
	for k := uint64(0); k < n; k++ {
		var acc bls.Fr
		for j := uint64(0); j < n; j++ {
			idx := (j * k * stride) % tableLen
			var term bls.Fr
			term.Mul(&in[j], &roots[idx])
			acc.Add(&acc, &term)
		}
		out[k] = acc
	}
}

// FFTG1 is the G1 analogue of FFTFr, used by the FK20 Toeplitz setup.
func (s *Settings) FFTG1(points []bls.G1, inverse bool) ([]bls.G1, error) {
	n := uint64(len(points))
	if n != s.MaxWidth {
		return nil, ErrLengthMismatch
	}
	if n == 0 {
		return nil, ErrEmptyTransform
	}

	roots := s.Roots
	if inverse {
		roots = s.RootsRev
	}

	out := make([]bls.G1, n)
	g1FFTRecurse(out, points, roots, 1, s.MaxWidth/n)

	if inverse {
		var nInv bls.Fr
		nInv.SetUint64(n)
		nInv.Inverse(&nInv)
		var wg sync.WaitGroup
		for i := range out {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				out[i] = bls.G1ScalarMul(out[i], nInv)
			}()
		}
		wg.Wait()
	}
	return out, nil
}

func g1FFTRecurse(out, in []bls.G1, roots []bls.Fr, rootStride, baseStride uint64) {
	n := uint64(len(in))
	if n <= 4 {
		g1FFTDirect(out, in, roots, baseStride*rootStride)
		return
	}

	half := n / 2
	even := make([]bls.G1, half)
	odd := make([]bls.G1, half)
	for i := uint64(0); i < half; i++ {
		even[i] = in[2*i]
		odd[i] = in[2*i+1]
	}

	evenOut := make([]bls.G1, half)
	oddOut := make([]bls.G1, half)

	if half >= parallelThreshold {
		var g errgroup.Group
		g.Go(func() error {
			g1FFTRecurse(evenOut, even, roots, rootStride*2, baseStride)
			return nil
		})
		g.Go(func() error {
			g1FFTRecurse(oddOut, odd, roots, rootStride*2, baseStride)
			return nil
		})
		_ = g.Wait()
	} else {
		g1FFTRecurse(evenOut, even, roots, rootStride*2, baseStride)
		g1FFTRecurse(oddOut, odd, roots, rootStride*2, baseStride)
	}

	tableLen := uint64(len(roots))
	for i := uint64(0); i < half; i++ {
		idx := (i * rootStride * baseStride) % tableLen
		t := bls.G1ScalarMul(oddOut[i], roots[idx])
		out[i] = bls.G1Add(evenOut[i], t)
		out[i+half] = bls.G1Sub(evenOut[i], t)
	}
}

func g1FFTDirect(out, in []bls.G1, roots []bls.Fr, stride uint64) {
	n := uint64(len(in))
	tableLen := uint64(len(roots))
	for k := uint64(0); k < n; k++ {
		acc := bls.G1Identity()
		for j := uint64(0); j < n; j++ {
			idx := (j * k * stride) % tableLen
			term := bls.G1ScalarMul(in[j], roots[idx])
			acc = bls.G1Add(acc, term)
		}
		out[k] = acc
	}
}
