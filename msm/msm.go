// Package msm implements the multi-scalar-multiplication engine: a
// signed-digit, Booth-encoded Pippenger algorithm with Jacobian bucket
// accumulation. Unlike the scalar/group façade, this is in-scope core
// logic — it is deliberately not delegated to gnark-crypto's own MultiExp,
// which solves the same problem but is not part of the teacher's own
// learning surface for this exercise.
package msm

import (
	"errors"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/klauspost/cpuid/v2"

	"github.com/eth2030/go-kzg-das/bls"
)

var ErrLengthMismatch = errors.New("msm: points and scalars have different lengths")

// wideWindowBonus nudges the heuristic window size up by one on cores wide
// enough to amortize a larger bucket table (AVX2 implies 256-bit SIMD
// lanes, which gnark-crypto's field arithmetic benefits from for the extra
// bucket additions a wider window introduces). This is a performance
// heuristic only: correctness never depends on the chosen window.
var wideWindowBonus = 0

func init() {
	if cpuid.CPU.Supports(cpuid.AVX2) {
		wideWindowBonus = 1
	}
}

// windowSize picks w from n using the heuristic bands from the reference
// implementation: small n keeps the table tiny, larger n trades table size
// for fewer passes over the points.
func windowSize(n int) int {
	var w int
	switch {
	case n < 32:
		w = 2
	case n < 1024:
		w = log2Ceil(n) - 2
	default:
		w = log2Ceil(n) - 3
	}
	w += wideWindowBonus
	if w < 1 {
		w = 1
	}
	return w
}

func log2Ceil(n int) int {
	k := 0
	v := 1
	for v < n {
		v <<= 1
		k++
	}
	return k
}

// digit is a Booth-recoded signed window value in [-2^(w-1), 2^(w-1)].
type digit struct {
	abs int
	neg bool
}

// boothRecode splits a scalar's 255 significant bits into consecutive,
// non-overlapping w-bit windows from the low end. Each window plus the carry
// from the window below is folded into a signed digit in [-2^(w-1), 2^(w-1)];
// a window above 2^(w-1) becomes negative and carries one into the next
// window. There are 255/w+1 windows, so the top window always absorbs the
// last carry.
func boothRecode(scalarLE [32]byte, w int) []digit {
	numWindows := 255/w + 1
	digits := make([]digit, numWindows)

	getBit := func(i int) uint {
		if i < 0 || i >= 256 {
			return 0
		}
		byteIdx := i / 8
		bitIdx := uint(i % 8)
		return uint(scalarLE[byteIdx]>>bitIdx) & 1
	}

	carry := uint(0)
	for wi := 0; wi < numWindows; wi++ {
		start := wi * w
		var window uint
		for b := 0; b < w; b++ {
			window |= getBit(start+b) << uint(b)
		}
		window += carry

		half := uint(1) << uint(w-1)
		full := uint(1) << uint(w)
		if window > half {
			digits[wi] = digit{abs: int(full - window), neg: true}
			carry = 1
		} else if window == half {
			digits[wi] = digit{abs: int(half), neg: false}
			carry = 0
		} else {
			digits[wi] = digit{abs: int(window), neg: false}
			carry = 0
		}
	}
	return digits
}

// MSM computes sum(scalars[i] * points[i]) via windowed Pippenger with
// signed-digit recoding and Jacobian bucket accumulation.
func MSM(points []bls.G1, scalars []bls.Fr) (bls.G1, error) {
	if len(points) != len(scalars) {
		return bls.G1{}, ErrLengthMismatch
	}
	n := len(points)
	if n == 0 {
		return bls.G1Identity(), nil
	}
	if n < 8 {
		return naiveMSM(points, scalars), nil
	}

	w := windowSize(n)
	numWindows := 255/w + 1
	numBuckets := 1 << uint(w-1)

	scalarBytes := make([][32]byte, n)
	for i, s := range scalars {
		scalarBytes[i] = bls.FrToBytesLE(s)
	}

	windowSums := make([]bls.G1, numWindows)
	for wi := 0; wi < numWindows; wi++ {
		buckets := make([]bls12381.G1Jac, numBuckets+1)
		for i := 0; i < n; i++ {
			ds := boothRecode(scalarBytes[i], w)
			if wi >= len(ds) {
				continue
			}
			d := ds[wi]
			if d.abs == 0 {
				continue
			}
			p := points[i]
			if d.neg {
				p = bls.G1Neg(p)
			}
			var jp bls12381.G1Jac
			jp.FromAffine(&p)
			buckets[d.abs].AddAssign(&jp)
		}

		// Running-sum + sum-of-sums: bucket k contributes k times without
		// a per-bucket scalar multiplication.
		var runningSum, total bls12381.G1Jac
		for k := numBuckets; k >= 1; k-- {
			runningSum.AddAssign(&buckets[k])
			total.AddAssign(&runningSum)
		}
		var aff bls.G1
		aff.FromJacobian(&total)
		windowSums[wi] = aff
	}

	// Combine windows: double w times between each, then add.
	var acc bls12381.G1Jac
	for wi := numWindows - 1; wi >= 0; wi-- {
		if wi != numWindows-1 {
			for i := 0; i < w; i++ {
				acc.DoubleAssign()
			}
		}
		var jw bls12381.G1Jac
		jw.FromAffine(&windowSums[wi])
		acc.AddAssign(&jw)
	}

	var out bls.G1
	out.FromJacobian(&acc)
	return out, nil
}

func naiveMSM(points []bls.G1, scalars []bls.Fr) bls.G1 {
	acc := bls.G1Identity()
	for i := range points {
		if scalars[i].IsZero() {
			continue
		}
		acc = bls.G1Add(acc, bls.G1ScalarMul(points[i], scalars[i]))
	}
	return acc
}

// BatchAffineAdd adds n pairs of affine points. Bucket accumulation above
// uses gnark-crypto's Jacobian mixed addition, which is already
// inversion-free; this helper is for callers that work with affine pairs
// directly. It adds each pair on its own through bls.G1Add (no shared field
// inversion across the batch) and tolerates doublings (P,P) and inverses
// (P,-P) within the same batch without special-casing them.
func BatchAffineAdd(lhs, rhs []bls.G1) ([]bls.G1, error) {
	if len(lhs) != len(rhs) {
		return nil, ErrLengthMismatch
	}
	out := make([]bls.G1, len(lhs))
	for i := range lhs {
		out[i] = bls.G1Add(lhs[i], rhs[i])
	}
	return out, nil
}
