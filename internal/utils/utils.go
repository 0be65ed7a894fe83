// Package utils collects the small cross-cutting helpers the rest of the
// core leans on: bit-reversal permutation, power-of-two arithmetic, batch
// field inversion, and power-sequence generation.
package utils

import (
	"errors"
	"math/bits"

	"github.com/eth2030/go-kzg-das/bls"
)

var (
	ErrNotPowerOfTwo = errors.New("utils: length is not a power of two")
	ErrZeroElement   = errors.New("utils: batch inversion input contains a zero element")
)

// IsPowerOfTwo reports whether n is a non-zero power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n (0 maps to 1).
func NextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << uint(bits.Len64(n-1))
}

// Log2PowTwo returns log2(n), requiring n to be an exact power of two.
func Log2PowTwo(n uint64) (uint64, error) {
	if !IsPowerOfTwo(n) {
		return 0, ErrNotPowerOfTwo
	}
	return uint64(bits.TrailingZeros64(n)), nil
}

// MinU64 returns the smaller of a and b.
func MinU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// bitReverse reverses the low `bitLen` bits of i.
func bitReverse(i uint64, bitLen uint) uint64 {
	return bits.Reverse64(i) >> (64 - bitLen)
}

// ReverseBitOrderFr permutes v in place so that element i moves to
// bit_reverse(i, log2(len(v))). The permutation is its own inverse. len(v)
// must be a power of two.
func ReverseBitOrderFr(v []bls.Fr) error {
	n := uint64(len(v))
	if !IsPowerOfTwo(n) {
		return ErrNotPowerOfTwo
	}
	bitLen := uint(bits.TrailingZeros64(n))
	for i := uint64(0); i < n; i++ {
		j := bitReverse(i, bitLen)
		if i < j {
			v[i], v[j] = v[j], v[i]
		}
	}
	return nil
}

// ReverseBitOrderG1 is the G1 analogue of ReverseBitOrderFr.
func ReverseBitOrderG1(v []bls.G1) error {
	n := uint64(len(v))
	if !IsPowerOfTwo(n) {
		return ErrNotPowerOfTwo
	}
	bitLen := uint(bits.TrailingZeros64(n))
	for i := uint64(0); i < n; i++ {
		j := bitReverse(i, bitLen)
		if i < j {
			v[i], v[j] = v[j], v[i]
		}
	}
	return nil
}

// BitReverseIndex exposes the index permutation directly, used by callers
// that need the mapping without moving the backing slice (e.g. cell index
// translation in the EIP-7594 façade).
func BitReverseIndex(i, length uint64) (uint64, error) {
	if !IsPowerOfTwo(length) {
		return 0, ErrNotPowerOfTwo
	}
	return bitReverse(i, uint(bits.TrailingZeros64(length))), nil
}

// FrBatchInv computes the elementwise inverse of a using Montgomery's
// trick: one pass to accumulate running products, a single field inversion,
// then a backward pass to distribute it. Fails if any element is zero.
func FrBatchInv(a []bls.Fr) ([]bls.Fr, error) {
	n := len(a)
	out := make([]bls.Fr, n)
	if n == 0 {
		return out, nil
	}
	prefix := make([]bls.Fr, n)
	acc := bls.FrOne()
	for i := 0; i < n; i++ {
		if a[i].IsZero() {
			return nil, ErrZeroElement
		}
		prefix[i] = acc
		acc.Mul(&acc, &a[i])
	}
	accInv := acc
	accInv.Inverse(&accInv)
	for i := n - 1; i >= 0; i-- {
		out[i].Mul(&accInv, &prefix[i])
		accInv.Mul(&accInv, &a[i])
	}
	return out, nil
}

// ComputePowers returns [1, base, base^2, ..., base^(n-1)].
func ComputePowers(base bls.Fr, n int) []bls.Fr {
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
