// Package bls is a thin façade over the BLS12-381 scalar field and the two
// source groups, backed by gnark-crypto. It owns exactly the boundary
// decisions the rest of the core depends on — canonical vs. reduced byte
// decoding, subgroup checks, and the single pairing predicate used by KZG
// verification — and delegates every arithmetic operation to gnark-crypto
// rather than reimplementing field or curve math.
package bls

import (
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Byte sizes of the wire encodings used throughout the core.
const (
	BytesPerFieldElement = 32
	BytesPerG1           = 48
	BytesPerG2           = 96
)

var (
	ErrInvalidScalar = errors.New("bls: scalar encoding is not canonical")
	ErrInvalidPoint  = errors.New("bls: point encoding is invalid or not in subgroup")
)

// Fr is the BLS12-381 scalar field element type. It is a plain alias for
// gnark-crypto's representation so that callers can use fr.Element methods
// directly where this façade does not add a boundary concern.
type Fr = fr.Element

// FrModulus returns the scalar field modulus r.
func FrModulus() *big.Int {
	return fr.Modulus()
}

// FrZero and FrOne return the additive and multiplicative identities.
func FrZero() Fr { var z Fr; z.SetZero(); return z }
func FrOne() Fr  { var z Fr; z.SetOne(); return z }

// FrFromUint64 builds a scalar from a small non-negative integer.
func FrFromUint64(v uint64) Fr {
	var z Fr
	z.SetUint64(v)
	return z
}

// FrRandom draws a uniformly random scalar. Test/demo use only.
func FrRandom() (Fr, error) {
	var z Fr
	_, err := z.SetRandom()
	return z, err
}

// FrFromCanonicalBytes decodes a 32-byte big-endian scalar, rejecting any
// encoding whose integer value is >= the field modulus.
func FrFromCanonicalBytes(b []byte) (Fr, error) {
	var z Fr
	if len(b) != BytesPerFieldElement {
		return z, ErrInvalidScalar
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(fr.Modulus()) >= 0 {
		return z, ErrInvalidScalar
	}
	z.SetBigInt(v)
	return z, nil
}

// FrFromBytesUnchecked decodes a 32-byte big-endian value and reduces it
// modulo the field order instead of rejecting non-canonical encodings.
func FrFromBytesUnchecked(b []byte) (Fr, error) {
	var z Fr
	if len(b) != BytesPerFieldElement {
		return z, ErrInvalidScalar
	}
	v := new(big.Int).SetBytes(b)
	v.Mod(v, fr.Modulus())
	z.SetBigInt(v)
	return z, nil
}

// FrToBytes encodes a scalar to its canonical 32-byte big-endian form.
func FrToBytes(x Fr) [BytesPerFieldElement]byte {
	var out [BytesPerFieldElement]byte
	b := x.Bytes()
	copy(out[:], b[:])
	return out
}

// FrToBytesLE encodes a scalar to 32 little-endian bytes, the form the MSM
// engine's Booth recoder reads its windows from.
func FrToBytesLE(x Fr) [BytesPerFieldElement]byte {
	be := FrToBytes(x)
	var le [BytesPerFieldElement]byte
	for i := range be {
		le[i] = be[BytesPerFieldElement-1-i]
	}
	return le
}

// FrEqual is a thin readability wrapper around fr.Element.Equal.
func FrEqual(a, b Fr) bool { return a.Equal(&b) }

// FrPow computes x^n via gnark-crypto's square-and-multiply exponentiation.
func FrPow(x Fr, n uint64) Fr {
	var z Fr
	z.Exp(x, new(big.Int).SetUint64(n))
	return z
}

// G1, G2 are affine points on the two source subgroups. Working
// accumulation happens in Jacobian coordinates internally; callers of this
// façade only ever see affine points, matching the wire encoding.
type G1 = bls12381.G1Affine
type G2 = bls12381.G2Affine

// GT is the pairing target group element.
type GT = bls12381.GT

var (
	g1Gen           G1
	g2Gen           G2
	generatorsReady bool
)

func ensureGenerators() {
	if generatorsReady {
		return
	}
	_, _, a1, a2 := bls12381.Generators()
	g1Gen, g2Gen = a1, a2
	generatorsReady = true
}

// G1Generator, G2Generator return the standard generators of each subgroup.
func G1Generator() G1 { ensureGenerators(); return g1Gen }
func G2Generator() G2 { ensureGenerators(); return g2Gen }

// G1Identity, G2Identity return the neutral element of each subgroup.
func G1Identity() G1 {
	var p G1
	p.X.SetZero()
	p.Y.SetZero()
	return p
}

func G2Identity() G2 {
	var p G2
	p.X.SetZero()
	p.Y.SetZero()
	return p
}

// G1IsInfinity reports whether p is the neutral element.
func G1IsInfinity(p G1) bool { return p.IsInfinity() }
func G2IsInfinity(p G2) bool { return p.IsInfinity() }

// G1Add, G1Sub, G1Neg, G1Double perform group operations by lifting to
// Jacobian coordinates, matching gnark-crypto's recommended usage pattern
// for repeated arithmetic.
func G1Add(a, b G1) G1 {
	var ja, jb, jr bls12381.G1Jac
	ja.FromAffine(&a)
	jb.FromAffine(&b)
	jr.Set(&ja).AddAssign(&jb)
	var out G1
	out.FromJacobian(&jr)
	return out
}

func G1Neg(a G1) G1 {
	var out G1
	out.Neg(&a)
	return out
}

func G1Sub(a, b G1) G1 {
	return G1Add(a, G1Neg(b))
}

func G1Double(a G1) G1 {
	var ja, jr bls12381.G1Jac
	ja.FromAffine(&a)
	jr.Set(&ja).DoubleAssign()
	var out G1
	out.FromJacobian(&jr)
	return out
}

// G1ScalarMul computes s*P using gnark-crypto's constant-time scalar
// multiplication.
func G1ScalarMul(p G1, s Fr) G1 {
	var bi big.Int
	s.BigInt(&bi)
	var jr bls12381.G1Jac
	jr.ScalarMultiplication(&p, &bi)
	var out G1
	out.FromJacobian(&jr)
	return out
}

func G2Add(a, b G2) G2 {
	var ja, jb, jr bls12381.G2Jac
	ja.FromAffine(&a)
	jb.FromAffine(&b)
	jr.Set(&ja).AddAssign(&jb)
	var out G2
	out.FromJacobian(&jr)
	return out
}

func G2Neg(a G2) G2 {
	var out G2
	out.Neg(&a)
	return out
}

func G2Sub(a, b G2) G2 {
	return G2Add(a, G2Neg(b))
}

func G2ScalarMul(p G2, s Fr) G2 {
	var bi big.Int
	s.BigInt(&bi)
	var jr bls12381.G2Jac
	jr.ScalarMultiplication(&p, &bi)
	var out G2
	out.FromJacobian(&jr)
	return out
}

// G1FromCompressed decodes a 48-byte compressed G1 point, failing on
// malformed encodings and on points outside the correct subgroup.
func G1FromCompressed(b []byte) (G1, error) {
	var p G1
	if len(b) != BytesPerG1 {
		return p, ErrInvalidPoint
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, ErrInvalidPoint
	}
	if !p.IsInfinity() && !p.IsInSubGroup() {
		return p, ErrInvalidPoint
	}
	return p, nil
}

// G2FromCompressed is the G2 analogue of G1FromCompressed.
func G2FromCompressed(b []byte) (G2, error) {
	var p G2
	if len(b) != BytesPerG2 {
		return p, ErrInvalidPoint
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, ErrInvalidPoint
	}
	if !p.IsInfinity() && !p.IsInSubGroup() {
		return p, ErrInvalidPoint
	}
	return p, nil
}

// G1ToCompressed, G2ToCompressed serialize a point to its compressed wire
// form (gnark-crypto already uses the ZCash-style flag-byte convention that
// the EIP-4844 wire format relies on).
func G1ToCompressed(p G1) [BytesPerG1]byte { return p.Bytes() }
func G2ToCompressed(p G2) [BytesPerG2]byte { return p.Bytes() }

// PairingsEqual evaluates e(a1,a2) == e(b1,b2) as a single product-of-
// pairings check with b1 negated, so the product must equal one. This is
// the one pairing predicate the rest of the core ever calls.
func PairingsEqual(a1 G1, a2 G2, b1 G1, b2 G2) (bool, error) {
	negB1 := G1Neg(b1)
	return bls12381.PairingCheck([]G1{a1, negB1}, []G2{a2, b2})
}
