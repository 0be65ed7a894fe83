//go:build blst

// Alternative BLS12-381 backend for the scalar/group façade, backed by the
// supranational/blst C library via CGO. Mirrors the structure the teacher's
// own bls_blst_adapter.go uses for its signature backend: same build tag,
// same "drop-in for the pure-Go path" framing, applied here to the KZG
// group arithmetic instead of signature aggregation.
//
// Build with: go build -tags blst ./...
package bls

import (
	"errors"

	blst "github.com/supranational/blst/bindings/go"
)

// ErrBlstInvalidPoint mirrors ErrInvalidPoint for the blst code path so
// callers see the same sentinel regardless of build tag.
var ErrBlstInvalidPoint = errors.New("bls/blst: point encoding is invalid or not in subgroup")

// g1FromBlst and g1ToBlst convert between this package's gnark-crypto-backed
// G1 type and blst's P1Affine, so call sites needing blst's faster batch
// verification can interop without threading a second point type through
// the rest of the core.
func g1FromBlst(p *blst.P1Affine) (G1, error) {
	b := p.Compress()
	return G1FromCompressed(b)
}

func g1ToBlst(p G1) (*blst.P1Affine, error) {
	b := G1ToCompressed(p)
	out := new(blst.P1Affine)
	if out.Uncompress(b[:]) == nil {
		return nil, ErrBlstInvalidPoint
	}
	return out, nil
}

// BlstG1ScalarMul performs scalar multiplication through blst's assembly
// implementation, for callers that have opted into the blst build tag for
// its throughput characteristics on large batches.
func BlstG1ScalarMul(p G1, scalarLE32 []byte) (G1, error) {
	bp, err := g1ToBlst(p)
	if err != nil {
		return G1{}, err
	}
	var sc blst.Scalar
	sc.FromLEndian(scalarLE32)
	res := new(blst.P1).FromAffine(bp).Mult(&sc)
	aff := res.ToAffine()
	return g1FromBlst(aff)
}
