// Package setup builds kzg.Settings: either by parsing the trusted-setup
// text format produced by the Ethereum KZG ceremony, or, for tests and
// demonstrations only, by deriving an SRS from a fixed non-ceremony secret.
package setup

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eth2030/go-kzg-das/bls"
	"github.com/eth2030/go-kzg-das/fft"
	"github.com/eth2030/go-kzg-das/internal/utils"
	"github.com/eth2030/go-kzg-das/kzg"
)

var (
	ErrInvalidSize     = kzg.ErrInvalidSize
	ErrInvalidEncoding = kzg.ErrInvalidEncoding
	ErrDomainViolation = kzg.ErrDomainViolation
)

const (
	hexCharsPerG1 = 2 * bls.BytesPerG1
	hexCharsPerG2 = 2 * bls.BytesPerG2
)

// Load parses the trusted-setup text format: a line with the decimal field
// count N, a line with the decimal G2 point count, N lines of 96 hex
// characters (G1, compressed, Lagrange-ordered bit-reversal-permuted to
// match blob evaluation order), then that many lines of 192 hex characters
// (G2, compressed, monomial-ordered). The monomial G1 vector is not stored
// in the file; it is recovered from the Lagrange vector by undoing the
// bit-reversal permutation and running a forward FFT over G1, the inverse
// of how the Lagrange vector itself was derived from the monomial one.
func Load(r io.Reader) (*kzg.Settings, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256), 1<<20)

	n, err := readDecimalLine(sc, "field element count")
	if err != nil {
		return nil, err
	}
	numG2, err := readDecimalLine(sc, "G2 point count")
	if err != nil {
		return nil, err
	}
	if !utils.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: field element count must be a power of two", ErrDomainViolation)
	}

	g1LagrangeBRP := make([]bls.G1, n)
	for i := uint64(0); i < n; i++ {
		p, err := readG1Line(sc)
		if err != nil {
			return nil, fmt.Errorf("G1 point %d: %w", i, err)
		}
		g1LagrangeBRP[i] = p
	}

	g2Monomial := make([]bls.G2, numG2)
	for i := uint64(0); i < numG2; i++ {
		p, err := readG2Line(sc)
		if err != nil {
			return nil, fmt.Errorf("G2 point %d: %w", i, err)
		}
		g2Monomial[i] = p
	}

	if sc.Scan() {
		return nil, fmt.Errorf("%w: trailing data after expected %d+%d points", ErrInvalidSize, n, numG2)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	scale, err := utils.Log2PowTwo(n)
	if err != nil {
		return nil, err
	}
	fftSettings, err := fft.NewSettings(scale)
	if err != nil {
		return nil, err
	}

	g1Monomial, err := recoverG1Monomial(fftSettings, g1LagrangeBRP)
	if err != nil {
		return nil, err
	}

	return &kzg.Settings{
		FFT:           fftSettings,
		G1Monomial:    g1Monomial,
		G1LagrangeBRP: g1LagrangeBRP,
		G2Monomial:    g2Monomial,
	}, nil
}

// recoverG1Monomial undoes ReverseBitOrderG1 and runs a forward FFT, the
// exact inverse of the Lagrange vector's own derivation (inverse FFT then
// ReverseBitOrderG1) so that no monomial points need to travel over the
// wire at all.
func recoverG1Monomial(fftSettings *fft.Settings, lagrangeBRP []bls.G1) ([]bls.G1, error) {
	natural := make([]bls.G1, len(lagrangeBRP))
	copy(natural, lagrangeBRP)
	if err := utils.ReverseBitOrderG1(natural); err != nil {
		return nil, err
	}
	return fftSettings.FFTG1(natural, false)
}

func readDecimalLine(sc *bufio.Scanner, what string) (uint64, error) {
	if !sc.Scan() {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidSize, what)
	}
	line := strings.TrimSpace(sc.Text())
	v, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a decimal integer: %v", ErrInvalidEncoding, what, err)
	}
	return v, nil
}

func readG1Line(sc *bufio.Scanner) (bls.G1, error) {
	if !sc.Scan() {
		return bls.G1{}, fmt.Errorf("%w: unexpected end of file", ErrInvalidSize)
	}
	line := strings.TrimSpace(sc.Text())
	if len(line) != hexCharsPerG1 {
		return bls.G1{}, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidSize, hexCharsPerG1, len(line))
	}
	raw, err := hex.DecodeString(line)
	if err != nil {
		return bls.G1{}, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return bls.G1FromCompressed(raw)
}

func readG2Line(sc *bufio.Scanner) (bls.G2, error) {
	if !sc.Scan() {
		return bls.G2{}, fmt.Errorf("%w: unexpected end of file", ErrInvalidSize)
	}
	line := strings.TrimSpace(sc.Text())
	if len(line) != hexCharsPerG2 {
		return bls.G2{}, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidSize, hexCharsPerG2, len(line))
	}
	raw, err := hex.DecodeString(line)
	if err != nil {
		return bls.G2{}, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return bls.G2FromCompressed(raw)
}

// insecureSecret is the fixed, publicly-known non-ceremony secret Insecure
// derives its SRS from, the same test value used to stand in for a trusted
// setup's toxic waste before a real ceremony is available.
var insecureSecret = bls.FrFromUint64(42)

// Insecure builds a kzg.Settings from insecureSecret instead of a genuine
// multi-party ceremony. Callers MUST NOT use this outside of tests: there
// is exactly one secret, and it is public.
func Insecure(n uint64) (*kzg.Settings, error) {
	if !utils.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: field element count must be a power of two", ErrDomainViolation)
	}
	scale, err := utils.Log2PowTwo(n)
	if err != nil {
		return nil, err
	}
	fftSettings, err := fft.NewSettings(scale)
	if err != nil {
		return nil, err
	}

	g1 := bls.G1Generator()
	g2 := bls.G2Generator()

	g1Monomial := make([]bls.G1, n)
	g2Monomial := make([]bls.G2, n+1)
	power := bls.FrOne()
	for i := uint64(0); i < n; i++ {
		g1Monomial[i] = bls.G1ScalarMul(g1, power)
		g2Monomial[i] = bls.G2ScalarMul(g2, power)
		power.Mul(&power, &insecureSecret)
	}
	g2Monomial[n] = bls.G2ScalarMul(g2, power)

	lagrangeCoeffs := make([]bls.G1, n)
	copy(lagrangeCoeffs, g1Monomial)
	lagrangeBRP, err := fftSettings.FFTG1(lagrangeCoeffs, true)
	if err != nil {
		return nil, err
	}
	if err := utils.ReverseBitOrderG1(lagrangeBRP); err != nil {
		return nil, err
	}

	return &kzg.Settings{
		FFT:           fftSettings,
		G1Monomial:    g1Monomial,
		G1LagrangeBRP: lagrangeBRP,
		G2Monomial:    g2Monomial,
	}, nil
}
