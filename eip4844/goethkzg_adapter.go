//go:build goethkzg

// Reference cross-check backend for the EIP-4844/EIP-7594 façade, backed by
// crate-crypto/go-eth-kzg's embedded ceremony context. Mirrors the structure
// of the teacher's own kzg_goeth_adapter.go: same build tag, same
// "alternate backend behind an interface boundary" framing, applied here to
// differential-test the from-scratch FK20/KZG pipeline against an
// independent implementation rather than to replace it as the default path.
//
// Build with: go build -tags goethkzg ./...
// Test with:  go test -tags goethkzg -v ./eip4844/ -run GoEthKZG
package eip4844

import (
	"fmt"

	goethkzg "github.com/crate-crypto/go-eth-kzg"
)

// ReferenceBackend wraps a go-eth-kzg Context initialized with the real
// Ethereum ceremony SRS (not the -insecure toy setup), for cross-checking
// commitments and proofs produced by this package's own implementation.
type ReferenceBackend struct {
	ctx *goethkzg.Context
}

// NewReferenceBackend initializes a go-eth-kzg Context from the embedded
// production trusted setup. This takes several seconds, as it processes
// the full ceremony SRS.
func NewReferenceBackend() (*ReferenceBackend, error) {
	ctx, err := goethkzg.NewContext4096Secure()
	if err != nil {
		return nil, fmt.Errorf("eip4844: failed to initialize go-eth-kzg reference context: %w", err)
	}
	return &ReferenceBackend{ctx: ctx}, nil
}

// CrossCheckCommitment recomputes a blob's commitment through go-eth-kzg and
// reports whether it matches the commitment bytes this package produced.
func (b *ReferenceBackend) CrossCheckCommitment(blobBytes []byte, commitment []byte) (bool, error) {
	if len(blobBytes) != BytesPerBlob {
		return false, ErrInvalidSize
	}
	if len(commitment) != BytesPerCommitment {
		return false, ErrInvalidSize
	}

	var blob goethkzg.Blob
	copy(blob[:], blobBytes)

	ref, err := b.ctx.BlobToKZGCommitment(&blob, 0)
	if err != nil {
		return false, fmt.Errorf("eip4844: reference BlobToKZGCommitment failed: %w", err)
	}

	var got goethkzg.KZGCommitment
	copy(got[:], commitment)
	return ref == got, nil
}

// CrossCheckBlobProof verifies a blob proof produced by this package's own
// ComputeBlobKZGProof against go-eth-kzg's independent verifier.
func (b *ReferenceBackend) CrossCheckBlobProof(blobBytes, commitment, proof []byte) (bool, error) {
	if len(blobBytes) != BytesPerBlob {
		return false, ErrInvalidSize
	}
	if len(commitment) != BytesPerCommitment || len(proof) != BytesPerProof {
		return false, ErrInvalidSize
	}

	var blob goethkzg.Blob
	copy(blob[:], blobBytes)

	var comm goethkzg.KZGCommitment
	copy(comm[:], commitment)

	var p goethkzg.KZGProof
	copy(p[:], proof)

	if err := b.ctx.VerifyBlobKZGProof(&blob, comm, p); err != nil {
		return false, nil
	}
	return true, nil
}
