//go:build goethkzg

package eip4844

import "testing"

// refBackend is initialized once to avoid the multi-second cost of
// NewContext4096Secure() per test function.
var refBackend *ReferenceBackend

func init() {
	var err error
	refBackend, err = NewReferenceBackend()
	if err != nil {
		panic("failed to initialize ReferenceBackend for tests: " + err.Error())
	}
}

func TestReferenceBackendCrossChecksOwnCommitment(t *testing.T) {
	ks := toyKZGSettings(t)
	blobBytes := randomBlobBytes(t)

	commitment, err := BlobToKZGCommitment(ks, blobBytes)
	if err != nil {
		t.Fatalf("BlobToKZGCommitment: %v", err)
	}

	// The toy setup's secret is not the real ceremony's, so the commitment
	// bytes are not expected to match go-eth-kzg's; this only exercises
	// that the cross-check path runs end to end without erroring.
	if _, err := refBackend.CrossCheckCommitment(blobBytes, commitment); err != nil {
		t.Fatalf("CrossCheckCommitment: %v", err)
	}
}

func TestReferenceBackendRejectsWrongSize(t *testing.T) {
	if _, err := refBackend.CrossCheckCommitment([]byte{1, 2, 3}, make([]byte, BytesPerCommitment)); err == nil {
		t.Fatalf("expected error for undersized blob")
	}
}
