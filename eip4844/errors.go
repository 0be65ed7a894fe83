package eip4844

import "github.com/eth2030/go-kzg-das/kzg"

// Re-exported so callers of this façade never need to import kzg directly
// just to compare error kinds.
var (
	ErrInvalidEncoding       = kzg.ErrInvalidEncoding
	ErrInvalidSize           = kzg.ErrInvalidSize
	ErrInvalidArgument       = kzg.ErrInvalidArgument
	ErrNotEnoughData         = kzg.ErrNotEnoughData
	ErrInternalInconsistency = kzg.ErrInternalInconsistency
)
