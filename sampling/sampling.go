// Package sampling implements the deterministic node-to-cell assignment
// used to decide which data-availability cells a given node custodies,
// independent of any particular gossip or storage layer. The selection
// itself is the reusable, pure part of PeerDAS column sampling; actually
// fetching, scoring or tracking those cells is a networking concern this
// module does not take on.
package sampling

import (
	"encoding/binary"
	"sort"

	"golang.org/x/crypto/sha3"
)

// CustodyCellIndices deterministically selects count distinct cell indices
// in [0, totalCells) for nodeID, using a keccak256 hash chain seeded by
// (nodeID, totalCells): the same construction PeerDAS uses to pick which
// columns a validator samples each slot, applied here to FK20 cell indices
// instead of beacon-chain columns.
//
// The result is sorted ascending. count is clamped to totalCells.
func CustodyCellIndices(nodeID [32]byte, totalCells int, count int) []uint64 {
	if count <= 0 || totalCells <= 0 {
		return nil
	}
	if count > totalCells {
		count = totalCells
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(nodeID[:])
	var totalBuf [8]byte
	binary.LittleEndian.PutUint64(totalBuf[:], uint64(totalCells))
	h.Write(totalBuf[:])
	seed := h.Sum(nil)

	seen := make(map[uint64]bool, count)
	result := make([]uint64, 0, count)

	for counter := uint64(0); len(result) < count; counter++ {
		sh := sha3.NewLegacyKeccak256()
		sh.Write(seed)
		var cBuf [8]byte
		binary.LittleEndian.PutUint64(cBuf[:], counter)
		sh.Write(cBuf[:])
		digest := sh.Sum(nil)

		val := binary.LittleEndian.Uint64(digest[:8])
		idx := val % uint64(totalCells)

		if !seen[idx] {
			seen[idx] = true
			result = append(result, idx)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
