// Package ledger holds the bounded declaration window and the unbounded
// chain-root accumulator. The two structures cooperate but stay
// separate: the ring answers "currently retrievable", the accumulator
// answers "provably occurred".
package ledger

import (
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/hashchain"
)

// #region constants
// MaxStoredDeclarations bounds the retained declaration window. Older
// declarations are overwritten; their existence stays provable through
// the chain root only.
const MaxStoredDeclarations = 4

// #endregion constants

// #region declaration
// Declaration is an immutable chained assertion that sets one dimension
// to a new value. Once written it is never mutated, only eventually
// evicted from the ring.
type Declaration struct {
	Index        uint8
	Value        uint64
	Timestamp    int64
	PreviousHash hashchain.Hash
	Signature    [64]byte
	ContentHash  hashchain.Hash
}

// Digest returns the declaration's chained identity.
func (d Declaration) Digest() hashchain.Hash {
	return hashchain.DeclarationDigest(d.Index, d.Value, d.Timestamp, d.PreviousHash, d.ContentHash)
}

// #endregion declaration

// #region ring
// Ring is the fixed-capacity circular declaration window. Count is the
// total number of declarations ever appended; the write cursor is
// Count mod capacity.
type Ring struct {
	Slots [MaxStoredDeclarations]Declaration
	Count uint32
}

// Append writes d into the current slot, overwriting the oldest entry
// once the window is full, and advances the count.
func (r *Ring) Append(d Declaration) {
	r.Slots[r.Count%MaxStoredDeclarations] = d
	r.Count++
}

// Stored returns how many declarations are physically retained.
func (r *Ring) Stored() uint32 {
	if r.Count < MaxStoredDeclarations {
		return r.Count
	}
	return MaxStoredDeclarations
}

// Latest returns the most recent declaration, or false when empty.
func (r *Ring) Latest() (Declaration, bool) {
	if r.Count == 0 {
		return Declaration{}, false
	}
	return r.Slots[(r.Count-1)%MaxStoredDeclarations], true
}

// #endregion ring

// #region window-check
// Window-check error codes, shared with the verification result.
const (
	WindowOK           uint8 = 0
	WindowChainBroken  uint8 = 3
	WindowHashMismatch uint8 = 4
)

// VerifyWindow checks hash linkage within the retained window and that
// currentHash matches the latest stored declaration. When more
// declarations have occurred than are retained, only the retained
// sub-chain's internal linkage is checked; full-history proof relies on
// the chain root, not on re-verification here.
func (r *Ring) VerifyWindow(currentHash hashchain.Hash) uint8 {
	if r.Count == 0 {
		return WindowOK
	}

	stored := r.Stored()
	startIdx := uint32(0)
	if r.Count > MaxStoredDeclarations {
		startIdx = r.Count % MaxStoredDeclarations
	}

	// When the earliest retained declaration is not the first ever, its
	// previous hash cannot be recomputed; take it on faith and check
	// linkage from there.
	expectedPrev := hashchain.ZeroHash
	if stored < r.Count {
		expectedPrev = r.Slots[startIdx].PreviousHash
	}

	for i := uint32(0); i < stored; i++ {
		idx := (startIdx + i) % MaxStoredDeclarations
		d := r.Slots[idx]

		if i > 0 || stored == r.Count {
			if d.PreviousHash != expectedPrev {
				return WindowChainBroken
			}
		}
		expectedPrev = d.Digest()
	}

	last := r.Slots[(r.Count-1)%MaxStoredDeclarations]
	if last.Digest() != currentHash {
		return WindowHashMismatch
	}
	return WindowOK
}

// #endregion window-check

// #region root
// RootAccumulator is the monotonic fold over every declaration ever
// made. It survives ring eviction and is the only evidence for history
// beyond the retention window.
type RootAccumulator struct {
	Root hashchain.Hash
}

// Fold absorbs a new declaration digest at the given running count.
func (a *RootAccumulator) Fold(digest hashchain.Hash, count uint32) {
	a.Root = hashchain.FoldRoot(a.Root, digest, count)
}

// #endregion root
