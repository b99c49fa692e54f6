package identity

import (
	"encoding/binary"
	"fmt"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/hashchain"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/ledger"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/provenance"
)

// #region message
// DeclarationMessage builds the canonical bytes the owner must sign for
// a declaration at the record's current chain position:
// owner || dimensionIndex || newValue (8-byte LE) || content || currentHash.
// Binding currentHash makes each signature replay-resistant: it is only
// valid at one chain position.
func (r *Record) DeclarationMessage(dimensionIndex uint8, newValue uint64, content string) []byte {
	message := make([]byte, 0, 73+len(content))
	message = append(message, r.Owner[:]...)
	message = append(message, dimensionIndex)
	message = binary.LittleEndian.AppendUint64(message, newValue)
	message = append(message, content...)
	message = append(message, r.CurrentHash[:]...)
	return message
}

// #endregion message

// #region declare
// Declare records a signed declaration that snaps one dimension's
// weight (and self-model) to a new value and extends the hash chain.
// All preconditions are validated before the first mutating write, so a
// failed call leaves the record untouched.
func (r *Record) Declare(dimensionIndex uint8, newValue uint64, content string, signature [64]byte, host provenance.Context, clock Clock) (DeclarationRecorded, error) {
	// Rate limit: at least two slots since the previous declaration,
	// unless this is the very first.
	if r.LastDeclarationSlot != 0 && clock.Slot < r.LastDeclarationSlot+minDeclarationSlotGap {
		return DeclarationRecorded{}, ErrRateLimited
	}
	if int(dimensionIndex) >= int(r.DimensionCount) {
		return DeclarationRecorded{}, ErrInvalidDimensionIndex
	}
	if newValue > MaxWeight {
		return DeclarationRecorded{}, ErrWeightOutOfRange
	}

	// The signature must have been checked by the host's ed25519
	// primitive over exactly these bytes.
	message := r.DeclarationMessage(dimensionIndex, newValue, content)
	if err := host.FindVerification(r.Owner, message, signature); err != nil {
		return DeclarationRecorded{}, fmt.Errorf("declare: %w", err)
	}

	// Commit. previousHash is the pre-mutation current hash.
	d := ledger.Declaration{
		Index:        dimensionIndex,
		Value:        newValue,
		Timestamp:    clock.UnixTime,
		PreviousHash: r.CurrentHash,
		Signature:    signature,
		ContentHash:  hashchain.ContentDigest([]byte(content)),
	}
	digest := d.Digest()

	if r.Declarations.Count == 0 {
		r.GenesisHash = digest
	}
	r.CurrentHash = digest
	r.Declarations.Append(d)

	// A declaration snaps the self-model to the new weight, erasing any
	// prior drift at that dimension.
	r.Weights[dimensionIndex] = newValue
	r.SelfModel[dimensionIndex] = newValue

	r.ChainRoot.Fold(digest, r.Declarations.Count)
	r.ContinuityScore = continuityScore(r.Declarations.Count)

	r.UpdatedAt = clock.UnixTime
	r.LastDeclarationSlot = clock.Slot

	event := DeclarationRecorded{
		Owner:            r.Owner,
		DeclarationCount: r.Declarations.Count,
		DimensionIndex:   dimensionIndex,
		NewValue:         newValue,
		DeclarationHash:  digest,
		Timestamp:        clock.UnixTime,
	}
	return event, nil
}

// #endregion declare
