package hashchain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// #region hash
// Hash is a 32-byte SHA-256 digest.
type Hash [32]byte

// ZeroHash is the chain sentinel: the previous-hash of a first-ever
// declaration and the initial value of every accumulator.
var ZeroHash Hash

// Hex returns the lowercase hex encoding of the digest.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the digest is the zero sentinel.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// MarshalJSON encodes the digest as a hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Hex())
}

// UnmarshalJSON decodes a hex string into the digest.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decode hash hex: %w", err)
	}
	if len(b) != len(h) {
		return fmt.Errorf("hash must be %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return nil
}

// #endregion hash

// #region declaration-digest
// DeclarationDigest computes the chained identity of a declaration.
// Field order and byte widths are fixed for cross-system hash equality:
// index || value (8-byte LE) || timestamp (8-byte LE) || previousHash || contentHash.
// Signature bytes are deliberately excluded: they authenticate the
// declaration's creation but are not part of its chained identity.
func DeclarationDigest(index uint8, value uint64, timestamp int64, previousHash, contentHash Hash) Hash {
	data := make([]byte, 0, 81)
	data = append(data, index)
	data = binary.LittleEndian.AppendUint64(data, value)
	data = binary.LittleEndian.AppendUint64(data, uint64(timestamp))
	data = append(data, previousHash[:]...)
	data = append(data, contentHash[:]...)
	return sha256.Sum256(data)
}

// #endregion declaration-digest

// #region content-digest
// ContentDigest hashes raw declaration content. Only this digest is
// retained; the content itself stays off-record.
func ContentDigest(content []byte) Hash {
	return sha256.Sum256(content)
}

// #endregion content-digest

// #region fold-root
// FoldRoot folds a new declaration digest into the running chain root:
// sha256(root || newHash || count (4-byte LE)). This is a sequential
// accumulator, not a Merkle tree: there is no branch-proof structure,
// only fold order.
func FoldRoot(root, newHash Hash, count uint32) Hash {
	data := make([]byte, 0, 68)
	data = append(data, root[:]...)
	data = append(data, newHash[:]...)
	data = binary.LittleEndian.AppendUint32(data, count)
	return sha256.Sum256(data)
}

// #endregion fold-root
