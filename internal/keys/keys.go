// Package keys holds the owner credential helpers and the canonical
// record-address derivation shared by initialization and verification.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// #region owner-key
// OwnerKey is the 32-byte authorizing credential identifier of a
// record's controlling keypair.
type OwnerKey [32]byte

// Hex returns the lowercase hex encoding of the key.
func (k OwnerKey) Hex() string {
	return hex.EncodeToString(k[:])
}

// MarshalJSON encodes the key as a hex string.
func (k OwnerKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Hex())
}

// UnmarshalJSON decodes a hex string into the key.
func (k *OwnerKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decode owner key hex: %w", err)
	}
	if len(b) != len(k) {
		return fmt.Errorf("owner key must be %d bytes, got %d", len(k), len(b))
	}
	copy(k[:], b)
	return nil
}

// #endregion owner-key

// #region keypair
// KeyPair is an ed25519 keypair controlling one identity record.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Generate creates a keypair from cryptographically secure randomness.
func Generate() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate keypair: %w", err)
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// Owner returns the credential identifier for this keypair.
func (k KeyPair) Owner() OwnerKey {
	var owner OwnerKey
	copy(owner[:], k.Public)
	return owner
}

// Sign signs message bytes with the private key.
func (k KeyPair) Sign(message []byte) [64]byte {
	var sig [64]byte
	copy(sig[:], ed25519.Sign(k.Private, message))
	return sig
}

// #endregion keypair

// #region address
// addressSeed namespaces record addresses away from other derivations.
const addressSeed = "agent-identity"

// keyLeadByte marks raw ed25519 key material in the host address space.
// Derived record addresses must never be mistakable for keys, so
// candidates starting with this byte are skipped during the bump scan.
const keyLeadByte = 0xED

// RecordAddress is the deterministic 32-byte address of an identity
// record, derived from its owner key.
type RecordAddress [32]byte

// Hex returns the lowercase hex encoding of the address.
func (a RecordAddress) Hex() string {
	return hex.EncodeToString(a[:])
}

// DeriveRecordAddress computes sha256(seed || owner || bump).
func DeriveRecordAddress(owner OwnerKey, bump uint8) RecordAddress {
	data := make([]byte, 0, len(addressSeed)+33)
	data = append(data, addressSeed...)
	data = append(data, owner[:]...)
	data = append(data, bump)
	return sha256.Sum256(data)
}

// FindRecordAddress scans bumps downward from 255 and returns the first
// derived address that does not collide with key material, together
// with the bump that produced it. The scan is deterministic, so any
// party can recompute the canonical address for an owner.
func FindRecordAddress(owner OwnerKey) (RecordAddress, uint8) {
	for bump := 255; bump >= 0; bump-- {
		addr := DeriveRecordAddress(owner, uint8(bump))
		if addr[0] != keyLeadByte {
			return addr, uint8(bump)
		}
	}
	// 256 consecutive lead-byte collisions cannot happen with an
	// unbroken hash; treat bump 0 as the terminal candidate.
	return DeriveRecordAddress(owner, 0), 0
}

// #endregion address
