// Package provenance confirms that a trusted signature-verification
// primitive was actually invoked over exactly the bytes a caller claims.
// It performs no cryptography itself: the host schedules an ed25519
// verification instruction alongside the engine call, and this package
// only proves that instruction used the same signature, public key, and
// message the caller handed to the engine.
package provenance

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// #region program
// Ed25519Program identifies the host's signature-verification primitive
// in a co-scheduled instruction list.
const Ed25519Program = "ed25519-verify"

// Instruction is one opaque co-scheduled operation from the host
// execution context.
type Instruction struct {
	Program string
	Data    []byte
}

// #endregion program

// #region errors
var (
	// ErrNoMatchingVerification means no properly-inline verification
	// instruction matching the claimed bytes preceded the current call.
	// It covers both "missing" and "found but mismatched/unsafe".
	ErrNoMatchingVerification = errors.New("provenance: no matching inline ed25519 verification instruction")
)

// #endregion errors

// #region header
// Verification instruction data layout (16-byte header, then payload):
//
//	byte 0      signature count (must be 1)
//	byte 1      padding
//	bytes 2-15  seven little-endian u16 fields:
//	            sig offset, sig instruction index,
//	            pubkey offset, pubkey instruction index,
//	            message offset, message size, message instruction index
//
// An instruction index of 0xFFFF marks the referenced bytes as inline
// within this same instruction's data.
const (
	headerLen    = 16
	inlineMarker = 0xFFFF

	signatureLen = 64
	publicKeyLen = 32
)

type header struct {
	sigOffset uint16
	sigIxIdx  uint16
	pkOffset  uint16
	pkIxIdx   uint16
	msgOffset uint16
	msgSize   uint16
	msgIxIdx  uint16
}

func parseHeader(data []byte) (header, bool) {
	if len(data) < headerLen {
		return header{}, false
	}
	if data[0] != 1 {
		return header{}, false
	}
	return header{
		sigOffset: binary.LittleEndian.Uint16(data[2:4]),
		sigIxIdx:  binary.LittleEndian.Uint16(data[4:6]),
		pkOffset:  binary.LittleEndian.Uint16(data[6:8]),
		pkIxIdx:   binary.LittleEndian.Uint16(data[8:10]),
		msgOffset: binary.LittleEndian.Uint16(data[10:12]),
		msgSize:   binary.LittleEndian.Uint16(data[12:14]),
		msgIxIdx:  binary.LittleEndian.Uint16(data[14:16]),
	}, true
}

// #endregion header

// #region context
// Context is the host-supplied read-only view of the instruction list
// for one engine call. CurrentIndex is the position of the engine call
// itself; only instructions strictly before it are scanned.
type Context struct {
	Instructions []Instruction
	CurrentIndex int
}

// FindVerification scans the instructions preceding the current one for
// a verification-primitive invocation whose inline signature, public
// key, and message bytes all match the claimed values. The first full
// match accepts; anything else keeps scanning.
func (c Context) FindVerification(publicKey [32]byte, message []byte, signature [64]byte) error {
	limit := c.CurrentIndex
	if limit > len(c.Instructions) {
		limit = len(c.Instructions)
	}

	for idx := 0; idx < limit; idx++ {
		ix := c.Instructions[idx]
		if ix.Program != Ed25519Program {
			continue
		}

		h, ok := parseHeader(ix.Data)
		if !ok {
			continue
		}

		// All three index markers must reference inline data. A non-inline
		// marker lets the primitive verify bytes living in a different
		// instruction while this scan reads attacker-controlled bytes at
		// the claimed offsets of this one.
		if h.sigIxIdx != inlineMarker || h.pkIxIdx != inlineMarker || h.msgIxIdx != inlineMarker {
			continue
		}

		if len(ix.Data) < int(h.sigOffset)+signatureLen {
			continue
		}
		if len(ix.Data) < int(h.pkOffset)+publicKeyLen {
			continue
		}
		if len(ix.Data) < int(h.msgOffset)+int(h.msgSize) {
			continue
		}

		if !bytes.Equal(ix.Data[h.sigOffset:int(h.sigOffset)+signatureLen], signature[:]) {
			continue
		}
		if !bytes.Equal(ix.Data[h.pkOffset:int(h.pkOffset)+publicKeyLen], publicKey[:]) {
			continue
		}
		if !bytes.Equal(ix.Data[h.msgOffset:int(h.msgOffset)+int(h.msgSize)], message) {
			continue
		}

		return nil
	}

	return ErrNoMatchingVerification
}

// #endregion context
