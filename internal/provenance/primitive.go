package provenance

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
)

// #region errors
var (
	// ErrPrimitiveRejected means the ed25519 primitive refused to
	// schedule a verification instruction for an invalid signature.
	ErrPrimitiveRejected = errors.New("provenance: ed25519 primitive rejected signature")
)

// #endregion errors

// #region primitive
// NewVerification plays the trusted-primitive role: it verifies the
// signature over the message with the given public key and, on success,
// returns the instruction encoding that the provenance scan expects.
// Hosts schedule the returned instruction before the engine call.
func NewVerification(publicKey ed25519.PublicKey, message []byte, signature []byte) (Instruction, error) {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return Instruction{}, ErrPrimitiveRejected
	}
	if !ed25519.Verify(publicKey, message, signature) {
		return Instruction{}, ErrPrimitiveRejected
	}
	return Instruction{
		Program: Ed25519Program,
		Data:    encodeVerification(publicKey, message, signature),
	}, nil
}

// encodeVerification lays out the instruction data as
// header || signature || pubkey || message, with all three regions
// marked inline.
func encodeVerification(publicKey, message, signature []byte) []byte {
	sigOffset := uint16(headerLen)
	pkOffset := sigOffset + signatureLen
	msgOffset := pkOffset + publicKeyLen

	data := make([]byte, 0, int(msgOffset)+len(message))
	data = append(data, 1, 0) // one signature, padding
	data = binary.LittleEndian.AppendUint16(data, sigOffset)
	data = binary.LittleEndian.AppendUint16(data, inlineMarker)
	data = binary.LittleEndian.AppendUint16(data, pkOffset)
	data = binary.LittleEndian.AppendUint16(data, inlineMarker)
	data = binary.LittleEndian.AppendUint16(data, msgOffset)
	data = binary.LittleEndian.AppendUint16(data, uint16(len(message)))
	data = binary.LittleEndian.AppendUint16(data, inlineMarker)
	data = append(data, signature...)
	data = append(data, publicKey...)
	data = append(data, message...)
	return data
}

// #endregion primitive
