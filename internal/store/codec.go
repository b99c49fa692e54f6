package store

import (
	"encoding/binary"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/hashchain"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/identity"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/ledger"
)

// Fixed blob layouts. Widths and field order mirror the record layout
// so the stored bytes are reconstructible without the engine.
const declarationSize = 1 + 8 + 8 + 32 + 64 + 32 // index, value, timestamp, prev, sig, content

// #region vectors
func encodeU64Vector(v *[identity.MaxDimensions]uint64) []byte {
	buf := make([]byte, identity.MaxDimensions*8)
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], x)
	}
	return buf
}

func decodeU64Vector(b []byte, v *[identity.MaxDimensions]uint64) {
	for i := range v {
		if (i+1)*8 <= len(b) {
			v[i] = binary.LittleEndian.Uint64(b[i*8:])
		}
	}
}

// #endregion vectors

// #region names
func encodeDimensionNames(names *[identity.MaxDimensions][identity.MaxDimensionNameLen]byte) []byte {
	buf := make([]byte, 0, identity.MaxDimensions*identity.MaxDimensionNameLen)
	for i := range names {
		buf = append(buf, names[i][:]...)
	}
	return buf
}

func decodeDimensionNames(b []byte, names *[identity.MaxDimensions][identity.MaxDimensionNameLen]byte) {
	for i := range names {
		lo := i * identity.MaxDimensionNameLen
		if lo+identity.MaxDimensionNameLen <= len(b) {
			copy(names[i][:], b[lo:lo+identity.MaxDimensionNameLen])
		}
	}
}

// #endregion names

// #region declarations
func encodeDeclarations(ring *ledger.Ring) []byte {
	buf := make([]byte, 0, ledger.MaxStoredDeclarations*declarationSize)
	for i := range ring.Slots {
		d := &ring.Slots[i]
		buf = append(buf, d.Index)
		buf = binary.LittleEndian.AppendUint64(buf, d.Value)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(d.Timestamp))
		buf = append(buf, d.PreviousHash[:]...)
		buf = append(buf, d.Signature[:]...)
		buf = append(buf, d.ContentHash[:]...)
	}
	return buf
}

func decodeDeclarations(b []byte, ring *ledger.Ring) {
	for i := range ring.Slots {
		lo := i * declarationSize
		if lo+declarationSize > len(b) {
			return
		}
		d := &ring.Slots[i]
		d.Index = b[lo]
		d.Value = binary.LittleEndian.Uint64(b[lo+1:])
		d.Timestamp = int64(binary.LittleEndian.Uint64(b[lo+9:]))
		copy(d.PreviousHash[:], b[lo+17:lo+49])
		copy(d.Signature[:], b[lo+49:lo+113])
		copy(d.ContentHash[:], b[lo+113:lo+145])
	}
}

// #endregion declarations

// #region pivotal
func encodePivotalHashes(hashes *[identity.MaxPivotalExperiences]hashchain.Hash) []byte {
	buf := make([]byte, 0, identity.MaxPivotalExperiences*32)
	for i := range hashes {
		buf = append(buf, hashes[i][:]...)
	}
	return buf
}

func decodePivotalHashes(b []byte, hashes *[identity.MaxPivotalExperiences]hashchain.Hash) {
	for i := range hashes {
		lo := i * 32
		if lo+32 <= len(b) {
			copy(hashes[i][:], b[lo:lo+32])
		}
	}
}

func encodePivotalImpacts(impacts *[identity.MaxPivotalExperiences]uint64) []byte {
	buf := make([]byte, identity.MaxPivotalExperiences*8)
	for i, x := range impacts {
		binary.LittleEndian.PutUint64(buf[i*8:], x)
	}
	return buf
}

func decodePivotalImpacts(b []byte, impacts *[identity.MaxPivotalExperiences]uint64) {
	for i := range impacts {
		if (i+1)*8 <= len(b) {
			impacts[i] = binary.LittleEndian.Uint64(b[i*8:])
		}
	}
}

func encodePivotalTimestamps(ts *[identity.MaxPivotalExperiences]int64) []byte {
	buf := make([]byte, identity.MaxPivotalExperiences*8)
	for i, x := range ts {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(x))
	}
	return buf
}

func decodePivotalTimestamps(b []byte, ts *[identity.MaxPivotalExperiences]int64) {
	for i := range ts {
		if (i+1)*8 <= len(b) {
			ts[i] = int64(binary.LittleEndian.Uint64(b[i*8:]))
		}
	}
}

// #endregion pivotal
