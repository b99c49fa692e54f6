package provenance

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"testing"
)

func signedFixture(t *testing.T) (pub [32]byte, message []byte, sig [64]byte, ix Instruction) {
	t.Helper()
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	message = []byte("declaration message bytes")
	sigSlice := ed25519.Sign(privKey, message)

	ix, err = NewVerification(pubKey, message, sigSlice)
	if err != nil {
		t.Fatalf("build verification instruction: %v", err)
	}
	copy(pub[:], pubKey)
	copy(sig[:], sigSlice)
	return pub, message, sig, ix
}

func TestFindVerificationAccepts(t *testing.T) {
	pub, msg, sig, ix := signedFixture(t)
	ctx := Context{
		Instructions: []Instruction{ix, {Program: "identity-engine"}},
		CurrentIndex: 1,
	}
	if err := ctx.FindVerification(pub, msg, sig); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
}

func TestFindVerificationIgnoresLaterInstructions(t *testing.T) {
	pub, msg, sig, ix := signedFixture(t)
	// Verification scheduled after the engine call must not count.
	ctx := Context{
		Instructions: []Instruction{{Program: "identity-engine"}, ix},
		CurrentIndex: 0,
	}
	if err := ctx.FindVerification(pub, msg, sig); !errors.Is(err, ErrNoMatchingVerification) {
		t.Fatalf("expected ErrNoMatchingVerification, got %v", err)
	}
}

func TestFindVerificationRejectsMissing(t *testing.T) {
	pub, msg, sig, _ := signedFixture(t)
	ctx := Context{
		Instructions: []Instruction{{Program: "identity-engine"}},
		CurrentIndex: 1,
	}
	if err := ctx.FindVerification(pub, msg, sig); !errors.Is(err, ErrNoMatchingVerification) {
		t.Fatalf("expected ErrNoMatchingVerification, got %v", err)
	}
}

func TestFindVerificationRejectsMismatchedMessage(t *testing.T) {
	pub, _, sig, ix := signedFixture(t)
	ctx := Context{Instructions: []Instruction{ix}, CurrentIndex: 1}
	if err := ctx.FindVerification(pub, []byte("a different message"), sig); !errors.Is(err, ErrNoMatchingVerification) {
		t.Fatalf("expected ErrNoMatchingVerification, got %v", err)
	}
}

func TestFindVerificationRejectsNonInlineMarkers(t *testing.T) {
	pub, msg, sig, ix := signedFixture(t)

	// Point each index marker in turn at another instruction's buffer.
	// Byte contents still match, so only the marker check can catch it.
	for _, markerOffset := range []int{4, 8, 14} {
		data := make([]byte, len(ix.Data))
		copy(data, ix.Data)
		binary.LittleEndian.PutUint16(data[markerOffset:], 0)

		ctx := Context{
			Instructions: []Instruction{{Program: Ed25519Program, Data: data}},
			CurrentIndex: 1,
		}
		if err := ctx.FindVerification(pub, msg, sig); !errors.Is(err, ErrNoMatchingVerification) {
			t.Fatalf("marker at %d: expected ErrNoMatchingVerification, got %v", markerOffset, err)
		}
	}
}

func TestFindVerificationRejectsWrongSignatureCount(t *testing.T) {
	pub, msg, sig, ix := signedFixture(t)
	data := make([]byte, len(ix.Data))
	copy(data, ix.Data)
	data[0] = 2

	ctx := Context{
		Instructions: []Instruction{{Program: Ed25519Program, Data: data}},
		CurrentIndex: 1,
	}
	if err := ctx.FindVerification(pub, msg, sig); !errors.Is(err, ErrNoMatchingVerification) {
		t.Fatalf("expected ErrNoMatchingVerification, got %v", err)
	}
}

func TestFindVerificationRejectsOutOfBoundsRegions(t *testing.T) {
	pub, msg, sig, ix := signedFixture(t)

	// Truncate so the declared message region runs past the data.
	truncated := ix.Data[:len(ix.Data)-1]
	ctx := Context{
		Instructions: []Instruction{{Program: Ed25519Program, Data: truncated}},
		CurrentIndex: 1,
	}
	if err := ctx.FindVerification(pub, msg, sig); !errors.Is(err, ErrNoMatchingVerification) {
		t.Fatalf("expected ErrNoMatchingVerification, got %v", err)
	}

	// Offset past the end of the data.
	data := make([]byte, len(ix.Data))
	copy(data, ix.Data)
	binary.LittleEndian.PutUint16(data[2:], uint16(len(data)))
	ctx = Context{
		Instructions: []Instruction{{Program: Ed25519Program, Data: data}},
		CurrentIndex: 1,
	}
	if err := ctx.FindVerification(pub, msg, sig); !errors.Is(err, ErrNoMatchingVerification) {
		t.Fatalf("expected ErrNoMatchingVerification, got %v", err)
	}
}

func TestFindVerificationScansPastNonMatching(t *testing.T) {
	pub, msg, sig, good := signedFixture(t)
	_, otherMsg, _, other := signedFixture(t)
	_ = otherMsg

	ctx := Context{
		Instructions: []Instruction{other, {Program: "noise"}, good},
		CurrentIndex: 3,
	}
	if err := ctx.FindVerification(pub, msg, sig); err != nil {
		t.Fatalf("expected scan to reach matching instruction, got %v", err)
	}
}

func TestNewVerificationRejectsBadSignature(t *testing.T) {
	pubKey, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var forged [64]byte
	if _, err := NewVerification(pubKey, []byte("msg"), forged[:]); !errors.Is(err, ErrPrimitiveRejected) {
		t.Fatalf("expected ErrPrimitiveRejected, got %v", err)
	}
}
