package identity

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/provenance"
)

func TestDeclareEndToEnd(t *testing.T) {
	r, kp := newTestRecord(t, []string{"curiosity", "precision"}, []uint64{5000, 5000})

	// First declaration: dimension 0 to 8000.
	ev1 := mustDeclare(t, r, kp, 0, 8000, "leaning into exploration", Clock{UnixTime: 1700000100, Slot: 20})

	if r.Weights[0] != 8000 || r.Weights[1] != 5000 {
		t.Fatalf("weights = %v", r.Weights[:2])
	}
	if r.SelfModel[0] != 8000 || r.SelfModel[1] != 5000 {
		t.Fatalf("self model = %v", r.SelfModel[:2])
	}
	if r.CoherenceScore != 0 {
		t.Fatalf("coherence = %d, want 0", r.CoherenceScore)
	}
	if r.Declarations.Count != 1 {
		t.Fatalf("declaration count = %d, want 1", r.Declarations.Count)
	}
	if r.GenesisHash != r.CurrentHash {
		t.Fatal("genesis hash must equal current hash after first declaration")
	}
	if r.GenesisHash.IsZero() {
		t.Fatal("genesis hash must be set")
	}
	if ev1.DeclarationHash != r.CurrentHash {
		t.Fatal("event hash does not match current hash")
	}

	first, ok := r.Declarations.Latest()
	if !ok {
		t.Fatal("no stored declaration")
	}
	if !first.PreviousHash.IsZero() {
		t.Fatal("first declaration must link to the zero sentinel")
	}
	firstDigest := first.Digest()

	// Second declaration: dimension 1 to 2000.
	genesisBefore := r.GenesisHash
	rootBefore := r.ChainRoot.Root
	mustDeclare(t, r, kp, 1, 2000, "tightening standards", Clock{UnixTime: 1700000200, Slot: 30})

	if r.Declarations.Count != 2 {
		t.Fatalf("declaration count = %d, want 2", r.Declarations.Count)
	}
	if r.GenesisHash != genesisBefore {
		t.Fatal("genesis hash changed on second declaration")
	}
	if r.CurrentHash == genesisBefore {
		t.Fatal("current hash did not advance")
	}
	if r.ChainRoot.Root == rootBefore {
		t.Fatal("chain root did not fold in the new declaration")
	}

	second, _ := r.Declarations.Latest()
	if second.PreviousHash != firstDigest {
		t.Fatal("second declaration does not link to the first's digest")
	}
	if second.Digest() != r.CurrentHash {
		t.Fatal("stored digest of latest declaration must equal current hash")
	}

	if r.ContinuityScore != continuityScore(2) {
		t.Fatalf("continuity = %d, want %d", r.ContinuityScore, continuityScore(2))
	}
}

func TestDeclareRateLimit(t *testing.T) {
	r, kp := newTestRecord(t, []string{"curiosity"}, []uint64{5000})

	mustDeclare(t, r, kp, 0, 6000, "first", Clock{UnixTime: 100, Slot: 50})
	snapshot := *r

	// Same slot: must be rejected with the record unchanged.
	message := r.DeclarationMessage(0, 7000, "too soon")
	sig := kp.Sign(message)
	ix, err := provenance.NewVerification(kp.Public, message, sig[:])
	if err != nil {
		t.Fatalf("build verification: %v", err)
	}
	host := provenance.Context{Instructions: []provenance.Instruction{ix}, CurrentIndex: 1}

	_, err = r.Declare(0, 7000, "too soon", sig, host, Clock{UnixTime: 101, Slot: 50})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if *r != snapshot {
		t.Fatal("failed declare mutated the record")
	}

	// One slot later is still inside the gap.
	_, err = r.Declare(0, 7000, "too soon", sig, host, Clock{UnixTime: 102, Slot: 51})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited at slot+1, got %v", err)
	}

	// Two slots later passes the gap.
	mustDeclare(t, r, kp, 0, 7000, "spaced out", Clock{UnixTime: 103, Slot: 52})
}

func TestDeclarePreconditions(t *testing.T) {
	r, kp := newTestRecord(t, []string{"curiosity", "precision"}, []uint64{5000, 5000})
	var sig [64]byte
	host := provenance.Context{}

	if _, err := r.Declare(2, 5000, "", sig, host, Clock{Slot: 20}); !errors.Is(err, ErrInvalidDimensionIndex) {
		t.Fatalf("expected ErrInvalidDimensionIndex, got %v", err)
	}
	if _, err := r.Declare(0, 10001, "", sig, host, Clock{Slot: 20}); !errors.Is(err, ErrWeightOutOfRange) {
		t.Fatalf("expected ErrWeightOutOfRange, got %v", err)
	}

	// Missing provenance: record must stay untouched.
	snapshot := *r
	_, err := r.Declare(0, 6000, "unproven", kp.Sign(r.DeclarationMessage(0, 6000, "unproven")), host, Clock{Slot: 20})
	if !errors.Is(err, provenance.ErrNoMatchingVerification) {
		t.Fatalf("expected ErrNoMatchingVerification, got %v", err)
	}
	if *r != snapshot {
		t.Fatal("failed declare mutated the record")
	}
}

func TestDeclareSignatureBoundToChainPosition(t *testing.T) {
	r, kp := newTestRecord(t, []string{"curiosity"}, []uint64{5000})

	// Sign for the current chain position, then advance the chain.
	staleMessage := r.DeclarationMessage(0, 9000, "replay me")
	staleSig := kp.Sign(staleMessage)
	ix, err := provenance.NewVerification(kp.Public, staleMessage, staleSig[:])
	if err != nil {
		t.Fatalf("build verification: %v", err)
	}
	host := provenance.Context{Instructions: []provenance.Instruction{ix}, CurrentIndex: 1}

	mustDeclare(t, r, kp, 0, 6000, "advance", Clock{UnixTime: 100, Slot: 20})

	// The stale signature now covers an outdated currentHash, so the
	// rebuilt message no longer matches the verified bytes.
	_, err = r.Declare(0, 9000, "replay me", staleSig, host, Clock{UnixTime: 200, Slot: 30})
	if !errors.Is(err, provenance.ErrNoMatchingVerification) {
		t.Fatalf("expected replayed signature to be rejected, got %v", err)
	}
}

func TestDeclareRingEviction(t *testing.T) {
	r, kp := newTestRecord(t, []string{"curiosity"}, []uint64{0})

	slot := uint64(10)
	for i := 0; i < 6; i++ {
		slot += 2
		mustDeclare(t, r, kp, 0, uint64(1000*(i+1)), "step", Clock{UnixTime: int64(100 + i), Slot: slot})
	}

	if r.Declarations.Count != 6 {
		t.Fatalf("count = %d, want 6", r.Declarations.Count)
	}
	if r.Declarations.Stored() != 4 {
		t.Fatalf("stored = %d, want 4", r.Declarations.Stored())
	}
	// The evicted declarations remain provable through the chain root
	// and the retained window still verifies.
	if res := r.Verify(); !res.IsValid {
		t.Fatalf("verify failed after eviction: code %d", res.ErrorCode)
	}
}
