package ledger

import (
	"testing"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/hashchain"
)

// chainOf appends n linked declarations and returns the ring, the
// digest of the latest, and the digests in order.
func chainOf(t *testing.T, n int) (*Ring, hashchain.Hash, []hashchain.Hash) {
	t.Helper()
	ring := &Ring{}
	prev := hashchain.ZeroHash
	var digests []hashchain.Hash
	for i := 0; i < n; i++ {
		d := Declaration{
			Index:        uint8(i % 3),
			Value:        uint64(1000 * (i + 1)),
			Timestamp:    int64(1700000000 + i*10),
			PreviousHash: prev,
			ContentHash:  hashchain.ContentDigest([]byte{byte(i)}),
		}
		ring.Append(d)
		prev = d.Digest()
		digests = append(digests, prev)
	}
	return ring, prev, digests
}

func TestRingAppendAndCursor(t *testing.T) {
	ring, _, _ := chainOf(t, 6)

	if ring.Count != 6 {
		t.Fatalf("count = %d, want 6", ring.Count)
	}
	if ring.Stored() != MaxStoredDeclarations {
		t.Fatalf("stored = %d, want %d", ring.Stored(), MaxStoredDeclarations)
	}

	// Declarations 5 and 6 overwrote slots 0 and 1.
	if ring.Slots[0].Value != 5000 {
		t.Fatalf("slot 0 value = %d, want 5000", ring.Slots[0].Value)
	}
	if ring.Slots[1].Value != 6000 {
		t.Fatalf("slot 1 value = %d, want 6000", ring.Slots[1].Value)
	}

	latest, ok := ring.Latest()
	if !ok || latest.Value != 6000 {
		t.Fatalf("latest = %+v, ok=%v", latest, ok)
	}
}

func TestRingLatestEmpty(t *testing.T) {
	ring := &Ring{}
	if _, ok := ring.Latest(); ok {
		t.Fatal("empty ring reported a latest declaration")
	}
}

func TestVerifyWindowFullChain(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4} {
		ring, current, _ := chainOf(t, n)
		if code := ring.VerifyWindow(current); code != WindowOK {
			t.Fatalf("n=%d: code = %d, want %d", n, code, WindowOK)
		}
	}
}

func TestVerifyWindowBeyondCapacity(t *testing.T) {
	for _, n := range []int{5, 6, 9, 13} {
		ring, current, _ := chainOf(t, n)
		if code := ring.VerifyWindow(current); code != WindowOK {
			t.Fatalf("n=%d: code = %d, want %d", n, code, WindowOK)
		}
	}
}

func TestVerifyWindowDetectsBrokenLink(t *testing.T) {
	ring, current, _ := chainOf(t, 4)
	// Corrupt the linkage of the third declaration.
	ring.Slots[2].PreviousHash = hashchain.ContentDigest([]byte("tampered"))
	if code := ring.VerifyWindow(current); code != WindowChainBroken {
		t.Fatalf("code = %d, want %d", code, WindowChainBroken)
	}
}

func TestVerifyWindowDetectsFirstLinkTamper(t *testing.T) {
	ring, current, _ := chainOf(t, 2)
	// A truly-first declaration must carry the zero sentinel.
	ring.Slots[0].PreviousHash = hashchain.ContentDigest([]byte("not zero"))
	if code := ring.VerifyWindow(current); code != WindowChainBroken {
		t.Fatalf("code = %d, want %d", code, WindowChainBroken)
	}
}

func TestVerifyWindowDetectsCurrentHashMismatch(t *testing.T) {
	ring, _, _ := chainOf(t, 3)
	wrong := hashchain.ContentDigest([]byte("stale current hash"))
	if code := ring.VerifyWindow(wrong); code != WindowHashMismatch {
		t.Fatalf("code = %d, want %d", code, WindowHashMismatch)
	}
}

func TestVerifyWindowDetectsValueTamperBeyondCapacity(t *testing.T) {
	ring, current, _ := chainOf(t, 7)
	// Mutate a retained declaration's value; its digest no longer matches
	// the next retained declaration's previous hash.
	idx := (ring.Count - 2) % MaxStoredDeclarations
	ring.Slots[idx].Value += 1
	if code := ring.VerifyWindow(current); code != WindowChainBroken {
		t.Fatalf("code = %d, want %d", code, WindowChainBroken)
	}
}

func TestVerifyWindowEmpty(t *testing.T) {
	ring := &Ring{}
	if code := ring.VerifyWindow(hashchain.ZeroHash); code != WindowOK {
		t.Fatalf("code = %d, want %d", code, WindowOK)
	}
}

func TestRootAccumulatorFoldOrder(t *testing.T) {
	_, _, digests := chainOf(t, 3)

	var a, b RootAccumulator
	for i, d := range digests {
		a.Fold(d, uint32(i+1))
	}
	// Same digests, different order: root must differ.
	b.Fold(digests[1], 1)
	b.Fold(digests[0], 2)
	b.Fold(digests[2], 3)
	if a.Root == b.Root {
		t.Fatal("fold accumulator insensitive to order")
	}
	if a.Root.IsZero() {
		t.Fatal("root should not be zero after folds")
	}
}
