package identity

import (
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/hashchain"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/keys"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/ledger"
)

// #region result
// Verification error codes. The first failing check's code is retained.
const (
	CodeNone         uint8 = 0
	CodeDerivation   uint8 = 1
	CodeRange        uint8 = 2
	CodeChainBroken  uint8 = 3
	CodeHashMismatch uint8 = 4
	CodeCoherence    uint8 = 5
)

// Result is the read-only output of Verify. Metrics are populated
// whether or not the record is valid.
type Result struct {
	IsValid   bool  `json:"is_valid"`
	ErrorCode uint8 `json:"error_code"`

	ChainLength     uint32 `json:"chain_length"`
	ContinuityScore uint64 `json:"continuity_score"`
	CoherenceScore  uint64 `json:"coherence_score"`
	StabilityScore  uint64 `json:"stability_score"`

	GenesisHash hashchain.Hash `json:"genesis_hash"`
	CurrentHash hashchain.Hash `json:"current_hash"`
	ChainRoot   hashchain.Hash `json:"chain_root"`
}

// #endregion result

// #region verify
// Verify runs the consistency checks in order: canonical address
// derivation, weight ranges, retained-window chain integrity, and
// coherence consistency. It mutates nothing and always returns the full
// metric set alongside the first failure's code.
func (r *Record) Verify() Result {
	isValid := true
	errorCode := CodeNone

	// 1. The record must sit at the canonical derivation of its owner.
	expectedAddr, expectedBump := keys.FindRecordAddress(r.Owner)
	if r.Address != expectedAddr || r.Bump != expectedBump {
		isValid = false
		errorCode = CodeDerivation
	}

	// 2. Active weights and self-model within range.
	if isValid {
		for i := 0; i < int(r.DimensionCount); i++ {
			if r.Weights[i] > MaxWeight || r.SelfModel[i] > MaxWeight {
				isValid = false
				errorCode = CodeRange
				break
			}
		}
	}

	// 3+4. Chain linkage within the retained window and current-hash
	// match. Beyond the window, history is vouched for by the chain
	// root, not re-derived here.
	if isValid && r.Declarations.Count > 0 {
		switch r.Declarations.VerifyWindow(r.CurrentHash) {
		case ledger.WindowChainBroken:
			isValid = false
			errorCode = CodeChainBroken
		case ledger.WindowHashMismatch:
			isValid = false
			errorCode = CodeHashMismatch
		}
	}

	// 5. Stored coherence must match a recomputation within tolerance,
	// catching any path that moved weights without updating the score.
	if isValid {
		computed := coherence(&r.Weights, &r.SelfModel, r.DimensionCount)
		diff := computed - r.CoherenceScore
		if computed < r.CoherenceScore {
			diff = r.CoherenceScore - computed
		}
		if diff > coherenceTolerance {
			isValid = false
			errorCode = CodeCoherence
		}
	}

	return Result{
		IsValid:         isValid,
		ErrorCode:       errorCode,
		ChainLength:     r.Declarations.Count,
		ContinuityScore: r.ContinuityScore,
		CoherenceScore:  r.CoherenceScore,
		StabilityScore:  r.StabilityScore,
		GenesisHash:     r.GenesisHash,
		CurrentHash:     r.CurrentHash,
		ChainRoot:       r.ChainRoot.Root,
	}
}

// #endregion verify
