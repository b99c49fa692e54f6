// Package identity implements the append-only identity record: a
// vector of behavioral weights, a slower self-model tracking them, and
// a hash-linked chain of signed declarations mutating the weights.
package identity

import (
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/fixedpoint"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/hashchain"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/keys"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/ledger"
)

// #region constants
const (
	// MaxDimensions caps the behavioral vocabulary.
	MaxDimensions = 16

	// MaxDimensionNameLen caps each dimension name in bytes.
	MaxDimensionNameLen = 16

	// MaxPivotalExperiences caps the append-only pivotal log.
	MaxPivotalExperiences = 4

	// MaxWeight is the fixed-point representation of 1.0.
	MaxWeight = fixedpoint.Scale

	// minDeclarationSlotGap is the rate limit between declarations.
	minDeclarationSlotGap = 2

	// coherenceTolerance is the allowed absolute drift between the
	// stored coherence score and a recomputation (0.01 normalized).
	coherenceTolerance = 100

	// selfModelDecayRate is mu = 0.3 in fixed-point scale.
	selfModelDecayRate = 3000
)

// #endregion constants

// #region clock
// Clock carries caller-supplied time: a unix timestamp and a
// monotonically increasing scheduling slot. The engine has no time
// source of its own.
type Clock struct {
	UnixTime int64
	Slot     uint64
}

// #endregion clock

// #region record
// Record is the identity aggregate, owned exclusively by one agent's
// controlling key. The host serializes operations per record; every
// operation here assumes exclusive access for its duration.
type Record struct {
	Owner   keys.OwnerKey
	Address keys.RecordAddress
	Bump    uint8

	DimensionCount uint8
	VocabularyHash hashchain.Hash
	DimensionNames [MaxDimensions][MaxDimensionNameLen]byte

	// Weights (w) and self-model (m), fixed-point [0, 10000]. Only the
	// first DimensionCount entries are meaningful.
	Weights   [MaxDimensions]uint64
	SelfModel [MaxDimensions]uint64

	// Time is the logical clock advanced only by evolution steps.
	Time uint64

	Declarations ledger.Ring
	GenesisHash  hashchain.Hash
	CurrentHash  hashchain.Hash
	ChainRoot    ledger.RootAccumulator

	PivotalCount      uint16
	PivotalHashes     [MaxPivotalExperiences]hashchain.Hash
	PivotalImpacts    [MaxPivotalExperiences]uint64
	PivotalTimestamps [MaxPivotalExperiences]int64

	ContinuityScore uint64
	CoherenceScore  uint64
	StabilityScore  uint64

	CreatedAt           int64
	UpdatedAt           int64
	LastDeclarationSlot uint64
}

// DeclarationCount returns the total number of declarations ever made.
func (r *Record) DeclarationCount() uint32 {
	return r.Declarations.Count
}

// DimensionName returns the i-th dimension name with padding stripped.
func (r *Record) DimensionName(i int) string {
	name := r.DimensionNames[i]
	end := len(name)
	for end > 0 && name[end-1] == 0 {
		end--
	}
	return string(name[:end])
}

// Names returns the active dimension names.
func (r *Record) Names() []string {
	names := make([]string, r.DimensionCount)
	for i := range names {
		names[i] = r.DimensionName(i)
	}
	return names
}

// #endregion record

// #region initialize
// Initialize creates the genesis record: weights and self-model start
// equal (coherent at genesis), the chain is empty, and the record
// address is derived canonically from the owner key.
func Initialize(owner keys.OwnerKey, dimensionNames []string, initialWeights []uint64, vocabularyHash hashchain.Hash, clock Clock) (*Record, Initialized, error) {
	if len(dimensionNames) != len(initialWeights) {
		return nil, Initialized{}, ErrDimensionWeightMismatch
	}
	if len(dimensionNames) > MaxDimensions {
		return nil, Initialized{}, ErrTooManyDimensions
	}
	if len(dimensionNames) == 0 {
		return nil, Initialized{}, ErrNoDimensions
	}
	for _, name := range dimensionNames {
		if len(name) > MaxDimensionNameLen {
			return nil, Initialized{}, ErrDimensionNameTooLong
		}
	}
	for _, w := range initialWeights {
		if w > MaxWeight {
			return nil, Initialized{}, ErrWeightOutOfRange
		}
	}

	address, bump := keys.FindRecordAddress(owner)

	r := &Record{
		Owner:          owner,
		Address:        address,
		Bump:           bump,
		DimensionCount: uint8(len(dimensionNames)),
		VocabularyHash: vocabularyHash,
		CreatedAt:      clock.UnixTime,
		UpdatedAt:      clock.UnixTime,

		ContinuityScore: MaxWeight, // 1.0 at genesis
		CoherenceScore:  0,         // 0 = perfect coherence
		StabilityScore:  MaxWeight, // 1.0 = stable
	}

	for i, name := range dimensionNames {
		copy(r.DimensionNames[i][:], name)
	}
	for i, w := range initialWeights {
		r.Weights[i] = w
		r.SelfModel[i] = w // coherent at genesis: m = w
	}

	event := Initialized{
		Owner:          owner,
		DimensionCount: r.DimensionCount,
		VocabularyHash: vocabularyHash,
		Timestamp:      clock.UnixTime,
	}
	return r, event, nil
}

// #endregion initialize

// #region scores
// continuityScore decays with declaration count: 10000 at zero, halved
// by the 50th, saturating toward zero but never reaching it.
func continuityScore(declarationCount uint32) uint64 {
	return (MaxWeight * 50) / (50 + uint64(declarationCount))
}

// coherence is the integer Euclidean distance between weights and
// self-model over the active dimensions. 0 means perfectly coherent.
func coherence(weights, selfModel *[MaxDimensions]uint64, count uint8) uint64 {
	var sumSq uint64
	for i := 0; i < int(count); i++ {
		diff := int64(weights[i]) - int64(selfModel[i])
		if diff < 0 {
			diff = -diff
		}
		sumSq += uint64(diff) * uint64(diff)
	}
	return fixedpoint.Sqrt(sumSq)
}

// #endregion scores
