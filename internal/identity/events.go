package identity

import (
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/hashchain"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/keys"
)

// #region events
// Events are advisory notification payloads returned from each mutating
// operation for external indexing. The engine never reads them back.

// Initialized is emitted when a record is created.
type Initialized struct {
	Owner          keys.OwnerKey  `json:"owner"`
	DimensionCount uint8          `json:"dimension_count"`
	VocabularyHash hashchain.Hash `json:"vocabulary_hash"`
	Timestamp      int64          `json:"timestamp"`
}

// DeclarationRecorded is emitted when a declaration commits.
type DeclarationRecorded struct {
	Owner            keys.OwnerKey  `json:"owner"`
	DeclarationCount uint32         `json:"declaration_count"`
	DimensionIndex   uint8          `json:"dimension_index"`
	NewValue         uint64         `json:"new_value"`
	DeclarationHash  hashchain.Hash `json:"declaration_hash"`
	Timestamp        int64          `json:"timestamp"`
}

// Evolved is emitted after an evolution step.
type Evolved struct {
	Owner          keys.OwnerKey `json:"owner"`
	Time           uint64        `json:"time"`
	CoherenceScore uint64        `json:"coherence_score"`
	Timestamp      int64         `json:"timestamp"`
}

// WeightsSet is emitted after a direct weight overwrite.
type WeightsSet struct {
	Owner     keys.OwnerKey `json:"owner"`
	Weights   []uint64      `json:"weights"`
	Timestamp int64         `json:"timestamp"`
}

// PivotalRecorded is emitted when a pivotal experience is stored.
type PivotalRecorded struct {
	Owner           keys.OwnerKey  `json:"owner"`
	PivotalCount    uint16         `json:"pivotal_count"`
	ExperienceHash  hashchain.Hash `json:"experience_hash"`
	ImpactMagnitude uint64         `json:"impact_magnitude"`
	Timestamp       int64          `json:"timestamp"`
}

// Closed is emitted when a record is released from storage.
type Closed struct {
	Owner            keys.OwnerKey `json:"owner"`
	DeclarationCount uint32        `json:"declaration_count"`
	Timestamp        int64         `json:"timestamp"`
}

// #endregion events
