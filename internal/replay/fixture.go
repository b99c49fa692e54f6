package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/identity"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/signals"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description   string         `json:"description"`
	Genesis       FixtureGenesis `json:"genesis"`
	Steps         []FixtureStep  `json:"steps"`
	ExpectedFinal *FixtureFinal  `json:"expected_final,omitempty"`
}

// FixtureGenesis describes the record created at the start of a run.
type FixtureGenesis struct {
	DimensionNames []string `json:"dimension_names"`
	InitialWeights []uint64 `json:"initial_weights"`
	Vocabulary     string   `json:"vocabulary"`
	UnixTime       int64    `json:"unix_time"`
	Slot           uint64   `json:"slot"`
}

// FixtureStep is one scripted operation. Op selects which of the
// operation fields apply; the clock fields apply to every op.
type FixtureStep struct {
	Op       string `json:"op"` // "declare" | "evolve" | "set_weights" | "pivotal" | "close"
	UnixTime int64  `json:"unix_time"`
	Slot     uint64 `json:"slot"`

	// declare
	Dimension uint8  `json:"dimension,omitempty"`
	Value     uint64 `json:"value,omitempty"`
	Content   string `json:"content,omitempty"`

	// evolve: either a raw signal vector or named feedback scored per
	// dimension. Feedback wins when both are present.
	Signal   []int64            `json:"signal,omitempty"`
	Feedback []signals.Feedback `json:"feedback,omitempty"`
	TimeStep uint64             `json:"time_step,omitempty"`

	// set_weights
	Weights []uint64 `json:"weights,omitempty"`

	// pivotal
	Experience string `json:"experience,omitempty"`
	Impact     uint64 `json:"impact,omitempty"`

	// Expected outcome: "applied" or "rejected". Empty means unchecked.
	Expect string `json:"expect,omitempty"`
}

// FixtureFinal pins down the state a run must end in.
type FixtureFinal struct {
	DeclarationCount uint32 `json:"declaration_count"`
	CoherenceScore   uint64 `json:"coherence_score"`
	ContinuityScore  uint64 `json:"continuity_score"`
	LogicalTime      uint64 `json:"logical_time"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

// Validate rejects fixtures the harness could not run.
func (f *Fixture) Validate() error {
	if len(f.Genesis.DimensionNames) == 0 {
		return fmt.Errorf("genesis has no dimensions")
	}
	if len(f.Genesis.DimensionNames) != len(f.Genesis.InitialWeights) {
		return fmt.Errorf("genesis has %d names but %d weights",
			len(f.Genesis.DimensionNames), len(f.Genesis.InitialWeights))
	}
	for i, s := range f.Steps {
		switch s.Op {
		case OpDeclare, OpEvolve, OpSetWeights, OpPivotal, OpClose:
		default:
			return fmt.Errorf("step %d: unknown op %q", i, s.Op)
		}
		switch s.Expect {
		case "", OutcomeApplied, OutcomeRejected:
		default:
			return fmt.Errorf("step %d: unknown expectation %q", i, s.Expect)
		}
	}
	return nil
}

// Clock returns the step's clock reading.
func (s *FixtureStep) Clock() identity.Clock {
	return identity.Clock{UnixTime: s.UnixTime, Slot: s.Slot}
}

// #endregion fixture-loader
