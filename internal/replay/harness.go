// Package replay runs scripted operation sequences against an
// in-memory identity record. The harness owns a throwaway keypair and
// produces real signatures and verification instructions for declare
// steps, so replayed runs exercise the same provenance path as live
// calls.
package replay

import (
	"fmt"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/hashchain"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/identity"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/keys"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/provenance"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/signals"
)

// #region types
// Operation names accepted in fixture steps.
const (
	OpDeclare    = "declare"
	OpEvolve     = "evolve"
	OpSetWeights = "set_weights"
	OpPivotal    = "pivotal"
	OpClose      = "close"
)

// Step outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// StepResult captures the outcome of one scripted operation.
type StepResult struct {
	Index   int    `json:"index"`
	Op      string `json:"op"`
	Outcome string `json:"outcome"` // "applied" | "rejected"
	Reason  string `json:"reason,omitempty"`

	// Record state after the step.
	DeclarationCount uint32         `json:"declaration_count"`
	CoherenceScore   uint64         `json:"coherence_score"`
	ContinuityScore  uint64         `json:"continuity_score"`
	LogicalTime      uint64         `json:"logical_time"`
	CurrentHash      hashchain.Hash `json:"current_hash"`
}

// RunReport is the full outcome of replaying a fixture.
type RunReport struct {
	Owner   keys.OwnerKey
	Record  *identity.Record
	Results []StepResult
	Closed  bool
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps   int    `json:"total_steps"`
	Applied      int    `json:"applied"`
	Rejected     int    `json:"rejected"`
	Declarations uint32 `json:"declarations"`
	VerifyCode   uint8  `json:"verify_code"`
}

// #endregion types

// #region run
// Run initializes a record from the fixture genesis and applies each
// step in order. Rejections do not stop the run; a mismatch against a
// step's declared expectation does.
func Run(f *Fixture) (*RunReport, error) {
	kp, err := keys.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}

	genesisClock := identity.Clock{UnixTime: f.Genesis.UnixTime, Slot: f.Genesis.Slot}
	record, _, err := identity.Initialize(
		kp.Owner(),
		f.Genesis.DimensionNames,
		f.Genesis.InitialWeights,
		hashchain.ContentDigest([]byte(f.Genesis.Vocabulary)),
		genesisClock,
	)
	if err != nil {
		return nil, fmt.Errorf("initialize record: %w", err)
	}

	report := &RunReport{
		Owner:   kp.Owner(),
		Record:  record,
		Results: make([]StepResult, 0, len(f.Steps)),
	}

	for i, step := range f.Steps {
		var stepErr error
		switch step.Op {
		case OpDeclare:
			stepErr = runDeclare(record, kp, step)
		case OpEvolve:
			stepErr = runEvolve(record, step)
		case OpSetWeights:
			_, stepErr = record.SetWeights(step.Weights, step.Clock())
		case OpPivotal:
			_, stepErr = record.RecordPivotal(
				hashchain.ContentDigest([]byte(step.Experience)), step.Impact, step.Clock())
		case OpClose:
			record.CloseEvent(step.Clock())
			report.Closed = true
		}

		result := StepResult{
			Index:            i,
			Op:               step.Op,
			Outcome:          OutcomeApplied,
			DeclarationCount: record.DeclarationCount(),
			CoherenceScore:   record.CoherenceScore,
			ContinuityScore:  record.ContinuityScore,
			LogicalTime:      record.Time,
			CurrentHash:      record.CurrentHash,
		}
		if stepErr != nil {
			result.Outcome = OutcomeRejected
			result.Reason = stepErr.Error()
		}
		report.Results = append(report.Results, result)

		if step.Expect != "" && step.Expect != result.Outcome {
			return report, fmt.Errorf("step %d (%s): expected %s, got %s (%s)",
				i, step.Op, step.Expect, result.Outcome, result.Reason)
		}
	}

	if err := checkFinal(f.ExpectedFinal, record); err != nil {
		return report, err
	}
	return report, nil
}

// runEvolve resolves the step's signal vector. Named feedback goes
// through the signal producer against the record's vocabulary.
func runEvolve(record *identity.Record, step FixtureStep) error {
	signal := step.Signal
	if len(step.Feedback) > 0 {
		producer := signals.NewProducer(record.Names(), signals.DefaultProducerConfig())
		var err error
		signal, err = producer.Produce(step.Feedback)
		if err != nil {
			return err
		}
	}
	_, err := record.Evolve(signal, step.TimeStep, step.Clock())
	return err
}

// runDeclare signs the canonical declaration message and presents the
// verification instruction the way a host transaction would.
func runDeclare(record *identity.Record, kp keys.KeyPair, step FixtureStep) error {
	msg := record.DeclarationMessage(step.Dimension, step.Value, step.Content)
	sig := kp.Sign(msg)
	ix, err := provenance.NewVerification(kp.Public, msg, sig[:])
	if err != nil {
		return fmt.Errorf("build verification: %w", err)
	}
	host := provenance.Context{
		Instructions: []provenance.Instruction{ix},
		CurrentIndex: 1,
	}
	_, err = record.Declare(step.Dimension, step.Value, step.Content, sig, host, step.Clock())
	return err
}

func checkFinal(want *FixtureFinal, record *identity.Record) error {
	if want == nil {
		return nil
	}
	if got := record.DeclarationCount(); got != want.DeclarationCount {
		return fmt.Errorf("final declaration count %d, want %d", got, want.DeclarationCount)
	}
	if record.CoherenceScore != want.CoherenceScore {
		return fmt.Errorf("final coherence %d, want %d", record.CoherenceScore, want.CoherenceScore)
	}
	if record.ContinuityScore != want.ContinuityScore {
		return fmt.Errorf("final continuity %d, want %d", record.ContinuityScore, want.ContinuityScore)
	}
	if record.Time != want.LogicalTime {
		return fmt.Errorf("final logical time %d, want %d", record.Time, want.LogicalTime)
	}
	return nil
}

// Summarize computes aggregate stats from a run report.
func Summarize(report *RunReport) Summary {
	s := Summary{
		TotalSteps:   len(report.Results),
		Declarations: report.Record.DeclarationCount(),
		VerifyCode:   report.Record.Verify().ErrorCode,
	}
	for _, r := range report.Results {
		switch r.Outcome {
		case OutcomeApplied:
			s.Applied++
		case OutcomeRejected:
			s.Rejected++
		}
	}
	return s
}

// #endregion run
