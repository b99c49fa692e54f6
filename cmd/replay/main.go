package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/replay"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/store"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	dbPath := flag.String("db", "", "persist the resulting record and step events to this db")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--db path/to/identity.db] [--json]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *dbPath, *jsonOut))
}

func run(fixturePath, dbPath string, jsonOut bool) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	report, runErr := replay.Run(f)
	if report == nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", runErr)
		return 2
	}

	if jsonOut {
		if err := printJSONReport(f, report, runErr); err != nil {
			fmt.Fprintf(os.Stderr, "output: %v\n", err)
			return 2
		}
	} else {
		printTable(f, report, runErr)
	}

	if dbPath != "" {
		if err := persist(dbPath, report); err != nil {
			fmt.Fprintf(os.Stderr, "persist: %v\n", err)
			return 2
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}

// #endregion main

// #region output

func printTable(f *replay.Fixture, report *replay.RunReport, runErr error) {
	if f.Description != "" {
		fmt.Printf("Fixture: %s\n\n", f.Description)
	}
	fmt.Printf("%-4s  %-12s  %-9s  %6s  %9s  %10s  %s\n",
		"Step", "Op", "Outcome", "Decls", "Coherence", "Continuity", "Reason")
	fmt.Printf("%-4s+-%-12s+-%-9s+-%6s+-%9s+-%10s+-%s\n",
		"----", "------------", "---------", "------", "---------", "----------", "--------------------")
	for _, r := range report.Results {
		fmt.Printf("%-4d  %-12s  %-9s  %6d  %9d  %10d  %s\n",
			r.Index, r.Op, r.Outcome, r.DeclarationCount,
			r.CoherenceScore, r.ContinuityScore, r.Reason)
	}

	s := replay.Summarize(report)
	fmt.Printf("\nSummary: %d steps, %d applied, %d rejected, %d declarations, verify code %d\n",
		s.TotalSteps, s.Applied, s.Rejected, s.Declarations, s.VerifyCode)
	fmt.Printf("Record:  %s (owner %s)\n", report.Record.Address.Hex(), report.Owner.Hex())
	if runErr != nil {
		fmt.Printf("FAILED:  %v\n", runErr)
	}
}

type jsonReport struct {
	Description string              `json:"description,omitempty"`
	Address     string              `json:"address"`
	Owner       string              `json:"owner"`
	Results     []replay.StepResult `json:"results"`
	Summary     replay.Summary      `json:"summary"`
	Error       string              `json:"error,omitempty"`
}

func printJSONReport(f *replay.Fixture, report *replay.RunReport, runErr error) error {
	out := jsonReport{
		Description: f.Description,
		Address:     report.Record.Address.Hex(),
		Owner:       report.Owner.Hex(),
		Results:     report.Results,
		Summary:     replay.Summarize(report),
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output

// #region persist

var stepEventKinds = map[string]string{
	replay.OpDeclare:    store.KindDeclaration,
	replay.OpEvolve:     store.KindEvolved,
	replay.OpSetWeights: store.KindWeightsSet,
	replay.OpPivotal:    store.KindPivotalRecorded,
	replay.OpClose:      store.KindClosed,
}

// persist saves the final record and logs one event per applied step.
// A closed run deletes the record but keeps its event trail.
func persist(dbPath string, report *replay.RunReport) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Save(report.Record); err != nil {
		return err
	}
	if _, err := st.LogEvent(report.Record.Address, store.KindInitialized,
		report.Record.Verify(), report.Record.CreatedAt); err != nil {
		return err
	}
	for _, r := range report.Results {
		if r.Outcome != replay.OutcomeApplied {
			continue
		}
		if _, err := st.LogEvent(report.Record.Address, stepEventKinds[r.Op],
			r, report.Record.CreatedAt+int64(r.Index)+1); err != nil {
			return err
		}
	}
	if report.Closed {
		return st.DeleteRecord(report.Record.Address)
	}
	return nil
}

// #endregion persist
