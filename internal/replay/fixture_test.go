package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// #region helpers
func writeFixture(t *testing.T, f *Fixture) string {
	t.Helper()
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// #endregion helpers

// #region tests
func TestLoadFixtureRoundTrip(t *testing.T) {
	want := basicFixture()
	got, err := LoadFixture(writeFixture(t, want))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if got.Description != want.Description {
		t.Fatalf("description = %q, want %q", got.Description, want.Description)
	}
	if len(got.Steps) != len(want.Steps) {
		t.Fatalf("step count = %d, want %d", len(got.Steps), len(want.Steps))
	}
	if got.Steps[0].Op != OpDeclare || got.Steps[0].Value != 8000 {
		t.Fatalf("first step did not survive the round trip: %+v", got.Steps[0])
	}
	if got.ExpectedFinal == nil || got.ExpectedFinal.ContinuityScore != 9803 {
		t.Fatalf("expected_final did not survive the round trip: %+v", got.ExpectedFinal)
	}
	if _, err := Run(got); err != nil {
		t.Fatalf("loaded fixture does not run: %v", err)
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestLoadFixtureMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("malformed JSON should fail")
	}
}

func TestValidateRejectsBadFixtures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Fixture)
	}{
		{"no dimensions", func(f *Fixture) { f.Genesis.DimensionNames = nil; f.Genesis.InitialWeights = nil }},
		{"name weight mismatch", func(f *Fixture) { f.Genesis.InitialWeights = []uint64{1} }},
		{"unknown op", func(f *Fixture) { f.Steps[0].Op = "teleport" }},
		{"unknown expectation", func(f *Fixture) { f.Steps[0].Expect = "maybe" }},
	}
	for _, tc := range cases {
		f := basicFixture()
		tc.mutate(f)
		if err := f.Validate(); err == nil {
			t.Fatalf("%s: Validate should fail", tc.name)
		}
	}
}

// #endregion tests
