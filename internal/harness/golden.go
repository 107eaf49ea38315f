package harness

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/fprecon/internal/engine"
)

// Snapshot captures everything a scenario run produces that is compared
// against its golden file.
type Snapshot struct {
	Scenario string          `json:"scenario"`
	Profile  string          `json:"profile"`
	Document engine.Document `json:"document"`
	Skipped  []SkippedRecord `json:"skipped"`
}

// SkippedRecord is a record rejected before reconciliation.
type SkippedRecord struct {
	Index   int    `json:"index"`
	Version string `json:"version"`
	Code    string `json:"code"`
}

// NewSnapshot builds the snapshot of a reconciled batch.
func NewSnapshot(name string, batch *engine.Batch) Snapshot {
	s := Snapshot{
		Scenario: name,
		Profile:  batch.Profile,
		Document: batch.Document(),
		Skipped:  make([]SkippedRecord, 0, len(batch.Skipped)),
	}
	for _, rerr := range batch.Skipped {
		s.Skipped = append(s.Skipped, SkippedRecord{
			Index:   rerr.Index,
			Version: rerr.Version,
			Code:    string(rerr.Code),
		})
	}
	return s
}

// Marshal renders the snapshot as indented JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// RunWithGolden executes a scenario and compares the snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's snapshot against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result.Batch).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
