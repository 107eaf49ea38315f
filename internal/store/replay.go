package store

import (
	"context"
	"fmt"

	"github.com/roach88/fprecon/internal/ir"
)

// CheckFunc checks one journaled result against the record it came from.
// A non-nil error reports drift for that record.
type CheckFunc func(ctx context.Context, rec ir.Record, res ir.Result) error

// ReplayReport summarizes a replay of one run.
type ReplayReport struct {
	Run     Run
	Checked int
	Drift   []error
}

// OK reports whether every record replayed without drift.
func (r ReplayReport) OK() bool {
	return len(r.Drift) == 0
}

// Replay reads a run's results in index order and passes each to check.
// Drift is collected rather than returned; the error return is reserved for
// journal failures and a cancelled context.
func (s *Store) Replay(ctx context.Context, runID string, check CheckFunc) (ReplayReport, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay %s: %w", runID, err)
	}
	entries, err := s.ReadResults(ctx, runID)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay %s: %w", runID, err)
	}

	report := ReplayReport{Run: run}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++
		if err := check(ctx, e.Record, e.Result); err != nil {
			report.Drift = append(report.Drift, err)
		}
	}
	return report, nil
}
