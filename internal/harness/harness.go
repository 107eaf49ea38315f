package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/fprecon/internal/compiler"
	"github.com/roach88/fprecon/internal/engine"
	"github.com/roach88/fprecon/internal/ir"
	"github.com/roach88/fprecon/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Resolve the profile (built-in default or compiled from CUE)
// 2. Convert the records to raw input
// 3. Reconcile the batch with a fixed run ID and a fresh clock
// 4. Check per-record expectations and batch assertions
//
// The returned error is reserved for scenarios that cannot run at all;
// failed checks are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	batch, err := reconcile(ctx, scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Batch = batch
	for _, msg := range CheckExpectations(batch, scenario.Records) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(batch, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func reconcile(ctx context.Context, scenario *Scenario) (*engine.Batch, error) {
	profile, err := compiler.ResolveProfile(scenario.Profile, scenario.ProfileName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile: %w", err)
	}

	raws := make([]ir.RawRecord, len(scenario.Records))
	for i, rec := range scenario.Records {
		components, err := componentsJSON(&rec.Components)
		if err != nil {
			return nil, fmt.Errorf("records[%d].components: %w", i, err)
		}
		raws[i] = ir.RawRecord{
			Index:       i,
			Version:     rec.Version,
			Components:  components,
			Fingerprint: rec.Fingerprint,
		}
	}

	// Suppress logs in tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	searcher, err := engine.NewSearcher(profile, engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create searcher: %w", err)
	}
	runner := engine.NewRunner(searcher,
		engine.WithRunLogger(logger),
		engine.WithRunIDs(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		engine.WithClock(engine.NewClock()),
	)

	batch, err := runner.Run(ctx, raws)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}
	return batch, nil
}
