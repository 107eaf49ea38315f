package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fprecon/internal/engine"
	"github.com/roach88/fprecon/internal/ir"
	"github.com/roach88/fprecon/internal/testutil"
)

func rawComponents(json string) yaml.Node {
	return yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: json}
}

func ptr[T any](v T) *T { return &v }

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_DefaultRunID(t *testing.T) {
	scenario := &Scenario{
		Name:        "default_run_id",
		Description: "run id defaults",
		Records: []RecordStep{
			{Version: "fingerprint-v1", Components: rawComponents(testutil.V1ComponentsJSON), Fingerprint: testutil.V1Hash},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.Equal(t, "test-run-default", result.Batch.RunID)
	assert.Equal(t, int64(1), result.Batch.Seq)
	assert.Equal(t, ir.DefaultProfileName, result.Batch.Profile)
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatches",
		Description: "every check fails",
		Records: []RecordStep{
			{
				Version:     "fingerprint-v2",
				Components:  rawComponents(testutil.V2ComponentsJSON),
				Fingerprint: testutil.V2AllMissingHash31,
				Expect: &ExpectClause{
					Match:         ptr(false),
					Seed:          ptr(uint32(0)),
					Strategy:      string(ir.StrategyDirect),
					Tried:         ptr(1),
					UndefinedKeys: &[]string{},
					ErrorKeys:     &[]string{"audio"},
				},
			},
			{
				Version:     "fingerprint-v2",
				Components:  rawComponents(`{"audio":`),
				Fingerprint: testutil.UnmatchableHash,
				Expect:      &ExpectClause{Match: ptr(false)},
			},
			{
				Version:     "fingerprint-v1",
				Components:  rawComponents(testutil.V1ComponentsJSON),
				Fingerprint: testutil.V1Hash,
				Expect:      &ExpectClause{Skipped: string(engine.ErrCodeUnsupportedVariant)},
			},
		},
		Assertions: []Assertion{
			{Type: AssertMatchedCount, Count: 0},
			{Type: AssertSkippedCount, Count: 0},
			{Type: AssertDocument, Field: "v1"},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	assert.Equal(t, []string{
		"expect.match failed for record 0: expected false, got true",
		"expect.seed failed for record 0: expected 0, got 31",
		"expect.strategy failed for record 0: expected direct, got all_missing",
		"expect.tried failed for record 0: expected 1, got 3",
		"expect.undefined_keys failed for record 0: expected [], got [device_memory forced_colors hardware_concurrency pdf_viewer_enabled]",
		"expect.error_keys failed for record 0: expected [audio], got []",
		"expect failed for record 1: expected a result, got skipped MALFORMED_COMPONENTS",
		"expect failed for record 2: expected skipped UNSUPPORTED_VARIANT, got reconciled",
		"matched_count failed: expected 0, got 2",
		"skipped_count failed: expected 0, got 1",
		"document.v1 failed: expected null, got " + testutil.V1Hash,
	}, result.Errors)
}

func TestRun_WrongSkipCode(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_skip",
		Description: "skip code differs",
		Records: []RecordStep{
			{
				Version:     "fingerprint-v9",
				Components:  rawComponents(`{}`),
				Fingerprint: testutil.UnmatchableHash,
				Expect:      &ExpectClause{Skipped: string(engine.ErrCodeMalformedComponents)},
			},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"expect failed for record 0: expected skipped MALFORMED_COMPONENTS, got skipped UNSUPPORTED_VARIANT",
	}, result.Errors)
}

func TestRun_UnknownProfile(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown_profile",
		Description: "profile name not declared",
		Profile:     filepath.Join("testdata", "profiles", "tiny.cue"),
		ProfileName: "huge",
		Records: []RecordStep{
			{Version: "fingerprint-v2", Components: rawComponents(`{}`), Fingerprint: testutil.UnmatchableHash},
		},
	}

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve profile")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scenario := &Scenario{
		Name:        "cancelled",
		Description: "context cancelled before the run",
		Records: []RecordStep{
			{Version: "fingerprint-v2", Components: rawComponents(testutil.V2ComponentsJSON), Fingerprint: testutil.UnmatchableHash},
		},
	}

	_, err := Run(ctx, scenario)
	assert.ErrorIs(t, err, context.Canceled)
}
