package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/fprecon/internal/canonical"
	"github.com/roach88/fprecon/internal/ir"
)

// Replay checks that a stored result is still what the engine produces.
//
// Reconciliation is a pure function of (components, target, variant,
// profile), so a journaled result must reproduce byte for byte. Two levels
// of checking are offered:
//
//   - Verify re-serializes the record under the stored hypothesis and seed
//     and compares one hash. It is cheap and needs no profile.
//   - Rerun repeats the whole search and compares every result field,
//     including the ordinal count. It catches profile drift as well as
//     serializer drift.

// DriftError reports a stored result field that did not reproduce.
type DriftError struct {
	Index      int    // Record index
	Field      string // Result field that differs
	Stored     string
	Recomputed string
}

// Error implements the error interface.
func (e *DriftError) Error() string {
	return fmt.Sprintf("record %d: %s drifted: stored %s, recomputed %s", e.Index, e.Field, e.Stored, e.Recomputed)
}

// Verify re-hashes rec under the hypothesis and seed stored in res and
// checks the stored calculated hash and match flag.
func Verify(rec ir.Record, res ir.Result) error {
	hyp := ir.Hypothesis{}
	if res.Hypothesis != nil {
		hyp = *res.Hypothesis
	}

	s, err := canonical.Serialize(rec.Variant, rec.Components, hyp)
	if err != nil {
		return fmt.Errorf("record %d: %w", rec.Index, err)
	}
	seed := rec.Variant.Seed()
	if rec.Variant == ir.VariantV2 {
		seed = res.Seed
	}

	got := ir.HashString(s, seed)
	if got != res.Calculated {
		return &DriftError{Index: rec.Index, Field: "calculated", Stored: res.Calculated, Recomputed: got}
	}
	if match := got == res.Expected; match != res.Match {
		return &DriftError{Index: rec.Index, Field: "match", Stored: fmt.Sprint(res.Match), Recomputed: fmt.Sprint(match)}
	}
	return nil
}

// Rerun reconciles rec again with s and compares the outcome with res.
func Rerun(ctx context.Context, s *Searcher, rec ir.Record, res ir.Result) error {
	got, err := s.Reconcile(ctx, rec.Components, rec.Target, rec.Variant)
	if err != nil {
		return err
	}
	got.Index = rec.Index

	diff := func(field string, stored, recomputed any) error {
		return &DriftError{Index: rec.Index, Field: field, Stored: fmt.Sprint(stored), Recomputed: fmt.Sprint(recomputed)}
	}
	switch {
	case got.Calculated != res.Calculated:
		return diff("calculated", res.Calculated, got.Calculated)
	case got.Match != res.Match:
		return diff("match", res.Match, got.Match)
	case got.Seed != res.Seed:
		return diff("seed", res.Seed, got.Seed)
	case got.Strategy != res.Strategy:
		return diff("strategy", res.Strategy, got.Strategy)
	case got.Tried != res.Tried:
		return diff("tried", res.Tried, got.Tried)
	case !sameHypothesis(got.Hypothesis, res.Hypothesis):
		return diff("hypothesis", res.Hypothesis, got.Hypothesis)
	}
	return nil
}

func sameHypothesis(a, b *ir.Hypothesis) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return slices.Equal(a.UndefinedKeys, b.UndefinedKeys) && slices.Equal(a.ErrorKeys, b.ErrorKeys)
}
