package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/fprecon/internal/engine"
	"github.com/roach88/fprecon/internal/ir"
)

// AssertionError is returned when an expectation or assertion fails.
type AssertionError struct {
	Type     string // Assertion type, or "expect" for per-record clauses
	Index    int    // Record index; -1 for batch assertions
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s failed for record %d: expected %s, got %s", e.Type, e.Index, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s failed: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// CheckExpectations compares every record's expect clause against the batch.
// Returns one message per mismatch.
func CheckExpectations(batch *engine.Batch, records []RecordStep) []string {
	var errs []string
	for i, rec := range records {
		if rec.Expect == nil {
			continue
		}
		for _, err := range checkRecord(batch, i, rec.Expect) {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func checkRecord(batch *engine.Batch, index int, want *ExpectClause) []error {
	skipped := findSkipped(batch, index)
	res, reconciled := findResult(batch, index)

	if want.Skipped != "" {
		if skipped == nil {
			return []error{&AssertionError{Type: "expect", Index: index, Expected: "skipped " + want.Skipped, Actual: "reconciled"}}
		}
		if string(skipped.Code) != want.Skipped {
			return []error{&AssertionError{Type: "expect", Index: index, Expected: "skipped " + want.Skipped, Actual: "skipped " + string(skipped.Code)}}
		}
		return nil
	}
	if !reconciled {
		actual := "missing"
		if skipped != nil {
			actual = "skipped " + string(skipped.Code)
		}
		return []error{&AssertionError{Type: "expect", Index: index, Expected: "a result", Actual: actual}}
	}

	var errs []error
	mismatch := func(field string, expected, actual any) {
		errs = append(errs, &AssertionError{
			Type:     "expect." + field,
			Index:    index,
			Expected: fmt.Sprint(expected),
			Actual:   fmt.Sprint(actual),
		})
	}

	if want.Match != nil && *want.Match != res.Match {
		mismatch("match", *want.Match, res.Match)
	}
	if want.Calculated != "" && want.Calculated != res.Calculated {
		mismatch("calculated", want.Calculated, res.Calculated)
	}
	if want.Seed != nil && *want.Seed != res.Seed {
		mismatch("seed", *want.Seed, res.Seed)
	}
	if want.Strategy != "" && ir.Strategy(want.Strategy) != res.Strategy {
		mismatch("strategy", want.Strategy, res.Strategy)
	}
	if want.Tried != nil && *want.Tried != res.Tried {
		mismatch("tried", *want.Tried, res.Tried)
	}

	var hyp ir.Hypothesis
	if res.Hypothesis != nil {
		hyp = *res.Hypothesis
	}
	if want.UndefinedKeys != nil && !sameKeys(*want.UndefinedKeys, hyp.UndefinedKeys) {
		mismatch("undefined_keys", *want.UndefinedKeys, hyp.UndefinedKeys)
	}
	if want.ErrorKeys != nil && !sameKeys(*want.ErrorKeys, hyp.ErrorKeys) {
		mismatch("error_keys", *want.ErrorKeys, hyp.ErrorKeys)
	}
	return errs
}

// sameKeys compares key lists in order; nil and empty are equal.
func sameKeys(a, b []string) bool {
	return len(a) == len(b) && (len(a) == 0 || slices.Equal(a, b))
}

func findResult(batch *engine.Batch, index int) (ir.Result, bool) {
	for _, r := range batch.Results {
		if r.Index == index {
			return r, true
		}
	}
	return ir.Result{}, false
}

func findSkipped(batch *engine.Batch, index int) *engine.RecordError {
	for _, s := range batch.Skipped {
		if s.Index == index {
			return s
		}
	}
	return nil
}

// EvaluateAssertions runs every batch assertion.
// Returns one message per failed assertion.
func EvaluateAssertions(batch *engine.Batch, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(batch, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(batch *engine.Batch, a Assertion) error {
	count := func(got int) error {
		if got != a.Count {
			return &AssertionError{Type: a.Type, Index: -1, Expected: fmt.Sprint(a.Count), Actual: fmt.Sprint(got)}
		}
		return nil
	}

	switch a.Type {
	case AssertMatchedCount:
		return count(batch.Matched())
	case AssertUnmatchedCount:
		return count(batch.Unmatched())
	case AssertSkippedCount:
		return count(len(batch.Skipped))
	case AssertDocument:
		doc := batch.Document()
		var got *string
		switch a.Field {
		case "v1":
			got = doc.V1
		case "v1SansUA":
			got = doc.V1NoUA
		case "v2":
			got = doc.V2
		}
		if describe(got) != describe(a.Value) {
			return &AssertionError{Type: a.Type + "." + a.Field, Index: -1, Expected: describe(a.Value), Actual: describe(got)}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func describe(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
