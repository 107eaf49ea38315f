package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/fprecon/internal/ir"
)

// Profile validation error codes (E200-E299)
const (
	ErrProfileNoSeeds       = "E201" // at least one seed required
	ErrProfileCapOutOfRange = "E202" // combination cap outside its range
	ErrDuplicateKnownKey    = "E203" // known key listed twice
	ErrDuplicateCandidate   = "E204" // error candidate listed twice
	ErrCandidateNotKnown    = "E205" // error candidate missing from known keys
	ErrEmptyKey             = "E206" // empty key string
	ErrDuplicateSeed        = "E207" // seed listed twice
	ErrProfileNameEmpty     = "E208" // profile name required
)

// ValidationError represents a profile validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateProfile checks a compiled profile.
// Returns all errors found (does not fail-fast).
func ValidateProfile(p ir.Profile) []ValidationError {
	var errs []ValidationError

	if p.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "profile name is required",
			Code:    ErrProfileNameEmpty,
		})
	}

	if len(p.Seeds) == 0 {
		errs = append(errs, ValidationError{
			Field:   "seeds",
			Message: "at least one seed is required",
			Code:    ErrProfileNoSeeds,
		})
	}
	seen := make(map[uint32]bool, len(p.Seeds))
	for i, s := range p.Seeds {
		if seen[s] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("seeds[%d]", i),
				Message: fmt.Sprintf("duplicate seed: %d", s),
				Code:    ErrDuplicateSeed,
			})
		}
		seen[s] = true
	}

	caps := []struct {
		field    string
		val      int
		min, max int
	}{
		{"max_undefined_combos", p.MaxUndefinedCombos, 1, 1 << 30},
		{"max_undefined_bits", p.MaxUndefinedBits, 0, 30},
		{"max_error_combos", p.MaxErrorCombos, 1, 1 << 30},
		{"max_error_keys", p.MaxErrorKeys, 0, 30},
		{"max_evaluations", p.MaxEvaluations, 0, 1<<31 - 1},
	}
	for _, c := range caps {
		if c.val < c.min || c.val > c.max {
			errs = append(errs, ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("must be in [%d, %d], got %d", c.min, c.max, c.val),
				Code:    ErrProfileCapOutOfRange,
			})
		}
	}

	errs = append(errs, validateKeys("known_keys", p.KnownKeys, ErrDuplicateKnownKey)...)
	errs = append(errs, validateKeys("error_candidates", p.ErrorCandidates, ErrDuplicateCandidate)...)

	for i, k := range p.ErrorCandidates {
		if k != "" && !slices.Contains(p.KnownKeys, k) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("error_candidates[%d]", i),
				Message: fmt.Sprintf("error candidate %q is not a known key", k),
				Code:    ErrCandidateNotKnown,
			})
		}
	}

	return errs
}

func validateKeys(field string, keys []string, dupCode string) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(keys))
	for i, k := range keys {
		if k == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "key must be non-empty",
				Code:    ErrEmptyKey,
			})
			continue
		}
		if seen[k] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("duplicate key: %q", k),
				Code:    dupCode,
			})
		}
		seen[k] = true
	}
	return errs
}
