package engine

import (
	"errors"
	"fmt"
)

// Budget caps the number of hash evaluations spent on one record.
//
// The combination caps in the profile already bound the search; the budget
// is an additional, tighter bound for callers that need a latency ceiling.
// A budget counts ordinals, not wall time, so a budget-limited search stops
// at the same place on every run.
type Budget struct {
	limit int // 0 means unlimited
}

// NewBudget creates a budget of limit evaluations. Zero or less is unlimited.
func NewBudget(limit int) Budget {
	if limit < 0 {
		limit = 0
	}
	return Budget{limit: limit}
}

// Limit returns the evaluation limit, 0 when unlimited.
func (b Budget) Limit() int {
	return b.limit
}

// Unlimited reports whether the budget imposes no limit.
func (b Budget) Unlimited() bool {
	return b.limit == 0
}

// Clamp returns how many of total evaluations the budget allows.
func (b Budget) Clamp(total int) int {
	if b.Unlimited() || total <= b.limit {
		return total
	}
	return b.limit
}

// Check validates that a search of total evaluations fits the budget.
//
// Returns BudgetExceededError if it does not.
func (b Budget) Check(total int) error {
	if b.Unlimited() || total <= b.limit {
		return nil
	}
	return &BudgetExceededError{
		Evaluations: total,
		Limit:       b.limit,
	}
}

// BudgetExceededError reports a search space larger than the evaluation
// budget. The search still returns a result; the error only explains why
// the result is strategy "budget" rather than "exhausted".
type BudgetExceededError struct {
	Evaluations int // Size of the hypothesis space
	Limit       int // Evaluations allowed
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("search space of %d evaluations exceeds budget of %d", e.Evaluations, e.Limit)
}

// IsBudgetExceeded returns true if the error is a BudgetExceededError.
// Uses errors.As to handle wrapped errors.
func IsBudgetExceeded(err error) bool {
	var be *BudgetExceededError
	return errors.As(err, &be)
}
