package engine

import "sync/atomic"

// Clock is a monotonic logical clock that stamps runs for the journal.
//
// Runs are ordered by seq, never by wall clock, so listing a journal gives
// the same order on every machine. A process resuming against an existing
// journal starts its clock at the journal's last seq (NewClockAt).
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
