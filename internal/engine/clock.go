package engine

import "sync/atomic"

// SeqClock stamps events with strictly increasing seq numbers.
// Implemented by Clock and by testutil.Seq.
type SeqClock interface {
	Next() int64
	Current() int64
}

// Clock is the logical clock behind event seqs. The log's order is the
// clock's order, never wall time, so a replay reproduces every seq.
type Clock struct {
	seq atomic.Int64
}

var _ SeqClock = (*Clock)(nil)

// NewClock returns a clock for an empty log.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock for a log whose last event is last.
func NewClockAt(last int64) *Clock {
	c := &Clock{}
	c.seq.Store(last)
	return c
}

// Next stamps a new event.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current is the seq of the newest event, or zero for an empty log.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
