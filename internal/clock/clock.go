// Package clock provides the two time sources used by the codex components:
// a monotonic logical sequence for ordering history, and an injectable wall
// clock for record timestamps.
package clock

import (
	"sync/atomic"
	"time"
)

// Seq is a monotonic logical clock.
//
// Unlock history is stamped with Seq values rather than wall-clock time so
// ordering survives clock skew and replays identically.
type Seq struct {
	seq atomic.Int64
}

// NewSeq creates a clock starting at 0. The first Next returns 1.
func NewSeq() *Seq {
	return &Seq{}
}

// Next returns the next sequence number and increments the clock.
func (c *Seq) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Seq) Current() int64 {
	return c.seq.Load()
}

// Wall supplies timestamps for records.
// Implemented by System (production) and testutil.StepClock (tests).
type Wall interface {
	Now() time.Time
}

// System reads the host clock, in UTC.
type System struct{}

// Now returns time.Now in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}
