// Package clock provides the wall-clock dependency the incident
// controller uses to time a blockage's restoration. It is deliberately
// decoupled from simulated time (sim.Model's own dt bookkeeping): an
// incident's 8 second clearance is tied to human perception of "how long
// was the road blocked", not to config.TimeScale (spec §5, §9).
package clock

import "time"

// WallClock is the injectable timer boundary. Real deployments use
// SystemClock; tests substitute a FakeClock they advance synthetically.
type WallClock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the subset of time.Timer the incident controller needs: the
// ability to cancel a pending restoration if the incident is cleared early.
type Timer interface {
	Stop() bool
}

// SystemClock is the real wall-clock, backed by the time package.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FakeClock is a synthetic clock for tests: Now() is whatever was last set
// with Advance, and AfterFunc callbacks fire (synchronously, on the calling
// goroutine) the moment Advance crosses their deadline.
type FakeClock struct {
	now     time.Time
	pending []*fakeTimer
}

// NewFakeClock creates a FakeClock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time { return c.now }

func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{deadline: c.now.Add(d), fn: f}
	c.pending = append(c.pending, t)
	return t
}

// Advance moves the fake clock forward by d, firing and removing any
// pending timers whose deadline has passed.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	remaining := c.pending[:0]
	for _, t := range c.pending {
		if t.stopped {
			continue
		}
		if !c.now.Before(t.deadline) {
			t.fn()
			continue
		}
		remaining = append(remaining, t)
	}
	c.pending = remaining
}

type fakeTimer struct {
	deadline time.Time
	fn       func()
	stopped  bool
}

func (t *fakeTimer) Stop() bool {
	already := t.stopped
	t.stopped = true
	return !already
}
