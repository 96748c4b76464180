package clock

import (
	"sync"
	"time"
)

// TestClock is a Clock implementation that allows the current time to be
// manually advanced, for use in deterministic tests.
type TestClock struct {
	mtx          sync.Mutex
	currentTime  time.Time
	tickChannels []*tickChannel

	// tickSignal, if set, is notified whenever a new ticker is
	// registered via TickAfter, so that a test can synchronize on
	// registration before advancing the clock.
	tickSignal chan time.Duration
}

// tickChannel holds a channel that TickAfter returned along with the
// absolute time at which it should fire.
type tickChannel struct {
	expiry time.Time
	ch     chan time.Time
}

// NewTestClock returns a new TestClock with the given start time.
func NewTestClock(startTime time.Time) *TestClock {
	return &TestClock{
		currentTime: startTime,
	}
}

// NewTestClockWithTickSignal returns a new TestClock that notifies the
// given channel with the requested duration every time TickAfter is
// called, before returning the new ticker channel to the caller. This
// lets a test block until a ticker has actually been registered before it
// advances the clock.
func NewTestClockWithTickSignal(startTime time.Time,
	tickSignal chan time.Duration) *TestClock {

	return &TestClock{
		currentTime: startTime,
		tickSignal:  tickSignal,
	}
}

// Now returns the current time as tracked by the TestClock.
//
// NOTE: Part of the Clock interface.
func (c *TestClock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.currentTime
}

// TickAfter returns a channel that ticks once the TestClock's current time
// reaches now+duration, either because SetTime was called with a
// sufficiently advanced time, or because duration is zero or negative.
//
// NOTE: Part of the Clock interface.
func (c *TestClock) TickAfter(duration time.Duration) <-chan time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	ch := make(chan time.Time, 1)
	expiry := c.currentTime.Add(duration)

	if c.tickSignal != nil {
		// Signal registration outside the lock so the test can
		// safely call SetTime without deadlocking against us.
		go func() { c.tickSignal <- duration }()
	}

	if !expiry.After(c.currentTime) {
		ch <- c.currentTime
		return ch
	}

	c.tickChannels = append(c.tickChannels, &tickChannel{
		expiry: expiry,
		ch:     ch,
	})

	return ch
}

// SetTime advances (or, in principle, rewinds) the TestClock's current
// time, firing any ticker whose expiry has now been reached.
func (c *TestClock) SetTime(now time.Time) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.currentTime = now

	remaining := c.tickChannels[:0]
	for _, t := range c.tickChannels {
		if !t.expiry.After(now) {
			t.ch <- now
			continue
		}
		remaining = append(remaining, t)
	}
	c.tickChannels = remaining
}
