package ticker

import "time"

// Ticker is an interface which describes an object capable of ticking
// periodically. It is used as an abstraction so that real tickers and test
// tickers can be used interchangeably by code that needs to suspend itself
// until a timer fires.
type Ticker interface {
	// Ticks returns a channel that delivers the time whenever the
	// ticker fires while active.
	Ticks() <-chan time.Time

	// Resume starts the ticker, causing it to begin delivering ticks.
	Resume()

	// Pause suspends the ticker so that Ticks no longer signals.
	Pause()

	// Stop suspends the ticker and permanently frees up any resources
	// it holds. A stopped ticker must not be resumed.
	Stop()
}

// Default is a Ticker backed by the standard library's time.Ticker.
type Default struct {
	*time.Ticker

	paused   bool
	interval time.Duration
}

// New returns a new Default ticker with the given interval, initially
// active.
func New(interval time.Duration) *Default {
	return &Default{
		Ticker:   time.NewTicker(interval),
		interval: interval,
	}
}

// Ticks returns a channel that delivers the time whenever the ticker
// fires.
//
// NOTE: Part of the Ticker interface.
func (d *Default) Ticks() <-chan time.Time {
	return d.Ticker.C
}

// Resume restarts the ticker if it had previously been paused.
//
// NOTE: Part of the Ticker interface.
func (d *Default) Resume() {
	if d.paused {
		d.Ticker.Reset(d.interval)
		d.paused = false
	}
}

// Pause stops the ticker from delivering further ticks without releasing
// its underlying resources.
//
// NOTE: Part of the Ticker interface.
func (d *Default) Pause() {
	d.Ticker.Stop()
	d.paused = true
}

// Stop permanently stops the ticker.
//
// NOTE: Part of the Ticker interface.
func (d *Default) Stop() {
	d.Ticker.Stop()
}
