package pay

import (
	"context"

	"github.com/lightninglabs/payflow/ticker"
)

// arena is a scoped ownership region re-created per attempt. It owns
// everything that must not outlive the attempt it was created for: the
// in-flight request's cancel function, the route handed to the send
// collaborator (once one is accepted), and any timer running on this
// attempt's behalf.
//
// Grounded on spec.md §4.4 and Design Note §9's "explicit arena/region
// type whose destructor runs on attempt boundary"; the teacher has no
// direct analogue (Go has no manual allocator to mirror tal()), so this
// type is authored fresh around the ticker.Ticker abstraction
// (github.com/lightningnetwork/lnd/ticker, reauthored locally since only
// ticker.Mock survived retrieval).
type arena struct {
	cancel context.CancelFunc

	// delay, if non-nil, is the retry-delay timer owned by this arena.
	// It is created only when the Controller enters the Delayed state.
	delay ticker.Ticker

	route *Route

	released bool
}

// newArena creates a fresh arena as a child of the given context,
// returning the region and a context attempts should use for outbound
// requests.
func newArena(parent context.Context) (*arena, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &arena{cancel: cancel}, ctx
}

// release frees everything the arena owns: it stops any delay timer,
// cancels the in-flight request's context (causing any still-outstanding
// collaborator call to treat this attempt as abandoned), and marks the
// arena dead so a stray late reply can detect it has been superseded.
//
// Grounded on spec.md §3's invariant that attempt_arena is replaced only
// at an attempt boundary, and §5's cancellation requirement that pending
// callbacks be detached before they dereference a gone owner.
func (a *arena) release() {
	if a == nil || a.released {
		return
	}
	a.released = true
	if a.delay != nil {
		a.delay.Stop()
	}
	a.cancel()
}

func (a *arena) isLive() bool {
	return a != nil && !a.released
}
