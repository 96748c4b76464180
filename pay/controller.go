package pay

import (
	"context"
	"time"

	"github.com/aponysus/recourse/classify"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightninglabs/payflow/clock"
	"github.com/lightninglabs/payflow/ticker"
)

// state is one of the five states of the Retry Controller's state
// machine, per spec.md §4.1.
type state int

const (
	stateIdle state = iota
	stateAwaitingRoute
	stateAwaitingSend
	stateDelayed
	stateDone
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaitingRoute:
		return "awaiting_route"
	case stateAwaitingSend:
		return "awaiting_send"
	case stateDelayed:
		return "delayed"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// routeReplyMsg and sendReplyMsg are what the collaborator-calling
// goroutines deliver back to the Controller's single loop goroutine. Each
// is tagged with the arena it was dispatched under, which doubles as the
// Design Note §9 "weak handle": if the arena has since been released
// (superseded by a later attempt, or the payment cancelled), the message
// is dropped without touching PaymentContext.
type routeReplyMsg struct {
	arena *arena
	reply *RouteReply
	err   error
}

type sendReplyMsg struct {
	arena  *arena
	result *SendpayResult
	err    error
}

// Controller is the Retry Controller / state machine: the orchestrator
// proper. It holds the invariant PaymentContext, drives attempts through
// RouteFinder and PaymentSender, and emits exactly one terminal reply.
//
// Grounded on routing.paymentLifecycle's resumePayment select-driven
// lifecycle loop (routing/payment_lifecycle.go): replies from
// collaborators re-enter the Controller's single loop goroutine over
// channels rather than invoking callbacks on an arbitrary goroutine,
// which is what lets PaymentContext be touched without a mutex (spec.md
// §5).
type Controller struct {
	pctx *PaymentContext

	finder     RouteFinder
	sender     PaymentSender
	classifier classify.Classifier
	feePolicy  *FeePolicy
	clock      clock.Clock
	newTicker  func(time.Duration) ticker.Ticker

	senderID Vertex

	state state

	baseCtx    context.Context
	cancelFunc context.CancelFunc
	attemptCtx context.Context

	routeReplies chan routeReplyMsg
	sendReplies  chan sendReplyMsg
	delayChan    <-chan time.Time

	done    chan struct{}
	success *SuccessReply
	failure *FailureReply
}

// ControllerConfig bundles a Controller's collaborators and policy
// parameters. Collaborator fields are required; Clock and NewTicker
// default to the production implementations when left nil, letting tests
// inject clock.TestClock and ticker.MockNew.
type ControllerConfig struct {
	RouteFinder   RouteFinder
	PaymentSender PaymentSender
	SenderID      Vertex
	Clock         clock.Clock
	NewTicker     func(time.Duration) ticker.Ticker
}

// NewController constructs a Controller for the given PaymentContext. The
// returned Controller has not started any attempt; call Start.
func NewController(parent context.Context, pctx *PaymentContext,
	cfg ControllerConfig) *Controller {

	ctx, cancel := context.WithCancel(parent)

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	newTicker := cfg.NewTicker
	if newTicker == nil {
		newTicker = func(d time.Duration) ticker.Ticker {
			return ticker.New(d)
		}
	}

	classifier, ok := NewClassifierRegistry().Get(classifierRegistryName)
	if !ok {
		// Unreachable: NewClassifierRegistry always registers this
		// name itself.
		classifier = Classifier{}
	}

	return &Controller{
		pctx:         pctx,
		finder:       cfg.RouteFinder,
		sender:       cfg.PaymentSender,
		classifier:   classifier,
		feePolicy:    &FeePolicy{MaxFeePercent: pctx.MaxFeePercent},
		clock:        clk,
		newTicker:    newTicker,
		senderID:     cfg.SenderID,
		state:        stateIdle,
		baseCtx:      ctx,
		cancelFunc:   cancel,
		routeReplies: make(chan routeReplyMsg, 1),
		sendReplies:  make(chan sendReplyMsg, 1),
		done:         make(chan struct{}),
	}
}

// Start begins the state machine. If the invoice is already expired, it
// completes synchronously; otherwise it dispatches the first getroute
// attempt and runs the loop on a new goroutine, per spec.md §4.1's public
// contract ("returns either a completed result synchronously ... or a
// pending handle").
func (c *Controller) Start() {
	c.beginAttempt(false)
	if c.state == stateDone {
		close(c.done)
		return
	}
	go c.run()
}

// Done returns a channel that is closed once a terminal reply has been
// produced, or the Controller was cancelled before completing.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Result returns the terminal replies. Exactly one of the two return
// values is non-nil once Done() is closed; both are nil if the Controller
// was cancelled before any attempt completed.
func (c *Controller) Result() (*SuccessReply, *FailureReply) {
	return c.success, c.failure
}

// Cancel frees the PaymentContext's current arena and stops the loop.
// Per spec.md §5, no terminal reply is emitted after cancellation if one
// had not already been produced.
func (c *Controller) Cancel() {
	c.cancelFunc()
}

// run is the Controller's single loop goroutine. All PaymentContext
// mutation happens here; collaborator calls run on their own goroutines
// and report back over routeReplies/sendReplies.
func (c *Controller) run() {
	for {
		select {
		case <-c.baseCtx.Done():
			c.pctx.arena.release()
			close(c.done)
			return

		case msg := <-c.routeReplies:
			if !c.accept(msg.arena) {
				continue
			}
			c.handleRouteReply(msg)

		case msg := <-c.sendReplies:
			if !c.accept(msg.arena) {
				continue
			}
			c.handleSendReply(msg)

		case t := <-c.delayChan:
			c.delayChan = nil
			if c.baseCtx.Err() != nil {
				continue
			}
			log.Tracef("PAY: retry delay elapsed at %v", t)
			c.beginAttempt(false)
		}

		if c.state == stateDone {
			close(c.done)
			return
		}
	}
}

// accept reports whether msgArena is still the PaymentContext's live
// arena and the Controller has not been cancelled, dropping messages
// tagged with a superseded or released arena (Design Note §9's "resolve
// the weak handle before dereferencing").
func (c *Controller) accept(msgArena *arena) bool {
	return c.baseCtx.Err() == nil && msgArena != nil &&
		msgArena == c.pctx.arena && msgArena.isLive()
}

// beginAttempt enters AwaitingRoute. If keepArena is false (every
// transition except the AwaitingSend "retry immediately on any other
// TRY_OTHER_ROUTE failcode" case, per spec.md §4.4), the prior arena is
// released and a fresh one created first.
func (c *Controller) beginAttempt(keepArena bool) {
	now := c.clock.Now()
	if !now.Before(c.pctx.Expiry) {
		c.finish(nil, c.formatExpired(now))
		return
	}

	if !keepArena || c.pctx.arena == nil {
		c.pctx.arena.release()
		a, ctx := newArena(c.baseCtx)
		c.pctx.arena = a
		c.attemptCtx = ctx
	}

	c.pctx.GetrouteTries++

	seed, err := newFuzzSeed()
	if err != nil {
		c.finish(nil, newInternalFailure(c.pctx, err))
		return
	}

	req := &RouteRequest{
		SenderID:           c.senderID,
		ReceiverID:         c.pctx.ReceiverID,
		AmountMsat:         c.pctx.Msatoshi,
		RiskFactorScaled:   c.pctx.RiskFactorScaled,
		MinFinalCLTVExpiry: c.pctx.MinFinalCLTVExpiry,
		Fuzz:               c.pctx.Fuzz,
		Seed:               seed,
	}

	c.state = stateAwaitingRoute
	arenaRef := c.pctx.arena
	finder := c.finder
	attemptCtx := c.attemptCtx

	go func() {
		reply, err := finder.FindRoute(attemptCtx, req)
		select {
		case c.routeReplies <- routeReplyMsg{arena: arenaRef, reply: reply, err: err}:
		case <-c.baseCtx.Done():
		}
	}()
}

// handleRouteReply implements the AwaitingRoute transitions of spec.md
// §4.1, driven by the Fee Policy for a non-empty route.
func (c *Controller) handleRouteReply(msg routeReplyMsg) {
	if msg.err != nil {
		c.finish(nil, newInternalFailure(c.pctx, msg.err))
		return
	}

	if msg.reply == nil || msg.reply.Route == nil || len(msg.reply.Route.Hops) == 0 {
		c.finish(nil, c.formatRouteNotFound())
		return
	}

	route := msg.reply.Route
	log.Tracef("PAY: evaluating route: %v", spew.Sdump(route))

	eval := c.feePolicy.Evaluate(route, c.pctx.Msatoshi, c.pctx.Fuzz)
	switch eval.Decision {
	case FeeRejectFatal:
		c.finish(nil, c.formatRouteTooExpensive(eval))

	case FeeRejectRetry:
		c.pctx.lowerFuzz()
		c.beginAttempt(false)

	case FeeAccept:
		c.dispatchSend(route)
	}
}

// dispatchSend implements the AwaitingRoute -> AwaitingSend transition.
func (c *Controller) dispatchSend(route *Route) {
	c.pctx.SendpayTries++
	c.pctx.arena.route = route

	log.Tracef("PAY: dispatching send from %v, total_timelock=%v "+
		"total_fees=%v", route.SourcePubKey, route.TotalTimeLock,
		route.TotalFees())
	for i, hop := range route.Hops {
		log.Tracef("PAY: hop %d: chan=%v node=%v amt=%v timelock=%v",
			i, hop.ChannelID, hop.PubKeyBytes, hop.AmtToForward,
			hop.OutgoingTimeLock)
	}

	req := &SendRequest{
		PaymentHash: c.pctx.PaymentHash,
		Route:       route,
	}

	c.state = stateAwaitingSend
	arenaRef := c.pctx.arena
	sender := c.sender
	attemptCtx := c.attemptCtx

	go func() {
		result, err := sender.Send(attemptCtx, req)
		select {
		case c.sendReplies <- sendReplyMsg{arena: arenaRef, result: result, err: err}:
		case <-c.baseCtx.Done():
		}
	}()
}

// handleSendReply implements the AwaitingSend transitions of spec.md
// §4.1, driven by the Error Classifier.
func (c *Controller) handleSendReply(msg sendReplyMsg) {
	outcome := c.classifier.Classify(msg.result, msg.err)

	switch outcome.Kind {
	case classify.OutcomeSuccess:
		c.finish(c.formatSuccess(msg.result.Preimage), nil)

	case classify.OutcomeNonRetryable:
		c.finish(nil, c.formatReported(msg.result))

	case classify.OutcomeRetryable:
		if outcome.BackoffOverride > 0 {
			c.enterDelayed(outcome.BackoffOverride)
			return
		}
		// Retry immediately; the TRY_OTHER_ROUTE/any-other-failcode
		// transition keeps the arena (spec.md §4.4's exception).
		c.beginAttempt(true)

	case classify.OutcomeAbort:
		panic(newPayError("classifier aborted: %v", outcome.Reason))
	}
}

// enterDelayed implements the AwaitingSend -> Delayed -> AwaitingRoute
// path, scheduling the block-height-disagreement retry delay on a
// ticker.Ticker owned by the current arena.
func (c *Controller) enterDelayed(d time.Duration) {
	t := c.newTicker(d)
	t.Resume()

	c.pctx.arena.delay = t
	c.state = stateDelayed
	c.delayChan = t.Ticks()
}

// finish records the terminal reply and transitions to Done. Per spec.md
// §3's invariant, this is called at most once per PaymentContext; run's
// loop exits immediately afterward.
func (c *Controller) finish(success *SuccessReply, failure *FailureReply) {
	c.pctx.arena.release()
	c.success = success
	c.failure = failure
	c.state = stateDone
}
