package pay

import (
	"time"

	"github.com/lightninglabs/payflow/lntypes"
)

// InitialFuzz is the starting value of a PaymentContext's fuzz parameter.
const InitialFuzz = 0.75

// FuzzStep is the amount fuzz is lowered by on each fee-too-high retry.
const FuzzStep = 0.15

// FuzzFloor is the threshold below which fuzz is treated as exhausted.
const FuzzFloor = 0.01

// PaymentContext holds the invariant parameters and mutable per-attempt
// counters of one outstanding pay command. Its lifetime runs from command
// receipt to the single terminal reply.
//
// Grounded on the original's `struct pay` in payalgo.c; fields carry the
// same names translated to Go's idiom (payment_hash -> PaymentHash, etc).
type PaymentContext struct {
	// PaymentHash is the 32-byte identifier of the payment preimage.
	PaymentHash lntypes.Hash

	// ReceiverID is the destination node's public key.
	ReceiverID Vertex

	// Expiry is the absolute wall-clock deadline after which new
	// attempts must not start.
	Expiry time.Time

	// MinFinalCLTVExpiry is the integer block-height delta required at
	// the final hop.
	MinFinalCLTVExpiry uint32

	// Msatoshi is the target amount in millisatoshi.
	Msatoshi MilliSatoshi

	// RiskFactorScaled is the caller's risk parameter times 1000, scaled
	// for the route request.
	RiskFactorScaled uint32

	// MaxFeePercent is the ceiling, a real in [0.0, 100.0].
	MaxFeePercent float64

	// GetrouteTries and SendpayTries are monotonic counters, both
	// starting at 0. GetrouteTries >= SendpayTries always holds.
	GetrouteTries int
	SendpayTries  int

	// Fuzz is a real in [0.0, 0.75], starting at InitialFuzz, decreasing
	// by FuzzStep on a fee-too-high retry, clamped to >= 0.0.
	Fuzz float64

	// arena is the owning handle to the current attempt's allocations;
	// replaced at every attempt boundary.
	arena *arena
}

// lowerFuzz applies one fee-too-high retry step, clamping at zero.
func (p *PaymentContext) lowerFuzz() {
	p.Fuzz -= FuzzStep
	if p.Fuzz < 0 {
		p.Fuzz = 0
	}
}

// fuzzExhausted reports whether fuzz has fallen below the floor at which
// the Fee Policy stops retrying and reports ROUTE_TOO_EXPENSIVE instead.
// FeePolicy.Evaluate calls this directly on the raw fuzz value it is
// passed rather than threading a *PaymentContext through.
func fuzzExhausted(fuzz float64) bool {
	return fuzz < FuzzFloor
}
