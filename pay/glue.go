package pay

import (
	"context"
	"crypto/rand"
	"encoding/binary"

	"github.com/lightninglabs/payflow/lntypes"
)

// RouteRequest is the record sent to the gossip collaborator to ask for a
// route. Grounded on spec.md §4.5 and §6's wire-format table.
type RouteRequest struct {
	SenderID           Vertex
	ReceiverID         Vertex
	AmountMsat         MilliSatoshi
	RiskFactorScaled   uint32
	MinFinalCLTVExpiry uint32
	Fuzz               float64
	Seed               uint64
}

// RouteReply is the gossip collaborator's answer to a RouteRequest. An
// empty Route means no path was found.
type RouteReply struct {
	Route *Route
}

// RouteFinder is the narrow interface the gossip/routing collaborator
// must satisfy. It is out of scope per spec.md §1; this package only
// depends on this contract.
//
// Grounded on routing.PaymentSession's RequestRoute shape
// (routing/payment_session.go), adapted to this package's async
// request/reply split (spec.md §4.5, §5).
type RouteFinder interface {
	// FindRoute dispatches req and returns the reply, or an error if the
	// collaborator itself failed (as distinct from "found no route",
	// which is represented by an empty Route in the reply).
	FindRoute(ctx context.Context, req *RouteRequest) (*RouteReply, error)
}

// SendpayErrorCode enumerates the outcomes the payment-send collaborator
// can report for one attempt, per spec.md §3.
type SendpayErrorCode int

const (
	sendpayNone SendpayErrorCode = iota

	// SendpayInProgress indicates a payment for this hash is already
	// outstanding.
	SendpayInProgress

	// SendpayRhashAlreadyUsed indicates the preimage for this hash has
	// already been revealed.
	SendpayRhashAlreadyUsed

	// SendpayUnparseableOnion indicates the final hop's error onion
	// could not be decrypted. Per spec.md §4.1/§4.3 this must never
	// reach the Retry Controller as a terminal outcome; its arrival
	// here is a send collaborator contract violation.
	SendpayUnparseableOnion

	// SendpayDestinationPermFail indicates a permanent routing failure
	// reported by the final hop.
	SendpayDestinationPermFail

	// SendpayTryOtherRoute indicates a retryable routing failure; the
	// accompanying RoutingFailure.FailCode distinguishes immediate retry
	// from the delayed block-height-disagreement path.
	SendpayTryOtherRoute
)

// RoutingFailure carries the onion-failure detail attached to a
// DESTINATION_PERM_FAIL or TRY_OTHER_ROUTE outcome.
type RoutingFailure struct {
	ErringIndex   int
	FailCode      FailCode
	ErringNode    Vertex
	ErringChannel uint64
	ChannelUpdate []byte
}

// SendpayResult is the outcome reported by the payment-send collaborator
// for one attempt, per spec.md §3.
type SendpayResult struct {
	Succeeded bool

	// Preimage is set iff Succeeded.
	Preimage lntypes.Preimage

	// ErrorCode, RoutingFailure and Details are set iff !Succeeded.
	ErrorCode      SendpayErrorCode
	RoutingFailure *RoutingFailure
	Details        string
}

// SendRequest is the record dispatched to the payment-send collaborator
// for one attempt, per spec.md §4.5.
type SendRequest struct {
	PaymentHash lntypes.Hash
	Route       *Route
}

// PaymentSender is the narrow interface the payment-send collaborator
// must satisfy. Out of scope per spec.md §1.
//
// Grounded on the continuation-callback shape of shardHandler.launchShard
// / collectResultAsync in routing/payment_lifecycle.go, adapted to this
// package's single-shard (no MPP) contract.
type PaymentSender interface {
	// Send dispatches req and returns the collaborator's resolution
	// exactly once, or an error if the collaborator itself failed to
	// accept the request.
	Send(ctx context.Context, req *SendRequest) (*SendpayResult, error)
}

// newFuzzSeed produces a fresh 64-bit random seed for one route request,
// per spec.md §4.5 ("a fresh 64-bit random seed to make fuzzing
// unpredictable per attempt").
//
// Grounded on the teacher's own use of a CSPRNG for key material
// elsewhere (e.g. generateNewSessionKey); crypto/rand is the standard
// library's own answer here and no pack library supplies a better-suited
// wrapper for a bare random uint64 (see DESIGN.md).
func newFuzzSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
