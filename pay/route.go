package pay

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// VertexSize is the size in bytes of a route.Vertex, a compressed
// secp256k1 public key.
const VertexSize = 33

// Vertex is a simple alias for the serialized compressed public key of a
// node. This is used to store the node's ID in a compact representation.
//
// Grounded on routing/route (the teacher's route package test survived
// retrieval; its body did not, so the shape here matches what the test
// expects: a fixed-size, hex-stringable, comparable key).
type Vertex [VertexSize]byte

// NewVertex returns a new Vertex given a public key in its compressed
// serialized form. The bytes are parsed as a secp256k1 point so that a
// malformed receiver ID from a decoded invoice is rejected here rather
// than silently carried through as 33 opaque bytes. RoutingFailure's
// ErringNode is not passed through NewVertex.
func NewVertex(pubKey []byte) (Vertex, error) {
	var v Vertex
	if len(pubKey) != VertexSize {
		return v, fmt.Errorf("invalid vertex length: %v, want %v",
			len(pubKey), VertexSize)
	}
	if _, err := btcec.ParsePubKey(pubKey); err != nil {
		return v, fmt.Errorf("invalid vertex pubkey: %w", err)
	}
	copy(v[:], pubKey)
	return v, nil
}

// String returns a human readable version of the vertex.
func (v Vertex) String() string {
	return hex.EncodeToString(v[:])
}

// Hop represents an intermediate or final node of a payment's route. A hop
// is an abstraction that contains the channel that is leading to the
// node and any additional data required to route through it.
type Hop struct {
	// PubKeyBytes is the raw bytes of the public key of the node that is
	// the receiving end of this hop.
	PubKeyBytes Vertex

	// ChannelID is the unique channel ID for this hop's channel.
	ChannelID uint64

	// OutgoingTimeLock is the timelock value that should be used when
	// crafting the *outgoing* HTLC for this hop.
	OutgoingTimeLock uint32

	// AmtToForward is the amount that this hop will forward to the next
	// hop. This amount strictly decreases for each successive hop after
	// fees are subtracted.
	AmtToForward MilliSatoshi
}

// ErrNoRouteHopsProvided is returned when a route is constructed without
// any hops.
var ErrNoRouteHopsProvided = errors.New("at least one route hop is required")

// Route represents a path through the channel graph which the sender of a
// payment uses to dispatch each HTLC leading to the final receiver.
type Route struct {
	// TotalTimeLock is the cumulative timelock across the entire route.
	TotalTimeLock uint32

	// TotalAmount is the total amount dispatched by the sender, which is
	// the amount the first hop forwards plus its fee.
	TotalAmount MilliSatoshi

	// SourcePubKey is the node pubkey of the node originating the route.
	SourcePubKey Vertex

	// Hops contains details concerning the node on this route that an
	// HTLC must traverse.
	Hops []*Hop
}

// NewRouteFromHops creates a new Route structure from the minimally
// required information to represent a route: the total amount and the
// hops the HTLC must traverse.
func NewRouteFromHops(amtToSend MilliSatoshi, timeLock uint32,
	sourceVertex Vertex, hops []*Hop) (*Route, error) {

	if len(hops) == 0 {
		return nil, ErrNoRouteHopsProvided
	}

	return &Route{
		SourcePubKey:  sourceVertex,
		Hops:          hops,
		TotalTimeLock: timeLock,
		TotalAmount:   amtToSend,
	}, nil
}

// TotalFees is the sum of the fees paid at each hop within the final
// route, computed as TotalAmount minus the final hop's AmtToForward. It is
// zero only when the sender dispatches exactly what the final hop forwards.
func (r *Route) TotalFees() MilliSatoshi {
	if len(r.Hops) == 0 {
		return 0
	}
	return r.TotalAmount - r.ReceiverAmt()
}

// ReceiverAmt is the amount received by the final hop of this route.
func (r *Route) ReceiverAmt() MilliSatoshi {
	if len(r.Hops) == 0 {
		return 0
	}
	return r.Hops[len(r.Hops)-1].AmtToForward
}
