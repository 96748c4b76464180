package pay

import (
	"context"
	"math"
	"time"

	"github.com/lightninglabs/payflow/clock"
	"github.com/lightninglabs/payflow/lntypes"
	"github.com/lightninglabs/payflow/ticker"
)

// DefaultRiskFactor and DefaultMaxFeePercent are the defaults spec.md §6
// assigns to a pay Command's optional fields.
const (
	DefaultRiskFactor    = 1.0
	DefaultMaxFeePercent = 0.5
)

// Command is the caller-supplied input to a pay invocation, per spec.md
// §6.
type Command struct {
	Bolt11 string `json:"bolt11"`

	// Msatoshi is required iff the invoice omits an amount, and
	// forbidden otherwise.
	Msatoshi *uint64 `json:"msatoshi,omitempty"`

	// Description is required iff the invoice carries a description
	// hash rather than a plain description.
	Description string `json:"description,omitempty"`

	RiskFactor    float64 `json:"riskfactor,omitempty"`
	MaxFeePercent float64 `json:"maxfeepercent,omitempty"`
}

// DecodedInvoice is the subset of a decoded BOLT11 invoice this package
// needs. Decoding itself is out of scope per spec.md §1.
type DecodedInvoice struct {
	PaymentHash lntypes.Hash

	// ReceiverIDPubKey is the destination node's public key in its
	// 33-byte compressed secp256k1 form, as carried by the invoice. Pay
	// parses this into a Vertex via NewVertex, rejecting a malformed
	// destination at stratum 1 rather than carrying opaque bytes into
	// the PaymentContext.
	ReceiverIDPubKey []byte

	Expiry             time.Time
	MinFinalCLTVExpiry uint32
	Msatoshi           MilliSatoshi // zero if the invoice carries no amount
	HasDescriptionHash bool
}

// InvoiceDecoder is the narrow interface the BOLT11-decoding collaborator
// must satisfy.
type InvoiceDecoder interface {
	Decode(bolt11 string) (*DecodedInvoice, error)
}

// Deps bundles a pay invocation's collaborators and policy parameters.
// Clock and NewTicker default to the production implementations when
// left nil.
type Deps struct {
	Decoder  InvoiceDecoder
	Finder   RouteFinder
	Sender   PaymentSender
	SenderID Vertex

	Clock     clock.Clock
	NewTicker func(time.Duration) ticker.Ticker
}

// validationFailure builds a stratum-1 failure reply: malformed input
// rejected before a PaymentContext is ever constructed, per spec.md §7.
func validationFailure(msg string) *FailureReply {
	return &FailureReply{
		Code:    ErrInvalidCommand,
		Message: msg,
		Data:    map[string]any{},
	}
}

// validate checks cmd against spec.md §6/§7's stratum-1 rules, returning
// a descriptive failure for the first violation found.
func validate(cmd *Command, inv *DecodedInvoice) *FailureReply {
	if cmd.Bolt11 == "" {
		return validationFailure("bolt11 is required")
	}

	amountInInvoice := inv.Msatoshi != 0
	amountInCommand := cmd.Msatoshi != nil

	if amountInInvoice && amountInCommand {
		return validationFailure("msatoshi is forbidden when the " +
			"invoice already specifies an amount")
	}
	if !amountInInvoice && !amountInCommand {
		return validationFailure("msatoshi is required when the " +
			"invoice does not specify an amount")
	}
	if (amountInCommand && *cmd.Msatoshi > math.MaxUint32) ||
		inv.Msatoshi > math.MaxUint32 {

		return validationFailure("msatoshi must not exceed 4294967295")
	}

	if inv.HasDescriptionHash && cmd.Description == "" {
		return validationFailure("description is required for an " +
			"invoice using a description hash")
	}

	if cmd.MaxFeePercent < 0 || cmd.MaxFeePercent > 100 {
		return validationFailure("maxfeepercent must be in [0.0, 100.0]")
	}

	return nil
}

// Pay is the Command Layer's entry point: it validates cmd (spec.md §7
// stratum 1), decodes the invoice, constructs the PaymentContext, and
// drives it to a terminal reply through a Controller. It blocks until
// the payment reaches Done or ctx is cancelled.
//
// Grounded on json_pay/json_pay_try in payalgo.c: the same
// parse-validate-then-hand-off-to-the-state-machine shape, rendered here
// as a blocking call rather than the original's continuation-passing
// style, since the caller is already on its own goroutine per command in
// idiomatic Go (spec.md §4.1's "completed result synchronously ... or a
// pending handle, notified via a single terminal callback" is satisfied
// either way: Done()/Result() on the underlying Controller give the
// async form to any caller that wants it instead of calling Pay).
func Pay(ctx context.Context, cmd *Command, deps Deps) (*SuccessReply, *FailureReply) {
	if deps.Decoder == nil {
		return nil, validationFailure("no invoice decoder configured")
	}

	inv, err := deps.Decoder.Decode(cmd.Bolt11)
	if err != nil {
		return nil, validationFailure("could not decode bolt11: " + err.Error())
	}

	riskFactor := cmd.RiskFactor
	if riskFactor == 0 {
		riskFactor = DefaultRiskFactor
	}
	maxFeePercent := cmd.MaxFeePercent
	if maxFeePercent == 0 {
		maxFeePercent = DefaultMaxFeePercent
	}

	cmdCopy := *cmd
	cmdCopy.MaxFeePercent = maxFeePercent
	if failure := validate(&cmdCopy, inv); failure != nil {
		return nil, failure
	}

	receiverID, err := NewVertex(inv.ReceiverIDPubKey)
	if err != nil {
		return nil, validationFailure("invoice carries a malformed " +
			"destination pubkey: " + err.Error())
	}

	msatoshi := inv.Msatoshi
	if msatoshi == 0 {
		msatoshi = MilliSatoshi(*cmd.Msatoshi)
	}

	pctx := &PaymentContext{
		PaymentHash:        inv.PaymentHash,
		ReceiverID:         receiverID,
		Expiry:             inv.Expiry,
		MinFinalCLTVExpiry: inv.MinFinalCLTVExpiry,
		Msatoshi:           msatoshi,
		RiskFactorScaled:   uint32(riskFactor * 1000),
		MaxFeePercent:      maxFeePercent,
		Fuzz:               InitialFuzz,
	}

	controller := NewController(ctx, pctx, ControllerConfig{
		RouteFinder:   deps.Finder,
		PaymentSender: deps.Sender,
		SenderID:      deps.SenderID,
		Clock:         deps.Clock,
		NewTicker:     deps.NewTicker,
	})
	controller.Start()

	select {
	case <-controller.Done():
		return controller.Result()
	case <-ctx.Done():
		controller.Cancel()
		<-controller.Done()
		return nil, nil
	}
}
