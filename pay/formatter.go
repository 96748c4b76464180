package pay

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/lightninglabs/payflow/lntypes"
)

// ErrCollaboratorFailure is emitted when a collaborator (the gossip or
// send subsystem) itself fails to answer a request, as distinct from
// answering with one of the outcomes spec.md §3/§6 enumerate. It is not
// one of the six core error codes spec.md §6 tables, since it does not
// originate from this package's own decision logic; it is kept separate
// so callers can distinguish "we decided to fail you" from "a
// collaborator broke".
const ErrCollaboratorFailure ErrorCode = 1000

// ErrInvalidCommand is emitted for a stratum-1 input-validation failure
// (spec.md §7): malformed invoice, contradictory msatoshi, an
// out-of-range maxfeepercent. The PaymentContext is never constructed
// for these, so there are no attempt counters to report.
const ErrInvalidCommand ErrorCode = 1001

// SuccessReply is the terminal success payload, per spec.md §6.
type SuccessReply struct {
	PaymentPreimage string `json:"payment_preimage"`
	GetrouteTries   int    `json:"getroute_tries"`
	SendpayTries    int    `json:"sendpay_tries"`
}

// FailureReply is the terminal failure payload, per spec.md §6. Data
// carries the per-code fields the table in §6 names; every failure a
// Controller produces also carries the attempt counters, while a
// stratum-1 ErrInvalidCommand failure carries an empty Data.
type FailureReply struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// formatSuccess builds the success reply, grounded on spec.md §4.6 /
// §8's round-trip property (the preimage returned equals the one the
// send collaborator delivered).
func (c *Controller) formatSuccess(preimage lntypes.Preimage) *SuccessReply {
	return &SuccessReply{
		PaymentPreimage: preimage.String(),
		GetrouteTries:   c.pctx.GetrouteTries,
		SendpayTries:    c.pctx.SendpayTries,
	}
}

func (c *Controller) triesData() map[string]any {
	return map[string]any{
		"getroute_tries": c.pctx.GetrouteTries,
		"sendpay_tries":  c.pctx.SendpayTries,
	}
}

// formatExpired builds the INVOICE_EXPIRED failure, per spec.md §6.
func (c *Controller) formatExpired(now time.Time) *FailureReply {
	data := c.triesData()
	data["now"] = now.Unix()
	data["expiry"] = c.pctx.Expiry.Unix()

	return &FailureReply{
		Code:    ErrInvoiceExpired,
		Message: "invoice expired before an attempt could be made",
		Data:    data,
	}
}

// formatRouteNotFound builds the ROUTE_NOT_FOUND failure.
func (c *Controller) formatRouteNotFound() *FailureReply {
	return &FailureReply{
		Code:    ErrRouteNotFound,
		Message: "could not find a route to the destination",
		Data:    c.triesData(),
	}
}

// formatRouteTooExpensive builds the ROUTE_TOO_EXPENSIVE failure.
func (c *Controller) formatRouteTooExpensive(eval FeeEvaluation) *FailureReply {
	data := c.triesData()
	data["fee"] = uint64(eval.Fee)
	data["fee_sat"] = eval.Fee.ToSatoshis()
	data["feepercent"] = eval.FeePercent
	data["msatoshi"] = uint64(c.pctx.Msatoshi)
	data["maxfeepercent"] = c.pctx.MaxFeePercent

	return &FailureReply{
		Code:    ErrRouteTooExpensive,
		Message: "cheapest route available exceeds the fee ceiling",
		Data:    data,
	}
}

// formatReported builds the failure for the three non-retryable sendpay
// outcomes: IN_PROGRESS, RHASH_ALREADY_USED, DESTINATION_PERM_FAIL.
//
// formatReported is the Response Formatter half of the contract spec.md
// §4.3/§9 calls out: a retryable SendpayResult reaching here (instead of
// being intercepted by the Controller's own retry transitions) is a
// classifier/controller wiring bug, not a reportable outcome, and panics
// rather than emitting a malformed reply — the same discipline
// pay.Classifier.Classify applies to an UNPARSEABLE_ONION result.
func (c *Controller) formatReported(result *SendpayResult) *FailureReply {
	data := c.triesData()

	switch result.ErrorCode {
	case SendpayInProgress:
		return &FailureReply{
			Code:    ErrInProgress,
			Message: "a payment for this hash is already in progress",
			Data:    data,
		}

	case SendpayRhashAlreadyUsed:
		return &FailureReply{
			Code:    ErrRhashAlreadyUsed,
			Message: "this payment hash has already been claimed",
			Data:    data,
		}

	case SendpayDestinationPermFail:
		rf := result.RoutingFailure
		if rf != nil {
			data["erring_index"] = rf.ErringIndex
			data["failcode"] = rf.FailCode.String()
			data["erring_node"] = rf.ErringNode.String()
			data["erring_channel"] = rf.ErringChannel
			if rf.ChannelUpdate != nil {
				data["channel_update"] = rf.ChannelUpdate
			}
		}
		return &FailureReply{
			Code:    ErrDestinationPermFail,
			Message: "destination reported a permanent routing failure",
			Data:    data,
		}

	default:
		panic(newPayError("formatReported called with a retryable "+
			"sendpay error code %v; this is a classifier/"+
			"controller wiring bug, not a reportable outcome",
			result.ErrorCode))
	}
}

// newInternalFailure builds a failure reply for a collaborator-level
// transport error, which spec.md's error table does not cover since it
// originates below this package's own decision logic (see
// ErrCollaboratorFailure).
func newInternalFailure(pctx *PaymentContext, err error) *FailureReply {
	return &FailureReply{
		Code:    ErrCollaboratorFailure,
		Message: err.Error(),
		Data: map[string]any{
			"getroute_tries": pctx.GetrouteTries,
			"sendpay_tries":  pctx.SendpayTries,
		},
	}
}

// MarshalJSON emits the failure reply with Message rendered through
// escapeJSONString rather than encoding/json's default \u-escaping, so
// that spec.md §8's control-character invariant holds for this field
// even though Data still goes through the standard encoder.
func (f *FailureReply) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(f.Data)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`{"code":`)
	b.WriteString(strconv.FormatUint(uint64(f.Code), 10))
	b.WriteString(`,"message":`)
	b.WriteString(escapeJSONString(f.Message))
	b.WriteString(`,"data":`)
	b.Write(data)
	b.WriteByte('}')

	return []byte(b.String()), nil
}

// escapeJSONString renders s as a JSON string literal, replacing any
// control-character byte with '?' instead of encoding/json's default
// \u-escape, and escaping '"' and '\' so the result embeds safely in a
// larger JSON document.
//
// Grounded on payalgo.c's own hand-rolled JSON string emission; this is
// a narrow wire-format requirement (spec.md §8's invariant: "control-
// character bytes are replaced by '?'"), not a general JSON encoder, so
// no pack library is a better fit than this function (see DESIGN.md).
func escapeJSONString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c == 0x7f:
			b.WriteByte('?')
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
