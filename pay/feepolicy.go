package pay

// FeeDecision is the Fee Policy's verdict on a proposed route.
type FeeDecision int

const (
	// FeeAccept indicates the route's fee is within the caller's
	// ceiling; the Controller should proceed to sendpay.
	FeeAccept FeeDecision = iota

	// FeeRejectFatal indicates the fee exceeds the ceiling and fuzz has
	// been exhausted; the Controller reports ROUTE_TOO_EXPENSIVE.
	FeeRejectFatal

	// FeeRejectRetry indicates the fee exceeds the ceiling but fuzz can
	// still be lowered; the Controller retries getroute without a send.
	FeeRejectRetry
)

// FeeEvaluation is the full result of evaluating a route's fee, carrying
// the figures the ROUTE_TOO_EXPENSIVE failure reply echoes back (spec.md
// §6).
type FeeEvaluation struct {
	Decision   FeeDecision
	Fee        MilliSatoshi
	FeePercent float64
}

// FeePolicy evaluates a proposed route's fee against the caller's
// ceiling. It does not change fuzz itself; on FeeRejectRetry the
// Controller lowers the PaymentContext's fuzz before the next attempt.
//
// Grounded on the fee-percentage arithmetic in payalgo.c's
// json_pay_getroute_reply (the original this spec distilled from) and on
// lnd's own fee-limit philosophy (LightningPayment.FeeLimit).
type FeePolicy struct {
	// MaxFeePercent is the caller's ceiling, a real in [0.0, 100.0].
	MaxFeePercent float64
}

// Evaluate computes the proposed route's fee and percentage, comparing
// against p.MaxFeePercent, using the current fuzz to decide whether a
// too-high fee should be reported fatally or retried.
//
// The route's first-hop amount is spec.md's `route[0].amount_msat`: the
// total amount the sender dispatches, which this package represents as
// Route.TotalAmount (see route.go).
//
// Numeric note: msatoshi is constrained to <= 2^32-1 (spec.md §4.2), so
// computing feePct in float64 keeps the comparison against MaxFeePercent
// exact to well beyond the 6 significant digits required.
func (p *FeePolicy) Evaluate(route *Route, msatoshi MilliSatoshi,
	fuzz float64) FeeEvaluation {

	fee := route.TotalAmount - msatoshi
	feePct := 100.0 * float64(fee) / float64(msatoshi)

	tooHigh := feePct > p.MaxFeePercent
	if !tooHigh {
		return FeeEvaluation{
			Decision:   FeeAccept,
			Fee:        fee,
			FeePercent: feePct,
		}
	}

	decision := FeeRejectRetry
	if fuzzExhausted(fuzz) {
		decision = FeeRejectFatal
	}

	return FeeEvaluation{
		Decision:   decision,
		Fee:        fee,
		FeePercent: feePct,
	}
}
