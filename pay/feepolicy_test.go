package pay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// oneHopRoute builds a single-hop route dispatching total msatoshi, with
// the hop forwarding the fixed 10000 msatoshi every test in this package
// targets as msatoshi, so route.TotalFees() agrees with the fee
// FeePolicy.Evaluate computes independently from TotalAmount.
func oneHopRoute(total MilliSatoshi) *Route {
	route, err := NewRouteFromHops(total, 144, Vertex{0xaa}, []*Hop{
		{
			PubKeyBytes:      Vertex{1},
			ChannelID:        12345,
			OutgoingTimeLock: 100,
			AmtToForward:     10000,
		},
	})
	if err != nil {
		panic(err)
	}
	return route
}

// TestFeePolicyAccept covers spec.md scenario 1: a route whose fee is
// comfortably under the ceiling is accepted outright.
func TestFeePolicyAccept(t *testing.T) {
	policy := &FeePolicy{MaxFeePercent: 0.5}
	route := oneHopRoute(10040)

	eval := policy.Evaluate(route, 10000, InitialFuzz)

	require.Equal(t, FeeAccept, eval.Decision)
	require.Equal(t, MilliSatoshi(40), eval.Fee)
	require.InDelta(t, 0.4, eval.FeePercent, 1e-9)
}

// TestFeePolicyRejectRetry covers spec.md scenario 2's first attempt: the
// fee is too high but fuzz has room to lower, so the controller should
// retry rather than report fatally.
func TestFeePolicyRejectRetry(t *testing.T) {
	policy := &FeePolicy{MaxFeePercent: 0.5}
	route := oneHopRoute(10100)

	eval := policy.Evaluate(route, 10000, InitialFuzz)

	require.Equal(t, FeeRejectRetry, eval.Decision)
	require.InDelta(t, 1.0, eval.FeePercent, 1e-9)
}

// TestFeePolicyRejectFatal covers spec.md scenario 3's final attempt:
// fuzz has fallen below the floor, so an over-ceiling fee is now fatal.
func TestFeePolicyRejectFatal(t *testing.T) {
	policy := &FeePolicy{MaxFeePercent: 0.5}
	route := oneHopRoute(10100)

	eval := policy.Evaluate(route, 10000, 0.0)

	require.Equal(t, FeeRejectFatal, eval.Decision)
	require.Equal(t, MilliSatoshi(100), eval.Fee)
	require.InDelta(t, 1.0, eval.FeePercent, 1e-9)
}

// TestPaymentContextLowerFuzz exercises spec.md §8's quantified invariant:
// fuzz is monotonically non-increasing, and each step subtracts exactly
// FuzzStep, clamped to zero.
func TestPaymentContextLowerFuzz(t *testing.T) {
	pctx := &PaymentContext{Fuzz: InitialFuzz}

	want := []float64{0.60, 0.45, 0.30, 0.15, 0.00, 0.00}
	for i, w := range want {
		pctx.lowerFuzz()
		require.InDelta(t, w, pctx.Fuzz, 1e-9, "step %d", i)
	}
}
