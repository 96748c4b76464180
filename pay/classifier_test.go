package pay

import (
	"testing"

	"github.com/aponysus/recourse/classify"
	"github.com/stretchr/testify/require"
)

func TestClassifierSuccess(t *testing.T) {
	c := Classifier{}
	outcome := c.Classify(&SendpayResult{Succeeded: true}, nil)
	require.Equal(t, classify.OutcomeSuccess, outcome.Kind)
}

func TestClassifierNonRetryable(t *testing.T) {
	c := Classifier{}

	codes := []SendpayErrorCode{
		SendpayInProgress,
		SendpayRhashAlreadyUsed,
		SendpayDestinationPermFail,
	}
	for _, code := range codes {
		outcome := c.Classify(&SendpayResult{ErrorCode: code}, nil)
		require.Equal(t, classify.OutcomeNonRetryable, outcome.Kind)
	}
}

func TestClassifierTryOtherRouteImmediate(t *testing.T) {
	c := Classifier{}

	result := &SendpayResult{
		ErrorCode:      SendpayTryOtherRoute,
		RoutingFailure: &RoutingFailure{FailCode: FailOther},
	}
	outcome := c.Classify(result, nil)

	require.Equal(t, classify.OutcomeRetryable, outcome.Kind)
	require.Zero(t, outcome.BackoffOverride)
}

func TestClassifierTryOtherRouteDelayed(t *testing.T) {
	c := Classifier{}

	for _, fc := range []FailCode{
		FailExpiryTooFar, FailExpiryTooSoon, FailFinalExpiryTooSoon,
	} {
		result := &SendpayResult{
			ErrorCode:      SendpayTryOtherRoute,
			RoutingFailure: &RoutingFailure{FailCode: fc},
		}
		outcome := c.Classify(result, nil)

		require.Equal(t, classify.OutcomeRetryable, outcome.Kind)
		require.Equal(t, BlockHeightDisagreementDelay(), outcome.BackoffOverride)
	}
}

// TestClassifierUnparseableOnionPanics exercises spec.md §4.3's "a bug —
// fail-stop" contract for UNPARSEABLE_ONION reaching this layer.
func TestClassifierUnparseableOnionPanics(t *testing.T) {
	c := Classifier{}

	require.Panics(t, func() {
		c.Classify(&SendpayResult{ErrorCode: SendpayUnparseableOnion}, nil)
	})
}

func TestClassifierRegistryLookup(t *testing.T) {
	reg := NewClassifierRegistry()

	c, ok := reg.Get(classifierRegistryName)
	require.True(t, ok)
	outcome := c.Classify(&SendpayResult{Succeeded: true}, nil)
	require.Equal(t, classify.OutcomeSuccess, outcome.Kind)

	_, ok = reg.Get("no-such-classifier")
	require.False(t, ok)
}
