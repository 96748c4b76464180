package pay

import (
	"time"

	"github.com/aponysus/recourse/classify"
	"github.com/aponysus/recourse/policy"
)

// DelayPolicy is the configurable policy point spec.md §9 asks for in
// place of the original's hard-coded 3-second constant with a FIXME.
// policy.RetryPolicy is reused purely as a data container here — only
// InitialBackoff is read, and recourse's own MaxAttempts-capped Executor
// is deliberately not used, since spec.md §4.1 mandates no retry cap
// beyond invoice expiry (see DESIGN.md's Open Question resolution).
var DelayPolicy = policy.RetryPolicy{
	InitialBackoff: 3 * time.Second,
	Jitter:         policy.JitterNone,
}

// BlockHeightDisagreementDelay is the delay the Retry Controller waits
// before the next getroute attempt after a block-height disagreement
// failcode (spec.md §4.1), read from DelayPolicy.
func BlockHeightDisagreementDelay() time.Duration {
	return DelayPolicy.InitialBackoff
}

// classifierRegistryName is the name under which this package's
// Classifier is registered into a classify.Registry by NewClassifierRegistry.
const classifierRegistryName = "payflow.sendpay"

// Classifier maps a SendpayResult to a classify.Outcome, the pure
// function spec.md §4.3 describes as mapping a SendpayResult to
// {Success, Retry(kind), Report(error_code, detail_record)}.
//
// It implements github.com/aponysus/recourse/classify's Classifier
// interface (Classify(value any, err error) classify.Outcome) rather than
// inventing a parallel taxonomy: Outcome.Kind covers {Success, Retryable,
// NonRetryable, Abort} and Outcome.BackoffOverride carries the 3-second
// block-height-disagreement delay. aponysus-rego is the one pack example
// whose entire purpose overlaps this component, so it is wired directly
// (see SPEC_FULL.md's DOMAIN STACK section).
type Classifier struct{}

// Classify implements classify.Classifier.
//
// value is expected to be a *SendpayResult; err carries a collaborator-
// level transport failure distinct from a SendpayResult outcome (e.g. the
// send collaborator itself could not be reached).
//
// UNPARSEABLE_ONION is a contract violation by the send collaborator per
// spec.md §4.3 ("a bug — fail-stop") and is never returned as an Outcome;
// it panics immediately, matching payalgo.c's abort() on the equivalent
// impossible case.
func (Classifier) Classify(value any, err error) classify.Outcome {
	if err != nil {
		return classify.Outcome{
			Kind:   classify.OutcomeRetryable,
			Reason: "sendpay_collaborator_error: " + err.Error(),
		}
	}

	result, ok := value.(*SendpayResult)
	if !ok || result == nil {
		return classify.Outcome{
			Kind:   classify.OutcomeAbort,
			Reason: "classifier received no SendpayResult",
		}
	}

	if result.Succeeded {
		return classify.Outcome{Kind: classify.OutcomeSuccess, Reason: "success"}
	}

	switch result.ErrorCode {
	case SendpayInProgress:
		return classify.Outcome{
			Kind:   classify.OutcomeNonRetryable,
			Reason: "in_progress",
		}

	case SendpayRhashAlreadyUsed:
		return classify.Outcome{
			Kind:   classify.OutcomeNonRetryable,
			Reason: "rhash_already_used",
		}

	case SendpayDestinationPermFail:
		return classify.Outcome{
			Kind:   classify.OutcomeNonRetryable,
			Reason: "destination_perm_fail",
		}

	case SendpayUnparseableOnion:
		panic(newPayError("sendpay collaborator returned " +
			"UNPARSEABLE_ONION as a terminal outcome; this is " +
			"never valid at the Retry Controller layer"))

	case SendpayTryOtherRoute:
		if result.RoutingFailure != nil &&
			result.RoutingFailure.FailCode.isBlockHeightDisagreement() {

			return classify.Outcome{
				Kind:            classify.OutcomeRetryable,
				Reason:          "block_height_disagreement",
				BackoffOverride: BlockHeightDisagreementDelay(),
			}
		}
		return classify.Outcome{
			Kind:   classify.OutcomeRetryable,
			Reason: "try_other_route",
		}

	default:
		return classify.Outcome{
			Kind:   classify.OutcomeAbort,
			Reason: "unrecognized sendpay error code",
		}
	}
}

// NewClassifierRegistry returns a classify.Registry with this package's
// Classifier registered alongside the pack's built-in classifiers,
// exercising classify.RegisterBuiltins/Registry rather than constructing
// a bare Classifier value by hand.
func NewClassifierRegistry() *classify.Registry {
	reg := classify.NewRegistry()
	classify.RegisterBuiltins(reg)
	reg.Register(classifierRegistryName, Classifier{})
	return reg
}
