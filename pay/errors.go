package pay

import "github.com/go-errors/errors"

// ErrorCode enumerates the caller-visible failure codes this package can
// emit in a FailureReply.
//
// Grounded on routing/errors.go's errorCode/routerError/IsError pattern,
// adapted for this package's externally-visible codes rather than lnd's
// internal pathfinding codes.
type ErrorCode uint32

const (
	// ErrInvoiceExpired is returned when the invoice's absolute expiry
	// has already passed at the start of an attempt.
	ErrInvoiceExpired ErrorCode = iota

	// ErrRouteNotFound is returned when a getroute reply carries an
	// empty route.
	ErrRouteNotFound

	// ErrRouteTooExpensive is returned when the proposed route's fee
	// exceeds the caller's ceiling and fuzz has been exhausted.
	ErrRouteTooExpensive

	// ErrInProgress is returned when the send collaborator reports that
	// a payment for this hash is already in flight.
	ErrInProgress

	// ErrRhashAlreadyUsed is returned when the send collaborator reports
	// the payment hash has already been claimed.
	ErrRhashAlreadyUsed

	// ErrDestinationPermFail is returned when the final hop reports a
	// permanent routing failure.
	ErrDestinationPermFail
)

// String returns the wire name for the error code, as emitted in a
// FailureReply.
func (c ErrorCode) String() string {
	switch c {
	case ErrInvoiceExpired:
		return "INVOICE_EXPIRED"
	case ErrRouteNotFound:
		return "ROUTE_NOT_FOUND"
	case ErrRouteTooExpensive:
		return "ROUTE_TOO_EXPENSIVE"
	case ErrInProgress:
		return "IN_PROGRESS"
	case ErrRhashAlreadyUsed:
		return "RHASH_ALREADY_USED"
	case ErrDestinationPermFail:
		return "DESTINATION_PERM_FAIL"
	default:
		return "UNKNOWN"
	}
}

// payError wraps an internal contract violation with a stack trace. It is
// used for the two "this should never happen" assertions spec.md §4.1
// and §4.3 call out explicitly: an UNPARSEABLE_ONION reaching the Retry
// Controller, and a retryable code reaching the Response Formatter. The
// Controller also panics with a payError when the classifier returns an
// Abort outcome.
//
// Grounded on routing/errors.go's use of github.com/go-errors/errors for
// stack-trace-carrying internal errors.
type payError struct {
	err *errors.Error
}

func (e *payError) Error() string {
	return e.err.Error()
}

// newPayError builds a payError carrying a stack trace from the call site.
func newPayError(format string, a ...interface{}) *payError {
	return &payError{err: errors.Errorf(format, a...)}
}
