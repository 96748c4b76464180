package pay

// FailCode is a reduced onion failure-message taxonomy: just the three
// block-height-disagreement codes the Retry Controller treats specially,
// plus a residual bucket for everything else a routing failure can carry.
//
// Grounded on lnwire.FailCode naming; the real zoo (incorrect amount,
// unknown next peer, fee insufficient, channel disabled, ...) is far
// larger than this core needs, so only the codes spec.md §4.1 names by
// name are broken out.
type FailCode uint16

const (
	// FailOther is any onion failure code not otherwise distinguished
	// below.
	FailOther FailCode = iota

	// FailExpiryTooFar indicates the chosen CLTV expiry for a hop is
	// further in the future than that hop is willing to accept.
	FailExpiryTooFar

	// FailExpiryTooSoon indicates a hop's view of the current block
	// height is far enough ahead of the sender's that the offered CLTV
	// expiry looks like it has already (or almost) elapsed.
	FailExpiryTooSoon

	// FailFinalExpiryTooSoon is FailExpiryTooSoon as reported by the
	// final hop specifically.
	FailFinalExpiryTooSoon
)

// String returns a human readable name for the failure code.
func (f FailCode) String() string {
	switch f {
	case FailExpiryTooFar:
		return "expiry_too_far"
	case FailExpiryTooSoon:
		return "expiry_too_soon"
	case FailFinalExpiryTooSoon:
		return "final_expiry_too_soon"
	default:
		return "other"
	}
}

// isBlockHeightDisagreement reports whether f is one of the three
// failcodes spec.md §4.1 calls out for the delayed-retry path.
func (f FailCode) isBlockHeightDisagreement() bool {
	switch f {
	case FailExpiryTooFar, FailExpiryTooSoon, FailFinalExpiryTooSoon:
		return true
	default:
		return false
	}
}
