package pay

import "strconv"

// MilliSatoshi is a thousandth of a satoshi, the unit in which payment
// amounts and per-hop fees are expressed throughout this package.
//
// Grounded on lnwire.MilliSatoshi; reauthored narrowly here since the full
// lnwire package in the retrieval pack is mostly wire-message plumbing
// unrelated to this core (see DESIGN.md).
type MilliSatoshi uint64

// String returns the amount as a decimal string suffixed with "msat".
func (m MilliSatoshi) String() string {
	return strconv.FormatUint(uint64(m), 10) + " msat"
}

// ToSatoshis rounds down to the nearest whole satoshi.
func (m MilliSatoshi) ToSatoshis() uint64 {
	return uint64(m) / 1000
}
