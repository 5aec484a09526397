/*
Package mvtest provides helpers for testing mvault functionality.
*/
package mvtest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/mvault"
)

var addrSerial uint64

// NewAddress returns a new, unique address. Each call returns a different
// address, process wide.
func NewAddress() mvault.Address {
	n := atomic.AddUint64(&addrSerial, 1)
	a := make(mvault.Address, mvault.AddressLength)
	binary.BigEndian.PutUint64(a[mvault.AddressLength-8:], n)
	return a
}

// SequenceAddress returns the address with all bytes zero except the last,
// set to given value. Handy when a test needs a stable, readable address.
func SequenceAddress(n byte) mvault.Address {
	a := make(mvault.Address, mvault.AddressLength)
	a[mvault.AddressLength-1] = n
	return a
}
