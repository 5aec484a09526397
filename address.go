package mvault

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/iov-one/mvault/errors"
)

// AddressLength is the size in bytes of a principal address.
const AddressLength = 20

// Address is an opaque, equality-comparable principal identifier. Owners
// of a vault and destinations of transfers are both addresses. The engine
// never inspects the bytes beyond comparing them.
type Address []byte

// Equals checks if two addresses are the same.
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// Clone returns an independent copy of this address.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	cpy := make(Address, len(a))
	copy(cpy, a)
	return cpy
}

// Validate returns an error if this is not a well formed address.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.ErrInput.Newf("invalid address length: %d", len(a))
	}
	return nil
}

// String returns an uppercase hex representation of the address.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// MarshalJSON provides a hex representation for JSON, to override the
// standard base64 []byte encoding.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(a)))
}

func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	if len(enc) == 0 {
		*a = nil
		return nil
	}
	val, err := hex.DecodeString(enc)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode hex: %s", err)
	}
	if err := Address(val).Validate(); err != nil {
		return err
	}
	*a = val
	return nil
}

// ParseAddress decodes a hex string into an address and validates it.
func ParseAddress(enc string) (Address, error) {
	val, err := hex.DecodeString(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot decode hex: %s", err)
	}
	a := Address(val)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
