package mvault

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/mvault/errors"
)

func TestAddressValidate(t *testing.T) {
	cases := map[string]struct {
		addr    Address
		wantErr *errors.Error
	}{
		"valid address": {
			addr: make(Address, AddressLength),
		},
		"nil address": {
			addr:    nil,
			wantErr: errors.ErrInput,
		},
		"too short": {
			addr:    Address("too short"),
			wantErr: errors.ErrInput,
		},
		"too long": {
			addr:    make(Address, AddressLength+1),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.addr.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %+v", err)
				}
			} else if !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestAddressClone(t *testing.T) {
	a := Address{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	b := a.Clone()

	if !a.Equals(b) {
		t.Fatal("clone must be equal")
	}
	b[0] = 0xff
	if a.Equals(b) {
		t.Fatal("clone must not share memory")
	}

	if Address(nil).Clone() != nil {
		t.Fatal("nil clone must stay nil")
	}
}

func TestAddressJSONRoundTrip(t *testing.T) {
	a := Address{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}

	raw, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("cannot marshal: %s", err)
	}

	var b Address
	if err := json.Unmarshal(raw, &b); err != nil {
		t.Fatalf("cannot unmarshal: %s", err)
	}
	if !a.Equals(b) {
		t.Fatalf("want %s, got %s", a, b)
	}
}

func TestParseAddress(t *testing.T) {
	a := Address{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}

	got, err := ParseAddress(a.String())
	if err != nil {
		t.Fatalf("cannot parse: %+v", err)
	}
	if !a.Equals(got) {
		t.Fatalf("want %s, got %s", a, got)
	}

	if _, err := ParseAddress("not hex"); !errors.ErrInput.Is(err) {
		t.Fatalf("want an input error, got %+v", err)
	}

	if _, err := ParseAddress("abcd"); !errors.ErrInput.Is(err) {
		t.Fatalf("want an input error for a short address, got %+v", err)
	}
}
