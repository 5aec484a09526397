package multisig

import (
	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/errors"
)

// maxOwners bounds the owner set size. The bitmask tracker indexes owners
// by their registry position, so the bound keeps per-action approval state
// compact. This is far more than any sane vault setup needs.
const maxOwners = 255

// Registry is the immutable set of owners controlling a vault, together
// with the quorum threshold. It is created once and never mutated.
type Registry struct {
	owners []mvault.Address
	quorum int
}

// NewRegistry validates and builds an owner registry. It fails with
// ErrInvalidConfig if the owner set is empty, too big, holds an invalid or
// duplicate address, or if the quorum is outside of [1, len(owners)].
func NewRegistry(owners []mvault.Address, quorum int) (*Registry, error) {
	switch n := len(owners); {
	case n == 0:
		return nil, errors.Wrap(ErrInvalidConfig, "no owners")
	case n > maxOwners:
		return nil, errors.Wrapf(ErrInvalidConfig, "too many owners: %d", n)
	}
	if quorum < 1 || quorum > len(owners) {
		return nil, errors.Wrapf(ErrInvalidConfig,
			"quorum %d outside of [1, %d]", quorum, len(owners))
	}

	seen := make(map[string]struct{}, len(owners))
	cpy := make([]mvault.Address, 0, len(owners))
	for i, o := range owners {
		if err := o.Validate(); err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "owner %d: %s", i, err)
		}
		if _, ok := seen[string(o)]; ok {
			return nil, errors.Wrapf(ErrInvalidConfig, "duplicate owner %s", o)
		}
		seen[string(o)] = struct{}{}
		cpy = append(cpy, o.Clone())
	}

	return &Registry{owners: cpy, quorum: quorum}, nil
}

// IsOwner returns true if given address belongs to the owner set.
func (r *Registry) IsOwner(a mvault.Address) bool {
	_, err := r.IndexOf(a)
	return err == nil
}

// IndexOf returns the registration position of given owner. Positions are
// stable for the lifetime of the registry. A linear scan is plenty, owner
// sets are small.
func (r *Registry) IndexOf(a mvault.Address) (int, error) {
	for i, o := range r.owners {
		if o.Equals(a) {
			return i, nil
		}
	}
	return 0, errors.Wrapf(errors.ErrNotFound, "owner %s", a)
}

// OwnerAt returns the owner registered at given position. It panics if the
// position is out of range, the same way a slice access would.
func (r *Registry) OwnerAt(i int) mvault.Address {
	return r.owners[i].Clone()
}

// Count returns the number of registered owners.
func (r *Registry) Count() int {
	return len(r.owners)
}

// Quorum returns the number of confirmations required to execute an
// action.
func (r *Registry) Quorum() int {
	return r.quorum
}
