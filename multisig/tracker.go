package multisig

import (
	"encoding/binary"
	"math/bits"

	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/errors"
)

// Tracker records which owners approved which action. Implementations must
// behave identically: an owner can approve a given action at most once,
// counts never decrease, and Approvers always lists owners in registry
// registration order.
type Tracker interface {
	// Approve records that owner approved the action and returns the
	// new approval count. It fails with ErrAlreadyApproved if this
	// owner already approved this action, leaving all state untouched.
	Approve(db mvault.KVStore, actionID int64, owner mvault.Address) (int, error)

	// Count returns the number of distinct owners that approved the
	// action.
	Count(db mvault.KVStore, actionID int64) int

	// Approvers returns the owners that approved the action, in owner
	// registration order, without duplicates.
	Approvers(db mvault.KVStore, actionID int64) []mvault.Address
}

const (
	bitmaskPrefix = "approvals.bits:"
	setPrefix     = "approvals.set:"
)

func approvalKey(prefix string, actionID int64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], uint64(actionID))
	return key
}

// BitmaskTracker stores the approval state of an action as a single
// bitset, one bit per registry position. It is the most compact encoding
// and the default: the registry bounds the owner count, so the whole state
// of an action fits a few machine words.
type BitmaskTracker struct {
	registry *Registry
}

var _ Tracker = BitmaskTracker{}

// NewBitmaskTracker returns a tracker indexing approvals by registry
// position.
func NewBitmaskTracker(r *Registry) BitmaskTracker {
	return BitmaskTracker{registry: r}
}

func (t BitmaskTracker) Approve(db mvault.KVStore, actionID int64, owner mvault.Address) (int, error) {
	idx, err := t.registry.IndexOf(owner)
	if err != nil {
		return 0, errors.Wrap(err, "approve")
	}

	key := approvalKey(bitmaskPrefix, actionID)
	mask := db.Get(key)
	if mask == nil {
		mask = make([]byte, (t.registry.Count()+7)/8)
	}

	if mask[idx/8]&(1<<uint(idx%8)) != 0 {
		return 0, errors.Wrapf(ErrAlreadyApproved, "owner %s, action %d", owner, actionID)
	}
	mask[idx/8] |= 1 << uint(idx%8)
	db.Set(key, mask)

	return popcount(mask), nil
}

func (t BitmaskTracker) Count(db mvault.KVStore, actionID int64) int {
	mask := db.Get(approvalKey(bitmaskPrefix, actionID))
	return popcount(mask)
}

func (t BitmaskTracker) Approvers(db mvault.KVStore, actionID int64) []mvault.Address {
	mask := db.Get(approvalKey(bitmaskPrefix, actionID))
	if mask == nil {
		return nil
	}
	var approvers []mvault.Address
	for i := 0; i < t.registry.Count(); i++ {
		if mask[i/8]&(1<<uint(i%8)) != 0 {
			approvers = append(approvers, t.registry.OwnerAt(i))
		}
	}
	return approvers
}

func popcount(mask []byte) int {
	var n int
	for _, b := range mask {
		n += bits.OnesCount8(b)
	}
	return n
}

// SetTracker stores one presence record per (action, owner) pair, keyed by
// the owner identity itself. There is no index indirection, so it does not
// depend on the registry size bound. Approvers still iterates the registry
// to report owners in registration order.
type SetTracker struct {
	registry *Registry
}

var _ Tracker = SetTracker{}

// NewSetTracker returns a tracker keying approvals by owner identity.
func NewSetTracker(r *Registry) SetTracker {
	return SetTracker{registry: r}
}

func setKey(actionID int64, owner mvault.Address) []byte {
	return append(approvalKey(setPrefix, actionID), owner...)
}

func (t SetTracker) Approve(db mvault.KVStore, actionID int64, owner mvault.Address) (int, error) {
	if _, err := t.registry.IndexOf(owner); err != nil {
		return 0, errors.Wrap(err, "approve")
	}

	key := setKey(actionID, owner)
	if db.Has(key) {
		return 0, errors.Wrapf(ErrAlreadyApproved, "owner %s, action %d", owner, actionID)
	}
	db.Set(key, []byte{1})

	return t.Count(db, actionID), nil
}

func (t SetTracker) Count(db mvault.KVStore, actionID int64) int {
	var n int
	for i := 0; i < t.registry.Count(); i++ {
		if db.Has(setKey(actionID, t.registry.OwnerAt(i))) {
			n++
		}
	}
	return n
}

func (t SetTracker) Approvers(db mvault.KVStore, actionID int64) []mvault.Address {
	var approvers []mvault.Address
	for i := 0; i < t.registry.Count(); i++ {
		owner := t.registry.OwnerAt(i)
		if db.Has(setKey(actionID, owner)) {
			approvers = append(approvers, owner)
		}
	}
	return approvers
}
