package multisig

import (
	"encoding/binary"

	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/coin"
	"github.com/iov-one/mvault/errors"
)

const (
	// actionPrefix is the key namespace all action records are stored
	// under, followed by the 8 byte big endian action id.
	actionPrefix = "actions:"

	// actionCountKey holds the number of actions submitted so far. The
	// next action id equals the stored count, so ids are sequential and
	// start at 0.
	actionCountKey = "_s.actions:id"
)

// Action is a proposed transfer out of the vault. It is created pending,
// confirmed by owners and executed once the quorum is reached.
type Action struct {
	// ID is the position of this action in the log, assigned on
	// submission and permanent.
	ID int64

	// Destination receives the funds once the action executes.
	Destination mvault.Address

	// Amount is the value to transfer.
	Amount coin.Coin

	// Confirmations caches the number of distinct owners that approved
	// this action. The approval tracker is the source of this number.
	Confirmations int64

	// Executed is the terminal success flag. It is set before the
	// transfer runs and rolled back if the transfer fails.
	Executed bool
}

// Validate ensures the action can be persisted.
func (a *Action) Validate() error {
	if a.ID < 0 {
		return errors.Wrap(errors.ErrModel, "negative id")
	}
	if err := a.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := a.Amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !a.Amount.IsPositive() {
		return errors.Wrap(errors.ErrModel, "non-positive amount")
	}
	if a.Confirmations < 0 {
		return errors.Wrap(errors.ErrModel, "negative confirmations")
	}
	return nil
}

// Copy returns a deep copy of the action.
func (a *Action) Copy() *Action {
	return &Action{
		ID:            a.ID,
		Destination:   a.Destination.Clone(),
		Amount:        a.Amount,
		Confirmations: a.Confirmations,
		Executed:      a.Executed,
	}
}

// ActionBucket stores the append-only action log in a KVStore. Ids are
// assigned sequentially starting at 0 and are stable forever.
type ActionBucket struct {
	cdc *amino.Codec
}

// NewActionBucket returns a bucket for action records.
func NewActionBucket() ActionBucket {
	return ActionBucket{cdc: amino.NewCodec()}
}

func actionKey(id int64) []byte {
	key := make([]byte, len(actionPrefix)+8)
	copy(key, actionPrefix)
	binary.BigEndian.PutUint64(key[len(actionPrefix):], uint64(id))
	return key
}

// Count returns the number of actions submitted so far.
func (b ActionBucket) Count(db mvault.KVStore) int64 {
	raw := db.Get([]byte(actionCountKey))
	if raw == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(raw))
}

// Create validates and appends a new pending action, assigning it the next
// sequential id.
func (b ActionBucket) Create(db mvault.KVStore, dest mvault.Address, amount coin.Coin) (*Action, error) {
	a := &Action{
		ID:          b.Count(db),
		Destination: dest.Clone(),
		Amount:      amount,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := b.Save(db, a); err != nil {
		return nil, err
	}

	cnt := make([]byte, 8)
	binary.BigEndian.PutUint64(cnt, uint64(a.ID+1))
	db.Set([]byte(actionCountKey), cnt)

	return a, nil
}

// Get loads the action with given id. It fails with ErrUnknownAction for
// an id that was never assigned.
func (b ActionBucket) Get(db mvault.KVStore, id int64) (*Action, error) {
	if id < 0 || id >= b.Count(db) {
		return nil, errors.Wrapf(ErrUnknownAction, "action %d", id)
	}
	raw := db.Get(actionKey(id))
	if raw == nil {
		// The counter says the id was assigned, the record is gone.
		return nil, errors.Wrapf(errors.ErrHuman, "action %d record missing", id)
	}
	var a Action
	if err := b.cdc.UnmarshalBinaryBare(raw, &a); err != nil {
		return nil, errors.Wrap(err, "cannot decode action")
	}
	return &a, nil
}

// Save persists the action state under its id.
func (b ActionBucket) Save(db mvault.KVStore, a *Action) error {
	if err := a.Validate(); err != nil {
		return errors.Wrap(err, "invalid action")
	}
	raw, err := b.cdc.MarshalBinaryBare(a)
	if err != nil {
		return errors.Wrap(err, "cannot encode action")
	}
	db.Set(actionKey(a.ID), raw)
	return nil
}
