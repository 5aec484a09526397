package multisig

import (
	"sync"

	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/cash"
	"github.com/iov-one/mvault/coin"
	"github.com/iov-one/mvault/errors"
)

// Vault is the execution coordinator. It ties together the owner registry,
// the action log, the approval tracker and the funds controller, and runs
// every state-changing operation atomically: each call works on a cache
// wrap of the store that is written back only on success, so a failed
// precondition never leaves partial state behind.
//
// A mutex gives single-writer-per-call semantics. No operation blocks on
// anything but the transfer itself, which is synchronous.
type Vault struct {
	mu       sync.Mutex
	db       mvault.CacheableKVStore
	registry *Registry
	tracker  Tracker
	actions  ActionBucket
	control  cash.Controller
	emitter  Emitter
	address  mvault.Address
}

// VaultOption configures optional vault collaborators.
type VaultOption func(*Vault)

// WithTracker replaces the default bitmask approval tracker.
func WithTracker(t Tracker) VaultOption {
	return func(v *Vault) { v.tracker = t }
}

// WithEmitter registers an event emitter. Default is to drop all events.
func WithEmitter(e Emitter) VaultOption {
	return func(v *Vault) { v.emitter = e }
}

// WithController replaces the default funds controller.
func WithController(c cash.Controller) VaultOption {
	return func(v *Vault) { v.control = c }
}

// NewVault builds the coordinator. The vault holds its funds under the
// given address; use Deposit to put value in. It fails with
// ErrInvalidConfig if the address is malformed or the registry missing.
func NewVault(db mvault.CacheableKVStore, registry *Registry, address mvault.Address, opts ...VaultOption) (*Vault, error) {
	if registry == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil registry")
	}
	if err := address.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "vault address: %s", err)
	}

	v := &Vault{
		db:       db,
		registry: registry,
		tracker:  NewBitmaskTracker(registry),
		actions:  NewActionBucket(),
		control:  cash.NewController(),
		emitter:  NopEmitter{},
		address:  address.Clone(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Registry returns the owner registry of this vault.
func (v *Vault) Registry() *Registry {
	return v.registry
}

// Address returns the address the vault funds are held under.
func (v *Vault) Address() mvault.Address {
	return v.address.Clone()
}

// Deposit credits the vault wallet with inbound value. Anyone may deposit,
// not only owners.
func (v *Vault) Deposit(sender mvault.Address, amount coin.Coin) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	wrap := v.db.CacheWrap()
	if err := v.control.IssueCoins(wrap, v.address, amount); err != nil {
		wrap.Discard()
		return errors.Wrap(err, "deposit")
	}
	wrap.Write()

	v.emitter.Emit(DepositEvent{Sender: sender.Clone(), Amount: amount})
	return nil
}

// Submit registers a new pending action and returns its id. Only owners
// may submit.
func (v *Vault) Submit(caller, dest mvault.Address, amount coin.Coin) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.authorize(caller); err != nil {
		return 0, err
	}

	wrap := v.db.CacheWrap()
	a, err := v.actions.Create(wrap, dest, amount)
	if err != nil {
		wrap.Discard()
		return 0, err
	}
	wrap.Write()

	v.emitter.Emit(SubmissionEvent{ActionID: a.ID})
	return a.ID, nil
}

// Confirm records the caller's approval of an action and returns the new
// approval count. When this confirmation crosses the quorum, the action is
// executed synchronously as part of the same call; a failing transfer does
// not fail the confirmation, it leaves the action pending and emits an
// ExecutionFailureEvent.
func (v *Vault) Confirm(actionID int64, caller mvault.Address) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.authorize(caller); err != nil {
		return 0, err
	}

	wrap := v.db.CacheWrap()

	a, err := v.actions.Get(wrap, actionID)
	if err != nil {
		wrap.Discard()
		return 0, err
	}
	if a.Executed {
		wrap.Discard()
		return 0, errors.Wrapf(ErrAlreadyExecuted, "action %d", actionID)
	}

	count, err := v.tracker.Approve(wrap, actionID, caller)
	if err != nil {
		wrap.Discard()
		return 0, err
	}
	a.Confirmations = int64(count)
	if err := v.actions.Save(wrap, a); err != nil {
		wrap.Discard()
		return 0, err
	}

	events := []Event{ConfirmationEvent{Owner: caller.Clone(), ActionID: actionID}}

	if count >= v.registry.Quorum() {
		ev, err := v.execute(wrap, a)
		if err != nil {
			wrap.Discard()
			return 0, err
		}
		events = append(events, ev)
	}

	wrap.Write()
	for _, ev := range events {
		v.emitter.Emit(ev)
	}
	return count, nil
}

// Execute performs an action that already gathered enough confirmations.
// A failing transfer is not an error for the caller: the action returns to
// the pending state with its approvals intact and an ExecutionFailureEvent
// is emitted, so the call can be repeated once circumstances change.
func (v *Vault) Execute(actionID int64, caller mvault.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.authorize(caller); err != nil {
		return err
	}

	wrap := v.db.CacheWrap()

	a, err := v.actions.Get(wrap, actionID)
	if err != nil {
		wrap.Discard()
		return err
	}
	if a.Executed {
		wrap.Discard()
		return errors.Wrapf(ErrAlreadyExecuted, "action %d", actionID)
	}
	if int(a.Confirmations) < v.registry.Quorum() {
		wrap.Discard()
		return errors.Wrapf(ErrInsufficientApprovals, "%d of %d",
			a.Confirmations, v.registry.Quorum())
	}

	ev, err := v.execute(wrap, a)
	if err != nil {
		wrap.Discard()
		return err
	}
	wrap.Write()

	v.emitter.Emit(ev)
	return nil
}

// execute performs the transfer of an eligible action. The executed flag
// is persisted before the transfer runs, so anything observing the store
// during the transfer sees the action as already executed and cannot
// restart it. Only an observed transfer failure rolls the flag back; the
// approvals stay in place so no owner has to re-confirm.
func (v *Vault) execute(db mvault.CacheableKVStore, a *Action) (Event, error) {
	a.Executed = true
	if err := v.actions.Save(db, a); err != nil {
		return nil, err
	}

	effect := db.CacheWrap()
	if err := v.control.MoveCoins(effect, v.address, a.Destination, a.Amount); err != nil {
		effect.Discard()

		a.Executed = false
		if serr := v.actions.Save(db, a); serr != nil {
			return nil, serr
		}
		return ExecutionFailureEvent{ActionID: a.ID, Err: err}, nil
	}
	effect.Write()

	return ExecutionEvent{ActionID: a.ID}, nil
}

// TransactionCount returns the number of actions submitted so far.
func (v *Vault) TransactionCount() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.actions.Count(v.db)
}

// Action returns a copy of the action with given id.
func (v *Vault) Action(actionID int64) (*Action, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	a, err := v.actions.Get(v.db, actionID)
	if err != nil {
		return nil, err
	}
	return a.Copy(), nil
}

// ConfirmationsOf returns the owners that approved given action, in owner
// registration order.
func (v *Vault) ConfirmationsOf(actionID int64) ([]mvault.Address, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.actions.Get(v.db, actionID); err != nil {
		return nil, err
	}
	return v.tracker.Approvers(v.db, actionID), nil
}

// Balance returns the funds currently held by the vault.
func (v *Vault) Balance() (coin.Coin, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.control.Balance(v.db, v.address)
}

func (v *Vault) authorize(caller mvault.Address) error {
	if !v.registry.IsOwner(caller) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not an owner", caller)
	}
	return nil
}
