package multisig

import (
	"testing"

	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/coin"
	"github.com/iov-one/mvault/errors"
	"github.com/iov-one/mvault/mvtest"
	"github.com/iov-one/mvault/mvtest/assert"
	"github.com/iov-one/mvault/store"
)

// recordingEmitter keeps every emitted event for inspection.
type recordingEmitter struct {
	events []Event
}

func (e *recordingEmitter) Emit(ev Event) {
	e.events = append(e.events, ev)
}

func (e *recordingEmitter) kinds() []string {
	kinds := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		kinds = append(kinds, ev.Kind())
	}
	return kinds
}

type vaultFixture struct {
	vault   *Vault
	emitter *recordingEmitter
	a, b, c mvault.Address
	dest    mvault.Address
}

// newVaultFixture builds a vault with owners a, b, c and a quorum of 2,
// funded with the given amount.
func newVaultFixture(t *testing.T, funding coin.Coin, opts ...VaultOption) *vaultFixture {
	t.Helper()

	f := &vaultFixture{
		emitter: &recordingEmitter{},
		a:       mvtest.SequenceAddress(1),
		b:       mvtest.SequenceAddress(2),
		c:       mvtest.SequenceAddress(3),
		dest:    mvtest.SequenceAddress(100),
	}

	r, err := NewRegistry([]mvault.Address{f.a, f.b, f.c}, 2)
	assert.Nil(t, err)

	opts = append([]VaultOption{WithEmitter(f.emitter)}, opts...)
	v, err := NewVault(store.MemStore(), r, mvtest.SequenceAddress(200), opts...)
	assert.Nil(t, err)
	f.vault = v

	if !funding.IsZero() {
		assert.Nil(t, v.Deposit(mvtest.SequenceAddress(50), funding))
		f.emitter.events = nil
	}
	return f
}

func TestNewVaultConfig(t *testing.T) {
	r, err := NewRegistry([]mvault.Address{mvtest.SequenceAddress(1)}, 1)
	assert.Nil(t, err)

	_, err = NewVault(store.MemStore(), nil, mvtest.SequenceAddress(2))
	assert.IsErr(t, ErrInvalidConfig, err)

	_, err = NewVault(store.MemStore(), r, mvault.Address("short"))
	assert.IsErr(t, ErrInvalidConfig, err)
}

func TestSubmit(t *testing.T) {
	f := newVaultFixture(t, coin.NewCoin(1000, 0, "IOV"))

	id, err := f.vault.Submit(f.a, f.dest, coin.NewCoin(100, 0, "IOV"))
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id)
	assert.Equal(t, int64(1), f.vault.TransactionCount())

	// ids are sequential
	id, err = f.vault.Submit(f.b, f.dest, coin.NewCoin(7, 0, "IOV"))
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, int64(2), f.vault.TransactionCount())

	assert.Equal(t, []string{"submission", "submission"}, f.emitter.kinds())

	a, err := f.vault.Action(0)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), a.Confirmations)
	assert.Equal(t, false, a.Executed)
}

func TestSubmitNotOwner(t *testing.T) {
	f := newVaultFixture(t, coin.NewCoin(1000, 0, "IOV"))

	stranger := mvtest.SequenceAddress(66)
	_, err := f.vault.Submit(stranger, f.dest, coin.NewCoin(1, 0, "IOV"))
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, int64(0), f.vault.TransactionCount())
	assert.Equal(t, 0, len(f.emitter.events))
}

// TestConfirmUntilExecution covers the happy path: owners = [a, b, c],
// quorum = 2. The second confirmation crosses the quorum and executes the
// transfer in the same call.
func TestConfirmUntilExecution(t *testing.T) {
	f := newVaultFixture(t, coin.NewCoin(1000, 0, "IOV"))

	id, err := f.vault.Submit(f.a, f.dest, coin.NewCoin(100, 0, "IOV"))
	assert.Nil(t, err)

	count, err := f.vault.Confirm(id, f.a)
	assert.Nil(t, err)
	assert.Equal(t, 1, count)

	action, err := f.vault.Action(id)
	assert.Nil(t, err)
	assert.Equal(t, false, action.Executed)

	// the second confirmation reaches the quorum and auto-executes
	count, err = f.vault.Confirm(id, f.b)
	assert.Nil(t, err)
	assert.Equal(t, 2, count)

	action, err = f.vault.Action(id)
	assert.Nil(t, err)
	assert.Equal(t, true, action.Executed)
	assert.Equal(t, int64(2), action.Confirmations)

	balance, err := f.vault.Balance()
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(900, 0, "IOV"), balance)

	// a late confirmation of an executed action is rejected
	_, err = f.vault.Confirm(id, f.c)
	assert.IsErr(t, ErrAlreadyExecuted, err)

	want := []string{"submission", "confirmation", "confirmation", "execution"}
	assert.Equal(t, want, f.emitter.kinds())
}

func TestConfirmErrors(t *testing.T) {
	f := newVaultFixture(t, coin.NewCoin(1000, 0, "IOV"))

	id, err := f.vault.Submit(f.a, f.dest, coin.NewCoin(100, 0, "IOV"))
	assert.Nil(t, err)

	// non-owner
	_, err = f.vault.Confirm(id, mvtest.SequenceAddress(66))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	// unknown action
	_, err = f.vault.Confirm(42, f.a)
	assert.IsErr(t, ErrUnknownAction, err)

	// double confirmation leaves the count unchanged
	_, err = f.vault.Confirm(id, f.a)
	assert.Nil(t, err)
	_, err = f.vault.Confirm(id, f.a)
	assert.IsErr(t, ErrAlreadyApproved, err)

	action, err := f.vault.Action(id)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), action.Confirmations)
}

// TestAutoExecutionFailure covers the partial-failure path: the transfer
// triggered by the quorum-crossing confirmation fails, the action stays
// pending with all approvals intact and a later explicit execute succeeds.
func TestAutoExecutionFailure(t *testing.T) {
	// the vault holds nothing, so any transfer must fail
	f := newVaultFixture(t, coin.Coin{})

	id, err := f.vault.Submit(f.a, f.dest, coin.NewCoin(100, 0, "IOV"))
	assert.Nil(t, err)

	_, err = f.vault.Confirm(id, f.a)
	assert.Nil(t, err)

	// quorum is crossed but the transfer fails; the confirmation
	// itself succeeds
	count, err := f.vault.Confirm(id, f.b)
	assert.Nil(t, err)
	assert.Equal(t, 2, count)

	action, err := f.vault.Action(id)
	assert.Nil(t, err)
	assert.Equal(t, false, action.Executed)
	assert.Equal(t, int64(2), action.Confirmations)

	want := []string{"submission", "confirmation", "confirmation", "execution failure"}
	assert.Equal(t, want, f.emitter.kinds())

	fail, ok := f.emitter.events[3].(ExecutionFailureEvent)
	if !ok {
		t.Fatalf("want an execution failure event, got %T", f.emitter.events[3])
	}
	if !errors.ErrEmpty.Is(fail.Err) {
		t.Fatalf("want an empty account failure, got %+v", fail.Err)
	}

	// nobody needs to re-confirm: fund the vault and retry explicitly
	assert.Nil(t, f.vault.Deposit(mvtest.SequenceAddress(50), coin.NewCoin(500, 0, "IOV")))
	assert.Nil(t, f.vault.Execute(id, f.a))

	action, err = f.vault.Action(id)
	assert.Nil(t, err)
	assert.Equal(t, true, action.Executed)

	balance, err := f.vault.Balance()
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(400, 0, "IOV"), balance)

	want = append(want, "deposit", "execution")
	assert.Equal(t, want, f.emitter.kinds())
}

func TestExecuteErrors(t *testing.T) {
	f := newVaultFixture(t, coin.NewCoin(1000, 0, "IOV"))

	id, err := f.vault.Submit(f.a, f.dest, coin.NewCoin(100, 0, "IOV"))
	assert.Nil(t, err)

	// non-owner
	err = f.vault.Execute(id, mvtest.SequenceAddress(66))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	// unknown action on a log with one action
	err = f.vault.Execute(5, f.a)
	assert.IsErr(t, ErrUnknownAction, err)

	// not enough approvals
	_, err = f.vault.Confirm(id, f.a)
	assert.Nil(t, err)
	err = f.vault.Execute(id, f.a)
	assert.IsErr(t, ErrInsufficientApprovals, err)

	action, err := f.vault.Action(id)
	assert.Nil(t, err)
	assert.Equal(t, false, action.Executed)

	// execute after the quorum was reached by confirmations
	_, err = f.vault.Confirm(id, f.b)
	assert.Nil(t, err)

	// it auto-executed, so a direct execute is now rejected
	err = f.vault.Execute(id, f.c)
	assert.IsErr(t, ErrAlreadyExecuted, err)

	// and the transfer happened exactly once
	balance, err := f.vault.Balance()
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(900, 0, "IOV"), balance)
}

func TestConfirmationsOf(t *testing.T) {
	f := newVaultFixture(t, coin.NewCoin(1000, 0, "IOV"))

	id, err := f.vault.Submit(f.a, f.dest, coin.NewCoin(100, 0, "IOV"))
	assert.Nil(t, err)

	_, err = f.vault.ConfirmationsOf(9)
	assert.IsErr(t, ErrUnknownAction, err)

	// confirm out of registration order
	_, err = f.vault.Confirm(id, f.c)
	assert.Nil(t, err)
	_, err = f.vault.Confirm(id, f.a)
	assert.Nil(t, err)

	got, err := f.vault.ConfirmationsOf(id)
	assert.Nil(t, err)
	assert.Equal(t, []mvault.Address{f.a, f.c}, got)
}

// TestTrackerChoiceIsInvisible runs the same flow with both tracker
// strategies and expects identical observable behavior.
func TestTrackerChoiceIsInvisible(t *testing.T) {
	run := func(t *testing.T, opts ...VaultOption) ([]mvault.Address, []string) {
		f := newVaultFixture(t, coin.NewCoin(1000, 0, "IOV"), opts...)

		id, err := f.vault.Submit(f.a, f.dest, coin.NewCoin(10, 0, "IOV"))
		assert.Nil(t, err)
		_, err = f.vault.Confirm(id, f.c)
		assert.Nil(t, err)
		_, err = f.vault.Confirm(id, f.c)
		assert.IsErr(t, ErrAlreadyApproved, err)
		_, err = f.vault.Confirm(id, f.a)
		assert.Nil(t, err)

		confirmations, err := f.vault.ConfirmationsOf(id)
		assert.Nil(t, err)
		return confirmations, f.emitter.kinds()
	}

	defaultConfirmations, defaultEvents := run(t)

	r, err := NewRegistry([]mvault.Address{
		mvtest.SequenceAddress(1),
		mvtest.SequenceAddress(2),
		mvtest.SequenceAddress(3),
	}, 2)
	assert.Nil(t, err)
	setConfirmations, setEvents := run(t, WithTracker(NewSetTracker(r)))

	assert.Equal(t, defaultConfirmations, setConfirmations)
	assert.Equal(t, defaultEvents, setEvents)
}

func TestDeposit(t *testing.T) {
	f := newVaultFixture(t, coin.Coin{})

	sender := mvtest.SequenceAddress(50)
	assert.Nil(t, f.vault.Deposit(sender, coin.NewCoin(10, 0, "IOV")))

	balance, err := f.vault.Balance()
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(10, 0, "IOV"), balance)

	assert.Equal(t, []string{"deposit"}, f.emitter.kinds())
	dep := f.emitter.events[0].(DepositEvent)
	assert.Equal(t, sender, dep.Sender)

	// a deposit of nothing is rejected
	err = f.vault.Deposit(sender, coin.NewCoin(0, 0, "IOV"))
	assert.IsErr(t, errors.ErrInput, err)
}

func TestFailedPreconditionLeavesNoTrace(t *testing.T) {
	f := newVaultFixture(t, coin.NewCoin(1000, 0, "IOV"))

	id, err := f.vault.Submit(f.a, f.dest, coin.NewCoin(100, 0, "IOV"))
	assert.Nil(t, err)
	_, err = f.vault.Confirm(id, f.a)
	assert.Nil(t, err)
	f.emitter.events = nil

	// every failing call must leave counts, approvals and funds alone
	_, err = f.vault.Confirm(id, f.a)
	assert.IsErr(t, ErrAlreadyApproved, err)
	err = f.vault.Execute(id, f.b)
	assert.IsErr(t, ErrInsufficientApprovals, err)
	_, err = f.vault.Submit(mvtest.SequenceAddress(66), f.dest, coin.NewCoin(1, 0, "IOV"))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Equal(t, int64(1), f.vault.TransactionCount())
	confirmations, err := f.vault.ConfirmationsOf(id)
	assert.Nil(t, err)
	assert.Equal(t, []mvault.Address{f.a}, confirmations)
	balance, err := f.vault.Balance()
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(1000, 0, "IOV"), balance)
	assert.Equal(t, 0, len(f.emitter.events))
}
