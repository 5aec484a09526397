package multisig

import (
	"go.uber.org/zap"

	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/coin"
)

// Event is an audit fact emitted by the vault. Events are emitted after
// the operation that produced them committed, in the order the facts were
// established inside the operation. A Confirmation always precedes an
// Execution or ExecutionFailure triggered by the same call.
type Event interface {
	// Kind returns a short identifier of the event type.
	Kind() string
}

// DepositEvent is emitted on inbound value receipt.
type DepositEvent struct {
	Sender mvault.Address
	Amount coin.Coin
}

func (DepositEvent) Kind() string { return "deposit" }

// SubmissionEvent is emitted when a new action is registered.
type SubmissionEvent struct {
	ActionID int64
}

func (SubmissionEvent) Kind() string { return "submission" }

// ConfirmationEvent is emitted when an owner approves an action.
type ConfirmationEvent struct {
	Owner    mvault.Address
	ActionID int64
}

func (ConfirmationEvent) Kind() string { return "confirmation" }

// ExecutionEvent is emitted when an action was performed successfully.
type ExecutionEvent struct {
	ActionID int64
}

func (ExecutionEvent) Kind() string { return "execution" }

// ExecutionFailureEvent is emitted when performing an action failed. The
// action returned to the pending state and can be retried; this is part of
// normal operation, not a bug signal.
type ExecutionFailureEvent struct {
	ActionID int64
	Err      error
}

func (ExecutionFailureEvent) Kind() string { return "execution failure" }

// Emitter receives every event the vault produces. Implementations must
// not call back into the vault.
type Emitter interface {
	Emit(Event)
}

// NopEmitter drops all events.
type NopEmitter struct{}

var _ Emitter = NopEmitter{}

func (NopEmitter) Emit(Event) {}

// LogEmitter writes every event to a structured log.
type LogEmitter struct {
	log *zap.Logger
}

var _ Emitter = LogEmitter{}

// NewLogEmitter returns an emitter logging all events to given logger.
func NewLogEmitter(log *zap.Logger) LogEmitter {
	return LogEmitter{log: log}
}

func (e LogEmitter) Emit(ev Event) {
	switch ev := ev.(type) {
	case DepositEvent:
		e.log.Info("deposit",
			zap.Stringer("sender", ev.Sender),
			zap.Stringer("amount", ev.Amount))
	case SubmissionEvent:
		e.log.Info("submission",
			zap.Int64("action_id", ev.ActionID))
	case ConfirmationEvent:
		e.log.Info("confirmation",
			zap.Stringer("owner", ev.Owner),
			zap.Int64("action_id", ev.ActionID))
	case ExecutionEvent:
		e.log.Info("execution",
			zap.Int64("action_id", ev.ActionID))
	case ExecutionFailureEvent:
		e.log.Warn("execution failure",
			zap.Int64("action_id", ev.ActionID),
			zap.Error(ev.Err))
	default:
		e.log.Info(ev.Kind())
	}
}
