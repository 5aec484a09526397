package multisig

import (
	"github.com/iov-one/mvault/errors"
)

// Error codes 1030-1034 are reserved for the multisig package.
var (
	// ErrInvalidConfig is returned when a vault cannot be constructed
	// from the given owners and quorum.
	ErrInvalidConfig = errors.Register(1030, "invalid configuration")

	// ErrUnknownAction is returned when referencing an action id that
	// was never assigned.
	ErrUnknownAction = errors.Register(1031, "unknown action")

	// ErrAlreadyApproved is returned when an owner confirms the same
	// action a second time.
	ErrAlreadyApproved = errors.Register(1032, "already approved")

	// ErrAlreadyExecuted is returned when operating on an action that
	// was already successfully executed.
	ErrAlreadyExecuted = errors.Register(1033, "already executed")

	// ErrInsufficientApprovals is returned when executing an action
	// that has not reached the quorum yet.
	ErrInsufficientApprovals = errors.Register(1034, "insufficient approvals")
)
