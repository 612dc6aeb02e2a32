package service

import "errors"

var (
	// ErrNonceWindowInverted is returned when the pending nonce reported
	// by the chain is below the latest nonce, which indicates an
	// inconsistent node view.
	ErrNonceWindowInverted = errors.New("pending nonce is below the latest nonce")

	// ErrSupervisorStarted is returned when Start is called on a loop
	// supervisor that is already running.
	ErrSupervisorStarted = errors.New("loop supervisor is already started")
)
