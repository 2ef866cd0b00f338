package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrTooManyAttempts      = errors.New("too many attempts, slow down")

	// Time clock state machine errors.
	ErrDuplicateActiveEntry   = errors.New("an open time entry already exists for this user and order")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrMissingPauseTimestamp  = errors.New("paused entry has no pause timestamp")
	ErrAlreadyCompleted       = errors.New("time entry is already completed")
)
