package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua: state is closed")

	// ErrExecutionTimeout is returned when a call runs past its timeout.
	ErrExecutionTimeout = errors.New("lua: execution timeout")

	// ErrPanic is returned when a Go function called from Lua panics.
	ErrPanic = errors.New("lua: panic")

	// ErrInvalidAction is returned for a malformed modal.action table.
	ErrInvalidAction = errors.New("lua: invalid action")
)
