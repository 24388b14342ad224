package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrCancelledByHook indicates a pre-dispatch hook vetoed the step.
	ErrCancelledByHook = errors.New("dispatcher: step cancelled by hook")

	// ErrOperatorConflict indicates a second, different operator was
	// typed while one was pending.
	ErrOperatorConflict = errors.New("dispatcher: conflicting operator")
)
