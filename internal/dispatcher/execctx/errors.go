package execctx

import "errors"

// Execution errors.
var (
	// ErrNoMotion indicates a motion found no target, such as f with no
	// matching character. The cursor stays put and any operator is
	// abandoned for that cursor.
	ErrNoMotion = errors.New("execution context: motion has no target")

	// ErrMissingOperator indicates an operator function was called without
	// a span to act on.
	ErrMissingOperator = errors.New("execution context: no operator pending")
)
