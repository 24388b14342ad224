package session

import "errors"

// Session errors.
var (
	ErrNoBuffer         = errors.New("session: no text buffer")
	ErrInvalidStartMode = errors.New("session: start mode must be normal or insert")
)
