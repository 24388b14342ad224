package config

import (
	"errors"
	"fmt"
)

// ErrInvalidValue indicates a setting outside its allowed range.
var ErrInvalidValue = errors.New("config: invalid value")

// ParseError reports a TOML document that could not be decoded.
// Line and Column are zero when the decoder gives no position.
type ParseError struct {
	Path         string
	Line, Column int
	Message      string
	Err          error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("config: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("config: %s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }
