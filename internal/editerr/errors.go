// Package editerr defines the three classes of failure the engine
// distinguishes: errors the user caused, state warnings that are logged
// and ignored, and programming faults that must stop the session.
package editerr

import (
	"errors"
	"fmt"
)

// Code identifies a user-facing error condition.
type Code string

// User error codes.
const (
	CodeInvalidRegister   Code = "E354"
	CodeNoAlternateFile   Code = "E23"
	CodeNoPreviousSearch  Code = "E35"
	CodePatternNotFound   Code = "E486"
	CodeNothingInRegister Code = "E353"
	CodeRecursiveMacro    Code = "E169"
)

// UserError is an error caused by user input. It is shown in the status
// line and aborts the current command without affecting the session.
type UserError struct {
	Code    Code
	Message string
}

// NewUserError creates a UserError.
func NewUserError(code Code, format string, args ...any) *UserError {
	return &UserError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUserError reports whether err wraps a UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// Common user errors.
var (
	ErrNoAlternateFile  = &UserError{Code: CodeNoAlternateFile, Message: "No alternate file"}
	ErrNoPreviousSearch = &UserError{Code: CodeNoPreviousSearch, Message: "No previous regular expression"}
)

// InvalidRegister returns the error for an unknown register name.
func InvalidRegister(name rune) *UserError {
	return NewUserError(CodeInvalidRegister, "Invalid register name: '%c'", name)
}

// Warning is a recoverable state problem. Callers log it and keep the
// previous valid state; it never reaches the user.
type Warning struct {
	Op     string
	Reason string
}

// NewWarning creates a Warning.
func NewWarning(op, reason string) *Warning {
	return &Warning{Op: op, Reason: reason}
}

func (w *Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.Op, w.Reason)
}

// Fault is a broken internal invariant. It is raised with panic and is
// never returned as an ordinary error.
type Fault struct {
	Message string
}

func (f *Fault) Error() string {
	return "fault: " + f.Message
}

// Faultf panics with a Fault.
func Faultf(format string, args ...any) {
	panic(&Fault{Message: fmt.Sprintf(format, args...)})
}

// AsFault extracts a Fault from a recovered panic value.
func AsFault(v any) (*Fault, bool) {
	switch f := v.(type) {
	case *Fault:
		return f, true
	case error:
		var fault *Fault
		if errors.As(f, &fault) {
			return fault, true
		}
	}
	return nil, false
}
