package catalog

import (
	"fmt"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/mode"
)

// Kind selects how the dispatcher runs an action.
type Kind uint8

const (
	// Command runs immediately and completes the command.
	Command Kind = iota
	// Motion moves cursors, or supplies the range of a pending operator.
	Motion
	// Operator waits for a motion, or acts on the visual selection.
	Operator
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Command:
		return "command"
	case Motion:
		return "motion"
	case Operator:
		return "operator"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// FanOut says how often an action runs per step.
type FanOut uint8

const (
	// PerCursor runs the action once for each cursor.
	PerCursor FanOut = iota
	// Once runs the action once for the whole cursor set.
	Once
)

// MotionFunc computes where a motion takes the cursor from pos.
type MotionFunc func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error)

// OperatorFunc applies an operator to a span.
type OperatorFunc func(ctx *execctx.Context, span execctx.Span) error

// CommandFunc runs a command.
type CommandFunc func(ctx *execctx.Context) error

// Predicate decides whether an action applies in the current state.
type Predicate func(v View) bool

// InsertRepeat says what a count typed before a command that enters
// Insert mode repeats when the insert session ends.
type InsertRepeat uint8

const (
	// NoInsertRepeat ignores the count.
	NoInsertRepeat InsertRepeat = iota
	// RepeatText types the inserted text count times.
	RepeatText
	// RepeatLines opens count lines, each with the inserted text.
	RepeatLines
)

// Action is an immutable action descriptor.
type Action struct {
	// Name identifies the action in logs and plugin registration.
	Name string

	Kind  Kind
	Modes []mode.Mode

	// Keys lists alternative patterns; any one of them triggers the action.
	Keys []string

	// When, if set, must hold for the action to match.
	When Predicate

	FanOut FanOut

	// CountRepeats runs the whole action count times, finalizing edits
	// between repetitions.
	CountRepeats bool

	// Repeatable marks commands that dot repeats.
	Repeatable bool

	// Jump records the cursor position in the jump list before moving.
	Jump bool

	// Incomplete means the command keeps waiting for keys after the
	// action runs, like a register or count prefix.
	Incomplete bool

	InsertRepeat InsertRepeat

	// CountDigit marks the count-accumulating action. Dot repeat with a
	// new count skips these steps.
	CountDigit bool

	Motion   MotionFunc
	Operator OperatorFunc
	Command  CommandFunc

	patterns []Pattern
}

// Patterns returns the parsed key patterns. Valid after registration.
func (a *Action) Patterns() []Pattern {
	return a.patterns
}

// ValidIn reports whether the action is bound in mode m.
func (a *Action) ValidIn(m mode.Mode) bool {
	for _, am := range a.Modes {
		if am == m {
			return true
		}
	}
	return false
}

// Applies reports whether the action is bound in the view's mode and its
// predicate holds.
func (a *Action) Applies(v View) bool {
	if !a.ValidIn(v.Mode) {
		return false
	}
	return a.When == nil || a.When(v)
}

// String returns the action name.
func (a *Action) String() string {
	return a.Name
}

// hasExecutor reports whether the function matching Kind is set.
func (a *Action) hasExecutor() bool {
	switch a.Kind {
	case Motion:
		return a.Motion != nil
	case Operator:
		return a.Operator != nil
	case Command:
		return a.Command != nil
	}
	return false
}
