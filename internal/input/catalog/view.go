package catalog

import (
	"github.com/samber/mo"

	"github.com/dshills/modal/internal/input/mode"
)

// View is the read-only state predicates and the matcher see.
type View struct {
	// Mode is the current mode, with OperatorPending substituted while an
	// operator waits for its motion.
	Mode mode.Mode

	// Count is the count typed so far; 0 when none.
	Count int

	// CountInProgress is set while the previous key was a count digit,
	// so that a following 0 extends the number instead of moving.
	CountInProgress bool

	// Operator is the pending operator's name.
	Operator mo.Option[string]

	// Recording is set while a macro is being recorded.
	Recording bool

	// MultiCursor is set when there is more than one cursor.
	MultiCursor bool
}

// OperatorIs reports whether the pending operator is name.
func (v View) OperatorIs(name string) bool {
	op, ok := v.Operator.Get()
	return ok && op == name
}

// HasCount holds when a count was typed.
func HasCount(v View) bool {
	return v.Count > 0
}

// NoCount holds when no count was typed.
func NoCount(v View) bool {
	return v.Count == 0
}

// IsRecording holds while a macro is being recorded.
func IsRecording(v View) bool {
	return v.Recording
}

// NotRecording holds while no macro is being recorded.
func NotRecording(v View) bool {
	return !v.Recording
}

// PendingOperator returns a predicate holding while operator name waits
// for its motion.
func PendingOperator(name string) Predicate {
	return func(v View) bool {
		return v.OperatorIs(name)
	}
}

// All combines predicates; all must hold.
func All(preds ...Predicate) Predicate {
	return func(v View) bool {
		for _, p := range preds {
			if !p(v) {
				return false
			}
		}
		return true
	}
}
