package dispatcher

import (
	"github.com/dshills/modal/internal/input/pending"
)

// PreDispatchHook is called before a step is dispatched.
// Returning false cancels the command.
type PreDispatchHook interface {
	PreDispatch(step pending.Step, st *pending.State) bool
}

// PostDispatchHook is called after a step is dispatched.
type PostDispatchHook interface {
	PostDispatch(step pending.Step, result Result)
}

// PreDispatchFunc is a function adapter for PreDispatchHook.
type PreDispatchFunc func(step pending.Step, st *pending.State) bool

// PreDispatch implements PreDispatchHook.
func (f PreDispatchFunc) PreDispatch(step pending.Step, st *pending.State) bool {
	return f(step, st)
}

// PostDispatchFunc is a function adapter for PostDispatchHook.
type PostDispatchFunc func(step pending.Step, result Result)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(step pending.Step, result Result) {
	f(step, result)
}

// CountLimitHook caps the count of a command.
type CountLimitHook struct {
	MaxCount int
}

// NewCountLimitHook creates a new count limit hook.
func NewCountLimitHook(maxCount int) *CountLimitHook {
	return &CountLimitHook{MaxCount: maxCount}
}

// PreDispatch limits the count.
func (h *CountLimitHook) PreDispatch(_ pending.Step, st *pending.State) bool {
	if h.MaxCount > 0 && st.Count > h.MaxCount {
		st.Count = h.MaxCount
	}
	return true
}
