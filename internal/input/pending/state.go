// Package pending holds the command being built from keystrokes: count,
// register, operator, the actions resolved so far, and the accumulator
// collecting their transformations.
package pending

import (
	"math"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/transform"
)

// maxCount caps counts instead of overflowing.
const maxCount = math.MaxInt32

// Step is one resolved action of a command.
type Step struct {
	Action   *catalog.Action
	Keys     []key.Event
	Captures []key.Event
}

// State is the pending command. A fresh State is created at every command
// boundary.
type State struct {
	// Count is the command count; 0 means none was typed.
	Count int

	// OperatorCount is the count in effect when the operator was typed.
	// Digits typed after the operator multiply it.
	OperatorCount int

	Register mo.Option[rune]

	// Operator is the step of an operator waiting for its motion.
	Operator mo.Option[Step]

	// Actions are the resolved steps so far, in order.
	Actions []Step

	// KeysPressed are all keys of the command; ActionKeys are the keys
	// not yet resolved to an action.
	KeysPressed []key.Event
	ActionKeys  []key.Event

	// Transformer collects the command's transformations.
	Transformer *transform.Accumulator

	// InsertSession is set once the command entered an insert-like mode;
	// the command then lasts until that mode is left.
	InsertSession bool

	// InsertOrigin is where the primary cursor was when the insert
	// session started; InsertStart is the number of steps resolved
	// before it.
	InsertOrigin buffer.Position
	InsertStart  int

	// InsertCount is how often the inserted text is typed once the
	// insert session ends; 0 or 1 means once.
	InsertCount int

	// Selection is the shape of the visual selection the command's
	// operator ran on.
	Selection mo.Option[Extent]

	// Replay is set when the command is a dot or macro replay.
	Replay bool

	lastWasDigit bool
}

// New creates an empty pending command.
func New(log *logging.Logger) *State {
	return &State{
		Register:    mo.None[rune](),
		Operator:    mo.None[Step](),
		Selection:   mo.None[Extent](),
		Transformer: transform.NewAccumulator(log),
	}
}

// PushKey records a typed key.
func (s *State) PushKey(k key.Event) {
	s.KeysPressed = append(s.KeysPressed, k)
	s.ActionKeys = append(s.ActionKeys, k)
}

// ClearActionKeys forgets keys that were resolved or discarded.
func (s *State) ClearActionKeys() {
	s.ActionKeys = nil
}

// DropLastKeys removes the last n keys from KeysPressed, used when the
// keys of a failed match are discarded without ending the command.
func (s *State) DropLastKeys(n int) {
	n = min(n, len(s.KeysPressed))
	s.KeysPressed = s.KeysPressed[:len(s.KeysPressed)-n]
}

// AccumulateCount adds a typed digit.
//
// Without an operator the count grows as count*10+digit. The first digit
// typed after an operator gives operatorCount*digit, and each further digit
// adds digit*operatorCount after shifting, so 2d3w counts 6 and 2d31w
// counts 62.
func (s *State) AccumulateCount(digit int) {
	switch {
	case s.OperatorCount == 0:
		s.Count = capCount(s.Count, 10, digit)
	case !s.lastWasDigit:
		s.Count = capCount(0, 0, s.OperatorCount*digit)
	default:
		s.Count = capCount(s.Count, 10, digit*s.OperatorCount)
	}
	s.lastWasDigit = true
}

// capCount returns n*mul+add, capped at maxCount.
func capCount(n, mul, add int) int {
	if add < 0 || add > maxCount {
		return maxCount
	}
	if mul > 0 && n > (maxCount-add)/mul {
		return maxCount
	}
	return n*mul + add
}

// DropCountDigit removes the last digit of the count.
func (s *State) DropCountDigit() {
	s.Count /= 10
	s.lastWasDigit = s.Count > 0
}

// SetOperator makes step the pending operator. The count typed so far
// becomes the operator count.
func (s *State) SetOperator(step Step) {
	s.Operator = mo.Some(step)
	s.OperatorCount = s.Count
	s.lastWasDigit = false
}

// SetRegister selects the register.
func (s *State) SetRegister(name rune) {
	s.Register = mo.Some(name)
}

// AppendAction records a resolved step.
func (s *State) AppendAction(step Step) {
	s.Actions = append(s.Actions, step)
	if !step.Action.CountDigit {
		s.lastWasDigit = false
	}
}

// HasOperator reports whether an operator waits for a motion.
func (s *State) HasOperator() bool {
	return s.Operator.IsPresent()
}

// OperatorName returns the pending operator's action name.
func (s *State) OperatorName() mo.Option[string] {
	if op, ok := s.Operator.Get(); ok {
		return mo.Some(op.Action.Name)
	}
	return mo.None[string]()
}

// Repeatable reports whether any resolved step is dot-repeatable.
func (s *State) Repeatable() bool {
	for _, step := range s.Actions {
		if step.Action.Repeatable {
			return true
		}
	}
	return false
}

// ContinueInInsert keeps the command alive across an insert session: the
// steps so far are kept for dot repeat while the prefix state is cleared.
func (s *State) ContinueInInsert(origin buffer.Position) {
	s.InsertCount = 0
	if n := len(s.Actions); n > 0 && s.Actions[n-1].Action.InsertRepeat != catalog.NoInsertRepeat {
		s.InsertCount = s.Count
	}
	s.Count = 0
	s.OperatorCount = 0
	s.Register = mo.None[rune]()
	s.Operator = mo.None[Step]()
	s.ActionKeys = nil
	s.lastWasDigit = false
	s.InsertSession = true
	s.InsertOrigin = origin
	s.InsertStart = len(s.Actions)
}

// View returns what predicates see of the command in mode m.
func (s *State) View(m mode.Mode, recording, multiCursor bool) catalog.View {
	return catalog.View{
		Mode:            mode.IncludingPseudo(m, s.HasOperator()),
		Count:           s.Count,
		CountInProgress: s.lastWasDigit,
		Operator:        s.OperatorName(),
		Recording:       recording,
		MultiCursor:     multiCursor,
	}
}

// Keys returns the keys typed for the command, so a State can be stored
// as a macro command.
func (s *State) Keys() []key.Event {
	return s.KeysPressed
}

// Display returns the keys typed so far in vim notation, for the
// pending-command indicator.
func (s *State) Display() string {
	if s.InsertSession {
		return ""
	}
	return key.Format(s.KeysPressed)
}

// Clone returns a snapshot of the command without its accumulator.
func (s *State) Clone() *State {
	c := *s
	c.Actions = cloneSteps(s.Actions)
	c.KeysPressed = append([]key.Event(nil), s.KeysPressed...)
	c.ActionKeys = append([]key.Event(nil), s.ActionKeys...)
	c.Transformer = nil
	return &c
}

func cloneSteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	for i, st := range steps {
		out[i] = Step{
			Action:   st.Action,
			Keys:     append([]key.Event(nil), st.Keys...),
			Captures: append([]key.Event(nil), st.Captures...),
		}
	}
	return out
}
