// Package macro records commands for dot repeat and macros, and replays
// recorded macros from registers.
package macro

import (
	"sync"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/input/pending"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/register"
)

// Recorder keeps the last repeatable command and the macro being
// recorded. Finished macros are written to the register table.
type Recorder struct {
	mu sync.Mutex

	registers *register.Table
	log       *logging.Logger

	recording mo.Option[rune]
	commands  []register.Recorded

	lastRepeatable mo.Option[*pending.State]
	lastInvoked    mo.Option[rune]

	replaying    int
	dotReplaying bool
}

// NewRecorder creates a recorder writing macros to registers.
func NewRecorder(registers *register.Table, log *logging.Logger) *Recorder {
	if log == nil {
		log = logging.Nop()
	}
	return &Recorder{
		registers:      registers,
		log:            log.WithComponent("macro"),
		recording:      mo.None[rune](),
		lastRepeatable: mo.None[*pending.State](),
		lastInvoked:    mo.None[rune](),
	}
}

// SnapshotAsRepeatable stores a finished command for dot repeat. Commands
// run by a dot repeat are not stored again.
func (r *Recorder) SnapshotAsRepeatable(st *pending.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dotReplaying {
		return
	}
	r.lastRepeatable = mo.Some(st.Clone())
}

// LastRepeatable returns the command dot repeats.
func (r *Recorder) LastRepeatable() mo.Option[*pending.State] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRepeatable
}

// BeginMacro starts recording into register name. Uppercase names append
// to the existing macro when recording ends.
func (r *Recorder) BeginMacro(name rune) error {
	if !register.IsMacroTarget(name) {
		return editerr.InvalidRegister(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.recording.Get(); ok {
		w := editerr.NewWarning("beginMacro", "already recording @"+string(cur))
		r.log.Warn("%v", w)
		return w
	}
	r.recording = mo.Some(name)
	r.commands = nil
	r.log.Debug("recording @%c", name)
	return nil
}

// AppendToMacro adds a finished command to the recording. Commands run by
// a macro replay are not recorded, so a macro that invokes itself does not
// grow while it runs.
func (r *Recorder) AppendToMacro(cmd register.Recorded) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording.IsAbsent() || r.replaying > 0 {
		return
	}
	r.commands = append(r.commands, cmd)
}

// EndMacro stops recording and writes the macro to its register.
func (r *Recorder) EndMacro() (rune, error) {
	r.mu.Lock()
	name, ok := r.recording.Get()
	commands := r.commands
	r.recording = mo.None[rune]()
	r.commands = nil
	r.mu.Unlock()

	if !ok {
		return 0, editerr.NewWarning("endMacro", "not recording")
	}
	if err := r.registers.Put(name, register.MacroContent(commands)); err != nil {
		return name, err
	}
	r.log.Debug("recorded @%c with %d commands", name, len(commands))
	return name, nil
}

// Recording returns the register being recorded into.
func (r *Recorder) Recording() mo.Option[rune] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// LastInvoked returns the register last replayed, for @@.
func (r *Recorder) LastInvoked() mo.Option[rune] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastInvoked
}

// Replaying reports whether a macro is being replayed.
func (r *Recorder) Replaying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaying > 0
}

// BeginDotRepeat marks the start of a dot repeat; EndDotRepeat its end.
func (r *Recorder) BeginDotRepeat() {
	r.mu.Lock()
	r.dotReplaying = true
	r.mu.Unlock()
}

// EndDotRepeat ends a dot repeat started with BeginDotRepeat.
func (r *Recorder) EndDotRepeat() {
	r.mu.Lock()
	r.dotReplaying = false
	r.mu.Unlock()
}

func (r *Recorder) enterReplay(name rune) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastInvoked = mo.Some(name)
	r.replaying++
	return r.replaying
}

func (r *Recorder) leaveReplay() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaying--
}
