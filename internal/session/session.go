package session

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/modal/internal/actions"
	"github.com/dshills/modal/internal/config"
	"github.com/dshills/modal/internal/dispatcher"
	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/keymap"
	"github.com/dshills/modal/internal/input/macro"
	"github.com/dshills/modal/internal/input/matcher"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/pending"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/register"
	"github.com/dshills/modal/internal/transform"
)

// Options tune how a session runs.
type Options struct {
	// RecoverFaults turns programming faults into a logged error, a status
	// message, and a reset command instead of a crash.
	RecoverFaults bool

	// EnableMetrics collects per-action dispatch statistics.
	EnableMetrics bool

	// MaxRepeatCount limits how often a count-repeated action runs.
	MaxRepeatCount int
}

// DefaultOptions returns options for development use: faults crash.
func DefaultOptions() Options {
	return Options{
		MaxRepeatCount: dispatcher.DefaultConfig().MaxRepeatCount,
	}
}

// Session is one modal editing session over a text buffer.
type Session struct {
	mu sync.Mutex

	id   uuid.UUID
	opts Options

	cfg       config.Config
	buf       buffer.TextBuffer
	ui        UI
	registers *register.Table
	log       *logging.Logger

	registry   *catalog.Registry
	matcher    *matcher.Matcher
	modes      *mode.Manager
	cursors    *cursor.Set
	dispatcher *dispatcher.Dispatcher
	recorder   *macro.Recorder
	player     *macro.Player

	pending *pending.State

	// recordable is set when the command being typed started while a
	// macro was being recorded.
	recordable bool
}

// New creates a session over buf. A nil registers table gets a fresh
// one; a nil ui gets NopUI.
func New(cfg config.Config, buf buffer.TextBuffer, ui UI, registers *register.Table, log *logging.Logger, opts Options) (*Session, error) {
	if buf == nil {
		return nil, ErrNoBuffer
	}
	if ui == nil {
		ui = NopUI{}
	}
	if log == nil {
		log = logging.Nop()
	}
	start, err := mode.Parse(cfg.Editing.StartMode)
	if err != nil {
		return nil, fmt.Errorf("session: start mode: %w", err)
	}
	if start != mode.Normal && start != mode.Insert {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStartMode, start)
	}

	id := uuid.New()
	log = log.WithField("session", id.String())

	if registers == nil {
		registers = newRegisters(cfg, log)
	}

	s := &Session{
		id:        id,
		opts:      opts,
		cfg:       cfg,
		buf:       buf,
		ui:        ui,
		registers: registers,
		log:       log.WithComponent("session"),
		registry:  catalog.NewRegistry(),
		modes:     mode.NewManager(start),
		cursors:   cursor.NewSet(buffer.Pos(0, 0), log),
	}
	if err := actions.Register(s.registry); err != nil {
		return nil, err
	}
	if err := s.ApplyKeymap(keymap.FromConfig(cfg.Keymap)); err != nil {
		s.log.Warn("keymap: %v", err)
	}
	s.matcher = matcher.New(s.registry, log)
	s.recorder = macro.NewRecorder(registers, log)
	s.player = macro.NewPlayer(s.recorder, cfg.Macro.MaxDepth)

	dcfg := dispatcher.DefaultConfig().
		WithPanicRecovery(opts.RecoverFaults).
		WithMaxRepeatCount(opts.MaxRepeatCount)
	if opts.EnableMetrics {
		dcfg = dcfg.WithMetrics()
	}
	env := execctx.Env{
		Buffer:    buf,
		Registers: registers,
		Config:    cfg,
		Log:       log,
		Macros:    s.recorder,
	}
	s.dispatcher = dispatcher.New(dcfg, env, s.cursors, s.modes, ui)

	s.modes.OnChange(func(from, to mode.Mode) {
		s.log.Debug("mode %s -> %s", from, to)
	})
	s.resetPending()
	if start == mode.Insert {
		s.pending.ContinueInInsert(buffer.Pos(0, 0))
	}

	s.log.Info("session started in %s mode with %d actions", start, s.registry.Len())
	return s, nil
}

// newRegisters builds the register table a session uses when the shell
// does not share one.
func newRegisters(cfg config.Config, log *logging.Logger) *register.Table {
	opts := []register.Option{register.WithLogger(log)}
	if cfg.Registers.UseSystemClipboard && register.SystemClipboardAvailable() {
		opts = append(opts, register.WithClipboard(register.SystemClipboard{}))
	}
	return register.NewTable(opts...)
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Mode returns the current mode.
func (s *Session) Mode() mode.Mode {
	return s.modes.Current()
}

// ModeIncludingPseudo returns the current mode, reading as
// OperatorPending while an operator waits for its motion.
func (s *Session) ModeIncludingPseudo() mode.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mode.IncludingPseudo(s.modes.Current(), s.pending.HasOperator())
}

// Cursors returns a snapshot of the cursor set.
func (s *Session) Cursors() []cursor.Cursor {
	return s.cursors.All()
}

// SetCursors replaces the cursor set. An empty set is refused with a
// warning and the previous cursors are kept.
func (s *Session) SetCursors(cursors []cursor.Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cursors.SetCursors(cursors); err != nil {
		return err
	}
	s.cursors.Clamp(s.buf)
	return nil
}

// Registers returns the register table.
func (s *Session) Registers() *register.Table {
	return s.registers
}

// Buffer returns the document the session edits.
func (s *Session) Buffer() buffer.TextBuffer {
	return s.buf
}

// Config returns the session's configuration.
func (s *Session) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetConfig replaces the configuration used by subsequent commands.
func (s *Session) SetConfig(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	s.dispatcher.SetEditorConfig(cfg)
	s.player = macro.NewPlayer(s.recorder, cfg.Macro.MaxDepth)
	s.log.Debug("configuration replaced")
}

// RegisterAction adds an action to the catalog. It is matched after the
// built-in actions with the same keys.
func (s *Session) RegisterAction(a *catalog.Action) error {
	if err := s.registry.Register(a); err != nil {
		return err
	}
	s.log.Debug("registered action %s", a.Name)
	return nil
}

// ApplyKeymap registers user key remaps. Bindings that fail are skipped;
// the returned error joins their failures.
func (s *Session) ApplyKeymap(km *keymap.Keymap) error {
	return km.Apply(s.registry)
}

// RegisterMode adds a plugin-owned mode and returns it.
func (s *Session) RegisterMode(name string) mode.Mode {
	return s.modes.RegisterPluginMode(name)
}

// SwitchMode changes the mode, ending any command being typed.
func (s *Session) SwitchMode(m mode.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.modes.Switch(m)
	s.resetPending()
	if m.IsInsertLike() {
		s.pending.ContinueInInsert(s.cursors.Primary().Active)
	}
}

// AddPreDispatchHook registers a hook run before every dispatched step.
func (s *Session) AddPreDispatchHook(h dispatcher.PreDispatchHook) {
	s.dispatcher.RegisterPreHook(h)
}

// AddPostDispatchHook registers a hook run after every dispatched step.
func (s *Session) AddPostDispatchHook(h dispatcher.PostDispatchHook) {
	s.dispatcher.RegisterPostHook(h)
}

// Recording returns the register a macro is being recorded into.
func (s *Session) Recording() (rune, bool) {
	return s.recorder.Recording().Get()
}

// Metrics returns dispatch statistics, or nil when disabled.
func (s *Session) Metrics() *dispatcher.Metrics {
	return s.dispatcher.Metrics()
}

// PendingDisplay returns the keys of the command typed so far, for the
// status line.
func (s *Session) PendingDisplay() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modes.Current() == mode.SearchInProgress {
		prefix := "?"
		if s.dispatcher.State().SearchForward {
			prefix = "/"
		}
		return prefix + string(s.dispatcher.State().SearchInput)
	}
	return s.pending.Display()
}

// HandleContentChange records a document change the shell made outside
// the engine during an insert session, so that dot repeat replays it.
// Changes outside an insert session are ignored.
func (s *Session) HandleContentChange(c transform.ContentChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending.InsertSession {
		s.log.Debug("ignoring content change %s outside insert", c)
		return
	}
	s.pending.Transformer.AddContentChange(c)
}

// HandleKey processes one key. Errors HandleKeyContext would return are
// logged.
func (s *Session) HandleKey(ev key.Event) {
	if err := s.HandleKeyContext(context.Background(), ev); err != nil {
		s.log.Warn("key %s: %v", ev, err)
	}
}

// HandleKeys processes keys in order, stopping early when ctx is done.
func (s *Session) HandleKeys(ctx context.Context, events []key.Event) error {
	for _, ev := range events {
		if err := s.HandleKeyContext(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// HandleKeyContext processes one key. Macro replays it triggers stop when
// ctx is done. User errors are reported through the UI and not returned;
// the error is ctx's or a recovered fault.
func (s *Session) HandleKeyContext(ctx context.Context, ev key.Event) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.opts.RecoverFaults {
		defer s.recoverFault(&err)
	}

	err = s.handleKey(ctx, ev)
	s.settle()
	if editerr.IsUserError(err) {
		return nil
	}
	return err
}

// recoverFault turns a fault raised outside an action into an error,
// resetting the command.
func (s *Session) recoverFault(err *error) {
	r := recover()
	if r == nil {
		return
	}
	f, ok := editerr.AsFault(r)
	if !ok {
		panic(r)
	}
	buf := make([]byte, 4096)
	buf = buf[:runtime.Stack(buf, false)]
	s.log.Error("fault: %v\n%s", f, buf)
	s.ui.SetStatusText(f.Error(), true)
	s.resetPending()
	*err = f
}

// handleKey matches the keys typed so far and dispatches a complete
// match. It returns the error that aborted a step, if any.
func (s *Session) handleKey(ctx context.Context, ev key.Event) error {
	st := s.pending
	if len(st.KeysPressed) == 0 && !st.InsertSession {
		s.recordable = s.recorder.Recording().IsPresent()
	}
	st.PushKey(ev)

	current := s.modes.Current()
	view := st.View(current, s.recorder.Recording().IsPresent(), s.cursors.IsMultiCursor())
	res := s.matcher.Match(view, st.ActionKeys)

	switch res.Status {
	case matcher.Partial:
		return nil
	case matcher.NoMatch:
		s.noMatch(current)
		return nil
	}

	step := pending.Step{
		Action:   res.Action,
		Keys:     append([]key.Event(nil), st.ActionKeys[:res.Consumed]...),
		Captures: res.Captures,
	}
	st.ClearActionKeys()
	if st.InsertSession && st.InsertCount > 1 && step.Action.Name == actions.ActionLeaveInsert {
		s.finishCountedInsert(ctx, st)
	}
	out := s.dispatcher.Dispatch(step, st)
	return s.afterDispatch(ctx, step, out)
}

// noMatch discards keys no action can complete. Inside an insert session
// or a search only those keys are dropped; otherwise the whole command
// is abandoned.
func (s *Session) noMatch(current mode.Mode) {
	st := s.pending
	if st.InsertSession || current == mode.SearchInProgress {
		s.log.Debug("dropping unmatched keys %s", key.Format(st.ActionKeys))
		st.DropLastKeys(len(st.ActionKeys))
		st.ClearActionKeys()
		return
	}
	s.log.Debug("discarding command %s", key.Format(st.KeysPressed))
	s.resetPending()
}

// afterDispatch advances the command after a step ran and acts on the
// requests the step deferred to the session.
func (s *Session) afterDispatch(ctx context.Context, step pending.Step, res dispatcher.Result) error {
	st := s.pending
	current := s.modes.Current()

	switch res.Outcome {
	case dispatcher.Aborted:
		if st.InsertSession && current.IsInsertLike() {
			st.DropLastKeys(len(step.Keys))
			st.Actions = st.Actions[:len(st.Actions)-1]
		} else {
			if current == mode.SearchInProgress {
				s.modes.Switch(mode.Normal)
			}
			s.resetPending()
		}
		if err := s.runDeferred(ctx, res.Deferred); err != nil {
			return err
		}
		return res.Err

	case dispatcher.Completed:
		if current.IsInsertLike() {
			if !st.InsertSession {
				st.ContinueInInsert(s.cursors.Primary().Active)
			}
		} else {
			s.finishCommand()
		}

	case dispatcher.Pending:
		if current.IsInsertLike() && !st.InsertSession {
			st.ContinueInInsert(s.cursors.Primary().Active)
		}
	}
	return s.runDeferred(ctx, res.Deferred)
}

// finishCommand records the completed command and starts a fresh one.
func (s *Session) finishCommand() {
	st := s.pending
	if st.Repeatable() && !st.Replay && !cancelled(st) {
		s.recorder.SnapshotAsRepeatable(repeatable(st))
	}
	if s.recordable {
		s.recorder.AppendToMacro(register.KeyCommand(append([]key.Event(nil), st.Keys()...)))
	}
	if st.InsertSession {
		s.registers.SetSpecial(register.LastInsert, insertedText(st.Transformer.ContentChanges()))
	}
	s.resetPending()
}

// cancelled reports whether the command ended with a cancel key.
func cancelled(st *pending.State) bool {
	n := len(st.Actions)
	return n > 0 && st.Actions[n-1].Action.Name == actions.ActionCancel
}

func (s *Session) resetPending() {
	s.pending = pending.New(s.log)
	s.recordable = false
}

// runDeferred acts on status, macro, and repeat requests in order.
func (s *Session) runDeferred(ctx context.Context, deferred []transform.Transformation) error {
	for _, t := range deferred {
		var err error
		switch t.Kind {
		case transform.ShowStatus:
			s.ui.SetStatusText(t.Text, false)
		case transform.MacroReplay:
			err = s.playMacro(ctx, t.Register, t.Count)
		case transform.DotRepeat:
			err = s.dotRepeat(ctx, t.Count)
		default:
			s.log.Debug("ignoring deferred %s", t)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// settle brings the cursors and the UI in line with the mode after a key.
func (s *Session) settle() {
	current := s.modes.Current()
	if current == mode.Normal {
		s.clampToCharacters()
	}

	primary := s.cursors.Primary()
	s.ui.RevealRange(buffer.PointRange(primary.Active))

	var ranges []buffer.Range
	if current.IsVisual() {
		for _, c := range s.cursors.All() {
			span := dispatcher.SelectionSpan(s.buf, current, c)
			if current == mode.VisualBlock {
				ranges = append(ranges, span.BlockRanges(s.buf)...)
				continue
			}
			ranges = append(ranges, span.Range(s.buf))
		}
	}
	s.ui.SetDecorations(SelectionDecoration, ranges)
}

// clampToCharacters keeps Normal-mode cursors on a character: the cursor
// cannot rest past the last character of a line.
func (s *Session) clampToCharacters() {
	cursors := s.cursors.All()
	changed := false
	for i, c := range cursors {
		last := buffer.LastGrapheme(s.buf.LineAt(c.Active.Line).Text)
		if c.Active.Column > last || !c.IsCaret() {
			cursors[i] = cursor.At(buffer.Pos(c.Active.Line, min(c.Active.Column, last)))
			changed = true
		}
	}
	if changed {
		_ = s.cursors.SetCursors(cursors)
	}
}

// reportError shows a user error raised outside a dispatched step.
func (s *Session) reportError(err error) {
	var ue *editerr.UserError
	if errors.As(err, &ue) {
		s.ui.SetStatusText(ue.Error(), true)
		return
	}
	s.log.Warn("%v", err)
}
