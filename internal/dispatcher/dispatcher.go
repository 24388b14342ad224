package dispatcher

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/config"
	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/pending"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/register"
	"github.com/dshills/modal/internal/transform"
)

// Outcome is what a dispatched step did to the command.
type Outcome uint8

const (
	// Pending means the command waits for more keys.
	Pending Outcome = iota
	// Completed means the command finished.
	Completed
	// Aborted means the command was abandoned.
	Aborted
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("Outcome(%d)", o)
}

// Result is the result of dispatching one step.
type Result struct {
	Outcome Outcome

	// Deferred are transformations the session handles after the step,
	// such as macro replay and status messages.
	Deferred []transform.Transformation

	// Err is why the command was aborted, if it was.
	Err error
}

// StatusReporter shows user errors.
type StatusReporter interface {
	SetStatusText(text string, isError bool)
}

// Dispatcher executes resolved actions against the cursor set.
type Dispatcher struct {
	mu sync.RWMutex

	env      execctx.Env
	cursors  *cursor.Set
	modes    *mode.Manager
	reporter StatusReporter

	config  Config
	metrics *Metrics

	preHooks  []PreDispatchHook
	postHooks []PostDispatchHook

	log *logging.Logger
}

// New creates a dispatcher.
func New(cfg Config, env execctx.Env, cursors *cursor.Set, modes *mode.Manager, reporter StatusReporter) *Dispatcher {
	if env.Log == nil {
		env.Log = logging.Nop()
	}
	if env.State == nil {
		env.State = execctx.NewState()
	}
	d := &Dispatcher{
		env:      env,
		cursors:  cursors,
		modes:    modes,
		reporter: reporter,
		config:   cfg,
		log:      env.Log.WithComponent("dispatcher"),
	}
	if cfg.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// SetEditorConfig replaces the editor configuration seen by actions.
func (d *Dispatcher) SetEditorConfig(cfg config.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.env.Config = cfg
}

// State returns the session state shared by actions.
func (d *Dispatcher) State() *execctx.State {
	return d.env.State
}

// Metrics returns the metrics collector (nil if disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}

// RegisterPreHook registers a pre-dispatch hook.
func (d *Dispatcher) RegisterPreHook(h PreDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preHooks = append(d.preHooks, h)
}

// RegisterPostHook registers a post-dispatch hook.
func (d *Dispatcher) RegisterPostHook(h PostDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postHooks = append(d.postHooks, h)
}

// Dispatch executes one resolved step of st. User errors are reported to
// the status line here and returned in the result; they never abort more
// than the current command.
func (d *Dispatcher) Dispatch(step pending.Step, st *pending.State) Result {
	start := time.Now()

	var res Result
	if !d.runPreHooks(step, st) {
		res = Result{Outcome: Aborted, Err: ErrCancelledByHook}
	} else {
		st.AppendAction(step)
		if d.config.RecoverFromPanic {
			res = d.dispatchWithRecovery(step, st)
		} else {
			res = d.dispatch(step, st)
		}
	}

	d.report(step, res)
	d.runPostHooks(step, res)

	if d.metrics != nil {
		d.metrics.RecordDispatch(step.Action.Name, time.Since(start), res.Outcome)
	}
	return res
}

// dispatchWithRecovery converts a fault into an aborted command.
func (d *Dispatcher) dispatchWithRecovery(step pending.Step, st *pending.State) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			f, ok := editerr.AsFault(r)
			if !ok {
				f = &editerr.Fault{Message: fmt.Sprint(r)}
			}
			d.log.Error("fault in %s: %v\n%s", step.Action.Name, f, stack[:n])
			st.Transformer.Discard()

			if d.metrics != nil {
				d.metrics.RecordPanic(step.Action.Name)
			}
			res = Result{Outcome: Aborted, Err: f}
		}
	}()

	return d.dispatch(step, st)
}

func (d *Dispatcher) dispatch(step pending.Step, st *pending.State) Result {
	switch step.Action.Kind {
	case catalog.Operator:
		return d.runOperator(step, st)
	case catalog.Motion:
		return d.runMotion(step, st)
	}
	return d.runCommand(step, st)
}

// runOperator either applies the operator to the visual selection or
// makes it wait for a motion.
func (d *Dispatcher) runOperator(step pending.Step, st *pending.State) Result {
	if d.modes.Current().IsVisual() {
		return d.runOnSelection(step, st)
	}
	if op, ok := st.Operator.Get(); ok {
		return d.abort(st, fmt.Errorf("%w: %s after %s", ErrOperatorConflict, step.Action.Name, op.Action.Name))
	}
	st.SetOperator(step)
	return Result{Outcome: Pending}
}

// runOnSelection applies an operator to each cursor's selection and
// leaves visual mode.
func (d *Dispatcher) runOnSelection(step pending.Step, st *pending.State) Result {
	m := d.modes.Current()
	cursors := d.cursors.All()

	ctxs := make([]*execctx.Context, 0, len(cursors))
	for i, c := range cursors {
		ctx := d.newContext(step, st, i, c, cursors)
		if err := step.Action.Operator(ctx, SelectionSpan(d.env.Buffer, m, c)); err != nil {
			return d.abort(st, err)
		}
		ctxs = append(ctxs, ctx)
	}

	d.env.State.LastVisual = mo.Some(execctx.Visual{Mode: m, Cursors: cursors})
	st.Selection = mo.Some(pending.ExtentOf(d.env.Buffer, m, cursors[0]))
	deferred, err := d.commit(st, cursors, ctxs, mo.Some(mode.Normal))
	if err != nil {
		return Result{Outcome: Aborted, Deferred: deferred, Err: err}
	}
	return d.finish(step.Action, ctxs, deferred)
}

// runMotion moves every cursor, or resolves the range of the pending
// operator and runs it.
func (d *Dispatcher) runMotion(step pending.Step, st *pending.State) Result {
	m := d.modes.Current()
	cursors := d.cursors.All()
	op, hasOp := st.Operator.Get()

	ctxs := make([]*execctx.Context, 0, len(cursors))
	for i, c := range cursors {
		ctx := d.newContext(step, st, i, c, cursors)
		if hasOp {
			ctx.Operator = op.Action.Name
		}

		mv, err := d.resolveMotion(ctx, step.Action, c.Active)
		if errors.Is(err, execctx.ErrNoMotion) {
			continue
		}
		if err != nil {
			return d.abort(st, err)
		}

		if !hasOp {
			if step.Action.Jump && i == 0 {
				d.env.State.PushJump(c.Active)
			}
			ctx.Select(moveCursor(m, c, mv))
			ctxs = append(ctxs, ctx)
			continue
		}

		opCtx := d.newContext(op, st, i, c, cursors)
		if err := op.Action.Operator(opCtx, MotionSpan(d.env.Buffer, c.Active, mv)); err != nil {
			return d.abort(st, err)
		}
		ctxs = append(ctxs, ctx, opCtx)
	}

	deferred, err := d.commit(st, cursors, ctxs, mo.None[mode.Mode]())
	if err != nil {
		return Result{Outcome: Aborted, Deferred: deferred, Err: err}
	}
	return d.finish(step.Action, ctxs, deferred)
}

// resolveMotion runs a motion, repeating it count times when the action
// asks for that.
func (d *Dispatcher) resolveMotion(ctx *execctx.Context, a *catalog.Action, from buffer.Position) (execctx.Motion, error) {
	if !a.CountRepeats {
		return a.Motion(ctx, from)
	}

	n := d.repeatCount(ctx.Count)
	ctx.Count = 0

	var mv execctx.Motion
	pos := from
	for i := 0; i < n; i++ {
		next, err := a.Motion(ctx, pos)
		if err != nil {
			if i > 0 && errors.Is(err, execctx.ErrNoMotion) {
				break
			}
			return mv, err
		}
		mv, pos = next, next.Pos
	}
	return mv, nil
}

// runCommand runs a command once, or count times with the document
// updated between repetitions.
func (d *Dispatcher) runCommand(step pending.Step, st *pending.State) Result {
	a := step.Action
	n := 1
	if a.CountRepeats {
		n = d.repeatCount(st.Count)
	}

	var (
		all      []*execctx.Context
		deferred []transform.Transformation
	)
	for it := 0; it < n; it++ {
		cursors := d.cursors.All()
		ctxs, err := d.invoke(step, st, cursors)
		if err != nil {
			res := d.abort(st, err)
			res.Deferred = deferred
			return res
		}

		def, err := d.commit(st, cursors, ctxs, mo.None[mode.Mode]())
		deferred = append(deferred, def...)
		all = append(all, ctxs...)
		if err != nil {
			return Result{Outcome: Aborted, Deferred: deferred, Err: err}
		}
	}
	return d.finish(a, all, deferred)
}

// invoke runs a command for each cursor in order, or once.
func (d *Dispatcher) invoke(step pending.Step, st *pending.State, cursors []cursor.Cursor) ([]*execctx.Context, error) {
	a := step.Action
	if a.FanOut == catalog.Once {
		ctx := d.newContext(step, st, 0, cursors[0], cursors)
		return []*execctx.Context{ctx}, a.Command(ctx)
	}

	ctxs := make([]*execctx.Context, 0, len(cursors))
	for i, c := range cursors {
		ctx := d.newContext(step, st, i, c, cursors)
		if err := a.Command(ctx); err != nil {
			return ctxs, err
		}
		ctxs = append(ctxs, ctx)
	}
	return ctxs, nil
}

// commit finalizes the queued transformations, applies the edits, and
// installs the resulting cursors and mode.
func (d *Dispatcher) commit(st *pending.State, cursors []cursor.Cursor, ctxs []*execctx.Context, next mo.Option[mode.Mode]) ([]transform.Transformation, error) {
	res := st.Transformer.Finalize(cursors)
	if len(res.Edits) > 0 {
		if _, err := d.env.Buffer.ApplyEdits(res.Edits); err != nil {
			return res.Deferred, editerr.NewWarning("applyEdits", err.Error())
		}
	}

	if err := d.storeText(ctxs, rejectedCursors(res.Rejected)); err != nil {
		return res.Deferred, err
	}

	final := res.Cursors
	for _, ctx := range ctxs {
		if rc := ctx.ReplacedCursors(); rc != nil {
			final = rc
		}
		if m, ok := ctx.NextMode().Get(); ok {
			next = mo.Some(m)
		}
	}
	_ = d.cursors.SetCursors(final)
	d.cursors.Clamp(d.env.Buffer)

	if m, ok := next.Get(); ok {
		d.modes.Switch(m)
	}
	return res.Deferred, nil
}

// storeText writes the register text queued by the invocations as one
// value with an entry per cursor. Cursors whose edits were rejected
// contribute nothing.
func (d *Dispatcher) storeText(ctxs []*execctx.Context, rejected map[int]bool) error {
	var (
		texts []string
		first execctx.StoredText
	)
	for _, ctx := range ctxs {
		st, ok := ctx.Stored().Get()
		if !ok || rejected[ctx.CursorIndex] {
			continue
		}
		if texts == nil {
			first = st
		}
		texts = append(texts, st.Text)
	}
	if texts == nil || d.env.Registers == nil {
		return nil
	}

	c := register.Content{Text: texts, Wise: first.Wise}
	if first.Yank {
		return d.env.Registers.Yank(first.Register, c)
	}
	return d.env.Registers.Delete(first.Register, c)
}

func rejectedCursors(rejected []transform.Transformation) map[int]bool {
	out := make(map[int]bool, len(rejected))
	for _, t := range rejected {
		if i, ok := t.Cursor.Get(); ok {
			out[i] = true
		}
	}
	return out
}

// finish decides whether the command is complete.
func (d *Dispatcher) finish(a *catalog.Action, ctxs []*execctx.Context, deferred []transform.Transformation) Result {
	complete := !a.Incomplete
	for _, ctx := range ctxs {
		if c, ok := ctx.Completion().Get(); ok {
			complete = c
		}
	}
	if !complete {
		return Result{Outcome: Pending, Deferred: deferred}
	}
	return Result{Outcome: Completed, Deferred: deferred}
}

func (d *Dispatcher) abort(st *pending.State, err error) Result {
	st.Transformer.Discard()
	return Result{Outcome: Aborted, Err: err}
}

func (d *Dispatcher) newContext(step pending.Step, st *pending.State, i int, c cursor.Cursor, cursors []cursor.Cursor) *execctx.Context {
	d.mu.RLock()
	env := d.env
	d.mu.RUnlock()

	ctx := execctx.New(env, st.Transformer).WithCursor(i, c).WithCount(st.Count)
	ctx.Mode = d.modes.Current()
	ctx.Cursors = cursors
	ctx.Register = st.Register
	ctx.Keys = step.Keys
	ctx.Captures = step.Captures
	ctx.Replaying = st.Replay
	ctx.Pending = st
	return ctx
}

func (d *Dispatcher) repeatCount(count int) int {
	n := max(count, 1)
	if d.config.MaxRepeatCount > 0 {
		n = min(n, d.config.MaxRepeatCount)
	}
	return n
}

// report shows user errors and logs everything else.
func (d *Dispatcher) report(step pending.Step, res Result) {
	if res.Err == nil {
		return
	}

	var (
		ue *editerr.UserError
		w  *editerr.Warning
		f  *editerr.Fault
	)
	switch {
	case errors.As(res.Err, &ue):
		d.log.Info("%s: %v", step.Action.Name, ue)
		if d.reporter != nil {
			d.reporter.SetStatusText(ue.Error(), true)
		}
	case errors.As(res.Err, &w):
		d.log.Warn("%s: %v", step.Action.Name, w)
	case errors.As(res.Err, &f):
		if d.reporter != nil {
			d.reporter.SetStatusText(f.Error(), true)
		}
	default:
		d.log.Debug("%s: %v", step.Action.Name, res.Err)
	}
}

func (d *Dispatcher) runPreHooks(step pending.Step, st *pending.State) bool {
	d.mu.RLock()
	hooks := make([]PreDispatchHook, len(d.preHooks))
	copy(hooks, d.preHooks)
	d.mu.RUnlock()

	for _, h := range hooks {
		if !h.PreDispatch(step, st) {
			return false
		}
	}
	return true
}

func (d *Dispatcher) runPostHooks(step pending.Step, res Result) {
	d.mu.RLock()
	hooks := make([]PostDispatchHook, len(d.postHooks))
	copy(hooks, d.postHooks)
	d.mu.RUnlock()

	for _, h := range hooks {
		h.PostDispatch(step, res)
	}
}

// moveCursor applies a motion to c outside an operator. Visual modes move
// the active end, or select the whole range of a text object; other modes
// move the caret.
func moveCursor(m mode.Mode, c cursor.Cursor, mv execctx.Motion) cursor.Cursor {
	if !m.IsVisual() {
		return cursor.At(mv.Pos)
	}
	if start, ok := mv.Start.Get(); ok {
		return cursor.New(start, mv.Pos)
	}
	return c.MoveTo(mv.Pos)
}
