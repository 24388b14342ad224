package dispatcher

import (
	"errors"
	"testing"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/config"
	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/pending"
	"github.com/dshills/modal/internal/register"
)

type statusRecorder struct {
	text    string
	isError bool
}

func (s *statusRecorder) SetStatusText(text string, isError bool) {
	s.text, s.isError = text, isError
}

type fixture struct {
	buf     *buffer.Buffer
	cursors *cursor.Set
	modes   *mode.Manager
	status  *statusRecorder
	d       *Dispatcher
}

func newFixture(text string, cfg Config, cursors ...cursor.Cursor) *fixture {
	f := &fixture{
		buf:     buffer.New(text),
		cursors: cursor.NewSet(buffer.Pos(0, 0), nil),
		modes:   mode.NewManager(mode.Normal),
		status:  &statusRecorder{},
	}
	if len(cursors) > 0 {
		_ = f.cursors.SetCursors(cursors)
	}
	env := execctx.Env{
		Buffer:    f.buf,
		Registers: register.NewTable(),
		Config:    config.Default(),
	}
	f.d = New(cfg, env, f.cursors, f.modes, f.status)
	return f
}

func step(a *catalog.Action, keys string) pending.Step {
	return pending.Step{Action: a, Keys: key.MustParseSequence(keys)}
}

var (
	right = &catalog.Action{
		Name: "right", Kind: catalog.Motion, Modes: []mode.Mode{mode.Normal, mode.Visual},
		CountRepeats: true,
		Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
			return execctx.To(from.Translate(0, 1)), nil
		},
	}
	threeRight = &catalog.Action{
		Name: "threeRight", Kind: catalog.Motion, Modes: []mode.Mode{mode.Normal},
		Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
			return execctx.To(from.Translate(0, 3)), nil
		},
	}
	stuck = &catalog.Action{
		Name: "stuck", Kind: catalog.Motion, Modes: []mode.Mode{mode.Normal},
		Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
			return execctx.Motion{}, execctx.ErrNoMotion
		},
	}
	deleteOp = &catalog.Action{
		Name: "delete", Kind: catalog.Operator, Modes: []mode.Mode{mode.Normal, mode.Visual},
		Operator: func(ctx *execctx.Context, span execctx.Span) error {
			r := span.Range(ctx.Buffer)
			ctx.Delete(r, r.Start)
			return nil
		},
	}
	yankOp = &catalog.Action{
		Name: "yank", Kind: catalog.Operator, Modes: []mode.Mode{mode.Normal},
		Operator: func(ctx *execctx.Context, span execctx.Span) error {
			return nil
		},
	}
	insertX = &catalog.Action{
		Name: "insertX", Kind: catalog.Command, Modes: []mode.Mode{mode.Normal},
		CountRepeats: true,
		Command: func(ctx *execctx.Context) error {
			p := ctx.Pos()
			ctx.Insert(p, "x", p.Translate(0, 1))
			return nil
		},
	}
	countCursors = &catalog.Action{
		Name: "countCursors", Kind: catalog.Command, Modes: []mode.Mode{mode.Normal},
		FanOut: catalog.Once,
		Command: func(ctx *execctx.Context) error {
			ctx.Status(string(rune('0' + len(ctx.Cursors))))
			return nil
		},
	}
	failing = &catalog.Action{
		Name: "failing", Kind: catalog.Command, Modes: []mode.Mode{mode.Normal},
		Command: func(ctx *execctx.Context) error {
			return editerr.ErrNoPreviousSearch
		},
	}
	faulty = &catalog.Action{
		Name: "faulty", Kind: catalog.Command, Modes: []mode.Mode{mode.Normal},
		Command: func(ctx *execctx.Context) error {
			editerr.Faultf("broken invariant")
			return nil
		},
	}
	prefix = &catalog.Action{
		Name: "prefix", Kind: catalog.Command, Modes: []mode.Mode{mode.Normal},
		Incomplete: true,
		Command:    func(ctx *execctx.Context) error { return nil },
	}
)

func TestDispatch_MotionMovesEveryCursor(t *testing.T) {
	f := newFixture("abc\nabc", DefaultConfig(), cursor.At(buffer.Pos(0, 0)), cursor.At(buffer.Pos(1, 0)))
	st := pending.New(nil)

	res := f.d.Dispatch(step(right, "l"), st)
	if res.Outcome != Completed {
		t.Fatalf("expected completed, got %s (%v)", res.Outcome, res.Err)
	}

	got := f.cursors.All()
	want := []cursor.Cursor{cursor.At(buffer.Pos(0, 1)), cursor.At(buffer.Pos(1, 1))}
	if len(got) != len(want) {
		t.Fatalf("expected %d cursors, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cursor %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDispatch_MotionCountRepeats(t *testing.T) {
	f := newFixture("abcdef", DefaultConfig())
	st := pending.New(nil)
	st.Count = 4

	f.d.Dispatch(step(right, "l"), st)

	if got := f.cursors.Primary().Active; got != buffer.Pos(0, 4) {
		t.Errorf("expected (0:4), got %s", got)
	}
}

func TestDispatch_OperatorWaitsForMotion(t *testing.T) {
	f := newFixture("hello world", DefaultConfig())
	st := pending.New(nil)

	res := f.d.Dispatch(step(deleteOp, "d"), st)
	if res.Outcome != Pending {
		t.Fatalf("expected pending, got %s", res.Outcome)
	}
	if !st.HasOperator() {
		t.Fatal("expected operator to be pending")
	}

	res = f.d.Dispatch(step(threeRight, "3"), st)
	if res.Outcome != Completed {
		t.Fatalf("expected completed, got %s (%v)", res.Outcome, res.Err)
	}
	if got := f.buf.String(); got != "lo world" {
		t.Errorf("expected %q, got %q", "lo world", got)
	}
	if got := f.cursors.Primary().Active; got != buffer.Pos(0, 0) {
		t.Errorf("expected (0:0), got %s", got)
	}
}

func TestDispatch_OperatorConflictAborts(t *testing.T) {
	f := newFixture("hello", DefaultConfig())
	st := pending.New(nil)

	f.d.Dispatch(step(deleteOp, "d"), st)
	res := f.d.Dispatch(step(yankOp, "y"), st)

	if res.Outcome != Aborted {
		t.Fatalf("expected aborted, got %s", res.Outcome)
	}
	if !errors.Is(res.Err, ErrOperatorConflict) {
		t.Errorf("expected ErrOperatorConflict, got %v", res.Err)
	}
	if f.status.text != "" {
		t.Errorf("expected no status message, got %q", f.status.text)
	}
}

func TestDispatch_NoMotionLeavesDocument(t *testing.T) {
	f := newFixture("hello", DefaultConfig())
	st := pending.New(nil)

	f.d.Dispatch(step(deleteOp, "d"), st)
	res := f.d.Dispatch(step(stuck, "s"), st)

	if res.Outcome != Completed {
		t.Errorf("expected completed, got %s", res.Outcome)
	}
	if got := f.buf.String(); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}

func TestDispatch_VisualOperator(t *testing.T) {
	f := newFixture("hello world", DefaultConfig(), cursor.New(buffer.Pos(0, 0), buffer.Pos(0, 2)))
	f.modes.Switch(mode.Visual)
	st := pending.New(nil)

	res := f.d.Dispatch(step(deleteOp, "d"), st)
	if res.Outcome != Completed {
		t.Fatalf("expected completed, got %s (%v)", res.Outcome, res.Err)
	}
	if got := f.buf.String(); got != "lo world" {
		t.Errorf("expected %q, got %q", "lo world", got)
	}
	if got := f.modes.Current(); got != mode.Normal {
		t.Errorf("expected normal mode, got %s", got)
	}
	if f.d.State().LastVisual.IsAbsent() {
		t.Error("expected last visual selection to be recorded")
	}
}

func TestDispatch_VisualMotionKeepsAnchor(t *testing.T) {
	f := newFixture("hello", DefaultConfig(), cursor.New(buffer.Pos(0, 1), buffer.Pos(0, 1)))
	f.modes.Switch(mode.Visual)
	st := pending.New(nil)

	f.d.Dispatch(step(right, "l"), st)

	got := f.cursors.Primary()
	if got.Anchor != buffer.Pos(0, 1) || got.Active != buffer.Pos(0, 2) {
		t.Errorf("expected anchor (0:1) active (0:2), got %s", got)
	}
}

func TestDispatch_CommandCountRepeats(t *testing.T) {
	f := newFixture("abc", DefaultConfig())
	st := pending.New(nil)
	st.Count = 3

	f.d.Dispatch(step(insertX, "x"), st)

	if got := f.buf.String(); got != "xxxabc" {
		t.Errorf("expected %q, got %q", "xxxabc", got)
	}
	if got := f.cursors.Primary().Active; got != buffer.Pos(0, 3) {
		t.Errorf("expected (0:3), got %s", got)
	}
}

func TestDispatch_MaxRepeatCount(t *testing.T) {
	f := newFixture("abc", DefaultConfig().WithMaxRepeatCount(2))
	st := pending.New(nil)
	st.Count = 50

	f.d.Dispatch(step(insertX, "x"), st)

	if got := f.buf.String(); got != "xxabc" {
		t.Errorf("expected %q, got %q", "xxabc", got)
	}
}

func TestDispatch_OnceSeesAllCursors(t *testing.T) {
	f := newFixture("a\nb\nc", DefaultConfig(),
		cursor.At(buffer.Pos(0, 0)), cursor.At(buffer.Pos(1, 0)), cursor.At(buffer.Pos(2, 0)))
	st := pending.New(nil)

	res := f.d.Dispatch(step(countCursors, "c"), st)

	if len(res.Deferred) != 1 {
		t.Fatalf("expected 1 deferred transformation, got %d", len(res.Deferred))
	}
	if got := res.Deferred[0].Text; got != "3" {
		t.Errorf("expected %q, got %q", "3", got)
	}
}

func TestDispatch_IncompleteKeepsPending(t *testing.T) {
	f := newFixture("abc", DefaultConfig())
	st := pending.New(nil)

	res := f.d.Dispatch(step(prefix, "p"), st)
	if res.Outcome != Pending {
		t.Errorf("expected pending, got %s", res.Outcome)
	}
	if len(st.Actions) != 1 {
		t.Errorf("expected 1 recorded action, got %d", len(st.Actions))
	}
}

func TestDispatch_UserErrorIsReported(t *testing.T) {
	f := newFixture("abc", DefaultConfig())
	st := pending.New(nil)

	res := f.d.Dispatch(step(failing, "n"), st)

	if res.Outcome != Aborted {
		t.Errorf("expected aborted, got %s", res.Outcome)
	}
	if !editerr.IsUserError(res.Err) {
		t.Errorf("expected a user error, got %v", res.Err)
	}
	if !f.status.isError || f.status.text != editerr.ErrNoPreviousSearch.Error() {
		t.Errorf("expected error status %q, got %q", editerr.ErrNoPreviousSearch.Error(), f.status.text)
	}
}

func TestDispatch_RecoversFault(t *testing.T) {
	f := newFixture("abc", DefaultConfig().WithPanicRecovery(true).WithMetrics())
	st := pending.New(nil)

	res := f.d.Dispatch(step(faulty, "z"), st)

	if res.Outcome != Aborted {
		t.Fatalf("expected aborted, got %s", res.Outcome)
	}
	var fault *editerr.Fault
	if !errors.As(res.Err, &fault) {
		t.Fatalf("expected a fault, got %v", res.Err)
	}
	if f.d.Metrics().TotalPanics() != 1 {
		t.Errorf("expected 1 panic, got %d", f.d.Metrics().TotalPanics())
	}
}

func TestDispatch_FaultPanicsWithoutRecovery(t *testing.T) {
	f := newFixture("abc", DefaultConfig())
	st := pending.New(nil)

	defer func() {
		if _, ok := editerr.AsFault(recover()); !ok {
			t.Error("expected a fault panic")
		}
	}()
	f.d.Dispatch(step(faulty, "z"), st)
}

func TestDispatch_Hooks(t *testing.T) {
	f := newFixture("abc", DefaultConfig())

	var seen []Outcome
	f.d.RegisterPostHook(PostDispatchFunc(func(_ pending.Step, res Result) {
		seen = append(seen, res.Outcome)
	}))
	f.d.RegisterPreHook(PreDispatchFunc(func(s pending.Step, _ *pending.State) bool {
		return s.Action.Name != "insertX"
	}))

	res := f.d.Dispatch(step(insertX, "x"), pending.New(nil))
	if !errors.Is(res.Err, ErrCancelledByHook) {
		t.Errorf("expected ErrCancelledByHook, got %v", res.Err)
	}
	if got := f.buf.String(); got != "abc" {
		t.Errorf("expected %q, got %q", "abc", got)
	}

	f.d.Dispatch(step(right, "l"), pending.New(nil))
	if len(seen) != 2 || seen[0] != Aborted || seen[1] != Completed {
		t.Errorf("expected [aborted completed], got %v", seen)
	}
}

func TestDispatch_CountLimitHook(t *testing.T) {
	f := newFixture("abc", DefaultConfig())
	f.d.RegisterPreHook(NewCountLimitHook(2))
	st := pending.New(nil)
	st.Count = 9

	f.d.Dispatch(step(insertX, "x"), st)

	if got := f.buf.String(); got != "xxabc" {
		t.Errorf("expected %q, got %q", "xxabc", got)
	}
}

func TestDispatch_Metrics(t *testing.T) {
	f := newFixture("abc", DefaultConfig().WithMetrics())

	f.d.Dispatch(step(right, "l"), pending.New(nil))
	f.d.Dispatch(step(right, "l"), pending.New(nil))
	f.d.Dispatch(step(failing, "n"), pending.New(nil))

	m := f.d.Metrics()
	if m.TotalDispatches() != 3 {
		t.Errorf("expected 3 dispatches, got %d", m.TotalDispatches())
	}
	stats := m.ActionStats("right")
	if stats == nil || stats.DispatchCount != 2 {
		t.Errorf("expected 2 dispatches of right, got %+v", stats)
	}
	if stats := m.ActionStats("failing"); stats == nil || stats.AbortCount != 1 {
		t.Errorf("expected 1 abort of failing, got %+v", stats)
	}
}

func TestMotionSpan(t *testing.T) {
	tb := buffer.New("hello world\nsecond line\nthird")

	tests := []struct {
		name string
		from buffer.Position
		mv   execctx.Motion
		want execctx.Span
	}{
		{
			name: "exclusive forward",
			from: buffer.Pos(0, 0),
			mv:   execctx.To(buffer.Pos(0, 6)),
			want: execctx.CharSpan(buffer.NewRange(buffer.Pos(0, 0), buffer.Pos(0, 6))),
		},
		{
			name: "exclusive backward",
			from: buffer.Pos(0, 6),
			mv:   execctx.To(buffer.Pos(0, 0)),
			want: execctx.CharSpan(buffer.NewRange(buffer.Pos(0, 0), buffer.Pos(0, 6))),
		},
		{
			name: "inclusive",
			from: buffer.Pos(0, 0),
			mv:   execctx.Motion{Pos: buffer.Pos(0, 4), Inclusive: true},
			want: execctx.CharSpan(buffer.NewRange(buffer.Pos(0, 0), buffer.Pos(0, 5))),
		},
		{
			name: "linewise",
			from: buffer.Pos(2, 3),
			mv:   execctx.Motion{Pos: buffer.Pos(1, 0), Linewise: true},
			want: execctx.LineSpan(1, 2),
		},
		{
			name: "exclusive to next line start",
			from: buffer.Pos(0, 6),
			mv:   execctx.To(buffer.Pos(1, 0)),
			want: execctx.CharSpan(buffer.NewRange(buffer.Pos(0, 6), buffer.Pos(0, 11))),
		},
		{
			name: "text object start",
			from: buffer.Pos(0, 8),
			mv:   execctx.Motion{Pos: buffer.Pos(0, 10), Start: mo.Some(buffer.Pos(0, 6)), Inclusive: true},
			want: execctx.CharSpan(buffer.NewRange(buffer.Pos(0, 6), buffer.Pos(0, 11))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MotionSpan(tb, tt.from, tt.mv)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSelectionSpan(t *testing.T) {
	tb := buffer.New("hello\nworld\nab")

	tests := []struct {
		name string
		mode mode.Mode
		c    cursor.Cursor
		text string
	}{
		{"charwise", mode.Visual, cursor.New(buffer.Pos(0, 1), buffer.Pos(0, 3)), "ell"},
		{"charwise reversed", mode.Visual, cursor.New(buffer.Pos(1, 2), buffer.Pos(0, 4)), "o\nwor"},
		{"linewise", mode.VisualLine, cursor.New(buffer.Pos(1, 3), buffer.Pos(0, 0)), "hello\nworld"},
		{"blockwise", mode.VisualBlock, cursor.New(buffer.Pos(0, 1), buffer.Pos(2, 3)), "ell\norl\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectionSpan(tb, tt.mode, tt.c).Text(tb)
			if got != tt.text {
				t.Errorf("expected %q, got %q", tt.text, got)
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Pending, "pending"},
		{Completed, "completed"},
		{Aborted, "aborted"},
		{Outcome(9), "Outcome(9)"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
