package macro

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/pending"
	"github.com/dshills/modal/internal/register"
)

func command(keys string) *pending.State {
	s := pending.New(nil)
	for _, k := range key.MustParseSequence(keys) {
		s.PushKey(k)
	}
	return s
}

func record(t *testing.T, r *Recorder, name rune, cmds ...string) {
	t.Helper()
	if err := r.BeginMacro(name); err != nil {
		t.Fatalf("BeginMacro: %v", err)
	}
	for _, c := range cmds {
		r.AppendToMacro(command(c))
	}
	if _, err := r.EndMacro(); err != nil {
		t.Fatalf("EndMacro: %v", err)
	}
}

func TestRecorder_RecordAndOverwrite(t *testing.T) {
	regs := register.NewTable()
	r := NewRecorder(regs, nil)

	record(t, r, 'a', "x", "dw", "j")
	c, ok := regs.Get('a')
	if !ok || len(c.Macro) != 3 {
		t.Fatalf("expected 3 recorded commands, got %+v", c)
	}
	if c.String() != "xdwj" {
		t.Errorf("expected %q, got %q", "xdwj", c.String())
	}

	record(t, r, 'a', "k")
	c, _ = regs.Get('a')
	if c.String() != "k" {
		t.Errorf("expected lowercase to overwrite, got %q", c.String())
	}
}

func TestRecorder_UppercaseAppends(t *testing.T) {
	regs := register.NewTable()
	if err := regs.Put('a', register.TextContent("foo", register.CharWise)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	r := NewRecorder(regs, nil)

	record(t, r, 'A', "bar")

	c, _ := regs.Get('a')
	if !c.IsMacro() {
		t.Fatal("expected append to produce a macro")
	}
	if c.String() != "foobar" {
		t.Errorf("expected %q, got %q", "foobar", c.String())
	}
}

func TestRecorder_InvalidRegister(t *testing.T) {
	r := NewRecorder(register.NewTable(), nil)

	err := r.BeginMacro('.')
	if !editerr.IsUserError(err) {
		t.Errorf("expected user error, got %v", err)
	}
	if r.Recording().IsPresent() {
		t.Error("expected no recording")
	}
	if _, err := r.EndMacro(); err == nil {
		t.Error("expected warning when not recording")
	}
}

func TestRecorder_Snapshot(t *testing.T) {
	r := NewRecorder(register.NewTable(), nil)

	cmd := command("3x")
	r.SnapshotAsRepeatable(cmd)
	cmd.PushKey(key.Rune('y'))

	got, ok := r.LastRepeatable().Get()
	if !ok || key.Format(got.Keys()) != "3x" {
		t.Fatalf("expected snapshot 3x, got %v", got)
	}

	r.BeginDotRepeat()
	r.SnapshotAsRepeatable(command("dd"))
	r.EndDotRepeat()

	got, _ = r.LastRepeatable().Get()
	if key.Format(got.Keys()) != "3x" {
		t.Errorf("expected dot repeat not to replace snapshot, got %q", key.Format(got.Keys()))
	}
}

func TestPlayer_Play(t *testing.T) {
	regs := register.NewTable()
	r := NewRecorder(regs, nil)
	record(t, r, 'a', "x", "j", "p")
	p := NewPlayer(r, 10)

	var ran []string
	err := p.Play(context.Background(), 'a', 2, func(_ context.Context, cmd register.Recorded) error {
		ran = append(ran, key.Format(cmd.Keys()))
		return nil
	})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(ran) != 6 {
		t.Fatalf("expected 6 commands, got %v", ran)
	}
	if ran[3] != "x" {
		t.Errorf("expected second replay to restart, got %v", ran)
	}
	if last, ok := r.LastInvoked().Get(); !ok || last != 'a' {
		t.Errorf("expected last invoked 'a', got %v", r.LastInvoked())
	}
}

func TestPlayer_EmptyRegisterIsNoop(t *testing.T) {
	p := NewPlayer(NewRecorder(register.NewTable(), nil), 10)

	called := false
	err := p.Play(context.Background(), 'q', 1, func(context.Context, register.Recorded) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Errorf("expected silent no-op, got err=%v called=%v", err, called)
	}
}

func TestPlayer_ErrorAbortsReplay(t *testing.T) {
	regs := register.NewTable()
	r := NewRecorder(regs, nil)
	record(t, r, 'a', "x", "y", "z")
	p := NewPlayer(r, 10)

	boom := editerr.NewUserError(editerr.CodePatternNotFound, "Pattern not found")
	var ran int
	err := p.Play(context.Background(), 'a', 3, func(_ context.Context, cmd register.Recorded) error {
		ran++
		if key.Format(cmd.Keys()) == "y" {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected replay error, got %v", err)
	}
	if ran != 2 {
		t.Errorf("expected replay to stop after 2 commands, got %d", ran)
	}
}

func TestPlayer_NoRecordingDuringReplay(t *testing.T) {
	regs := register.NewTable()
	r := NewRecorder(regs, nil)
	record(t, r, 'a', "x")
	p := NewPlayer(r, 10)

	if err := r.BeginMacro('b'); err != nil {
		t.Fatalf("BeginMacro: %v", err)
	}
	err := p.Play(context.Background(), 'a', 1, func(_ context.Context, cmd register.Recorded) error {
		if !r.Replaying() {
			t.Error("expected replaying flag")
		}
		r.AppendToMacro(cmd)
		return nil
	})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	r.AppendToMacro(command("@a"))
	if _, err := r.EndMacro(); err != nil {
		t.Fatalf("EndMacro: %v", err)
	}

	c, _ := regs.Get('b')
	if c.String() != "@a" {
		t.Errorf("expected only the invocation recorded, got %q", c.String())
	}
}

func TestPlayer_DepthLimit(t *testing.T) {
	regs := register.NewTable()
	r := NewRecorder(regs, nil)
	record(t, r, 'a', "@a")
	p := NewPlayer(r, 5)

	var calls int
	var run ReplayFunc
	run = func(ctx context.Context, _ register.Recorded) error {
		calls++
		return p.Play(ctx, 'a', 1, run)
	}
	err := p.Play(context.Background(), 'a', 1, run)

	var ue *editerr.UserError
	if !errors.As(err, &ue) || ue.Code != editerr.CodeRecursiveMacro {
		t.Fatalf("expected recursive macro error, got %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 nested calls, got %d", calls)
	}
	if r.Replaying() {
		t.Error("expected replay depth to unwind")
	}
}

func TestPlayer_Cancelled(t *testing.T) {
	regs := register.NewTable()
	r := NewRecorder(regs, nil)
	record(t, r, 'a', "x")
	p := NewPlayer(r, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Play(ctx, 'a', 1, func(context.Context, register.Recorded) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
