package session

import (
	"context"
	"strings"

	"github.com/dshills/modal/internal/dispatcher"
	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/pending"
	"github.com/dshills/modal/internal/register"
	"github.com/dshills/modal/internal/transform"
)

// Names of the synthetic steps dot repeat runs.
const (
	replayInsertAction = "insert.replay"
	reselectAction     = "visual.reselect"
)

// repeatable returns the form of st that dot repeat runs. A command that
// went through an insert session has its typed keys replaced by one step
// per recorded content change, applied relative to the cursor. An
// operator that ran on a visual selection is preceded by a step selecting
// the same extent at the cursor.
func repeatable(st *pending.State) *pending.State {
	snap := st.Clone()
	if st.InsertSession {
		start := min(st.InsertStart, len(st.Actions))
		steps := append([]pending.Step(nil), snap.Actions[:start]...)
		steps = append(steps, replaySteps(st)...)
		if len(st.Actions) > start {
			steps = append(steps, snap.Actions[len(snap.Actions)-1])
		}
		snap.Actions = steps
		snap.InsertStart = start
	}
	if e, ok := st.Selection.Get(); ok {
		snap.Actions = append([]pending.Step{reselectStep(e)}, snap.Actions...)
		if snap.InsertSession {
			snap.InsertStart++
		}
	}
	return snap
}

// replaySteps returns a step per content change of st's insert session.
func replaySteps(st *pending.State) []pending.Step {
	var steps []pending.Step
	from := st.InsertOrigin
	for _, c := range st.Transformer.ContentChanges() {
		steps = append(steps, replayStep(c, from))
		from = c.Range.Start.Advance(c.Text)
	}
	return steps
}

// reselectStep builds a step selecting extent e at the cursor and
// entering its visual mode.
func reselectStep(e pending.Extent) pending.Step {
	a := &catalog.Action{
		Name: reselectAction, Kind: catalog.Command,
		Modes:      []mode.Mode{mode.Normal},
		Incomplete: true,
		Command: func(ctx *execctx.Context) error {
			ctx.Select(e.From(ctx.Buffer, ctx.Pos()))
			ctx.SetMode(e.Mode)
			return nil
		},
	}
	return pending.Step{Action: a}
}

// insertBody returns the steps that type the text of an insert session
// once more, given the steps before the session and its replay steps.
// It is empty when the command entering the session ignores counts.
func insertBody(prefix, changes []pending.Step) []pending.Step {
	if len(prefix) == 0 {
		return nil
	}
	enter := prefix[len(prefix)-1]
	switch enter.Action.InsertRepeat {
	case catalog.RepeatText:
		return changes
	case catalog.RepeatLines:
		return append([]pending.Step{enter}, changes...)
	}
	return nil
}

// repeatInsert runs body n-1 more times on st, capped at the dispatcher's
// repeat limit. It returns the error of a step that aborted.
func (s *Session) repeatInsert(ctx context.Context, st *pending.State, body []pending.Step, n int) error {
	if len(body) == 0 {
		return nil
	}
	if limit := s.dispatcher.Config().MaxRepeatCount; limit > 0 {
		n = min(n, limit)
	}
	for i := 1; i < n; i++ {
		for _, step := range body {
			if err := ctx.Err(); err != nil {
				return err
			}
			if res := s.dispatcher.Dispatch(step, st); res.Outcome == dispatcher.Aborted {
				return res.Err
			}
		}
	}
	return nil
}

// finishCountedInsert types the text of the insert session st ends with
// as many more times as its count asks, before the key leaving the
// session runs.
func (s *Session) finishCountedInsert(ctx context.Context, st *pending.State) {
	start := min(st.InsertStart, len(st.Actions))
	body := insertBody(st.Actions[:start], replaySteps(st))
	scratch := pending.New(s.log)
	scratch.Replay = true
	if err := s.repeatInsert(ctx, scratch, body, st.InsertCount); err != nil {
		s.log.Warn("repeating insert: %v", err)
	}
}

// replayStep builds a step applying c with from moved to the cursor.
func replayStep(c transform.ContentChange, from buffer.Position) pending.Step {
	a := &catalog.Action{
		Name: replayInsertAction, Kind: catalog.Command,
		Modes:      []mode.Mode{mode.Insert, mode.Replace},
		Incomplete: true,
		Command: func(ctx *execctx.Context) error {
			moved := c.Relocate(from, ctx.Pos())
			r := buffer.Range{
				Start: buffer.Clamp(ctx.Buffer, moved.Range.Start),
				End:   buffer.Clamp(ctx.Buffer, moved.Range.End),
			}
			if r.IsEmpty() && c.Text == "" {
				return nil
			}
			ctx.Replace(r, c.Text, r.End)
			return nil
		},
	}
	return pending.Step{Action: a}
}

// insertedText returns the text typed in an insert session, for the "."
// register.
func insertedText(changes []transform.ContentChange) string {
	var b strings.Builder
	for _, c := range changes {
		b.WriteString(c.Text)
	}
	return b.String()
}

// dotRepeat runs the last repeatable command again at the current
// cursors. A nonzero count replaces the count the command was typed with.
func (s *Session) dotRepeat(ctx context.Context, count int) error {
	last, ok := s.recorder.LastRepeatable().Get()
	if !ok {
		return nil
	}

	s.recorder.BeginDotRepeat()
	defer s.recorder.EndDotRepeat()

	st := pending.New(s.log)
	st.Replay = true
	inserts := last.InsertCount
	if count > 0 {
		st.Count = count
		inserts = count
	}
	s.pending = st
	defer s.resetPending()

	steps := last.Actions
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if count > 0 && step.Action.CountDigit {
			continue
		}
		if last.InsertSession && i == len(steps)-1 && i >= last.InsertStart {
			body := insertBody(steps[:last.InsertStart], steps[last.InsertStart:i])
			if err := s.repeatInsert(ctx, st, body, inserts); err != nil {
				s.leaveReplayModes()
				return err
			}
		}
		res := s.dispatcher.Dispatch(step, st)
		for _, t := range res.Deferred {
			if t.Kind == transform.ShowStatus {
				s.ui.SetStatusText(t.Text, false)
			}
		}
		if res.Outcome == dispatcher.Aborted {
			s.leaveReplayModes()
			return res.Err
		}
	}
	s.leaveReplayModes()
	return nil
}

// leaveReplayModes returns to Normal mode when a replay stopped inside an
// insert session, a search or a selection.
func (s *Session) leaveReplayModes() {
	if m := s.modes.Current(); m.IsInsertLike() || m.IsVisual() || m == mode.SearchInProgress {
		s.modes.Switch(mode.Normal)
	}
}

// playMacro replays register name count times by feeding its keys through
// the matcher, so every motion resolves against the document as it is
// when it runs. A user error stops the replay.
func (s *Session) playMacro(ctx context.Context, name rune, count int) error {
	err := s.player.Play(ctx, name, count, func(ctx context.Context, cmd register.Recorded) error {
		for _, ev := range cmd.Keys() {
			if err := s.handleKey(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		s.reportError(err)
	}
	return err
}
