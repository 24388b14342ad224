package actions

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
)

// Action names for motions.
const (
	ActionMoveLeft          = "cursor.moveLeft"
	ActionMoveRight         = "cursor.moveRight"
	ActionMoveUp            = "cursor.moveUp"
	ActionMoveDown          = "cursor.moveDown"
	ActionLineStart         = "cursor.lineStart"
	ActionFirstNonBlank     = "cursor.firstNonBlank"
	ActionLineEnd           = "cursor.lineEnd"
	ActionGotoFirstLine     = "cursor.gotoFirstLine"
	ActionGotoLastLine      = "cursor.gotoLastLine"
	ActionWordForward       = "cursor.wordForward"
	ActionWordBackward      = "cursor.wordBackward"
	ActionWordEndForward    = "cursor.wordEndForward"
	ActionBigWordForward    = "cursor.bigWordForward"
	ActionBigWordBackward   = "cursor.bigWordBackward"
	ActionBigWordEndForward = "cursor.bigWordEndForward"
	ActionFindChar          = "cursor.findChar"
	ActionTillChar          = "cursor.tillChar"
	ActionFindCharBackward  = "cursor.findCharBackward"
	ActionTillCharBackward  = "cursor.tillCharBackward"
	ActionRepeatCharSearch  = "cursor.repeatCharSearch"
	ActionReverseCharSearch = "cursor.reverseCharSearch"
)

func motionActions() []*catalog.Action {
	return []*catalog.Action{
		{
			Name: ActionMoveLeft, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"h", "<Left>", "<BS>"}, CountRepeats: true,
			Motion: moveLeft,
		},
		{
			Name: ActionMoveRight, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"l", "<Right>", "<Space>"}, CountRepeats: true,
			Motion: moveRight,
		},
		{
			Name: ActionMoveDown, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"j", "<Down>"},
			Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
				return moveVertical(ctx, from, ctx.GetCount())
			},
		},
		{
			Name: ActionMoveUp, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"k", "<Up>"},
			Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
				return moveVertical(ctx, from, -ctx.GetCount())
			},
		},
		{
			Name: ActionLineStart, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"0", "<Home>"},
			When: func(v catalog.View) bool { return !v.CountInProgress },
			Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
				return execctx.To(buffer.Pos(from.Line, 0)), nil
			},
		},
		{
			Name: ActionFirstNonBlank, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"^"},
			Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
				return execctx.To(buffer.Pos(from.Line, firstNonBlank(ctx.Line(from.Line)))), nil
			},
		},
		{
			Name: ActionLineEnd, Kind: catalog.Motion, Modes: motionModes,
			Keys:   []string{"$", "<End>"},
			Motion: lineEnd,
		},
		{
			Name: ActionGotoFirstLine, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"gg"}, Jump: true,
			Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
				return gotoLine(ctx, ctx.GetCount()-1), nil
			},
		},
		{
			Name: ActionGotoLastLine, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"G"}, Jump: true,
			Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
				if ctx.Count > 0 {
					return gotoLine(ctx, ctx.Count-1), nil
				}
				return gotoLine(ctx, ctx.LastLine()), nil
			},
		},
		wordMotion(ActionWordForward, "w", false),
		wordMotion(ActionBigWordForward, "W", true),
		{
			Name: ActionWordBackward, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"b"}, CountRepeats: true,
			Motion: backwardMotion(false),
		},
		{
			Name: ActionBigWordBackward, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"B"}, CountRepeats: true,
			Motion: backwardMotion(true),
		},
		{
			Name: ActionWordEndForward, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"e"}, CountRepeats: true,
			Motion: endMotion(false),
		},
		{
			Name: ActionBigWordEndForward, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"E"}, CountRepeats: true,
			Motion: endMotion(true),
		},
		charSearchMotion(ActionFindChar, "f<character>", true, false),
		charSearchMotion(ActionTillChar, "t<character>", true, true),
		charSearchMotion(ActionFindCharBackward, "F<character>", false, false),
		charSearchMotion(ActionTillCharBackward, "T<character>", false, true),
		{
			Name: ActionRepeatCharSearch, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{";"},
			Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
				cs, ok := ctx.State.LastCharSearch.Get()
				if !ok {
					return execctx.Motion{}, execctx.ErrNoMotion
				}
				return findChar(ctx, from, cs, true)
			},
		},
		{
			Name: ActionReverseCharSearch, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{","},
			Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
				cs, ok := ctx.State.LastCharSearch.Get()
				if !ok {
					return execctx.Motion{}, execctx.ErrNoMotion
				}
				return findChar(ctx, from, cs.Reversed(), true)
			},
		},
	}
}

func moveLeft(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
	if from.Column == 0 {
		return execctx.Motion{}, execctx.ErrNoMotion
	}
	return execctx.To(buffer.Pos(from.Line, buffer.PrevGrapheme(ctx.Line(from.Line), from.Column))), nil
}

// moveRight stops on the last character, except under an operator where
// the line end is reachable so that the last character can be operated on.
func moveRight(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
	line := ctx.Line(from.Line)
	limit := buffer.LastGrapheme(line)
	if ctx.Operator != "" {
		limit = len(line)
	}
	if from.Column >= limit {
		return execctx.Motion{}, execctx.ErrNoMotion
	}
	return execctx.To(buffer.Pos(from.Line, buffer.NextGrapheme(line, from.Column))), nil
}

func moveVertical(ctx *execctx.Context, from buffer.Position, delta int) (execctx.Motion, error) {
	target := min(max(from.Line+delta, 0), ctx.LastLine())
	if target == from.Line {
		return execctx.Motion{}, execctx.ErrNoMotion
	}
	col := min(from.Column, lastCol(ctx.Buffer, target))
	return execctx.Motion{Pos: buffer.Pos(target, col), Linewise: true}, nil
}

// lineEnd moves to the last character of the line count-1 lines down.
func lineEnd(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
	n := min(from.Line+ctx.GetCount()-1, ctx.LastLine())
	return execctx.Motion{Pos: buffer.Pos(n, lastCol(ctx.Buffer, n)), Inclusive: true}, nil
}

func gotoLine(ctx *execctx.Context, n int) execctx.Motion {
	n = min(max(n, 0), ctx.LastLine())
	return execctx.Motion{Pos: buffer.Pos(n, firstNonBlank(ctx.Line(n))), Linewise: true}
}

func wordMotion(name, keys string, big bool) *catalog.Action {
	return &catalog.Action{
		Name: name, Kind: catalog.Motion, Modes: motionModes,
		Keys: []string{keys}, CountRepeats: true,
		Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
			if ctx.Operator == ActionChange && classOf(charAt(ctx.Buffer, from), big) != blank {
				return changeWord(ctx, from, big)
			}

			p, ok := wordForward(ctx.Buffer, from, big)
			if !ok {
				return execctx.Motion{}, execctx.ErrNoMotion
			}
			// Under an operator the last word of a line ends at the line
			// end instead of the next line's first word.
			if ctx.Operator != "" && p.Line > from.Line {
				if end := buffer.LineEnd(ctx.Buffer, p.Line-1); end.After(from) {
					p = end
				}
			}
			return execctx.To(p), nil
		},
	}
}

// changeWord makes cw act like ce: the change stops at the end of the
// word instead of including the blanks after it.
func changeWord(ctx *execctx.Context, from buffer.Position, big bool) (execctx.Motion, error) {
	if from == ctx.Pos() {
		_, end := runAt(ctx.Line(from.Line), from.Column, big)
		last := buffer.Pos(from.Line, end-lastRuneLen(ctx.Line(from.Line)[:end]))
		return execctx.Motion{Pos: last, Inclusive: true}, nil
	}
	p, ok := wordEnd(ctx.Buffer, from, big)
	if !ok {
		return execctx.Motion{}, execctx.ErrNoMotion
	}
	return execctx.Motion{Pos: p, Inclusive: true}, nil
}

func backwardMotion(big bool) catalog.MotionFunc {
	return func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
		p, ok := wordBackward(ctx.Buffer, from, big)
		if !ok {
			return execctx.Motion{}, execctx.ErrNoMotion
		}
		return execctx.To(p), nil
	}
}

func endMotion(big bool) catalog.MotionFunc {
	return func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
		p, ok := wordEnd(ctx.Buffer, from, big)
		if !ok {
			return execctx.Motion{}, execctx.ErrNoMotion
		}
		return execctx.Motion{Pos: p, Inclusive: true}, nil
	}
}

func charSearchMotion(name, keys string, forward, till bool) *catalog.Action {
	return &catalog.Action{
		Name: name, Kind: catalog.Motion, Modes: motionModes,
		Keys: []string{keys},
		Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
			r, ok := ctx.Char()
			if !ok {
				return execctx.Motion{}, execctx.ErrNoMotion
			}
			cs := execctx.CharSearch{Char: r, Forward: forward, Till: till}
			ctx.State.LastCharSearch = mo.Some(cs)
			return findChar(ctx, from, cs, false)
		},
	}
}

// findChar finds the count-th occurrence of cs.Char on the cursor line.
// A repeated till search skips an occurrence right next to the cursor so
// that it makes progress.
func findChar(ctx *execctx.Context, from buffer.Position, cs execctx.CharSearch, repeat bool) (execctx.Motion, error) {
	line := ctx.Line(from.Line)
	needle := string(cs.Char)
	count := ctx.GetCount()

	col := from.Column
	if cs.Forward {
		start := buffer.NextGrapheme(line, col)
		if repeat && cs.Till && start < len(line) && strings.HasPrefix(line[start:], needle) {
			start = buffer.NextGrapheme(line, start)
		}
		for i := 0; i < count; i++ {
			idx := strings.Index(line[min(start, len(line)):], needle)
			if idx < 0 {
				return execctx.Motion{}, execctx.ErrNoMotion
			}
			col = start + idx
			start = col + len(needle)
		}
		if cs.Till {
			col = buffer.PrevGrapheme(line, col)
		}
		return execctx.Motion{Pos: buffer.Pos(from.Line, col), Inclusive: true}, nil
	}

	end := col
	if repeat && cs.Till && end > 0 {
		if prev := buffer.PrevGrapheme(line, end); strings.HasPrefix(line[prev:], needle) {
			end = prev
		}
	}
	for i := 0; i < count; i++ {
		idx := strings.LastIndex(line[:end], needle)
		if idx < 0 {
			return execctx.Motion{}, execctx.ErrNoMotion
		}
		col, end = idx, idx
	}
	if cs.Till {
		col += utf8.RuneLen(cs.Char)
	}
	return execctx.To(buffer.Pos(from.Line, col)), nil
}
