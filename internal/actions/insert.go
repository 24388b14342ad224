package actions

import (
	"unicode/utf8"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/register"
	"github.com/dshills/modal/internal/transform"
)

// Action names for entering and typing in Insert and Replace mode.
const (
	ActionInsertBefore     = "mode.insertBefore"
	ActionInsertAfter      = "mode.insertAfter"
	ActionInsertLineStart  = "mode.insertLineStart"
	ActionInsertLineEnd    = "mode.insertLineEnd"
	ActionOpenBelow        = "mode.openBelow"
	ActionOpenAbove        = "mode.openAbove"
	ActionReplaceMode      = "mode.replace"
	ActionInsertChar       = "insert.char"
	ActionInsertNewline    = "insert.newline"
	ActionInsertBackspace  = "insert.backspace"
	ActionInsertDeleteWord = "insert.deleteWord"
	ActionInsertRegister   = "insert.register"
	ActionReplaceTypeChar  = "replace.char"
	ActionReplaceBackspace = "replace.backspace"
	ActionLeaveInsert      = "mode.leaveInsert"
)

func insertActions() []*catalog.Action {
	return []*catalog.Action{
		enterInsert(ActionInsertBefore, "i", func(ctx *execctx.Context, p buffer.Position) buffer.Position {
			return p
		}),
		enterInsert(ActionInsertAfter, "a", func(ctx *execctx.Context, p buffer.Position) buffer.Position {
			return buffer.Pos(p.Line, buffer.NextGrapheme(ctx.Line(p.Line), p.Column))
		}),
		enterInsert(ActionInsertLineStart, "I", func(ctx *execctx.Context, p buffer.Position) buffer.Position {
			return buffer.Pos(p.Line, firstNonBlank(ctx.Line(p.Line)))
		}),
		enterInsert(ActionInsertLineEnd, "A", func(ctx *execctx.Context, p buffer.Position) buffer.Position {
			return buffer.LineEnd(ctx.Buffer, p.Line)
		}),
		{
			Name: ActionOpenBelow, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"o"}, Repeatable: true, InsertRepeat: catalog.RepeatLines,
			Command: func(ctx *execctx.Context) error {
				p := ctx.Pos()
				e := buffer.Insert(buffer.LineEnd(ctx.Buffer, p.Line), "\n")
				ctx.Emit(insertAt(ctx, e.Range.Start, e.NewText).WithDiff(landAt(p, e, buffer.Pos(p.Line+1, 0))))
				ctx.SetMode(mode.Insert)
				return nil
			},
		},
		{
			Name: ActionOpenAbove, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"O"}, Repeatable: true, InsertRepeat: catalog.RepeatLines,
			Command: func(ctx *execctx.Context) error {
				p := ctx.Pos()
				e := buffer.Insert(buffer.Pos(p.Line, 0), "\n")
				ctx.Emit(insertAt(ctx, e.Range.Start, e.NewText).WithDiff(landAt(p, e, buffer.Pos(p.Line, 0))))
				ctx.SetMode(mode.Insert)
				return nil
			},
		},
		{
			Name: ActionReplaceMode, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"R"}, Repeatable: true,
			Command: func(ctx *execctx.Context) error {
				ctx.State.BeginReplace()
				ctx.SetMode(mode.Replace)
				return nil
			},
		},
		{
			Name: ActionInsertNewline, Kind: catalog.Command, Modes: []mode.Mode{mode.Insert},
			Keys: []string{"<CR>"}, Incomplete: true,
			Command: func(ctx *execctx.Context) error {
				typeText(ctx, "\n")
				return nil
			},
		},
		{
			Name: ActionInsertBackspace, Kind: catalog.Command, Modes: []mode.Mode{mode.Insert},
			Keys: []string{"<BS>"}, Incomplete: true,
			Command: insertBackspace,
		},
		{
			Name: ActionInsertDeleteWord, Kind: catalog.Command, Modes: []mode.Mode{mode.Insert},
			Keys: []string{"<C-w>"}, Incomplete: true,
			Command: insertDeleteWord,
		},
		{
			Name: ActionInsertRegister, Kind: catalog.Command, Modes: []mode.Mode{mode.Insert},
			Keys: []string{"<C-r><register>"}, Incomplete: true,
			Command: insertRegister,
		},
		{
			Name: ActionInsertChar, Kind: catalog.Command, Modes: []mode.Mode{mode.Insert},
			Keys: []string{"<character>"}, Incomplete: true,
			Command: func(ctx *execctx.Context) error {
				if r, ok := ctx.Char(); ok {
					typeText(ctx, string(r))
				}
				return nil
			},
		},
		{
			Name: ActionReplaceBackspace, Kind: catalog.Command, Modes: []mode.Mode{mode.Replace},
			Keys: []string{"<BS>"}, Incomplete: true,
			Command: replaceBackspace,
		},
		{
			Name: ActionReplaceTypeChar, Kind: catalog.Command, Modes: []mode.Mode{mode.Replace},
			Keys: []string{"<character>"}, Incomplete: true,
			Command: replaceTypeChar,
		},
		{
			Name: ActionLeaveInsert, Kind: catalog.Command, Modes: insertModes,
			Keys: []string{"<Esc>", "<C-c>", "<C-[>"},
			Command: func(ctx *execctx.Context) error {
				p := ctx.Pos()
				ctx.MoveTo(buffer.Pos(p.Line, buffer.PrevGrapheme(ctx.Line(p.Line), p.Column)))
				ctx.SetMode(mode.Normal)
				return nil
			},
		},
	}
}

// enterInsert builds a command entering Insert mode with the cursor at
// the position where returns.
func enterInsert(name, keys string, where func(*execctx.Context, buffer.Position) buffer.Position) *catalog.Action {
	return &catalog.Action{
		Name: name, Kind: catalog.Command, Modes: normalOnly,
		Keys: []string{keys}, Repeatable: true, InsertRepeat: catalog.RepeatText,
		Command: func(ctx *execctx.Context) error {
			ctx.MoveTo(where(ctx, ctx.Pos()))
			ctx.SetMode(mode.Insert)
			return nil
		},
	}
}

// typeText inserts text at the cursor and records it for dot repeat.
func typeText(ctx *execctx.Context, text string) {
	p := ctx.Pos()
	ctx.Insert(p, text, p)
	ctx.RecordChange(buffer.PointRange(p), text)
}

// eraseBefore deletes [start, cursor) and records it.
func eraseBefore(ctx *execctx.Context, start buffer.Position) {
	r := buffer.Range{Start: start, End: ctx.Pos()}
	ctx.Delete(r, r.Start)
	ctx.RecordChange(r, "")
}

// insertBackspace deletes the character before the cursor, joining with
// the previous line at the start of a line.
func insertBackspace(ctx *execctx.Context) error {
	p := ctx.Pos()
	switch {
	case p.Column > 0:
		eraseBefore(ctx, buffer.Pos(p.Line, buffer.PrevGrapheme(ctx.Line(p.Line), p.Column)))
	case p.Line > 0:
		eraseBefore(ctx, buffer.LineEnd(ctx.Buffer, p.Line-1))
	}
	return nil
}

// insertDeleteWord deletes the blanks and the word before the cursor.
func insertDeleteWord(ctx *execctx.Context) error {
	p := ctx.Pos()
	if p.Column == 0 {
		return insertBackspace(ctx)
	}
	line := ctx.Line(p.Line)
	col := p.Column
	for col > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:col])
		if classOf(r, false) != blank {
			break
		}
		col -= size
	}
	if col > 0 {
		prev := buffer.PrevGrapheme(line, col)
		col, _ = runAt(line, prev, false)
	}
	eraseBefore(ctx, buffer.Pos(p.Line, col))
	return nil
}

// insertRegister types the content of a register.
func insertRegister(ctx *execctx.Context) error {
	if len(ctx.Captures) == 0 {
		return nil
	}
	name := ctx.Captures[0].Rune
	if !register.IsValid(name) {
		return editerr.InvalidRegister(name)
	}
	content, ok := ctx.Registers.Get(name)
	if !ok {
		return nil
	}
	text := content.For(ctx.CursorIndex, len(ctx.Cursors))
	if content.Wise == register.LineWise {
		text += "\n"
	}
	typeText(ctx, text)
	return nil
}

// replaceTypeChar overwrites the character under the cursor, or appends
// at the end of the line.
func replaceTypeChar(ctx *execctx.Context) error {
	r, ok := ctx.Char()
	if !ok {
		return nil
	}
	p := ctx.Pos()
	line := ctx.Line(p.Line)
	text := string(r)
	if r == '\n' || p.Column >= len(line) {
		ctx.State.PushOverwrite(ctx.CursorIndex, execctx.Overwrite{At: p, Typed: text})
		typeText(ctx, text)
		return nil
	}

	target := buffer.Range{Start: p, End: buffer.Pos(p.Line, buffer.NextGrapheme(line, p.Column))}
	ctx.State.PushOverwrite(ctx.CursorIndex, execctx.Overwrite{At: p, Typed: text, Original: line[p.Column:target.End.Column]})
	ctx.Emit(replaceAt(ctx, target, text).WithDiff(transform.Offset(0, len(text))))
	ctx.RecordChange(target, text)
	return nil
}

// replaceBackspace puts back what the last typed character overwrote, or
// removes it when it extended the line. Before the first typed character
// it only moves left.
func replaceBackspace(ctx *execctx.Context) error {
	p := ctx.Pos()
	if o, ok := ctx.State.PopOverwrite(ctx.CursorIndex); ok && o.At.Advance(o.Typed) == p {
		r := buffer.Range{Start: o.At, End: p}
		if o.Original == "" {
			ctx.Delete(r, o.At)
		} else {
			ctx.Replace(r, o.Original, o.At)
		}
		ctx.RecordChange(r, o.Original)
		return nil
	}
	if p.Column > 0 {
		ctx.MoveTo(buffer.Pos(p.Line, buffer.PrevGrapheme(ctx.Line(p.Line), p.Column)))
	}
	return nil
}
