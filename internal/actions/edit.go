package actions

import (
	"strings"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/register"
	"github.com/dshills/modal/internal/transform"
)

// Action names for editing commands.
const (
	ActionDeleteChar     = "editor.deleteChar"
	ActionDeleteCharBack = "editor.deleteCharBack"
	ActionSubstitute     = "editor.substitute"
	ActionReplaceChar    = "editor.replaceChar"
	ActionToggleCaseChar = "editor.toggleCaseChar"
	ActionJoinLines      = "editor.joinLines"
	ActionPutAfter       = "editor.putAfter"
	ActionPutBefore      = "editor.putBefore"
)

func editActions() []*catalog.Action {
	return []*catalog.Action{
		{
			Name: ActionDeleteChar, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"x", "<Del>"}, Repeatable: true,
			Command: func(ctx *execctx.Context) error {
				return deleteChars(ctx, false)
			},
		},
		{
			Name: ActionDeleteCharBack, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"X"}, Repeatable: true,
			Command: deleteCharsBack,
		},
		{
			Name: ActionSubstitute, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"s"}, Repeatable: true,
			Command: func(ctx *execctx.Context) error {
				return deleteChars(ctx, true)
			},
		},
		{
			Name: ActionReplaceChar, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"r<character>"}, Repeatable: true,
			Command: replaceChars,
		},
		{
			Name: ActionToggleCaseChar, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"~"}, Repeatable: true,
			Command: toggleCaseChars,
		},
		{
			Name: ActionJoinLines, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"J"}, Repeatable: true,
			Command: joinLines,
		},
		{
			Name: ActionPutAfter, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"p"}, Repeatable: true,
			Command: func(ctx *execctx.Context) error {
				return put(ctx, true)
			},
		},
		{
			Name: ActionPutBefore, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"P"}, Repeatable: true,
			Command: func(ctx *execctx.Context) error {
				return put(ctx, false)
			},
		},
	}
}

func insertAt(ctx *execctx.Context, p buffer.Position, text string) transform.Transformation {
	return transform.Insert(ctx.CursorIndex, p, text)
}

func deleteAt(ctx *execctx.Context, r buffer.Range) transform.Transformation {
	return transform.Delete(ctx.CursorIndex, r)
}

func replaceAt(ctx *execctx.Context, r buffer.Range, text string) transform.Transformation {
	return transform.Replace(ctx.CursorIndex, r, text)
}

// deleteChars deletes count characters under and after the cursor, then
// enters Insert mode when insert is set.
func deleteChars(ctx *execctx.Context, insert bool) error {
	p := ctx.Pos()
	line := ctx.Line(p.Line)
	end := graphemesRight(line, p.Column, ctx.GetCount())

	if end > p.Column {
		span := execctx.CharSpan(buffer.Range{Start: p, End: buffer.Pos(p.Line, end)})
		if err := storeText(ctx, span, false); err != nil {
			return err
		}
		ctx.Delete(span.Range(ctx.Buffer), p)
	}
	if insert {
		ctx.SetMode(mode.Insert)
	}
	return nil
}

func deleteCharsBack(ctx *execctx.Context) error {
	p := ctx.Pos()
	start := graphemesLeft(ctx.Line(p.Line), p.Column, ctx.GetCount())
	if start == p.Column {
		return nil
	}
	span := execctx.CharSpan(buffer.Range{Start: buffer.Pos(p.Line, start), End: p})
	if err := storeText(ctx, span, false); err != nil {
		return err
	}
	ctx.Delete(span.Range(ctx.Buffer), span.Start)
	return nil
}

// replaceChars replaces count characters with the typed one. Nothing
// happens when the line has fewer characters left. A typed <CR> replaces
// them with a single line break.
func replaceChars(ctx *execctx.Context) error {
	r, ok := ctx.Char()
	if !ok {
		return nil
	}
	p := ctx.Pos()
	line := ctx.Line(p.Line)
	count := ctx.GetCount()

	end := p.Column
	for i := 0; i < count; i++ {
		if end >= len(line) {
			return nil
		}
		end = buffer.NextGrapheme(line, end)
	}
	target := buffer.Range{Start: p, End: buffer.Pos(p.Line, end)}

	if r == '\n' {
		ctx.Emit(replaceAt(ctx, target, "\n").WithDiff(transform.Offset(1, -p.Column)))
		return nil
	}
	text := strings.Repeat(string(r), count)
	ctx.Emit(replaceAt(ctx, target, text).WithDiff(transform.Offset(0, len(text)-lastRuneLen(text))))
	return nil
}

func toggleCaseChars(ctx *execctx.Context) error {
	p := ctx.Pos()
	line := ctx.Line(p.Line)
	end := graphemesRight(line, p.Column, ctx.GetCount())
	if end == p.Column {
		return nil
	}
	r := buffer.Range{Start: p, End: buffer.Pos(p.Line, end)}
	ctx.Replace(r, toggleCase(line[p.Column:end]), r.End)
	return nil
}

// joinLines joins count lines (at least two). Leading blanks of each
// joined line are removed and a single space separates the parts; two
// after a sentence end when JoinSpaces is set.
func joinLines(ctx *execctx.Context) error {
	p := ctx.Pos()
	last := min(p.Line+max(ctx.GetCount(), 2)-1, ctx.LastLine())
	if last == p.Line {
		return nil
	}

	var land buffer.Position
	for n := p.Line; n < last; n++ {
		cur := strings.TrimRight(ctx.Line(n), " \t")
		next := ctx.Line(n + 1)
		indent := firstNonBlank(next)

		sep := " "
		switch {
		case cur == "" || indent == len(next) || strings.HasPrefix(next[indent:], ")"):
			sep = ""
		case ctx.Config.Editing.JoinSpaces && strings.ContainsAny(cur[len(cur)-1:], ".?!"):
			sep = "  "
		}

		r := buffer.Range{Start: buffer.Pos(n, len(cur)), End: buffer.Pos(n+1, indent)}
		ctx.Emit(replaceAt(ctx, r, sep))
		land = r.Start
	}
	ctx.MoveTo(land)
	return nil
}

// put inserts register text after or before the cursor, count times.
func put(ctx *execctx.Context, after bool) error {
	name := ctx.Register.OrElse(register.Unnamed)
	if !register.IsValid(name) {
		return editerr.InvalidRegister(name)
	}
	content, ok := ctx.Registers.Get(name)
	if !ok {
		return editerr.NewUserError(editerr.CodeNothingInRegister, "Nothing in register %c", name)
	}
	text := content.For(ctx.CursorIndex, len(ctx.Cursors))
	count := ctx.GetCount()

	switch content.Wise {
	case register.LineWise:
		putLines(ctx, strings.TrimSuffix(text, "\n"), count, after)
	case register.BlockWise:
		putBlock(ctx, strings.Split(text, "\n"), count, after)
	default:
		putChars(ctx, strings.Repeat(text, count), after)
	}
	return nil
}

// putLines puts whole lines below or above the cursor line. The cursor
// lands on the first non-blank of the first new line.
func putLines(ctx *execctx.Context, text string, count int, after bool) {
	p := ctx.Pos()
	lines := strings.Repeat(text+"\n", count)
	want := buffer.Pos(p.Line, firstNonBlank(text))

	e := buffer.Insert(buffer.Pos(p.Line, 0), lines)
	if after {
		e = buffer.Insert(buffer.LineEnd(ctx.Buffer, p.Line), "\n"+strings.TrimSuffix(lines, "\n"))
		want.Line++
	}
	ctx.Emit(insertAt(ctx, e.Range.Start, e.NewText).WithDiff(landAt(p, e, want)))
}

// putChars puts text after or before the cursor character. The cursor
// lands on the last character put.
func putChars(ctx *execctx.Context, text string, after bool) {
	if text == "" {
		return
	}
	p := ctx.Pos()
	at := p
	if after {
		at.Column = buffer.NextGrapheme(ctx.Line(p.Line), p.Column)
	}
	want := at.Advance(text)
	want.Column -= lastRuneLen(text)

	e := buffer.Insert(at, text)
	ctx.Emit(insertAt(ctx, at, text).WithDiff(landAt(p, e, want)))
}

// landAt returns the diff that takes a cursor at p to want, a position
// in the document after e alone is applied.
func landAt(p buffer.Position, e buffer.Edit, want buffer.Position) transform.PositionDiff {
	mapped := buffer.MapPosition(p, []buffer.Edit{e})
	return transform.Offset(want.Line-mapped.Line, want.Column-mapped.Column)
}

// putBlock puts a block column by column on the cursor line and the lines
// below it, padding short lines and appending lines at the end of the
// document as needed.
func putBlock(ctx *execctx.Context, rows []string, count int, after bool) {
	p := ctx.Pos()
	col := p.Column
	if after {
		col = buffer.NextGrapheme(ctx.Line(p.Line), p.Column)
	}

	var appended strings.Builder
	for i, row := range rows {
		row = strings.Repeat(row, count)
		n := p.Line + i
		if n > ctx.LastLine() {
			appended.WriteString("\n" + strings.Repeat(" ", col) + row)
			continue
		}
		line := ctx.Line(n)
		if len(line) < col {
			ctx.Emit(insertAt(ctx, buffer.LineEnd(ctx.Buffer, n), strings.Repeat(" ", col-len(line))+row))
			continue
		}
		ctx.Emit(insertAt(ctx, buffer.Pos(n, col), row))
	}
	if appended.Len() > 0 {
		ctx.Emit(insertAt(ctx, buffer.DocumentEnd(ctx.Buffer), appended.String()))
	}
	ctx.MoveTo(buffer.Pos(p.Line, col))
}
