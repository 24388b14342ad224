package actions

import (
	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/register"
)

// Action names for cursor-set and jump commands.
const (
	ActionAddCursorBelow = "cursor.addBelow"
	ActionAddCursorAbove = "cursor.addAbove"
	ActionJumpBack       = "cursor.jumpBack"
	ActionAlternateFile  = "editor.alternateFile"
)

func cursorActions() []*catalog.Action {
	return []*catalog.Action{
		{
			Name: ActionAddCursorBelow, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"<A-j>"}, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				return addCursors(ctx, 1)
			},
		},
		{
			Name: ActionAddCursorAbove, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"<A-k>"}, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				return addCursors(ctx, -1)
			},
		},
		{
			Name: ActionJumpBack, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"<C-o>"}, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				for i := 0; i < ctx.GetCount(); i++ {
					p, ok := ctx.State.PopJump()
					if !ok {
						break
					}
					ctx.SetCursors([]cursor.Cursor{cursor.At(buffer.Clamp(ctx.Buffer, p))})
				}
				return nil
			},
		},
		{
			Name: ActionAlternateFile, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"<C-^>"}, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				c, ok := ctx.Registers.Get(register.Alternate)
				if !ok || c.IsEmpty() {
					return editerr.ErrNoAlternateFile
				}
				ctx.Status(c.String())
				return nil
			},
		},
	}
}

// addCursors adds count cursors on the lines below the last cursor
// (dir > 0) or above the first one, keeping the column where the line
// allows it.
func addCursors(ctx *execctx.Context, dir int) error {
	cursors := append([]cursor.Cursor(nil), ctx.Cursors...)
	edge := cursors[0].Active
	for _, c := range cursors {
		if (dir > 0 && c.Active.Line > edge.Line) || (dir < 0 && c.Active.Line < edge.Line) {
			edge = c.Active
		}
	}

	line := edge.Line
	for i := 0; i < ctx.GetCount(); i++ {
		line += dir
		if line < 0 || line > ctx.LastLine() {
			break
		}
		cursors = append(cursors, cursor.At(buffer.Pos(line, min(edge.Column, lastCol(ctx.Buffer, line)))))
	}
	ctx.SetCursors(cursors)
	return nil
}
