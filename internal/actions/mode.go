package actions

import (
	"github.com/samber/mo"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
)

// Action names for mode switches.
const (
	ActionVisual         = "mode.visual"
	ActionVisualLine     = "mode.visualLine"
	ActionVisualBlock    = "mode.visualBlock"
	ActionVisualSwapEnds = "visual.swapEnds"
	ActionLeaveVisual    = "mode.leaveVisual"
	ActionReselectVisual = "visual.reselect"
	ActionCancel         = "mode.cancel"
)

func modeActions() []*catalog.Action {
	return []*catalog.Action{
		toggleVisual(ActionVisual, "v", mode.Visual),
		toggleVisual(ActionVisualLine, "V", mode.VisualLine),
		toggleVisual(ActionVisualBlock, "<C-v>", mode.VisualBlock),
		{
			Name: ActionVisualSwapEnds, Kind: catalog.Command, Modes: visualModes,
			Keys: []string{"o"},
			Command: func(ctx *execctx.Context) error {
				ctx.Select(ctx.Cursor.Swap())
				return nil
			},
		},
		{
			Name: ActionReselectVisual, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"gv"}, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				v, ok := ctx.State.LastVisual.Get()
				if !ok {
					return nil
				}
				ctx.SetCursors(v.Cursors)
				ctx.SetMode(v.Mode)
				return nil
			},
		},
		{
			Name: ActionLeaveVisual, Kind: catalog.Command, Modes: visualModes,
			Keys: []string{"<Esc>", "<C-c>", "<C-[>"}, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				leaveVisual(ctx)
				return nil
			},
		},
		{
			Name: ActionCancel, Kind: catalog.Command,
			Modes: []mode.Mode{mode.Normal, mode.OperatorPending},
			Keys:  []string{"<Esc>", "<C-c>", "<C-[>"}, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				return nil
			},
		},
	}
}

// toggleVisual enters visual mode m, leaves it when already in m, or
// switches between visual modes keeping the selection.
func toggleVisual(name, keys string, m mode.Mode) *catalog.Action {
	return &catalog.Action{
		Name: name, Kind: catalog.Command, Modes: normalAndVisual,
		Keys: []string{keys}, FanOut: catalog.Once,
		Command: func(ctx *execctx.Context) error {
			if ctx.Mode == m {
				leaveVisual(ctx)
				return nil
			}
			ctx.SetMode(m)
			return nil
		},
	}
}

// leaveVisual remembers the selection for gv, collapses every cursor to
// its active end and returns to Normal mode.
func leaveVisual(ctx *execctx.Context) {
	ctx.State.LastVisual = mo.Some(execctx.Visual{Mode: ctx.Mode, Cursors: ctx.Cursors})
	collapsed := make([]cursor.Cursor, len(ctx.Cursors))
	for i, c := range ctx.Cursors {
		collapsed[i] = c.Collapse()
	}
	ctx.SetCursors(collapsed)
	ctx.SetMode(mode.Normal)
}
