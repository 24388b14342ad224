package actions

import (
	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/transform"
)

// Action names for macros and repeat.
const (
	ActionRecordMacro = "macro.record"
	ActionStopMacro   = "macro.stop"
	ActionPlayMacro   = "macro.play"
	ActionDotRepeat   = "repeat.last"
)

func macroActions() []*catalog.Action {
	return []*catalog.Action{
		{
			Name: ActionStopMacro, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"q"}, When: catalog.IsRecording, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				if ctx.Macros == nil {
					return nil
				}
				_, err := ctx.Macros.EndMacro()
				return err
			},
		},
		{
			Name: ActionRecordMacro, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"q<register>"}, When: catalog.NotRecording, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				if ctx.Macros == nil {
					return nil
				}
				return ctx.Macros.BeginMacro(ctx.Captures[0].Rune)
			},
		},
		{
			Name: ActionPlayMacro, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"@<register>"}, FanOut: catalog.Once,
			Command: playMacro,
		},
		{
			Name: ActionDotRepeat, Kind: catalog.Command, Modes: normalOnly,
			Keys: []string{"."}, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				ctx.Emit(transform.Transformation{Kind: transform.DotRepeat, Count: ctx.Count})
				return nil
			},
		},
	}
}

// playMacro requests replay of a register. @@ replays the register last
// played; with none played yet it does nothing.
func playMacro(ctx *execctx.Context) error {
	name := ctx.Captures[0].Rune
	if name == '@' {
		if ctx.Macros == nil {
			return nil
		}
		last, ok := ctx.Macros.LastInvoked().Get()
		if !ok {
			return nil
		}
		name = last
	}
	if name == ':' {
		return editerr.NewUserError(editerr.CodeInvalidRegister, "Command-line register is not supported")
	}
	ctx.Emit(transform.Transformation{Kind: transform.MacroReplay, Register: name, Count: ctx.GetCount()})
	return nil
}
