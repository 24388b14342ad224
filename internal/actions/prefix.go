package actions

import (
	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/register"
)

// Action names for command prefixes.
const (
	ActionCountDigit     = "count.digit"
	ActionCountZero      = "count.zero"
	ActionCountDropDigit = "count.dropDigit"
	ActionSelectRegister = "register.select"
)

func prefixActions() []*catalog.Action {
	return []*catalog.Action{
		{
			Name: ActionCountDigit, Kind: catalog.Command, Modes: motionModes,
			Keys:       []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
			FanOut:     catalog.Once,
			Incomplete: true, CountDigit: true,
			Command: accumulateDigit,
		},
		{
			Name: ActionCountZero, Kind: catalog.Command, Modes: motionModes,
			Keys:       []string{"0"},
			When:       func(v catalog.View) bool { return v.CountInProgress },
			FanOut:     catalog.Once,
			Incomplete: true, CountDigit: true,
			Command: accumulateDigit,
		},
		{
			Name: ActionCountDropDigit, Kind: catalog.Command, Modes: motionModes,
			Keys:       []string{"<Del>"},
			When:       catalog.HasCount,
			FanOut:     catalog.Once,
			Incomplete: true, CountDigit: true,
			Command: func(ctx *execctx.Context) error {
				ctx.Pending.DropCountDigit()
				return nil
			},
		},
		{
			Name: ActionSelectRegister, Kind: catalog.Command, Modes: normalAndVisual,
			Keys:       []string{`"<register>`},
			FanOut:     catalog.Once,
			Incomplete: true,
			Command:    selectRegister,
		},
	}
}

func accumulateDigit(ctx *execctx.Context) error {
	if d, ok := ctx.Keys[len(ctx.Keys)-1].Digit(); ok {
		ctx.Pending.AccumulateCount(d)
	}
	return nil
}

// selectRegister sets the register for the command. A character outside
// the register alphabet ends the command without effect.
func selectRegister(ctx *execctx.Context) error {
	name := ctx.Captures[0].Rune
	if !register.IsValid(name) {
		ctx.Env.Log.Debug("ignoring invalid register %q", name)
		ctx.Finish()
		return nil
	}
	ctx.Pending.SetRegister(name)
	return nil
}
