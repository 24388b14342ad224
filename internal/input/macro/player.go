package macro

import (
	"context"

	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/register"
)

// ReplayFunc runs one recorded command against the current document.
type ReplayFunc func(ctx context.Context, cmd register.Recorded) error

// Player replays macros stored in registers.
type Player struct {
	recorder *Recorder
	maxDepth int
}

// NewPlayer creates a player. maxDepth bounds nested invocation.
func NewPlayer(recorder *Recorder, maxDepth int) *Player {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &Player{recorder: recorder, maxDepth: maxDepth}
}

// Play replays register name count times, calling run for each recorded
// command. Each replay resolves its motions against the document as it is
// at that point. An empty register is a no-op. The first error aborts the
// rest of the replay and is returned.
func (p *Player) Play(ctx context.Context, name rune, count int, run ReplayFunc) error {
	if !register.IsValid(name) {
		return editerr.InvalidRegister(name)
	}

	content, ok := p.recorder.registers.Get(name)
	if !ok {
		return nil
	}
	commands := content.Commands()
	if len(commands) == 0 {
		return nil
	}

	depth := p.recorder.enterReplay(name)
	defer p.recorder.leaveReplay()
	if depth > p.maxDepth {
		return editerr.NewUserError(editerr.CodeRecursiveMacro, "Recursive mapping")
	}

	for i := 0; i < max(count, 1); i++ {
		for _, cmd := range commands {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := run(ctx, cmd); err != nil {
				return err
			}
		}
	}
	return nil
}
