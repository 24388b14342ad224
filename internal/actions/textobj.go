package actions

import (
	"unicode/utf8"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
)

// Action names for text objects.
const (
	ActionInnerWord    = "textobj.innerWord"
	ActionAWord        = "textobj.aWord"
	ActionInnerBigWord = "textobj.innerBigWord"
	ActionABigWord     = "textobj.aBigWord"
)

func textObjectActions() []*catalog.Action {
	return []*catalog.Action{
		wordObject(ActionInnerWord, "iw", false, false),
		wordObject(ActionAWord, "aw", false, true),
		wordObject(ActionInnerBigWord, "iW", true, false),
		wordObject(ActionABigWord, "aW", true, true),
	}
}

func wordObject(name, keys string, big, around bool) *catalog.Action {
	return &catalog.Action{
		Name: name, Kind: catalog.Motion, Modes: objectModes,
		Keys: []string{keys},
		Motion: func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
			return selectWord(ctx.Line(from.Line), from, big, around)
		},
	}
}

// selectWord selects the word or blank run under from. The around form
// adds the blanks after the word, or before it when there are none after.
func selectWord(line string, from buffer.Position, big, around bool) (execctx.Motion, error) {
	if len(line) == 0 {
		return execctx.Motion{}, execctx.ErrNoMotion
	}
	col := min(from.Column, len(line)-lastRuneLen(line))
	start, end := runAt(line, col, big)

	if around {
		r, _ := utf8.DecodeRuneInString(line[col:])
		if classOf(r, big) == blank {
			if end < len(line) {
				_, end = runAt(line, end, big)
			}
		} else if nr, _ := utf8.DecodeRuneInString(line[end:]); end < len(line) && classOf(nr, big) == blank {
			_, end = runAt(line, end, big)
		} else if start > 0 {
			pr, _ := utf8.DecodeLastRuneInString(line[:start])
			if classOf(pr, big) == blank {
				start, _ = runAt(line, start-1, big)
			}
		}
	}

	last := end - lastRuneLen(line[:end])
	return execctx.Motion{
		Pos:       buffer.Pos(from.Line, last),
		Start:     mo.Some(buffer.Pos(from.Line, start)),
		Inclusive: true,
	}, nil
}
