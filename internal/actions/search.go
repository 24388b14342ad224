package actions

import (
	"regexp"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/register"
)

// Action names for pattern search.
const (
	ActionSearchForward  = "search.forward"
	ActionSearchBackward = "search.backward"
	ActionSearchExecute  = "search.execute"
	ActionSearchErase    = "search.erase"
	ActionSearchCancel   = "search.cancel"
	ActionSearchType     = "search.char"
	ActionSearchNext     = "search.next"
	ActionSearchPrev     = "search.prev"
)

func searchActions() []*catalog.Action {
	return []*catalog.Action{
		beginSearch(ActionSearchForward, "/", true),
		beginSearch(ActionSearchBackward, "?", false),
		{
			Name: ActionSearchExecute, Kind: catalog.Command, Modes: searchOnly,
			Keys:    []string{"<CR>"},
			Command: executeSearch,
		},
		{
			Name: ActionSearchErase, Kind: catalog.Command, Modes: searchOnly,
			Keys: []string{"<BS>"}, FanOut: catalog.Once, Incomplete: true,
			Command: func(ctx *execctx.Context) error {
				st := ctx.State
				if len(st.SearchInput) == 0 {
					ctx.SetMode(mode.Normal)
					ctx.Finish()
					return nil
				}
				st.SearchInput = st.SearchInput[:len(st.SearchInput)-1]
				return nil
			},
		},
		{
			Name: ActionSearchCancel, Kind: catalog.Command, Modes: searchOnly,
			Keys: []string{"<Esc>", "<C-c>", "<C-[>"}, FanOut: catalog.Once,
			Command: func(ctx *execctx.Context) error {
				ctx.State.SearchInput = nil
				ctx.SetMode(mode.Normal)
				return nil
			},
		},
		{
			Name: ActionSearchType, Kind: catalog.Command, Modes: searchOnly,
			Keys: []string{"<character>"}, FanOut: catalog.Once, Incomplete: true,
			Command: func(ctx *execctx.Context) error {
				if r, ok := ctx.Char(); ok {
					ctx.State.SearchInput = append(ctx.State.SearchInput, r)
				}
				return nil
			},
		},
		{
			Name: ActionSearchNext, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"n"}, Jump: true, CountRepeats: true,
			Motion: repeatSearch(false),
		},
		{
			Name: ActionSearchPrev, Kind: catalog.Motion, Modes: motionModes,
			Keys: []string{"N"}, Jump: true, CountRepeats: true,
			Motion: repeatSearch(true),
		},
	}
}

func beginSearch(name, keys string, forward bool) *catalog.Action {
	return &catalog.Action{
		Name: name, Kind: catalog.Command, Modes: normalOnly,
		Keys: []string{keys}, FanOut: catalog.Once, Incomplete: true,
		Command: func(ctx *execctx.Context) error {
			ctx.State.SearchInput = ctx.State.SearchInput[:0]
			ctx.State.SearchForward = forward
			ctx.SetMode(mode.SearchInProgress)
			return nil
		},
	}
}

// executeSearch runs the typed pattern, or the last one when nothing was
// typed, and moves each cursor to the next match.
func executeSearch(ctx *execctx.Context) error {
	st := ctx.State
	ctx.SetMode(mode.Normal)

	search := execctx.Search{Pattern: string(st.SearchInput), Forward: st.SearchForward}
	if search.Pattern == "" {
		last, ok := st.LastSearch.Get()
		if !ok {
			return editerr.ErrNoPreviousSearch
		}
		search.Pattern = last.Pattern
	}
	if ctx.CursorIndex == 0 {
		st.LastSearch = mo.Some(search)
		ctx.Registers.SetSpecial(register.LastSearch, search.Pattern)
	}

	p, err := findPattern(ctx, search, ctx.Pos())
	if err != nil {
		return err
	}
	if ctx.CursorIndex == 0 {
		st.PushJump(ctx.Pos())
	}
	ctx.MoveTo(p)
	return nil
}

func repeatSearch(reverse bool) catalog.MotionFunc {
	return func(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
		search, ok := ctx.State.LastSearch.Get()
		if !ok {
			return execctx.Motion{}, editerr.ErrNoPreviousSearch
		}
		if reverse {
			search.Forward = !search.Forward
		}
		p, err := findPattern(ctx, search, from)
		if err != nil {
			return execctx.Motion{}, err
		}
		return execctx.To(p), nil
	}
}

// compilePattern compiles a search pattern, matching it literally when it
// is not a valid regular expression.
func compilePattern(pattern string) *regexp.Regexp {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return regexp.MustCompile(regexp.QuoteMeta(pattern))
	}
	return re
}

func findPattern(ctx *execctx.Context, search execctx.Search, from buffer.Position) (buffer.Position, error) {
	re := compilePattern(search.Pattern)
	p, ok := findMatch(ctx.Buffer, re, from, search.Forward, ctx.Config.Editing.WrapScan)
	if !ok {
		return buffer.Position{}, editerr.NewUserError(editerr.CodePatternNotFound, "Pattern not found: %s", search.Pattern)
	}
	return p, nil
}

// findMatch returns the start of the first match after from, or before it
// when searching backward. Matches never span lines.
func findMatch(tb buffer.TextBuffer, re *regexp.Regexp, from buffer.Position, forward, wrap bool) (buffer.Position, bool) {
	n := tb.LineCount()
	matches := func(line int) [][]int {
		return re.FindAllStringIndex(tb.LineAt(line).Text, -1)
	}

	if forward {
		for i := 0; i <= n; i++ {
			line := from.Line + i
			if line >= n {
				if !wrap {
					return buffer.Position{}, false
				}
				line -= n
			}
			for _, m := range matches(line) {
				if i == 0 && m[0] <= from.Column {
					continue
				}
				if i == n && m[0] > from.Column {
					break
				}
				return buffer.Pos(line, m[0]), true
			}
		}
		return buffer.Position{}, false
	}

	for i := 0; i <= n; i++ {
		line := from.Line - i
		if line < 0 {
			if !wrap {
				return buffer.Position{}, false
			}
			line += n
		}
		ms := matches(line)
		for j := len(ms) - 1; j >= 0; j-- {
			m := ms[j]
			if i == 0 && m[0] >= from.Column {
				continue
			}
			if i == n && m[0] < from.Column {
				break
			}
			return buffer.Pos(line, m[0]), true
		}
	}
	return buffer.Position{}, false
}
