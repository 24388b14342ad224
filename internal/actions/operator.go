package actions

import (
	"strings"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/register"
)

// Action names for operators.
const (
	ActionDelete      = "operator.delete"
	ActionChange      = "operator.change"
	ActionYank        = "operator.yank"
	ActionIndent      = "operator.indent"
	ActionOutdent     = "operator.outdent"
	ActionLowercase   = "operator.lowercase"
	ActionUppercase   = "operator.uppercase"
	ActionToggleCase  = "operator.toggleCase"
	ActionCurrentLine = "operator.currentLine"
)

// operatorDef describes one operator and its keys.
type operatorDef struct {
	name       string
	keys       []string
	doubled    []string
	visualKeys []string
	repeatable bool
	run        catalog.OperatorFunc
}

var operators = []operatorDef{
	{ActionDelete, []string{"d"}, []string{"d"}, []string{"x", "<Del>"}, true, deleteOperator},
	{ActionChange, []string{"c"}, []string{"c"}, []string{"s"}, true, changeOperator},
	{ActionYank, []string{"y"}, []string{"y"}, nil, false, yankOperator},
	{ActionIndent, []string{">"}, []string{">"}, nil, true, shiftOperator(1)},
	{ActionOutdent, []string{"<lt>"}, []string{"<lt>"}, nil, true, shiftOperator(-1)},
	{ActionLowercase, []string{"gu"}, []string{"u", "gu"}, []string{"u"}, true, caseOperator(strings.ToLower)},
	{ActionUppercase, []string{"gU"}, []string{"U", "gU"}, []string{"U"}, true, caseOperator(strings.ToUpper)},
	{ActionToggleCase, []string{"g~"}, []string{"~", "g~"}, []string{"~"}, true, caseOperator(toggleCase)},
}

func operatorActions() []*catalog.Action {
	out := make([]*catalog.Action, 0, 2*len(operators))
	for _, op := range operators {
		out = append(out, &catalog.Action{
			Name: op.name, Kind: catalog.Operator, Modes: operatorModes,
			Keys: op.keys, Repeatable: op.repeatable,
			Operator: op.run,
		})
		if len(op.visualKeys) > 0 {
			out = append(out, &catalog.Action{
				Name: op.name + ".visual", Kind: catalog.Operator, Modes: visualModes,
				Keys: op.visualKeys, Repeatable: op.repeatable,
				Operator: op.run,
			})
		}
	}
	return out
}

// linewiseActions are the doubled operator forms (dd, gUU, g~g~). Each is
// a motion covering count lines that only applies while its operator is
// pending, so it must be registered before the operators themselves.
func linewiseActions() []*catalog.Action {
	out := make([]*catalog.Action, 0, len(operators))
	for _, op := range operators {
		out = append(out, &catalog.Action{
			Name: ActionCurrentLine + "." + strings.TrimPrefix(op.name, "operator."),
			Kind: catalog.Motion, Modes: []mode.Mode{mode.OperatorPending},
			Keys: op.doubled, When: catalog.PendingOperator(op.name),
			Motion: currentLines,
		})
	}
	return out
}

func currentLines(ctx *execctx.Context, from buffer.Position) (execctx.Motion, error) {
	last := min(from.Line+ctx.GetCount()-1, ctx.LastLine())
	return execctx.Motion{Pos: buffer.Pos(last, from.Column), Linewise: true}, nil
}

// storeText queues the span's text for the selected register. With
// several cursors the register receives one entry per cursor.
func storeText(ctx *execctx.Context, span execctx.Span, yank bool) error {
	if err := register.CheckWritable(ctx.RegisterName()); err != nil {
		return err
	}
	ctx.StoreText(span.Text(ctx.Buffer), span.Wise, yank)
	return nil
}

func deleteOperator(ctx *execctx.Context, span execctx.Span) error {
	if err := storeText(ctx, span, false); err != nil {
		return err
	}
	deleteSpan(ctx, span)
	return nil
}

// deleteSpan removes the span. After a linewise delete the cursor lands
// on the first non-blank of the line that moved up, or of the line above
// when the last line went away.
func deleteSpan(ctx *execctx.Context, span execctx.Span) {
	tb := ctx.Buffer
	switch span.Wise {
	case register.LineWise:
		first, last := span.Lines()
		land := buffer.Pos(0, 0)
		switch {
		case last < ctx.LastLine():
			land = buffer.Pos(last+1, firstNonBlank(ctx.Line(last+1)))
		case first > 0:
			land = buffer.Pos(first-1, firstNonBlank(ctx.Line(first-1)))
		}
		ctx.Delete(span.Range(tb), land)
	case register.BlockWise:
		for _, r := range span.BlockRanges(tb) {
			if !r.IsEmpty() {
				ctx.Delete(r, span.Start)
			}
		}
	default:
		r := span.Range(tb)
		ctx.Delete(r, r.Start)
	}
}

// changeOperator deletes the span and enters Insert mode. Changed lines
// are emptied rather than removed.
func changeOperator(ctx *execctx.Context, span execctx.Span) error {
	if err := storeText(ctx, span, false); err != nil {
		return err
	}
	if span.Wise == register.LineWise {
		first, last := span.Lines()
		start := buffer.Pos(first, 0)
		ctx.Delete(buffer.Range{Start: start, End: buffer.LineEnd(ctx.Buffer, last)}, start)
	} else {
		deleteSpan(ctx, span)
	}
	ctx.SetMode(mode.Insert)
	return nil
}

// yankOperator copies the span. The cursor moves to the start of the
// span except for a linewise yank outside Visual mode.
func yankOperator(ctx *execctx.Context, span execctx.Span) error {
	if err := storeText(ctx, span, true); err != nil {
		return err
	}
	switch {
	case span.Wise != register.LineWise:
		ctx.MoveTo(span.Start)
	case ctx.Mode.IsVisual():
		ctx.MoveTo(buffer.Pos(span.Start.Line, min(ctx.Cursor.Start().Column, lastCol(ctx.Buffer, span.Start.Line))))
	}
	return nil
}

// shiftOperator indents (dir > 0) or outdents every line of the span by
// the configured shift width.
func shiftOperator(dir int) catalog.OperatorFunc {
	return func(ctx *execctx.Context, span execctx.Span) error {
		width := max(ctx.Config.Editing.ShiftWidth, 1)
		first, last := span.Start.Line, span.End.Line
		indent := strings.Repeat(" ", width)

		for n := first; n <= last; n++ {
			line := ctx.Line(n)
			if dir > 0 {
				if line != "" {
					ctx.Emit(insertAt(ctx, buffer.Pos(n, 0), indent))
				}
				continue
			}
			drop := outdentWidth(line, width)
			if drop > 0 {
				ctx.Emit(deleteAt(ctx, buffer.Range{Start: buffer.Pos(n, 0), End: buffer.Pos(n, drop)}))
			}
		}
		ctx.MoveTo(buffer.Pos(first, firstNonBlank(ctx.Line(first))))
		return nil
	}
}

// outdentWidth returns how many leading bytes an outdent removes: up to
// width spaces, or one tab.
func outdentWidth(line string, width int) int {
	if strings.HasPrefix(line, "\t") {
		return 1
	}
	n := 0
	for n < width && n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

// caseOperator rewrites the span's text with conv.
func caseOperator(conv func(string) string) catalog.OperatorFunc {
	return func(ctx *execctx.Context, span execctx.Span) error {
		tb := ctx.Buffer
		var ranges []buffer.Range
		switch span.Wise {
		case register.LineWise:
			first, last := span.Lines()
			ranges = []buffer.Range{{Start: buffer.Pos(first, 0), End: buffer.LineEnd(tb, last)}}
		case register.BlockWise:
			ranges = span.BlockRanges(tb)
		default:
			ranges = []buffer.Range{span.Range(tb)}
		}

		for _, r := range ranges {
			text := tb.Text(r)
			if conv(text) != text {
				ctx.Emit(replaceAt(ctx, r, conv(text)))
			}
		}
		ctx.MoveTo(span.Start)
		return nil
	}
}
