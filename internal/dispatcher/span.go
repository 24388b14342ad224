package dispatcher

import (
	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/mode"
)

// MotionSpan returns the span an operator acts on when the cursor at from
// moves by mv.
func MotionSpan(tb buffer.TextBuffer, from buffer.Position, mv execctx.Motion) execctx.Span {
	start, end := mv.Start.OrElse(from), mv.Pos
	if end.Before(start) {
		start, end = end, start
	}

	if mv.Linewise {
		return execctx.LineSpan(start.Line, end.Line)
	}
	if mv.Inclusive {
		end.Column = buffer.NextGrapheme(tb.LineAt(end.Line).Text, end.Column)
		return execctx.CharSpan(buffer.Range{Start: start, End: end})
	}

	// An exclusive motion ending at the start of a later line stops at
	// the end of the line before it.
	if mv.Start.IsAbsent() && end.Column == 0 && end.Line > start.Line {
		end = buffer.LineEnd(tb, end.Line-1)
	}
	return execctx.CharSpan(buffer.Range{Start: start, End: end})
}

// SelectionSpan returns the span covered by a visual selection.
func SelectionSpan(tb buffer.TextBuffer, m mode.Mode, c cursor.Cursor) execctx.Span {
	switch m {
	case mode.VisualLine:
		return execctx.LineSpan(c.Anchor.Line, c.Active.Line)
	case mode.VisualBlock:
		right := c.Anchor
		if c.Active.Column > right.Column {
			right = c.Active
		}
		endCol := buffer.NextGrapheme(tb.LineAt(right.Line).Text, right.Column)
		return execctx.BlockSpan(c.Anchor, c.Active, max(endCol, right.Column+1))
	}

	start, end := c.Start(), c.End()
	end.Column = buffer.NextGrapheme(tb.LineAt(end.Line).Text, end.Column)
	return execctx.CharSpan(buffer.Range{Start: start, End: end})
}
