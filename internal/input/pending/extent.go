package pending

import (
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/mode"
)

// Extent is the shape of a visual selection an operator ran on. Dot
// repeat selects the same shape at the cursor before running the
// operator again.
type Extent struct {
	Mode mode.Mode

	// Lines is the number of lines after the first.
	Lines int

	// Columns is the number of graphemes after the start for a charwise
	// selection within one line, the end column for one spanning lines,
	// and the byte width for a block.
	Columns int
}

// ExtentOf measures the selection c made in visual mode m.
func ExtentOf(tb buffer.TextBuffer, m mode.Mode, c cursor.Cursor) Extent {
	start, end := c.Start(), c.End()
	e := Extent{Mode: m, Lines: end.Line - start.Line}
	switch {
	case m == mode.VisualLine:
	case m == mode.VisualBlock:
		e.Columns = c.Active.Column - c.Anchor.Column
		if e.Columns < 0 {
			e.Columns = -e.Columns
		}
	case e.Lines == 0:
		line := tb.LineAt(start.Line).Text
		for col := start.Column; col < end.Column; {
			next := buffer.NextGrapheme(line, col)
			if next <= col {
				break
			}
			col = next
			e.Columns++
		}
	default:
		e.Columns = end.Column
	}
	return e
}

// From returns the selection of shape e starting at p, cut short at the
// end of the document.
func (e Extent) From(tb buffer.TextBuffer, p buffer.Position) cursor.Cursor {
	last := min(p.Line+e.Lines, tb.LineCount()-1)
	switch e.Mode {
	case mode.VisualLine:
		return cursor.New(p, buffer.Pos(last, min(p.Column, buffer.LastGrapheme(tb.LineAt(last).Text))))
	case mode.VisualBlock:
		return cursor.New(p, buffer.Pos(last, p.Column+e.Columns))
	}

	end := buffer.Pos(last, e.Columns)
	if e.Lines == 0 {
		line := tb.LineAt(p.Line).Text
		end.Column = p.Column
		for i := 0; i < e.Columns; i++ {
			end.Column = buffer.NextGrapheme(line, end.Column)
		}
	}
	end.Column = min(end.Column, buffer.LastGrapheme(tb.LineAt(end.Line).Text))
	return cursor.New(p, end)
}
