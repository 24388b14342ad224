package execctx

import (
	"strings"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/register"
)

// Motion is where a motion function takes the cursor.
type Motion struct {
	// Pos is the new active position.
	Pos buffer.Position

	// Start, when set, overrides the cursor as the other end of the
	// operated range. Text objects set it.
	Start mo.Option[buffer.Position]

	// Inclusive means the character at Pos belongs to the operated range.
	Inclusive bool

	// Linewise means an operator acts on whole lines.
	Linewise bool
}

// To returns an exclusive characterwise motion to p.
func To(p buffer.Position) Motion {
	return Motion{Pos: p, Start: mo.None[buffer.Position]()}
}

// Span is the text an operator acts on.
//
// Characterwise spans cover [Start, End). Linewise spans cover lines
// Start.Line through End.Line; columns are ignored. Blockwise spans cover
// columns [Start.Column, End.Column) on each of those lines.
type Span struct {
	Start buffer.Position
	End   buffer.Position
	Wise  register.Wise
}

// CharSpan returns a characterwise span over r.
func CharSpan(r buffer.Range) Span {
	return Span{Start: r.Start, End: r.End, Wise: register.CharWise}
}

// LineSpan returns a linewise span over lines first..last.
func LineSpan(first, last int) Span {
	if last < first {
		first, last = last, first
	}
	return Span{Start: buffer.Pos(first, 0), End: buffer.Pos(last, 0), Wise: register.LineWise}
}

// BlockSpan returns a blockwise span with corners a and b, both included.
// endCol is the column after the rightmost included character.
func BlockSpan(a, b buffer.Position, endCol int) Span {
	first, last := min(a.Line, b.Line), max(a.Line, b.Line)
	left := min(a.Column, b.Column)
	return Span{Start: buffer.Pos(first, left), End: buffer.Pos(last, endCol), Wise: register.BlockWise}
}

// Lines returns the first and last line touched.
func (s Span) Lines() (int, int) {
	return s.Start.Line, s.End.Line
}

// Range returns the text range removed when the span is deleted. For
// linewise spans this includes one line terminator.
func (s Span) Range(tb buffer.TextBuffer) buffer.Range {
	if s.Wise == register.LineWise {
		return buffer.FullLines(tb, s.Start.Line, s.End.Line)
	}
	return buffer.NewRange(s.Start, s.End)
}

// BlockRanges returns the per-line ranges of a blockwise span. Lines
// shorter than the left edge contribute an empty range at their end.
func (s Span) BlockRanges(tb buffer.TextBuffer) []buffer.Range {
	out := make([]buffer.Range, 0, s.End.Line-s.Start.Line+1)
	for n := s.Start.Line; n <= s.End.Line; n++ {
		length := tb.LineAt(n).Length
		left := min(s.Start.Column, length)
		right := min(s.End.Column, length)
		out = append(out, buffer.Range{Start: buffer.Pos(n, left), End: buffer.Pos(n, right)})
	}
	return out
}

// Text returns the text the span covers as it is stored in a register.
// Linewise and blockwise text carries no trailing newline.
func (s Span) Text(tb buffer.TextBuffer) string {
	switch s.Wise {
	case register.LineWise:
		lines := make([]string, 0, s.End.Line-s.Start.Line+1)
		for n := s.Start.Line; n <= s.End.Line; n++ {
			lines = append(lines, tb.LineAt(n).Text)
		}
		return strings.Join(lines, "\n")
	case register.BlockWise:
		ranges := s.BlockRanges(tb)
		parts := make([]string, len(ranges))
		for i, r := range ranges {
			parts[i] = tb.Text(r)
		}
		return strings.Join(parts, "\n")
	}
	return tb.Text(buffer.NewRange(s.Start, s.End))
}

// Content returns the span text as register content.
func (s Span) Content(tb buffer.TextBuffer) register.Content {
	return register.TextContent(s.Text(tb), s.Wise)
}
