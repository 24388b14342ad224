package buffer

// Line is one line of text without its terminator.
type Line struct {
	Text   string
	Length int
}

// TextBuffer is the document the engine reads and edits. Implementations
// belong to the surrounding editor; the engine only needs these calls.
type TextBuffer interface {
	// Text returns the text in r.
	Text(r Range) string

	// LineAt returns line n. Out-of-range lines are empty.
	LineAt(n int) Line

	// LineCount returns the number of lines; always at least 1.
	LineCount() int

	// ApplyEdits applies a batch of non-overlapping edits expressed in
	// pre-edit coordinates, atomically. It returns, per edit, the position
	// just after the inserted text in the resulting document.
	ApplyEdits(edits []Edit) ([]Position, error)

	// Version is a counter that increases with every applied batch.
	Version() uint64
}

// Clamp returns p limited to the document: the line to an existing line
// and the column to at most the line length.
func Clamp(tb TextBuffer, p Position) Position {
	last := tb.LineCount() - 1
	p.Line = min(max(p.Line, 0), last)
	p.Column = min(max(p.Column, 0), tb.LineAt(p.Line).Length)
	return p
}

// LineEnd returns the position after the last character of line n.
func LineEnd(tb TextBuffer, n int) Position {
	return Position{Line: n, Column: tb.LineAt(n).Length}
}

// DocumentEnd returns the position after the last character.
func DocumentEnd(tb TextBuffer) Position {
	return LineEnd(tb, tb.LineCount()-1)
}

// FullLines returns the range covering lines first..last including the
// trailing newline. When last is the final line, the newline before first
// is taken instead so that removing the range leaves no empty line.
func FullLines(tb TextBuffer, first, last int) Range {
	if last < tb.LineCount()-1 {
		return Range{Start: Pos(first, 0), End: Pos(last+1, 0)}
	}
	if first > 0 {
		return Range{Start: LineEnd(tb, first-1), End: LineEnd(tb, last)}
	}
	return Range{Start: Pos(0, 0), End: LineEnd(tb, last)}
}

// Offset returns the byte offset of p from the start of the document,
// counting one byte per line terminator.
func Offset(tb TextBuffer, p Position) int {
	off := 0
	for n := 0; n < p.Line && n < tb.LineCount(); n++ {
		off += tb.LineAt(n).Length + 1
	}
	return off + p.Column
}
