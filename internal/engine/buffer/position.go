// Package buffer defines positions, ranges, and edits over line-addressed
// text, the TextBuffer collaborator the engine edits through, and a simple
// in-memory implementation of it.
package buffer

import "fmt"

// Position is a zero-based (line, column) address. Column counts bytes
// from the start of the line. Positions are values; movement returns a
// new Position.
type Position struct {
	Line   int
	Column int
}

// Pos is shorthand for Position{Line: line, Column: col}.
func Pos(line, col int) Position {
	return Position{Line: line, Column: col}
}

// String returns "(line:col)".
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if equal, 1 if p > other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before reports whether p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After reports whether p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// Advance returns the position reached by inserting text at p.
func (p Position) Advance(text string) Position {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			p.Line++
			p.Column = 0
		} else {
			p.Column++
		}
	}
	return p
}

// Translate returns p moved by a line and column delta. The column delta
// applies to the resulting line; negative results clamp at zero.
func (p Position) Translate(lines, cols int) Position {
	p.Line = max(p.Line+lines, 0)
	p.Column = max(p.Column+cols, 0)
	return p
}

// MinPos returns the earlier of two positions.
func MinPos(a, b Position) Position {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxPos returns the later of two positions.
func MaxPos(a, b Position) Position {
	if b.After(a) {
		return b
	}
	return a
}
