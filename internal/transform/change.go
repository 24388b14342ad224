package transform

import (
	"fmt"

	"github.com/dshills/modal/internal/engine/buffer"
)

// ContentChange is a document change reported by the editor, in the
// shape editors emit them: the replaced range, its byte offset and
// length, and the new text.
type ContentChange struct {
	Range       buffer.Range
	RangeOffset int
	RangeLength int
	Text        string
}

// String returns a short description for logs.
func (c ContentChange) String() string {
	return fmt.Sprintf("%s@%d+%d %q", c.Range, c.RangeOffset, c.RangeLength, c.Text)
}

// Merge folds second into first when the result is unambiguous.
//
// A pure insert starting where first's new text ends is appended. A
// change whose replaced span lies inside first's new text is spliced into
// it. Anything else is not merged and ok is false.
func Merge(first, second ContentChange) (merged ContentChange, ok bool) {
	firstEnd := first.RangeOffset + len(first.Text)

	if second.RangeLength == 0 && second.RangeOffset == firstEnd {
		first.Text += second.Text
		return first, true
	}

	start := second.RangeOffset - first.RangeOffset
	end := start + second.RangeLength
	if start >= 0 && end <= len(first.Text) {
		first.Text = first.Text[:start] + second.Text + first.Text[end:]
		return first, true
	}

	return ContentChange{}, false
}

// Compress merges a sequence of changes pairwise from the left. Changes
// that cannot be merged stay as separate entries in order.
func Compress(changes []ContentChange) []ContentChange {
	var out []ContentChange
	for _, c := range changes {
		out = appendChange(out, c)
	}
	return out
}

func appendChange(out []ContentChange, c ContentChange) []ContentChange {
	if n := len(out); n > 0 {
		if merged, ok := Merge(out[n-1], c); ok {
			out[n-1] = merged
			return out
		}
	}
	return append(out, c)
}

// Relocate moves the change so that a change recorded relative to from
// applies relative to to. Positions on from's line keep their column
// distance from it; positions on later lines keep their column.
func (c ContentChange) Relocate(from, to buffer.Position) ContentChange {
	shift := func(p buffer.Position) buffer.Position {
		if p.Line == from.Line {
			return buffer.Pos(to.Line, max(to.Column+p.Column-from.Column, 0))
		}
		return buffer.Pos(max(p.Line+to.Line-from.Line, 0), p.Column)
	}
	c.Range = buffer.Range{Start: shift(c.Range.Start), End: shift(c.Range.End)}
	return c
}
