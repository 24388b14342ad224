package buffer

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEditsOverlap is returned when a batch contains conflicting edits.
var ErrEditsOverlap = errors.New("buffer: edits overlap")

// Edit replaces the text in Range with NewText.
type Edit struct {
	Range   Range
	NewText string
}

// Insert creates an edit inserting text at p.
func Insert(p Position, text string) Edit {
	return Edit{Range: PointRange(p), NewText: text}
}

// Delete creates an edit removing r.
func Delete(r Range) Edit {
	return Edit{Range: r}
}

// Replace creates an edit replacing r with text.
func Replace(r Range, text string) Edit {
	return Edit{Range: r, NewText: text}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	switch {
	case e.Range.IsEmpty():
		return fmt.Sprintf("Insert(%s, %q)", e.Range.Start, e.NewText)
	case e.NewText == "":
		return fmt.Sprintf("Delete%s", e.Range)
	}
	return fmt.Sprintf("Replace%s with %q", e.Range, e.NewText)
}

// IsNoOp reports whether the edit changes nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// NewEnd returns the position just after the inserted text once the edit
// is applied, ignoring other edits in the batch.
func (e Edit) NewEnd() Position {
	return e.Range.Start.Advance(e.NewText)
}

// SortEdits returns a copy of edits in ascending document order.
// Edits at the same start keep their relative order.
func SortEdits(edits []Edit) []Edit {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Before(sorted[j].Range.Start)
	})
	return sorted
}

// CheckOverlap returns ErrEditsOverlap if any two edits conflict.
func CheckOverlap(edits []Edit) error {
	sorted := SortEdits(edits)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Range.Overlaps(sorted[i].Range) {
			return fmt.Errorf("%w: %s and %s", ErrEditsOverlap, sorted[i-1], sorted[i])
		}
	}
	return nil
}

// MapPosition returns where p ends up after a batch of non-overlapping
// edits expressed in pre-edit coordinates. A position inside a replaced
// range collapses to the start of the replacement; a position at or after
// a range's end shifts with it.
func MapPosition(p Position, edits []Edit) Position {
	sorted := SortEdits(edits)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		switch {
		case !p.Before(e.Range.End):
			end := e.NewEnd()
			if p.Line == e.Range.End.Line {
				p = Position{Line: end.Line, Column: end.Column + p.Column - e.Range.End.Column}
			} else {
				p.Line += end.Line - e.Range.End.Line
			}
		case !p.Before(e.Range.Start):
			p = e.Range.Start
		}
	}
	return p
}
