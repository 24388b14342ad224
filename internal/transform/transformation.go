// Package transform collects the edits and cursor moves requested while a
// command executes and turns them into one conflict-free batch.
package transform

import (
	"fmt"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
)

// Kind tags a Transformation.
type Kind uint8

const (
	// InsertText inserts Text at Range.Start.
	InsertText Kind = iota
	// DeleteRange removes Range.
	DeleteRange
	// ReplaceText replaces Range with Text.
	ReplaceText
	// MoveCursor places a cursor without editing.
	MoveCursor
	// MacroReplay replays Register Count times. Handled by the session.
	MacroReplay
	// DotRepeat replays the last repeatable command. Handled by the session.
	DotRepeat
	// ShowStatus displays Text in the status line.
	ShowStatus
)

var kindNames = [...]string{
	InsertText:  "insertText",
	DeleteRange: "deleteRange",
	ReplaceText: "replaceText",
	MoveCursor:  "moveCursor",
	MacroReplay: "macroReplay",
	DotRepeat:   "dotRepeat",
	ShowStatus:  "showStatus",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsEdit reports whether transformations of this kind change text.
func (k Kind) IsEdit() bool {
	return k == InsertText || k == DeleteRange || k == ReplaceText
}

// DiffKind selects how a PositionDiff is applied.
type DiffKind uint8

const (
	// DiffOffset moves the cursor by Lines/Columns from where the edit
	// batch left its initiating position.
	DiffOffset DiffKind = iota
	// DiffTarget places the cursor at Target, given in pre-edit
	// coordinates and mapped through the batch.
	DiffTarget
)

// PositionDiff describes where a cursor lands after a transformation.
type PositionDiff struct {
	Kind    DiffKind
	Lines   int
	Columns int
	Target  buffer.Position
}

// Offset returns a relative diff.
func Offset(lines, cols int) PositionDiff {
	return PositionDiff{Kind: DiffOffset, Lines: lines, Columns: cols}
}

// Target returns a diff placing the cursor at p (pre-edit coordinates).
func Target(p buffer.Position) PositionDiff {
	return PositionDiff{Kind: DiffTarget, Target: p}
}

// Transformation is one requested change, not yet applied.
type Transformation struct {
	Kind  Kind
	Range buffer.Range
	Text  string

	// Cursor attributes the transformation to a cursor index.
	Cursor mo.Option[int]

	// Diff says where the attributed cursor lands.
	Diff mo.Option[PositionDiff]

	// Selection, for MoveCursor, sets anchor and active together.
	Selection mo.Option[cursor.Cursor]

	// ManualCursor means the caller places cursors itself; Diff is ignored.
	ManualCursor bool

	// CollapseSelection turns the attributed cursor into a caret.
	CollapseSelection bool

	// Register and Count parameterize MacroReplay and DotRepeat.
	Register rune
	Count    int
}

// Edit returns the buffer edit for an edit-kind transformation.
func (t Transformation) Edit() buffer.Edit {
	switch t.Kind {
	case InsertText:
		return buffer.Insert(t.Range.Start, t.Text)
	case DeleteRange:
		return buffer.Delete(t.Range)
	default:
		return buffer.Replace(t.Range, t.Text)
	}
}

// String returns a short description for logs.
func (t Transformation) String() string {
	idx := "-"
	if i, ok := t.Cursor.Get(); ok {
		idx = fmt.Sprint(i)
	}
	return fmt.Sprintf("%s%s %q cursor=%s", t.Kind, t.Range, t.Text, idx)
}

// Insert creates an InsertText transformation for cursor i.
func Insert(i int, p buffer.Position, text string) Transformation {
	return Transformation{Kind: InsertText, Range: buffer.PointRange(p), Text: text, Cursor: mo.Some(i)}
}

// Delete creates a DeleteRange transformation for cursor i.
func Delete(i int, r buffer.Range) Transformation {
	return Transformation{Kind: DeleteRange, Range: r, Cursor: mo.Some(i)}
}

// Replace creates a ReplaceText transformation for cursor i.
func Replace(i int, r buffer.Range, text string) Transformation {
	return Transformation{Kind: ReplaceText, Range: r, Text: text, Cursor: mo.Some(i)}
}

// Move creates a MoveCursor transformation placing cursor i at p.
func Move(i int, p buffer.Position) Transformation {
	return Transformation{Kind: MoveCursor, Cursor: mo.Some(i), Diff: mo.Some(Target(p))}
}

// Select creates a MoveCursor transformation setting cursor i to c.
func Select(i int, c cursor.Cursor) Transformation {
	return Transformation{Kind: MoveCursor, Cursor: mo.Some(i), Selection: mo.Some(c)}
}

// WithDiff returns t with a cursor diff.
func (t Transformation) WithDiff(d PositionDiff) Transformation {
	t.Diff = mo.Some(d)
	return t
}
