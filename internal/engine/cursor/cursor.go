// Package cursor holds the cursors of an editing session.
package cursor

import (
	"fmt"

	"github.com/dshills/modal/internal/engine/buffer"
)

// Cursor is a selection from Anchor to Active. When Anchor == Active it
// is a plain caret. Cursors compare structurally.
type Cursor struct {
	Anchor buffer.Position
	Active buffer.Position
}

// At creates a caret at p.
func At(p buffer.Position) Cursor {
	return Cursor{Anchor: p, Active: p}
}

// New creates a cursor selecting from anchor to active.
func New(anchor, active buffer.Position) Cursor {
	return Cursor{Anchor: anchor, Active: active}
}

// String returns "anchor->active", or just the position for a caret.
func (c Cursor) String() string {
	if c.IsCaret() {
		return c.Active.String()
	}
	return fmt.Sprintf("%s->%s", c.Anchor, c.Active)
}

// IsCaret reports whether the cursor selects nothing.
func (c Cursor) IsCaret() bool {
	return c.Anchor == c.Active
}

// Start returns the earlier endpoint.
func (c Cursor) Start() buffer.Position {
	return buffer.MinPos(c.Anchor, c.Active)
}

// End returns the later endpoint.
func (c Cursor) End() buffer.Position {
	return buffer.MaxPos(c.Anchor, c.Active)
}

// Range returns the selection as an ordered range.
func (c Cursor) Range() buffer.Range {
	return buffer.NewRange(c.Anchor, c.Active)
}

// Collapse returns a caret at the active position.
func (c Cursor) Collapse() Cursor {
	return At(c.Active)
}

// MoveTo returns the cursor with its active end at p, keeping the anchor.
func (c Cursor) MoveTo(p buffer.Position) Cursor {
	c.Active = p
	return c
}

// Swap exchanges anchor and active.
func (c Cursor) Swap() Cursor {
	return Cursor{Anchor: c.Active, Active: c.Anchor}
}
