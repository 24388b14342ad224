package transform

import (
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/logging"
)

// Accumulator collects the transformations of one command. Edits are
// handed out by Finalize; content changes persist for the whole command
// so that a chained insert session can be replayed.
type Accumulator struct {
	items   []Transformation
	changes []ContentChange
	log     *logging.Logger
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(log *logging.Logger) *Accumulator {
	if log == nil {
		log = logging.Nop()
	}
	return &Accumulator{log: log.WithComponent("transform")}
}

// Add queues a transformation.
func (a *Accumulator) Add(t Transformation) {
	a.items = append(a.items, t)
}

// Len returns the number of queued transformations.
func (a *Accumulator) Len() int {
	return len(a.items)
}

// Pending returns the queued transformations without consuming them.
func (a *Accumulator) Pending() []Transformation {
	out := make([]Transformation, len(a.items))
	copy(out, a.items)
	return out
}

// AddContentChange records an editor-reported change, compressing it into
// the previous one where possible.
func (a *Accumulator) AddContentChange(c ContentChange) {
	before := len(a.changes)
	a.changes = appendChange(a.changes, c)
	if before > 0 && len(a.changes) > before {
		a.log.Debug("content change %s not merged with %s", c, a.changes[before-1])
	}
}

// ContentChanges returns the compressed content changes so far.
func (a *Accumulator) ContentChanges() []ContentChange {
	out := make([]ContentChange, len(a.changes))
	copy(out, a.changes)
	return out
}

// Result is the outcome of Finalize.
type Result struct {
	// Edits are the accepted edits in the order they were added.
	Edits []buffer.Edit

	// Cursors holds, per initial cursor, where it ends up after Edits
	// are applied.
	Cursors []cursor.Cursor

	// Deferred are non-edit transformations the session acts on after
	// applying Edits, in order.
	Deferred []Transformation

	// Rejected are edits dropped because they overlapped earlier ones.
	Rejected []Transformation
}

// Finalize consumes the queued transformations. Overlapping edits are
// rejected for the later one with a warning. Cursor positions are
// resolved for every transformation that does not set ManualCursor.
func (a *Accumulator) Finalize(initial []cursor.Cursor) Result {
	items := a.items
	a.items = nil

	var res Result
	var accepted []Transformation
	aborted := make(map[int]bool)

	for _, t := range items {
		if !t.Kind.IsEdit() {
			if t.Kind != MoveCursor {
				res.Deferred = append(res.Deferred, t)
			}
			continue
		}
		if conflict, ok := firstOverlap(accepted, t); ok {
			a.log.Warn("rejecting %s: overlaps %s", t, conflict)
			res.Rejected = append(res.Rejected, t)
			if i, ok := t.Cursor.Get(); ok {
				aborted[i] = true
			}
			continue
		}
		accepted = append(accepted, t)
		res.Edits = append(res.Edits, t.Edit())
	}

	res.Cursors = make([]cursor.Cursor, len(initial))
	for i, c := range initial {
		res.Cursors[i] = cursor.Cursor{
			Anchor: buffer.MapPosition(c.Anchor, res.Edits),
			Active: buffer.MapPosition(c.Active, res.Edits),
		}
	}
	mapped := make([]cursor.Cursor, len(res.Cursors))
	copy(mapped, res.Cursors)

	for _, t := range items {
		i, ok := t.Cursor.Get()
		if !ok || i < 0 || i >= len(initial) || t.ManualCursor || aborted[i] {
			continue
		}
		if sel, ok := t.Selection.Get(); ok {
			res.Cursors[i] = cursor.Cursor{
				Anchor: buffer.MapPosition(sel.Anchor, res.Edits),
				Active: buffer.MapPosition(sel.Active, res.Edits),
			}
			continue
		}
		if d, ok := t.Diff.Get(); ok {
			res.Cursors[i] = cursor.At(resolve(d, mapped[i].Active, res.Edits))
			continue
		}
		if t.CollapseSelection {
			res.Cursors[i] = res.Cursors[i].Collapse()
		}
	}
	return res
}

// Discard drops queued transformations of an aborted step. Recorded
// content changes are kept.
func (a *Accumulator) Discard() {
	if len(a.items) > 0 {
		a.log.Debug("discarding %d transformations", len(a.items))
	}
	a.items = nil
}

// Reset drops queued transformations and recorded content changes.
func (a *Accumulator) Reset() {
	a.items = nil
	a.changes = nil
}

func resolve(d PositionDiff, mapped buffer.Position, edits []buffer.Edit) buffer.Position {
	if d.Kind == DiffTarget {
		return buffer.MapPosition(d.Target, edits)
	}
	return mapped.Translate(d.Lines, d.Columns)
}

func firstOverlap(accepted []Transformation, t Transformation) (Transformation, bool) {
	for _, prev := range accepted {
		if prev.Range.Overlaps(t.Range) {
			return prev, true
		}
	}
	return Transformation{}, false
}
