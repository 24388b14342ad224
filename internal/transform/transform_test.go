package transform

import (
	"bytes"
	"strings"
	"testing"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/logging"
)

func change(startLine, startCol, endLine, endCol, offset, length int, text string) ContentChange {
	return ContentChange{
		Range:       buffer.NewRange(buffer.Pos(startLine, startCol), buffer.Pos(endLine, endCol)),
		RangeOffset: offset,
		RangeLength: length,
		Text:        text,
	}
}

func TestMerge_Concatenation(t *testing.T) {
	first := change(0, 0, 0, 0, 0, 0, "f")
	second := change(0, 1, 0, 1, 1, 0, "oo")

	got, ok := Merge(first, second)
	if !ok {
		t.Fatal("expected merge")
	}
	want := change(0, 0, 0, 0, 0, 0, "foo")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestMerge_Splice(t *testing.T) {
	// "prin" typed, then completion replaces "prin" with "println".
	first := change(2, 4, 2, 4, 20, 0, "prin")
	second := change(2, 4, 2, 8, 20, 4, "println")

	got, ok := Merge(first, second)
	if !ok {
		t.Fatal("expected splice")
	}
	if got.Text != "println" || got.Range != first.Range {
		t.Errorf("unexpected splice result %s", got)
	}

	// Backspace inside the inserted text.
	got, ok = Merge(change(0, 0, 0, 0, 0, 0, "abc"), change(0, 2, 0, 3, 2, 1, ""))
	if !ok || got.Text != "ab" {
		t.Errorf("expected backspace splice to give %q, got %q (%v)", "ab", got.Text, ok)
	}
}

func TestMerge_Unrelated(t *testing.T) {
	first := change(0, 0, 0, 0, 0, 0, "a")
	second := change(3, 0, 3, 2, 40, 2, "zz")
	if _, ok := Merge(first, second); ok {
		t.Error("unrelated changes must not merge")
	}
}

func TestCompress(t *testing.T) {
	changes := []ContentChange{
		change(0, 0, 0, 0, 0, 0, "f"),
		change(0, 1, 0, 1, 1, 0, "o"),
		change(0, 2, 0, 2, 2, 0, "o"),
		change(5, 0, 5, 0, 50, 0, "x"),
		change(5, 1, 5, 1, 51, 0, "y"),
	}
	got := Compress(changes)
	if len(got) != 2 {
		t.Fatalf("expected 2 changes, got %d: %v", len(got), got)
	}
	if got[0].Text != "foo" || got[1].Text != "xy" {
		t.Errorf("unexpected compression %v", got)
	}
}

func TestContentChange_Relocate(t *testing.T) {
	c := change(2, 5, 2, 7, 0, 2, "x")
	got := c.Relocate(buffer.Pos(2, 4), buffer.Pos(7, 0))
	if got.Range != buffer.NewRange(buffer.Pos(7, 1), buffer.Pos(7, 3)) {
		t.Errorf("unexpected relocated range %s", got.Range)
	}
}

func TestAccumulator_FinalizeResolvesCursors(t *testing.T) {
	a := NewAccumulator(nil)
	initial := []cursor.Cursor{cursor.At(buffer.Pos(0, 2)), cursor.At(buffer.Pos(0, 6))}

	// Each cursor deletes the character under it; the cursor stays put.
	a.Add(Delete(0, buffer.NewRange(buffer.Pos(0, 2), buffer.Pos(0, 3))))
	a.Add(Delete(1, buffer.NewRange(buffer.Pos(0, 6), buffer.Pos(0, 7))))

	res := a.Finalize(initial)
	if len(res.Edits) != 2 || len(res.Rejected) != 0 {
		t.Fatalf("expected 2 edits, got %d (rejected %d)", len(res.Edits), len(res.Rejected))
	}
	if res.Cursors[0].Active != buffer.Pos(0, 2) || res.Cursors[1].Active != buffer.Pos(0, 5) {
		t.Errorf("unexpected cursors %v", res.Cursors)
	}
	if a.Len() != 0 {
		t.Error("finalize should consume queued transformations")
	}
}

func TestAccumulator_TargetDiffIsMapped(t *testing.T) {
	a := NewAccumulator(nil)
	initial := []cursor.Cursor{cursor.At(buffer.Pos(1, 3)), cursor.At(buffer.Pos(3, 1))}

	// Open a line below each cursor: insert "\n" at end of line, cursor
	// lands at the start of the new line.
	a.Add(Insert(0, buffer.Pos(1, 5), "\n").WithDiff(Target(buffer.Pos(1, 5))))
	a.Add(Insert(1, buffer.Pos(3, 4), "\n").WithDiff(Target(buffer.Pos(3, 4))))

	res := a.Finalize(initial)
	if res.Cursors[0] != cursor.At(buffer.Pos(2, 0)) {
		t.Errorf("cursor 0: expected (2:0), got %s", res.Cursors[0])
	}
	if res.Cursors[1] != cursor.At(buffer.Pos(5, 0)) {
		t.Errorf("cursor 1: expected (5:0), got %s", res.Cursors[1])
	}
}

func TestAccumulator_OffsetDiff(t *testing.T) {
	a := NewAccumulator(nil)
	initial := []cursor.Cursor{cursor.At(buffer.Pos(0, 4))}

	a.Add(Insert(0, buffer.Pos(0, 4), "abc").WithDiff(Offset(0, -1)))

	res := a.Finalize(initial)
	if res.Cursors[0] != cursor.At(buffer.Pos(0, 6)) {
		t.Errorf("expected (0:6), got %s", res.Cursors[0])
	}
}

func TestAccumulator_RejectsOverlap(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelWarn, Output: &buf})
	a := NewAccumulator(log)
	initial := []cursor.Cursor{cursor.At(buffer.Pos(0, 0)), cursor.At(buffer.Pos(0, 2))}

	a.Add(Delete(0, buffer.NewRange(buffer.Pos(0, 0), buffer.Pos(0, 4))).WithDiff(Target(buffer.Pos(0, 0))))
	a.Add(Delete(1, buffer.NewRange(buffer.Pos(0, 2), buffer.Pos(0, 6))).WithDiff(Target(buffer.Pos(0, 9))))

	res := a.Finalize(initial)
	if len(res.Edits) != 1 || len(res.Rejected) != 1 {
		t.Fatalf("expected 1 accepted and 1 rejected, got %d and %d", len(res.Edits), len(res.Rejected))
	}
	if res.Edits[0].Range.End != buffer.Pos(0, 4) {
		t.Errorf("earlier edit should win, got %s", res.Edits[0])
	}
	// Cursor 1 is aborted: it is only mapped through the accepted edit.
	if res.Cursors[1] != cursor.At(buffer.Pos(0, 0)) {
		t.Errorf("expected aborted cursor mapped to (0:0), got %s", res.Cursors[1])
	}
	if !strings.Contains(buf.String(), "rejecting") {
		t.Errorf("expected warning, got %q", buf.String())
	}
}

func TestAccumulator_ManualCursorSkipsResolution(t *testing.T) {
	a := NewAccumulator(nil)
	initial := []cursor.Cursor{cursor.At(buffer.Pos(0, 0))}

	tr := Insert(0, buffer.Pos(0, 0), "xy").WithDiff(Target(buffer.Pos(9, 9)))
	tr.ManualCursor = true
	a.Add(tr)

	res := a.Finalize(initial)
	if res.Cursors[0] != cursor.At(buffer.Pos(0, 2)) {
		t.Errorf("expected plain mapping to (0:2), got %s", res.Cursors[0])
	}
}

func TestAccumulator_DeferredAndSelection(t *testing.T) {
	a := NewAccumulator(nil)
	initial := []cursor.Cursor{cursor.At(buffer.Pos(0, 0))}

	a.Add(Select(0, cursor.New(buffer.Pos(0, 1), buffer.Pos(0, 3))))
	a.Add(Transformation{Kind: MacroReplay, Register: 'a', Count: 2})
	a.Add(Transformation{Kind: ShowStatus, Text: "hi", Cursor: mo.None[int]()})

	res := a.Finalize(initial)
	if res.Cursors[0] != cursor.New(buffer.Pos(0, 1), buffer.Pos(0, 3)) {
		t.Errorf("unexpected selection %s", res.Cursors[0])
	}
	if len(res.Deferred) != 2 || res.Deferred[0].Kind != MacroReplay || res.Deferred[1].Kind != ShowStatus {
		t.Errorf("unexpected deferred %v", res.Deferred)
	}
}

func TestAccumulator_ContentChangesSurviveFinalize(t *testing.T) {
	a := NewAccumulator(nil)
	a.AddContentChange(change(0, 0, 0, 0, 0, 0, "f"))
	a.AddContentChange(change(0, 1, 0, 1, 1, 0, "oo"))
	_ = a.Finalize(nil)

	got := a.ContentChanges()
	if len(got) != 1 || got[0].Text != "foo" {
		t.Errorf("expected one compressed change, got %v", got)
	}

	a.Reset()
	if len(a.ContentChanges()) != 0 {
		t.Error("reset should drop content changes")
	}
}

func TestAccumulator_DiscardKeepsContentChanges(t *testing.T) {
	a := NewAccumulator(nil)
	a.Add(Insert(0, buffer.Pos(0, 0), "x"))
	a.AddContentChange(ContentChange{Text: "f"})

	a.Discard()

	if a.Len() != 0 {
		t.Errorf("expected queue emptied, got %d", a.Len())
	}
	if len(a.ContentChanges()) != 1 {
		t.Errorf("expected content changes kept, got %d", len(a.ContentChanges()))
	}
}
