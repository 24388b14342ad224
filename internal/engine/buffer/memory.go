package buffer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrOutOfBounds is returned for edits outside the document.
var ErrOutOfBounds = errors.New("buffer: range out of bounds")

// Buffer is an in-memory TextBuffer holding one string per line.
// It is safe for concurrent use.
type Buffer struct {
	mu      sync.RWMutex
	lines   []string
	version uint64
}

// New creates a buffer from text. Lines are split on "\n".
func New(text string) *Buffer {
	return &Buffer{lines: strings.Split(text, "\n")}
}

// String returns the full document text.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// Text returns the text in r, clamped to the document.
func (b *Buffer) Text(r Range) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start, end := b.offset(r.Start), b.offset(r.End)
	if end < start {
		start, end = end, start
	}
	return strings.Join(b.lines, "\n")[start:end]
}

// LineAt returns line n.
func (b *Buffer) LineAt(n int) Line {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n < 0 || n >= len(b.lines) {
		return Line{}
	}
	return Line{Text: b.lines[n], Length: len(b.lines[n])}
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Version returns the edit counter.
func (b *Buffer) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// ApplyEdits applies edits atomically. Either every edit applies or none.
func (b *Buffer) ApplyEdits(edits []Edit) ([]Position, error) {
	if err := CheckOverlap(edits); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range edits {
		if !b.valid(e.Range.Start) || !b.valid(e.Range.End) || e.Range.End.Before(e.Range.Start) {
			return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, e.Range)
		}
	}

	text := strings.Join(b.lines, "\n")
	sorted := SortEdits(edits)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		start, end := b.offset(e.Range.Start), b.offset(e.Range.End)
		text = text[:start] + e.NewText + text[end:]
	}
	b.lines = strings.Split(text, "\n")
	b.version++

	ends := make([]Position, len(edits))
	for i, e := range edits {
		ends[i] = MapPosition(e.Range.Start, others(edits, i)).Advance(e.NewText)
	}
	return ends, nil
}

// others returns edits without index i, for mapping one edit's start
// through the rest of the batch.
func others(edits []Edit, i int) []Edit {
	rest := make([]Edit, 0, len(edits)-1)
	rest = append(rest, edits[:i]...)
	return append(rest, edits[i+1:]...)
}

// valid reports whether p addresses a real position. Caller holds mu.
func (b *Buffer) valid(p Position) bool {
	return p.Line >= 0 && p.Line < len(b.lines) && p.Column >= 0 && p.Column <= len(b.lines[p.Line])
}

// offset converts a position to a byte offset, clamping. Caller holds mu.
func (b *Buffer) offset(p Position) int {
	if p.Line < 0 {
		return 0
	}
	off := 0
	for i := 0; i < p.Line && i < len(b.lines); i++ {
		off += len(b.lines[i]) + 1
	}
	if p.Line >= len(b.lines) {
		return off - 1
	}
	return off + min(max(p.Column, 0), len(b.lines[p.Line]))
}
