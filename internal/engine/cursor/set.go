package cursor

import (
	"sync"

	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/logging"
)

// Set is the non-empty, ordered collection of unique cursors of one
// session. The first cursor is the primary cursor.
type Set struct {
	mu      sync.RWMutex
	cursors []Cursor
	log     *logging.Logger
}

// NewSet creates a set holding one caret at p.
func NewSet(p buffer.Position, log *logging.Logger) *Set {
	if log == nil {
		log = logging.Nop()
	}
	return &Set{cursors: []Cursor{At(p)}, log: log}
}

// SetCursors replaces the set. Duplicates are dropped keeping the first
// occurrence. An empty input is rejected with a warning and the previous
// cursors are kept; the warning is also returned.
func (s *Set) SetCursors(cursors []Cursor) error {
	if len(cursors) == 0 {
		w := editerr.NewWarning("setCursors", "refusing to set an empty cursor set")
		s.log.Warn("%v", w)
		return w
	}

	unique := Dedupe(cursors)

	s.mu.Lock()
	s.cursors = unique
	s.mu.Unlock()
	return nil
}

// All returns a snapshot of the cursors.
func (s *Set) All() []Cursor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Cursor, len(s.cursors))
	copy(out, s.cursors)
	return out
}

// Primary returns the first cursor.
func (s *Set) Primary() Cursor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[0]
}

// Get returns cursor i.
func (s *Set) Get(i int) Cursor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[i]
}

// Len returns the number of cursors.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cursors)
}

// IsMultiCursor reports whether there is more than one cursor.
func (s *Set) IsMultiCursor() bool {
	return s.Len() > 1
}

// CollapseAll turns every selection into a caret at its active end.
func (s *Set) CollapseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.cursors {
		s.cursors[i] = c.Collapse()
	}
	s.cursors = Dedupe(s.cursors)
}

// Clamp limits every cursor to the document, logging any cursor that was
// out of range.
func (s *Set) Clamp(tb buffer.TextBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.cursors {
		clamped := Cursor{Anchor: buffer.Clamp(tb, c.Anchor), Active: buffer.Clamp(tb, c.Active)}
		if clamped != c {
			s.log.Warn("%v", editerr.NewWarning("clamp", "cursor "+c.String()+" outside document"))
			s.cursors[i] = clamped
		}
	}
	s.cursors = Dedupe(s.cursors)
}

// Dedupe returns cursors without structural duplicates, preserving the
// order of first occurrence.
func Dedupe(cursors []Cursor) []Cursor {
	seen := make(map[Cursor]struct{}, len(cursors))
	out := make([]Cursor, 0, len(cursors))
	for _, c := range cursors {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
