package execctx

import (
	"github.com/samber/mo"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/mode"
)

// maxJumps bounds the jump list.
const maxJumps = 100

// CharSearch is the last f, t, F, or T search, replayed by ; and ,.
type CharSearch struct {
	Char    rune
	Forward bool
	Till    bool
}

// Reversed returns the search in the opposite direction.
func (c CharSearch) Reversed() CharSearch {
	c.Forward = !c.Forward
	return c
}

// Search is the last completed / or ? search.
type Search struct {
	Pattern string
	Forward bool
}

// Visual is the last visual selection, restored by gv.
type Visual struct {
	Mode    mode.Mode
	Cursors []cursor.Cursor
}

// Overwrite is text typed in Replace mode together with the text it
// replaced. Original is empty when the typing extended the line.
type Overwrite struct {
	At       buffer.Position
	Typed    string
	Original string
}

// State is the per-session state that outlives a single command.
type State struct {
	LastCharSearch mo.Option[CharSearch]
	LastSearch     mo.Option[Search]
	LastVisual     mo.Option[Visual]

	// SearchInput is the pattern being typed while in search mode.
	SearchInput   []rune
	SearchForward bool

	jumps      []buffer.Position
	overwrites map[int][]Overwrite
}

// NewState creates empty session state.
func NewState() *State {
	return &State{
		LastCharSearch: mo.None[CharSearch](),
		LastSearch:     mo.None[Search](),
		LastVisual:     mo.None[Visual](),
	}
}

// PushJump records p as a jump origin.
func (s *State) PushJump(p buffer.Position) {
	if n := len(s.jumps); n > 0 && s.jumps[n-1] == p {
		return
	}
	s.jumps = append(s.jumps, p)
	if len(s.jumps) > maxJumps {
		s.jumps = s.jumps[len(s.jumps)-maxJumps:]
	}
}

// PopJump removes and returns the most recent jump origin.
func (s *State) PopJump() (buffer.Position, bool) {
	n := len(s.jumps)
	if n == 0 {
		return buffer.Position{}, false
	}
	p := s.jumps[n-1]
	s.jumps = s.jumps[:n-1]
	return p, true
}

// JumpCount returns the number of recorded jumps.
func (s *State) JumpCount() int {
	return len(s.jumps)
}

// BeginReplace forgets the overwrites of an earlier Replace session.
func (s *State) BeginReplace() {
	s.overwrites = nil
}

// PushOverwrite records text typed by cursor i in Replace mode.
func (s *State) PushOverwrite(i int, o Overwrite) {
	if s.overwrites == nil {
		s.overwrites = make(map[int][]Overwrite)
	}
	s.overwrites[i] = append(s.overwrites[i], o)
}

// PopOverwrite removes and returns the last overwrite of cursor i.
func (s *State) PopOverwrite(i int) (Overwrite, bool) {
	stack := s.overwrites[i]
	if len(stack) == 0 {
		return Overwrite{}, false
	}
	o := stack[len(stack)-1]
	s.overwrites[i] = stack[:len(stack)-1]
	return o, true
}
