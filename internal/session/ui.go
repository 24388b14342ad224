package session

import (
	"github.com/dshills/modal/internal/engine/buffer"
)

// UI is the rendering collaborator a session reports to.
type UI interface {
	// RevealRange scrolls r into view.
	RevealRange(r buffer.Range)

	// SetDecorations replaces the ranges highlighted under name.
	SetDecorations(name string, ranges []buffer.Range)

	// SetStatusText shows text in the status line.
	SetStatusText(text string, isError bool)
}

// NopUI is a UI that ignores every call.
type NopUI struct{}

// RevealRange implements UI.
func (NopUI) RevealRange(buffer.Range) {}

// SetDecorations implements UI.
func (NopUI) SetDecorations(string, []buffer.Range) {}

// SetStatusText implements UI.
func (NopUI) SetStatusText(string, bool) {}

// SelectionDecoration names the decoration set holding visual selections.
const SelectionDecoration = "selection"
