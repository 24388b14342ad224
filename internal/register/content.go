// Package register implements the register table shared by all editing
// sessions of a process: named, numbered, and special registers holding
// text or recorded macros.
package register

import (
	"strings"

	"github.com/dshills/modal/internal/input/key"
)

// Wise tags how register text is put back.
type Wise uint8

const (
	CharWise Wise = iota
	LineWise
	BlockWise
)

// String returns the wise-mode name.
func (w Wise) String() string {
	switch w {
	case LineWise:
		return "line"
	case BlockWise:
		return "block"
	default:
		return "char"
	}
}

// ParseWise parses a wise-mode name; unknown names are CharWise.
func ParseWise(s string) Wise {
	switch s {
	case "line":
		return LineWise
	case "block":
		return BlockWise
	default:
		return CharWise
	}
}

// Recorded is one command of a macro. Commands recorded live carry the
// resolved actions that ran; commands converted from text carry only
// their keys.
type Recorded interface {
	Keys() []key.Event
}

// KeyCommand is a macro command known only by its keystrokes.
type KeyCommand []key.Event

// Keys returns the keystrokes.
func (k KeyCommand) Keys() []key.Event {
	return k
}

// Content is what a register holds: text with a wise-mode, or a macro.
// Text holds one entry per cursor that produced it.
type Content struct {
	Text  []string
	Wise  Wise
	Macro []Recorded
}

// TextContent creates single-valued text content.
func TextContent(text string, wise Wise) Content {
	return Content{Text: []string{text}, Wise: wise}
}

// MacroContent creates macro content.
func MacroContent(commands []Recorded) Content {
	if commands == nil {
		commands = []Recorded{}
	}
	return Content{Macro: commands}
}

// IsMacro reports whether the content is a recorded macro.
func (c Content) IsMacro() bool {
	return c.Macro != nil
}

// IsEmpty reports whether the content holds nothing.
func (c Content) IsEmpty() bool {
	if c.IsMacro() {
		return len(c.Macro) == 0
	}
	for _, t := range c.Text {
		if t != "" {
			return false
		}
	}
	return true
}

// String returns the text joined by newlines, or for a macro the
// keystrokes in vim notation.
func (c Content) String() string {
	if c.IsMacro() {
		var b strings.Builder
		for _, cmd := range c.Macro {
			b.WriteString(key.Format(cmd.Keys()))
		}
		return b.String()
	}
	return strings.Join(c.Text, "\n")
}

// For returns the text for cursor i of n. When the content was produced
// by exactly n cursors each gets its own entry; otherwise every cursor
// gets the joined text.
func (c Content) For(i, n int) string {
	if !c.IsMacro() && len(c.Text) == n && i < n {
		return c.Text[i]
	}
	return c.String()
}

// Commands returns the content as macro commands. Text is read as a key
// sequence in vim notation, one command in total.
func (c Content) Commands() []Recorded {
	if c.IsMacro() {
		return c.Macro
	}
	text := c.String()
	if text == "" {
		return nil
	}
	events, err := key.ParseSequence(text)
	if err != nil {
		return nil
	}
	return []Recorded{KeyCommand(events)}
}

// appendContent implements the uppercase-register append.
func appendContent(old, add Content) Content {
	if old.IsEmpty() {
		return add
	}
	if old.IsMacro() || add.IsMacro() {
		cmds := append(append([]Recorded{}, old.Commands()...), add.Commands()...)
		return MacroContent(cmds)
	}

	sep := ""
	wise := old.Wise
	if old.Wise == LineWise || add.Wise == LineWise {
		sep = "\n"
		wise = LineWise
	}
	if len(old.Text) == len(add.Text) {
		text := make([]string, len(old.Text))
		for i := range old.Text {
			text[i] = old.Text[i] + sep + add.Text[i]
		}
		return Content{Text: text, Wise: wise}
	}
	return TextContent(old.String()+sep+add.String(), wise)
}
