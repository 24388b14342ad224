package key

import (
	"strings"
	"unicode"
)

// Event is a single key token.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	// Shift is never set on KeyRune events; it is folded into the rune.
	Modifiers Modifier
}

// Rune creates an unmodified character token.
func Rune(r rune) Event {
	return Event{Key: KeyRune, Rune: r}
}

// Special creates a token for a named key.
func Special(k Key) Event {
	return Event{Key: k}
}

// Ctrl creates a control-modified character token such as <C-r>.
func Ctrl(r rune) Event {
	return Event{Key: KeyRune, Rune: unicode.ToLower(r), Modifiers: ModCtrl}
}

// Alt creates an alt-modified character token such as <A-j>.
func Alt(r rune) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: ModAlt}
}

// IsRune reports whether e is a character token without Ctrl or Alt.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0 && !e.Modifiers.Has(ModCtrl|ModAlt)
}

// Char returns the text this token inserts when typed, if any.
// Enter and Tab count as characters so that r<CR> and insert-mode
// typing treat them uniformly.
func (e Event) Char() (rune, bool) {
	switch {
	case e.IsRune():
		return e.Rune, true
	case e.Key == KeyEnter && e.Modifiers == ModNone:
		return '\n', true
	case e.Key == KeyTab && e.Modifiers == ModNone:
		return '\t', true
	}
	return 0, false
}

// Digit returns the decimal value of a digit token.
func (e Event) Digit() (int, bool) {
	if e.IsRune() && e.Rune >= '0' && e.Rune <= '9' {
		return int(e.Rune - '0'), true
	}
	return 0, false
}

// IsCancel reports whether e is an Esc-class key: <Esc>, <C-c> or <C-[>.
func (e Event) IsCancel() bool {
	if e.Key == KeyEscape && e.Modifiers == ModNone {
		return true
	}
	return e.Key == KeyRune && e.Modifiers == ModCtrl && (e.Rune == 'c' || e.Rune == '[')
}

// String returns the vim notation for the token.
// Plain characters render as themselves; everything else is bracketed.
func (e Event) String() string {
	if e.Key == KeyRune && e.Modifiers == ModNone {
		switch e.Rune {
		case ' ':
			return "<Space>"
		case '<':
			return "<lt>"
		}
		return string(e.Rune)
	}

	var b strings.Builder
	b.WriteByte('<')
	if e.Modifiers.Has(ModCtrl) {
		b.WriteString("C-")
	}
	if e.Modifiers.Has(ModAlt) {
		b.WriteString("A-")
	}
	if e.Modifiers.Has(ModShift) {
		b.WriteString("S-")
	}
	switch {
	case e.Key != KeyRune:
		b.WriteString(e.Key.String())
	case e.Rune == ' ':
		b.WriteString("Space")
	case e.Rune == '<':
		b.WriteString("lt")
	default:
		b.WriteRune(e.Rune)
	}
	b.WriteByte('>')
	return b.String()
}

// Format renders a token sequence in vim notation.
func Format(events []Event) string {
	var b strings.Builder
	for _, e := range events {
		b.WriteString(e.String())
	}
	return b.String()
}
