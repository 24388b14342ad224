package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parser errors.
var (
	ErrEmpty        = errors.New("key: empty key notation")
	ErrUnknownKey   = errors.New("key: unknown key name")
)

// Parse parses exactly one token in vim notation.
func Parse(s string) (Event, error) {
	events, err := ParseSequence(s)
	if err != nil {
		return Event{}, err
	}
	if len(events) != 1 {
		return Event{}, fmt.Errorf("key: %q is %d tokens, want 1", s, len(events))
	}
	return events[0], nil
}

// ParseSequence parses a string of vim notation into tokens.
// "d3w" gives three tokens; "<C-r>a<Esc>" gives three.
// A '<' that does not start a valid bracket form is taken literally.
func ParseSequence(s string) ([]Event, error) {
	if s == "" {
		return nil, ErrEmpty
	}

	var events []Event
	for len(s) > 0 {
		if s[0] == '<' {
			end := strings.IndexByte(s, '>')
			if end > 1 {
				ev, err := parseBracket(s[1:end])
				if err == nil {
					events = append(events, ev)
					s = s[end+1:]
					continue
				}
				if !errors.Is(err, ErrUnknownKey) {
					return nil, err
				}
			}
		}
		r, size := utf8.DecodeRuneInString(s)
		events = append(events, Rune(r))
		s = s[size:]
	}
	return events, nil
}

// MustParseSequence is like ParseSequence but panics on error.
// It is intended for static tables.
func MustParseSequence(s string) []Event {
	events, err := ParseSequence(s)
	if err != nil {
		panic(err)
	}
	return events
}

// parseBracket parses the inside of a <...> form.
func parseBracket(body string) (Event, error) {
	var mods Modifier
	for len(body) > 2 && body[1] == '-' {
		switch body[0] {
		case 'C', 'c':
			mods |= ModCtrl
		case 'A', 'a', 'M', 'm':
			mods |= ModAlt
		case 'S', 's':
			mods |= ModShift
		default:
			return Event{}, fmt.Errorf("%w: modifier %q", ErrUnknownKey, body[:1])
		}
		body = body[2:]
	}

	lower := strings.ToLower(body)
	switch lower {
	case "space":
		return Event{Key: KeyRune, Rune: ' ', Modifiers: mods}, nil
	case "lt":
		return Event{Key: KeyRune, Rune: '<', Modifiers: mods}, nil
	}
	if k, ok := namedKeys[lower]; ok {
		return Event{Key: k, Modifiers: mods}, nil
	}

	r, size := utf8.DecodeRuneInString(body)
	if size != len(body) || mods == ModNone {
		return Event{}, fmt.Errorf("%w: <%s>", ErrUnknownKey, body)
	}
	if mods.Has(ModCtrl) {
		ev := Ctrl(r)
		ev.Modifiers = mods &^ ModShift
		return ev, nil
	}
	if mods.Has(ModShift) {
		mods &^= ModShift
		r = unicode.ToUpper(r)
		if mods == ModNone {
			return Rune(r), nil
		}
	}
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}, nil
}
