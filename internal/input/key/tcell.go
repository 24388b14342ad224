package key

import "github.com/gdamore/tcell/v2"

var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
}

// FromTcell converts a terminal key event into a token.
// The second result is false for keys the engine has no token for.
func FromTcell(ev *tcell.EventKey) (Event, bool) {
	var mods Modifier
	if ev.Modifiers()&tcell.ModAlt != 0 {
		mods |= ModAlt
	}

	if ev.Key() == tcell.KeyRune {
		return Event{Key: KeyRune, Rune: ev.Rune(), Modifiers: mods}, true
	}
	if k, ok := tcellKeys[ev.Key()]; ok {
		return Event{Key: k, Modifiers: mods}, true
	}
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		tok := Ctrl(rune('a' + ev.Key() - tcell.KeyCtrlA))
		tok.Modifiers |= mods
		return tok, true
	}
	return Event{}, false
}
