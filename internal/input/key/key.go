// Package key defines the key tokens consumed by the modal engine.
//
// A token is either a character (KeyRune with a Rune) or a named special
// key. Tokens render to and parse from vim notation: "a", "<Esc>", "<C-r>",
// "<A-j>", "<BS>".
package key

import "fmt"

// Key identifies a keyboard key.
// Character keys use KeyRune and carry the character in Event.Rune.
type Key uint8

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// keyNames maps special keys to their vim notation names.
var keyNames = map[Key]string{
	KeyEscape:    "Esc",
	KeyEnter:     "CR",
	KeyTab:       "Tab",
	KeyBackspace: "BS",
	KeyDelete:    "Del",
	KeyInsert:    "Insert",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
}

// namedKeys is the reverse lookup used by Parse. Aliases are accepted.
var namedKeys = map[string]Key{
	"esc":      KeyEscape,
	"escape":   KeyEscape,
	"cr":       KeyEnter,
	"enter":    KeyEnter,
	"return":   KeyEnter,
	"tab":      KeyTab,
	"bs":       KeyBackspace,
	"del":      KeyDelete,
	"delete":   KeyDelete,
	"insert":   KeyInsert,
	"home":     KeyHome,
	"end":      KeyEnd,
	"pageup":   KeyPageUp,
	"pagedown": KeyPageDown,
	"up":       KeyUp,
	"down":     KeyDown,
	"left":     KeyLeft,
	"right":    KeyRight,
}

// String returns the vim notation name of the key.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "None"
	case KeyRune:
		return "Rune"
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", k)
}

// Modifier is a bit set of modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	ModShift Modifier = 1 << (iota - 1)
	ModCtrl
	ModAlt
)

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}
