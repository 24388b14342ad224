package register

import (
	"sync"
	"unicode"

	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/logging"
)

// Special register names.
const (
	Unnamed     = '"'
	SmallDelete = '-'
	BlackHole   = '_'
	LastYank    = '0'
	LastInsert  = '.'
	LastSearch  = '/'
	Alternate   = '#'
	Clipboard   = '+'
	Selection   = '*'
)

// IsValid reports whether name belongs to the register alphabet.
func IsValid(name rune) bool {
	switch {
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z', name >= '0' && name <= '9':
		return true
	}
	switch name {
	case Unnamed, SmallDelete, BlackHole, LastInsert, LastSearch, Alternate, Clipboard, Selection:
		return true
	}
	return false
}

// IsReadOnly reports whether name can only be set by the engine itself.
func IsReadOnly(name rune) bool {
	return name == LastInsert || name == LastSearch || name == Alternate
}

// IsMacroTarget reports whether name can hold a recording.
func IsMacroTarget(name rune) bool {
	return IsValid(name) && !IsReadOnly(name) && name != BlackHole
}

// CheckWritable returns an InvalidRegister error unless text can be
// stored in name. Zero stands for the default register.
func CheckWritable(name rune) error {
	if name == 0 {
		return nil
	}
	if !IsValid(name) || IsReadOnly(name) {
		return editerr.InvalidRegister(name)
	}
	return nil
}

// Table is the process-wide register table. All writes go through Put,
// Yank, Delete, or SetSpecial. It is safe for concurrent use.
type Table struct {
	mu        sync.RWMutex
	regs      map[rune]Content
	clipboard ClipboardProvider
	log       *logging.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithClipboard backs the "+" and "*" registers with p.
func WithClipboard(p ClipboardProvider) Option {
	return func(t *Table) {
		t.clipboard = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(t *Table) {
		t.log = l
	}
}

// NewTable creates an empty register table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		regs: make(map[rune]Content),
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.WithComponent("register")
	return t
}

// Get returns the content of a register. Uppercase names read the
// lowercase register. The second result is false for empty registers.
func (t *Table) Get(name rune) (Content, bool) {
	name = unicode.ToLower(name)

	if (name == Clipboard || name == Selection) && t.clipboard != nil {
		text, err := t.clipboard.Get()
		if err == nil {
			return TextContent(text, wiseOf(text)), text != ""
		}
		t.log.Warn("clipboard read failed: %v", err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.regs[name]
	if !ok || c.IsEmpty() {
		return Content{}, false
	}
	return c, true
}

// Put writes a register the way an explicit "x prefix does. Uppercase
// letters append to the lowercase register; lowercase overwrites. The
// unnamed register is made to point at the same content. Writing the
// black hole register is a no-op.
func (t *Table) Put(name rune, c Content) error {
	if err := CheckWritable(name); err != nil {
		return err
	}
	if name == BlackHole {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if unicode.IsUpper(name) {
		name = unicode.ToLower(name)
		c = appendContent(t.regs[name], c)
	}
	t.regs[name] = c
	if name != Unnamed && !c.IsMacro() {
		t.regs[Unnamed] = c
	}
	t.syncClipboard(name, c)
	return nil
}

// Yank records yanked text. Without an explicit register it goes to "0
// and the unnamed register.
func (t *Table) Yank(name rune, c Content) error {
	if name != 0 && name != Unnamed {
		return t.Put(name, c)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.regs[LastYank] = c
	t.regs[Unnamed] = c
	return nil
}

// Delete records deleted text. Without an explicit register, line-wise or
// multi-line deletes rotate "1 through "9 and small deletes go to "-.
// Either way the unnamed register receives the text.
func (t *Table) Delete(name rune, c Content) error {
	if name == BlackHole {
		return nil
	}
	if name != 0 && name != Unnamed {
		return t.Put(name, c)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if c.Wise == CharWise && !containsNewline(c) {
		t.regs[SmallDelete] = c
	} else {
		for i := '9'; i > '1'; i-- {
			if prev, ok := t.regs[i-1]; ok {
				t.regs[i] = prev
			}
		}
		t.regs['1'] = c
	}
	t.regs[Unnamed] = c
	return nil
}

// SetSpecial sets a read-only register. Only the engine calls this.
func (t *Table) SetSpecial(name rune, text string) {
	if !IsReadOnly(name) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.regs[name] = TextContent(text, CharWise)
}

// Names returns the names of all non-empty registers.
func (t *Table) Names() []rune {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]rune, 0, len(t.regs))
	for name, c := range t.regs {
		if !c.IsEmpty() {
			names = append(names, name)
		}
	}
	return names
}

// syncClipboard pushes writes of "+ and "* to the provider. Caller holds mu.
func (t *Table) syncClipboard(name rune, c Content) {
	if t.clipboard == nil || (name != Clipboard && name != Selection) {
		return
	}
	if err := t.clipboard.Set(c.String()); err != nil {
		t.log.Warn("clipboard write failed: %v", err)
	}
}

func containsNewline(c Content) bool {
	for _, s := range c.Text {
		for i := 0; i < len(s); i++ {
			if s[i] == '\n' {
				return true
			}
		}
	}
	return false
}

// wiseOf guesses the wise-mode of clipboard text: a trailing newline
// means whole lines.
func wiseOf(text string) Wise {
	if len(text) > 0 && text[len(text)-1] == '\n' {
		return LineWise
	}
	return CharWise
}
