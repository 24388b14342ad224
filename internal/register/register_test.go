package register

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dshills/modal/internal/editerr"
	"github.com/dshills/modal/internal/input/key"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) Get() (string, error) { return f.text, f.err }
func (f *fakeClipboard) Set(s string) error   { f.text = s; return f.err }

func TestIsValid(t *testing.T) {
	for _, r := range "azAZ09\"-_./#+*" {
		if !IsValid(r) {
			t.Errorf("expected %q to be valid", r)
		}
	}
	for _, r := range "!@$ \x00" {
		if IsValid(r) {
			t.Errorf("expected %q to be invalid", r)
		}
	}
}

func TestTable_PutOverwriteAndAppend(t *testing.T) {
	tbl := NewTable()

	_ = tbl.Put('a', TextContent("foo", CharWise))
	_ = tbl.Put('A', TextContent("bar", CharWise))
	if c, _ := tbl.Get('a'); c.String() != "foobar" {
		t.Errorf("expected appended text %q, got %q", "foobar", c.String())
	}

	_ = tbl.Put('a', TextContent("baz", CharWise))
	if c, _ := tbl.Get('a'); c.String() != "baz" {
		t.Errorf("expected overwrite %q, got %q", "baz", c.String())
	}
	if c, _ := tbl.Get(Unnamed); c.String() != "baz" {
		t.Errorf("expected unnamed to follow last write, got %q", c.String())
	}
}

func TestTable_AppendMacroToText(t *testing.T) {
	tbl := NewTable()
	_ = tbl.Put('a', TextContent("foo", CharWise))

	bar := KeyCommand(key.MustParseSequence("bar"))
	_ = tbl.Put('A', MacroContent([]Recorded{bar}))

	c, ok := tbl.Get('a')
	if !ok || !c.IsMacro() {
		t.Fatalf("expected macro content, got %+v", c)
	}
	if c.String() != "foobar" {
		t.Errorf("expected %q, got %q", "foobar", c.String())
	}
	if len(c.Commands()) != 2 {
		t.Errorf("expected 2 commands, got %d", len(c.Commands()))
	}
}

func TestTable_AppendLinewise(t *testing.T) {
	tbl := NewTable()
	_ = tbl.Put('q', TextContent("one", LineWise))
	_ = tbl.Put('Q', TextContent("two", CharWise))

	c, _ := tbl.Get('q')
	if c.String() != "one\ntwo" || c.Wise != LineWise {
		t.Errorf("unexpected content %q (%s)", c.String(), c.Wise)
	}
}

func TestTable_PutErrors(t *testing.T) {
	tbl := NewTable()
	for _, name := range []rune{'!', LastInsert, LastSearch} {
		err := tbl.Put(name, TextContent("x", CharWise))
		if !editerr.IsUserError(err) {
			t.Errorf("Put(%q): expected UserError, got %v", name, err)
		}
	}
	if err := tbl.Put(BlackHole, TextContent("x", CharWise)); err != nil {
		t.Errorf("black hole write should succeed, got %v", err)
	}
	if _, ok := tbl.Get(BlackHole); ok {
		t.Error("black hole register should stay empty")
	}
}

func TestTable_DeleteRotation(t *testing.T) {
	tbl := NewTable()

	_ = tbl.Delete(0, TextContent("line1", LineWise))
	_ = tbl.Delete(0, TextContent("line2", LineWise))
	_ = tbl.Delete(0, TextContent("w", CharWise))

	if c, _ := tbl.Get('1'); c.String() != "line2" {
		t.Errorf("expected \"1 = line2, got %q", c.String())
	}
	if c, _ := tbl.Get('2'); c.String() != "line1" {
		t.Errorf("expected \"2 = line1, got %q", c.String())
	}
	if c, _ := tbl.Get(SmallDelete); c.String() != "w" {
		t.Errorf("expected \"- = w, got %q", c.String())
	}
	if c, _ := tbl.Get(Unnamed); c.String() != "w" {
		t.Errorf("expected unnamed = w, got %q", c.String())
	}
}

func TestTable_Yank(t *testing.T) {
	tbl := NewTable()
	_ = tbl.Yank(0, TextContent("y", CharWise))
	if c, _ := tbl.Get(LastYank); c.String() != "y" {
		t.Errorf("expected \"0 = y, got %q", c.String())
	}
	_ = tbl.Yank('b', TextContent("z", CharWise))
	if c, _ := tbl.Get('b'); c.String() != "z" {
		t.Errorf("expected \"b = z, got %q", c.String())
	}
	if c, _ := tbl.Get(LastYank); c.String() != "y" {
		t.Errorf("explicit register must not touch \"0, got %q", c.String())
	}
}

func TestTable_Clipboard(t *testing.T) {
	cb := &fakeClipboard{}
	tbl := NewTable(WithClipboard(cb))

	_ = tbl.Put(Clipboard, TextContent("copied", CharWise))
	if cb.text != "copied" {
		t.Errorf("expected clipboard write, got %q", cb.text)
	}

	cb.text = "from os\n"
	c, ok := tbl.Get(Selection)
	if !ok || c.String() != "from os\n" || c.Wise != LineWise {
		t.Errorf("unexpected clipboard read %+v", c)
	}

	cb.err = errors.New("no display")
	c, _ = tbl.Get(Clipboard)
	if c.String() != "copied" {
		t.Errorf("expected fallback to stored content, got %q", c.String())
	}
}

func TestContent_For(t *testing.T) {
	c := Content{Text: []string{"a", "b"}}
	if c.For(1, 2) != "b" {
		t.Errorf("expected per-cursor slice, got %q", c.For(1, 2))
	}
	if c.For(0, 3) != "a\nb" {
		t.Errorf("expected joined text for mismatched count, got %q", c.For(0, 3))
	}
}

func TestTable_SaveLoad(t *testing.T) {
	src := NewTable()
	_ = src.Put('a', Content{Text: []string{"x", "y"}, Wise: LineWise})
	_ = src.Put('q', MacroContent([]Recorded{
		KeyCommand(key.MustParseSequence("dd")),
		KeyCommand(key.MustParseSequence("ihi<Esc>")),
	}))
	src.SetSpecial(LastInsert, "not saved")

	var buf bytes.Buffer
	if err := src.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := NewTable()
	if err := dst.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}

	a, _ := dst.Get('a')
	if a.For(1, 2) != "y" || a.Wise != LineWise {
		t.Errorf("unexpected register a: %+v", a)
	}
	q, _ := dst.Get('q')
	if !q.IsMacro() || q.String() != "ddihi<Esc>" || len(q.Macro) != 2 {
		t.Errorf("unexpected register q: %q", q.String())
	}
	if _, ok := dst.Get(LastInsert); ok {
		t.Error("read-only registers should not be persisted")
	}
}
