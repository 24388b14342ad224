package actions

import (
	"errors"
	"regexp"
	"testing"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/catalog"
)

func TestWordMotions(t *testing.T) {
	tests := []struct {
		name string
		text string
		fn   func(buffer.TextBuffer, buffer.Position, bool) (buffer.Position, bool)
		from buffer.Position
		big  bool
		want buffer.Position
		ok   bool
	}{
		{"forward to next word", "foo bar", wordForward, buffer.Pos(0, 0), false, buffer.Pos(0, 4), true},
		{"forward stops at punctuation", "foo.bar", wordForward, buffer.Pos(0, 0), false, buffer.Pos(0, 3), true},
		{"forward big skips punctuation", "foo.bar baz", wordForward, buffer.Pos(0, 0), true, buffer.Pos(0, 8), true},
		{"forward stops on empty line", "foo\n\nbar", wordForward, buffer.Pos(0, 0), false, buffer.Pos(1, 0), true},
		{"forward from last word", "foo bar", wordForward, buffer.Pos(0, 4), false, buffer.Pos(0, 7), true},
		{"backward to word start", "foo bar", wordBackward, buffer.Pos(0, 6), false, buffer.Pos(0, 4), true},
		{"backward to previous word", "foo bar", wordBackward, buffer.Pos(0, 4), false, buffer.Pos(0, 0), true},
		{"backward at document start", "foo", wordBackward, buffer.Pos(0, 0), false, buffer.Pos(0, 0), false},
		{"end of word", "foo bar", wordEnd, buffer.Pos(0, 0), false, buffer.Pos(0, 2), true},
		{"end of next word", "foo bar", wordEnd, buffer.Pos(0, 2), false, buffer.Pos(0, 6), true},
		{"end at document end", "foo", wordEnd, buffer.Pos(0, 2), false, buffer.Pos(0, 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(buffer.New(tt.text), tt.from, tt.big)
			if ok != tt.ok {
				t.Fatalf("expected ok %v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRunAt(t *testing.T) {
	tests := []struct {
		line       string
		col        int
		start, end int
	}{
		{"foo bar", 1, 0, 3},
		{"foo  bar", 3, 3, 5},
		{"a.b", 1, 1, 2},
		{"héllo x", 1, 0, 6},
		{"abc", 3, 3, 3},
	}

	for _, tt := range tests {
		start, end := runAt(tt.line, tt.col, false)
		if start != tt.start || end != tt.end {
			t.Errorf("runAt(%q, %d): expected [%d,%d), got [%d,%d)", tt.line, tt.col, tt.start, tt.end, start, end)
		}
	}
}

func TestSelectWord(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		col    int
		around bool
		start  int
		last   int
	}{
		{"inner word", "foo bar baz", 5, false, 4, 6},
		{"inner blanks", "foo   bar", 4, false, 3, 5},
		{"around takes trailing blanks", "foo bar baz", 4, true, 4, 7},
		{"around takes leading blanks at line end", "foo bar", 5, true, 3, 6},
		{"around blanks takes next word", "foo bar", 3, true, 3, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := selectWord(tt.line, buffer.Pos(0, tt.col), false, tt.around)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			start, ok := m.Start.Get()
			if !ok {
				t.Fatal("expected a start position")
			}
			if start.Column != tt.start {
				t.Errorf("expected start %d, got %d", tt.start, start.Column)
			}
			if m.Pos.Column != tt.last {
				t.Errorf("expected last %d, got %d", tt.last, m.Pos.Column)
			}
			if !m.Inclusive {
				t.Error("expected an inclusive motion")
			}
		})
	}

	if _, err := selectWord("", buffer.Pos(0, 0), false, false); !errors.Is(err, execctx.ErrNoMotion) {
		t.Errorf("expected ErrNoMotion on an empty line, got %v", err)
	}
}

func TestOutdentWidth(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"      x", 4},
		{"  x", 2},
		{"\t\tx", 1},
		{"x", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := outdentWidth(tt.line, 4); got != tt.want {
			t.Errorf("outdentWidth(%q): expected %d, got %d", tt.line, tt.want, got)
		}
	}
}

func TestFindMatch(t *testing.T) {
	tb := buffer.New("foo\nbar foo\nfoo")
	re := regexp.MustCompile("foo")

	tests := []struct {
		name    string
		from    buffer.Position
		forward bool
		wrap    bool
		want    buffer.Position
		ok      bool
	}{
		{"forward skips match under cursor", buffer.Pos(0, 0), true, true, buffer.Pos(1, 4), true},
		{"forward wraps", buffer.Pos(2, 0), true, true, buffer.Pos(0, 0), true},
		{"forward without wrap", buffer.Pos(2, 0), true, false, buffer.Position{}, false},
		{"backward", buffer.Pos(1, 4), false, true, buffer.Pos(0, 0), true},
		{"backward wraps", buffer.Pos(0, 0), false, true, buffer.Pos(2, 0), true},
		{"backward without wrap", buffer.Pos(0, 0), false, false, buffer.Position{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := findMatch(tb, re, tt.from, tt.forward, tt.wrap)
			if ok != tt.ok {
				t.Fatalf("expected ok %v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	single := buffer.New("only foo here")
	if got, ok := findMatch(single, re, buffer.Pos(0, 5), true, true); !ok || got != buffer.Pos(0, 5) {
		t.Errorf("expected a wrapped search to find the match under the cursor, got %v %v", got, ok)
	}
}

func TestCompilePattern(t *testing.T) {
	if !compilePattern("a.c").MatchString("abc") {
		t.Error("expected a valid pattern to be used as a regular expression")
	}
	re := compilePattern("f(o")
	if !re.MatchString("xf(oy") {
		t.Error("expected an invalid pattern to match literally")
	}
}

func TestTextHelpers(t *testing.T) {
	if got := toggleCase("Hello, Wörld"); got != "hELLO, wÖRLD" {
		t.Errorf("expected %q, got %q", "hELLO, wÖRLD", got)
	}
	if got := firstNonBlank(" \tfoo"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := firstNonBlank("   "); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := graphemesRight("aéb", 0, 2); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := graphemesRight("ab", 1, 5); got != 2 {
		t.Errorf("expected the line end, got %d", got)
	}
	if got := graphemesLeft("aéb", 3, 1); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := lastRuneLen("aé"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestRegister(t *testing.T) {
	r := catalog.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if r.Len() != len(Builtins()) {
		t.Errorf("expected %d actions, got %d", len(Builtins()), r.Len())
	}

	for _, name := range []string{ActionDelete, ActionWordForward, ActionInsertChar, ActionPlayMacro, ActionSearchForward} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("expected %s to be registered", name)
		}
	}

	if err := Register(r); err == nil {
		t.Error("expected registering the built-ins twice to fail")
	}
}
