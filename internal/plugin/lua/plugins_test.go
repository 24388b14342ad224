package lua

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/modal/internal/config"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/session"
)

func newPlugins(t *testing.T, text string) (*Plugins, *session.Session, *buffer.Buffer) {
	t.Helper()
	buf := buffer.New(text)
	s, err := session.New(config.Default(), buf, nil, nil, nil, session.DefaultOptions())
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	p := New(s, nil)
	t.Cleanup(func() { p.Close() })
	return p, s, buf
}

func feed(t *testing.T, s *session.Session, keys string) error {
	t.Helper()
	return s.HandleKeys(context.Background(), key.MustParseSequence(keys))
}

const upperLine = `
modal.action{
	name = "plugin.upperLine",
	keys = {"zU"},
	modes = {"normal"},
	repeatable = true,
	fn = function(ctx)
		local l = ctx:pos()
		local text = ctx:line(l)
		ctx:replace(l, 0, l, #text, string.upper(text))
	end,
}
`

func TestPlugins_Command(t *testing.T) {
	p, s, buf := newPlugins(t, "abc\ndef")
	if err := p.Run(upperLine); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if err := feed(t, s, "zU"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "ABC\ndef" {
		t.Errorf("expected %q, got %q", "ABC\ndef", got)
	}

	feed(t, s, "j.")
	if got := buf.String(); got != "ABC\nDEF" {
		t.Errorf("expected dot to repeat the plugin action, got %q", got)
	}

	if got := p.Actions(); len(got) != 1 || got[0] != "plugin.upperLine" {
		t.Errorf("expected [plugin.upperLine], got %v", got)
	}
}

func TestPlugins_Motion(t *testing.T) {
	p, s, buf := newPlugins(t, "a\nb\nc")
	err := p.Run(`
modal.action{
	name = "plugin.lastLine", kind = "motion", keys = "gL", linewise = true,
	modes = {"normal", "operator-pending"},
	fn = function(ctx) return ctx:line_count() - 1, 0 end,
}
`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	feed(t, s, "gL")
	if got := s.Cursors()[0].Active; got != buffer.Pos(2, 0) {
		t.Errorf("expected cursor (2,0), got %v", got)
	}

	feed(t, s, "ggjdgL")
	if got := buf.String(); got != "a" {
		t.Errorf("expected %q, got %q", "a", got)
	}
}

func TestPlugins_Insert(t *testing.T) {
	p, s, buf := newPlugins(t, "world")
	err := p.Run(`
modal.action{
	name = "plugin.greet", keys = "zh",
	fn = function(ctx) ctx:insert("hello " .. ctx:count()) end,
}
`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	feed(t, s, "3zh")
	if got := buf.String(); got != "hello 3world" {
		t.Errorf("expected %q, got %q", "hello 3world", got)
	}
}

func TestPlugins_OnAction(t *testing.T) {
	p, s, _ := newPlugins(t, "abc")
	err := p.Run(`
seen = {}
modal.on_action("editor.deleteChar", function(name, outcome)
	seen[#seen + 1] = name .. ":" .. outcome
end)
`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	feed(t, s, "lxx")
	if err := p.Run(`assert(#seen == 2, #seen); assert(seen[1] == "editor.deleteChar:completed", seen[1])`); err != nil {
		t.Errorf("unexpected hook calls: %v", err)
	}
}

func TestPlugins_PluginMode(t *testing.T) {
	p, s, buf := newPlugins(t, "abc")
	err := p.Run(`
local pick = modal.mode("pick")
modal.action{
	name = "plugin.pick", keys = "zp", once = true,
	fn = function(ctx) ctx:set_mode(pick) end,
}
modal.action{
	name = "plugin.picked", keys = "<character>", modes = {pick}, once = true,
	fn = function(ctx)
		ctx:status("picked " .. ctx:char())
		ctx:set_mode("normal")
	end,
}
`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	feed(t, s, "zp")
	if !s.Mode().IsPlugin() {
		t.Fatalf("expected a plugin mode, got %s", s.Mode())
	}
	feed(t, s, "x")
	if s.Mode() != mode.Normal {
		t.Errorf("expected normal mode, got %s", s.Mode())
	}
	if got := buf.String(); got != "abc" {
		t.Errorf("expected the text to be unchanged, got %q", got)
	}
}

func TestPlugins_Errors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"missing name", `modal.action{keys = "zz", fn = function() end}`, "name is required"},
		{"missing fn", `modal.action{name = "a", keys = "zz"}`, "fn is required"},
		{"bad keys", `modal.action{name = "a", keys = 3, fn = function() end}`, "keys"},
		{"unknown mode", `modal.action{name = "a", keys = "zz", modes = {"nope"}, fn = function() end}`, "unknown mode"},
		{"unknown kind", `modal.action{name = "a", keys = "zz", kind = "operator", fn = function() end}`, "unknown kind"},
		{"duplicate name", `modal.action{name = "editor.deleteChar", keys = "zz", fn = function() end}`, "editor.deleteChar"},
		{"builtin mode redeclared", `modal.mode("insert")`, "built-in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newPlugins(t, "")
			err := p.Run(tt.code)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestPlugins_ActionError(t *testing.T) {
	p, s, buf := newPlugins(t, "abc")
	err := p.Run(`modal.action{name = "plugin.fail", keys = "zf", fn = function() error("boom") end}`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	err = feed(t, s, "zf")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected the script error, got %v", err)
	}

	feed(t, s, "x")
	if got := buf.String(); got != "bc" {
		t.Errorf("expected editing to continue, got %q", got)
	}
}

func TestPlugins_LoadAll(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.lua")
	if err := os.WriteFile(good, []byte(upperLine), 0o644); err != nil {
		t.Fatal(err)
	}

	p, s, buf := newPlugins(t, "abc")
	err := p.LoadAll([]string{filepath.Join(dir, "missing.lua"), good})
	if err == nil || !strings.Contains(err.Error(), "missing.lua") {
		t.Errorf("expected an error naming the missing script, got %v", err)
	}

	feed(t, s, "zU")
	if got := buf.String(); got != "ABC" {
		t.Errorf("expected the good script to load, got %q", got)
	}
}
