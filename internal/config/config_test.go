package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/modal/internal/input/mode"
)

func TestParse(t *testing.T) {
	data := []byte(`
[editing]
join_spaces = true
shift_width = 2
start_mode = "insert"

[macro]
max_depth = 10

[plugins]
scripts = ["a.lua", "b.lua"]

[[keymap]]
keys = "<C-h>"
action = "cursor.left"
modes = ["normal", "visual"]
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Editing.JoinSpaces || cfg.Editing.ShiftWidth != 2 {
		t.Errorf("editing section not applied: %+v", cfg.Editing)
	}
	if !cfg.Editing.WrapScan {
		t.Error("unset fields should keep defaults")
	}
	if cfg.Macro.MaxDepth != 10 {
		t.Errorf("expected max_depth 10, got %d", cfg.Macro.MaxDepth)
	}
	if len(cfg.Plugins.Scripts) != 2 {
		t.Errorf("expected 2 scripts, got %v", cfg.Plugins.Scripts)
	}
	if len(cfg.Keymap) != 1 || cfg.Keymap[0].Action != "cursor.left" || len(cfg.Keymap[0].Modes) != 2 {
		t.Errorf("keymap not applied: %+v", cfg.Keymap)
	}
	if m, _ := cfg.InitialMode(); m != mode.Insert {
		t.Errorf("expected insert start mode, got %s", m)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"unknown field", "[editing]\nsneak = true\n", nil},
		{"syntax", "[editing\n", nil},
		{"shift width", "[editing]\nshift_width = 0\n", ErrInvalidValue},
		{"start mode", "[editing]\nstart_mode = \"visual\"\n", ErrInvalidValue},
		{"macro depth", "[macro]\nmax_depth = 0\n", ErrInvalidValue},
		{"keymap without action", "[[keymap]]\nkeys = \"Y\"\n", ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			var perr *ParseError
			if tt.wantErr == nil && !errors.As(err, &perr) {
				t.Errorf("expected *ParseError, got %T", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Macro.MaxDepth != Default().Macro.MaxDepth {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestWatch_Reloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modal.toml")
	if err := os.WriteFile(path, []byte("[editing]\nshift_width = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 4)
	w, err := Watch(ctx, path, func(c Config) { got <- c }, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[editing]\nshift_width = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-got:
		if cfg.Editing.ShiftWidth != 8 {
			t.Errorf("expected shift_width 8, got %d", cfg.Editing.ShiftWidth)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
