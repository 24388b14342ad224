package main

import (
	"path/filepath"
	"testing"

	"github.com/dshills/modal/internal/register"
)

func TestRegistersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registers.yaml")

	saved := register.NewTable()
	saved.Put('a', register.Content{Text: []string{"hello"}})
	if err := saveRegisters(saved, path); err != nil {
		t.Fatalf("saveRegisters failed: %v", err)
	}

	loaded := register.NewTable()
	if err := loadRegisters(loaded, path); err != nil {
		t.Fatalf("loadRegisters failed: %v", err)
	}
	c, ok := loaded.Get('a')
	if !ok || c.String() != "hello" {
		t.Errorf("expected register a to hold %q, got %q", "hello", c.String())
	}
}

func TestLoadRegisters_MissingFile(t *testing.T) {
	if err := loadRegisters(register.NewTable(), filepath.Join(t.TempDir(), "none.yaml")); err != nil {
		t.Errorf("expected a missing file to be ignored, got %v", err)
	}
}

func TestReadFile_Missing(t *testing.T) {
	text, err := readFile(filepath.Join(t.TempDir(), "new.txt"))
	if err != nil || text != "" {
		t.Errorf("expected an empty buffer for a new file, got %q, %v", text, err)
	}
}
