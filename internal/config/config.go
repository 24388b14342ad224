// Package config holds the immutable settings an editing session runs
// with, loaded from TOML.
//
// A Config is a plain value. Sessions receive a copy at construction and
// never consult ambient state; a reloaded file produces a new value.
package config

import (
	"fmt"

	"github.com/dshills/modal/internal/input/mode"
)

// Config is the complete engine configuration.
type Config struct {
	Editing   EditingConfig   `toml:"editing"`
	Macro     MacroConfig     `toml:"macro"`
	Registers RegistersConfig `toml:"registers"`
	Log       LogConfig       `toml:"log"`
	Plugins   PluginsConfig   `toml:"plugins"`
	Keymap    []BindingConfig `toml:"keymap"`
}

// EditingConfig controls text-editing behavior.
type EditingConfig struct {
	// JoinSpaces inserts two spaces after '.', '?' and '!' when joining lines.
	JoinSpaces bool `toml:"join_spaces"`

	// ShiftWidth is the indent width used by > and <.
	ShiftWidth int `toml:"shift_width"`

	// WrapScan lets searches wrap around the end of the document.
	WrapScan bool `toml:"wrap_scan"`

	// StartMode is the mode new sessions start in.
	StartMode string `toml:"start_mode"`
}

// MacroConfig controls macro replay.
type MacroConfig struct {
	// MaxDepth bounds nested macro invocation.
	MaxDepth int `toml:"max_depth"`
}

// RegistersConfig controls registers.
type RegistersConfig struct {
	// UseSystemClipboard backs "+" and "*" with the OS clipboard.
	UseSystemClipboard bool `toml:"use_system_clipboard"`

	// File is where the shell persists registers between runs. Empty
	// disables persistence.
	File string `toml:"file"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// PluginsConfig lists Lua scripts loaded at startup.
type PluginsConfig struct {
	Scripts []string `toml:"scripts"`
}

// BindingConfig binds extra keys to a catalog action.
type BindingConfig struct {
	// Keys is the key pattern in vim notation, such as "<C-h>" or "Y".
	Keys string `toml:"keys"`

	// Action is the name of the action the keys trigger.
	Action string `toml:"action"`

	// Modes restricts the binding. Empty means the action's own modes.
	Modes []string `toml:"modes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editing: EditingConfig{
			JoinSpaces: false,
			ShiftWidth: 4,
			WrapScan:   true,
			StartMode:  "normal",
		},
		Macro: MacroConfig{
			MaxDepth: 100,
		},
		Registers: RegistersConfig{
			UseSystemClipboard: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Editing.ShiftWidth < 1 || c.Editing.ShiftWidth > 16 {
		return fmt.Errorf("%w: editing.shift_width must be 1..16, got %d", ErrInvalidValue, c.Editing.ShiftWidth)
	}
	if c.Macro.MaxDepth < 1 {
		return fmt.Errorf("%w: macro.max_depth must be positive, got %d", ErrInvalidValue, c.Macro.MaxDepth)
	}
	if _, err := c.InitialMode(); err != nil {
		return err
	}
	for i, b := range c.Keymap {
		if b.Keys == "" || b.Action == "" {
			return fmt.Errorf("%w: keymap[%d] needs keys and action", ErrInvalidValue, i)
		}
	}
	return nil
}

// InitialMode returns the parsed start mode. Only Normal and Insert are
// accepted.
func (c Config) InitialMode() (mode.Mode, error) {
	m, err := mode.Parse(c.Editing.StartMode)
	if err != nil || (m != mode.Normal && m != mode.Insert) {
		return mode.Invalid, fmt.Errorf("%w: editing.start_mode %q", ErrInvalidValue, c.Editing.StartMode)
	}
	return m, nil
}
