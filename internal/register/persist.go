package register

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dshills/modal/internal/input/key"
)

// fileFormat is the on-disk layout written by Save.
type fileFormat struct {
	Version   int                   `yaml:"version"`
	Registers map[string]fileRecord `yaml:"registers"`
}

type fileRecord struct {
	Wise  string   `yaml:"wise,omitempty"`
	Text  []string `yaml:"text,omitempty"`
	Macro []string `yaml:"macro,omitempty"`
}

const fileVersion = 1

// persistent reports whether a register survives between runs. Special
// and clipboard registers are rebuilt each session.
func persistent(name rune) bool {
	return (name >= 'a' && name <= 'z') || (name >= '0' && name <= '9') || name == Unnamed || name == SmallDelete
}

// Save writes the persistent registers as YAML. Macros are stored as one
// vim-notation key string per recorded command.
func (t *Table) Save(w io.Writer) error {
	t.mu.RLock()
	out := fileFormat{Version: fileVersion, Registers: make(map[string]fileRecord)}
	for name, c := range t.regs {
		if !persistent(name) || c.IsEmpty() {
			continue
		}
		rec := fileRecord{}
		if c.IsMacro() {
			for _, cmd := range c.Macro {
				rec.Macro = append(rec.Macro, key.Format(cmd.Keys()))
			}
		} else {
			rec.Wise = c.Wise.String()
			rec.Text = c.Text
		}
		out.Registers[string(name)] = rec
	}
	t.mu.RUnlock()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding registers: %w", err)
	}
	return enc.Close()
}

// Load reads registers written by Save, replacing any with the same name.
// Macros come back as key-only commands.
func (t *Table) Load(r io.Reader) error {
	var in fileFormat
	if err := yaml.NewDecoder(r).Decode(&in); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decoding registers: %w", err)
	}
	if in.Version != fileVersion {
		return fmt.Errorf("decoding registers: unsupported version %d", in.Version)
	}

	names := make([]string, 0, len(in.Registers))
	for name := range in.Registers {
		names = append(names, name)
	}
	sort.Strings(names)

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, name := range names {
		runes := []rune(name)
		if len(runes) != 1 || !persistent(runes[0]) {
			t.log.Warn("skipping unknown register %q in saved state", name)
			continue
		}
		rec := in.Registers[name]
		if len(rec.Macro) > 0 {
			cmds := make([]Recorded, 0, len(rec.Macro))
			for _, s := range rec.Macro {
				events, err := key.ParseSequence(s)
				if err != nil {
					return fmt.Errorf("register %s: %w", name, err)
				}
				cmds = append(cmds, KeyCommand(events))
			}
			t.regs[runes[0]] = MacroContent(cmds)
			continue
		}
		t.regs[runes[0]] = Content{Text: rec.Text, Wise: ParseWise(rec.Wise)}
	}
	return nil
}
