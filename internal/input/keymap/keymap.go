package keymap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/modal/internal/config"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
)

// ErrUnknownAction is returned for a binding to an action that is not in
// the catalog.
var ErrUnknownAction = errors.New("keymap: unknown action")

// Binding maps a key pattern to an action.
type Binding struct {
	// Keys is the key pattern in vim notation.
	Keys string

	// Action names the catalog action to run.
	Action string

	// Modes restricts the binding. Empty keeps the action's own modes.
	Modes []string
}

// Name is the catalog name the binding registers under.
func (b Binding) Name() string {
	if len(b.Modes) == 0 {
		return fmt.Sprintf("keymap:%s:%s", b.Keys, b.Action)
	}
	return fmt.Sprintf("keymap:%s:%s:%s", b.Keys, b.Action, strings.Join(b.Modes, ","))
}

// Keymap is an ordered list of bindings.
type Keymap struct {
	Bindings []Binding
}

// NewKeymap creates an empty keymap.
func NewKeymap() *Keymap {
	return &Keymap{}
}

// FromConfig builds a keymap from configured bindings.
func FromConfig(bindings []config.BindingConfig) *Keymap {
	k := NewKeymap()
	for _, b := range bindings {
		k.Add(b.Keys, b.Action, b.Modes...)
	}
	return k
}

// Add appends a binding and returns k for chaining.
func (k *Keymap) Add(keys, action string, modes ...string) *Keymap {
	k.Bindings = append(k.Bindings, Binding{Keys: keys, Action: action, Modes: modes})
	return k
}

// Len returns the number of bindings.
func (k *Keymap) Len() int {
	return len(k.Bindings)
}

// Catalog is where bindings are resolved and registered.
type Catalog interface {
	Lookup(name string) (*catalog.Action, bool)
	Register(a *catalog.Action) error
}

// Apply registers every binding in c. A failing binding does not stop
// the others; the returned error joins all failures.
func (k *Keymap) Apply(c Catalog) error {
	var errs []error
	for _, b := range k.Bindings {
		if err := apply(c, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func apply(c Catalog, b Binding) error {
	target, ok := c.Lookup(b.Action)
	if !ok {
		return fmt.Errorf("%w: %s (bound to %s)", ErrUnknownAction, b.Action, b.Keys)
	}

	alias := *target
	alias.Name = b.Name()
	alias.Keys = []string{b.Keys}
	if len(b.Modes) > 0 {
		alias.Modes = make([]mode.Mode, 0, len(b.Modes))
		for _, name := range b.Modes {
			m, err := mode.ParseIncludingPseudo(name)
			if err != nil {
				return fmt.Errorf("binding %s: %w", b.Keys, err)
			}
			alias.Modes = append(alias.Modes, m)
		}
	}

	if err := c.Register(&alias); err != nil {
		return fmt.Errorf("binding %s: %w", b.Keys, err)
	}
	return nil
}
