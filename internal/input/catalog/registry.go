package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/modal/internal/editerr"
)

// Registry errors.
var (
	ErrNoName        = errors.New("catalog: action has no name")
	ErrNoKeys        = errors.New("catalog: action has no key patterns")
	ErrNoModes       = errors.New("catalog: action has no modes")
	ErrDuplicateName = errors.New("catalog: duplicate action name")
)

// Registry is an ordered set of actions. Registration happens at startup
// and from plugins; lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	actions []*Action
	byName  map[string]*Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Action)}
}

// Register validates and appends an action. An action without the
// executor its kind requires is a programming fault and panics.
func (r *Registry) Register(a *Action) error {
	if a.Name == "" {
		return ErrNoName
	}
	if len(a.Keys) == 0 {
		return fmt.Errorf("%w: %s", ErrNoKeys, a.Name)
	}
	if len(a.Modes) == 0 {
		return fmt.Errorf("%w: %s", ErrNoModes, a.Name)
	}
	if !a.hasExecutor() {
		editerr.Faultf("catalog: %s action %q has no executor", a.Kind, a.Name)
	}

	patterns := make([]Pattern, 0, len(a.Keys))
	for _, k := range a.Keys {
		p, err := ParsePattern(k)
		if err != nil {
			return fmt.Errorf("registering %q: %w", a.Name, err)
		}
		patterns = append(patterns, p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byName[a.Name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateName, a.Name)
	}
	a.patterns = patterns
	r.actions = append(r.actions, a)
	r.byName[a.Name] = a
	return nil
}

// MustRegister registers actions and panics on the first error.
// It is intended for built-in tables.
func (r *Registry) MustRegister(actions ...*Action) {
	for _, a := range actions {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the action with the given name.
func (r *Registry) Lookup(name string) (*Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// Actions returns the actions in registration order.
func (r *Registry) Actions() []*Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}
