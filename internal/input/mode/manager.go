package mode

import (
	"sync"

	"github.com/dshills/modal/internal/editerr"
)

// ChangeCallback is called after the mode changes.
type ChangeCallback func(from, to Mode)

// Manager tracks the current mode of one editing session.
type Manager struct {
	mu sync.RWMutex

	current  Mode
	previous Mode

	// plugins holds names of plugin-owned modes, indexed from pluginBase.
	plugins []string

	callbacks []ChangeCallback
}

// NewManager creates a manager starting in the given mode.
func NewManager(initial Mode) *Manager {
	m := &Manager{}
	m.check(initial)
	m.current = initial
	m.previous = initial
	return m
}

// Current returns the current mode.
func (m *Manager) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Previous returns the mode active before the last switch.
func (m *Manager) Previous() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous
}

// Switch changes the current mode and notifies callbacks.
// Switching to Invalid, OperatorPending, or an unregistered plugin mode is
// a programming fault.
func (m *Manager) Switch(to Mode) {
	from, callbacks := m.swap(to)
	if from == to {
		return
	}
	for _, cb := range callbacks {
		if cb != nil {
			cb(from, to)
		}
	}
}

func (m *Manager) swap(to Mode) (Mode, []ChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.check(to)
	from := m.current
	if from == to {
		return from, nil
	}
	m.previous = from
	m.current = to
	callbacks := make([]ChangeCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	return from, callbacks
}

// OnChange registers a callback for mode changes.
// Returns a function to unregister the callback.
func (m *Manager) OnChange(cb ChangeCallback) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, cb)
	index := len(m.callbacks) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if index < len(m.callbacks) {
			m.callbacks[index] = nil
		}
	}
}

// RegisterPluginMode allocates a plugin-owned input mode.
// Registering the same name twice returns the same mode.
func (m *Manager) RegisterPluginMode(name string) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, n := range m.plugins {
		if n == name {
			return pluginBase + Mode(i)
		}
	}
	if int(pluginBase)+len(m.plugins) > 255 {
		editerr.Faultf("too many plugin modes registering %q", name)
	}
	m.plugins = append(m.plugins, name)
	return pluginBase + Mode(len(m.plugins)-1)
}

// Name returns the display name of a mode, resolving plugin mode names.
func (m *Manager) Name(md Mode) string {
	if md.IsPlugin() {
		m.mu.RLock()
		defer m.mu.RUnlock()
		if i := int(md - pluginBase); i < len(m.plugins) {
			return m.plugins[i]
		}
	}
	return md.String()
}

// check panics if md cannot be the current mode. Caller holds mu.
func (m *Manager) check(md Mode) {
	switch {
	case md == Invalid, md == OperatorPending:
		editerr.Faultf("cannot switch to mode %s", md)
	case md.IsPlugin() && int(md-pluginBase) >= len(m.plugins):
		editerr.Faultf("cannot switch to unregistered %s", md)
	}
}
