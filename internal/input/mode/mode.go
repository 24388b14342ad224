// Package mode defines the closed set of editing modes and tracks the
// current mode of a session.
package mode

import (
	"fmt"
	"strings"
)

// Mode is the modal editing state governing which actions apply.
type Mode uint8

const (
	// Invalid is the zero value and never a legal current mode.
	Invalid Mode = iota
	Normal
	Insert
	Replace
	Visual
	VisualLine
	VisualBlock
	// OperatorPending is derived from pending operator state and never
	// stored as the current mode.
	OperatorPending
	SearchInProgress
	CommandlineInProgress

	// pluginBase is the first value handed out to plugin-owned modes.
	pluginBase
)

var names = map[Mode]string{
	Normal:                "normal",
	Insert:                "insert",
	Replace:               "replace",
	Visual:                "visual",
	VisualLine:            "visual-line",
	VisualBlock:           "visual-block",
	OperatorPending:       "operator-pending",
	SearchInProgress:      "search",
	CommandlineInProgress: "commandline",
}

// String returns the mode name.
func (m Mode) String() string {
	if name, ok := names[m]; ok {
		return name
	}
	if m >= pluginBase {
		return fmt.Sprintf("plugin-%d", m-pluginBase)
	}
	return "invalid"
}

// DisplayName returns the status line label for the mode.
func (m Mode) DisplayName() string {
	switch m {
	case Normal:
		return ""
	case OperatorPending:
		return "-- (operator) --"
	case SearchInProgress, CommandlineInProgress:
		return ""
	}
	return "-- " + strings.ToUpper(strings.ReplaceAll(m.String(), "-", " ")) + " --"
}

// Parse returns the mode with the given name.
func Parse(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, n := range names {
		if n == name && m != OperatorPending {
			return m, nil
		}
	}
	return Invalid, fmt.Errorf("mode: unknown mode %q", name)
}

// ParseIncludingPseudo is Parse that also accepts "operator-pending",
// for bindings that apply while an operator waits for its motion.
func ParseIncludingPseudo(name string) (Mode, error) {
	if strings.ToLower(strings.TrimSpace(name)) == names[OperatorPending] {
		return OperatorPending, nil
	}
	return Parse(name)
}

// IsVisual reports whether m is one of the visual modes.
func (m Mode) IsVisual() bool {
	return m == Visual || m == VisualLine || m == VisualBlock
}

// IsInsertLike reports whether typed characters edit text in m.
func (m Mode) IsInsertLike() bool {
	return m == Insert || m == Replace
}

// IsPlugin reports whether m is a plugin-owned input mode.
func (m Mode) IsPlugin() bool {
	return m >= pluginBase
}

// IncludingPseudo returns the mode used for key-remap lookups: Normal and
// visual modes read as OperatorPending while an operator waits for a motion.
func IncludingPseudo(current Mode, operatorPending bool) Mode {
	if operatorPending && (current == Normal || current.IsVisual()) {
		return OperatorPending
	}
	return current
}
