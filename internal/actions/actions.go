package actions

import (
	"fmt"

	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/mode"
)

// Mode sets actions are bound in.
var (
	normalOnly  = []mode.Mode{mode.Normal}
	visualModes = []mode.Mode{mode.Visual, mode.VisualLine, mode.VisualBlock}
	insertModes = []mode.Mode{mode.Insert, mode.Replace}
	searchOnly  = []mode.Mode{mode.SearchInProgress}

	// motionModes are the modes motions move cursors or feed operators in.
	motionModes = []mode.Mode{mode.Normal, mode.Visual, mode.VisualLine, mode.VisualBlock, mode.OperatorPending}

	// objectModes are the modes text objects apply in.
	objectModes = []mode.Mode{mode.Visual, mode.VisualLine, mode.VisualBlock, mode.OperatorPending}

	// operatorModes include OperatorPending so that a second operator is
	// matched and rejected as a conflict.
	operatorModes = []mode.Mode{mode.Normal, mode.Visual, mode.VisualLine, mode.VisualBlock, mode.OperatorPending}

	normalAndVisual = []mode.Mode{mode.Normal, mode.Visual, mode.VisualLine, mode.VisualBlock}
)

// Builtins returns the built-in actions in registration order.
func Builtins() []*catalog.Action {
	var all []*catalog.Action
	all = append(all, prefixActions()...)
	all = append(all, linewiseActions()...)
	all = append(all, operatorActions()...)
	all = append(all, motionActions()...)
	all = append(all, textObjectActions()...)
	all = append(all, editActions()...)
	all = append(all, insertActions()...)
	all = append(all, modeActions()...)
	all = append(all, searchActions()...)
	all = append(all, macroActions()...)
	all = append(all, cursorActions()...)
	return all
}

// Register adds the built-in actions to r.
func Register(r *catalog.Registry) error {
	for _, a := range Builtins() {
		if err := r.Register(a); err != nil {
			return fmt.Errorf("registering built-in actions: %w", err)
		}
	}
	return nil
}
