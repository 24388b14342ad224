// Package keymap binds user key sequences to catalog actions.
//
// A binding adds keys to an existing action: the action is registered
// again under a derived name with the new keys, optionally restricted to
// other modes. Built-in keys are never unbound; a binding whose keys are
// as long as a built-in pattern for the same mode is matched after it.
//
// Modes may name "operator-pending" so that a binding applies while an
// operator waits for its motion:
//
//	km := keymap.NewKeymap().
//	    Add("<C-h>", "cursor.moveLeft").
//	    Add("L", "cursor.lineEnd", "normal", "operator-pending")
//	err := km.Apply(registry)
package keymap
