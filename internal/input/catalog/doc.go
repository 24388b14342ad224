// Package catalog holds the action catalog: descriptors mapping key
// patterns in given modes to motions, operators, and commands.
//
// # Patterns
//
// A pattern is a key sequence in vim notation that may contain
// placeholders:
//
//	<character>  any token that types a character, including <CR> and <Tab>
//	<register>   any character; validity is checked by the action
//	<number>     a single digit
//
// An action may list several alternative patterns ("j", "<Down>").
//
// # Ordering
//
// The registry keeps registration order. When two actions match the same
// keys equally well, the one registered first wins, so specific entries
// are registered before general ones.
package catalog
