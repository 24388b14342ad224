// Package actions provides the built-in action catalog: counts and
// register prefixes, motions and text objects, operators with their
// linewise doubled forms, editing commands, mode switches, insert and
// replace mode typing, search, macros, dot repeat, and multi-cursor
// commands.
//
// Actions are plain descriptors. Register appends them to a registry in
// a fixed order; entries sharing keys are disambiguated by predicates,
// with earlier registrations preferred.
package actions
