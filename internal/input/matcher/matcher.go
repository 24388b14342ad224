// Package matcher resolves the keys typed so far against the action
// catalog.
package matcher

import (
	"fmt"

	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/logging"
)

// Status is the outcome of a match.
type Status uint8

const (
	// NoMatch means no action can ever match the keys.
	NoMatch Status = iota
	// Partial means more keys are needed.
	Partial
	// Complete means an action matched all keys.
	Complete
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case NoMatch:
		return "no-match"
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("Status(%d)", s)
}

// Result is the outcome of Match.
type Result struct {
	Status Status

	// Action is the matched action for Complete.
	Action *catalog.Action

	// Consumed is the number of keys the action used.
	Consumed int

	// Captures are the keys consumed by placeholders.
	Captures []key.Event
}

// Matcher matches key sequences against a registry.
type Matcher struct {
	registry *catalog.Registry
	log      *logging.Logger
}

// New creates a matcher over registry.
func New(registry *catalog.Registry, log *logging.Logger) *Matcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Matcher{registry: registry, log: log.WithComponent("matcher")}
}

// Match resolves keys in the state described by v.
//
// Among applicable actions whose pattern matches all keys, the pattern
// with the most leading literal keys wins; ties go to the action
// registered first. A complete match whose literal prefix is shorter than
// the keys yields to a pattern that matched every key literally and wants
// more, so that a more specific command can still be typed.
func (m *Matcher) Match(v catalog.View, keys []key.Event) Result {
	if len(keys) == 0 {
		return Result{Status: NoMatch}
	}

	var (
		best      *catalog.Action
		bestScore = -1
		captures  []key.Event
		partial   bool
		specific  bool
	)

	for _, a := range m.registry.Actions() {
		if !a.Applies(v) {
			continue
		}
		for _, p := range a.Patterns() {
			full, prefix, caps := p.Compare(keys)
			switch {
			case full:
				if score := p.LeadingLiterals(); score > bestScore {
					best, bestScore, captures = a, score, caps
				}
			case prefix:
				partial = true
				if p.LeadingLiterals() >= len(keys) {
					specific = true
				}
			}
		}
	}

	switch {
	case best != nil && !(specific && bestScore < len(keys)):
		m.log.Debug("%s matched %s in %s", key.Format(keys), best.Name, v.Mode)
		return Result{Status: Complete, Action: best, Consumed: len(keys), Captures: captures}
	case partial:
		return Result{Status: Partial}
	}
	m.log.Debug("%s has no match in %s", key.Format(keys), v.Mode)
	return Result{Status: NoMatch}
}
