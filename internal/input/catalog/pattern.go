package catalog

import (
	"fmt"
	"strings"

	"github.com/dshills/modal/internal/input/key"
)

// TokenClass distinguishes literal pattern tokens from placeholders.
type TokenClass uint8

const (
	// Literal matches one exact key.
	Literal TokenClass = iota
	// AnyChar matches any token that types a character.
	AnyChar
	// AnyRegister matches any plain character.
	AnyRegister
	// AnyDigit matches one digit.
	AnyDigit
)

// placeholders maps placeholder notation to its class.
var placeholders = map[string]TokenClass{
	"<character>": AnyChar,
	"<register>":  AnyRegister,
	"<number>":    AnyDigit,
	"<count>":     AnyDigit,
}

// Token is one element of a pattern.
type Token struct {
	Class TokenClass
	Key   key.Event
}

// Matches reports whether ev satisfies the token.
func (t Token) Matches(ev key.Event) bool {
	switch t.Class {
	case AnyChar:
		_, ok := ev.Char()
		return ok
	case AnyRegister:
		return ev.IsRune()
	case AnyDigit:
		_, ok := ev.Digit()
		return ok
	}
	return t.Key == ev
}

// String returns the token in vim notation.
func (t Token) String() string {
	for name, class := range placeholders {
		if class == t.Class && t.Class != Literal && name != "<count>" {
			return name
		}
	}
	return t.Key.String()
}

// Pattern is a parsed key pattern.
type Pattern []Token

// ParsePattern parses vim notation with placeholders.
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	for len(s) > 0 {
		if s[0] == '<' {
			if end := strings.IndexByte(s, '>'); end > 0 {
				if class, ok := placeholders[strings.ToLower(s[:end+1])]; ok {
					p = append(p, Token{Class: class})
					s = s[end+1:]
					continue
				}
			}
		}

		// Parse up to the next possible placeholder.
		next := len(s)
		if i := strings.Index(s[1:], "<"); i >= 0 {
			next = i + 1
		}
		chunk := s[:next]
		if chunk[0] == '<' {
			if end := strings.IndexByte(s, '>'); end > 0 {
				chunk = s[:end+1]
			}
		}
		events, err := key.ParseSequence(chunk)
		if err != nil {
			return nil, fmt.Errorf("catalog: pattern %q: %w", s, err)
		}
		for _, ev := range events {
			p = append(p, Token{Class: Literal, Key: ev})
		}
		s = s[len(chunk):]
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("catalog: empty pattern")
	}
	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// LeadingLiterals returns the number of literal tokens before the first
// placeholder. More leading literals means a more specific pattern.
func (p Pattern) LeadingLiterals() int {
	for i, t := range p {
		if t.Class != Literal {
			return i
		}
	}
	return len(p)
}

// Compare reports how keys relate to the pattern: full match, strict
// prefix, or neither. Captures holds the keys consumed by placeholders on
// a full match.
func (p Pattern) Compare(keys []key.Event) (full, prefix bool, captures []key.Event) {
	if len(keys) > len(p) {
		return false, false, nil
	}
	for i, ev := range keys {
		if !p[i].Matches(ev) {
			return false, false, nil
		}
		if p[i].Class != Literal {
			captures = append(captures, ev)
		}
	}
	if len(keys) == len(p) {
		return true, false, captures
	}
	return false, true, nil
}

// String returns the pattern in vim notation.
func (p Pattern) String() string {
	var b strings.Builder
	for _, t := range p {
		b.WriteString(t.String())
	}
	return b.String()
}
