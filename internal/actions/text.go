package actions

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/modal/internal/engine/buffer"
)

// charClass groups characters for word motions.
type charClass uint8

const (
	blank charClass = iota
	punct
	word
)

// classOf returns the class of r. For big words every non-blank
// character is a word character.
func classOf(r rune, big bool) charClass {
	switch {
	case unicode.IsSpace(r):
		return blank
	case big, isWordChar(r):
		return word
	}
	return punct
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// charAt returns the character at p, or '\n' at the end of a line.
func charAt(tb buffer.TextBuffer, p buffer.Position) rune {
	line := tb.LineAt(p.Line).Text
	if p.Column >= len(line) {
		return '\n'
	}
	r, _ := utf8.DecodeRuneInString(line[p.Column:])
	return r
}

// nextPos steps one character forward, treating each line end as a
// character. It reports false at the end of the document.
func nextPos(tb buffer.TextBuffer, p buffer.Position) (buffer.Position, bool) {
	line := tb.LineAt(p.Line).Text
	if p.Column < len(line) {
		_, size := utf8.DecodeRuneInString(line[p.Column:])
		return buffer.Pos(p.Line, p.Column+size), true
	}
	if p.Line+1 < tb.LineCount() {
		return buffer.Pos(p.Line+1, 0), true
	}
	return p, false
}

// prevPos steps one character back. It reports false at the start of
// the document.
func prevPos(tb buffer.TextBuffer, p buffer.Position) (buffer.Position, bool) {
	if p.Column > 0 {
		line := tb.LineAt(p.Line).Text
		_, size := utf8.DecodeLastRuneInString(line[:min(p.Column, len(line))])
		return buffer.Pos(p.Line, p.Column-size), true
	}
	if p.Line > 0 {
		return buffer.LineEnd(tb, p.Line-1), true
	}
	return p, false
}

func isEmptyLine(tb buffer.TextBuffer, p buffer.Position) bool {
	return p.Column == 0 && tb.LineAt(p.Line).Length == 0
}

// wordForward returns the start of the next word. Empty lines count as
// words.
func wordForward(tb buffer.TextBuffer, start buffer.Position, big bool) (buffer.Position, bool) {
	p := start
	if cls := classOf(charAt(tb, p), big); cls != blank {
		for classOf(charAt(tb, p), big) == cls {
			next, ok := nextPos(tb, p)
			if !ok {
				return p, p != start
			}
			p = next
		}
	}
	for classOf(charAt(tb, p), big) == blank {
		if p != start && isEmptyLine(tb, p) {
			break
		}
		next, ok := nextPos(tb, p)
		if !ok {
			break
		}
		p = next
	}
	return p, p != start
}

// wordBackward returns the start of the word before start.
func wordBackward(tb buffer.TextBuffer, start buffer.Position, big bool) (buffer.Position, bool) {
	p, ok := prevPos(tb, start)
	if !ok {
		return start, false
	}
	for classOf(charAt(tb, p), big) == blank && !isEmptyLine(tb, p) {
		prev, ok := prevPos(tb, p)
		if !ok {
			return p, true
		}
		p = prev
	}
	if isEmptyLine(tb, p) {
		return p, true
	}

	cls := classOf(charAt(tb, p), big)
	for {
		prev, ok := prevPos(tb, p)
		if !ok || prev.Line != p.Line || classOf(charAt(tb, prev), big) != cls {
			return p, true
		}
		p = prev
	}
}

// wordEnd returns the last character of the word after start.
func wordEnd(tb buffer.TextBuffer, start buffer.Position, big bool) (buffer.Position, bool) {
	p, ok := nextPos(tb, start)
	if !ok {
		return start, false
	}
	for classOf(charAt(tb, p), big) == blank {
		next, ok := nextPos(tb, p)
		if !ok {
			return start, false
		}
		p = next
	}

	cls := classOf(charAt(tb, p), big)
	for {
		next, ok := nextPos(tb, p)
		if !ok || next.Line != p.Line || classOf(charAt(tb, next), big) != cls {
			return p, true
		}
		p = next
	}
}

// runAt returns the byte span [start, end) of the run of same-class
// characters around col.
func runAt(line string, col int, big bool) (int, int) {
	if col >= len(line) {
		return len(line), len(line)
	}
	r, _ := utf8.DecodeRuneInString(line[col:])
	cls := classOf(r, big)

	start := col
	for start > 0 {
		pr, size := utf8.DecodeLastRuneInString(line[:start])
		if classOf(pr, big) != cls {
			break
		}
		start -= size
	}
	end := col
	for end < len(line) {
		nr, size := utf8.DecodeRuneInString(line[end:])
		if classOf(nr, big) != cls {
			break
		}
		end += size
	}
	return start, end
}

// firstNonBlank returns the column of the first non-blank character of
// line, or the line length if it is all blank.
func firstNonBlank(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// lastCol returns where a Normal mode cursor may rest at most on line n.
func lastCol(tb buffer.TextBuffer, n int) int {
	return buffer.LastGrapheme(tb.LineAt(n).Text)
}

// graphemesRight returns the column after count grapheme clusters from
// col, limited to the line end.
func graphemesRight(line string, col, count int) int {
	for i := 0; i < count && col < len(line); i++ {
		col = buffer.NextGrapheme(line, col)
	}
	return col
}

// graphemesLeft returns the column count grapheme clusters before col.
func graphemesLeft(line string, col, count int) int {
	for i := 0; i < count && col > 0; i++ {
		col = buffer.PrevGrapheme(line, col)
	}
	return col
}

// lastRuneLen returns the byte length of the last character of s.
func lastRuneLen(s string) int {
	_, size := utf8.DecodeLastRuneInString(s)
	return size
}

// toggleCase swaps the case of every letter in s.
func toggleCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		}
		return r
	}, s)
}
