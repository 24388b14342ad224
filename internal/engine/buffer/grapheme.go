package buffer

import "github.com/rivo/uniseg"

// NextGrapheme returns the byte column of the grapheme cluster after the
// one starting at or containing col. At the end of the line it returns
// len(line).
func NextGrapheme(line string, col int) int {
	if col >= len(line) {
		return len(line)
	}
	pos := 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		pos += len(cluster)
		if pos > col {
			return pos
		}
	}
	return len(line)
}

// PrevGrapheme returns the byte column of the grapheme cluster before
// col. At column 0 it returns 0.
func PrevGrapheme(line string, col int) int {
	if col <= 0 {
		return 0
	}
	prev, pos := 0, 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if pos+len(cluster) >= col {
			if pos >= col {
				return prev
			}
			return pos
		}
		prev = pos
		pos += len(cluster)
	}
	return prev
}

// GraphemeStart returns the column of the grapheme cluster containing col.
func GraphemeStart(line string, col int) int {
	if col >= len(line) {
		return len(line)
	}
	pos := 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if pos+len(cluster) > col {
			return pos
		}
		pos += len(cluster)
	}
	return len(line)
}

// LastGrapheme returns the column of the last grapheme cluster of line,
// or 0 for an empty line. Normal mode cursors rest here at most.
func LastGrapheme(line string) int {
	return PrevGrapheme(line, len(line))
}
