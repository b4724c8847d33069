package format

import "strings"

const (
	openBrace    = "{"
	closeParen   = ")"
	blockOpener  = "/*"
	blockCloser  = "*/"
	lineComment  = "//"
	mergedSuffix = " " + openBrace
)

// Tokenize splits a line into maximal runs of non-whitespace.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

func firstToken(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// commentMarker returns the byte offset where a comment starts on the line,
// or -1. Tokens are scanned left to right; the first one holding "/*" or "//"
// decides, and the cut is made at the earliest marker in the line ("//*" cuts at 0).
func commentMarker(line string) int {
	for _, tok := range strings.Fields(line) {
		if !strings.Contains(tok, blockOpener) && !strings.Contains(tok, lineComment) {
			continue
		}
		return earliest(strings.Index(line, blockOpener), strings.Index(line, lineComment))
	}
	return -1
}

func earliest(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}

// leavesBlockOpen reports whether a block comment is still open at the end
// of the line. inComment tells whether the line starts inside one. A "//"
// outside a block comment ends the scan.
func leavesBlockOpen(line string, inComment bool) bool {
	open := inComment
	for i := 0; i+1 < len(line); i++ {
		switch pair := line[i : i+2]; {
		case open && pair == blockCloser:
			open = false
			i++
		case !open && pair == blockOpener:
			open = true
			i++
		case !open && pair == lineComment:
			return false
		}
	}
	return open
}

// commentEnd returns the offset just past the last "*/" that closes a block
// comment on line, scanning the same way as leavesBlockOpen, or -1.
func commentEnd(line string, inComment bool) int {
	open, end := inComment, -1
	for i := 0; i+1 < len(line); i++ {
		switch pair := line[i : i+2]; {
		case open && pair == blockCloser:
			open = false
			i++
			end = i + 1
		case !open && pair == blockOpener:
			open = true
			i++
		case !open && pair == lineComment:
			return end
		}
	}
	return end
}
