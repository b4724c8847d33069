package format

import (
	"fmt"
	"strings"

	"cbrace/internal/diag"
)

// StripComments removes block comments line-wise and then truncates lines
// at the first remaining comment marker. An unclosed block comment yields
// an *UnterminatedCommentError and no output.
func StripComments(lines []string, r Reporter) ([]string, Stats, error) {
	ls, stats, err := stripComments(number(lines), orNop(r))
	if err != nil {
		return nil, Stats{}, err
	}
	return texts(ls), stats, nil
}

func stripComments(lines []numbered, r Reporter) ([]numbered, Stats, error) {
	drop, stats, err := markBlockComments(lines, r)
	if err != nil {
		return nil, Stats{}, err
	}

	out := make([]numbered, 0, len(lines)-stats.RemovedLines)
	for i, line := range lines {
		if drop[i] {
			continue
		}
		if idx := commentMarker(line.text); idx >= 0 {
			line.text = line.text[:idx]
			stats.TruncatedLines++
		}
		out = append(out, line)
	}
	return out, stats, nil
}

// opensBlock reports whether the line starts a deletion run: its first token
// opens a block comment, or a block comment opened later on the line is left
// unclosed.
func opensBlock(line string) bool {
	first := firstToken(line)
	if op := strings.Index(first, blockOpener); op >= 0 {
		if lc := strings.Index(first, lineComment); lc < 0 || op < lc {
			return true
		}
	}
	return leavesBlockOpen(line, false)
}

// markBlockComments returns, per line, whether the block pass deletes it.
func markBlockComments(lines []numbered, r Reporter) ([]bool, Stats, error) {
	var stats Stats
	drop := make([]bool, len(lines))
	for i := 0; i < len(lines); i++ {
		if !opensBlock(lines[i].text) {
			continue
		}

		end := closingLine(lines, i)
		if end < 0 {
			err := &UnterminatedCommentError{Line: lines[i].num}
			r.Report(diag.FmtUnterminatedBlockComment, diag.SevError, lines[i].num,
				"block comment is never closed")
			return nil, Stats{}, err
		}

		for k := i; k <= end; k++ {
			drop[k] = true
		}
		stats.BlockComments++
		stats.RemovedLines += end - i + 1
		r.Report(diag.FmtBlockCommentRemoved, diag.SevInfo, lines[i].num,
			fmt.Sprintf("removed lines %d-%d", lines[i].num, lines[end].num))

		closing := lines[end].text
		after := commentEnd(closing, end != i)
		if after < 0 {
			after = len(closing)
		}
		if rest := strings.TrimSpace(closing[after:]); rest != "" {
			r.Report(diag.FmtCodeAfterCommentCloser, diag.SevWarning, lines[end].num,
				fmt.Sprintf("%q after '*/' was removed with the comment", rest))
		}
		i = end
	}
	return drop, stats, nil
}

// closingLine returns the index of the line that ends the block comment
// starting at lines[start], or -1. The closer is looked up on the start line
// itself unless the comment is left open there; a closing line that opens
// another comment extends the run.
func closingLine(lines []numbered, start int) int {
	from := start
	if leavesBlockOpen(lines[start].text, false) {
		from = start + 1
	}
	for {
		end := from
		for end < len(lines) && !strings.Contains(lines[end].text, blockCloser) {
			end++
		}
		if end >= len(lines) {
			return -1
		}
		if end == start || !leavesBlockOpen(lines[end].text, true) {
			return end
		}
		from = end + 1
	}
}
