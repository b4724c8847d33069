package format

import (
	"fmt"
	"strings"

	"cbrace/internal/diag"
)

// CheckTokens reports whether a tokenized line holds a dangling opening
// brace: a "{" token with no ")" before it. A token counts as ")" when it
// contains one, so "a)" in "foo(int a) {" guards the brace.
func CheckTokens(tokens []string) bool {
	parenSeen := false
	for _, tok := range tokens {
		if strings.Contains(tok, closeParen) {
			parenSeen = true
			continue
		}
		if tok == openBrace && !parenSeen {
			return true
		}
	}
	return false
}

// NormalizeBraces moves every dangling "{" onto the end of the previous
// output line. A dangling brace on the very first line stays where it is.
// Anything else sharing the line with the moved brace is dropped and reported.
func NormalizeBraces(lines []string, opts Options, r Reporter) ([]string, Stats) {
	ls, stats := normalizeBraces(number(lines), opts, orNop(r))
	return texts(ls), stats
}

func normalizeBraces(lines []numbered, opts Options, r Reporter) ([]numbered, Stats) {
	var stats Stats
	out := make([]numbered, 0, len(lines))
	for _, line := range lines {
		tokens := Tokenize(line.text)
		if len(out) == 0 || !CheckTokens(tokens) {
			out = append(out, line)
			continue
		}

		target := &out[len(out)-1]
		target.text = mergeBrace(target.text, opts.BraceBeforeComment)
		stats.Merges++
		r.Report(diag.FmtBraceMerged, diag.SevInfo, line.num,
			fmt.Sprintf("'{' moved to the end of line %d", target.num))

		if len(tokens) > 1 {
			stats.Discarded++
			r.Report(diag.FmtDiscardedBraceContent, diag.SevWarning, line.num,
				fmt.Sprintf("dropped %q while moving '{' to line %d", strings.TrimSpace(line.text), target.num))
		}
	}
	return out, stats
}

func mergeBrace(target string, beforeComment bool) string {
	if beforeComment {
		if idx := commentMarker(target); idx >= 0 {
			code := strings.TrimRight(target[:idx], " \t")
			if code == "" {
				// строка целиком комментарий: скобку некуда вставить перед ним
				return target + mergedSuffix
			}
			return code + mergedSuffix + " " + target[idx:]
		}
	}
	return target + mergedSuffix
}
