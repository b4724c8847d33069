package testkit

import (
	"fmt"
	"strings"

	"cbrace/internal/format"
)

// CheckFormatInvariants runs a minimal set of invariants on a formatting
// result:
// 1) every output line is newline-free
// 2) output length == input length - merges - removed lines
// 3) with stripping, no output line still holds "//" or "/*"
// 4) without stripping, the input is returned unchanged apart from merges
func CheckFormatInvariants(in []string, res format.Result, opts format.Options) error {
	for i, line := range res.Lines {
		if strings.ContainsRune(line, '\n') {
			return fmt.Errorf("output line %d holds a newline: %q", i+1, line)
		}
	}

	want := len(in) - res.Stats.Merges
	if opts.StripComments {
		want -= res.Stats.RemovedLines
	}
	if len(res.Lines) != want {
		return fmt.Errorf("output has %d lines, want %d (in=%d merges=%d removed=%d)",
			len(res.Lines), want, len(in), res.Stats.Merges, res.Stats.RemovedLines)
	}

	if opts.StripComments {
		for i, line := range res.Lines {
			if strings.Contains(line, "//") || strings.Contains(line, "/*") {
				return fmt.Errorf("output line %d still holds a comment: %q", i+1, line)
			}
		}
		return nil
	}
	if res.Stats.Merges == 0 && strings.Join(in, "\n") != strings.Join(res.Lines, "\n") {
		return fmt.Errorf("input changed without merges")
	}
	return nil
}
