package driver

import (
	"bytes"
	"fmt"

	"cbrace/internal/format"
	"cbrace/internal/source"
)

// RunFmtCheck formats the file twice and verifies the second pass is a
// no-op. It returns (ok, report string); 'ok' means both passes succeeded
// and produced identical output.
//
// Brace merges are not always stable: a merge target without ')' (for
// example "struct Foo") can be classified again once '{' lands on it.
func RunFmtCheck(sf *source.File, opts format.Options) (success bool, msg string) {
	// 1) first pass
	first, res, err := format.Source(sf.Content, opts, nil)
	if err != nil {
		return false, fmt.Sprintf("fmt-check: %v", err)
	}

	// 2) second pass over the formatted bytes
	second, _, err := format.Source(first, opts, nil)
	if err != nil {
		return false, fmt.Sprintf("fmt-check: reformat failed: %v", err)
	}

	// 3) compare
	if !bytes.Equal(first, second) {
		return false, fmt.Sprintf("fmt-check: output changes on second pass (%d merges in first)", res.Stats.Merges)
	}
	return true, "fmt-check: OK"
}
