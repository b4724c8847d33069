package driver

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string // включая завершающий '\n', если он был
}

// UnifiedDiff renders a line-based unified diff between before and after.
// It returns "" when the inputs are equal.
func UnifiedDiff(path string, before, after []byte) string {
	if bytes.Equal(before, after) {
		return ""
	}

	var table lineTable
	ra, rb := table.runes(before), table.runes(after)
	diffs := diffmatchpatch.New().DiffMainRunes(ra, rb, false)

	var lines []diffLine
	for _, d := range diffs {
		for _, r := range d.Text {
			lines = append(lines, diffLine{op: d.Type, text: table.text(r)})
		}
	}

	// oldBefore[i]/newBefore[i] - сколько строк старой/новой версии идёт до lines[i]
	oldBefore := make([]int, len(lines)+1)
	newBefore := make([]int, len(lines)+1)
	for i, l := range lines {
		oldBefore[i+1], newBefore[i+1] = oldBefore[i], newBefore[i]
		if l.op != diffmatchpatch.DiffInsert {
			oldBefore[i+1]++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newBefore[i+1]++
		}
	}

	var hunks [][2]int
	for i, l := range lines {
		if l.op == diffmatchpatch.DiffEqual {
			continue
		}
		start, end := max(i-diffContext, 0), min(i+diffContext+1, len(lines))
		if n := len(hunks); n > 0 && start <= hunks[n-1][1] {
			hunks[n-1][1] = max(hunks[n-1][1], end)
			continue
		}
		hunks = append(hunks, [2]int{start, end})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range hunks {
		oldCount := oldBefore[h[1]] - oldBefore[h[0]]
		newCount := newBefore[h[1]] - newBefore[h[0]]
		fmt.Fprintf(&b, "@@ -%s +%s @@\n", hunkRange(oldBefore[h[0]], oldCount), hunkRange(newBefore[h[0]], newCount))
		for _, l := range lines[h[0]:h[1]] {
			switch l.op {
			case diffmatchpatch.DiffDelete:
				b.WriteByte('-')
			case diffmatchpatch.DiffInsert:
				b.WriteByte('+')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(l.text)
			if !strings.HasSuffix(l.text, "\n") {
				b.WriteString("\n\\ No newline at end of file\n")
			}
		}
	}
	return b.String()
}

// lineTable кодирует каждую уникальную строку одной руной, чтобы
// diffmatchpatch сравнивал строки целиком.
type lineTable struct {
	index map[string]rune
	lines []string
}

func (t *lineTable) runes(data []byte) []rune {
	if t.index == nil {
		t.index = make(map[string]rune)
	}
	var out []rune
	for _, l := range strings.SplitAfter(string(data), "\n") {
		if l == "" {
			continue
		}
		r, ok := t.index[l]
		if !ok {
			r = lineRune(len(t.lines))
			t.index[l] = r
			t.lines = append(t.lines, l)
		}
		out = append(out, r)
	}
	return out
}

func (t *lineTable) text(r rune) string {
	idx := int(r)
	if idx >= surrogateMax {
		idx -= surrogateMax - surrogateMin
	}
	return t.lines[idx]
}

const (
	surrogateMin = 0xD800
	surrogateMax = 0xE000
)

// lineRune пропускает суррогатный диапазон: такие руны не переживают
// преобразование в string внутри diffmatchpatch.
func lineRune(idx int) rune {
	if idx >= surrogateMin {
		idx += surrogateMax - surrogateMin
	}
	return rune(idx)
}

func hunkRange(before, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", before)
	}
	return fmt.Sprintf("%d,%d", before+1, count)
}
