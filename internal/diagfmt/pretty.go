package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cbrace/internal/diag"
	"cbrace/internal/source"
)

type palette struct {
	err, warn, info, note, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		note:   color.New(color.FgBlue),
		gutter: color.New(color.FgHiBlack),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	items := bag.Items()
	for i := range items {
		d := &items[i]
		if d.Severity == diag.SevInfo && !opts.ShowInfo {
			continue
		}
		f := fs.Get(d.Primary.File)
		if f == nil {
			fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity).Sprint(d.Severity.String()), d.Code.ID(), d.Message)
			continue
		}
		start, end := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			formatPath(f, opts.PathMode, fs.BaseDir()), start.Line, start.Col,
			p.severity(d.Severity).Sprint(d.Severity.String()), d.Code.ID(), d.Message)
		writeContext(w, f, start, end, opts, p)

		if opts.ShowNotes {
			for _, note := range d.Notes {
				nf := fs.Get(note.Span.File)
				if nf == nil {
					fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), note.Msg)
					continue
				}
				ns, _ := fs.Resolve(note.Span)
				fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
					formatPath(nf, opts.PathMode, fs.BaseDir()), ns.Line, ns.Col, note.Msg)
			}
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "... %d more diagnostic(s) not shown\n", dropped)
	}
}

func writeContext(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts, p palette) {
	context, err := safecast.Conv[uint32](max(opts.Context, 0))
	if err != nil {
		context = 0
	}
	first := uint32(1)
	if start.Line > context {
		first = start.Line - context
	}
	gutterWidth := len(fmt.Sprint(start.Line))

	for ln := first; ln <= start.Line; ln++ {
		text := strings.ReplaceAll(f.GetLine(ln), "\t", "    ")
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "...")
		}
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), text)
	}

	line := f.GetLine(start.Line)
	col := min(int(start.Col)-1, len(line))
	lastCol := len(line)
	if end.Line == start.Line {
		lastCol = min(int(end.Col)-1, len(line))
	}
	prefix := strings.ReplaceAll(line[:col], "\t", "    ")
	marked := strings.ReplaceAll(line[col:max(col, lastCol)], "\t", "    ")
	width := max(runewidth.StringWidth(marked), 1)
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""),
		strings.Repeat(" ", runewidth.StringWidth(prefix)), p.caret.Sprint(underline))
}
