package format

import (
	"fmt"

	"fortio.org/safecast"

	"cbrace/internal/diag"
	"cbrace/internal/source"
)

// Options switches the optional parts of the pipeline.
type Options struct {
	// StripComments enables the block and line comment passes.
	StripComments bool
	// BraceBeforeComment puts a merged "{" in front of a trailing comment
	// on the target line instead of after it.
	BraceBeforeComment bool
}

// Stats counts what the passes did to one file.
type Stats struct {
	Merges         int // dangling braces moved up
	Discarded      int // merges that dropped text next to the brace
	BlockComments  int
	RemovedLines   int // lines deleted by the block comment pass
	TruncatedLines int // lines cut by the line comment pass
}

// Add sums two Stats.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Merges:         s.Merges + o.Merges,
		Discarded:      s.Discarded + o.Discarded,
		BlockComments:  s.BlockComments + o.BlockComments,
		RemovedLines:   s.RemovedLines + o.RemovedLines,
		TruncatedLines: s.TruncatedLines + o.TruncatedLines,
	}
}

// Result is the output of Lines.
type Result struct {
	Lines []string
	Stats Stats
}

// Reporter receives findings of the passes. line is 1-based and always
// refers to the line of the original input, even after merges.
type Reporter interface {
	Report(code diag.Code, sev diag.Severity, line int, msg string)
}

type nopReporter struct{}

func (nopReporter) Report(diag.Code, diag.Severity, int, string) {}

// FileReporter adapts a diag.Reporter to line-keyed reports for one file.
type FileReporter struct {
	File     *source.File
	Reporter diag.Reporter
}

func (r FileReporter) Report(code diag.Code, sev diag.Severity, line int, msg string) {
	if r.Reporter == nil {
		return
	}
	var span source.Span
	if r.File != nil {
		lineNum, err := safecast.Conv[uint32](line)
		if err != nil {
			lineNum = 0
		}
		span = r.File.LineSpan(lineNum)
	}
	r.Reporter.Report(code, sev, span, msg, nil)
}

// numbered is a line together with its 1-based position in the input.
type numbered struct {
	text string
	num  int
}

func number(lines []string) []numbered {
	out := make([]numbered, len(lines))
	for i, l := range lines {
		out[i] = numbered{text: l, num: i + 1}
	}
	return out
}

func texts(ls []numbered) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.text
	}
	return out
}

func orNop(r Reporter) Reporter {
	if r == nil {
		return nopReporter{}
	}
	return r
}

// Document carries lines through the passes one at a time and remembers
// which input line each output line came from.
type Document struct {
	lines []numbered
	stats Stats
}

// NewDocument wraps lines; the slice itself is not retained.
func NewDocument(lines []string) *Document {
	return &Document{lines: number(lines)}
}

// NormalizeBraces runs the brace normalizer and returns its own stats.
func (d *Document) NormalizeBraces(opts Options, r Reporter) Stats {
	var stats Stats
	d.lines, stats = normalizeBraces(d.lines, opts, orNop(r))
	d.stats = d.stats.Add(stats)
	return stats
}

// StripComments runs the comment stripper. On error the document is left
// as it was before the call.
func (d *Document) StripComments(r Reporter) (Stats, error) {
	lines, stats, err := stripComments(d.lines, orNop(r))
	if err != nil {
		return Stats{}, err
	}
	d.lines = lines
	d.stats = d.stats.Add(stats)
	return stats, nil
}

// Lines returns a copy of the current lines.
func (d *Document) Lines() []string { return texts(d.lines) }

// Stats returns the totals of all passes run so far.
func (d *Document) Stats() Stats { return d.stats }

// Lines runs the brace normalizer and, when enabled, the comment stripper.
// The input slice is never modified.
func Lines(lines []string, opts Options, r Reporter) (Result, error) {
	doc := NewDocument(lines)
	doc.NormalizeBraces(opts, r)
	if opts.StripComments {
		if _, err := doc.StripComments(r); err != nil {
			return Result{}, err
		}
	}
	return Result{Lines: doc.Lines(), Stats: doc.Stats()}, nil
}

// Source formats raw file content: split into lines, run Lines, join back
// with a "\n" after every line.
func Source(src []byte, opts Options, r Reporter) ([]byte, Result, error) {
	res, err := Lines(source.SplitLines(src), opts, r)
	if err != nil {
		return nil, Result{}, fmt.Errorf("format: %w", err)
	}
	return source.JoinLines(res.Lines), res, nil
}
