package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"cbrace/internal/diag"
	"cbrace/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("main.c", []byte("int main(void)\n{\n/* open\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevInfo, diag.FmtBraceMerged,
		source.Span{File: fileID, Start: 15, End: 16}, "'{' moved to the end of line 1"))
	bag.Add(diag.New(diag.SevError, diag.FmtUnterminatedBlockComment,
		source.Span{File: fileID, Start: 17, End: 24}, "block comment is never closed").
		WithNote(source.Span{File: fileID, Start: 0, End: 14}, "last statement"))

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}

	// info скрыта без IncludeInfo
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", output.Count)
	}
	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "FMT1003" {
		t.Errorf("unexpected severity/code %s %s", d.Severity, d.Code)
	}
	if d.Title != "Unterminated block comment" {
		t.Errorf("unexpected title %q", d.Title)
	}
	if d.Location.File != "main.c" || d.Location.StartLine != 3 || d.Location.StartCol != 1 {
		t.Errorf("unexpected location %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 1 {
		t.Errorf("unexpected notes %+v", d.Notes)
	}
}

func TestJSONMaxAndInfo(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("x.c", []byte("a\n{\nb\n{\n"))

	bag := diag.NewBag(10)
	for _, off := range []uint32{2, 6} {
		bag.Add(diag.New(diag.SevInfo, diag.FmtBraceMerged,
			source.Span{File: fileID, Start: off, End: off + 1}, "merged"))
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeInfo: true, Max: 1})
	if out.Count != 1 {
		t.Fatalf("expected Max to cut output to 1, got %d", out.Count)
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Errorf("positions must be omitted without IncludePositions, got %+v", out.Diagnostics[0].Location)
	}
}
