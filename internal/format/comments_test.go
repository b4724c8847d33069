package format

import (
	"errors"
	"slices"
	"strconv"
	"testing"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		removed int
	}{
		{
			name:    "unclosed opener after code",
			in:      []string{"int x; /* comment", "still comment */", "int y;"},
			want:    []string{"int y;"},
			removed: 2,
		},
		{
			name: "line comment keeps prefix verbatim",
			in:   []string{"int x = 5; // set x"},
			want: []string{"int x = 5; "},
		},
		{
			name:    "block comment on its own lines",
			in:      []string{"/*", " * header", " */", "int a;"},
			want:    []string{"int a;"},
			removed: 3,
		},
		{
			name:    "single line block comment as first token",
			in:      []string{"  /* note */", "int a;"},
			want:    []string{"int a;"},
			removed: 1,
		},
		{
			name: "closed block comment after code is truncated",
			in:   []string{"int a; /* note */ int b;"},
			want: []string{"int a; "},
		},
		{
			name:    "code after closer goes with the comment",
			in:      []string{"/* a", "b */ int c;", "int d;"},
			want:    []string{"int d;"},
			removed: 2,
		},
		{
			name:    "closing line reopens a comment",
			in:      []string{"/* a", "b */ /* c", "d */", "int e;"},
			want:    []string{"int e;"},
			removed: 3,
		},
		{
			name: "earliest marker wins",
			in:   []string{"x = 1; //* odd"},
			want: []string{"x = 1; "},
		},
		{
			name: "untouched code",
			in:   []string{"int a;", "", "a = b / c * d;"},
			want: []string{"int a;", "", "a = b / c * d;"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats, err := StripComments(tt.in, nil)
			if err != nil {
				t.Fatalf("StripComments: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("StripComments(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if stats.RemovedLines != tt.removed {
				t.Errorf("expected %d removed lines, got %d", tt.removed, stats.RemovedLines)
			}
		})
	}
}

func TestStripCommentsUnterminated(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		line int
	}{
		{"opener on last line", []string{"int a;", "/* never"}, 2},
		{"opener after code", []string{"int a; /* open", "more"}, 1},
		{"reopened and never closed", []string{"/* a", "b */ /* c"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			got, _, err := StripComments(tt.in, rec)
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("expected ErrMalformedInput, got %v", err)
			}
			var uerr *UnterminatedCommentError
			if !errors.As(err, &uerr) || uerr.Line != tt.line {
				t.Fatalf("expected unterminated comment at line %d, got %v", tt.line, err)
			}
			if got != nil {
				t.Errorf("expected no output, got %q", got)
			}
			if len(rec.entries) != 1 || rec.entries[0] != "error FMT1003 line "+strconv.Itoa(tt.line) {
				t.Errorf("unexpected reports %q", rec.entries)
			}
		})
	}
}

func TestStripCommentsReportsCodeAfterCloser(t *testing.T) {
	rec := &recorder{}
	_, _, err := StripComments([]string{"/* a", "*/ int c;"}, rec)
	if err != nil {
		t.Fatalf("StripComments: %v", err)
	}
	want := []string{"info FMT1004 line 1", "warning FMT1005 line 2"}
	if !slices.Equal(rec.entries, want) {
		t.Errorf("reports = %q, want %q", rec.entries, want)
	}
}

func TestStripCommentsCloserPosition(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{"overlapping opener", []string{"/*/ x */"}, []string{"info FMT1004 line 1"}},
		{"overlapping opener with code", []string{"/*/ x */ int a;"}, []string{"info FMT1004 line 1", "warning FMT1005 line 1"}},
		{"star before closer", []string{"/* a", "**/"}, []string{"info FMT1004 line 1"}},
		{"second comment on closing line", []string{"/* a", "*/ /* b */"}, []string{"info FMT1004 line 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			if _, _, err := StripComments(tt.lines, rec); err != nil {
				t.Fatalf("StripComments: %v", err)
			}
			if !slices.Equal(rec.entries, tt.want) {
				t.Errorf("reports = %q, want %q", rec.entries, tt.want)
			}
		})
	}
}
