package format

import (
	"slices"
	"testing"
)

func TestCheckTokens(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"lone brace", "{", true},
		{"indented brace", "    {", true},
		{"struct header", "struct Foo {", true},
		{"else branch", "} else {", true},
		{"paren before brace", ") {", false},
		{"function header", "void foo(int a) {", false},
		{"control header", "if (x > 0) {", false},
		{"no brace", "if (x > 0)", false},
		{"brace glued to text", "{}", false},
		{"empty", "", false},
		{"brace after paren token", "while (1) { x++; }", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckTokens(Tokenize(tt.line)); got != tt.want {
				t.Errorf("CheckTokens(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestNormalizeBraces(t *testing.T) {
	tests := []struct {
		name   string
		in     []string
		opts   Options
		want   []string
		merges int
	}{
		{
			name:   "control statement",
			in:     []string{"if (x > 0)", "{", "  return 1;", "}"},
			want:   []string{"if (x > 0) {", "  return 1;", "}"},
			merges: 1,
		},
		{
			name: "brace on first line stays",
			in:   []string{"{", "int x;", "}"},
			want: []string{"{", "int x;", "}"},
		},
		{
			name: "same line brace untouched",
			in:   []string{"int main(void) {", "  return 0;", "}"},
			want: []string{"int main(void) {", "  return 0;", "}"},
		},
		{
			name:   "indented brace",
			in:     []string{"while (1)", "    {", "    }"},
			want:   []string{"while (1) {", "    }"},
			merges: 1,
		},
		{
			name:   "struct header is merged",
			in:     []string{"typedef", "struct Foo {", "  int x;", "} foo_t;"},
			want:   []string{"typedef {", "  int x;", "} foo_t;"},
			merges: 1,
		},
		{
			name:   "consecutive braces",
			in:     []string{"if (a)", "{", "{"},
			want:   []string{"if (a) { {"},
			merges: 2,
		},
		{
			name:   "brace lands after trailing comment by default",
			in:     []string{"if (x) // check", "{"},
			want:   []string{"if (x) // check {"},
			merges: 1,
		},
		{
			name:   "brace before trailing comment",
			in:     []string{"if (x)   // check", "{"},
			opts:   Options{BraceBeforeComment: true},
			want:   []string{"if (x) { // check"},
			merges: 1,
		},
		{
			name:   "comment-only target keeps brace at the end",
			in:     []string{"/* header */", "{"},
			opts:   Options{BraceBeforeComment: true},
			want:   []string{"/* header */ {"},
			merges: 1,
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats := NormalizeBraces(tt.in, tt.opts, nil)
			if !slices.Equal(got, tt.want) {
				t.Errorf("NormalizeBraces(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if stats.Merges != tt.merges {
				t.Errorf("expected %d merges, got %d", tt.merges, stats.Merges)
			}
			if len(got) != len(tt.in)-stats.Merges {
				t.Errorf("output length %d != input length %d - merges %d", len(got), len(tt.in), stats.Merges)
			}
		})
	}
}

func TestNormalizeBracesDoesNotModifyInput(t *testing.T) {
	in := []string{"for (;;)", "{", "}"}
	orig := slices.Clone(in)
	NormalizeBraces(in, Options{}, nil)
	if !slices.Equal(in, orig) {
		t.Fatalf("input modified: %q", in)
	}
}

func TestNormalizeBracesIdempotent(t *testing.T) {
	inputs := [][]string{
		{"int main(void)", "{", "  if (x)", "  {", "    y();", "  }", "}"},
		{"{", "a;", "}"},
		{"void f(int a)", "{", "  while (a--)", "  {", "  }", "}"},
	}
	for _, in := range inputs {
		once, _ := NormalizeBraces(in, Options{}, nil)
		twice, stats := NormalizeBraces(once, Options{}, nil)
		if !slices.Equal(once, twice) {
			t.Errorf("second run changed output:\nfirst:  %q\nsecond: %q", once, twice)
		}
		if stats.Merges != 0 {
			t.Errorf("expected no merges on second run, got %d", stats.Merges)
		}
	}
}

func TestNormalizeBracesReportsDiscardedContent(t *testing.T) {
	rec := &recorder{}
	_, stats := NormalizeBraces([]string{"if (a)", "  x();", "} else {"}, Options{}, rec)
	if stats.Discarded != 1 {
		t.Fatalf("expected 1 discarded merge, got %d", stats.Discarded)
	}
	want := []string{
		"info FMT1001 line 3",
		"warning FMT1002 line 3",
	}
	if !slices.Equal(rec.entries, want) {
		t.Errorf("reports = %q, want %q", rec.entries, want)
	}
}
