package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cbrace/internal/diag"
	"cbrace/internal/format"
	"cbrace/internal/observ"
)

var stripAll = format.Options{StripComments: true, BraceBeforeComment: true}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestFormatPathsInPlace(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.c")
	writeFile(t, main, "int main(void)\n{\n    return 0; // done\n}\n")

	_, results, err := FormatPaths(context.Background(), []string{main}, FormatOptions{Options: stripAll})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.Err != nil || !res.Changed || res.OutputPath != main {
		t.Fatalf("unexpected result %+v", res)
	}
	want := "int main(void) {\n    return 0; \n}\n"
	if got := readFile(t, main); got != want {
		t.Errorf("formatted file = %q, want %q", got, want)
	}
	if res.Stats.Merges != 1 || res.Stats.TruncatedLines != 1 {
		t.Errorf("unexpected stats %+v", res.Stats)
	}
}

func TestFormatPathsPrefixedOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "led.c")
	content := "void led_on(void)\n{\n}\n"
	writeFile(t, src, content)

	_, results, err := FormatPaths(context.Background(), []string{src}, FormatOptions{OutputPrefix: "new_"})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	out := filepath.Join(dir, "new_led.c")
	if results[0].OutputPath != out {
		t.Fatalf("output path = %q, want %q", results[0].OutputPath, out)
	}
	if got := readFile(t, out); got != "void led_on(void) {\n}\n" {
		t.Errorf("prefixed output = %q", got)
	}
	if got := readFile(t, src); got != content {
		t.Errorf("source must stay untouched, got %q", got)
	}
}

func TestFormatPathsPrefixedWritesUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ok.c")
	writeFile(t, src, "int x;\n")

	_, results, err := FormatPaths(context.Background(), []string{src}, FormatOptions{OutputPrefix: "new_"})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if results[0].Changed {
		t.Error("expected unchanged result")
	}
	if got := readFile(t, filepath.Join(dir, "new_ok.c")); got != "int x;\n" {
		t.Errorf("sibling = %q", got)
	}
}

func TestFormatPathsCheckAndStdout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.c")
	content := "if (x)\n{\n}\n"
	writeFile(t, src, content)

	_, results, err := FormatPaths(context.Background(), []string{src}, FormatOptions{Check: true, Stdout: true, Diff: true, BaseDir: dir})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	res := results[0]
	if !res.Changed || res.OutputPath != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if string(res.Formatted) != "if (x) {\n}\n" {
		t.Errorf("formatted = %q", res.Formatted)
	}
	wantDiff := "--- a/a.c\n+++ b/a.c\n@@ -1,3 +1,2 @@\n-if (x)\n-{\n+if (x) {\n }\n"
	if res.Diff != wantDiff {
		t.Errorf("diff = %q, want %q", res.Diff, wantDiff)
	}
	if got := readFile(t, src); got != content {
		t.Errorf("check mode modified the file: %q", got)
	}
}

func TestFormatPathsWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "b.c"), "int b;\n")
	writeFile(t, filepath.Join(dir, "src", "a.h"), "int a;\n")
	writeFile(t, filepath.Join(dir, "src", "notes.txt"), "{\n")
	writeFile(t, filepath.Join(dir, "src", "deep", "c.c"), "int c;\n")

	_, results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{Check: true})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	var names []string
	for _, r := range results {
		rel, _ := filepath.Rel(dir, r.Path)
		names = append(names, filepath.ToSlash(rel))
	}
	want := "src/a.h,src/b.c,src/deep/c.c"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("collected %s, want %s", got, want)
	}
}

func TestFormatPathsNoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.md"), "x\n")
	_, _, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{})
	if !errors.Is(err, ErrNoSourceFiles) {
		t.Fatalf("expected ErrNoSourceFiles, got %v", err)
	}
}

func TestFormatFilesIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.c")
	bad := filepath.Join(dir, "bad.c")
	missing := filepath.Join(dir, "missing.c")
	writeFile(t, good, "int x; // x\n")
	writeFile(t, bad, "int a;\n/* never closed\nint b;\n")

	_, results, err := FormatFiles(context.Background(), []string{bad, missing, good}, FormatOptions{Options: stripAll})
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}

	tests := []struct {
		idx  int
		kind ErrorKind
		code diag.Code
	}{
		{0, KindMalformedInput, diag.FmtUnterminatedBlockComment},
		{1, KindSourceUnavailable, diag.IOLoadFileError},
		{2, KindNone, 0},
	}
	for _, tt := range tests {
		res := results[tt.idx]
		if res.Kind != tt.kind {
			t.Errorf("%s: kind = %q, want %q (err %v)", res.Path, res.Kind, tt.kind, res.Err)
		}
		if tt.code != 0 && !hasCode(res.Bag, tt.code) {
			t.Errorf("%s: expected %s diagnostic", res.Path, tt.code.ID())
		}
	}
	if got := readFile(t, bad); got != "int a;\n/* never closed\nint b;\n" {
		t.Errorf("malformed file must stay untouched, got %q", got)
	}
	if got := readFile(t, good); got != "int x; \n" {
		t.Errorf("good file = %q", got)
	}
}

func TestFormatFilesRewritesCRLF(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "crlf.c")
	writeFile(t, src, "int x;\r\nint y;\r\n")

	_, results, err := FormatFiles(context.Background(), []string{src}, FormatOptions{})
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	if !results[0].Changed {
		t.Error("CRLF input should count as changed")
	}
	if got := readFile(t, src); got != "int x;\nint y;\n" {
		t.Errorf("rewritten = %q", got)
	}
}

func TestFormatFilesEncoding(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "legacy.c")
	writeFile(t, src, "int t; // 25\xB0C\nvoid f(void)\n{\n}\n")

	_, results, err := FormatFiles(context.Background(), []string{src}, FormatOptions{Encoding: "windows-1252"})
	if err != nil || results[0].Err != nil {
		t.Fatalf("FormatFiles: %v / %v", err, results[0].Err)
	}
	// без stripping комментарий остаётся в исходной кодировке
	if got := readFile(t, src); got != "int t; // 25\xB0C\nvoid f(void) {\n}\n" {
		t.Errorf("re-encoded output = %q", got)
	}
}

func TestFormatFilesParallelKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.c", "b.c", "c.c", "d.c", "e.c"} {
		p := filepath.Join(dir, name)
		writeFile(t, p, "void "+strings.TrimSuffix(name, ".c")+"(void)\n{\n}\n")
		files = append(files, p)
	}

	var mu sync.Mutex
	done := 0
	sink := SinkFunc(func(evt Event) {
		if evt.Stage == StageWrite && evt.Status == StatusDone {
			mu.Lock()
			done++
			mu.Unlock()
		}
	})
	timer := observ.NewTimer()
	_, results, err := FormatFiles(context.Background(), files, FormatOptions{Jobs: 3, Progress: sink, Timer: timer})
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	for i, res := range results {
		if res.Path != files[i] {
			t.Errorf("result %d is %s, want %s", i, res.Path, files[i])
		}
		if res.Stats.Merges != 1 {
			t.Errorf("%s: merges = %d", res.Path, res.Stats.Merges)
		}
	}
	if done != len(files) {
		t.Errorf("expected %d write events, got %d", len(files), done)
	}
	for _, p := range timer.Report().Phases {
		if p.Name == string(StageBraces) && p.Count != len(files) {
			t.Errorf("braces phase counted %d times", p.Count)
		}
	}
}

func TestFormatFilesCanceled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.c")
	writeFile(t, src, "{\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, results, err := FormatFiles(ctx, []string{src}, FormatOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if results[0].Kind != KindCanceled {
		t.Errorf("kind = %q", results[0].Kind)
	}
}

func TestFormatFilesUsesCache(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	src := filepath.Join(dir, "a.c")
	writeFile(t, src, "if (x)\n{\n}\n")
	opts := FormatOptions{Cache: cache}

	_, first, err := FormatFiles(context.Background(), []string{src}, opts)
	if err != nil || first[0].Cached || !first[0].Changed {
		t.Fatalf("first run: %+v, %v", first[0], err)
	}
	// после записи файл уже отформатирован и должен попасть в кэш
	_, second, err := FormatFiles(context.Background(), []string{src}, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second[0].Cached || second[0].Changed {
		t.Errorf("second run should be a cache hit: %+v", second[0])
	}
}

func TestFormatFilesCacheMatchesUncachedRun(t *testing.T) {
	// "struct Foo" без ')' снова становится целью слияния после первого прохода
	const input = "typedef int T;\nstruct Foo\n{\n    int a;\n};\n"
	run := func(t *testing.T, withCache bool) (FormatResult, string) {
		t.Helper()
		dir := t.TempDir()
		var opts FormatOptions
		if withCache {
			cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
			if err != nil {
				t.Fatalf("OpenDiskCacheAt: %v", err)
			}
			opts.Cache = cache
		}
		src := filepath.Join(dir, "a.c")
		writeFile(t, src, input)
		var last FormatResult
		for range 2 {
			_, results, err := FormatFiles(context.Background(), []string{src}, opts)
			if err != nil {
				t.Fatalf("FormatFiles: %v", err)
			}
			last = results[0]
		}
		return last, readFile(t, src)
	}

	cached, cachedOut := run(t, true)
	plain, plainOut := run(t, false)
	if !plain.Changed {
		t.Fatalf("second uncached run should rewrite the file: %+v", plain)
	}
	if cached.Cached || !cached.Changed {
		t.Fatalf("unstable output must not be served from cache: %+v", cached)
	}
	if cachedOut != plainOut {
		t.Errorf("cached run left %q, uncached run produced %q", cachedOut, plainOut)
	}
}

func TestPrefixedOutput(t *testing.T) {
	got := PrefixedOutput(filepath.Join("Core", "Src", "main.c"), "new_")
	if want := filepath.Join("Core", "Src", "new_main.c"); got != want {
		t.Errorf("PrefixedOutput = %q, want %q", got, want)
	}
	if got := PrefixedOutput("main.c", "new_"); got != "new_main.c" {
		t.Errorf("PrefixedOutput = %q", got)
	}
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}
