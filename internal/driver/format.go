package driver

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"time"

	"cbrace/internal/diag"
	"cbrace/internal/format"
	"cbrace/internal/observ"
	"cbrace/internal/project"
	"cbrace/internal/source"
	"cbrace/internal/trace"
)

const defaultMaxDiagnostics = 256

// FormatOptions configures a batch run.
type FormatOptions struct {
	// Check reports what would change without writing anything.
	Check bool
	// Stdout returns formatted content in the results without touching files.
	Stdout bool
	// Diff attaches a unified diff to every changed result.
	Diff bool
	// OutputPrefix writes results next to the source as <prefix><name>
	// instead of replacing it. The sibling is always written.
	OutputPrefix string

	Options format.Options
	// Encoding of the sources (WHATWG label, empty for UTF-8); output is
	// written back in the same encoding.
	Encoding string
	// Extensions selects files when walking directories; defaults to .c and .h.
	Extensions []string

	MaxDiagnostics int
	// Jobs > 1 formats files concurrently; each file is still handled start
	// to finish by one goroutine.
	Jobs int

	Cache    *DiskCache
	Progress ProgressSink
	Timer    *observ.Timer
	// BaseDir is used for relative paths in diagnostics.
	BaseDir string
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path       string
	OutputPath string // пусто, если ничего не записывалось
	FileID     source.FileID
	Changed    bool
	Cached     bool
	Err        error
	Kind       ErrorKind
	Formatted  []byte
	Diff       string
	Stats      format.Stats
	Bag        *diag.Bag
}

// Failed reports whether formatting of the file did not complete.
func (r *FormatResult) Failed() bool { return r.Err != nil }

// FormatPaths formats provided files or directories (recursively collecting
// files with the configured extensions). Files named explicitly are taken
// whatever their extension.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) (*source.FileSet, []FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	files, err := CollectSourceFiles(ctx, paths, opts.extensions())
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, ErrNoSourceFiles
	}
	return FormatFiles(ctx, files, opts)
}

// FormatFiles formats exactly the given files in order. Failures are kept
// per file; the returned error is only set when ctx was canceled.
func FormatFiles(ctx context.Context, files []string, opts FormatOptions) (*source.FileSet, []FormatResult, error) {
	fileSet := source.NewFileSetWithBase(opts.BaseDir)

	ctx, span := trace.StartSpan(ctx, trace.ScopeDriver, "fmt")
	results, err := runBatch(ctx, files, opts, func(ctx context.Context, path string) FormatResult {
		return formatSingleFile(ctx, fileSet, path, opts)
	})

	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	span.WithExtra("files", strconv.Itoa(len(files))).
		WithExtra("failed", strconv.Itoa(failed)).
		End("")
	return fileSet, results, err
}

func (o FormatOptions) extensions() []string {
	if len(o.Extensions) == 0 {
		return project.DefaultConfig().Format.Extensions
	}
	return o.Extensions
}

func (o FormatOptions) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return defaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}

// writes reports whether this run may touch files on disk.
func (o FormatOptions) writes() bool {
	return !o.Check && !o.Stdout
}

func (o FormatOptions) useCache() bool {
	return o.Cache != nil && o.OutputPrefix == ""
}

type stageRun struct {
	ctx  context.Context
	opts FormatOptions
	path string
}

func (s stageRun) begin(stage Stage) *trace.Span {
	emit(s.opts.Progress, Event{File: s.path, Stage: stage, Status: StatusWorking})
	_, span := trace.StartSpan(s.ctx, trace.ScopePass, string(stage))
	return span
}

func (s stageRun) end(stage Stage, span *trace.Span, err error) time.Duration {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	elapsed := span.End(detail)
	if s.opts.Timer != nil {
		s.opts.Timer.Add(string(stage), elapsed)
	}
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	emit(s.opts.Progress, Event{File: s.path, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	return elapsed
}

func (s stageRun) skip(stage Stage) {
	emit(s.opts.Progress, Event{File: s.path, Stage: stage, Status: StatusSkipped})
}

func formatSingleFile(ctx context.Context, fileSet *source.FileSet, path string, opts FormatOptions) (result FormatResult) {
	result = FormatResult{Path: path, Bag: diag.NewBag(opts.maxDiagnostics())}
	ctx, fileSpan := trace.StartSpan(ctx, trace.ScopeFile, "file:"+path)
	defer func() {
		result.Kind = Classify(result.Err)
		if result.Err != nil {
			trace.Fail(trace.FromContext(ctx), trace.ScopeFile, path, result.Err, fileSpan.ID())
		}
		fileSpan.WithExtra("changed", strconv.FormatBool(result.Changed)).
			WithExtra("merges", strconv.Itoa(result.Stats.Merges)).
			End(string(result.Kind))
	}()
	run := stageRun{ctx: ctx, opts: opts, path: path}
	reporter := diag.BagReporter{Bag: result.Bag}

	// read
	span := run.begin(StageRead)
	fileID, err := fileSet.LoadEncoded(path, opts.Encoding)
	run.end(StageRead, span, err)
	if err != nil {
		result.Err = err
		code := diag.IOLoadFileError
		if opts.Encoding != "" {
			code = diag.IOEncodingError
		}
		diag.ReportError(reporter, code, source.Span{}, fmt.Sprintf("failed to load %s: %v", path, err)).Emit()
		return result
	}
	result.FileID = fileID
	file := fileSet.Get(fileID)
	mustRewrite := file.Flags&(source.FileHadBOM|source.FileNormalizedCRLF) != 0

	var key project.Digest
	if opts.useCache() {
		key = cacheKey(file, opts.Options, opts.Encoding)
		var payload CachePayload
		if hit, cacheErr := opts.Cache.Get(key, &payload); cacheErr == nil && hit && !payload.Changed {
			result.Cached = true
			if opts.Stdout {
				result.Formatted = slices.Clone(file.Content)
			}
			run.skip(StageBraces)
			run.skip(StageComments)
			run.skip(StageWrite)
			return result
		}
	}

	doc := format.NewDocument(file.Lines())
	fileReporter := format.FileReporter{File: file, Reporter: reporter}

	span = run.begin(StageBraces)
	doc.NormalizeBraces(opts.Options, fileReporter)
	run.end(StageBraces, span, nil)

	if opts.Options.StripComments {
		span = run.begin(StageComments)
		_, err = doc.StripComments(fileReporter)
		run.end(StageComments, span, err)
		if err != nil {
			result.Err = fmt.Errorf("%s: %w", path, err)
			return result
		}
	} else {
		run.skip(StageComments)
	}

	formatted := source.JoinLines(doc.Lines())
	result.Stats = doc.Stats()
	result.Changed = mustRewrite || !bytes.Equal(file.Content, formatted)
	if opts.Diff && result.Changed {
		result.Diff = UnifiedDiff(file.FormatPath("relative", fileSet.BaseDir()), file.Content, formatted)
	}
	if opts.Stdout {
		result.Formatted = formatted
	}

	if !opts.writes() || (opts.OutputPrefix == "" && !result.Changed) {
		run.skip(StageWrite)
	} else {
		out := path
		if opts.OutputPrefix != "" {
			out = PrefixedOutput(path, opts.OutputPrefix)
		}
		span = run.begin(StageWrite)
		err = source.WriteFile(out, formatted, source.WriteOptions{Perm: sourcePerm(path), Encoding: opts.Encoding})
		run.end(StageWrite, span, err)
		if err != nil {
			result.Err = err
			diag.ReportError(reporter, diag.IOWriteFileError, source.Span{}, fmt.Sprintf("failed to write %s: %v", out, err)).Emit()
			return result
		}
		result.OutputPath = out
	}

	if opts.useCache() {
		storeKey := key
		if result.Changed && opts.writes() {
			// записанный файл помечается неизменным, только если повторный
			// проход ничего в нём не меняет
			if !isStable(formatted, opts.Options) {
				return result
			}
			storeKey = cacheKeyFor(formatted, file.Flags&source.FileTranscoded, opts)
		}
		changed := result.Changed && !opts.writes()
		cacheEntry := &CachePayload{Path: path, Output: project.Sum(formatted), Changed: changed, Stored: time.Now()}
		_ = opts.Cache.Put(storeKey, cacheEntry)
	}
	return result
}

// isStable reports whether formatting data again yields data unchanged.
func isStable(data []byte, opts format.Options) bool {
	again, _, err := format.Source(data, opts, nil)
	return err == nil && bytes.Equal(again, data)
}

// cacheKeyFor builds the key a file would have once it holds data.
// A rewritten file has no BOM and LF endings; only the transcoding flag survives.
func cacheKeyFor(data []byte, flags source.FileFlags, opts FormatOptions) project.Digest {
	tmp := source.NewFileSet()
	return cacheKey(tmp.Get(tmp.Add("", data, flags)), opts.Options, opts.Encoding)
}

func sourcePerm(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

// CollectSourceFiles expands paths into a sorted, de-duplicated file list.
// Directories are walked recursively and filtered by exts (.c and .h when
// empty); plain files are always kept.
func CollectSourceFiles(ctx context.Context, paths, exts []string) ([]string, error) {
	filter := project.FormatConfig{Extensions: exts}
	if len(exts) == 0 {
		filter = project.DefaultConfig().Format
	}
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", source.ErrSourceUnavailable, p, err)
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if filter.HasExtension(path) {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}
