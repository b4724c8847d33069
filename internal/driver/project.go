package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"cbrace/internal/diag"
	"cbrace/internal/project"
	"cbrace/internal/source"
)

// ProjectResult is the outcome of formatting an STM32CubeIDE project.
type ProjectResult struct {
	Root    string
	FileSet *source.FileSet
	Files   []FormatResult
	// Bag holds project-level diagnostics (missing directories).
	Bag *diag.Bag
}

// PrefixedOutput returns the sibling path <dir>/<prefix><base>.
func PrefixedOutput(path, prefix string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, prefix+base)
}

// FormatProject rewrites the source directories of a project in place.
// dirs are relative to projectDir (Core/Src and Core/Inc for STM32CubeIDE).
// Directories are listed without recursion and filtered by extension.
// A missing directory is reported as PRJ5001; ErrProjectDirMissing is
// returned only when none of them exist.
func FormatProject(ctx context.Context, projectDir string, dirs []string, opts FormatOptions) (*ProjectResult, error) {
	if len(dirs) == 0 {
		dirs = project.DefaultConfig().STM32.Dirs
	}
	res := &ProjectResult{Root: projectDir, Bag: diag.NewBag(opts.maxDiagnostics())}
	reporter := diag.BagReporter{Bag: res.Bag}

	var files []string
	found := 0
	for _, dir := range dirs {
		full := filepath.Join(projectDir, filepath.FromSlash(dir))
		listed, err := listDir(full, opts.extensions())
		if errors.Is(err, fs.ErrNotExist) {
			diag.ReportWarning(reporter, diag.ProjMissingDir, source.Span{},
				fmt.Sprintf("project directory %s not found", full)).Emit()
			continue
		}
		if err != nil {
			return res, fmt.Errorf("%w: %s: %w", source.ErrSourceUnavailable, full, err)
		}
		found++
		files = append(files, listed...)
	}
	if found == 0 {
		return res, fmt.Errorf("%w: %s", ErrProjectDirMissing, projectDir)
	}
	if len(files) == 0 {
		return res, nil
	}

	// в режиме проекта всегда перезаписываем на месте
	opts.OutputPrefix = ""
	if opts.BaseDir == "" {
		opts.BaseDir = projectDir
	}
	fileSet, results, err := FormatFiles(ctx, files, opts)
	res.FileSet = fileSet
	res.Files = results
	return res, err
}

func listDir(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	filter := project.FormatConfig{Extensions: exts}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !filter.HasExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
