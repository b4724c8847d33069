package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cbrace/internal/diag"
	"cbrace/internal/diagfmt"
	"cbrace/internal/driver"
	"cbrace/internal/source"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [path...]",
	Short: "Format C sources in place",
	Long: `Format .c and .h files in place. Directories are walked recursively;
files named explicitly are formatted whatever their extension.
Without paths the current directory is formatted.`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "check if files are properly formatted")
	fmtCmd.Flags().Bool("diff", false, "print a unified diff of the changes")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	fmtCmd.Flags().Bool("verify", false, "check that formatting the result again changes nothing")
	fmtCmd.Flags().Bool("clear-cache", false, "drop the format cache before running")
	addFormatFlags(fmtCmd)
}

type fmtFlags struct {
	check, diff, stdout, verify bool
	clearCache                  bool
	format                      string
	ui                          uiMode
}

func readFmtFlags(cmd *cobra.Command) (fmtFlags, error) {
	var f fmtFlags
	var err error
	flags := cmd.Flags()
	if f.check, err = flags.GetBool("check"); err != nil {
		return f, err
	}
	if f.diff, err = flags.GetBool("diff"); err != nil {
		return f, err
	}
	if f.stdout, err = flags.GetBool("stdout"); err != nil {
		return f, err
	}
	if f.verify, err = flags.GetBool("verify"); err != nil {
		return f, err
	}
	if f.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return f, err
	}
	if f.format, err = flags.GetString("format"); err != nil {
		return f, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return f, err
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}

	if f.stdout && f.check {
		return f, fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	if f.stdout && f.format != "text" {
		return f, fmt.Errorf("fmt: --stdout is only supported with text output")
	}
	if f.format != "text" && f.format != "json" {
		return f, fmt.Errorf("fmt: unsupported output format %q", f.format)
	}
	return f, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	flags, err := readFmtFlags(cmd)
	if err != nil {
		return err
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	opts, err := settings.formatOptions(cmd)
	if err != nil {
		return err
	}
	opts.Check = flags.check
	opts.Stdout = flags.stdout
	opts.Diff = flags.diff
	opts.Cache = settings.openCache(cmd.ErrOrStderr())
	if flags.clearCache && opts.Cache != nil {
		if err := opts.Cache.DropAll(); err != nil {
			return fmt.Errorf("fmt: clear cache %s: %w", opts.Cache.Dir(), err)
		}
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := driver.CollectSourceFiles(cmd.Context(), args, opts.Extensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return driver.ErrNoSourceFiles
	}

	var (
		fileSet *source.FileSet
		results []driver.FormatResult
	)
	if flags.format == "text" && !flags.stdout && !settings.quiet && shouldUseTUI(flags.ui) {
		fileSet, results, err = runFormatWithUI(cmd.Context(), "formatting", files, opts)
	} else {
		fileSet, results, err = driver.FormatFiles(cmd.Context(), files, opts)
	}
	if err != nil {
		return err
	}

	var hasErrors, hasChanges bool
	switch flags.format {
	case "text":
		if flags.stdout {
			renderFmtStdout(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, &hasErrors)
		} else {
			renderFmtText(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, flags, settings.quiet, &hasErrors, &hasChanges)
		}
		for i := range results {
			settings.printDiagnostics(cmd.ErrOrStderr(), results[i].Bag, fileSet)
		}
		if flags.verify {
			verifyResults(cmd.ErrOrStderr(), fileSet, results, opts)
		}
		settings.printTimings(cmd.ErrOrStderr(), opts.Timer)
	case "json":
		if err := renderFmtJSON(cmd.OutOrStdout(), fileSet, results, flags.check, opts); err != nil {
			return err
		}
		for i := range results {
			hasErrors = hasErrors || results[i].Failed()
			hasChanges = hasChanges || results[i].Changed
		}
	}

	if hasErrors {
		return fmt.Errorf("fmt: failed to format some files")
	}
	if flags.check && hasChanges {
		return fmt.Errorf("fmt: formatting changes required")
	}
	return nil
}

func renderFmtStdout(out, errOut io.Writer, results []driver.FormatResult, hasErrors *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}

		_, _ = out.Write(res.Formatted)
	}
}

func renderFmtText(out, errOut io.Writer, results []driver.FormatResult, flags fmtFlags, quiet bool, hasErrors, hasChanges *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		if !res.Changed {
			continue
		}
		*hasChanges = true
		if flags.diff {
			_, printErr := io.WriteString(out, res.Diff)
			if printErr != nil {
				panic(printErr)
			}
			continue
		}
		if quiet {
			continue
		}

		line := "reformatted " + res.Path
		if flags.check {
			line = res.Path
		}
		_, printErr := fmt.Fprintln(out, line)
		if printErr != nil {
			panic(printErr)
		}
	}
}

func verifyResults(errOut io.Writer, fileSet *source.FileSet, results []driver.FormatResult, opts driver.FormatOptions) {
	for _, res := range results {
		if res.Failed() || res.Cached {
			continue
		}
		file := fileSet.Get(res.FileID)
		if file == nil {
			continue
		}
		if ok, msg := driver.RunFmtCheck(file, opts.Options); !ok {
			fmt.Fprintf(errOut, "%s: %s\n", res.Path, msg)
		}
	}
}

type jsonResult struct {
	Path        string                    `json:"path"`
	Output      string                    `json:"output,omitempty"`
	Changed     bool                      `json:"changed"`
	Cached      bool                      `json:"cached,omitempty"`
	Error       string                    `json:"error,omitempty"`
	ErrorKind   string                    `json:"error_kind,omitempty"`
	Merges      int                       `json:"merges"`
	Removed     int                       `json:"removed_lines"`
	Truncated   int                       `json:"truncated_lines"`
	Diff        string                    `json:"diff,omitempty"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

type jsonReport struct {
	Check   bool                       `json:"check"`
	Files   []jsonResult               `json:"files"`
	Timings *diagfmt.DiagnosticsOutput `json:"timings,omitempty"`
}

func renderFmtJSON(out io.Writer, fileSet *source.FileSet, results []driver.FormatResult, check bool, opts driver.FormatOptions) error {
	report := jsonReport{Check: check, Files: make([]jsonResult, 0, len(results))}
	jsonOpts := diagfmt.JSONOpts{IncludePositions: true, PathMode: diagfmt.PathModeRelative, IncludeNotes: true, IncludeInfo: true}
	for _, res := range results {
		jr := jsonResult{
			Path:      res.Path,
			Output:    res.OutputPath,
			Changed:   res.Changed,
			Cached:    res.Cached,
			ErrorKind: string(res.Kind),
			Merges:    res.Stats.Merges,
			Removed:   res.Stats.RemovedLines,
			Truncated: res.Stats.TruncatedLines,
			Diff:      res.Diff,
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		if res.Bag != nil {
			res.Bag.Sort()
			jr.Diagnostics = diagfmt.BuildDiagnosticsOutput(res.Bag, fileSet, jsonOpts)
		}
		report.Files = append(report.Files, jr)
	}
	if opts.Timer != nil {
		bag := diag.NewBag(1)
		driver.AppendTimings(bag, opts.Timer, "fmt", len(results))
		timings := diagfmt.BuildDiagnosticsOutput(bag, fileSet, jsonOpts)
		report.Timings = &timings
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
