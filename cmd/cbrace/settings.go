package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cbrace/internal/diag"
	"cbrace/internal/diagfmt"
	"cbrace/internal/driver"
	"cbrace/internal/format"
	"cbrace/internal/observ"
	"cbrace/internal/project"
	"cbrace/internal/source"
)

// cliSettings merges cbrace.toml with global flags.
type cliSettings struct {
	cfg            project.Config
	manifestPath   string
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
	noCache        bool
}

func loadSettings(cmd *cobra.Command) (*cliSettings, error) {
	flags := cmd.Root().PersistentFlags()
	s := &cliSettings{cfg: project.DefaultConfig()}

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	s.color, err = resolveColor(colorFlag, os.Stderr)
	if err != nil {
		return nil, err
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	if s.noCache, err = flags.GetBool("no-cache"); err != nil {
		return nil, err
	}

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		cfg, loadErr := project.LoadConfig(configPath)
		if loadErr != nil {
			return nil, s.manifestFailure(cmd.ErrOrStderr(), loadErr)
		}
		s.cfg, s.manifestPath = cfg, configPath
		return s, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	manifest, ok, err := project.LoadManifest(wd)
	if err != nil {
		return nil, s.manifestFailure(cmd.ErrOrStderr(), err)
	}
	if ok {
		s.cfg, s.manifestPath = manifest.Config, manifest.Path
	}
	return s, nil
}

// manifestFailure reports an unusable cbrace.toml as PRJ5002. Other errors
// are returned as they are.
func (s *cliSettings) manifestFailure(w io.Writer, err error) error {
	if !errors.Is(err, project.ErrInvalidManifest) {
		return err
	}
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.ProjInvalidManifest, source.Span{}, err.Error()))
	diagfmt.Pretty(w, bag, source.NewFileSet(), diagfmt.PrettyOpts{Color: s.color})
	return errFailed
}

func resolveColor(mode string, f *os.File) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

// addFormatFlags registers flags that override the [format] table.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("strip-comments", true, "remove // and /* */ comments")
	cmd.Flags().Bool("brace-before-comment", true, "put a merged '{' before a trailing comment")
	cmd.Flags().String("encoding", "", "source encoding (WHATWG label, default utf-8)")
	cmd.Flags().Int("jobs", 1, "number of files formatted concurrently")
}

// formatOptions builds driver options from cbrace.toml, overridden by flags
// the user set explicitly.
func (s *cliSettings) formatOptions(cmd *cobra.Command) (driver.FormatOptions, error) {
	fc := s.cfg.Format
	opts := format.Options{StripComments: fc.StripComments, BraceBeforeComment: fc.BraceBeforeComment}
	encoding := fc.Encoding

	flags := cmd.Flags()
	var err error
	if flags.Changed("strip-comments") {
		if opts.StripComments, err = flags.GetBool("strip-comments"); err != nil {
			return driver.FormatOptions{}, err
		}
	}
	if flags.Changed("brace-before-comment") {
		if opts.BraceBeforeComment, err = flags.GetBool("brace-before-comment"); err != nil {
			return driver.FormatOptions{}, err
		}
	}
	if flags.Changed("encoding") {
		if encoding, err = flags.GetString("encoding"); err != nil {
			return driver.FormatOptions{}, err
		}
	}
	if _, err = source.LookupEncoding(encoding); err != nil {
		return driver.FormatOptions{}, err
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return driver.FormatOptions{}, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return driver.FormatOptions{}, err
	}
	fo := driver.FormatOptions{
		Options:        opts,
		Encoding:       encoding,
		Extensions:     fc.Extensions,
		MaxDiagnostics: s.maxDiagnostics,
		Jobs:           jobs,
		BaseDir:        wd,
	}
	if s.timings {
		fo.Timer = observ.NewTimer()
	}
	return fo, nil
}

// openCache returns the format cache, or nil when disabled or unavailable.
func (s *cliSettings) openCache(errOut io.Writer) *driver.DiskCache {
	if s.noCache {
		return nil
	}
	cache, err := driver.OpenDiskCache("cbrace")
	if err != nil {
		if !s.quiet {
			fmt.Fprintf(errOut, "warning: format cache disabled: %v\n", err)
		}
		return nil
	}
	return cache
}

func (s *cliSettings) printDiagnostics(w io.Writer, bag *diag.Bag, fileSet *source.FileSet) {
	if s.quiet || bag == nil || bag.Len() == 0 || fileSet == nil {
		return
	}
	bag.Sort()
	diagfmt.Pretty(w, bag, fileSet, diagfmt.PrettyOpts{
		Color:     s.color,
		Context:   1,
		PathMode:  diagfmt.PathModeRelative,
		Width:     120,
		ShowNotes: true,
	})
}

func (s *cliSettings) printTimings(w io.Writer, timer *observ.Timer) {
	if timer == nil || !s.timings {
		return
	}
	printTimings(w, timer)
}
