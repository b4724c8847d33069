package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cbrace/internal/driver"
)

// runRoot formats the file given as argument, or every file listed on
// stdin, into a prefixed sibling and points the user at it.
func runRoot(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths, err = readPathList(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read file list: %w", err)
		}
		if len(paths) == 0 {
			return cmd.Usage()
		}
	}

	opts, err := settings.formatOptions(cmd)
	if err != nil {
		return err
	}
	opts.OutputPrefix = settings.cfg.Format.OutputPrefix
	if opts.OutputPrefix == "" {
		opts.OutputPrefix = "new_"
	}

	fileSet, results, err := driver.FormatFiles(cmd.Context(), paths, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := false
	for i := range results {
		res := &results[i]
		if res.Failed() {
			failed = true
			fmt.Fprintf(cmd.ErrOrStderr(), "cbrace: %s: %v\n", res.Path, res.Err)
		} else {
			fmt.Fprintf(out, "Please see %s\n", res.OutputPath)
		}
		settings.printDiagnostics(cmd.ErrOrStderr(), res.Bag, fileSet)
	}
	settings.printTimings(cmd.ErrOrStderr(), opts.Timer)
	if failed {
		return errFailed
	}
	return nil
}

// readPathList reads newline-delimited paths, skipping blank lines.
func readPathList(r io.Reader) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths, scanner.Err()
}
