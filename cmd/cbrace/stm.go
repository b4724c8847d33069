package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cbrace/internal/driver"
	"cbrace/internal/source"
)

var stmCmd = &cobra.Command{
	Use:   "stm <project>",
	Short: "Format an STM32CubeIDE project in place",
	Long: `Rewrite the Core/Src and Core/Inc files of an STM32CubeIDE project in place.
<project> is a project name inside the workspace ([stm32] workspace in
cbrace.toml, or --workspace) or a path to the project directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runStm,
}

func init() {
	stmCmd.Flags().String("workspace", "", "STM32CubeIDE workspace directory")
	addFormatFlags(stmCmd)
}

func runStm(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workspace") {
		if settings.cfg.STM32.Workspace, err = cmd.Flags().GetString("workspace"); err != nil {
			return err
		}
	}
	projectDir, err := resolveProjectDir(settings, args[0])
	if err != nil {
		return err
	}

	opts, err := settings.formatOptions(cmd)
	if err != nil {
		return err
	}
	opts.Cache = settings.openCache(cmd.ErrOrStderr())

	res, err := driver.FormatProject(cmd.Context(), projectDir, settings.cfg.STM32.Dirs, opts)
	settings.printDiagnostics(cmd.ErrOrStderr(), res.Bag, source.NewFileSet())
	if err != nil {
		return err
	}

	failed := false
	for i := range res.Files {
		file := &res.Files[i]
		abs, absErr := filepath.Abs(file.Path)
		if absErr != nil {
			abs = file.Path
		}
		if file.Failed() {
			failed = true
			fmt.Fprintf(cmd.ErrOrStderr(), "cbrace: %s: %v\n", abs, file.Err)
		} else if !settings.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Updating %s\n", abs)
		}
		settings.printDiagnostics(cmd.ErrOrStderr(), file.Bag, res.FileSet)
	}
	settings.printTimings(cmd.ErrOrStderr(), opts.Timer)
	if failed {
		return errFailed
	}
	return nil
}

// resolveProjectDir treats a bare name as a project inside the workspace.
func resolveProjectDir(settings *cliSettings, arg string) (string, error) {
	if filepath.IsAbs(arg) || filepath.Base(arg) != arg || arg == "." {
		return filepath.Abs(arg)
	}
	ws, err := settings.cfg.STM32.WorkspaceDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(ws, arg), nil
}
