package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cbrace/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cbrace [file]",
	Short: "Brace normalizer and comment stripper for C sources",
	Long: `cbrace moves opening braces that start a line onto the end of the previous
line and strips // and /* */ comments from .c and .h files.

With a file argument the result is written next to it as new_<file>.
Without arguments file names are read from stdin, one per line.`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              runRoot,
	PersistentPreRunE: preRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// errFailed is returned when per-file failures were already reported.
var errFailed = errors.New("cbrace: some files failed")

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(stmCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("config", "", "path to cbrace.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "do not use the format cache")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
	addFormatFlags(rootCmd)
}

// main executes the root command. Any error exits with status 1.
func main() {
	err := rootCmd.Execute()
	finishProfiling()
	finishTracing(err != nil)
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func preRun(cmd *cobra.Command, _ []string) error {
	if err := setupProfiling(cmd); err != nil {
		return err
	}
	return setupTracing(cmd)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
