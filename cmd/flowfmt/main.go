package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flowfmt/internal/version"
)

// errReported marks failures whose message was already printed; main only
// turns them into exit status 1.
var errReported = errors.New("already reported")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flowfmt [flags] <file|directory>...",
		Short: "Format FlowLang source files",
		Long: `flowfmt re-indents FlowLang source from its block keywords:
a trailing do/then opens a block, a leading end/else closes it.

  flowfmt main.flow             format and overwrite main.flow
  flowfmt --check main.flow     exit 1 if main.flow needs formatting
  flowfmt --stdin < in.flow     format standard input to standard output`,
		Args:          cobra.ArbitraryArgs,
		RunE:          runFormat,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = version.Version

	addFormatFlags(rootCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("config", "", "path to flowfmt.toml or .flowfmt.yaml (default: discovered)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return applyColorMode(cmd)
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newWatchCmd())
	return rootCmd
}

// main builds the CLI and executes it. Any error exits with status 1.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
