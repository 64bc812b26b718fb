package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"flowfmt/internal/driver"
	"flowfmt/internal/format"
	"flowfmt/internal/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [flags] <file|directory>...",
		Short: "Reformat FlowLang files whenever they are saved",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runWatch,
	}
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed file is reformatted")
	cmd.Flags().Int("indent", format.DefaultIndentWidth, "spaces per indent level (overrides config)")
	cmd.Flags().Bool("tabs", false, "indent with tabs (overrides config)")
	cmd.Flags().Bool("space-operators", false, "normalize spaces around binary operators (overrides config)")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	w, err := watch.New(args, watch.Options{
		Format:   driverOptions(cfg),
		Debounce: debounce,
		OnResult: func(res driver.FormatResult) {
			switch {
			case res.Err != nil:
				fmt.Fprintf(errOut, "Error: %v\n", res.Err)
			case res.Changed:
				fmt.Fprintf(out, "Formatted %s\n", res.Path)
			}
		},
		OnError: func(err error) {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		fmt.Fprintf(errOut, "watching %d path(s), debounce %s; press Ctrl+C to stop\n", len(args), debounce.Round(time.Millisecond))
	}
	return w.Run(ctx)
}
