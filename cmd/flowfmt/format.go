package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowfmt/internal/driver"
	"flowfmt/internal/fmtdiff"
	"flowfmt/internal/format"
	"flowfmt/internal/observ"
	"flowfmt/internal/ui"
)

const stdinName = "<stdin>"

func addFormatFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Bool("check", false, "check if files are formatted without writing them")
	flags.Bool("stdin", false, "format standard input to standard output")
	flags.StringP("output", "o", "", "output file (default: overwrite input)")
	flags.Bool("stdout", false, "print formatted files to standard output instead of writing them")
	flags.Bool("diff", false, "print the lines formatting changes")
	flags.String("format", "text", "report format (text|json)")
	flags.Int("jobs", 0, "max parallel workers for directories (0=auto)")
	flags.String("ui", "auto", "progress view for multi-file runs (auto|on|off)")
	flags.Bool("cache", false, "skip files the user cache records as formatted")
	flags.Bool("clear-cache", false, "drop the user format cache before running")
	flags.Int("indent", format.DefaultIndentWidth, "spaces per indent level (overrides config)")
	flags.Bool("tabs", false, "indent with tabs (overrides config)")
	flags.Bool("space-operators", false, "normalize spaces around binary operators (overrides config)")
}

type formatFlags struct {
	check, stdin, stdout, diff, quiet, timings bool
	cache, clearCache                         bool
	output, report                            string
	jobs                                      int
	ui                                        uiMode
}

func readFormatFlags(cmd *cobra.Command) (formatFlags, error) {
	var ff formatFlags
	var err error
	flags := cmd.Flags()
	if ff.check, err = flags.GetBool("check"); err != nil {
		return ff, err
	}
	if ff.stdin, err = flags.GetBool("stdin"); err != nil {
		return ff, err
	}
	if ff.stdout, err = flags.GetBool("stdout"); err != nil {
		return ff, err
	}
	if ff.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return ff, err
	}
	if ff.diff, err = flags.GetBool("diff"); err != nil {
		return ff, err
	}
	if ff.cache, err = flags.GetBool("cache"); err != nil {
		return ff, err
	}
	if ff.output, err = flags.GetString("output"); err != nil {
		return ff, err
	}
	if ff.report, err = flags.GetString("format"); err != nil {
		return ff, err
	}
	if ff.jobs, err = flags.GetInt("jobs"); err != nil {
		return ff, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return ff, err
	}
	if ff.ui, err = readUIMode(uiValue); err != nil {
		return ff, err
	}
	if ff.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return ff, err
	}
	if ff.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return ff, err
	}

	switch ff.report {
	case "text", "json":
	default:
		return ff, fmt.Errorf("unsupported output format %q (must be text or json)", ff.report)
	}
	if ff.output != "" && ff.check {
		return ff, errors.New("--output cannot be used with --check")
	}
	if ff.stdin && ff.output != "" {
		return ff, errors.New("--output cannot be used with --stdin")
	}
	if ff.stdout && (ff.check || ff.output != "" || ff.stdin) {
		return ff, errors.New("--stdout cannot be used with --check, --output or --stdin")
	}
	return ff, nil
}

func runFormat(cmd *cobra.Command, args []string) error {
	ff, err := readFormatFlags(cmd)
	if err != nil {
		return err
	}
	if !ff.stdin && len(args) == 0 {
		_ = cmd.Help()
		return errReported
	}
	if ff.stdin && len(args) > 0 {
		return errors.New("--stdin cannot be combined with file arguments")
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
	opts := driverOptions(cfg)

	if ff.stdin {
		return runStdin(cmd, ff, opts)
	}

	opts.Check = ff.check
	opts.Stdout = ff.stdout
	opts.Output = ff.output
	opts.Jobs = ff.jobs
	if ff.timings {
		opts.Timer = observ.NewTimer()
	}
	if ff.cache || ff.clearCache {
		cache, err := driver.OpenCache("flowfmt")
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		if ff.clearCache {
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
		}
		if ff.cache {
			opts.Cache = cache
		}
	}

	ctx := cmd.Context()
	var results []driver.FormatResult
	quietSuccess := ff.quiet
	var files []string
	useTUI := false
	if ff.report == "text" && !ff.stdout && ff.ui != uiModeOff {
		if files, err = driver.CollectFiles(ctx, args, opts); err != nil {
			return err
		}
		useTUI = shouldUseTUI(ff.ui, len(files))
	}
	if useTUI {
		results, err = ui.RunFormat(ctx, cmd.OutOrStdout(), "flowfmt", files, args, opts)
		quietSuccess = true
	} else {
		results, err = driver.FormatPaths(ctx, args, opts)
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: interrupted")
		return errReported
	}
	if err != nil {
		return err
	}

	var hasErrors, hasChanges bool
	switch ff.report {
	case "json":
		if err := renderFormatJSON(cmd.OutOrStdout(), results, ff.check); err != nil {
			return err
		}
		for _, res := range results {
			hasErrors = hasErrors || res.Err != nil
			hasChanges = hasChanges || res.Changed
		}
	default:
		hasErrors, hasChanges = renderFormatText(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, ff, quietSuccess)
	}

	if opts.Timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
	}
	if hasErrors || (ff.check && hasChanges) {
		return errReported
	}
	return nil
}

func runStdin(cmd *cobra.Command, ff formatFlags, opts driver.FormatOptions) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	formatted, changed, err := driver.FormatSource(data, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if ff.diff && changed {
		if err := fmtdiff.Render(out, stdinName, fmtdiff.Lines(data, formatted), fmtdiff.Options{Color: !color.NoColor}); err != nil {
			return err
		}
	}
	if ff.check {
		if changed {
			if !ff.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s needs formatting\n", stdinName)
			}
			return errReported
		}
		return nil
	}
	if ff.diff {
		return nil
	}
	_, err = out.Write(formatted)
	return err
}

// renderFormatText prints one line per file in the wording of the original
// flowfmt tool and returns whether any file failed or needs changes.
func renderFormatText(out, errOut io.Writer, results []driver.FormatResult, ff formatFlags, quietSuccess bool) (hasErrors, hasChanges bool) {
	single := len(results) == 1
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			if errors.Is(res.Err, fs.ErrNotExist) {
				fmt.Fprintf(errOut, "Error: File %s not found\n", res.Path)
			} else {
				fmt.Fprintf(errOut, "Error: %v\n", res.Err)
			}
			continue
		}

		if res.Changed {
			hasChanges = true
			if ff.diff {
				changes := fmtdiff.Lines(res.Original, res.Formatted)
				if err := fmtdiff.Render(out, res.Path, changes, fmtdiff.Options{Color: !color.NoColor}); err != nil {
					fmt.Fprintf(errOut, "Error: %v\n", err)
					hasErrors = true
				}
			}
		}

		if ff.stdout {
			if _, err := out.Write(res.Formatted); err != nil {
				fmt.Fprintf(errOut, "Error: %v\n", err)
				hasErrors = true
			}
			continue
		}

		if ff.check {
			switch {
			case res.Changed:
				fmt.Fprintf(out, "%s needs formatting\n", res.Path)
			case !ff.quiet && !quietSuccess:
				fmt.Fprintf(out, "%s is already formatted\n", res.Path)
			}
			continue
		}

		if quietSuccess {
			continue
		}
		if res.Changed || single {
			fmt.Fprintf(out, "Formatted %s\n", res.Path)
		}
	}
	return hasErrors, hasChanges
}

func renderFormatJSON(out io.Writer, results []driver.FormatResult, check bool) error {
	type jsonResult struct {
		Path     string `json:"path"`
		Output   string `json:"output,omitempty"`
		Changed  bool   `json:"changed"`
		Cached   bool   `json:"cached,omitempty"`
		Error    string `json:"error,omitempty"`
		CheckRun bool   `json:"check"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path, Changed: res.Changed, Cached: res.Cached, CheckRun: check}
		if res.Output != "" && res.Output != res.Path {
			jr.Output = res.Output
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
