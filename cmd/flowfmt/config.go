package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"flowfmt/internal/driver"
	"flowfmt/internal/project"
)

// loadConfig resolves the project config for the first argument (or the
// working directory) and applies command-line overrides on top.
func loadConfig(cmd *cobra.Command, args []string) (project.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return project.Config{}, err
	}

	var cfg project.Config
	switch {
	case explicit != "":
		cfg, err = project.LoadFile(explicit)
	case len(args) > 0:
		start := args[0]
		if _, statErr := os.Stat(start); statErr != nil {
			start = filepath.Dir(start)
		}
		cfg, err = project.Load(start)
	default:
		cfg, err = project.Load(".")
	}
	if err != nil {
		return project.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("indent") {
		width, err := flags.GetInt("indent")
		if err != nil {
			return project.Config{}, err
		}
		w, err := project.ValidateIndentWidth(int64(width))
		if err != nil {
			return project.Config{}, fmt.Errorf("--indent: %w", err)
		}
		cfg.IndentWidth = w
	}
	if flags.Changed("tabs") {
		if cfg.UseTabs, err = flags.GetBool("tabs"); err != nil {
			return project.Config{}, err
		}
	}
	if flags.Changed("space-operators") {
		if cfg.SpaceOperators, err = flags.GetBool("space-operators"); err != nil {
			return project.Config{}, err
		}
	}
	return cfg, nil
}

func driverOptions(cfg project.Config) driver.FormatOptions {
	return driver.FormatOptions{
		Options:        cfg.FormatOptions(),
		SpaceOperators: cfg.SpaceOperators,
		Extensions:     cfg.Extensions,
		Exclude:        cfg.Exclude,
	}
}
