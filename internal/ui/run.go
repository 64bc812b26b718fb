package ui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"flowfmt/internal/driver"
)

type formatOutcome struct {
	results []driver.FormatResult
	err     error
}

// RunFormat runs driver.FormatPaths while rendering progress to out.
// files is the list shown up front; events for other paths are ignored.
// If the view quits before the run finishes (Ctrl+C), the run is canceled
// and RunFormat returns context.Canceled. progOpts are appended to the
// program options.
func RunFormat(ctx context.Context, out io.Writer, title string, files, paths []string, opts driver.FormatOptions, progOpts ...tea.ProgramOption) ([]driver.FormatResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.FormatPaths(runCtx, paths, optsCopy)
		outcomeCh <- formatOutcome{results: res, err: err}
		close(events)
	}()

	model := NewProgressModel(title, files, events)
	options := append([]tea.ProgramOption{tea.WithOutput(out), tea.WithInput(nil)}, progOpts...)
	program := tea.NewProgram(model, options...)
	final, uiErr := program.Run()

	// view is gone: stop the run and keep draining so no worker blocks on a full channel
	cancel()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh

	if uiErr != nil {
		return outcome.results, uiErr
	}
	if pm, ok := final.(*progressModel); ok && !pm.done {
		return outcome.results, context.Canceled
	}
	return outcome.results, outcome.err
}
