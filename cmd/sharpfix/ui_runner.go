package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sharpfix/internal/driver"
	"sharpfix/internal/ui"
)

type diagnoseOutcome struct {
	result *driver.Result
	err    error
}

// runDiagnoseWithUI runs driver.Diagnose while a progress view renders its
// events on stderr. The view stays until every worker has finished.
func runDiagnoseWithUI(ctx context.Context, title, target string, opts driver.Options) (*driver.Result, error) {
	files, err := driver.Discover(target, opts.Config)
	if err != nil {
		return nil, err
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan diagnoseOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Diagnose(ctx, target, opts)
		outcomeCh <- diagnoseOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// окно могли закрыть раньше: дочитываем, чтобы воркеры не встали
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
