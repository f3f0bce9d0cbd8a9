package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/arffkit/internal/engine/batch"
	"github.com/rshade/arffkit/internal/tui"
)

// batchRun is what the background batch hands back to the TUI runner.
type batchRun struct {
	summary *batch.Summary
	err     error
}

// runSelectTUI processes the directory in the background while the interactive view
// shows progress. Quitting the view cancels the remaining files; the summary is
// printed after the view closes.
func runSelectTUI(cmd *cobra.Command, proc *batch.Processor, inputDir, outputDir, format string) error {
	files, err := proc.Enumerate(inputDir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	program := tea.NewProgram(
		tui.NewBatchModel(inputDir, len(files)),
		tea.WithContext(ctx),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	proc.
		WithFileCallback(func(o batch.Outcome) { program.Send(tui.FileDoneMsg{Outcome: o}) }).
		WithProgressCallback(func(p *batch.Progress) { program.Send(tui.ProgressMsg(p.Snapshot())) })

	done := make(chan batchRun, 1)
	go func() {
		summary, runErr := proc.ProcessDirectory(ctx, inputDir, outputDir)
		program.Send(tui.RunFinishedMsg{Summary: summary, Err: runErr})
		done <- batchRun{summary: summary, err: runErr}
	}()

	_, uiErr := program.Run()
	cancel()
	run := <-done

	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return fmt.Errorf("interactive view: %w", uiErr)
	}
	if run.summary != nil {
		if renderErr := renderSummary(cmd.OutOrStdout(), run.summary, format); renderErr != nil {
			return renderErr
		}
	}
	// Leaving the view early stops the batch; that is not a failure of the command.
	if errors.Is(run.err, context.Canceled) && cmd.Context().Err() == nil {
		return nil
	}
	return run.err
}
