package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/arffkit/internal/engine/batch"
)

func okOutcome(task int, name string) batch.Outcome {
	return batch.Outcome{Result: &batch.ProcessResult{
		TaskNumber:       task,
		InputName:        name,
		InputAttributes:  5,
		OutputName:       "out_" + name,
		OutputAttributes: 2,
		SaveSucceeded:    true,
	}}
}

func failedOutcome(task int, name string) batch.Outcome {
	return batch.Outcome{Failure: &batch.FileFailure{
		TaskNumber: task,
		InputName:  name,
		Stage:      "load",
		Error:      "no attributes",
	}}
}

func update(t *testing.T, m BatchModel, msg tea.Msg) (BatchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(BatchModel)
	require.True(t, ok)
	return bm, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case keyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case keyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestBatchModel_ProgressAndRows(t *testing.T) {
	m := NewBatchModel("/data", 2)
	assert.Equal(t, ViewStateRunning, m.State())
	assert.NotNil(t, m.Init())

	m, _ = update(t, m, FileDoneMsg{Outcome: okOutcome(1, "a.arff")})
	m, _ = update(t, m, ProgressMsg{TotalFiles: 2, ProcessedFiles: 1, Current: "a.arff"})
	assert.Equal(t, 1, m.VisibleRows())
	view := m.View()
	assert.Contains(t, view, "ARFFKIT SELECT")
	assert.Contains(t, view, "1/2")
	assert.Contains(t, view, "a.arff")

	m, _ = update(t, m, FileDoneMsg{Outcome: failedOutcome(2, "b.arff")})
	assert.Contains(t, m.View(), "error (load)")
	assert.False(t, m.Finished())
}

func TestBatchModel_Finished(t *testing.T) {
	m := NewBatchModel("/data", 1)
	m, _ = update(t, m, FileDoneMsg{Outcome: okOutcome(1, "a.arff")})
	m, _ = update(t, m, RunFinishedMsg{Summary: &batch.Summary{
		Found:   1,
		Results: []batch.ProcessResult{*okOutcome(1, "a.arff").Result},
	}})

	assert.True(t, m.Finished())
	assert.Equal(t, ViewStateList, m.State())
	assert.Contains(t, m.View(), "Done: 1 found, 1 saved, 0 failed, 3 attributes removed")
}

func TestBatchModel_Cancelled(t *testing.T) {
	m := NewBatchModel("/data", 3)
	m, _ = update(t, m, RunFinishedMsg{Err: context.Canceled})
	assert.Contains(t, m.View(), "Stopped: context canceled")
}

func TestBatchModel_EmptyDirectory(t *testing.T) {
	m := NewBatchModel("/data", 0)
	m, _ = update(t, m, RunFinishedMsg{Summary: &batch.Summary{}})
	assert.Contains(t, m.View(), "No suitable ARFF files found in the directory.")
}

func TestBatchModel_DetailView(t *testing.T) {
	m := NewBatchModel("/data", 2)
	m, _ = update(t, m, FileDoneMsg{Outcome: failedOutcome(1, "bad.arff")})
	m, _ = update(t, m, FileDoneMsg{Outcome: okOutcome(2, "good.arff")})
	m, _ = update(t, m, RunFinishedMsg{Summary: &batch.Summary{Found: 2}})

	m, _ = update(t, m, key(keyEnter))
	require.Equal(t, ViewStateDetail, m.State())
	view := m.View()
	assert.Contains(t, view, "FILE DETAIL")
	assert.Contains(t, view, "bad.arff")
	assert.Contains(t, view, "no attributes")

	m, _ = update(t, m, key(keyEsc))
	assert.Equal(t, ViewStateList, m.State())
}

func TestBatchModel_Filter(t *testing.T) {
	m := NewBatchModel("/data", 3)
	m, _ = update(t, m, FileDoneMsg{Outcome: okOutcome(1, "alpha.arff")})
	m, _ = update(t, m, FileDoneMsg{Outcome: okOutcome(2, "beta.arff")})
	m, _ = update(t, m, FileDoneMsg{Outcome: okOutcome(3, "ALPHA2.arff")})

	m, _ = update(t, m, key(keySlash))
	for _, r := range "alpha" {
		m, _ = update(t, m, key(string(r)))
	}
	m, _ = update(t, m, key(keyEnter))
	assert.Equal(t, 2, m.VisibleRows())
	assert.Contains(t, m.View(), "Filtered: 2/3")

	m, _ = update(t, m, key(keyEsc))
	assert.Equal(t, 3, m.VisibleRows())
}

func TestBatchModel_Quit(t *testing.T) {
	m := NewBatchModel("/data", 1)
	m, cmd := update(t, m, key(keyQuit))
	assert.Equal(t, ViewStateQuitting, m.State())
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.Empty(t, m.View())
}

func TestBatchModel_WindowResize(t *testing.T) {
	m := NewBatchModel("/data", 1)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	assert.Equal(t, 140, m.width)
	assert.Equal(t, 40, m.height)
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short.arff", truncateName("short.arff"))
	long := "a_very_long_dataset_name_that_keeps_going.arff"
	got := truncateName(long)
	assert.Len(t, got, maxNameDisplayLen)
	assert.Contains(t, got, truncateSuffix)
}
