package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current view (Bubble Tea interface).
func (m BatchModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateDetail:
		return m.renderDetailView()
	case ViewStateRunning, ViewStateList:
		return m.renderListView()
	default:
		return ""
	}
}

// renderHeader shows the directory and either live progress or the final totals.
func (m BatchModel) renderHeader() string {
	title := HeaderStyle.Render("ARFFKIT SELECT") + "  " + SubtleStyle.Render(m.inputDir)

	if !m.finished {
		percent := 0.0
		if m.total > 0 {
			percent = float64(m.progress.ProcessedFiles) / float64(m.total)
		}
		line := fmt.Sprintf("%s %s  %d/%d", m.spinner.View(), m.bar.ViewAs(percent), m.progress.ProcessedFiles, m.total)
		if m.progress.Current != "" {
			line += "  " + SubtleStyle.Render(m.progress.Current)
		}
		return lipgloss.JoinVertical(lipgloss.Left, title, line)
	}

	var status string
	switch {
	case m.err != nil:
		status = ErrorStyle.Render("Stopped: " + m.err.Error())
	case m.summary != nil:
		status = SuccessStyle.Render(fmt.Sprintf("Done: %d found, %d saved, %d failed, %d attributes removed in %s",
			m.summary.Found, m.summary.Saved(), len(m.summary.Failures), m.summary.AttributesRemoved(),
			m.summary.Duration().Round(time.Millisecond)))
	default:
		status = SuccessStyle.Render("Done")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, status)
}

// renderListView renders the file table with optional filter input.
func (m BatchModel) renderListView() string {
	sections := []string{m.renderHeader()}

	if m.total == 0 && m.finished {
		sections = append(sections, WarningStyle.Render("No suitable ARFF files found in the directory."))
	} else {
		sections = append(sections, m.table.View())
	}

	filterStatus := ""
	if m.textInput.Value() != "" {
		filterStatus = fmt.Sprintf(" | Filtered: %d/%d", len(m.rows), len(m.allRows))
	}
	sections = append(sections, SubtleStyle.Render(
		"Press enter for details, '/' to filter, 'q' to quit"+filterStatus))

	if m.showFilter {
		sections = append(sections, LabelStyle.Render("Filter: ")+m.textInput.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDetailView renders one file's outcome.
func (m BatchModel) renderDetailView() string {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return "No file selected"
	}
	r := m.rows[m.selected]

	var content strings.Builder
	content.WriteString(HeaderStyle.Render("FILE DETAIL"))
	content.WriteString("\n\n")
	field := func(label, value string) {
		content.WriteString(LabelStyle.Render(fmt.Sprintf("%-18s", label)))
		content.WriteString(value)
		content.WriteString("\n")
	}

	field("Task:", strconv.Itoa(r.task))
	field("Input file:", r.input)
	if r.failed {
		field("Stage:", r.stage)
		field("Error:", ErrorStyle.Render(r.errMessage))
	} else {
		field("Input attributes:", strconv.Itoa(r.inAttrs))
		field("Output file:", r.output)
		field("Output attributes:", strconv.Itoa(r.outAttrs))
		field("Removed:", strconv.Itoa(r.inAttrs-r.outAttrs))
		save := SuccessStyle.Render("successful")
		if !r.saved {
			save = ErrorStyle.Render("failed")
		}
		field("Save:", save)
		field("Cached:", strconv.FormatBool(r.cached))
	}

	content.WriteString("\n")
	content.WriteString(SubtleStyle.Render("Press esc to go back, 'q' to quit"))

	return BoxStyle.Width(m.width - borderPadding).Render(content.String())
}
