package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/rshade/arffkit/internal/config"
	"github.com/rshade/arffkit/internal/engine/batch"
)

//nolint:gochecknoglobals // Stateless English number printer shared by renderers.
var printer = message.NewPrinter(language.English)

// Colors shared by the renderers.
func borderColor() lipgloss.Color { return lipgloss.Color("240") }
func titleColor() lipgloss.Color  { return lipgloss.Color("39") }
func okColor() lipgloss.Color     { return lipgloss.Color("42") }
func failColor() lipgloss.Color   { return lipgloss.Color("196") }

// isWriterTerminal reports whether w is a terminal file.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatDecimal formats v with exactly precision fraction digits and grouping.
func formatDecimal(v float64, precision int) string {
	return printer.Sprint(number.Decimal(v, number.Scale(precision)))
}

// newTable returns a table styled for w.
func newTable(w io.Writer, headers ...string) *table.Table {
	t := table.New().Headers(headers...)
	if !isWriterTerminal(w) {
		return t.Border(lipgloss.NormalBorder())
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(titleColor()).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor())).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

// renderSummary prints the outcome of a batch run.
func renderSummary(w io.Writer, s *batch.Summary, format string) error {
	if format == config.FormatJSON {
		return writeJSON(w, s)
	}

	styled := isWriterTerminal(w)
	title := lipgloss.NewStyle().Bold(true)
	if styled {
		title = title.Foreground(titleColor())
	}

	var b strings.Builder
	b.WriteString(title.Render("SELECTION SUMMARY"))
	b.WriteString("\n")
	b.WriteString(printer.Sprintf("Strategy: %s  |  Run: %s\n", s.Strategy, s.RunID))
	b.WriteString(printer.Sprintf("Files: %d found, %d reduced, %d saved, %d failed  |  Attributes removed: %d  |  %s\n",
		s.Found, len(s.Results), s.Saved(), len(s.Failures), s.AttributesRemoved(),
		s.Duration().Round(time.Millisecond)))
	if s.Cancelled {
		b.WriteString("Run cancelled before all files were processed\n")
	}

	if len(s.Results) > 0 {
		t := newTable(w, "TASK", "INPUT", "ATTRS", "OUTPUT", "ATTRS", "SAVE", "CACHED")
		for _, r := range s.Results {
			save := r.SaveStatus()
			if styled {
				color := okColor()
				if !r.SaveSucceeded {
					color = failColor()
				}
				save = lipgloss.NewStyle().Foreground(color).Render(save)
			}
			t.Row(
				strconv.Itoa(r.TaskNumber),
				r.InputName,
				printer.Sprintf("%d", r.InputAttributes),
				r.OutputName,
				printer.Sprintf("%d", r.OutputAttributes),
				save,
				strconv.FormatBool(r.CacheHit),
			)
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	if len(s.Failures) > 0 {
		b.WriteString(title.Render("FAILURES"))
		b.WriteString("\n")
		for _, f := range s.Failures {
			b.WriteString(fmt.Sprintf("  task %d  %s  [%s] %s\n", f.TaskNumber, f.InputName, f.Stage, f.Error))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
