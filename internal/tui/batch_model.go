package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/arffkit/internal/engine/batch"
)

// ViewState is the screen the batch view shows.
type ViewState int

// View states.
const (
	ViewStateRunning ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateQuitting
)

// FileDoneMsg is sent after each file has been processed and logged.
type FileDoneMsg struct {
	Outcome batch.Outcome
}

// ProgressMsg carries the batch progress after each file.
type ProgressMsg batch.ProgressSnapshot

// RunFinishedMsg is sent once the batch returns.
type RunFinishedMsg struct {
	Summary *batch.Summary
	Err     error
}

// fileRow is one processed file.
type fileRow struct {
	task       int
	input      string
	output     string
	inAttrs    int
	outAttrs   int
	saved      bool
	cached     bool
	failed     bool
	stage      string
	errMessage string
}

func rowFromOutcome(o batch.Outcome) fileRow {
	if o.Failure != nil {
		return fileRow{
			task:       o.Failure.TaskNumber,
			input:      o.Failure.InputName,
			failed:     true,
			stage:      o.Failure.Stage,
			errMessage: o.Failure.Error,
		}
	}
	r := o.Result
	return fileRow{
		task:     r.TaskNumber,
		input:    r.InputName,
		output:   r.OutputName,
		inAttrs:  r.InputAttributes,
		outAttrs: r.OutputAttributes,
		saved:    r.SaveSucceeded,
		cached:   r.CacheHit,
	}
}

func (r fileRow) status() string {
	switch {
	case r.failed:
		return "error (" + r.stage + ")"
	case r.saved:
		return "saved"
	default:
		return "save failed"
	}
}

// BatchModel is the Bubble Tea model of a running or finished batch.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BatchModel struct {
	state    ViewState
	inputDir string
	allRows  []fileRow
	rows     []fileRow

	table     table.Model
	textInput textinput.Model
	spinner   spinner.Model
	bar       progress.Model
	selected  int

	width      int
	height     int
	showFilter bool

	total    int
	progress batch.ProgressSnapshot
	summary  *batch.Summary
	err      error
	finished bool
}

// NewBatchModel creates the view for a batch over inputDir with total eligible files.
func NewBatchModel(inputDir string, total int) BatchModel {
	ti := textinput.New()
	ti.Placeholder = "file name"
	ti.CharLimit = 64

	m := BatchModel{
		state:     ViewStateRunning,
		inputDir:  inputDir,
		total:     total,
		width:     defaultWidth,
		height:    defaultHeight,
		textInput: ti,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(InfoStyle)),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth)),
	}
	m.rebuildTable()
	return m
}

// Init starts the spinner (Bubble Tea interface).
func (m BatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildTable()
		return m, nil
	case FileDoneMsg:
		m.allRows = append(m.allRows, rowFromOutcome(msg.Outcome))
		m.applyFilter(m.textInput.Value())
		return m, nil
	case ProgressMsg:
		m.progress = batch.ProgressSnapshot(msg)
		return m, nil
	case RunFinishedMsg:
		return m.handleFinished(msg)
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.showFilter {
		return m.handleFilterInput(msg)
	}

	switch m.state {
	case ViewStateRunning, ViewStateList:
		return m.handleListUpdate(msg)
	case ViewStateDetail:
		return m.handleDetailUpdate(msg)
	default:
		return m, nil
	}
}

func (m BatchModel) handleFinished(msg RunFinishedMsg) (tea.Model, tea.Cmd) {
	m.finished = true
	m.summary = msg.Summary
	m.err = msg.Err
	if m.state == ViewStateRunning {
		m.state = ViewStateList
	}
	return m, nil
}

func (m BatchModel) handleFilterInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEnter, keyEsc:
			m.showFilter = false
			m.textInput.Blur()
			m.applyFilter(m.textInput.Value())
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m BatchModel) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEnter:
		m.selected = m.table.Cursor()
		if m.selected >= 0 && m.selected < len(m.rows) {
			m.state = ViewStateDetail
		}
		return m, nil
	case keySlash:
		m.showFilter = true
		return m, m.textInput.Focus()
	case keyEsc:
		if m.textInput.Value() != "" {
			m.textInput.SetValue("")
			m.applyFilter("")
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return m, cmd
	}
}

func (m BatchModel) handleDetailUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit, keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEsc:
			m.state = ViewStateList
			if !m.finished {
				m.state = ViewStateRunning
			}
			m.table.Focus()
			return m, nil
		}
	}
	return m, nil
}

// applyFilter keeps the rows whose input name contains text, case-insensitively.
func (m *BatchModel) applyFilter(text string) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		m.rows = m.allRows
	} else {
		m.rows = nil
		for _, r := range m.allRows {
			if strings.Contains(strings.ToLower(r.input), text) {
				m.rows = append(m.rows, r)
			}
		}
	}
	m.rebuildTable()
}

func (m *BatchModel) rebuildTable() {
	columns := []table.Column{
		{Title: "Task", Width: 5},                   //nolint:mnd // Column width.
		{Title: "Input", Width: maxNameDisplayLen},  //nolint:mnd // Column width.
		{Title: "Attrs", Width: 6},                  //nolint:mnd // Column width.
		{Title: "Output", Width: maxNameDisplayLen}, //nolint:mnd // Column width.
		{Title: "Attrs", Width: 6},                  //nolint:mnd // Column width.
		{Title: "Status", Width: 16},                //nolint:mnd // Column width.
	}

	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		in, out := "", ""
		if !r.failed {
			in, out = strconv.Itoa(r.inAttrs), strconv.Itoa(r.outAttrs)
		}
		rows[i] = table.Row{
			strconv.Itoa(r.task),
			truncateName(r.input),
			in,
			truncateName(r.output),
			out,
			r.status(),
		}
	}

	height := m.height - chromeHeight
	if height < minTableRows {
		height = minTableRows
	}
	cursor := m.table.Cursor()
	m.table = table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	if cursor < len(rows) {
		m.table.SetCursor(cursor)
	}
}

// State returns the current view state.
func (m BatchModel) State() ViewState {
	return m.state
}

// Finished reports whether the batch has returned.
func (m BatchModel) Finished() bool {
	return m.finished
}

// VisibleRows returns the number of rows passing the filter.
func (m BatchModel) VisibleRows() int {
	return len(m.rows)
}
