package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const tickInterval = 150 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives the spinner animation.
type tickMsg time.Time

// stageRow holds the displayed state for one workflow stage.
type stageRow struct {
	Stage  string
	Status string
	Detail string
}

// InstallModel is a bubbletea model that renders the install workflow as a
// fixed list of stages moving from pending to a terminal status.
type InstallModel struct {
	title    string
	rows     []stageRow
	rowIndex map[string]int
	done     bool
	err      error

	tick int
}

// NewInstallModel creates a model pre-populated with pending stages.
func NewInstallModel(title string, stages []string) InstallModel {
	m := InstallModel{
		title:    title,
		rowIndex: make(map[string]int, len(stages)),
	}
	for _, stage := range stages {
		m.rowIndex[stage] = len(m.rows)
		m.rows = append(m.rows, stageRow{Stage: stage, Status: "pending"})
	}
	return m
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m InstallModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m InstallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case StageUpdateMsg:
		if idx, ok := m.rowIndex[msg.Stage]; ok {
			m.rows[idx].Status = msg.Status
			m.rows[idx].Detail = msg.Detail
		}
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m InstallModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteByte('\n')

	stageWidth := 0
	for _, row := range m.rows {
		if len(row.Stage) > stageWidth {
			stageWidth = len(row.Stage)
		}
	}

	for _, row := range m.rows {
		marker := " "
		if row.Status == "running" && !m.done {
			marker = spinnerFrames[m.tick%len(spinnerFrames)]
		}
		line := fmt.Sprintf("%s %s  %s", marker, pad(row.Stage, stageWidth), StatusStyle(row.Status).Render(pad(row.Status, 8)))
		if detail := TruncateWithEllipsis(row.Detail, 48); detail != "" {
			line += "  " + detail
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Done returns whether the model has finished (work done or error).
func (m InstallModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m InstallModel) Err() error {
	return m.err
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// TruncateWithEllipsis truncates a string and adds "..." if it exceeds max length.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
