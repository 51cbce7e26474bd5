package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"bottlesmith/internal/installer"
)

// StageReporter forwards installer stage transitions to a bubbletea program.
type StageReporter struct {
	send func(tea.Msg)
}

func NewStageReporter(send func(tea.Msg)) *StageReporter {
	return &StageReporter{send: send}
}

// Stage implements installer.Reporter.
func (r *StageReporter) Stage(stage installer.Stage, status, detail string) {
	r.send(StageUpdateMsg{Stage: string(stage), Status: status, Detail: detail})
}

// PlainReporter prints one line per stage transition; used when stdout is not
// a terminal.
type PlainReporter struct {
	Out io.Writer
}

// Stage implements installer.Reporter.
func (r PlainReporter) Stage(stage installer.Stage, status, detail string) {
	if detail != "" {
		fmt.Fprintf(r.Out, "%-12s %-8s %s\n", stage, status, detail)
		return
	}
	fmt.Fprintf(r.Out, "%-12s %s\n", stage, status)
}
