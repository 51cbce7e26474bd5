package tui

// StageUpdateMsg updates the status and detail of one workflow stage row.
type StageUpdateMsg struct {
	Stage  string
	Status string
	Detail string
}

// WorkDoneMsg signals that the install workflow has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}
