package bottles

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandError is the typed failure for every external environment-manager
// call. Raw process output never leaks to callers beyond the stderr excerpt.
type CommandError struct {
	Op       string
	ExitCode int
	Stderr   string
	Timeout  bool
	Err      error
}

func (e *CommandError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: timed out", e.Op)
	case e.Stderr != "":
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Stderr)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *CommandError) Unwrap() error { return e.Err }

// translate maps a Runner failure into a CommandError, classifying timeouts
// and capturing a bounded stderr excerpt.
func translate(op string, res RunResult, err error, ctx context.Context) error {
	if err == nil {
		return nil
	}

	ce := &CommandError{Op: op, ExitCode: -1, Err: err}

	if errors.Is(err, context.DeadlineExceeded) || (ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		ce.Timeout = true
		return ce
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		ce.ExitCode = exitErr.ExitCode()
	}
	ce.Stderr = stderrExcerpt(res.Stderr)
	return ce
}

func stderrExcerpt(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	const max = 200
	if len(s) > max {
		s = s[:max]
	}
	return s
}
