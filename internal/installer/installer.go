package installer

import (
	"context"
	"fmt"

	"bottlesmith/internal/deps"
	"bottlesmith/internal/shortcut"
)

// Stage names the workflow step an installer is in; failures carry the stage
// they occurred at so callers can retry with corrected input.
type Stage string

const (
	StageClassify     Stage = "classify"
	StageEnvironment  Stage = "environment"
	StageStaging      Stage = "staging"
	StageDiscovery    Stage = "discovery"
	StageDependencies Stage = "dependencies"
	StageExecution    Stage = "execution"
	StageShortcut     Stage = "shortcut"
)

// Error is a stage-tagged installer failure.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(stage Stage, err error) *Error {
	return &Error{Stage: stage, Err: err}
}

// Gateway is the slice of the environment-manager boundary the installers
// drive. Tests substitute fakes.
type Gateway interface {
	EnsureBottle(ctx context.Context, bottle string) error
	ExtractImage(ctx context.Context, imagePath string) (string, error)
	CopyTree(ctx context.Context, src, bottle, subdir string) (string, error)
	InstallComponent(ctx context.Context, bottle, componentID string) error
	RunBinary(ctx context.Context, bottle, binaryPath string) error
}

// Resolver produces dependency reports for staged binaries.
type Resolver interface {
	Scan(binaryPath string) (deps.Report, error)
}

// Shortcuts is the slice of the shortcut manager the installers use.
type Shortcuts interface {
	Upsert(ctx context.Context, e shortcut.Entry) (shortcut.Entry, error)
	AdoptNative(ctx context.Context, bottle, displayName, target string) (shortcut.Entry, error)
}

// Reporter receives stage transitions for progress display. Implementations
// must be safe for calls from the installing goroutine.
type Reporter interface {
	Stage(stage Stage, status, detail string)
}

type nopReporter struct{}

func (nopReporter) Stage(Stage, string, string) {}

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// checkpoint is the cooperative cancellation point between stages. A request
// cancelled mid-call waits for that call, then aborts here.
func checkpoint(ctx context.Context, stage Stage) *Error {
	if err := ctx.Err(); err != nil {
		return fail(stage, err)
	}
	return nil
}

// installComponents installs every must-install component in the fixed order.
// It stops at the first failure since components may have install-order
// dependencies.
func installComponents(ctx context.Context, gw Gateway, logger Logger, bottle string, report deps.Report) error {
	for _, comp := range deps.MustInstall(report.Resolved) {
		if err := gw.InstallComponent(ctx, bottle, comp.ID); err != nil {
			return fmt.Errorf("component %s: %w", comp.ID, err)
		}
	}
	if len(report.Unresolved) > 0 {
		logger.Printf("bottle %s: %d imports had no catalog mapping: %v", bottle, len(report.Unresolved), report.Unresolved)
	}
	return nil
}

// scanBinary resolves dependencies for a staged binary. Scan failures
// degrade to an empty report: dependency coverage is best-effort and a
// binary the parser cannot read (an MSI package, say) must still install.
func scanBinary(resolver Resolver, logger Logger, binaryPath string) deps.Report {
	report, err := resolver.Scan(binaryPath)
	if err != nil {
		logger.Printf("dependency scan of %s failed, continuing without: %v", binaryPath, err)
		return deps.Report{BinaryPath: binaryPath}
	}
	return report
}
