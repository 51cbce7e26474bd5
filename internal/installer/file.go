package installer

import (
	"context"
	"path/filepath"

	"bottlesmith/internal/shortcut"
)

// FileInstaller drives the single-file workflow: executables run directly,
// disk images are staged through extraction first.
//
// States: Created -> EnvironmentReady -> Staged -> DependenciesResolved ->
// Executed -> ShortcutCreated -> Done. Any step may fail into Failed(stage);
// partial external state is intentionally left as-is.
type FileInstaller struct {
	Gateway   Gateway
	Resolver  Resolver
	Shortcuts Shortcuts
	Logger    Logger
	Reporter  Reporter
}

func (in *FileInstaller) Install(ctx context.Context, req Request, cls Classification) (shortcut.Entry, error) {
	logger := in.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	reporter := in.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	bottle := req.BottleName()

	reporter.Stage(StageEnvironment, "running", bottle)
	if err := checkpoint(ctx, StageEnvironment); err != nil {
		reporter.Stage(StageEnvironment, "failed", err.Error())
		return shortcut.Entry{}, err
	}
	if err := in.Gateway.EnsureBottle(ctx, bottle); err != nil {
		reporter.Stage(StageEnvironment, "failed", err.Error())
		return shortcut.Entry{}, fail(StageEnvironment, err)
	}
	reporter.Stage(StageEnvironment, "ok", bottle)

	staged := req.TargetPath
	if cls.Kind == KindDiskImage {
		reporter.Stage(StageStaging, "running", filepath.Base(req.TargetPath))
		if err := checkpoint(ctx, StageStaging); err != nil {
			reporter.Stage(StageStaging, "failed", err.Error())
			return shortcut.Entry{}, err
		}
		var err error
		staged, err = in.Gateway.ExtractImage(ctx, req.TargetPath)
		if err != nil {
			reporter.Stage(StageStaging, "failed", err.Error())
			return shortcut.Entry{}, fail(StageStaging, err)
		}
		reporter.Stage(StageStaging, "ok", filepath.Base(staged))
	} else {
		reporter.Stage(StageStaging, "skipped", "target is the binary")
	}

	reporter.Stage(StageDependencies, "running", "")
	if err := checkpoint(ctx, StageDependencies); err != nil {
		reporter.Stage(StageDependencies, "failed", err.Error())
		return shortcut.Entry{}, err
	}
	report := scanBinary(in.Resolver, logger, staged)
	if err := installComponents(ctx, in.Gateway, logger, bottle, report); err != nil {
		reporter.Stage(StageDependencies, "failed", err.Error())
		return shortcut.Entry{}, fail(StageDependencies, err)
	}
	reporter.Stage(StageDependencies, "ok", componentSummary(report))

	reporter.Stage(StageExecution, "running", filepath.Base(staged))
	if err := checkpoint(ctx, StageExecution); err != nil {
		reporter.Stage(StageExecution, "failed", err.Error())
		return shortcut.Entry{}, err
	}
	if err := in.Gateway.RunBinary(ctx, bottle, staged); err != nil {
		reporter.Stage(StageExecution, "failed", err.Error())
		return shortcut.Entry{}, fail(StageExecution, err)
	}
	reporter.Stage(StageExecution, "ok", "")

	// Shortcut adoption is best-effort bookkeeping: a run that installed the
	// application successfully is a success even when no shortcut can be
	// recorded.
	reporter.Stage(StageShortcut, "running", "")
	if err := checkpoint(ctx, StageShortcut); err != nil {
		reporter.Stage(StageShortcut, "failed", err.Error())
		return shortcut.Entry{}, err
	}
	display := req.Display()
	entry, err := in.Shortcuts.AdoptNative(ctx, bottle, display, staged)
	if err != nil {
		logger.Printf("bottle %s: shortcut adoption failed: %v", bottle, err)
		entry = shortcut.Entry{Bottle: bottle, DisplayName: display, Target: staged, Source: shortcut.SourceNative}
	}
	reporter.Stage(StageShortcut, "ok", entry.DisplayName)

	return entry, nil
}
