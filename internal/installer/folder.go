package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"bottlesmith/internal/deps"
	"bottlesmith/internal/shortcut"
)

// FolderInstaller drives the pre-extracted application tree workflow.
//
// States: Created -> EnvironmentReady -> Copied -> ExecutableDiscovered ->
// DependenciesResolved -> Executed -> ShortcutRecorded -> Done. The shortcut
// is always a manual sidecar record: the manager's auto-discovery does not
// reliably associate shortcuts with binaries it did not install itself.
type FolderInstaller struct {
	Gateway   Gateway
	Resolver  Resolver
	Shortcuts Shortcuts
	Logger    Logger
	Reporter  Reporter
}

func (in *FolderInstaller) Install(ctx context.Context, req Request, _ Classification) (shortcut.Entry, error) {
	logger := in.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	reporter := in.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	bottle := req.BottleName()
	display := req.Display()

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

	// A mid-copy failure leaves whatever was copied: removing ambiguous
	// partial state is more destructive than leaving it.
	reporter.Stage(StageStaging, "running", "copying tree")
	if err := checkpoint(ctx, StageStaging); err != nil {
		reporter.Stage(StageStaging, "failed", err.Error())
		return shortcut.Entry{}, err
	}
	subdir := filepath.Base(filepath.Clean(req.TargetPath))
	copied, err := in.Gateway.CopyTree(ctx, req.TargetPath, bottle, subdir)
	if err != nil {
		reporter.Stage(StageStaging, "failed", err.Error())
		return shortcut.Entry{}, fail(StageStaging, err)
	}
	reporter.Stage(StageStaging, "ok", copied)

	reporter.Stage(StageDiscovery, "running", "")
	if err := checkpoint(ctx, StageDiscovery); err != nil {
		reporter.Stage(StageDiscovery, "failed", err.Error())
		return shortcut.Entry{}, err
	}
	binary, err := DiscoverExecutable(copied, display)
	if err != nil {
		reporter.Stage(StageDiscovery, "failed", err.Error())
		return shortcut.Entry{}, fail(StageDiscovery, err)
	}
	reporter.Stage(StageDiscovery, "ok", filepath.Base(binary))

	reporter.Stage(StageDependencies, "running", "")
	if err := checkpoint(ctx, StageDependencies); err != nil {
		reporter.Stage(StageDependencies, "failed", err.Error())
		return shortcut.Entry{}, err
	}
	report := scanBinary(in.Resolver, logger, binary)
	if err := installComponents(ctx, in.Gateway, logger, bottle, report); err != nil {
		reporter.Stage(StageDependencies, "failed", err.Error())
		return shortcut.Entry{}, fail(StageDependencies, err)
	}
	reporter.Stage(StageDependencies, "ok", componentSummary(report))

	reporter.Stage(StageExecution, "running", filepath.Base(binary))
	if err := checkpoint(ctx, StageExecution); err != nil {
		reporter.Stage(StageExecution, "failed", err.Error())
		return shortcut.Entry{}, err
	}
	if err := in.Gateway.RunBinary(ctx, bottle, binary); err != nil {
		reporter.Stage(StageExecution, "failed", err.Error())
		return shortcut.Entry{}, fail(StageExecution, err)
	}
	reporter.Stage(StageExecution, "ok", "")

	reporter.Stage(StageShortcut, "running", "")
	if err := checkpoint(ctx, StageShortcut); err != nil {
		reporter.Stage(StageShortcut, "failed", err.Error())
		return shortcut.Entry{}, err
	}
	entry, err := in.Shortcuts.Upsert(ctx, shortcut.Entry{
		Bottle:      bottle,
		DisplayName: display,
		Target:      binary,
		Source:      shortcut.SourceManual,
	})
	if err != nil {
		reporter.Stage(StageShortcut, "failed", err.Error())
		return shortcut.Entry{}, fail(StageShortcut, err)
	}
	reporter.Stage(StageShortcut, "ok", entry.DisplayName)

	return entry, nil
}

func componentSummary(report deps.Report) string {
	installed := deps.MustInstall(report.Resolved)
	if len(installed) == 0 && len(report.Unresolved) == 0 {
		return "none required"
	}
	return fmt.Sprintf("%d installed, %d unresolved", len(installed), len(report.Unresolved))
}
