package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bottlesmith/internal/installer"
	"bottlesmith/internal/shortcut"
)

// Status is the terminal state of one install request.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome is returned exactly once per request and never mutated afterwards.
type Outcome struct {
	Status   Status          `json:"status"`
	Bottle   string          `json:"bottle"`
	Shortcut *shortcut.Entry `json:"shortcut,omitempty"`
	Stage    installer.Stage `json:"stage,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Journal persists terminal outcomes.
type Journal interface {
	Record(ctx context.Context, req installer.Request, outcome Outcome, took time.Duration) error
}

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Service sequences Router -> Installer -> Resolver -> Gateway -> Shortcut
// Manager for each request, holding a per-bottle exclusive lease from
// classification to terminal state.
type Service struct {
	File    *installer.FileInstaller
	Folder  *installer.FolderInstaller
	Journal Journal
	Logger  Logger

	leases *leaseTable
}

func NewService(file *installer.FileInstaller, folder *installer.FolderInstaller, journal Journal, logger Logger) *Service {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		File:    file,
		Folder:  folder,
		Journal: journal,
		Logger:  logger,
		leases:  newLeaseTable(),
	}
}

// Install runs one request to its terminal state. Failures are never retried
// here: external component installs are idempotent, so the caller may simply
// resubmit the same request.
func (s *Service) Install(ctx context.Context, req installer.Request) Outcome {
	start := time.Now()
	bottle := req.BottleName()

	release, err := s.leases.Acquire(ctx, bottle)
	if err != nil {
		return s.finish(ctx, req, start, Outcome{
			Status: StatusFailed,
			Bottle: bottle,
			Stage:  installer.StageClassify,
			Error:  fmt.Sprintf("waiting for bottle lease: %v", err),
		})
	}
	defer release()

	cls := installer.Classify(req)
	s.Logger.Printf("install %s: classified as %s (%s)", req.TargetPath, cls.Kind, cls.Reason)
	if req.Declared != installer.DeclaredUnknown && !declaredMatches(req.Declared, cls.Kind) {
		s.Logger.Printf("install %s: overriding declared kind %q with filesystem state", req.TargetPath, req.Declared)
	}

	var (
		entry      shortcut.Entry
		installErr error
	)
	switch cls.Kind {
	case installer.KindExecutable, installer.KindDiskImage:
		entry, installErr = s.File.Install(ctx, req, cls)
	case installer.KindFolder:
		entry, installErr = s.Folder.Install(ctx, req, cls)
	default:
		return s.finish(ctx, req, start, Outcome{
			Status: StatusFailed,
			Bottle: bottle,
			Stage:  installer.StageClassify,
			Error:  cls.Reason,
		})
	}

	if installErr != nil {
		outcome := Outcome{Status: StatusFailed, Bottle: bottle, Error: installErr.Error()}
		var stageErr *installer.Error
		if errors.As(installErr, &stageErr) {
			outcome.Stage = stageErr.Stage
		}
		return s.finish(ctx, req, start, outcome)
	}

	return s.finish(ctx, req, start, Outcome{
		Status:   StatusSucceeded,
		Bottle:   bottle,
		Shortcut: &entry,
	})
}

func (s *Service) finish(ctx context.Context, req installer.Request, start time.Time, outcome Outcome) Outcome {
	took := time.Since(start)
	if outcome.Status == StatusSucceeded {
		s.Logger.Printf("install %s: succeeded in %s", req.TargetPath, took.Round(time.Millisecond))
	} else {
		s.Logger.Printf("install %s: failed at stage %s: %s", req.TargetPath, outcome.Stage, outcome.Error)
	}
	if s.Journal != nil {
		if err := s.Journal.Record(context.WithoutCancel(ctx), req, outcome, took); err != nil {
			s.Logger.Printf("install %s: journal write failed: %v", req.TargetPath, err)
		}
	}
	return outcome
}

func declaredMatches(declared installer.DeclaredKind, kind installer.Kind) bool {
	switch declared {
	case installer.DeclaredFile:
		return kind == installer.KindExecutable || kind == installer.KindDiskImage
	case installer.DeclaredFolder:
		return kind == installer.KindFolder
	default:
		return true
	}
}
