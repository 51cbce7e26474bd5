package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"bottlesmith/internal/installer"
	"bottlesmith/internal/orchestrator"
	"bottlesmith/internal/tui"
)

func newInstallCmd() *cobra.Command {
	var (
		bottle     string
		name       string
		kind       string
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "install <path>",
		Short: "Install a Windows application from a file, disk image or folder",
		Long: `Install classifies the target path (installer executable, disk image or
pre-installed folder), prepares a bottle, installs missing runtime
components, runs or copies the target and records a shortcut.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve target path: %w", err)
			}

			declared, err := parseDeclaredKind(kind)
			if err != nil {
				return err
			}

			svc, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			req := installer.Request{
				TargetPath:  target,
				Declared:    declared,
				Bottle:      bottle,
				DisplayName: name,
			}

			outcome := runInstall(cmd, svc, req, noProgress)

			if outputJSON {
				data, err := json.MarshalIndent(outcome, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				printOutcome(cmd, outcome)
			}

			if outcome.Status != orchestrator.StatusSucceeded {
				return errors.New("install failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bottle, "bottle", "", "Bottle name (derived from the target when empty)")
	cmd.Flags().StringVar(&name, "name", "", "Shortcut display name (derived from the target when empty)")
	cmd.Flags().StringVar(&kind, "kind", "", "Declared target kind: file or folder (advisory)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the interactive progress display")

	return cmd
}

func parseDeclaredKind(kind string) (installer.DeclaredKind, error) {
	switch kind {
	case "":
		return installer.DeclaredUnknown, nil
	case "file":
		return installer.DeclaredFile, nil
	case "folder":
		return installer.DeclaredFolder, nil
	default:
		return "", fmt.Errorf("unknown kind %q (expected file or folder)", kind)
	}
}

// stagesFor returns the fixed stage rows shown for the request. Discovery
// only exists in the folder workflow.
func stagesFor(req installer.Request) []string {
	cls := installer.Classify(req)
	if cls.Kind == installer.KindFolder {
		return []string{
			string(installer.StageEnvironment),
			string(installer.StageStaging),
			string(installer.StageDiscovery),
			string(installer.StageDependencies),
			string(installer.StageExecution),
			string(installer.StageShortcut),
		}
	}
	return []string{
		string(installer.StageEnvironment),
		string(installer.StageStaging),
		string(installer.StageDependencies),
		string(installer.StageExecution),
		string(installer.StageShortcut),
	}
}

// runDisplay is replaced in tests.
var runDisplay = tui.RunWithWork

func runInstall(cmd *cobra.Command, svc *services, req installer.Request, noProgress bool) orchestrator.Outcome {
	mode := tui.DetectMode(cmd.OutOrStdout(), noProgress, outputJSON)
	return runInstallMode(cmd, svc, req, mode)
}

func runInstallMode(cmd *cobra.Command, svc *services, req installer.Request, mode tui.OutputMode) orchestrator.Outcome {
	switch mode {
	case tui.ModeTUI:
		model := tui.NewInstallModel("Installing "+req.Display(), stagesFor(req))
		outcomes := make(chan orchestrator.Outcome, 1)
		err := runDisplay(cmd.OutOrStdout(), model, func(send func(tea.Msg)) {
			reporter := tui.NewStageReporter(send)
			svc.file.Reporter = reporter
			svc.folder.Reporter = reporter
			outcomes <- svc.orch.Install(cmd.Context(), req)
		})
		if err != nil {
			svc.logger.Printf("progress display failed: %v", err)
		}
		// The install runs exactly once. A failed display or an early quit
		// does not restart it; wait for the running workflow's outcome.
		return <-outcomes

	case tui.ModePlain:
		return runPlain(cmd, svc, req)

	default: // ModeJSON
		return svc.orch.Install(cmd.Context(), req)
	}
}

func runPlain(cmd *cobra.Command, svc *services, req installer.Request) orchestrator.Outcome {
	reporter := tui.PlainReporter{Out: cmd.OutOrStdout()}
	svc.file.Reporter = reporter
	svc.folder.Reporter = reporter
	return svc.orch.Install(cmd.Context(), req)
}

func printOutcome(cmd *cobra.Command, outcome orchestrator.Outcome) {
	out := cmd.OutOrStdout()
	if outcome.Status == orchestrator.StatusSucceeded {
		fmt.Fprintf(out, "\n%s bottle %s\n", tui.StatusStyle("ok").Render("installed:"), outcome.Bottle)
		if outcome.Shortcut != nil {
			fmt.Fprintf(out, "shortcut: %s (%s)\n", outcome.Shortcut.DisplayName, outcome.Shortcut.Source)
		}
		return
	}
	fmt.Fprintf(out, "\n%s stage %s: %s\n", tui.StatusStyle("failed").Render("failed:"), outcome.Stage, outcome.Error)
}
