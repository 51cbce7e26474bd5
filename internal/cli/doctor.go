package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bottlesmith/internal/bottles"
	"bottlesmith/internal/config"
	"bottlesmith/internal/deps"
	"bottlesmith/internal/journal"
	"bottlesmith/internal/paths"
	"bottlesmith/internal/shortcut"
	"bottlesmith/internal/tui"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the install workflow can run on this machine",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok" or "error"
	Summary string `json:"summary"`
}

func check(name string, err error, summary string) healthCheck {
	if err != nil {
		return healthCheck{Name: name, Status: "error", Summary: err.Error()}
	}
	return healthCheck{Name: name, Status: "ok", Summary: summary}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	var checks []healthCheck

	pp, err := paths.Resolve(dataDir)
	checks = append(checks, check("data directory", err, pp.Root))
	if err != nil {
		return writeDoctorResult(cmd, checks)
	}
	if err := pp.EnsureDirs(); err != nil {
		checks = append(checks, check("data directory writable", err, ""))
		return writeDoctorResult(cmd, checks)
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err == nil {
		err = cfg.Validate()
	}
	checks = append(checks, check("configuration", err, pp.ConfigFile))
	if err != nil {
		cfg = config.Default()
	}

	cmds, err := bottles.Detect(cmd.Context(), nil, cfg.Bottles.Flavor)
	checks = append(checks, check("bottles installation", err, string(cmds.Flavor)))

	ok, err := paths.DirExists(cfg.Bottles.PrefixBase)
	if err == nil && !ok {
		err = fmt.Errorf("directory %s does not exist", cfg.Bottles.PrefixBase)
	}
	checks = append(checks, check("prefix base", err, cfg.Bottles.PrefixBase))

	catalog := deps.Builtin()
	overlay := cfg.Catalog.OverlayFile
	if overlay == "" {
		overlay = pp.CatalogFile
	}
	err = catalog.LoadOverlay(overlay)
	checks = append(checks, check("dependency catalog", err, fmt.Sprintf("%d libraries mapped", catalog.Len())))

	_, err = shortcut.NewSidecar(pp.SidecarFile).Bottles()
	checks = append(checks, check("shortcut sidecar", err, pp.SidecarFile))

	store, err := journal.Open(pp.JournalFile)
	if err == nil {
		store.Close()
	}
	checks = append(checks, check("install journal", err, pp.JournalFile))

	return writeDoctorResult(cmd, checks)
}

func writeDoctorResult(cmd *cobra.Command, checks []healthCheck) error {
	out := cmd.OutOrStdout()
	failures := 0
	for _, c := range checks {
		if c.Status != "ok" {
			failures++
		}
	}

	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		for _, c := range checks {
			label := tui.StatusStyle("ok").Render("  OK")
			if c.Status != "ok" {
				label = tui.StatusStyle("failed").Render("FAIL")
			}
			fmt.Fprintf(out, "%s  %-22s %s\n", label, c.Name, c.Summary)
		}
		if failures == 0 {
			fmt.Fprintln(out, "\nall checks passed")
		}
	}

	if failures > 0 {
		return errors.New("doctor found problems")
	}
	return nil
}
