package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	outputJSON bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bottlesmith",
		Short: "Install Windows applications into Bottles environments",
	}

	cmd.PersistentFlags().StringVar(&dataDir, "data", "", "Path to bottlesmith data directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newShortcutsCmd())
	cmd.AddCommand(newBottlesCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}
