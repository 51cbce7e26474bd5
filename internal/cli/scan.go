package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bottlesmith/internal/deps"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <binary>",
		Short: "Report the runtime components a Windows binary depends on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve target path: %w", err)
			}

			base, err := openBase()
			if err != nil {
				return err
			}
			defer base.Close()

			report, err := base.resolver.Scan(target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "%s imports %d libraries\n\n", filepath.Base(target), len(report.Imports))
			if len(report.Resolved) == 0 {
				fmt.Fprintln(out, "no known runtime components required")
			}
			for _, comp := range report.Resolved {
				marker := "install"
				if comp.Provided == deps.ProvidedBase {
					marker = "base runtime"
				}
				fmt.Fprintf(out, "  %-20s %s\n", comp.ID, marker)
			}
			if len(report.Unresolved) > 0 {
				fmt.Fprintf(out, "\nunmapped imports (%d):\n", len(report.Unresolved))
				for _, lib := range report.Unresolved {
					fmt.Fprintf(out, "  %s\n", lib)
				}
			}
			return nil
		},
	}
	return cmd
}
