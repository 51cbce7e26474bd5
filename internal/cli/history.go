package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bottlesmith/internal/journal"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent install outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := openBase()
			if err != nil {
				return err
			}
			defer base.Close()

			store, err := journal.Open(base.paths.JournalFile)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "no installs recorded yet")
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %-9s  %-20s  %s",
					e.CreatedAt.Format(time.DateTime), e.Status, e.Bottle, e.Target)
				if e.Status != "succeeded" && e.Stage != "" {
					line += fmt.Sprintf("  (stage %s: %s)", e.Stage, e.Error)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	return cmd
}
