package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"bottlesmith/internal/deps"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the dependency catalog (builtin plus overlay)",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := openBase()
			if err != nil {
				return err
			}
			defer base.Close()

			entries := base.catalog.Entries()
			out := cmd.OutOrStdout()

			if outputJSON {
				type mapping struct {
					Library   string `json:"library"`
					Component string `json:"component"`
					Provided  string `json:"provided"`
				}
				mappings := make([]mapping, 0, len(entries))
				for _, e := range entries {
					mappings = append(mappings, mapping{
						Library:   e.Library,
						Component: e.Component.ID,
						Provided:  string(e.Component.Provided),
					})
				}
				data, err := json.MarshalIndent(mappings, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "%d libraries mapped\n\n", len(entries))
			for _, e := range entries {
				marker := ""
				if e.Component.Provided == deps.ProvidedBase {
					marker = "  (base runtime)"
				}
				fmt.Fprintf(out, "  %-24s -> %s%s\n", e.Library, e.Component.ID, marker)
			}
			return nil
		},
	}
	return cmd
}
