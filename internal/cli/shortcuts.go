package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"bottlesmith/internal/bottles"
	"bottlesmith/internal/shortcut"
)

func newShortcutsCmd() *cobra.Command {
	var bottleName string

	cmd := &cobra.Command{
		Use:   "shortcuts",
		Short: "List recorded shortcuts across both backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := openBase()
			if err != nil {
				return err
			}
			defer base.Close()

			names := []string{bottleName}
			if bottleName == "" {
				names, err = base.sidecar.Bottles()
				if err != nil {
					return err
				}
			}

			// Native listings need a reachable Bottles installation; without
			// one the manual sidecar is still worth showing.
			var store *bottles.ShortcutStore
			if cmds, detErr := bottles.Detect(cmd.Context(), nil, base.cfg.Bottles.Flavor); detErr == nil {
				gw := bottles.NewGateway(base.cfg, base.paths, cmds, nil, base.logger)
				store = &bottles.ShortcutStore{Gateway: gw}
			} else {
				base.logger.Printf("shortcuts: native backend unavailable: %v", detErr)
			}

			var entries []shortcut.Entry
			for _, name := range names {
				if name == "" {
					continue
				}
				seen := map[string]bool{}
				if store != nil {
					native, listErr := store.List(cmd.Context(), name)
					if listErr == nil {
						for _, e := range native {
							seen[e.DisplayName] = true
							entries = append(entries, e)
						}
					}
				}
				records, recErr := base.sidecar.List(name)
				if recErr != nil {
					return recErr
				}
				for _, rec := range records {
					if seen[rec.DisplayName] {
						continue
					}
					entries = append(entries, shortcut.Entry{
						Bottle:      name,
						DisplayName: rec.DisplayName,
						Target:      rec.Target,
						Source:      shortcut.SourceManual,
					})
				}
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
				fmt.Fprintln(out, "no shortcuts recorded")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%-20s %-30s %-8s %s\n", e.Bottle, e.DisplayName, e.Source, e.Target)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bottleName, "bottle", "", "Limit output to one bottle")
	return cmd
}
