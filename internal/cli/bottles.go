package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func newBottlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bottles",
		Short: "Manage bottle environments",
	}
	cmd.AddCommand(newBottlesListCmd())
	cmd.AddCommand(newBottlesCreateCmd())
	return cmd
}

func newBottlesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bottles under the configured prefix base",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := openBase()
			if err != nil {
				return err
			}
			defer base.Close()

			entries, err := os.ReadDir(base.cfg.Bottles.PrefixBase)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "prefix base %s does not exist\n", base.cfg.Bottles.PrefixBase)
					return nil
				}
				return fmt.Errorf("read prefix base: %w", err)
			}

			var names []string
			for _, entry := range entries {
				if entry.IsDir() {
					names = append(names, entry.Name())
				}
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			if outputJSON {
				data, err := json.MarshalIndent(names, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			if len(names) == 0 {
				fmt.Fprintln(out, "no bottles found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func newBottlesCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a bottle without installing anything into it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			name := args[0]
			if svc.gateway.BottleExists(name) {
				fmt.Fprintf(cmd.OutOrStdout(), "bottle %s already exists\n", name)
				return nil
			}
			if err := svc.gateway.EnsureBottle(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created bottle %s at %s\n", name, svc.gateway.PrefixPath(name))
			return nil
		},
	}
}
