package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bottlesmith/internal/config"
	"bottlesmith/internal/paths"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			pp, err := paths.Resolve(dataDir)
			if err != nil {
				return err
			}
			if err := pp.EnsureDirs(); err != nil {
				return err
			}

			exists, err := paths.FileExists(pp.ConfigFile)
			if err != nil {
				return err
			}
			if exists && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "config already exists at %s (use --force to overwrite)\n", pp.ConfigFile)
				return nil
			}

			cfg := config.Default()
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			if err := os.WriteFile(pp.ConfigFile, data, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s\n", pp.ConfigFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}
