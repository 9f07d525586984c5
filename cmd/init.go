/*
Copyright © 2026 PGIMPACT AUTHORS
*/
package cmd

import (
	"fmt"

	"github.com/pgimpact/pgimpact/internal/cost"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the rates override template",
	Long: `Create ~/.config/pgimpact/rates.yaml with a commented template.

The rates file overrides the built-in cloud-provider cost tables used for
monetary projections. If the file already exists, it will not be overwritten.`,
	Example: `  # Create default config
  pgimpact init

  # Overwrite existing config
  pgimpact init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := cost.WriteRatesTemplate(force)
		if err != nil {
			return err
		}

		fmt.Printf("Created rates config at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")
}
