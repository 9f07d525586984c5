/*
Copyright © 2026 PGIMPACT AUTHORS
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pgimpact/pgimpact/internal/analyzer"
	"github.com/pgimpact/pgimpact/internal/comparator"
	"github.com/pgimpact/pgimpact/internal/cost"
	"github.com/pgimpact/pgimpact/internal/output"
	"github.com/pgimpact/pgimpact/internal/plan"
	"github.com/pgimpact/pgimpact/internal/profile"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file1] [file2]",
	Short: "Compare two query plans",
	Long: `Run the full impact analysis on two PostgreSQL query plans and render
the deltas: efficiency, projected cost, impact movement per tree leaf, and
which suggestions were resolved or introduced.

Inputs can be text plans or SQL files and don't need to be the same type.
Either file (but not both) can be "-" to read from stdin.

For SQL input, a database connection is required to run EXPLAIN (ANALYZE, BUFFERS).`,
	Example: `  # Compare two captured plans
  pgimpact compare old.txt new.txt

  # Use saved profile for SQL input
  pgimpact compare old.sql new.sql --profile prod

  # Mix input types
  pgimpact compare prod-plan.txt new-query.sql --profile dev

  # Read one plan from stdin
  cat old.txt | pgimpact compare - new.txt`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _ := cmd.Flags().GetString("db")
		profileName, _ := cmd.Flags().GetString("profile")
		format, _ := cmd.Flags().GetString("format")
		providerName, _ := cmd.Flags().GetString("provider")
		frequency, _ := cmd.Flags().GetFloat64("frequency")

		if format != "text" && format != "json" {
			return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
		}

		provider, err := cost.ParseProvider(providerName)
		if err != nil {
			return err
		}

		if len(args) == 2 && args[0] == "-" && args[1] == "-" {
			return fmt.Errorf("only one input can read from stdin")
		}

		connStr, err := profile.ResolveConnStr(db, profileName)
		if err != nil {
			return err
		}

		var file1, file2 string
		if len(args) > 0 {
			file1 = args[0]
		}
		if len(args) > 1 {
			file2 = args[1]
		}

		oldText, err := plan.Resolve(file1, connStr, "first ")
		if err != nil {
			return err
		}
		newText, err := plan.Resolve(file2, connStr, "second ")
		if err != nil {
			return err
		}

		opts := analyzer.Options{Provider: provider, Frequency: frequency}
		oldResult := analyzer.Analyze(oldText, opts)
		newResult := analyzer.Analyze(newText, opts)

		c := &comparator.Comparator{}
		result := c.Compare(oldResult, newResult)

		switch format {
		case "json":
			return output.RenderComparisonJSON(os.Stdout, result)
		case "text":
			return output.RenderComparisonText(os.Stdout, result)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringP("db", "d", "", "PostgreSQL connection string")
	compareCmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	compareCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	compareCmd.Flags().String("provider", "aws", "Cloud provider for cost projection: aws, gcp, azure")
	compareCmd.Flags().Float64("frequency", 1, "Executions per month for cost projection")
	compareCmd.MarkFlagsMutuallyExclusive("db", "profile")
}
