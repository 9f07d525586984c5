/*
Copyright © 2026 PGIMPACT AUTHORS
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pgimpact/pgimpact/internal/analyzer"
	"github.com/pgimpact/pgimpact/internal/cost"
	"github.com/pgimpact/pgimpact/internal/output"
	"github.com/pgimpact/pgimpact/internal/plan"
	"github.com/pgimpact/pgimpact/internal/profile"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a single query plan",
	Long: `Analyze a single PostgreSQL query plan and score its impact.

Input can be a text plan (EXPLAIN ANALYZE output) or a SQL file.
Use "-" to read from stdin. If no file is provided, enters interactive mode.

For SQL input, a database connection is required to run EXPLAIN (ANALYZE, BUFFERS).`,
	Example: `  # Analyze from file
  pgimpact analyze plan.txt

  # Project cost for Azure at 500k executions/month
  pgimpact analyze plan.txt --provider azure --frequency 500000

  # Run a query through a saved profile
  pgimpact analyze query.sql --profile prod

  # Read from stdin
  cat plan.txt | pgimpact analyze -

  # Interactive mode
  pgimpact analyze`,
	Args: cobra.MaximumNArgs(1),
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
		if frequency < 1 || frequency > 20000000 {
			return fmt.Errorf("frequency %v out of range: must be 1..20000000", frequency)
		}

		connStr, err := profile.ResolveConnStr(db, profileName)
		if err != nil {
			return err
		}

		var file string
		if len(args) > 0 {
			file = args[0]
		}

		planText, err := plan.Resolve(file, connStr, "")
		if err != nil {
			return err
		}

		result := analyzer.Analyze(planText, analyzer.Options{
			Provider:  provider,
			Frequency: frequency,
		})

		switch format {
		case "json":
			return output.RenderAnalysisJSON(os.Stdout, result)
		case "text":
			return output.RenderAnalysisText(os.Stdout, result)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("db", "d", "", "PostgreSQL connection string")
	analyzeCmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	analyzeCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	analyzeCmd.Flags().String("provider", "aws", "Cloud provider for cost projection: aws, gcp, azure")
	analyzeCmd.Flags().Float64("frequency", 1, "Executions per month for cost projection")
	analyzeCmd.MarkFlagsMutuallyExclusive("db", "profile")
}
