/*
Copyright © 2026 PGIMPACT AUTHORS
*/
package cmd

import (
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var Version = "dev"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version
}

var rootCmd = &cobra.Command{
	Use:          "pgimpact",
	SilenceUsage: true,
	Short:        "Score and explain PostgreSQL query plan impact",
	Long: `pgimpact scores PostgreSQL EXPLAIN ANALYZE plans for performance,
scalability and cloud-cost risk, and explains where the impact comes from.

It extracts signals from plan text, aggregates them through a weighted impact
tree, projects a monetary cost per cloud provider, and produces prioritized,
evidenced suggestions. Supports text plans and SQL input.`,
	Example: `  # Analyze a captured plan
  pgimpact analyze plan.txt

  # Analyze with cost projection for GCP at 1M executions/month
  pgimpact analyze plan.txt --provider gcp --frequency 1000000

  # Compare two plans
  pgimpact compare old.txt new.txt

  # Setup connection profiles and rate overrides
  pgimpact init`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
