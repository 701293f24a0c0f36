package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Amama-Fatima/github-insights/internal/health"
	"github.com/Amama-Fatima/github-insights/internal/usecase"
	"github.com/Amama-Fatima/github-insights/internal/verlookup"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Scores the health of a repository and outputs the report as JSON",
	Long: `Scores a repository's health on a 0-100 scale from presence signals
(README, license, CI, tests), commit recency, issue hygiene, dependency
freshness, and contributor base, with recommendations for weak signals.

The weight table can be overridden with a YAML file named by the
INSIGHTS_HEALTH_WEIGHTS environment variable. Dependency staleness is only
judged when INSIGHTS_KNOWN_VERSIONS names a YAML version inventory.`,
	Run: func(cmd *cobra.Command, args []string) {
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")

		cfg, logger, gw, err := setup(cmd)
		if err != nil {
			fail(nil, err)
		}

		weights := health.DefaultWeights()
		if cfg.HealthWeightsFile != "" {
			data, err := os.ReadFile(cfg.HealthWeightsFile)
			if err != nil {
				fail(nil, err)
			}
			if weights, err = health.LoadWeights(data); err != nil {
				fail(nil, err)
			}
		}

		var lookup verlookup.Lookup
		if cfg.KnownVersionsFile != "" {
			data, err := os.ReadFile(cfg.KnownVersionsFile)
			if err != nil {
				fail(nil, err)
			}
			inventory, err := verlookup.ParseStatic(data)
			if err != nil {
				fail(nil, err)
			}
			if lookup, err = verlookup.NewCached(inventory, 0); err != nil {
				fail(nil, err)
			}
		}

		scorer := health.NewScorer(weights, lookup, logger)
		deps := usecase.NewDependencyService(gw, logger)
		service := usecase.NewHealthService(gw, deps, scorer, logger)

		ctx, cancel := opContext(cfg)
		defer cancel()

		spinner := statusSpinner("Checking repository health...")
		report, err := service.CheckHealth(ctx, owner, repo)
		if err != nil {
			fail(spinner, err)
		}
		spinner.Stop()

		if err := printJSON(report); err != nil {
			fail(nil, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringP("owner", "o", "", "Repository owner (required)")
	healthCmd.Flags().StringP("repo", "r", "", "Repository name (required)")
	healthCmd.MarkFlagRequired("owner")
	healthCmd.MarkFlagRequired("repo")
}
