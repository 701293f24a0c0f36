package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Amama-Fatima/github-insights/internal/domain"
	"github.com/Amama-Fatima/github-insights/internal/usecase"
)

var contribCmd = &cobra.Command{
	Use:   "contrib",
	Short: "Aggregates repository contribution activity and outputs it as JSON",
	Long: `Buckets a repository's recent commits, issues, pull requests, and
reviews into daily or weekly windows per contributor, with totals and a
trend summary (mean, median, and p90 of per-bucket activity).`,
	Run: func(cmd *cobra.Command, args []string) {
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		days, _ := cmd.Flags().GetInt("days")
		granularityStr, _ := cmd.Flags().GetString("granularity")

		granularity, err := parseGranularity(granularityStr)
		if err != nil {
			fail(nil, err)
		}

		cfg, logger, gw, err := setup(cmd)
		if err != nil {
			fail(nil, err)
		}
		service := usecase.NewContributionService(gw, logger)

		ctx, cancel := opContext(cfg)
		defer cancel()

		spinner := statusSpinner("Aggregating contribution activity...")
		report, err := service.RepoContributions(ctx, owner, repo, days, granularity)
		if err != nil {
			fail(spinner, err)
		}
		spinner.Stop()

		if err := printJSON(report); err != nil {
			fail(nil, err)
		}
	},
}

func parseGranularity(s string) (domain.Granularity, error) {
	switch domain.Granularity(s) {
	case domain.BucketDaily, domain.BucketWeekly:
		return domain.Granularity(s), nil
	default:
		return "", fmt.Errorf("invalid granularity %q: expected %q or %q", s, domain.BucketDaily, domain.BucketWeekly)
	}
}

func init() {
	rootCmd.AddCommand(contribCmd)
	contribCmd.Flags().StringP("owner", "o", "", "Repository owner (required)")
	contribCmd.Flags().StringP("repo", "r", "", "Repository name (required)")
	contribCmd.Flags().IntP("days", "d", 30, "Size of the analysis window in days")
	contribCmd.Flags().StringP("granularity", "g", "daily", "Bucket width: daily or weekly")
	contribCmd.MarkFlagRequired("owner")
	contribCmd.MarkFlagRequired("repo")
}
