package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Amama-Fatima/github-insights/internal/usecase"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Summarizes a pull request's review state and outputs it as JSON",
	Long: `Condenses a pull request's files, commits, reviews, and comments
into a review summary: change breakdown, a 0-100 complexity score with the
contributing factors, the aggregate review status, risk factors with
recommendations, and review latency statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		number, _ := cmd.Flags().GetInt("number")

		cfg, logger, gw, err := setup(cmd)
		if err != nil {
			fail(nil, err)
		}
		service := usecase.NewReviewService(gw, logger)

		ctx, cancel := opContext(cfg)
		defer cancel()

		spinner := statusSpinner("Summarizing pull request reviews...")
		report, err := service.SummarizePull(ctx, owner, repo, number)
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
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().StringP("owner", "o", "", "Repository owner (required)")
	reviewCmd.Flags().StringP("repo", "r", "", "Repository name (required)")
	reviewCmd.Flags().IntP("number", "n", 0, "Pull request number (required)")
	reviewCmd.MarkFlagRequired("owner")
	reviewCmd.MarkFlagRequired("repo")
	reviewCmd.MarkFlagRequired("number")
}
