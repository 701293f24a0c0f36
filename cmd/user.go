package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Amama-Fatima/github-insights/internal/usecase"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Aggregates a user's activity across repositories and outputs it as JSON",
	Long: `Sums a user's recent commits, opened and closed issues, opened and
merged pull requests, and submitted reviews across all repositories the
search API can see, grouped by repository.`,
	Run: func(cmd *cobra.Command, args []string) {
		login, _ := cmd.Flags().GetString("user")
		days, _ := cmd.Flags().GetInt("days")

		cfg, logger, gw, err := setup(cmd)
		if err != nil {
			fail(nil, err)
		}
		service := usecase.NewUserActivityService(gw, logger)

		ctx, cancel := opContext(cfg)
		defer cancel()

		spinner := statusSpinner("Aggregating user activity...")
		report, err := service.UserContributions(ctx, login, days)
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
	rootCmd.AddCommand(userCmd)
	userCmd.Flags().StringP("user", "u", "", "GitHub user name (required)")
	userCmd.Flags().IntP("days", "d", 30, "Size of the analysis window in days")
	userCmd.MarkFlagRequired("user")
}
