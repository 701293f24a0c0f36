package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Amama-Fatima/github-insights/internal/triage"
	"github.com/Amama-Fatima/github-insights/internal/usecase"
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Classifies an issue and outputs the suggestion as JSON",
	Long: `Classifies a single issue into a category (bug, feature,
documentation, question, or other) with a suggested priority, a confidence
score, the matched signals, and labels worth adding.

The keyword tables can be overridden with a YAML file named by the
INSIGHTS_TRIAGE_RULES environment variable.`,
	Run: func(cmd *cobra.Command, args []string) {
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		number, _ := cmd.Flags().GetInt("number")

		cfg, logger, gw, err := setup(cmd)
		if err != nil {
			fail(nil, err)
		}

		rules := triage.DefaultRules()
		if cfg.TriageRulesFile != "" {
			data, err := os.ReadFile(cfg.TriageRulesFile)
			if err != nil {
				fail(nil, err)
			}
			if rules, err = triage.LoadRules(data); err != nil {
				fail(nil, err)
			}
		}
		classifier, err := triage.NewClassifier(rules)
		if err != nil {
			fail(nil, err)
		}
		service := usecase.NewTriageService(gw, classifier, logger)

		ctx, cancel := opContext(cfg)
		defer cancel()

		spinner := statusSpinner("Triaging issue...")
		result, err := service.TriageIssue(ctx, owner, repo, number)
		if err != nil {
			fail(spinner, err)
		}
		spinner.Stop()

		if err := printJSON(result); err != nil {
			fail(nil, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(triageCmd)
	triageCmd.Flags().StringP("owner", "o", "", "Repository owner (required)")
	triageCmd.Flags().StringP("repo", "r", "", "Repository name (required)")
	triageCmd.Flags().IntP("number", "n", 0, "Issue number (required)")
	triageCmd.MarkFlagRequired("owner")
	triageCmd.MarkFlagRequired("repo")
	triageCmd.MarkFlagRequired("number")
}
