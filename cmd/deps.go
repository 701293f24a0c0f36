package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Amama-Fatima/github-insights/internal/usecase"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Extracts a repository's declared dependencies and outputs them as JSON",
	Long: `Scans a repository tree for dependency manifests (package.json,
package-lock.json, go.mod, Cargo.toml, pom.xml, pyproject.toml,
requirements.txt) and extracts every declared dependency with its raw
version text. Malformed manifests are reported as warnings alongside the
entries that did parse.`,
	Run: func(cmd *cobra.Command, args []string) {
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		ref, _ := cmd.Flags().GetString("ref")

		cfg, logger, gw, err := setup(cmd)
		if err != nil {
			fail(nil, err)
		}
		service := usecase.NewDependencyService(gw, logger)

		ctx, cancel := opContext(cfg)
		defer cancel()

		spinner := statusSpinner("Scanning for dependency manifests...")
		report, err := service.AnalyzeDependencies(ctx, owner, repo, ref)
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
	rootCmd.AddCommand(depsCmd)
	depsCmd.Flags().StringP("owner", "o", "", "Repository owner (required)")
	depsCmd.Flags().StringP("repo", "r", "", "Repository name (required)")
	depsCmd.Flags().String("ref", "", "Branch, tag, or commit to scan (default: the default branch)")
	depsCmd.MarkFlagRequired("owner")
	depsCmd.MarkFlagRequired("repo")
}
