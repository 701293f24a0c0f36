// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Amama-Fatima/github-insights/internal/config"
	"github.com/Amama-Fatima/github-insights/internal/gateway"
)

var rootCmd = &cobra.Command{
	Use:   "github-insights",
	Short: "A CLI tool that derives insight reports from GitHub repositories.",
	Long: `github-insights analyzes GitHub repositories and produces derived
reports: repository health scores, declared dependencies, contribution
analytics per repository or per user, issue triage suggestions, and pull
request review summaries.

Every command prints a single JSON document on standard output. Status
messages go to standard error, so output can be piped safely.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

// newLogger builds the injected logger. Logs are discarded unless the
// --verbose flag routes them to standard error.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// setup loads the configuration and builds the authenticated gateway every
// command starts from.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, *gateway.GitHubGateway, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Token == "" {
		return nil, nil, nil, errors.New("GITHUB_TOKEN environment variable is not set")
	}
	logger := newLogger(cmd)

	policy := gateway.RatePolicy{MaxWait: cfg.MaxRateWait}
	if cfg.RateMode == config.RateModeFailFast {
		policy.Mode = gateway.RateFailFast
	}

	var gw *gateway.GitHubGateway
	if cfg.APIURL != "" {
		gw, err = gateway.NewEnterpriseGateway(cfg.Token, cfg.APIURL, policy, logger)
	} else {
		gw, err = gateway.NewGitHubGateway(cfg.Token, policy, logger)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return cfg, logger, gw.WithMaxItems(cfg.MaxItems), nil
}

// opContext bounds one command run with the configured timeout.
func opContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.Timeout)
}

// statusSpinner starts a progress spinner on standard error, keeping
// standard output free for the JSON report.
func statusSpinner(message string) *pterm.SpinnerPrinter {
	spinner, _ := pterm.DefaultSpinner.WithWriter(os.Stderr).WithRemoveWhenDone(true).Start(message)
	return spinner
}

// printJSON marshals the report pretty-printed to standard output.
func printJSON(report interface{}) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	fmt.Println(string(jsonData))
	return nil
}

// fail reports a fatal command error on standard error and exits.
func fail(spinner *pterm.SpinnerPrinter, err error) {
	if spinner != nil {
		spinner.Fail(err.Error())
	} else {
		pterm.Error.WithWriter(os.Stderr).Println(err.Error())
	}
	os.Exit(1)
}
