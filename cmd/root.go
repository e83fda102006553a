// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"net/http"
	"os"

	"github.com/naka-gawa/repo-health/internal/chart"
	"github.com/naka-gawa/repo-health/internal/config"
	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/naka-gawa/repo-health/internal/gateway"
	"github.com/naka-gawa/repo-health/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repo-health",
	Short: "Builds repository health reports from a GHData metrics API.",
	Long: `repo-health fetches a fixed set of repository health metrics (commit cadence,
stargazers, forks, issues, pull requests, contributor breadth and diversity,
transparency, bus factor and more) from a GHData server and renders each one
as a chart, either in the terminal or as an HTML dashboard.`,
	SilenceUsage: true,
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
	rootCmd.PersistentFlags().String("api-url", "", "GHData API root (overrides GHDATA_API_URL)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout per metric fetch (overrides REPO_HEALTH_TIMEOUT)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "Maximum concurrent metric fetches, 0 for unlimited (overrides REPO_HEALTH_CONCURRENCY)")
}

// newLogger logs warnings to stderr, or everything when verbose is set.
func newLogger(cmd *cobra.Command) *logrus.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// loadConfig loads the environment configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		v, _ := flags.GetString("api-url")
		cfg.APIURL = config.NormalizeAPIURL(v)
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("listen") {
		cfg.ListenAddr, _ = flags.GetString("listen")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newReporter wires a Reporter drawing into renderer from cfg.
func newReporter(cfg *config.Config, renderer chart.Renderer, logger logrus.FieldLogger) *usecase.Reporter {
	httpClient := &http.Client{}
	factory := func(target domain.Target) gateway.MetricsClient {
		return gateway.NewGHDataClient(cfg.APIURL, target.Owner, target.Repo, cfg.APIToken, httpClient, logger)
	}

	opts := []usecase.Option{
		usecase.WithConcurrency(cfg.Concurrency),
		usecase.WithTimeout(cfg.Timeout),
	}
	if cfg.GitHubToken != "" {
		inspector, err := gateway.NewGitHubGateway(cfg.GitHubToken, logger)
		if err != nil {
			logger.WithError(err).Warn("GitHub summary disabled")
		} else {
			opts = append(opts, usecase.WithInspector(inspector))
		}
	}
	return usecase.NewReporter(factory, renderer, logger, opts...)
}
