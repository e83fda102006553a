package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/naka-gawa/repo-health/internal/chart"
	"github.com/naka-gawa/repo-health/internal/server"
	"github.com/naka-gawa/repo-health/internal/usecase"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the repository health dashboard over HTTP",
	Long: `Serves the HTML dashboard at /?owner=OWNER&repo=REPO, a JSON report at
/api/report, a liveness probe at /healthz and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		factory := func(renderer chart.Renderer) *usecase.Reporter {
			return newReporter(cfg, renderer, logger)
		}
		srv := server.New(factory, usecase.Configs(usecase.Metrics()), logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Serving repository health dashboard on %s\n", cfg.ListenAddr)
		return srv.Run(ctx, cfg.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Address to listen on (overrides REPO_HEALTH_LISTEN)")
}
