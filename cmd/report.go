package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/naka-gawa/repo-health/internal/chart"
	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/naka-gawa/repo-health/internal/query"
	"github.com/spf13/cobra"
)

const (
	formatTerminal = "terminal"
	formatJSON     = "json"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetches every health metric of a repository and charts it",
	Long: `Fetches every health metric of a repository from the GHData API and renders
each one as soon as its data arrives. The repository is taken from --owner and
--repo, or from the owner and repo query parameters of --url.`,
	Example: `  repo-health report --owner apache --repo spark
  repo-health report --url 'http://localhost:8080/?owner=apache&repo=spark' --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		rawURL, _ := cmd.Flags().GetString("url")
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		format, _ := cmd.Flags().GetString("format")
		width, _ := cmd.Flags().GetInt("width")

		target := resolveTarget(rawURL, owner, repo)
		if !target.Valid() {
			return fmt.Errorf("a repository is required: pass --owner and --repo, or a --url with ?owner=OWNER&repo=REPO")
		}

		renderer, err := newRenderer(format, cmd.OutOrStdout(), width)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		report, err := newReporter(cfg, renderer, logger).Build(cmd.Context(), target)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		failed := report.Failed()
		for _, o := range failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", o.Metric, o.Err)
		}
		if len(report.Outcomes) > 0 && len(failed) == len(report.Outcomes) {
			return errors.New("no metric could be rendered")
		}
		return nil
	},
}

// resolveTarget reads owner and repo from rawURL; explicit values win.
func resolveTarget(rawURL, owner, repo string) domain.Target {
	target := domain.Target{}
	if rawURL != "" {
		target = query.TargetFromURL(rawURL)
	}
	if owner != "" {
		target.Owner = owner
	}
	if repo != "" {
		target.Repo = repo
	}
	return target
}

func newRenderer(format string, out io.Writer, width int) (chart.Renderer, error) {
	switch format {
	case formatTerminal:
		return chart.NewTerminalRenderer(out, width), nil
	case formatJSON:
		return chart.NewJSONRenderer(out), nil
	default:
		return nil, fmt.Errorf("unknown format %q, expected %q or %q", format, formatTerminal, formatJSON)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("url", "", "Dashboard URL carrying owner and repo query parameters")
	reportCmd.Flags().StringP("owner", "o", "", "Repository owner")
	reportCmd.Flags().StringP("repo", "r", "", "Repository name")
	reportCmd.Flags().StringP("format", "f", formatTerminal, "Output format: terminal or json")
	reportCmd.Flags().Int("width", 80, "Chart width in columns for terminal output")
}
