package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/naka-gawa/repo-health/internal/chart"
	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/naka-gawa/repo-health/internal/gateway"
)

// Metric is one row of the report table: how to fetch a dataset and how to
// draw it.
type Metric struct {
	Name  string
	Fetch func(ctx context.Context, client gateway.MetricsClient) (domain.Dataset, error)
	Chart chart.Config
	// Transform reshapes the fetched dataset before it is validated and
	// rendered. Optional.
	Transform func(data domain.Dataset, now time.Time) (domain.Dataset, error)
}

// Metric names.
const (
	MetricCommits                = "commits"
	MetricStargazers             = "stargazers"
	MetricForks                  = "forks"
	MetricIssues                 = "issues"
	MetricPullRequests           = "pull_requests"
	MetricDistributionOfWork     = "distribution_of_work"
	MetricReopenedIssues         = "reopened_issues"
	MetricCommunityActivity      = "community_activity"
	MetricContributorBreadth     = "contributor_breadth"
	MetricContributorDiversity   = "contributor_diversity"
	MetricTransparency           = "transparency"
	MetricBusFactor              = "bus_factor"
	MetricContributionAcceptance = "contribution_acceptance"
)

func weekly(title, y, target string) chart.Config {
	return chart.Config{
		Title:        title,
		ChartType:    chart.Point,
		LeastSquares: true,
		FullWidth:    true,
		Height:       300,
		ColorRange:   []string{"blue"},
		XAccessor:    "date",
		YAccessor:    y,
		Target:       target,
	}
}

func trend(title, y, target string) chart.Config {
	return chart.Config{
		Title:        title,
		ChartType:    chart.Line,
		LeastSquares: true,
		FullWidth:    true,
		Height:       300,
		XAccessor:    "date",
		YAccessor:    y,
		Target:       target,
	}
}

func perProject(title, y, target string) chart.Config {
	return chart.Config{
		Title:     title,
		ChartType: chart.Bar,
		FullWidth: true,
		Height:    300,
		Width:     490,
		XAccessor: "project_name",
		YAccessor: y,
		Target:    target,
	}
}

// Metrics returns the report table in display order.
func Metrics() []Metric {
	commits := weekly("Commits/Week", "commits", "#commits-over-time")
	commits.ColorRange = nil
	commits.Color = "blue"

	transparency := weekly("Transparency", "avg_comments", "#Number-of-comments-per-issue")
	transparency.ColorRange = []string{"blue", "red"}

	return []Metric{
		{
			Name:  MetricCommits,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.CommitsByWeek(ctx) },
			Chart: commits,
		},
		{
			Name:  MetricStargazers,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.StargazersByWeek(ctx) },
			Chart: weekly("Stars/Week", "watchers", "#stargazers-over-time"),
		},
		{
			Name:  MetricForks,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.ForksByWeek(ctx) },
			Chart: weekly("Forks/Week", "projects", "#forks-over-time"),
		},
		{
			Name:  MetricIssues,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.IssuesByWeek(ctx) },
			Chart: weekly("Issues/Week", "issues", "#issues-over-time"),
		},
		{
			Name:  MetricPullRequests,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.PullRequestsByWeek(ctx) },
			Chart: weekly("Pull Requests/Week", "pull_requests", "#pulls-over-time"),
		},
		{
			Name:  MetricDistributionOfWork,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.DistributionOfWork(ctx) },
			Chart: trend("Distribution Of Work/Year", "numcommits", "#distribution-over-time"),
		},
		{
			Name:  MetricReopenedIssues,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.ReopenedIssues(ctx) },
			Chart: trend("Reopened Issues/Month", "reopenedissues", "#reopenedissues-over-time"),
		},
		{
			Name:  MetricCommunityActivity,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.CommunityActivity(ctx) },
			Chart: trend("Community Activity/Month", "activity", "#communityActivity-over-time"),
		},
		{
			Name:  MetricContributorBreadth,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.ContributorBreadth(ctx) },
			Chart: perProject("Non-Core Contributors/Project", "num_commits", "#cont-over-time"),
		},
		{
			Name:  MetricContributorDiversity,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.ContributorDiversity(ctx) },
			Chart: perProject("Contributor Diversity/Project", "num_organizations", "#contributorDiversity-over-time"),
		},
		{
			Name:  MetricTransparency,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.Transparency(ctx) },
			Chart: transparency,
		},
		{
			Name:  MetricBusFactor,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.BusFactor(ctx) },
			Chart: chart.Config{
				Title:        "Bus Factor",
				ChartType:    chart.Point,
				LeastSquares: true,
				FullWidth:    true,
				Height:       200,
				Width:        400,
				PointSize:    5,
				XAccessor:    "date",
				YAccessor:    "value",
				Target:       "#bus_factor",
			},
			Transform: wrapBusFactor,
		},
		{
			Name:  MetricContributionAcceptance,
			Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) { return c.ContributionAcceptance(ctx) },
			Chart: trend("Contribution Acceptance", "approved_over_opened", "#contribution-acceptance"),
		},
	}
}

// Configs returns the chart configs of metrics, in order.
func Configs(metrics []Metric) []chart.Config {
	out := make([]chart.Config, len(metrics))
	for i, m := range metrics {
		out[i] = m.Chart
	}
	return out
}

// wrapBusFactor turns the API's single {bus_factor: n} record into a
// one-point series dated now.
func wrapBusFactor(data domain.Dataset, now time.Time) (domain.Dataset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no bus factor record", chart.ErrEmptyDataset)
	}
	v, err := data[0].Float("bus_factor")
	if err != nil {
		return nil, err
	}
	return domain.Dataset{{"date": now, "value": v}}, nil
}
