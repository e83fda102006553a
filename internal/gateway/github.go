package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// RepoInspector looks up the GitHub metadata shown in a report header.
type RepoInspector interface {
	FetchRepoSummary(ctx context.Context, owner, repo string) (*domain.RepoSummary, error)
}

// GitHubGateway is the concrete implementation of the RepoInspector interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        logrus.FieldLogger
}

// repoSummaryQuery fetches the counters that the REST repository object does
// not expose directly (open issues there include pull requests).
type repoSummaryQuery struct {
	Repository struct {
		Description    string
		StargazerCount int
		ForkCount      int
		Issues         struct {
			TotalCount int
		} `graphql:"issues(states: OPEN)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger logrus.FieldLogger) (RepoInspector, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Minute, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchRepoSummary resolves the canonical repository name over REST and
// fills in the counters over GraphQL.
func (g *GitHubGateway) FetchRepoSummary(ctx context.Context, owner, repo string) (*domain.RepoSummary, error) {
	g.logger.WithField("repo", owner+"/"+repo).Debug("Fetching repository summary...")

	r, _, err := g.restClient.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository with REST API: %w", err)
	}
	summary := &domain.RepoSummary{
		FullName: r.GetFullName(),
		URL:      r.GetHTMLURL(),
		Archived: r.GetArchived(),
	}

	var q repoSummaryQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(r.GetOwner().GetLogin()),
		"name":  githubv4.String(r.GetName()),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for repository summary: %w", err)
	}
	summary.Description = q.Repository.Description
	summary.Stars = q.Repository.StargazerCount
	summary.Forks = q.Repository.ForkCount
	summary.OpenIssues = q.Repository.Issues.TotalCount

	g.logger.WithField("repo", summary.FullName).Debug("Completed fetching repository summary.")
	return summary, nil
}
