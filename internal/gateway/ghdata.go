// Package gateway provides the collaborators a report is built from: the
// GHData metrics API and the GitHub API.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ErrUnexpectedStatus is returned when the metrics API answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("unexpected status from metrics API")

// MetricsClient exposes one accessor per health metric of a single repository.
type MetricsClient interface {
	CommitsByWeek(ctx context.Context) (domain.Dataset, error)
	StargazersByWeek(ctx context.Context) (domain.Dataset, error)
	ForksByWeek(ctx context.Context) (domain.Dataset, error)
	IssuesByWeek(ctx context.Context) (domain.Dataset, error)
	PullRequestsByWeek(ctx context.Context) (domain.Dataset, error)
	DistributionOfWork(ctx context.Context) (domain.Dataset, error)
	ReopenedIssues(ctx context.Context) (domain.Dataset, error)
	CommunityActivity(ctx context.Context) (domain.Dataset, error)
	ContributorBreadth(ctx context.Context) (domain.Dataset, error)
	ContributorDiversity(ctx context.Context) (domain.Dataset, error)
	Transparency(ctx context.Context) (domain.Dataset, error)
	BusFactor(ctx context.Context) (domain.Dataset, error)
	ContributionAcceptance(ctx context.Context) (domain.Dataset, error)
}

// Endpoint paths relative to api/unstable/{owner}/{repo}/.
const (
	EndpointCommits                = "timeseries/commits"
	EndpointStargazers             = "timeseries/stargazers"
	EndpointForks                  = "timeseries/forks"
	EndpointIssues                 = "timeseries/issues"
	EndpointPulls                  = "timeseries/pulls"
	EndpointDistributionOfWork     = "dist_work"
	EndpointReopenedIssues         = "timeseries/reopened_issues"
	EndpointCommunityActivity      = "timeseries/community_activity"
	EndpointContributorBreadth     = "contributor_breadth"
	EndpointContributorDiversity   = "contributor_diversity"
	EndpointTransparency           = "timeseries/transparency"
	EndpointBusFactor              = "bus_factor"
	EndpointContributionAcceptance = "timeseries/contribution_acceptance"
)

// GHDataClient talks to the GHData REST API for one repository.
type GHDataClient struct {
	baseURL string
	owner   string
	repo    string
	client  *http.Client
	logger  logrus.FieldLogger
}

// NewGHDataClient creates a client for owner/repo. apiURL is the root of the
// GHData server; a trailing slash is added when missing. When token is set
// every request carries it as a bearer token. A nil httpClient means
// http.DefaultClient.
func NewGHDataClient(apiURL, owner, repo, token string, httpClient *http.Client, logger logrus.FieldLogger) *GHDataClient {
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if token != "" {
		httpClient = &http.Client{
			Timeout: httpClient.Timeout,
			Transport: &oauth2.Transport{
				Base:   httpClient.Transport,
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			},
		}
	}
	return &GHDataClient{
		baseURL: apiURL,
		owner:   owner,
		repo:    repo,
		client:  httpClient,
		logger:  logger,
	}
}

func (c *GHDataClient) CommitsByWeek(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointCommits)
}

func (c *GHDataClient) StargazersByWeek(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointStargazers)
}

func (c *GHDataClient) ForksByWeek(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointForks)
}

func (c *GHDataClient) IssuesByWeek(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointIssues)
}

func (c *GHDataClient) PullRequestsByWeek(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointPulls)
}

func (c *GHDataClient) DistributionOfWork(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointDistributionOfWork)
}

func (c *GHDataClient) ReopenedIssues(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointReopenedIssues)
}

func (c *GHDataClient) CommunityActivity(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointCommunityActivity)
}

func (c *GHDataClient) ContributorBreadth(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointContributorBreadth)
}

func (c *GHDataClient) ContributorDiversity(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointContributorDiversity)
}

func (c *GHDataClient) Transparency(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointTransparency)
}

func (c *GHDataClient) BusFactor(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointBusFactor)
}

func (c *GHDataClient) ContributionAcceptance(ctx context.Context) (domain.Dataset, error) {
	return c.Fetch(ctx, EndpointContributionAcceptance)
}

// Fetch performs GET api/unstable/{owner}/{repo}/{endpoint} and decodes the
// JSON array it returns.
func (c *GHDataClient) Fetch(ctx context.Context, endpoint string) (domain.Dataset, error) {
	reqURL := fmt.Sprintf("%sapi/unstable/%s/%s/%s", c.baseURL, url.PathEscape(c.owner), url.PathEscape(c.repo), endpoint)
	c.logger.WithField("url", reqURL).Debug("Fetching metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, endpoint, resp.StatusCode)
	}

	var data domain.Dataset
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	if data == nil {
		data = domain.Dataset{}
	}
	return data, nil
}
