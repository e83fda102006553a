package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGHDataClient_Accessors(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `[{"date":"2016-03-07T00:00:00.000Z","value":1}]`)
	}))
	defer server.Close()

	client := NewGHDataClient(server.URL, "apache", "spark", "", server.Client(), discardLogger())
	accessors := []struct {
		endpoint string
		call     func(context.Context) (domain.Dataset, error)
	}{
		{EndpointCommits, client.CommitsByWeek},
		{EndpointStargazers, client.StargazersByWeek},
		{EndpointForks, client.ForksByWeek},
		{EndpointIssues, client.IssuesByWeek},
		{EndpointPulls, client.PullRequestsByWeek},
		{EndpointDistributionOfWork, client.DistributionOfWork},
		{EndpointReopenedIssues, client.ReopenedIssues},
		{EndpointCommunityActivity, client.CommunityActivity},
		{EndpointContributorBreadth, client.ContributorBreadth},
		{EndpointContributorDiversity, client.ContributorDiversity},
		{EndpointTransparency, client.Transparency},
		{EndpointBusFactor, client.BusFactor},
		{EndpointContributionAcceptance, client.ContributionAcceptance},
	}

	for _, a := range accessors {
		data, err := a.call(context.Background())
		require.NoError(t, err, a.endpoint)
		require.Len(t, data, 1)
		assert.Equal(t, json.Number("1"), data[0]["value"])
	}

	require.Len(t, paths, len(accessors))
	for i, a := range accessors {
		assert.Equal(t, "/api/unstable/apache/spark/"+a.endpoint, paths[i])
	}
}

func TestGHDataClient_Fetch(t *testing.T) {
	testCases := []struct {
		name           string
		status         int
		body           string
		expectedLen    int
		expectError    bool
		expectedErrMsg string
	}{
		{
			name:        "happy path - array of records",
			status:      http.StatusOK,
			body:        `[{"date":"2016-03-07T00:00:00.000Z","commits":4},{"date":"2016-03-14T00:00:00.000Z","commits":2}]`,
			expectedLen: 2,
		},
		{
			name:        "null body is an empty dataset",
			status:      http.StatusOK,
			body:        `null`,
			expectedLen: 0,
		},
		{
			name:           "error case - server error",
			status:         http.StatusInternalServerError,
			body:           `{"message":"boom"}`,
			expectError:    true,
			expectedErrMsg: "returned 500",
		},
		{
			name:           "error case - not an array",
			status:         http.StatusOK,
			body:           `{"commits":4}`,
			expectError:    true,
			expectedErrMsg: "failed to decode",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			client := NewGHDataClient(server.URL+"/", "apache", "spark", "", server.Client(), discardLogger())
			data, err := client.Fetch(context.Background(), EndpointCommits)
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				if tc.status != http.StatusOK {
					assert.ErrorIs(t, err, ErrUnexpectedStatus)
				}
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, data)
			assert.Len(t, data, tc.expectedLen)
		})
	}
}

func TestGHDataClient_EscapesAndAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ghdata/api/unstable/some%20owner/a%2Fb/bus_factor", r.URL.EscapedPath())
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewGHDataClient(server.URL+"/ghdata", "some owner", "a/b", "secret", server.Client(), discardLogger())
	_, err := client.BusFactor(context.Background())
	assert.NoError(t, err)
}

func TestGHDataClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewGHDataClient(server.URL, "apache", "spark", "", server.Client(), discardLogger())
	_, err := client.CommitsByWeek(ctx)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context canceled"))
}
