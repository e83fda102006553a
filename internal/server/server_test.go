package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/naka-gawa/repo-health/internal/chart"
	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/naka-gawa/repo-health/internal/gateway"
	"github.com/naka-gawa/repo-health/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testMetrics = []usecase.Metric{
	{
		Name: "commits",
		Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) {
			return domain.Dataset{
				{"date": "2016-03-07T00:00:00.000Z", "commits": float64(3)},
				{"date": "2016-03-14T00:00:00.000Z", "commits": float64(5)},
			}, nil
		},
		Chart: chart.Config{Title: "Commits/Week", ChartType: chart.Point, LeastSquares: true, Height: 300, XAccessor: "date", YAccessor: "commits", Target: "#commits-over-time"},
	},
	{
		Name: "bus_factor",
		Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) {
			return domain.Dataset{{"date": "2017-01-01T00:00:00Z", "value": float64(4)}}, nil
		},
		Chart: chart.Config{Title: "Bus Factor", ChartType: chart.Point, XAccessor: "date", YAccessor: "value", Target: "#bus_factor"},
	},
	{
		Name: "forks",
		Fetch: func(ctx context.Context, c gateway.MetricsClient) (domain.Dataset, error) {
			return nil, errors.New("metrics API unavailable")
		},
		Chart: chart.Config{Title: "Forks/Week", ChartType: chart.Point, XAccessor: "date", YAccessor: "projects", Target: "#forks-over-time"},
	},
}

func newTestServer(t *testing.T) (*Server, *[]domain.Target) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var targets []domain.Target
	factory := func(renderer chart.Renderer) *usecase.Reporter {
		newClient := func(target domain.Target) gateway.MetricsClient {
			targets = append(targets, target)
			return nil
		}
		return usecase.NewReporter(newClient, renderer, logger, usecase.WithMetrics(testMetrics))
	}
	return New(factory, usecase.Configs(testMetrics), logger), &targets
}

func TestServer_Report(t *testing.T) {
	srv, targets := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?owner=apache&repo=spark", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<h1 id="repo-label">apache / spark</h1>`)
	assert.Contains(t, body, `id="commits-over-time"`)
	assert.Contains(t, body, `id="bus_factor"`)
	assert.Contains(t, body, `id="forks-over-time"`)
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, `<p class="value">4</p>`)
	assert.Contains(t, body, "metrics API unavailable")
	assert.Equal(t, []domain.Target{{Owner: "apache", Repo: "spark"}}, *targets)
}

func TestServer_ReportWithoutTarget(t *testing.T) {
	srv, targets := newTestServer(t)

	for _, path := range []string{"/", "/?owner=apache", "/?repo=spark"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "?owner=OWNER&amp;repo=REPO", path)
		assert.NotContains(t, rec.Body.String(), "<svg", path)
	}
	assert.Empty(t, *targets)
}

func TestServer_ReportJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report?owner=apache&repo=spark", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Label    string `json:"label"`
		Outcomes []struct {
			Metric string `json:"metric"`
			Target string `json:"target"`
			Points int    `json:"points"`
			Error  string `json:"error"`
		} `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "apache / spark", report.Label)
	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, 2, report.Outcomes[0].Points)
	assert.Empty(t, report.Outcomes[0].Error)
	assert.Contains(t, report.Outcomes[2].Error, "metrics API unavailable")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report?owner=apache", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Probes(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	// Build one report so the self metrics have samples.
	srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/report?owner=a&repo=b", nil))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "repo_health_charts_total")
}
