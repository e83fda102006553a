// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/naka-gawa/repo-health/internal/chart"
	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/naka-gawa/repo-health/internal/gateway"
	"github.com/naka-gawa/repo-health/internal/telemetry"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrMissingTarget is returned when owner or repo is empty.
var ErrMissingTarget = errors.New("owner and repo are required")

// ClientFactory creates the metrics client for one repository.
type ClientFactory func(target domain.Target) gateway.MetricsClient

// Outcome is what happened to one metric of a report.
type Outcome struct {
	Metric   string        `json:"metric"`
	Target   string        `json:"target"`
	Points   int           `json:"points"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
	Err      error         `json:"-"`
}

// Report is the result of one report build.
type Report struct {
	Target   domain.Target       `json:"target"`
	Label    string              `json:"label"`
	Summary  *domain.RepoSummary `json:"summary,omitempty"`
	Skipped  bool                `json:"skipped"`
	Outcomes []Outcome           `json:"outcomes"`
}

// Failed returns the outcomes of metrics that were not rendered.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Reporter is the use case for building a repository health report.
// It fetches every metric of its table concurrently and renders each one as
// soon as its data arrives.
type Reporter struct {
	newClient   ClientFactory
	renderer    chart.Renderer
	logger      logrus.FieldLogger
	metrics     []Metric
	inspector   gateway.RepoInspector
	concurrency int
	timeout     time.Duration
	now         func() time.Time
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithConcurrency bounds the number of in-flight fetches. Zero means unbounded.
func WithConcurrency(n int) Option {
	return func(r *Reporter) { r.concurrency = n }
}

// WithTimeout bounds every single fetch. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Reporter) { r.timeout = d }
}

// WithInspector enables the GitHub summary in the report header.
func WithInspector(i gateway.RepoInspector) Option {
	return func(r *Reporter) { r.inspector = i }
}

// WithMetrics replaces the default metric table.
func WithMetrics(metrics []Metric) Option {
	return func(r *Reporter) { r.metrics = metrics }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.now = now }
}

// NewReporter creates a new Reporter instance.
func NewReporter(newClient ClientFactory, renderer chart.Renderer, logger logrus.FieldLogger, opts ...Option) *Reporter {
	r := &Reporter{
		newClient: newClient,
		renderer:  renderer,
		logger:    logger,
		metrics:   Metrics(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build fetches and renders every metric for target. A target without owner
// or repo yields a skipped report and ErrMissingTarget; nothing is fetched.
// Per-metric failures never fail the build, they are reported on the
// returned outcomes. A canceled ctx returns the partial report and ctx's error.
func (r *Reporter) Build(ctx context.Context, target domain.Target) (*Report, error) {
	if !target.Valid() {
		r.logger.WithFields(logrus.Fields{"owner": target.Owner, "repo": target.Repo}).Warn("Usecase: owner or repo missing, skipping report")
		telemetry.RecordReport(telemetry.StatusSkipped)
		return &Report{Target: target, Skipped: true}, ErrMissingTarget
	}

	r.logger.WithField("repo", target.Label()).Info("Usecase: Starting report build...")
	client := r.newClient(target)
	report := &Report{
		Target:   target,
		Label:    target.Label(),
		Outcomes: make([]Outcome, len(r.metrics)),
	}

	var eg errgroup.Group
	if r.concurrency > 0 {
		eg.SetLimit(r.concurrency)
	}

	if r.inspector != nil {
		eg.Go(func() error {
			summary, err := r.inspector.FetchRepoSummary(ctx, target.Owner, target.Repo)
			if err != nil {
				r.logger.WithError(err).Warn("Usecase: repository summary unavailable")
				return nil
			}
			report.Summary = summary
			return nil
		})
	}

	for i, m := range r.metrics {
		eg.Go(func() error {
			report.Outcomes[i] = r.run(ctx, client, m)
			// Only the caller giving up fails the build; metric errors stay on outcomes.
			return ctx.Err()
		})
	}

	if err := eg.Wait(); err != nil {
		telemetry.RecordReport(telemetry.StatusFailed)
		r.logger.WithError(err).Warn("Usecase: report build interrupted")
		return report, fmt.Errorf("failed to build report for %s: %w", report.Label, err)
	}

	failed := len(report.Failed())
	status := telemetry.StatusBuilt
	if failed == len(report.Outcomes) && failed > 0 {
		status = telemetry.StatusFailed
	}
	telemetry.RecordReport(status)
	r.logger.WithFields(logrus.Fields{
		"repo":   report.Label,
		"charts": len(report.Outcomes) - failed,
		"failed": failed,
	}).Info("Usecase: Report build complete.")
	return report, nil
}

// run fetches, checks and renders one metric. It never panics.
func (r *Reporter) run(ctx context.Context, client gateway.MetricsClient, m Metric) (out Outcome) {
	out = Outcome{Metric: m.Name, Target: m.Chart.Target}
	logger := r.logger.WithFields(logrus.Fields{"metric": m.Name, "target": m.Chart.Target})

	defer func() {
		if p := recover(); p != nil {
			out.Err = fmt.Errorf("panic while building %s: %v", m.Name, p)
		}
		if out.Err != nil {
			out.Error = out.Err.Error()
			logger.WithError(out.Err).Warn("Chart not rendered")
		} else {
			logger.WithField("points", out.Points).Debug("Chart rendered")
		}
		telemetry.RecordChart(m.Name, out.Err)
	}()

	fetchCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := m.Fetch(fetchCtx, client)
	out.Duration = time.Since(start)
	telemetry.RecordFetch(m.Name, out.Duration.Seconds())
	if err != nil {
		out.Err = fmt.Errorf("failed to fetch %s: %w", m.Name, err)
		return out
	}

	if m.Transform != nil {
		if data, err = m.Transform(data, r.now()); err != nil {
			out.Err = fmt.Errorf("failed to transform %s: %w", m.Name, err)
			return out
		}
	}
	if err := m.Chart.Validate(data); err != nil {
		out.Err = fmt.Errorf("invalid %s data: %w", m.Name, err)
		return out
	}
	if m.Chart.IsTimeSeries() {
		if data, err = domain.ConvertDates(data, m.Chart.XAccessor); err != nil {
			out.Err = fmt.Errorf("failed to convert dates of %s: %w", m.Name, err)
			return out
		}
	}

	out.Points = len(data)
	if err := r.renderer.Render(ctx, m.Chart, data); err != nil {
		out.Err = fmt.Errorf("failed to render %s: %w", m.Name, err)
	}
	return out
}
