// Package server serves the repository health dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naka-gawa/repo-health/internal/chart"
	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/naka-gawa/repo-health/internal/query"
	"github.com/naka-gawa/repo-health/internal/usecase"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// ReporterFactory creates a reporter drawing into renderer. The server
// builds one reporter per request so a report never outlives its request.
type ReporterFactory func(renderer chart.Renderer) *usecase.Reporter

// Server is the dashboard HTTP server.
type Server struct {
	engine      *gin.Engine
	newReporter ReporterFactory
	configs     []chart.Config
	logger      logrus.FieldLogger
}

// New creates a Server. configs declares the chart slots of the page, in
// display order.
func New(newReporter ReporterFactory, configs []chart.Config, logger logrus.FieldLogger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.SetHTMLTemplate(template.Must(template.New("report").Parse(reportTemplate)))

	s := &Server{
		engine:      engine,
		newReporter: newReporter,
		configs:     configs,
		logger:      logger,
	}
	engine.GET("/", s.handleReport)
	engine.GET("/api/report", s.handleReportJSON)
	engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down dashboard")
		return srv.Shutdown(context.Background())
	}
}

type reportView struct {
	Label    string
	Skipped  bool
	Summary  *domain.RepoSummary
	Panels   []chart.Panel
	Failures map[string]string
}

func (s *Server) handleReport(c *gin.Context) {
	target := query.TargetFromURL(c.Request.URL.String())
	page := chart.NewPage(s.configs)
	report, err := s.newReporter(page).Build(c.Request.Context(), target)

	view := reportView{Skipped: report.Skipped, Failures: map[string]string{}}
	if err != nil && !errors.Is(err, usecase.ErrMissingTarget) {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	if !report.Skipped {
		view.Label = report.Label
		view.Panels = page.Panels()
		view.Summary = report.Summary
		for _, o := range report.Failed() {
			view.Failures[o.Target] = o.Error
		}
	}
	c.HTML(http.StatusOK, "report", view)
}

func (s *Server) handleReportJSON(c *gin.Context) {
	target := query.TargetFromURL(c.Request.URL.String())
	report, err := s.newReporter(discard{}).Build(c.Request.Context(), target)
	if errors.Is(err, usecase.ErrMissingTarget) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// discard is the renderer of the JSON endpoint, which reports outcomes only.
type discard struct{}

func (discard) Render(ctx context.Context, cfg chart.Config, data domain.Dataset) error {
	return nil
}
