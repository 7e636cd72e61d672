// Package server exposes portfolio reports over a read-only JSON API.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitemetrics/sitemetrics-go/internal/config"
	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
	"github.com/sitemetrics/sitemetrics-go/internal/project"
	"github.com/sitemetrics/sitemetrics-go/internal/provider"
	"github.com/sitemetrics/sitemetrics-go/internal/report"
)

// Server serves the dashboard API. Every request reads the portfolio
// from the provider; unchanged projects are served from the builder's
// memo cache.
type Server struct {
	router   *gin.Engine
	provider provider.Provider
	builder  *report.Builder
	logger   *slog.Logger
	cfg      config.ServerConfig
}

// New creates a server. A nil logger discards output.
func New(p provider.Provider, b *report.Builder, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		router:   gin.New(),
		provider: p,
		builder:  b,
		logger:   logger,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.logRequests())

	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		api.GET("/status", s.getStatus)
		api.GET("/projects", s.listProjects)
		api.GET("/projects/:code", s.getProject)
		api.GET("/portfolio", s.getPortfolio)
		api.GET("/diagnostics", s.getDiagnostics)
		api.GET("/export.csv", s.export(report.FormatCSV))
		api.GET("/export.xlsx", s.export(report.FormatXLSX))
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard API listening", "addr", srv.Addr, "source", s.provider.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}

// portfolio loads the portfolio and builds its report, writing a 500
// response on failure.
func (s *Server) portfolio(c *gin.Context) (*report.PortfolioReport, bool) {
	p, err := s.provider.Load(c.Request.Context())
	if err != nil {
		s.logger.Error("loading portfolio", "source", s.provider.Name(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load portfolio"})
		return nil, false
	}
	rep := s.builder.Portfolio(p)
	return &rep, true
}

// StatusResponse summarizes the loaded portfolio.
type StatusResponse struct {
	Source       string          `json:"source"`
	ProjectCount int             `json:"projectCount"`
	OverallScore metrics.Percent `json:"overallScore"`
	Band         metrics.Band    `json:"band,omitempty"`
	Warnings     int             `json:"warnings"`
	Errors       int             `json:"errors"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// getStatus handles GET /api/status.
func (s *Server) getStatus(c *gin.Context) {
	rep, ok := s.portfolio(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, StatusResponse{
		Source:       s.provider.Name(),
		ProjectCount: rep.ProjectCount,
		OverallScore: rep.OverallScore,
		Band:         rep.Band,
		Warnings:     rep.Warnings(),
		Errors:       rep.Errors(),
		GeneratedAt:  rep.GeneratedAt,
	})
}

// listProjects handles GET /api/projects?sort=&desc=&stage=&min_score=&band=&delayed=.
func (s *Server) listProjects(c *gin.Context) {
	key, err := report.ParseSortKey(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, ok := s.portfolio(c)
	if !ok {
		return
	}
	rows := filter.Apply(rep.Projects)
	report.Sort(rows, key, c.Query("desc") == "true")

	c.JSON(http.StatusOK, gin.H{
		"total":    len(rows),
		"projects": rows,
	})
}

func parseFilter(c *gin.Context) (report.Filter, error) {
	f := report.Filter{Stage: c.Query("stage")}
	if v := c.Query("min_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid min_score %q", v)
		}
		f.MinScore = n
	}
	band, err := report.ParseBand(c.Query("band"))
	if err != nil {
		return f, err
	}
	f.Band = band
	if v := c.Query("delayed"); v != "" {
		delayed, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid delayed %q", v)
		}
		f.Delayed = delayed
	}
	return f, nil
}

// getProject handles GET /api/projects/:code.
func (s *Server) getProject(c *gin.Context) {
	code := c.Param("code")
	rec, err := provider.Get(c.Request.Context(), s.provider, code)
	if errors.Is(err, provider.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("project %q not found", code)})
		return
	}
	if err != nil {
		s.logger.Error("loading project", "source", s.provider.Name(), "code", code, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load portfolio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": rec,
		"report":  s.builder.Project(rec),
	})
}

// getPortfolio handles GET /api/portfolio.
func (s *Server) getPortfolio(c *gin.Context) {
	rep, ok := s.portfolio(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

// getDiagnostics handles GET /api/diagnostics.
func (s *Server) getDiagnostics(c *gin.Context) {
	rep, ok := s.portfolio(c)
	if !ok {
		return
	}
	issues := rep.Diagnostics
	if issues == nil {
		issues = []project.Issue{}
	}
	c.JSON(http.StatusOK, gin.H{
		"errors":      rep.Errors(),
		"warnings":    rep.Warnings(),
		"diagnostics": issues,
	})
}

// export handles GET /api/export.csv and /api/export.xlsx.
func (s *Server) export(format report.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		rep, ok := s.portfolio(c)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := report.Write(&buf, rep, format); err != nil {
			s.logger.Error("building export", "format", format, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
			return
		}

		filename := fmt.Sprintf("portfolio-%s.%s", rep.GeneratedAt.Format("2006-01-02"), format)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}
