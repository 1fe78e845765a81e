// Package webapi serves issue metrics over HTTP for dashboards and
// automation. It reuses the core calculation paths, so a request sees
// exactly what the CLI would print.
package webapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/trackline/trackline/core"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/internal/metricstore"
	"github.com/trackline/trackline/internal/tracker"
	"github.com/trackline/trackline/schema"
)

// shutdownTimeout bounds how long in-flight requests may run during a
// graceful stop.
const shutdownTimeout = 10 * time.Second

// refreshTimeout bounds one scheduled report refresh.
const refreshTimeout = 5 * time.Minute

// Server wires the HTTP surface over the metrics pipeline.
type Server struct {
	cfg  *contract.Config
	log  zerolog.Logger
	echo *echo.Echo
	cron *cron.Cron

	// refreshMu serializes report refreshes so overlapping requests and
	// cron firings cannot double-persist the same populations.
	refreshMu sync.Mutex
}

// NewServer builds a server around a validated config.
func NewServer(cfg *contract.Config) *Server {
	s := &Server{
		cfg: cfg,
		log: zerolog.New(os.Stderr).With().Timestamp().Str("component", "webapi").Logger(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	e.GET("/healthz", s.handleHealth)

	api := e.Group("/api/v1")
	api.GET("/projects", s.handleProjects)
	api.GET("/groups", s.handleGroups)
	api.GET("/metrics/:project", s.handleMetrics)
	api.GET("/runs", s.handleRuns)
	api.POST("/refresh", s.handleRefresh)

	s.echo = e
	return s
}

// StartServer runs the HTTP API until the context is canceled or a
// shutdown signal arrives.
func StartServer(ctx context.Context, cfg *contract.Config) error {
	return NewServer(cfg).Run(ctx)
}

// Run serves until the context is canceled or SIGINT/SIGTERM arrives,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.cfg.RefreshCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(s.cfg.RefreshCron, s.cronRefresh); err != nil {
			return fmt.Errorf("invalid refresh cron %q: %w", s.cfg.RefreshCron, err)
		}
		c.Start()
		s.cron = c
		s.log.Info().Str("cron", s.cfg.RefreshCron).Msg("scheduled report refresh")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.ServeAddr)
	}()
	s.log.Info().Str("addr", s.cfg.ServeAddr).Msg("listening")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	if s.cron != nil {
		s.cron.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// requestLogger emits one structured event per request.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.Info().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Dur("took", time.Since(start)).
			Msg("request")
		return nil
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleProjects lists the projects the issue source currently knows.
func (s *Server) handleProjects(c echo.Context) error {
	source, err := tracker.NewSource(s.cfg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	defer func() { _ = source.Close() }()

	projects, err := source.ActiveProjects(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"source":   s.cfg.Source,
		"projects": projects,
	})
}

// handleGroups describes the status taxonomy for a source and issue
// type, with the server's override applied the way the CLI would.
func (s *Server) handleGroups(c echo.Context) error {
	src := s.cfg.Source
	if v := c.QueryParam("source"); v != "" {
		src = schema.Source(v)
		if _, ok := schema.ValidSources[src]; !ok {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("unknown source %q", v)})
		}
	}
	issueType := s.cfg.IssueType
	if v := c.QueryParam("type"); v != "" {
		issueType = v
	}

	profile, err := schema.GetProfile(src, issueType)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	}
	if s.cfg.Override != nil {
		profile = s.cfg.Override.Apply(profile)
	}

	return c.JSON(http.StatusOK, schema.GroupsResult{
		Source:    src,
		IssueType: issueType,
		Lines:     profile.Taxonomy.Describe(),
	})
}

// handleMetrics computes one population's metrics on demand. Every hit
// fetches fresh issues and works on its own config clone, so concurrent
// requests never share state and nothing is persisted. Requests default
// to the current instant; pass as-of to pin the snapshot.
func (s *Server) handleMetrics(c echo.Context) error {
	issueType := s.cfg.IssueType
	if v := c.QueryParam("type"); v != "" {
		issueType = v
	}
	popCfg, err := s.cfg.CloneForIssueType(issueType)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	}
	popCfg.Project = c.Param("project")

	popCfg.AsOf = time.Now().UTC()
	if v := c.QueryParam("as-of"); v != "" {
		t, err := schema.ParseDate(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		}
		popCfg.AsOf = t
	}

	if v := c.QueryParam("strategy"); v != "" {
		strategy := schema.AggStrategy(v)
		if _, ok := schema.ValidAggStrategies[strategy]; !ok {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("unknown strategy %q", v)})
		}
		popCfg.Strategy = strategy
	}
	if v := c.QueryParam("skip-ages"); v != "" {
		skip, err := contract.ParseBoolString(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		}
		popCfg.SkipAges = skip
	}

	result, err := core.ComputeMetrics(c.Request().Context(), popCfg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// handleRuns lists persisted runs when a store is enabled.
func (s *Server) handleRuns(c echo.Context) error {
	store := metricstore.Manager.GetRunStore()
	if store == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": "run store not configured"})
	}

	limit := s.cfg.RunLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > contract.MaxRunLimit {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("limit must be between 1 and %d", contract.MaxRunLimit)})
		}
		limit = n
	}

	records, err := store.ListRuns(limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	if records == nil {
		records = []schema.RunRecord{}
	}
	return c.JSON(http.StatusOK, map[string]any{"runs": records})
}

// handleRefresh recomputes the configured report once, persisting each
// population when a run store is enabled.
func (s *Server) handleRefresh(c echo.Context) error {
	result, err := s.refresh(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"as_of":   result.AsOf,
		"groups":  len(result.Groups),
		"entries": len(result.Entries),
	})
}

// refresh runs the report over a fresh clone so as-of reflects now.
func (s *Server) refresh(ctx context.Context) (*schema.ReportResult, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	cfg := s.cfg.Clone()
	cfg.AsOf = time.Now().UTC()
	return core.ComputeReport(ctx, cfg)
}

// cronRefresh adapts refresh for the scheduler.
func (s *Server) cronRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	s.log.Info().Msg("cron: report refresh")
	result, err := s.refresh(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cron: refresh failed")
		return
	}
	s.log.Info().Int("entries", len(result.Entries)).Msg("cron: refresh done")
}
