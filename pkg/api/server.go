// Package api is the thin HTTP adapter over the evaluation pipeline (spec
// §6), built on Echo v5 following the teacher's server shape: one Server
// holding its dependencies, a setupRoutes pass, and a handler per route in
// its own file.
package api

import (
	"context"
	"net/http"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/pitchscope/pitchscope/pkg/agent"
	"github.com/pitchscope/pitchscope/pkg/agent/scoring"
	"github.com/pitchscope/pitchscope/pkg/config"
	"github.com/pitchscope/pitchscope/pkg/orchestrator"
	"github.com/pitchscope/pitchscope/pkg/ratelimit"
	"github.com/pitchscope/pitchscope/pkg/store/cache"
	"github.com/pitchscope/pitchscope/pkg/store/reportstore"
)

// Server is the HTTP API server.
type Server struct {
	echo         *echo.Echo
	httpServer   *http.Server
	cfg          *config.Config
	ingester     agent.Ingester
	scorer       *scoring.Agent
	critic       agent.Critic
	narrator     agent.Narrator
	orchestrator *orchestrator.Orchestrator
	cache        cache.Store // nil if CACHE_URL unconfigured
	reports      *reportstore.Store
	limiter      *ratelimit.Limiter
}

// NewServer builds a Server and registers every spec §6 route.
func NewServer(
	cfg *config.Config,
	ingester agent.Ingester,
	scorer *scoring.Agent,
	critic agent.Critic,
	narrator agent.Narrator,
	orch *orchestrator.Orchestrator,
	cacheStore cache.Store,
	reports *reportstore.Store,
	limiter *ratelimit.Limiter,
) *Server {
	e := echo.New()

	s := &Server{
		echo:         e,
		cfg:          cfg,
		ingester:     ingester,
		scorer:       scorer,
		critic:       critic,
		narrator:     narrator,
		orchestrator: orch,
		cache:        cacheStore,
		reports:      reports,
		limiter:      limiter,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(10 * 1024 * 1024))
	s.echo.Use(securityHeaders())

	s.echo.GET("/health", s.healthHandler)

	s.echo.POST("/ingest", rateLimited(s.limiter, s.ingestHandler))
	s.echo.POST("/score", s.scoreHandler)
	s.echo.POST("/critique", s.critiqueHandler)
	s.echo.POST("/narrative", s.narrativeHandler)
	s.echo.GET("/narrative/cache/:id", s.getNarrativeCacheHandler)
	s.echo.DELETE("/narrative/cache/:id", s.deleteNarrativeCacheHandler)
	s.echo.POST("/evaluate", rateLimited(s.limiter, s.evaluateHandler))
	s.echo.GET("/evaluate/reports/:id", s.getReportHandler)
}

// Start starts the HTTP server on addr (non-blocking to the caller in the
// sense that it returns only on error or Shutdown).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
