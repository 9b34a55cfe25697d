// Command pitchscope runs the evaluation pipeline's HTTP server: it wires
// the LLM Gateway, the three durable stores, the six agents, the
// orchestrator, and the rate limiter, then serves the spec §6 HTTP surface.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pitchscope/pitchscope/pkg/agent/benchmark"
	"github.com/pitchscope/pitchscope/pkg/agent/critique"
	"github.com/pitchscope/pitchscope/pkg/agent/ingestion"
	"github.com/pitchscope/pitchscope/pkg/agent/narrative"
	"github.com/pitchscope/pitchscope/pkg/agent/report"
	"github.com/pitchscope/pitchscope/pkg/agent/scoring"
	"github.com/pitchscope/pitchscope/pkg/api"
	"github.com/pitchscope/pitchscope/pkg/config"
	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/orchestrator"
	"github.com/pitchscope/pitchscope/pkg/ratelimit"
	"github.com/pitchscope/pitchscope/pkg/store/cache"
	"github.com/pitchscope/pitchscope/pkg/store/critiquelog"
	"github.com/pitchscope/pitchscope/pkg/store/reportstore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load(os.Getenv)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := llmgateway.New(ctx, cfg)
	if err != nil {
		log.Fatalf("constructing llm gateway: %v", err)
	}

	cacheStore, err := buildCacheStore(cfg)
	if err != nil {
		log.Fatalf("constructing cache store: %v", err)
	}
	if cacheStore != nil {
		defer func() {
			if err := cacheStore.Close(); err != nil {
				logger.Error("closing cache store", "error", err)
			}
		}()
	}

	logAppender, closeLog := buildCritiqueLog(ctx, cfg, logger)
	if closeLog != nil {
		defer closeLog()
	}

	reports := reportstore.New()

	ingester := ingestion.New(gateway, http.DefaultClient)
	scorer := scoring.New(gateway)
	critic := critique.New(gateway, logAppender)
	narrator := narrative.New(gateway, cacheStore)
	benchmarker := benchmark.New(gateway)
	reporter := report.New()

	orch := orchestrator.New(ingester, scorer, critic, narrator, benchmarker, reporter, reports)
	limiter := ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitMax)

	server := api.NewServer(cfg, ingester, scorer, critic, narrator, orch, cacheStore, reports, limiter)

	go func() {
		logger.Info("http server listening", "port", cfg.HTTPPort)
		if err := server.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
}

// buildCacheStore constructs the narrative cache store. An unconfigured
// CACHE_URL returns a nil Store: the Narrative Agent then runs with
// caching disabled entirely rather than against a local in-memory stand-in
// (spec §6: "absence disables caching silently").
func buildCacheStore(cfg *config.Config) (cache.Store, error) {
	if cfg.CacheURL == "" {
		return nil, nil
	}
	return cache.New(cfg.CacheURL)
}

// buildCritiqueLog constructs and migrates the critique log store when
// CRITIQUE_LOG_URL is configured. Its absence disables logging silently
// (spec §6); migration and connection failures are fatal rather than
// silently skipped, since a configured-but-broken log is a deploy error.
func buildCritiqueLog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (critique.LogAppender, func()) {
	if cfg.CritiqueLogURL == "" {
		return nil, nil
	}

	if err := critiquelog.Migrate(pgx5URL(cfg.CritiqueLogURL)); err != nil {
		log.Fatalf("critique log migration: %v", err)
	}

	store, err := critiquelog.Open(ctx, cfg.CritiqueLogURL)
	if err != nil {
		log.Fatalf("critique log connect: %v", err)
	}
	logger.Info("critique log store connected")
	return store, store.Close
}

// pgx5URL rewrites a postgres:// connection string to the pgx5:// scheme
// golang-migrate's pgx/v5 driver requires.
func pgx5URL(postgresURL string) string {
	const prefix = "postgres://"
	if len(postgresURL) > len(prefix) && postgresURL[:len(prefix)] == prefix {
		return "pgx5://" + postgresURL[len(prefix):]
	}
	return postgresURL
}
