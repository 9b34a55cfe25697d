// Package orchestrator implements the Orchestrator (spec §4.8): it
// sequences the six agents, fans out Scoring/Narrative/Benchmark
// concurrently via errgroup, runs Critique once Scoring resolves, renders
// the Report, and persists the blob. Only an Ingestion failure aborts the
// pipeline; every other agent failure degrades in place.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pitchscope/pitchscope/pkg/agent"
	"github.com/pitchscope/pitchscope/pkg/agent/report"
	"github.com/pitchscope/pitchscope/pkg/evalerrors"
	"github.com/pitchscope/pitchscope/pkg/models"
	"github.com/pitchscope/pitchscope/pkg/store/reportstore"
)

// Orchestrator holds one instance of each agent and the Report Store.
type Orchestrator struct {
	ingester    agent.Ingester
	scorer      agent.Scorer
	critic      agent.Critic
	narrator    agent.Narrator
	benchmarker agent.Benchmarker
	reporter    agent.Reporter
	reports     *reportstore.Store
	logger      *slog.Logger
}

// New constructs an Orchestrator from one of each agent and the Report Store.
func New(
	ingester agent.Ingester,
	scorer agent.Scorer,
	critic agent.Critic,
	narrator agent.Narrator,
	benchmarker agent.Benchmarker,
	reporter agent.Reporter,
	reports *reportstore.Store,
) *Orchestrator {
	return &Orchestrator{
		ingester: ingester, scorer: scorer, critic: critic, narrator: narrator,
		benchmarker: benchmarker, reporter: reporter, reports: reports,
		logger: slog.With("component", "orchestrator"),
	}
}

// Options carries optional per-evaluation knobs — currently whether the
// Narrative Agent should consult the cache, keyed by evaluation id.
type Options struct {
	UseNarrativeCache bool
}

// Evaluate runs the full pipeline for source (spec §4.8).
func (o *Orchestrator) Evaluate(ctx context.Context, source agent.Source, opts Options) (*models.EvaluationResult, error) {
	evaluationID := uuid.New().String()
	logger := o.logger.With("evaluation_id", evaluationID)

	facts, err := o.ingester.Ingest(ctx, source)
	if err != nil {
		logger.Warn("ingestion failed, aborting evaluation", "error", err)
		return nil, err
	}

	var (
		scores     *models.ScoreReport
		narrative  *models.Narrative
		benchmarks *models.BenchmarkReport

		scoringRun, narrativeRun, benchmarkRun models.AgentRun
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(runTimed(&scoringRun, "scoring", func() error {
		r, err := o.scorer.Score(gctx, facts)
		scores = r
		return err
	}))
	g.Go(runTimed(&narrativeRun, "narrative", func() error {
		r, err := o.narrator.Narrate(gctx, facts, agent.NarrativeOptions{
			CacheKey: evaluationID,
			UseCache: opts.UseNarrativeCache,
		})
		narrative = r
		return err
	}))
	g.Go(runTimed(&benchmarkRun, "benchmark", func() error {
		r, err := o.benchmarker.Benchmark(gctx, facts)
		benchmarks = r
		return err
	}))

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			logger.Warn("evaluation cancelled during fan-out")
			return nil, fmt.Errorf("orchestrator: %w", evalerrors.ErrCancelled)
		}
		// Per-agent failures never abort (spec §4.8); this branch is
		// reachable only if an agent violates its "never raise" contract.
		logger.Warn("unexpected agent error during fan-out", "error", err)
	}

	// Each concurrent agent wrote its own AgentRun into a distinct local
	// above; the slice is only assembled here, after g.Wait(), so there is
	// no concurrent append to synchronize.
	timeline := []models.AgentRun{scoringRun, narrativeRun, benchmarkRun}

	var critique *models.CritiqueReport
	critiqueRun := timedRun("critique", func() error {
		r, err := o.critic.Critique(ctx, scores, facts)
		critique = r
		return err
	})
	timeline = append(timeline, critiqueRun)
	if ctx.Err() != nil {
		return nil, fmt.Errorf("orchestrator: %w", evalerrors.ErrCancelled)
	}

	eval := &models.EvaluationResult{
		EvaluationID:  evaluationID,
		StartupName:   facts.Name,
		Facts:         *facts,
		Scores:        *scores,
		Critique:      *critique,
		Narrative:     *narrative,
		Benchmarks:    *benchmarks,
		CreatedAt:     time.Now().UTC(),
		AgentTimeline: timeline,
	}

	reportID, blob, err := o.reporter.Render(ctx, eval)
	if err != nil {
		logger.Error("report rendering failed", "error", err)
		return nil, fmt.Errorf("orchestrator: %w: %v", evalerrors.ErrStoreUnavailable, err)
	}
	eval.ReportID = reportID

	storeBlob := reportstore.Blob{
		Data:        blob,
		ContentType: report.ContentType,
		Filename:    report.Filename(eval.StartupName),
	}
	if err := o.reports.Put(ctx, reportID, storeBlob); err != nil {
		logger.Error("report store write failed", "error", err)
		return nil, fmt.Errorf("orchestrator: %w: %v", evalerrors.ErrStoreUnavailable, err)
	}

	return eval, nil
}

// runTimed returns an errgroup task that times fn and writes the resulting
// AgentRun into slot. Each caller passes a distinct slot, so concurrent
// invocations from separate goroutines never touch the same memory.
func runTimed(slot *models.AgentRun, name string, fn func() error) func() error {
	return func() error {
		*slot = timedRun(name, fn)
		return nil
	}
}

func timedRun(name string, fn func() error) models.AgentRun {
	started := time.Now().UTC()
	err := fn()
	finished := time.Now().UTC()
	return models.AgentRun{
		Agent:      name,
		StartedAt:  started,
		FinishedAt: finished,
		Degraded:   err != nil,
	}
}
