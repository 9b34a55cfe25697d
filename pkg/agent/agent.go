// Package agent declares the six narrow per-agent interfaces the
// orchestrator composes. Per spec §9's Design Notes, agents share the
// shape "takes a typed input, emits a typed output, never throws for LLM
// failure" — but that shape is expressed as six single-method interfaces,
// not one shared base type reached via inheritance. Each agent is an
// independent unit; the orchestrator is generic over the set only in the
// sense that it holds one of each and calls them in sequence/fan-out.
package agent

import (
	"context"

	"github.com/pitchscope/pitchscope/pkg/models"
)

// Ingester normalizes a raw input source into a StartupFacts record.
// Only Ingester may return a non-nil error (IngestionFailed); every other
// agent's failure paths are absorbed into its typed output's Degraded flag.
type Ingester interface {
	Ingest(ctx context.Context, source Source) (*models.StartupFacts, error)
}

// Scorer produces per-dimension scores and the weighted composite.
type Scorer interface {
	Score(ctx context.Context, facts *models.StartupFacts) (*models.ScoreReport, error)
}

// Critic emits ranked red flags and an overall risk label.
type Critic interface {
	Critique(ctx context.Context, scores *models.ScoreReport, facts *models.StartupFacts) (*models.CritiqueReport, error)
}

// NarrativeOptions controls cache usage for the Narrative Agent.
type NarrativeOptions struct {
	CacheKey string
	UseCache bool
}

// Narrator emits the investor narrative quadruple.
type Narrator interface {
	Narrate(ctx context.Context, facts *models.StartupFacts, opts NarrativeOptions) (*models.Narrative, error)
}

// Benchmarker compares extracted metrics against per-industry priors.
type Benchmarker interface {
	Benchmark(ctx context.Context, facts *models.StartupFacts) (*models.BenchmarkReport, error)
}

// Reporter renders the aggregated evaluation to a PDF blob and assigns it
// a stable report id.
type Reporter interface {
	Render(ctx context.Context, eval *models.EvaluationResult) (reportID string, blob []byte, err error)
}
