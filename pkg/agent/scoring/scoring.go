// Package scoring implements the Scoring Agent (spec §4.2): it turns the
// four dimension fields of a StartupFacts record into per-dimension
// DimensionAssessments and a weighted composite ScoreReport, falling back
// to keyword-heuristic scoring when the LLM path is unavailable.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/models"
)

const (
	model       = "gemini-1.5-pro"
	temperature = 0.3
	maxTokens   = 2048
)

// Agent is the Scoring Agent.
type Agent struct {
	gateway llmgateway.Invoker
	logger  *slog.Logger
}

// New constructs a Scoring Agent against a shared Gateway.
func New(gateway llmgateway.Invoker) *Agent {
	return &Agent{gateway: gateway, logger: slog.With("agent", "scoring")}
}

// Fields is the raw four-dimension input; Score also accepts a
// *models.StartupFacts and derives these via FieldsFromFacts.
type Fields struct {
	Idea     string
	Team     string
	Traction string
	Market   string
}

// notSpecified fills any blank scoring field (spec §4.2).
const notSpecified = "not specified"

// FieldsFromFacts derives the four scoring fields from a StartupFacts
// record (description→idea, team→team, traction→traction, market→market);
// missing fields become "not specified" (spec §4.2).
func FieldsFromFacts(facts *models.StartupFacts) Fields {
	fill := func(s string) string {
		if s == "" {
			return notSpecified
		}
		return s
	}
	return Fields{
		Idea:     fill(facts.Description),
		Team:     fill(facts.Team),
		Traction: fill(facts.Traction),
		Market:   fill(facts.Market),
	}
}

// Score implements the Scorer interface for a StartupFacts input.
func (a *Agent) Score(ctx context.Context, facts *models.StartupFacts) (*models.ScoreReport, error) {
	return a.ScoreFields(ctx, FieldsFromFacts(facts))
}

// ScoreFields runs the full algorithm over the raw four fields directly
// (used by the /score HTTP route, which validates minimum length itself —
// the agent never raises for short input; that is the calling boundary's
// concern per spec §4.2).
func (a *Agent) ScoreFields(ctx context.Context, f Fields) (*models.ScoreReport, error) {
	prompt := buildPrompt(f)

	result, err := a.gateway.Invoke(ctx, model, prompt, llmgateway.Options{
		Temperature: temperature,
		MaxTokens:   maxTokens,
		SystemPrompt: "You are a rigorous, skeptical venture capital analyst. " +
			"Respond with a single strict JSON object only.",
	})
	if err != nil {
		return nil, fmt.Errorf("scoring: gateway invoke: %w", err)
	}

	var report models.ScoreReport
	if !result.OK {
		a.logger.Warn("LLM unavailable, using heuristic scoring", "reason", result.Reason)
		report = heuristicScore(f)
		report.Degraded = true
	} else if obj, ok := llmgateway.ExtractJSON(result.Text); ok {
		report = parseScoreReport(obj, f)
	} else {
		a.logger.Warn("LLM response was not valid JSON, using heuristic scoring")
		report = heuristicScore(f)
		report.Degraded = true
	}

	clampReport(&report)
	report.OverallScore = overallScore(&report)
	report.Recommendation = recommendation(report.OverallScore)
	report.Confidence = confidence(f, report.Degraded)

	return &report, nil
}

func buildPrompt(f Fields) string {
	var b strings.Builder
	b.WriteString("Evaluate this startup across four dimensions: idea, team, traction, market.\n\n")
	fmt.Fprintf(&b, "IDEA: %s\n\n", f.Idea)
	fmt.Fprintf(&b, "TEAM: %s\n\n", f.Team)
	fmt.Fprintf(&b, "TRACTION: %s\n\n", f.Traction)
	fmt.Fprintf(&b, "MARKET: %s\n\n", f.Market)
	b.WriteString("Respond with strict JSON of this exact shape:\n")
	b.WriteString(`{"idea": {"score": 0-10, "assessment": "...", "strengths": ["..."], "concerns": ["..."]}, ` +
		`"team": {...}, "traction": {...}, "market": {...}}`)
	return b.String()
}

func parseScoreReport(obj map[string]any, f Fields) models.ScoreReport {
	heuristic := heuristicScore(f)
	return models.ScoreReport{
		Idea:     parseDimension(obj, "idea", heuristic.Idea),
		Team:     parseDimension(obj, "team", heuristic.Team),
		Traction: parseDimension(obj, "traction", heuristic.Traction),
		Market:   parseDimension(obj, "market", heuristic.Market),
	}
}

// parseDimension extracts one dimension's assessment from the top-level
// JSON object, falling back to fallback (the heuristic result for that
// dimension) field-by-field — spec §4.1: "treat any missing field as 'use
// fallback for that field' rather than rejecting the whole response".
func parseDimension(obj map[string]any, key string, fallback models.DimensionAssessment) models.DimensionAssessment {
	raw, ok := obj[key]
	if !ok {
		return fallback
	}
	dimObj, ok := raw.(map[string]any)
	if !ok {
		return fallback
	}

	out := fallback
	if score, ok := llmgateway.NumberField(dimObj, "score"); ok {
		out.Score = score
	}
	if assessment, ok := llmgateway.StringField(dimObj, "assessment"); ok {
		out.Assessment = assessment
	}
	if strengths, ok := llmgateway.StringSliceField(dimObj, "strengths"); ok {
		out.Strengths = capList(strengths)
	}
	if concerns, ok := llmgateway.StringSliceField(dimObj, "concerns"); ok {
		out.Concerns = capList(concerns)
	}
	return out
}

func capList(items []string) []string {
	if len(items) > models.MaxListItems {
		return items[:models.MaxListItems]
	}
	return items
}

func clampReport(r *models.ScoreReport) {
	clampDim := func(d *models.DimensionAssessment) {
		if d.Score < 0 {
			d.Score = 0
		}
		if d.Score > 10 {
			d.Score = 10
		}
	}
	clampDim(&r.Idea)
	clampDim(&r.Team)
	clampDim(&r.Traction)
	clampDim(&r.Market)
}

func overallScore(r *models.ScoreReport) float64 {
	sum := models.Weights[models.DimensionIdea]*r.Idea.Score +
		models.Weights[models.DimensionTeam]*r.Team.Score +
		models.Weights[models.DimensionTraction]*r.Traction.Score +
		models.Weights[models.DimensionMarket]*r.Market.Score

	rounded := math.Round(sum*10) / 10
	if rounded < 0 {
		rounded = 0
	}
	if rounded > 10 {
		rounded = 10
	}
	return rounded
}

func recommendation(overall float64) string {
	switch {
	case overall >= 8.0:
		return "Strong Investment Opportunity — High conviction"
	case overall >= 6.5:
		return "Good Investment Opportunity — Worth exploring with additional research"
	case overall >= 5.0:
		return "Moderate Opportunity — Needs improvement in key areas"
	case overall >= 3.5:
		return "Weak Opportunity — Significant concerns"
	default:
		return "Not Recommended — Too many red flags"
	}
}

func confidence(f Fields, degraded bool) float64 {
	if degraded {
		return 0.5
	}
	c := 0.6
	for _, field := range []string{f.Idea, f.Team, f.Traction, f.Market} {
		if len(field) > 200 {
			c += 0.1
		}
	}
	if c > 0.95 {
		c = 0.95
	}
	return c
}
