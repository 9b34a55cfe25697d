// Package narrative implements the Narrative Agent (spec §4.4): a cached,
// LLM-backed generator of the investor-facing {vision, differentiation,
// timing, tagline} quadruple, with a deterministic per-field fallback.
package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pitchscope/pitchscope/pkg/agent"
	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/models"
)

const (
	model       = "gemini-1.5-pro"
	temperature = 0.7
	maxTokens   = 1024

	// CacheTTL is the TTL applied to every cached narrative (spec §4.4).
	CacheTTL = 86400 * time.Second
)

// Cache is the narrow persistence contract the Narrative Agent depends on,
// implemented by pkg/store/cache. A nil Cache (CACHE_URL unset) disables
// caching silently — every call takes the generate path.
type Cache interface {
	Get(ctx context.Context, key string) (*models.Narrative, bool, error)
	Set(ctx context.Context, key string, value *models.Narrative, ttl time.Duration) error
}

// Agent is the Narrative Agent.
type Agent struct {
	gateway llmgateway.Invoker
	cache   Cache
	logger  *slog.Logger
}

// New constructs a Narrative Agent. cache may be nil.
func New(gateway llmgateway.Invoker, cache Cache) *Agent {
	return &Agent{gateway: gateway, cache: cache, logger: slog.With("agent", "narrative")}
}

// Narrate implements the Narrator interface.
func (a *Agent) Narrate(ctx context.Context, facts *models.StartupFacts, opts agent.NarrativeOptions) (*models.Narrative, error) {
	cacheKey := ""
	if opts.CacheKey != "" && opts.UseCache && a.cache != nil {
		cacheKey = fmt.Sprintf("narrative:%s", opts.CacheKey)
		if cached, hit, err := a.cache.Get(ctx, cacheKey); err != nil {
			a.logger.Warn("narrative cache read failed", "error", err)
		} else if hit {
			return cached, nil
		}
	}

	narrative := a.generate(ctx, facts)

	if cacheKey != "" {
		if err := a.cache.Set(ctx, cacheKey, narrative, CacheTTL); err != nil {
			a.logger.Warn("narrative cache write failed", "error", err)
		}
	}

	return narrative, nil
}

func (a *Agent) generate(ctx context.Context, facts *models.StartupFacts) *models.Narrative {
	prompt := buildPrompt(facts)

	result, err := a.gateway.Invoke(ctx, model, prompt, llmgateway.Options{
		Temperature: temperature,
		MaxTokens:   maxTokens,
		SystemPrompt: "You are an investor memo writer. Respond with a single strict JSON " +
			"object only, containing exactly vision, differentiation, timing, and tagline.",
	})
	if err != nil {
		a.logger.Warn("narrative gateway invoke failed", "error", err)
		n := fallback(facts)
		n.Degraded = true
		return &n
	}

	fb := fallback(facts)
	if !result.OK {
		a.logger.Warn("LLM unavailable, using fallback narrative", "reason", result.Reason)
		fb.Degraded = true
		return &fb
	}

	obj, ok := llmgateway.ExtractJSON(result.Text)
	if !ok {
		a.logger.Warn("LLM response was not valid JSON, using fallback narrative")
		fb.Degraded = true
		return &fb
	}

	n := fb
	if v, ok := llmgateway.StringField(obj, "vision"); ok && v != "" {
		n.Vision = v
	}
	if v, ok := llmgateway.StringField(obj, "differentiation"); ok && v != "" {
		n.Differentiation = v
	}
	if v, ok := llmgateway.StringField(obj, "timing"); ok && v != "" {
		n.Timing = v
	}
	if v, ok := llmgateway.StringField(obj, "tagline"); ok && v != "" {
		n.Tagline = v
	}
	return &n
}

func buildPrompt(facts *models.StartupFacts) string {
	var b strings.Builder
	b.WriteString("Write a short investor narrative for this startup.\n\n")
	if facts != nil {
		fmt.Fprintf(&b, "NAME: %s\n", orNotSpecified(facts.Name))
		fmt.Fprintf(&b, "SECTOR: %s\n", orNotSpecified(facts.Sector))
		fmt.Fprintf(&b, "DESCRIPTION: %s\n", orNotSpecified(facts.Description))
		fmt.Fprintf(&b, "SOLUTION: %s\n", orNotSpecified(facts.Solution))
		fmt.Fprintf(&b, "TECHNOLOGY: %s\n", orNotSpecified(facts.Technology))
		fmt.Fprintf(&b, "COMPETITION: %s\n", orNotSpecified(facts.Competition))
		fmt.Fprintf(&b, "MARKET: %s\n\n", orNotSpecified(facts.Market))
	}
	b.WriteString(`Respond with strict JSON: {"vision": "...", "differentiation": "...", "timing": "...", "tagline": "..."}` +
		" — tagline must be 12 words or fewer.")
	return b.String()
}

func orNotSpecified(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}

// fallback implements the spec §4.4 rule-based generator, one rule per field.
func fallback(facts *models.StartupFacts) models.Narrative {
	if facts == nil {
		facts = &models.StartupFacts{}
	}
	name := orNotSpecified(facts.Name)
	sector := orNotSpecified(facts.Sector)

	solutionOrDescription := facts.Solution
	if solutionOrDescription == "" {
		solutionOrDescription = facts.Description
	}
	if solutionOrDescription == "" {
		solutionOrDescription = "addressing an unmet need"
	}

	techOrSolution := facts.Technology
	if techOrSolution == "" {
		techOrSolution = facts.Solution
	}
	if techOrSolution == "" {
		techOrSolution = "its approach"
	}

	competitionOrExisting := facts.Competition
	if competitionOrExisting == "" {
		competitionOrExisting = "existing solutions"
	}

	return models.Narrative{
		Vision:          fmt.Sprintf("%s aims to transform %s by %s.", name, sector, solutionOrDescription),
		Differentiation: fmt.Sprintf("Differentiates via %s against %s.", techOrSolution, competitionOrExisting),
		Timing:          fmt.Sprintf("%s is growing and %s makes now the right time.", sector, trendToken(facts.Market)),
		Tagline:         tagline(facts.Description),
	}
}

// trendToken extracts a short "why now" phrase from the market field — the
// first clause up to 6 words, or a generic phrase if market is blank.
func trendToken(market string) string {
	trimmed := strings.TrimSpace(market)
	if trimmed == "" {
		return "increasing market demand"
	}
	fields := strings.Fields(trimmed)
	if len(fields) > 6 {
		fields = fields[:6]
	}
	return strings.Join(fields, " ")
}

// tagline takes the first 10 words of description, title-cased (spec §4.4).
func tagline(description string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return "A New Approach"
	}
	fields := strings.Fields(trimmed)
	if len(fields) > 10 {
		fields = fields[:10]
	}
	for i, w := range fields {
		fields[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(fields, " ")
}
