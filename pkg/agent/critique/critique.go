// Package critique implements the Critique Agent (spec §4.3): it asks the
// model to be skeptical about a scored startup, normalizes whatever comes
// back into the closed severity/category sets, and computes the
// deterministic overall risk label from the resulting RedFlag list.
package critique

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/agext/levenshtein"

	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/models"
)

const (
	model       = "gemini-1.5-pro"
	temperature = 0.3
	maxTokens   = 1536
)

var severityOrder = map[models.Severity]int{
	models.SeverityCritical: 4,
	models.SeverityHigh:     3,
	models.SeverityMedium:   2,
	models.SeverityLow:      1,
}

var closedSeverities = []models.Severity{
	models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical,
}

var closedCategories = map[models.Category]bool{
	models.CategoryIdea: true, models.CategoryTeam: true, models.CategoryTraction: true,
	models.CategoryMarket: true, models.CategoryFinancial: true, models.CategoryTechnical: true,
	models.CategoryOther: true,
}

// LogAppender is the narrow persistence contract the Critique Agent depends
// on, implemented by pkg/store/critiquelog. Append failures are logged, not
// propagated (spec §7: StoreUnavailable degrades silently for this store).
type LogAppender interface {
	Append(ctx context.Context, row LogRow) error
}

// LogRow is one Critique Log Store row (spec §6: "Critique log schema").
type LogRow struct {
	StartupName      string
	Flag             string
	Severity         models.Severity
	Explanation      string
	Category         models.Category
	OverallRiskLabel models.RiskLabel
	Summary          string
}

// Agent is the Critique Agent.
type Agent struct {
	gateway llmgateway.Invoker
	log     LogAppender // nil disables persistence entirely
	logger  *slog.Logger
}

// New constructs a Critique Agent. log may be nil (spec: CRITIQUE_LOG_URL
// absent disables the store silently).
func New(gateway llmgateway.Invoker, log LogAppender) *Agent {
	return &Agent{gateway: gateway, log: log, logger: slog.With("agent", "critique")}
}

// Critique implements the Critic interface.
func (a *Agent) Critique(ctx context.Context, scores *models.ScoreReport, facts *models.StartupFacts) (*models.CritiqueReport, error) {
	prompt := buildPrompt(scores, facts)

	result, err := a.gateway.Invoke(ctx, model, prompt, llmgateway.Options{
		Temperature: temperature,
		MaxTokens:   maxTokens,
		SystemPrompt: "You are a skeptical due-diligence analyst. Name which dimension each " +
			"concern belongs to. Respond with a single strict JSON object only.",
	})
	if err != nil {
		return nil, fmt.Errorf("critique: gateway invoke: %w", err)
	}

	var report models.CritiqueReport
	degraded := false

	if !result.OK {
		a.logger.Warn("LLM unavailable, using rule-based critique", "reason", result.Reason)
		report.RedFlags = ruleBasedFlags(scores, facts)
		degraded = true
	} else if obj, ok := llmgateway.ExtractJSON(result.Text); ok {
		flags, ok := parseFlags(obj, a.logger)
		if !ok || len(flags) == 0 {
			report.RedFlags = ruleBasedFlags(scores, facts)
			degraded = true
		} else {
			report.RedFlags = flags
		}
	} else {
		a.logger.Warn("LLM response was not valid JSON, using rule-based critique")
		report.RedFlags = ruleBasedFlags(scores, facts)
		degraded = true
	}

	report.RedFlags = truncateBySeverity(report.RedFlags)
	report.OverallRiskLabel = models.OverallRiskLabel(report.RedFlags)
	report.Summary = summarize(report.RedFlags, report.OverallRiskLabel)
	report.AnalysisTime = time.Now().UTC()
	report.Degraded = degraded

	a.persist(ctx, facts, &report)

	return &report, nil
}

func (a *Agent) persist(ctx context.Context, facts *models.StartupFacts, report *models.CritiqueReport) {
	if a.log == nil {
		return
	}
	name := "Unknown Startup"
	if facts != nil && facts.Name != "" {
		name = facts.Name
	}
	for _, flag := range report.RedFlags {
		row := LogRow{
			StartupName:      name,
			Flag:             flag.Flag,
			Severity:         flag.Severity,
			Explanation:      flag.Explanation,
			Category:         flag.Category,
			OverallRiskLabel: report.OverallRiskLabel,
			Summary:          report.Summary,
		}
		if err := a.log.Append(ctx, row); err != nil {
			a.logger.Warn("critique log append failed", "error", err)
		}
	}
}

func buildPrompt(scores *models.ScoreReport, facts *models.StartupFacts) string {
	var b strings.Builder
	b.WriteString("Identify up to 5 red flags in this startup evaluation. Be skeptical. ")
	b.WriteString("For each flag name which dimension it belongs to.\n\n")
	if facts != nil {
		fmt.Fprintf(&b, "STARTUP: %s\n", facts.Name)
		fmt.Fprintf(&b, "DESCRIPTION: %s\n", facts.Description)
		fmt.Fprintf(&b, "TEAM: %s\n", facts.Team)
		fmt.Fprintf(&b, "TRACTION: %s\n", facts.Traction)
		fmt.Fprintf(&b, "MARKET: %s\n\n", facts.Market)
	}
	if scores != nil {
		fmt.Fprintf(&b, "SCORES: idea=%.1f team=%.1f traction=%.1f market=%.1f overall=%.1f\n\n",
			scores.Idea.Score, scores.Team.Score, scores.Traction.Score, scores.Market.Score, scores.OverallScore)
	}
	b.WriteString(`Respond with strict JSON: {"red_flags": [{"flag": "...", "severity": "low|medium|high|critical", ` +
		`"explanation": "...", "category": "idea|team|traction|market|financial|technical|other"}]}`)
	return b.String()
}

func parseFlags(obj map[string]any, logger *slog.Logger) ([]models.RedFlag, bool) {
	raw, ok := obj["red_flags"]
	if !ok {
		return nil, false
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, false
	}

	var flags []models.RedFlag
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		flag, _ := llmgateway.StringField(m, "flag")
		explanation, _ := llmgateway.StringField(m, "explanation")
		if flag == "" {
			continue
		}
		severityRaw, _ := llmgateway.StringField(m, "severity")
		categoryRaw, _ := llmgateway.StringField(m, "category")

		flags = append(flags, models.RedFlag{
			Flag:        flag,
			Severity:    normalizeSeverity(severityRaw, logger),
			Explanation: explanation,
			Category:    normalizeCategory(categoryRaw),
		})
	}
	return flags, len(flags) > 0
}

// normalizeSeverity maps any severity string into the closed set via exact
// match, then nearest-by-Levenshtein, falling back to "medium" (spec §4.3).
func normalizeSeverity(raw string, logger *slog.Logger) models.Severity {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, s := range closedSeverities {
		if string(s) == lower {
			return s
		}
	}
	if lower == "" {
		return models.SeverityMedium
	}

	// Start from medium so that a tie between medium and another value
	// resolves to medium.
	best := models.SeverityMedium
	bestDist := levenshtein.Distance(lower, string(models.SeverityMedium), nil)
	for _, s := range closedSeverities {
		d := levenshtein.Distance(lower, string(s), nil)
		if d < bestDist {
			bestDist = d
			best = s
		}
	}
	if bestDist > 4 {
		logger.Warn("severity coerced to medium, too far from any known value", "raw", raw)
		return models.SeverityMedium
	}
	logger.Warn("severity coerced by nearest match", "raw", raw, "coerced_to", best)
	return best
}

// normalizeCategory maps any category string to the closed set by exact
// match, else "other" (spec §4.3).
func normalizeCategory(raw string) models.Category {
	lower := strings.ToLower(strings.TrimSpace(raw))
	c := models.Category(lower)
	if closedCategories[c] {
		return c
	}
	return models.CategoryOther
}

// truncateBySeverity keeps at most MaxRedFlags, ordered highest-severity
// first; ties keep the model's original relative order (sort.SliceStable).
func truncateBySeverity(flags []models.RedFlag) []models.RedFlag {
	sort.SliceStable(flags, func(i, j int) bool {
		return severityOrder[flags[i].Severity] > severityOrder[flags[j].Severity]
	})
	if len(flags) > models.MaxRedFlags {
		flags = flags[:models.MaxRedFlags]
	}
	return flags
}

// ruleBasedFlags implements the spec §4.3 rule-based fallback: one RedFlag
// per dimension scoring below 5 (severity high if <3, else medium), plus a
// medium/other flag for any blank required StartupFacts field, plus a
// low-severity "insufficient data" flag if nothing else fired.
func ruleBasedFlags(scores *models.ScoreReport, facts *models.StartupFacts) []models.RedFlag {
	var flags []models.RedFlag

	if scores != nil {
		dims := []struct {
			dim models.Dimension
			a   models.DimensionAssessment
			cat models.Category
		}{
			{models.DimensionIdea, scores.Idea, models.CategoryIdea},
			{models.DimensionTeam, scores.Team, models.CategoryTeam},
			{models.DimensionTraction, scores.Traction, models.CategoryTraction},
			{models.DimensionMarket, scores.Market, models.CategoryMarket},
		}
		for _, d := range dims {
			if d.a.Score >= 5 {
				continue
			}
			sev := models.SeverityMedium
			if d.a.Score < 3 {
				sev = models.SeverityHigh
			}
			flags = append(flags, models.RedFlag{
				Flag:        fmt.Sprintf("Weak %s score", d.dim),
				Severity:    sev,
				Explanation: fmt.Sprintf("%s scored %.1f/10, below the acceptable threshold.", d.dim, d.a.Score),
				Category:    d.cat,
			})
		}
	}

	if facts != nil && hasBlankRequiredField(facts) {
		flags = append(flags, models.RedFlag{
			Flag:        "Incomplete startup profile",
			Severity:    models.SeverityMedium,
			Explanation: "One or more required fields were not provided by the submitter.",
			Category:    models.CategoryOther,
		})
	}

	if len(flags) == 0 {
		flags = append(flags, models.RedFlag{
			Flag:        "Insufficient data",
			Severity:    models.SeverityLow,
			Explanation: "Not enough information was available to identify specific concerns.",
			Category:    models.CategoryOther,
		})
	}

	return flags
}

func hasBlankRequiredField(facts *models.StartupFacts) bool {
	return facts.Description == "" || facts.Team == "" || facts.Traction == "" || facts.Market == ""
}

func summarize(flags []models.RedFlag, risk models.RiskLabel) string {
	if len(flags) == 0 {
		return "No material concerns identified."
	}
	return fmt.Sprintf("%d red flag(s) identified; overall risk assessed as %s.", len(flags), risk)
}
