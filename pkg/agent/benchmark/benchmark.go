// Package benchmark implements the Benchmark Agent (spec §4.5): it extracts
// quantitative metrics from free text, compares them to fixed per-industry
// priors, and derives percentiles and an overall market position. The LLM
// is optional here — used only to rewrite prose insights, never numbers.
package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/models"
)

const (
	model       = "gemini-1.5-pro"
	temperature = 0.3
	maxTokens   = 512

	defaultIndustry = "technology"
)

// prior is one industry's benchmark row (spec §4.5 table).
type prior struct {
	revGrowth     float64
	grossMargin   float64
	cacPaybackMon float64
	netRetention  float64
}

var priors = map[string]prior{
	"technology":     {45, 75, 12, 110},
	"fintech":        {60, 80, 8, 115},
	"healthcare":     {35, 70, 18, 105},
	"e-commerce":     {40, 60, 15, 108},
	"saas":           {50, 85, 10, 120},
	"food-delivery":  {30, 45, 20, 95},
}

var (
	revenuePattern = regexp.MustCompile(`(?i)\$\s?([\d,.]+)\s?(k|m|b)?\b`)
	userPattern    = regexp.MustCompile(`(?i)([\d,]+)\s*(?:users|customers|subscribers)`)
	teamPattern    = regexp.MustCompile(`(?i)([\d,]+)\s*(?:people|employees|team members)`)
	growthPattern  = regexp.MustCompile(`(?i)([\d.]+)\s?%\s*(?:growth|yoy|mom)`)
)

// extractedMetrics holds whatever the regex scan found; zero value fields
// mean "not found", and the caller substitutes a heuristic.
type extractedMetrics struct {
	revenueAnnualized float64
	revenueFound      bool
	userCount         float64
	userFound         bool
	teamSize          float64
	teamFound         bool
	growthPercent     float64
	growthFound       bool
}

// Agent is the Benchmark Agent.
type Agent struct {
	gateway llmgateway.Invoker // may be nil: LLM is optional for this agent
	logger  *slog.Logger
}

// New constructs a Benchmark Agent. gateway may be nil.
func New(gateway llmgateway.Invoker) *Agent {
	return &Agent{gateway: gateway, logger: slog.With("agent", "benchmark")}
}

// Benchmark implements the Benchmarker interface.
func (a *Agent) Benchmark(ctx context.Context, facts *models.StartupFacts) (*models.BenchmarkReport, error) {
	industry := resolveIndustry(facts)
	p := priors[industry]

	corpus := mergeText(facts)
	metrics := extractMetrics(corpus)

	comparisons := []models.MetricComparison{
		growthComparison(metrics, p),
		marginComparison(metrics, p),
		cacPaybackComparison(metrics, p),
		retentionComparison(metrics, p),
	}

	degraded := false
	if a.gateway != nil {
		a.rewriteInsights(ctx, comparisons, industry, &degraded)
	}

	report := &models.BenchmarkReport{
		Industry:        industry,
		Comparisons:     comparisons,
		OverallPosition: overallPosition(comparisons),
		Summary:         summarize(industry, comparisons),
		Degraded:        degraded,
	}
	return report, nil
}

func resolveIndustry(facts *models.StartupFacts) string {
	if facts == nil {
		return defaultIndustry
	}
	lower := strings.ToLower(strings.TrimSpace(facts.Sector))
	if _, ok := priors[lower]; ok {
		return lower
	}
	return defaultIndustry
}

func mergeText(facts *models.StartupFacts) string {
	if facts == nil {
		return ""
	}
	return strings.Join([]string{facts.Description, facts.Traction, facts.Market}, " ")
}

func extractMetrics(corpus string) extractedMetrics {
	var m extractedMetrics

	if match := revenuePattern.FindStringSubmatch(corpus); match != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			switch strings.ToLower(match[2]) {
			case "k":
				v *= 1_000
			case "m":
				v *= 1_000_000
			case "b":
				v *= 1_000_000_000
			}
			m.revenueAnnualized = v
			m.revenueFound = true
		}
	}
	if match := userPattern.FindStringSubmatch(corpus); match != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			m.userCount = v
			m.userFound = true
		}
	}
	if match := teamPattern.FindStringSubmatch(corpus); match != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			m.teamSize = v
			m.teamFound = true
		}
	}
	if match := growthPattern.FindStringSubmatch(corpus); match != nil {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			m.growthPercent = v
			m.growthFound = true
		}
	}
	return m
}

// revenueTier gives a coarse heuristic startup_value for metrics that have
// no direct textual signal, scaled by how much revenue evidence exists.
func revenueTier(m extractedMetrics) float64 {
	switch {
	case m.revenueAnnualized >= 1_000_000:
		return 1.2
	case m.revenueAnnualized > 0:
		return 0.9
	case m.userFound && m.userCount > 1000:
		return 1.0
	default:
		return 0.7
	}
}

func percentile(startup, benchmark float64, higherIsBetter bool) int {
	if benchmark == 0 {
		return 50
	}
	ratio := startup / benchmark
	if !higherIsBetter {
		ratio = benchmark / startup
		if startup == 0 {
			ratio = 0.5
		}
	}
	p := ratio * 50
	if p < 10 {
		p = 10
	}
	if p > 95 {
		p = 95
	}
	return int(p)
}

func growthComparison(m extractedMetrics, p prior) models.MetricComparison {
	value := m.growthPercent
	if !m.growthFound {
		value = p.revGrowth * revenueTier(m)
	}
	pct := percentile(value, p.revGrowth, true)
	return models.MetricComparison{
		Metric:        "revenue_growth",
		StartupValue:  round1(value),
		SectorAvg:     p.revGrowth,
		Percentile:    pct,
		Insight:       fmt.Sprintf("Revenue growth of %.1f%% versus a %.0f%% sector average.", value, p.revGrowth),
	}
}

func marginComparison(m extractedMetrics, p prior) models.MetricComparison {
	value := p.grossMargin * revenueTier(m)
	pct := percentile(value, p.grossMargin, true)
	return models.MetricComparison{
		Metric:       "gross_margin",
		StartupValue: round1(value),
		SectorAvg:    p.grossMargin,
		Percentile:   pct,
		Insight:      fmt.Sprintf("Estimated gross margin of %.1f%% versus a %.0f%% sector average.", value, p.grossMargin),
	}
}

func cacPaybackComparison(m extractedMetrics, p prior) models.MetricComparison {
	value := p.cacPaybackMon / revenueTier(m)
	pct := percentile(value, p.cacPaybackMon, false)
	return models.MetricComparison{
		Metric:       "cac_payback",
		StartupValue: round1(value),
		SectorAvg:    p.cacPaybackMon,
		Percentile:   pct,
		Insight:      fmt.Sprintf("Estimated CAC payback of %.1f months versus a %.0f month sector average.", value, p.cacPaybackMon),
	}
}

func retentionComparison(m extractedMetrics, p prior) models.MetricComparison {
	value := p.netRetention * revenueTier(m)
	pct := percentile(value, p.netRetention, true)
	return models.MetricComparison{
		Metric:       "net_retention",
		StartupValue: round1(value),
		SectorAvg:    p.netRetention,
		Percentile:   pct,
		Insight:      fmt.Sprintf("Estimated net retention of %.1f%% versus a %.0f%% sector average.", value, p.netRetention),
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func overallPosition(comparisons []models.MetricComparison) models.Position {
	if len(comparisons) == 0 {
		return models.PositionAverage
	}
	sum := 0
	for _, c := range comparisons {
		sum += c.Percentile
	}
	avg := float64(sum) / float64(len(comparisons))
	switch {
	case avg >= 90:
		return models.PositionTopDecile
	case avg >= 75:
		return models.PositionTopQuartile
	case avg >= 55:
		return models.PositionAboveAverage
	case avg >= 40:
		return models.PositionAverage
	default:
		return models.PositionBelowAverage
	}
}

func summarize(industry string, comparisons []models.MetricComparison) string {
	return fmt.Sprintf("Benchmarked against the %s sector across %d metrics.", industry, len(comparisons))
}

// rewriteInsights optionally asks the LLM to rewrite each comparison's
// prose insight; numeric fields are never touched. Failure degrades
// silently back to the rule-based insight already populated.
func (a *Agent) rewriteInsights(ctx context.Context, comparisons []models.MetricComparison, industry string, degraded *bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite these benchmark insights for a %s startup in one sentence each, without changing any numbers:\n", industry)
	for _, c := range comparisons {
		fmt.Fprintf(&b, "- %s: %s\n", c.Metric, c.Insight)
	}
	b.WriteString(`Respond with strict JSON: {"insights": {"<metric>": "..."}}`)

	result, err := a.gateway.Invoke(ctx, model, b.String(), llmgateway.Options{
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil || !result.OK {
		*degraded = true
		return
	}

	obj, ok := llmgateway.ExtractJSON(result.Text)
	if !ok {
		*degraded = true
		return
	}
	insightsRaw, ok := obj["insights"]
	if !ok {
		*degraded = true
		return
	}
	insights, ok := insightsRaw.(map[string]any)
	if !ok {
		*degraded = true
		return
	}

	for i := range comparisons {
		if text, ok := llmgateway.StringField(insights, comparisons[i].Metric); ok && text != "" {
			comparisons[i].Insight = text
		}
	}
}
