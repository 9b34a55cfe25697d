package benchmark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/models"
)

func TestResolveIndustry_CaseInsensitiveMatch(t *testing.T) {
	assert.Equal(t, "fintech", resolveIndustry(&models.StartupFacts{Sector: "FinTech"}))
	assert.Equal(t, "technology", resolveIndustry(&models.StartupFacts{Sector: "unknown-sector"}))
	assert.Equal(t, "technology", resolveIndustry(&models.StartupFacts{}))
}

func TestBenchmark_HealthcareScenario(t *testing.T) {
	facts := &models.StartupFacts{
		Sector:      "healthcare",
		Description: "Remote patient monitoring for chronic disease management.",
		Traction:    "We have $2.5M in annual revenue and 15000 users, growing 40% YoY.",
		Market:      "Healthcare IT is a large and growing market.",
	}
	agent := New(nil)

	report, err := agent.Benchmark(context.Background(), facts)
	require.NoError(t, err)
	assert.Equal(t, "healthcare", report.Industry)
	assert.Len(t, report.Comparisons, 4)
	for _, c := range report.Comparisons {
		assert.GreaterOrEqual(t, c.Percentile, 10)
		assert.LessOrEqual(t, c.Percentile, 95)
	}
	assert.False(t, report.Degraded)
}

func TestExtractMetrics_RevenuePattern(t *testing.T) {
	m := extractMetrics("We generated $2.5M in revenue last year with 15000 customers.")
	assert.True(t, m.revenueFound)
	assert.Equal(t, 2_500_000.0, m.revenueAnnualized)
	assert.True(t, m.userFound)
	assert.Equal(t, 15000.0, m.userCount)
}

func TestExtractMetrics_GrowthPattern(t *testing.T) {
	m := extractMetrics("Revenue grew 42% YoY across all segments.")
	assert.True(t, m.growthFound)
	assert.Equal(t, 42.0, m.growthPercent)
}

func TestOverallPosition_Thresholds(t *testing.T) {
	mk := func(p int) models.MetricComparison { return models.MetricComparison{Percentile: p} }
	assert.Equal(t, models.PositionTopDecile, overallPosition([]models.MetricComparison{mk(95), mk(90), mk(90), mk(90)}))
	assert.Equal(t, models.PositionBelowAverage, overallPosition([]models.MetricComparison{mk(10), mk(10), mk(10), mk(10)}))
}

func TestBenchmark_LLMRewritesInsightButNotNumbers(t *testing.T) {
	facts := &models.StartupFacts{Sector: "saas", Traction: "$1M revenue, 500 customers"}
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{
		OK:   true,
		Text: `{"insights": {"revenue_growth": "Custom rewritten insight."}}`,
	}}
	agent := New(invoker)

	report, err := agent.Benchmark(context.Background(), facts)
	require.NoError(t, err)

	var found bool
	for _, c := range report.Comparisons {
		if c.Metric == "revenue_growth" {
			found = true
			assert.Equal(t, "Custom rewritten insight.", c.Insight)
		}
	}
	assert.True(t, found)
}

type fakeInvoker struct {
	result llmgateway.InvocationResult
}

func (f *fakeInvoker) Invoke(ctx context.Context, model, prompt string, opts llmgateway.Options) (llmgateway.InvocationResult, error) {
	return f.result, nil
}
