package critique

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/models"
)

type fakeInvoker struct {
	result llmgateway.InvocationResult
}

func (f *fakeInvoker) Invoke(ctx context.Context, model, prompt string, opts llmgateway.Options) (llmgateway.InvocationResult, error) {
	return f.result, nil
}

type fakeLog struct {
	rows []LogRow
	fail bool
}

func (f *fakeLog) Append(ctx context.Context, row LogRow) error {
	if f.fail {
		return assert.AnError
	}
	f.rows = append(f.rows, row)
	return nil
}

func sampleScores() *models.ScoreReport {
	return &models.ScoreReport{
		Idea:     models.DimensionAssessment{Score: 8},
		Team:     models.DimensionAssessment{Score: 7},
		Traction: models.DimensionAssessment{Score: 6},
		Market:   models.DimensionAssessment{Score: 7},
	}
}

func sampleFacts() *models.StartupFacts {
	return &models.StartupFacts{
		Name:        "Acme",
		Description: "A thing",
		Team:        "A team",
		Traction:    "Some traction",
		Market:      "A market",
	}
}

func TestCritique_LLMPathNormalizesAndOrders(t *testing.T) {
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{
		OK: true,
		Text: `{"red_flags": [
			{"flag": "thin margins", "severity": "med", "explanation": "...", "category": "financial"},
			{"flag": "no patents", "severity": "critical", "explanation": "...", "category": "idea"},
			{"flag": "single founder", "severity": "bogus-level", "explanation": "...", "category": "team"}
		]}`,
	}}
	log := &fakeLog{}
	agent := New(invoker, log)

	report, err := agent.Critique(context.Background(), sampleScores(), sampleFacts())
	require.NoError(t, err)
	require.Len(t, report.RedFlags, 3)

	// critical must sort first
	assert.Equal(t, models.SeverityCritical, report.RedFlags[0].Severity)
	assert.Equal(t, "no patents", report.RedFlags[0].Flag)
	// "med" should coerce to medium by nearest match
	assert.Equal(t, models.SeverityMedium, report.RedFlags[1].Severity)
	assert.Equal(t, models.RiskVeryHigh, report.OverallRiskLabel)
	assert.False(t, report.Degraded)
	assert.Len(t, log.rows, 3)
}

func TestCritique_UnknownCategoryMapsToOther(t *testing.T) {
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{
		OK:   true,
		Text: `{"red_flags": [{"flag": "x", "severity": "low", "explanation": "y", "category": "esoteric"}]}`,
	}}
	agent := New(invoker, nil)

	report, err := agent.Critique(context.Background(), sampleScores(), sampleFacts())
	require.NoError(t, err)
	require.Len(t, report.RedFlags, 1)
	assert.Equal(t, models.CategoryOther, report.RedFlags[0].Category)
}

func TestCritique_TruncatesToFiveHighestSeverityFirst(t *testing.T) {
	text := `{"red_flags": [
		{"flag": "a", "severity": "low", "explanation": "", "category": "other"},
		{"flag": "b", "severity": "low", "explanation": "", "category": "other"},
		{"flag": "c", "severity": "high", "explanation": "", "category": "other"},
		{"flag": "d", "severity": "low", "explanation": "", "category": "other"},
		{"flag": "e", "severity": "low", "explanation": "", "category": "other"},
		{"flag": "f", "severity": "critical", "explanation": "", "category": "other"},
		{"flag": "g", "severity": "low", "explanation": "", "category": "other"}
	]}`
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{OK: true, Text: text}}
	agent := New(invoker, nil)

	report, err := agent.Critique(context.Background(), sampleScores(), sampleFacts())
	require.NoError(t, err)
	require.Len(t, report.RedFlags, 5)
	assert.Equal(t, "f", report.RedFlags[0].Flag)
	assert.Equal(t, "c", report.RedFlags[1].Flag)
	// ties keep original relative order: a, b, d after truncation to 5
	assert.Equal(t, "a", report.RedFlags[2].Flag)
	assert.Equal(t, "b", report.RedFlags[3].Flag)
	assert.Equal(t, "d", report.RedFlags[4].Flag)
}

func TestCritique_FallsBackOnGatewayFallback(t *testing.T) {
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{Fallback: true, Reason: "no credentials"}}
	agent := New(invoker, nil)

	scores := &models.ScoreReport{
		Idea:     models.DimensionAssessment{Score: 2},
		Team:     models.DimensionAssessment{Score: 4},
		Traction: models.DimensionAssessment{Score: 8},
		Market:   models.DimensionAssessment{Score: 9},
	}
	report, err := agent.Critique(context.Background(), scores, sampleFacts())
	require.NoError(t, err)
	assert.True(t, report.Degraded)

	var sawHigh, sawMedium bool
	for _, f := range report.RedFlags {
		if f.Category == models.CategoryIdea && f.Severity == models.SeverityHigh {
			sawHigh = true
		}
		if f.Category == models.CategoryTeam && f.Severity == models.SeverityMedium {
			sawMedium = true
		}
	}
	assert.True(t, sawHigh, "idea score 2 should produce a high severity flag")
	assert.True(t, sawMedium, "team score 4 should produce a medium severity flag")
}

func TestCritique_InsufficientDataFallbackWhenNoOtherFlags(t *testing.T) {
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{Fallback: true}}
	agent := New(invoker, nil)

	scores := &models.ScoreReport{
		Idea:     models.DimensionAssessment{Score: 9},
		Team:     models.DimensionAssessment{Score: 9},
		Traction: models.DimensionAssessment{Score: 9},
		Market:   models.DimensionAssessment{Score: 9},
	}
	complete := &models.StartupFacts{Name: "Acme", Description: "d", Team: "t", Traction: "tr", Market: "m"}

	report, err := agent.Critique(context.Background(), scores, complete)
	require.NoError(t, err)
	require.Len(t, report.RedFlags, 1)
	assert.Equal(t, "Insufficient data", report.RedFlags[0].Flag)
	assert.Equal(t, models.RiskLow, report.OverallRiskLabel)
}

func TestCritique_LogAppendFailureDoesNotFailOperation(t *testing.T) {
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{
		OK:   true,
		Text: `{"red_flags": [{"flag": "x", "severity": "high", "explanation": "y", "category": "team"}]}`,
	}}
	log := &fakeLog{fail: true}
	agent := New(invoker, log)

	report, err := agent.Critique(context.Background(), sampleScores(), sampleFacts())
	require.NoError(t, err)
	assert.Len(t, report.RedFlags, 1)
}

func TestOverallRiskLabel_TruthTable(t *testing.T) {
	cases := []struct {
		name  string
		flags []models.RedFlag
		want  models.RiskLabel
	}{
		{"empty", nil, models.RiskLow},
		{"one critical", []models.RedFlag{{Severity: models.SeverityCritical}}, models.RiskVeryHigh},
		{"two high", []models.RedFlag{{Severity: models.SeverityHigh}, {Severity: models.SeverityHigh}}, models.RiskHigh},
		{"one high", []models.RedFlag{{Severity: models.SeverityHigh}}, models.RiskModerate},
		{"two medium", []models.RedFlag{{Severity: models.SeverityMedium}, {Severity: models.SeverityMedium}}, models.RiskModerate},
		{"one medium", []models.RedFlag{{Severity: models.SeverityMedium}}, models.RiskLow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, models.OverallRiskLabel(c.flags))
		})
	}
}
