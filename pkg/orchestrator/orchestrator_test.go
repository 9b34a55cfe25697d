package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchscope/pitchscope/pkg/agent"
	"github.com/pitchscope/pitchscope/pkg/evalerrors"
	"github.com/pitchscope/pitchscope/pkg/models"
	"github.com/pitchscope/pitchscope/pkg/store/reportstore"
)

type fakeIngester struct {
	facts *models.StartupFacts
	err   error
}

func (f *fakeIngester) Ingest(context.Context, agent.Source) (*models.StartupFacts, error) {
	return f.facts, f.err
}

type fakeScorer struct{ report *models.ScoreReport }

func (f *fakeScorer) Score(context.Context, *models.StartupFacts) (*models.ScoreReport, error) {
	return f.report, nil
}

type fakeCritic struct {
	report    *models.CritiqueReport
	sawScores *models.ScoreReport
}

func (f *fakeCritic) Critique(_ context.Context, scores *models.ScoreReport, _ *models.StartupFacts) (*models.CritiqueReport, error) {
	f.sawScores = scores
	return f.report, nil
}

type fakeNarrator struct{ narrative *models.Narrative }

func (f *fakeNarrator) Narrate(context.Context, *models.StartupFacts, agent.NarrativeOptions) (*models.Narrative, error) {
	return f.narrative, nil
}

type fakeBenchmarker struct{ report *models.BenchmarkReport }

func (f *fakeBenchmarker) Benchmark(context.Context, *models.StartupFacts) (*models.BenchmarkReport, error) {
	return f.report, nil
}

type fakeReporter struct {
	reportID string
	blob     []byte
	err      error
}

func (f *fakeReporter) Render(context.Context, *models.EvaluationResult) (string, []byte, error) {
	return f.reportID, f.blob, f.err
}

func sampleFacts() *models.StartupFacts {
	f := models.StartupFacts{Name: "Acme"}.WithDefaults()
	return &f
}

func newTestOrchestrator() (*Orchestrator, *fakeCritic, *reportstore.Store) {
	critic := &fakeCritic{report: &models.CritiqueReport{OverallRiskLabel: models.RiskLow}}
	reports := reportstore.New()
	o := New(
		&fakeIngester{facts: sampleFacts()},
		&fakeScorer{report: &models.ScoreReport{OverallScore: 7.2}},
		critic,
		&fakeNarrator{narrative: &models.Narrative{Vision: "test vision"}},
		&fakeBenchmarker{report: &models.BenchmarkReport{Industry: "technology"}},
		&fakeReporter{reportID: "report-123", blob: []byte("%PDF-fake")},
		reports,
	)
	return o, critic, reports
}

func TestEvaluate_HappyPathPersistsReportAndReturnsResult(t *testing.T) {
	o, _, reports := newTestOrchestrator()

	eval, err := o.Evaluate(context.Background(), agent.NewPDFSource([]byte("x")), Options{})
	require.NoError(t, err)
	assert.Equal(t, "report-123", eval.ReportID)
	assert.Equal(t, 7.2, eval.Scores.OverallScore)
	assert.Equal(t, "test vision", eval.Narrative.Vision)
	assert.Equal(t, "technology", eval.Benchmarks.Industry)
	assert.NotEmpty(t, eval.AgentTimeline)

	blob, err := reports.Fetch(context.Background(), "report-123")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), blob.Data)
}

func TestEvaluate_CritiqueObservesSameEvaluationScores(t *testing.T) {
	o, critic, _ := newTestOrchestrator()

	_, err := o.Evaluate(context.Background(), agent.NewPDFSource([]byte("x")), Options{})
	require.NoError(t, err)
	require.NotNil(t, critic.sawScores)
	assert.Equal(t, 7.2, critic.sawScores.OverallScore)
}

func TestEvaluate_IngestionFailureAbortsAndPropagates(t *testing.T) {
	ingestErr := evalerrors.NewIngestionError("pdf", errors.New("unreadable"))
	o := New(
		&fakeIngester{err: ingestErr},
		&fakeScorer{}, &fakeCritic{}, &fakeNarrator{}, &fakeBenchmarker{},
		&fakeReporter{}, reportstore.New(),
	)

	_, err := o.Evaluate(context.Background(), agent.NewPDFSource([]byte("x")), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, evalerrors.ErrIngestionFailed))
}

func TestEvaluate_ReportStoreFailurePropagatesAsStoreUnavailable(t *testing.T) {
	critic := &fakeCritic{report: &models.CritiqueReport{OverallRiskLabel: models.RiskLow}}
	o := New(
		&fakeIngester{facts: sampleFacts()},
		&fakeScorer{report: &models.ScoreReport{OverallScore: 5}},
		critic,
		&fakeNarrator{narrative: &models.Narrative{}},
		&fakeBenchmarker{report: &models.BenchmarkReport{}},
		&fakeReporter{err: errors.New("render exploded")},
		reportstore.New(),
	)

	_, err := o.Evaluate(context.Background(), agent.NewPDFSource([]byte("x")), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, evalerrors.ErrStoreUnavailable))
}

func TestEvaluate_CancelledContextAbortsWithoutWritingReport(t *testing.T) {
	o, _, reports := newTestOrchestrator()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	time.Sleep(time.Millisecond)

	_, err := o.Evaluate(ctx, agent.NewPDFSource([]byte("x")), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, evalerrors.ErrCancelled))

	_, fetchErr := reports.Fetch(context.Background(), "report-123")
	assert.Error(t, fetchErr)
}
