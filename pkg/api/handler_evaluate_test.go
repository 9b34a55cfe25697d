package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchscope/pitchscope/pkg/models"
	"github.com/pitchscope/pitchscope/pkg/orchestrator"
	"github.com/pitchscope/pitchscope/pkg/store/reportstore"
)

type fakeScorer struct{ report *models.ScoreReport }

func (f *fakeScorer) Score(context.Context, *models.StartupFacts) (*models.ScoreReport, error) {
	return f.report, nil
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

func newEvaluateTestServer() (*Server, *reportstore.Store) {
	reports := reportstore.New()
	orch := orchestrator.New(
		&fakeIngester{facts: &models.StartupFacts{Name: "Acme"}},
		&fakeScorer{report: &models.ScoreReport{OverallScore: 7.5}},
		&fakeCritic{report: &models.CritiqueReport{OverallRiskLabel: models.RiskLow}},
		&fakeNarrator{narrative: &models.Narrative{Vision: "a vision"}},
		&fakeBenchmarker{report: &models.BenchmarkReport{Industry: "technology"}},
		&fakeReporter{reportID: "report-xyz", blob: []byte("%PDF-fake")},
		reports,
	)
	return &Server{orchestrator: orch, reports: reports}, reports
}

func TestEvaluateHandler_HappyPathWithJSONData(t *testing.T) {
	s, _ := newEvaluateTestServer()

	form := url.Values{"json_data": {`{"idea":"a great idea"}`}, "startup_name": {"Acme"}}
	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.evaluateHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"report_url":"/evaluate/reports/report-xyz.pdf"`)
}

func TestEvaluateHandler_FileAndURLTogetherReturns400(t *testing.T) {
	s, _ := newEvaluateTestServer()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "deck.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("url", "https://example.com/deck"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/evaluate", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = s.evaluateHandler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestEvaluateHandler_NoSourceReturns400(t *testing.T) {
	s, _ := newEvaluateTestServer()

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(""))
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.evaluateHandler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetReportHandler_FetchesStoredBlob(t *testing.T) {
	s, reports := newEvaluateTestServer()
	require.NoError(t, reports.Put(context.Background(), "report-abc", reportstore.Blob{
		Data: []byte("%PDF-data"), ContentType: "application/pdf", Filename: "acme.pdf",
	}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/evaluate/reports/report-abc.pdf", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("report-abc.pdf")

	require.NoError(t, s.getReportHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-data", rec.Body.String())
}

func TestGetReportHandler_UnknownIDReturns404(t *testing.T) {
	s, _ := newEvaluateTestServer()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/evaluate/reports/missing.pdf", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing.pdf")

	err := s.getReportHandler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
