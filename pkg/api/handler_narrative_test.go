package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchscope/pitchscope/pkg/agent"
	"github.com/pitchscope/pitchscope/pkg/models"
	"github.com/pitchscope/pitchscope/pkg/store/cache"
)

type fakeNarrator struct {
	narrative *models.Narrative
	err       error
	lastOpts  agent.NarrativeOptions
}

func (f *fakeNarrator) Narrate(_ context.Context, _ *models.StartupFacts, opts agent.NarrativeOptions) (*models.Narrative, error) {
	f.lastOpts = opts
	return f.narrative, f.err
}

func TestNarrativeHandler_HappyPath(t *testing.T) {
	narrator := &fakeNarrator{narrative: &models.Narrative{Vision: "a bold vision"}}
	s := &Server{narrator: narrator}

	body := `{"startup_data":"an idea with plenty of detail","startup_id":"startup-1"}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/narrative", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.narrativeHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a bold vision")
	assert.Equal(t, "startup-1", narrator.lastOpts.CacheKey)
}

func TestNarrativeCacheHandlers_GetDeleteRoundTrip(t *testing.T) {
	store := cache.NewMemory()
	s := &Server{cache: store}

	require.NoError(t, store.Set(context.Background(), narrativeCacheKey("startup-1"),
		&models.Narrative{Vision: "cached vision"}, time.Minute))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/narrative/cache/startup-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("startup-1")

	require.NoError(t, s.getNarrativeCacheHandler(c))
	assert.Contains(t, rec.Body.String(), "cached vision")

	req2 := httptest.NewRequest(http.MethodDelete, "/narrative/cache/startup-1", nil)
	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(req2, rec2)
	c2.SetParamNames("id")
	c2.SetParamValues("startup-1")

	require.NoError(t, s.deleteNarrativeCacheHandler(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)

	_, ok, err := store.Get(context.Background(), narrativeCacheKey("startup-1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetNarrativeCacheHandler_MissReturns404(t *testing.T) {
	s := &Server{cache: cache.NewMemory()}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/narrative/cache/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := s.getNarrativeCacheHandler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestNarrativeCacheHandlers_NilCacheReturns404(t *testing.T) {
	s := &Server{}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/narrative/cache/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("x")

	err := s.getNarrativeCacheHandler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
