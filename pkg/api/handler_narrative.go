package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/pitchscope/pitchscope/pkg/agent"
	"github.com/pitchscope/pitchscope/pkg/models"
)

// narrativeHandler handles POST /narrative.
func (s *Server) narrativeHandler(c *echo.Context) error {
	var req NarrativeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
	}

	facts := models.StartupFacts{Description: req.StartupData}.WithDefaults()

	narrative, err := s.narrator.Narrate(c.Request().Context(), &facts, agent.NarrativeOptions{
		CacheKey: req.StartupID,
		UseCache: req.UseCache,
	})
	if err != nil {
		return mapEvalError(err)
	}
	return c.JSON(http.StatusOK, narrative)
}

// getNarrativeCacheHandler handles GET /narrative/cache/{id}.
func (s *Server) getNarrativeCacheHandler(c *echo.Context) error {
	id := c.Param("id")
	if s.cache == nil {
		return echo.NewHTTPError(http.StatusNotFound, &ErrorResponse{Error: "cache not configured"})
	}

	narrative, ok, err := s.cache.Get(c.Request().Context(), narrativeCacheKey(id))
	if err != nil {
		return mapEvalError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, &ErrorResponse{Error: "no cached narrative for id"})
	}
	return c.JSON(http.StatusOK, narrative)
}

// deleteNarrativeCacheHandler handles DELETE /narrative/cache/{id}.
func (s *Server) deleteNarrativeCacheHandler(c *echo.Context) error {
	id := c.Param("id")
	if s.cache == nil {
		return echo.NewHTTPError(http.StatusNotFound, &ErrorResponse{Error: "cache not configured"})
	}

	if err := s.cache.Delete(c.Request().Context(), narrativeCacheKey(id)); err != nil {
		return mapEvalError(err)
	}
	return c.JSON(http.StatusOK, &DeleteAckResponse{Deleted: true, Key: id})
}

// narrativeCacheKey builds the narrative cache key (spec §6).
func narrativeCacheKey(startupID string) string {
	return "narrative:" + startupID
}
