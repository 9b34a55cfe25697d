package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/pitchscope/pitchscope/pkg/models"
)

// critiqueHandler handles POST /critique.
func (s *Server) critiqueHandler(c *echo.Context) error {
	var req CritiqueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
	}

	facts := models.StartupFacts{
		Name:        req.StartupName,
		Description: req.PitchdeckSummary,
	}.WithDefaults()

	report, err := s.critic.Critique(c.Request().Context(), &req.ScoreReport, &facts)
	if err != nil {
		return mapEvalError(err)
	}
	return c.JSON(http.StatusOK, report)
}
