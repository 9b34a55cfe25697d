package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/pitchscope/pitchscope/pkg/agent/scoring"
)

// minFieldLen is the minimum accepted length for each of /score's four
// dimension fields (spec §6: "rejects any ... shorter than 10 characters").
const minFieldLen = 10

// scoreHandler handles POST /score.
func (s *Server) scoreHandler(c *echo.Context) error {
	var req ScoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
	}

	fields := []struct {
		name  string
		value string
	}{
		{"idea", req.Idea}, {"team", req.Team}, {"traction", req.Traction}, {"market", req.Market},
	}
	for _, f := range fields {
		if len(f.value) < minFieldLen {
			return echo.NewHTTPError(http.StatusBadRequest, &ErrorResponse{
				Error: "field must be at least 10 characters",
				Field: f.name,
			})
		}
	}

	report, err := s.scorer.ScoreFields(c.Request().Context(), scoring.Fields{
		Idea: req.Idea, Team: req.Team, Traction: req.Traction, Market: req.Market,
	})
	if err != nil {
		return mapEvalError(err)
	}
	return c.JSON(http.StatusOK, report)
}
