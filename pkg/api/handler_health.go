package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// healthHandler handles GET /health (spec §6: "liveness + configuration
// summary").
func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &HealthResponse{
		Status:        "healthy",
		Configuration: s.cfg.Summarize(),
	})
}
