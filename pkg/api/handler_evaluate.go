package api

import (
	"fmt"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/pitchscope/pitchscope/pkg/orchestrator"
)

// evaluateHandler handles POST /evaluate: multipart file? + url? +
// json_data? + text fields (spec §6). Exactly one primary source must be
// present; presenting zero or more than one is a 400.
func (s *Server) evaluateHandler(c *echo.Context) error {
	source, useCache, err := parseEvaluateSource(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, &ErrorResponse{Error: err.Error(), Field: "source"})
	}

	eval, err := s.orchestrator.Evaluate(c.Request().Context(), source, orchestrator.Options{
		UseNarrativeCache: useCache,
	})
	if err != nil {
		return mapEvalError(err)
	}

	return c.JSON(http.StatusOK, &EvaluateResponse{
		EvaluationResult: *eval,
		ReportURL:        reportURL(eval.ReportID),
	})
}

// getReportHandler handles GET /evaluate/reports/{id} (spec §6: report URL
// format "/evaluate/reports/{report_id}.pdf").
func (s *Server) getReportHandler(c *echo.Context) error {
	reportID := reportIDFromParam(c.Param("id"))

	blob, err := s.reports.Fetch(c.Request().Context(), reportID)
	if err != nil {
		return mapEvalError(err)
	}
	return c.Blob(http.StatusOK, blob.ContentType, blob.Data)
}

func reportURL(reportID string) string {
	return fmt.Sprintf("/evaluate/reports/%s.pdf", reportID)
}

// reportIDFromParam strips the ".pdf" suffix the route pattern captures
// into the :id param, so Fetch is keyed by the bare report id.
func reportIDFromParam(param string) string {
	const suffix = ".pdf"
	if len(param) > len(suffix) && param[len(param)-len(suffix):] == suffix {
		return param[:len(param)-len(suffix)]
	}
	return param
}
