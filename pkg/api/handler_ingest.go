package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/pitchscope/pitchscope/pkg/agent"
)

// ingestHandler handles POST /ingest: multipart file OR form url OR json
// (spec §6). Exactly one input shape is read per request, checked in that
// order.
func (s *Server) ingestHandler(c *echo.Context) error {
	source, err := parseIngestSource(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, &ErrorResponse{Error: err.Error(), Field: "source"})
	}

	facts, err := s.ingester.Ingest(c.Request().Context(), source)
	if err != nil {
		return mapEvalError(err)
	}
	return c.JSON(http.StatusOK, facts)
}

// parseIngestSource resolves the one accepted source shape from a request:
// a multipart file field named "file", a form/query value named "url", or
// a JSON body describing structured fields.
func parseIngestSource(c *echo.Context) (agent.Source, error) {
	if fh, err := c.FormFile("file"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return agent.Source{}, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return agent.Source{}, err
		}
		return agent.NewPDFSource(data), nil
	}

	if url := c.FormValue("url"); url != "" {
		return agent.NewURLSource(url), nil
	}

	contentType := c.Request().Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req IngestRequest
		if err := c.Bind(&req); err != nil {
			return agent.Source{}, err
		}
		return agent.NewStructuredSource(agent.StructuredInput{
			Fields:      req.Fields,
			StartupName: req.Name,
		}), nil
	}

	return agent.Source{}, errUnknownIngestSource
}

var errUnknownIngestSource = errors.New("no file, url, or json body provided")
