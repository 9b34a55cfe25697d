package api

import (
	"encoding/json"
	"errors"
	"io"

	echo "github.com/labstack/echo/v5"

	"github.com/pitchscope/pitchscope/pkg/agent"
)

var (
	errNoPrimarySource   = errors.New("exactly one of file, url, or json_data is required")
	errMultiplePrimaries = errors.New("only one of file, url, or json_data may be provided")
)

// parseEvaluateSource resolves /evaluate's multipart body into exactly one
// agent.Source (spec §6: "requires exactly one primary source; 400
// otherwise") plus the use_cache flag carried alongside it.
func parseEvaluateSource(c *echo.Context) (agent.Source, bool, error) {
	useCache := c.FormValue("use_cache") == "true"

	var (
		source agent.Source
		count  int
	)

	if fh, err := c.FormFile("file"); err == nil && fh != nil {
		f, openErr := fh.Open()
		if openErr != nil {
			return agent.Source{}, false, openErr
		}
		defer f.Close()
		data, readErr := io.ReadAll(f)
		if readErr != nil {
			return agent.Source{}, false, readErr
		}
		source = agent.NewPDFSource(data)
		count++
	}

	if url := c.FormValue("url"); url != "" {
		if count > 0 {
			return agent.Source{}, false, errMultiplePrimaries
		}
		source = agent.NewURLSource(url)
		count++
	}

	if jsonData := c.FormValue("json_data"); jsonData != "" {
		if count > 0 {
			return agent.Source{}, false, errMultiplePrimaries
		}
		var fields map[string]string
		if err := json.Unmarshal([]byte(jsonData), &fields); err != nil {
			return agent.Source{}, false, err
		}
		source = agent.NewStructuredSource(agent.StructuredInput{
			Fields:      fields,
			StartupName: c.FormValue("startup_name"),
			Description: c.FormValue("description"),
			Market:      c.FormValue("market"),
			Team:        c.FormValue("team"),
			Traction:    c.FormValue("traction"),
		})
		count++
	}

	if count == 0 {
		return agent.Source{}, false, errNoPrimarySource
	}
	if count > 1 {
		return agent.Source{}, false, errMultiplePrimaries
	}

	return source, useCache, nil
}
