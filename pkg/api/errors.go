package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/pitchscope/pitchscope/pkg/evalerrors"
)

// mapEvalError maps the orchestrator/agent error kinds (spec §7) to HTTP
// status codes. LLM/cache/critique-log failures never reach here — they
// are degraded inside the owning agent — so only InputError,
// IngestionFailed, StoreUnavailable, and Cancelled appear, plus NotFound
// from report and cache lookups.
func mapEvalError(err error) *echo.HTTPError {
	var inputErr *evalerrors.InputError
	if errors.As(err, &inputErr) {
		return echo.NewHTTPError(http.StatusBadRequest, &ErrorResponse{
			Error: inputErr.Reason,
			Field: inputErr.Field,
		})
	}

	var ingestionErr *evalerrors.IngestionError
	if errors.As(err, &ingestionErr) {
		return echo.NewHTTPError(http.StatusBadGateway, &ErrorResponse{Error: ingestionErr.Error()})
	}

	if errors.Is(err, evalerrors.ErrStoreUnavailable) {
		return echo.NewHTTPError(http.StatusInternalServerError, &ErrorResponse{Error: "report store unavailable"})
	}

	if errors.Is(err, evalerrors.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, &ErrorResponse{Error: "not found"})
	}

	if errors.Is(err, evalerrors.ErrCancelled) {
		return echo.NewHTTPError(http.StatusRequestTimeout, &ErrorResponse{Error: "request cancelled"})
	}

	slog.Error("unexpected evaluation error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, &ErrorResponse{Error: "internal server error"})
}
