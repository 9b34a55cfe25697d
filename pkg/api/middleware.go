package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/pitchscope/pitchscope/pkg/ratelimit"
)

// securityHeaders sets standard response headers, grounded on the
// teacher's middleware of the same name.
func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			return next(c)
		}
	}
}

// rateLimited wraps a handler with a per-client-IP token bucket (spec §6:
// RATE_LIMIT_WINDOW_MS / RATE_LIMIT_MAX_REQUESTS), used on /ingest and
// /evaluate.
func rateLimited(limiter *ratelimit.Limiter, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		if limiter != nil && !limiter.Allow(c.RealIP()) {
			return echo.NewHTTPError(http.StatusTooManyRequests, &ErrorResponse{Error: "rate limit exceeded"})
		}
		return next(c)
	}
}
