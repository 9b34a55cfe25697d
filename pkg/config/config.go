// Package config loads process configuration from the environment once at
// startup into an immutable record through Load(getenv) *Config, which
// takes the variable lookup function and returns no error. No package-level
// singletons: the returned *Config is threaded explicitly into every
// component that needs it (LLM Gateway, stores, HTTP server).
package config

import (
	"strconv"
	"time"
)

// LLMBackend identifies which upstream the Gateway talks to.
type LLMBackend string

const (
	// LLMBackendVertex is the authenticated, project-scoped endpoint
	// (Vertex AI), preferred when LLM_PROJECT_ID/LLM_LOCATION are set.
	LLMBackendVertex LLMBackend = "vertex"
	// LLMBackendAPIKey is the API-key endpoint (Gemini Developer API),
	// used when the project-scoped variables are absent.
	LLMBackendAPIKey LLMBackend = "api_key"
	// LLMBackendNone means no credentials were configured; the Gateway
	// always returns a fallback InvocationResult.
	LLMBackendNone LLMBackend = "none"
)

// LLMConfig holds the enumerated LLM_* environment variables from spec §6.
type LLMConfig struct {
	Backend         LLMBackend
	ProjectID       string
	Location        string
	CredentialsJSON string
	CredentialsPath string
	APIKey          string
}

// Config is the immutable, process-wide configuration record.
type Config struct {
	LLM LLMConfig

	// CacheURL enables the Redis-backed narrative cache when non-empty;
	// its absence disables caching silently (spec §6).
	CacheURL string

	// CritiqueLogURL enables the Postgres-backed critique log when
	// non-empty; its absence disables logging silently (spec §6).
	CritiqueLogURL string

	// RateLimitWindow and RateLimitMax bound the HTTP surface's
	// /evaluate and /ingest routes (spec §6, wired per SPEC_FULL §6).
	RateLimitWindow time.Duration
	RateLimitMax    int

	HTTPPort string
}

// Load reads the enumerated environment variables into a Config. It never
// fails: missing optional variables simply disable their feature, and
// missing LLM credentials produce LLMBackendNone rather than an error —
// matching the Gateway's "fallback, reason: no credentials" contract.
func Load(getenv func(string) string) *Config {
	cfg := &Config{
		LLM: LLMConfig{
			ProjectID:       getenv("LLM_PROJECT_ID"),
			Location:        getenv("LLM_LOCATION"),
			CredentialsJSON: getenv("LLM_CREDENTIALS_JSON"),
			CredentialsPath: getenv("LLM_CREDENTIALS_PATH"),
			APIKey:          getenv("LLM_API_KEY"),
		},
		CacheURL:       getenv("CACHE_URL"),
		CritiqueLogURL: getenv("CRITIQUE_LOG_URL"),
		HTTPPort:       getenv("HTTP_PORT"),
	}

	switch {
	case cfg.LLM.ProjectID != "" && cfg.LLM.Location != "":
		cfg.LLM.Backend = LLMBackendVertex
	case cfg.LLM.APIKey != "":
		cfg.LLM.Backend = LLMBackendAPIKey
	default:
		cfg.LLM.Backend = LLMBackendNone
	}

	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}

	cfg.RateLimitWindow = parseMillis(getenv("RATE_LIMIT_WINDOW_MS"), time.Minute)
	cfg.RateLimitMax = parseInt(getenv("RATE_LIMIT_MAX_REQUESTS"), 60)

	return cfg
}

func parseMillis(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Summary is the configuration overview returned by GET /health (spec §6,
// SPEC_FULL §6): which optional stores are configured and which LLM
// backend is selected, without leaking secrets.
type Summary struct {
	LLMBackend      LLMBackend `json:"llm_backend"`
	CacheEnabled    bool       `json:"cache_enabled"`
	CritiqueLogOn   bool       `json:"critique_log_enabled"`
	RateLimitMax    int        `json:"rate_limit_max_requests"`
	RateLimitWindow string     `json:"rate_limit_window"`
}

// Summarize builds the health-check configuration summary.
func (c *Config) Summarize() Summary {
	return Summary{
		LLMBackend:      c.LLM.Backend,
		CacheEnabled:    c.CacheURL != "",
		CritiqueLogOn:   c.CritiqueLogURL != "",
		RateLimitMax:    c.RateLimitMax,
		RateLimitWindow: c.RateLimitWindow.String(),
	}
}
