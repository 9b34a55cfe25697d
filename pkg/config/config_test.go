package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoad_BackendSelection(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want LLMBackend
	}{
		{
			name: "project scoped preferred",
			env: map[string]string{
				"LLM_PROJECT_ID": "proj", "LLM_LOCATION": "us-central1",
				"LLM_API_KEY": "also-set",
			},
			want: LLMBackendVertex,
		},
		{
			name: "api key fallback",
			env:  map[string]string{"LLM_API_KEY": "key"},
			want: LLMBackendAPIKey,
		},
		{
			name: "no credentials",
			env:  map[string]string{},
			want: LLMBackendNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load(envMap(tt.env))
			assert.Equal(t, tt.want, cfg.LLM.Backend)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(envMap(nil))
	require.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 60, cfg.RateLimitMax)
}

func TestLoad_RateLimitOverrides(t *testing.T) {
	cfg := Load(envMap(map[string]string{
		"RATE_LIMIT_WINDOW_MS":   "5000",
		"RATE_LIMIT_MAX_REQUESTS": "10",
	}))
	assert.Equal(t, 5*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 10, cfg.RateLimitMax)
}

func TestSummarize_NoSecretsLeaked(t *testing.T) {
	cfg := Load(envMap(map[string]string{
		"LLM_API_KEY": "super-secret",
		"CACHE_URL":   "redis://cache:6379",
	}))
	summary := cfg.Summarize()
	assert.True(t, summary.CacheEnabled)
	assert.False(t, summary.CritiqueLogOn)
	assert.Equal(t, LLMBackendAPIKey, summary.LLMBackend)
}
