// Package llmgateway provides the single entry point every agent uses to
// talk to a large language model: invoke(model, prompt, temperature,
// max_tokens) -> InvocationResult. It selects a provider from runtime
// configuration, authenticates, retries once on transient failure, and
// never raises for provider errors — only invalid arguments panic the
// caller's expectations, everything else comes back as a typed result.
package llmgateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/pitchscope/pitchscope/pkg/config"
)

// DefaultTimeout is the bounded wall-clock deadline applied to every LLM
// call unless the caller's context already carries a shorter deadline
// (spec §5: "each LLM call has a bounded wall-clock deadline, 60s default").
const DefaultTimeout = 60 * time.Second

// InvocationResult is the Gateway's only return shape: either a successful
// text response, or a fallback marker carrying the reason the caller should
// fall back to its rule-based path. Agents treat Fallback identically to a
// failed JSON parse of Text — "use the rule-based path".
type InvocationResult struct {
	OK       bool
	Text     string
	Fallback bool
	Reason   string
}

// Options carries the per-call generation parameters.
type Options struct {
	SystemPrompt string
	Temperature  float32
	MaxTokens    int32
}

// Invoker is the interface every agent depends on, rather than the
// concrete *Gateway — tests construct an in-process fake returning canned
// text instead of exercising the real provider (spec §9 Design Notes).
type Invoker interface {
	Invoke(ctx context.Context, model, prompt string, opts Options) (InvocationResult, error)
}

var _ Invoker = (*Gateway)(nil)

// Gateway is the shared LLM client. One Gateway is constructed at process
// start from an immutable *config.Config and injected into every agent;
// there is no package-level singleton.
type Gateway struct {
	cfg     *config.Config
	backend config.LLMBackend
	client  *genai.Client
	tokens  *tokenManager // nil when backend != vertex
	logger  *slog.Logger
}

// ErrNoCredentials is the Reason string used when neither project-scoped
// nor API-key credentials are configured.
const ErrNoCredentials = "no credentials"

// New constructs a Gateway from configuration. It never fails on missing
// credentials — that simply yields a Gateway whose every Invoke returns a
// fallback result — but does fail if a configured backend's client cannot
// be constructed at all (malformed credentials JSON, for instance).
func New(ctx context.Context, cfg *config.Config) (*Gateway, error) {
	g := &Gateway{
		cfg:     cfg,
		backend: cfg.LLM.Backend,
		logger:  slog.With("component", "llmgateway"),
	}

	switch cfg.LLM.Backend {
	case config.LLMBackendVertex:
		tm, err := newTokenManager(cfg.LLM.CredentialsJSON, cfg.LLM.CredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("llmgateway: building token manager: %w", err)
		}
		g.tokens = tm

		httpClient := &http.Client{
			Timeout:   DefaultTimeout,
			Transport: &bearerTransport{tokens: tm, base: http.DefaultTransport},
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			Backend:    genai.BackendVertexAI,
			Project:    cfg.LLM.ProjectID,
			Location:   cfg.LLM.Location,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("llmgateway: creating vertex client: %w", err)
		}
		g.client = client

	case config.LLMBackendAPIKey:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  cfg.LLM.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("llmgateway: creating api-key client: %w", err)
		}
		g.client = client

	default:
		g.logger.Warn("no LLM credentials configured; every Invoke will fall back")
	}

	return g, nil
}

// bearerTransport attaches the current access token to every outbound
// request and retries exactly once with a forced refresh on 401.
type bearerTransport struct {
	tokens *tokenManager
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokens.AccessToken(req.Context(), false)
	if err != nil {
		return nil, fmt.Errorf("llmgateway: obtaining access token: %w", err)
	}
	req2 := req.Clone(req.Context())
	req2.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.base.RoundTrip(req2)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	refreshed, rerr := t.tokens.AccessToken(req.Context(), true)
	if rerr != nil {
		return resp, nil
	}
	req3 := req.Clone(req.Context())
	req3.Header.Set("Authorization", "Bearer "+refreshed)
	return t.base.RoundTrip(req3)
}

// Invoke calls the configured model with prompt and generation parameters.
// It never returns an error for provider-side failure; ctx cancellation,
// network errors, 4xx other than an already-retried 401, and empty
// responses all produce a {Fallback, Reason} result. Only malformed
// invocation arguments (model == "") return an error.
func (g *Gateway) Invoke(ctx context.Context, model, prompt string, opts Options) (InvocationResult, error) {
	if model == "" {
		return InvocationResult{}, errors.New("llmgateway: model must not be empty")
	}
	if g.backend == config.LLMBackendNone {
		return InvocationResult{Fallback: true, Reason: ErrNoCredentials}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &opts.Temperature,
		MaxOutputTokens: opts.MaxTokens,
	}
	if opts.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}

	var text string
	op := func() error {
		resp, err := g.client.Models.GenerateContent(ctx, model, contents, genCfg)
		if err != nil {
			return classifyRetry(err)
		}
		text = resp.Text()
		return nil
	}

	// Exactly one retry for transient network failure; cancellation is
	// never retried (spec §5: "a cancelled LLM call ... does not retry").
	// A provider 4xx other than 401 is not transient and is not retried
	// either — classifyRetry marks it permanent so backoff.Retry gives up
	// immediately instead of spending the one retry on a repeat failure.
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(50*time.Millisecond), 1)
	err := backoff.Retry(func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return op()
	}, policy)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			g.logger.Warn("LLM call cancelled", "model", model)
		} else {
			g.logger.Warn("LLM call failed, falling back", "model", model, "error", err)
		}
		return InvocationResult{Fallback: true, Reason: err.Error()}, nil
	}

	if text == "" {
		return InvocationResult{Fallback: true, Reason: "empty response"}, nil
	}
	return InvocationResult{OK: true, Text: text}, nil
}

// classifyRetry marks a provider error as permanent (no retry) when it is a
// 4xx response other than 401 — 401 is retried here once in addition to the
// bearerTransport's own forced-refresh retry, and every other 4xx (bad
// request, rate limit, ...) will not succeed on an identical retry. 5xx
// responses and errors that are not a genai.APIError at all (timeouts,
// connection resets) are left as transient and retried.
func classifyRetry(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusUnauthorized {
			return backoff.Permanent(err)
		}
	}
	return err
}
