package llmgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// vertexScope is the OAuth scope required to call the Vertex AI API.
const vertexScope = "https://www.googleapis.com/auth/cloud-platform"

// tokenManager obtains and caches an access token for the project-scoped
// endpoint, shared across all concurrent agent calls (spec §5: "the LLM
// Gateway's auth client is shared across tasks and must tolerate concurrent
// token-refresh — one in-flight refresh gating all waiters").
//
// Only one goroutine performs the actual token-source round trip at a
// time; any caller that arrives while a refresh is in flight waits on the
// same channel rather than starting a second refresh.
type tokenManager struct {
	source tokenSource

	mu         sync.Mutex
	current    *oauth2.Token
	refreshing chan struct{} // non-nil while a refresh is in flight
}

// tokenSource exists only so tests can substitute a fake
// without pulling in real google.FindDefaultCredentials.
type tokenSource interface {
	Token() (*oauth2.Token, error)
}

func newTokenManager(credentialsJSON, credentialsPath string) (*tokenManager, error) {
	ctx := context.Background()

	var raw []byte
	switch {
	case credentialsJSON != "":
		raw = []byte(credentialsJSON)
	case credentialsPath != "":
		b, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("reading LLM_CREDENTIALS_PATH: %w", err)
		}
		raw = b
	default:
		// Falls back to Application Default Credentials (metadata server,
		// gcloud ADC file, workload identity) exactly as golang.org/x/oauth2/google
		// resolves it when no explicit JSON is supplied.
		creds, err := google.FindDefaultCredentials(ctx, vertexScope)
		if err != nil {
			return nil, fmt.Errorf("finding default credentials: %w", err)
		}
		return &tokenManager{source: creds.TokenSource}, nil
	}

	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parsing LLM_CREDENTIALS_JSON: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, vertexScope)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	return &tokenManager{source: creds.TokenSource}, nil
}

// AccessToken returns a valid access token, refreshing if necessary.
// forceRefresh discards any cached token (used after a 401).
func (t *tokenManager) AccessToken(ctx context.Context, forceRefresh bool) (string, error) {
	t.mu.Lock()
	if !forceRefresh && t.current != nil && t.current.Valid() {
		tok := t.current.AccessToken
		t.mu.Unlock()
		return tok, nil
	}

	if t.refreshing != nil {
		ch := t.refreshing
		t.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		t.mu.Lock()
		tok := t.current
		t.mu.Unlock()
		if tok == nil {
			return "", fmt.Errorf("token refresh failed")
		}
		return tok.AccessToken, nil
	}

	ch := make(chan struct{})
	t.refreshing = ch
	if forceRefresh {
		t.current = nil
	}
	t.mu.Unlock()

	tok, err := t.source.Token()

	t.mu.Lock()
	if err == nil {
		t.current = tok
	}
	t.refreshing = nil
	t.mu.Unlock()
	close(ch)

	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}
	return tok.AccessToken, nil
}
