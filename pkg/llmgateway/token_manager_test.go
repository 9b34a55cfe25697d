package llmgateway

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// countingSource simulates a slow upstream token fetch and counts how many
// times it was actually invoked.
type countingSource struct {
	calls int32
	delay time.Duration
}

func (s *countingSource) Token() (*oauth2.Token, error) {
	atomic.AddInt32(&s.calls, 1)
	time.Sleep(s.delay)
	return &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}, nil
}

func TestTokenManager_ConcurrentWaitersShareOneRefresh(t *testing.T) {
	src := &countingSource{delay: 20 * time.Millisecond}
	tm := &tokenManager{source: src}

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			tok, err := tm.AccessToken(context.Background(), false)
			assert.NoError(t, err)
			assert.Equal(t, "tok", tok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls))
}

func TestTokenManager_ForceRefreshBypassesCache(t *testing.T) {
	src := &countingSource{}
	tm := &tokenManager{source: src}

	_, err := tm.AccessToken(context.Background(), false)
	require.NoError(t, err)
	_, err = tm.AccessToken(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&src.calls))
}

func TestTokenManager_CachedTokenSkipsSource(t *testing.T) {
	src := &countingSource{}
	tm := &tokenManager{source: src}

	for i := 0; i < 5; i++ {
		_, err := tm.AccessToken(context.Background(), false)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls))
}
