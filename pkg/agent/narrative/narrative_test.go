package narrative

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchscope/pitchscope/pkg/agent"
	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/models"
)

type fakeInvoker struct {
	result llmgateway.InvocationResult
}

func (f *fakeInvoker) Invoke(ctx context.Context, model, prompt string, opts llmgateway.Options) (llmgateway.InvocationResult, error) {
	return f.result, nil
}

type fakeCache struct {
	store map[string]*models.Narrative
	fail  bool
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string]*models.Narrative{}} }

func (c *fakeCache) Get(ctx context.Context, key string) (*models.Narrative, bool, error) {
	if c.fail {
		return nil, false, assert.AnError
	}
	n, ok := c.store[key]
	return n, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value *models.Narrative, ttl time.Duration) error {
	if c.fail {
		return assert.AnError
	}
	c.store[key] = value
	return nil
}

func sampleFacts() *models.StartupFacts {
	return &models.StartupFacts{
		Name:        "Acme Robotics",
		Sector:      "robotics",
		Description: "Acme builds autonomous warehouse robots for mid-size distributors everywhere.",
		Solution:    "A fleet of autonomous picking robots",
		Technology:  "proprietary computer vision",
		Competition: "legacy conveyor systems",
		Market:      "the warehouse automation market is expanding rapidly this year",
	}
}

func TestNarrate_CacheHitSkipsGeneration(t *testing.T) {
	cache := newFakeCache()
	cached := &models.Narrative{Vision: "cached vision"}
	cache.store["narrative:abc"] = cached

	invoker := &fakeInvoker{result: llmgateway.InvocationResult{Fallback: true}}
	a := New(invoker, cache)

	n, err := a.Narrate(context.Background(), sampleFacts(), agent.NarrativeOptions{CacheKey: "abc", UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, "cached vision", n.Vision)
}

func TestNarrate_CacheMissGeneratesAndStores(t *testing.T) {
	cache := newFakeCache()
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{
		OK:   true,
		Text: `{"vision": "v", "differentiation": "d", "timing": "t", "tagline": "Short Tagline"}`,
	}}
	a := New(invoker, cache)

	n, err := a.Narrate(context.Background(), sampleFacts(), agent.NarrativeOptions{CacheKey: "xyz", UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, "v", n.Vision)
	assert.Contains(t, cache.store, "narrative:xyz")
}

func TestNarrate_NoCacheKeySkipsCacheEntirely(t *testing.T) {
	cache := newFakeCache()
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{
		OK:   true,
		Text: `{"vision": "v", "differentiation": "d", "timing": "t", "tagline": "x"}`,
	}}
	a := New(invoker, cache)

	_, err := a.Narrate(context.Background(), sampleFacts(), agent.NarrativeOptions{})
	require.NoError(t, err)
	assert.Empty(t, cache.store)
}

func TestNarrate_FallsBackOnGatewayFallback(t *testing.T) {
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{Fallback: true, Reason: "no credentials"}}
	a := New(invoker, nil)

	n, err := a.Narrate(context.Background(), sampleFacts(), agent.NarrativeOptions{})
	require.NoError(t, err)
	assert.True(t, n.Degraded)
	assert.Contains(t, n.Vision, "Acme Robotics")
	assert.Contains(t, n.Vision, "robotics")
}

func TestNarrate_PartialJSONBackfillsFromFallback(t *testing.T) {
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{
		OK:   true,
		Text: `{"vision": "custom vision"}`,
	}}
	a := New(invoker, nil)

	n, err := a.Narrate(context.Background(), sampleFacts(), agent.NarrativeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "custom vision", n.Vision)
	assert.NotEmpty(t, n.Differentiation)
	assert.NotEmpty(t, n.Timing)
	assert.NotEmpty(t, n.Tagline)
}

func TestTagline_FirstTenWordsTitleCased(t *testing.T) {
	got := tagline("acme builds autonomous warehouse robots for mid-size distributors everywhere and beyond")
	assert.Equal(t, "Acme Builds Autonomous Warehouse Robots For Mid-size Distributors Everywhere And", got)
}

func TestNarrate_CacheReadFailureFallsBackToGeneration(t *testing.T) {
	cache := newFakeCache()
	cache.fail = true
	invoker := &fakeInvoker{result: llmgateway.InvocationResult{
		OK:   true,
		Text: `{"vision": "v", "differentiation": "d", "timing": "t", "tagline": "x"}`,
	}}
	a := New(invoker, cache)

	n, err := a.Narrate(context.Background(), sampleFacts(), agent.NarrativeOptions{CacheKey: "k", UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, "v", n.Vision)
}
