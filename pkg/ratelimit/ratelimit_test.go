package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsUpToMaxThenBlocks(t *testing.T) {
	l := New(time.Minute, 3)
	assert.True(t, l.Allow("client-a"))
	assert.True(t, l.Allow("client-a"))
	assert.True(t, l.Allow("client-a"))
	assert.False(t, l.Allow("client-a"))
}

func TestLimiter_TracksClientsIndependently(t *testing.T) {
	l := New(time.Minute, 1)
	assert.True(t, l.Allow("client-a"))
	assert.True(t, l.Allow("client-b"))
	assert.False(t, l.Allow("client-a"))
}
