// Package ratelimit bounds the HTTP surface's /evaluate and /ingest routes
// (spec §6: RATE_LIMIT_WINDOW_MS, RATE_LIMIT_MAX_REQUESTS), adapted from
// the teacher's worker-pool supervision shape into a per-client token
// bucket built on golang.org/x/time/rate.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out one token-bucket limiter per client key (typically a
// remote IP), refilling RateLimitMax tokens every RateLimitWindow.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rate    rate.Limit
	burst   int
}

// New builds a Limiter allowing max requests per window, per client key.
func New(window time.Duration, max int) *Limiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		rate:    rate.Every(window / time.Duration(max)),
		burst:   max,
	}
}

// Allow reports whether the client identified by key may proceed now,
// consuming a token from its bucket if so.
func (l *Limiter) Allow(key string) bool {
	return l.bucketFor(key).Allow()
}

func (l *Limiter) bucketFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.rate, l.burst)
		l.buckets[key] = b
	}
	return b
}
