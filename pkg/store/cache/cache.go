// Package cache implements the Narrative Cache Store: a key→value store
// with per-entry TTL, backed by Redis when CACHE_URL is configured and by
// an in-memory TTL map (grounded on the same shape as a GitHub runbook
// cache) otherwise. Absence of configuration is never fatal (spec §6:
// "CACHE_URL — enables narrative cache; absence disables caching silently").
package cache

import (
	"context"
	"time"

	"github.com/pitchscope/pitchscope/pkg/models"
)

// Store is the full cache contract; it satisfies narrative.Cache.
type Store interface {
	Get(ctx context.Context, key string) (*models.Narrative, bool, error)
	Set(ctx context.Context, key string, value *models.Narrative, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds a Store from the configured CACHE_URL. An empty url returns an
// in-memory store — the caller decides whether to wire that in at all, or
// to leave the Narrative Agent's cache dependency nil (spec's preferred
// "absence disables caching silently" reading is to not construct a store
// at all when unconfigured; New exists for callers that want a guaranteed
// Store regardless, e.g. local development).
func New(url string) (Store, error) {
	if url == "" {
		return NewMemory(), nil
	}
	return NewRedis(url)
}
