// Package cache provides the best-effort TTL key-value capability used to
// memoize upstream generation results. Implementations never propagate
// failures: a broken read is a miss, a broken write is a no-op.
package cache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Cache is the capability the orchestrator is written against. Callers never
// branch on whether caching is enabled; a disabled cache is simply one that
// always misses.
type Cache interface {
	// Get returns the stored value and true on a hit, or nil and false otherwise.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value under key for at most ttl. Best-effort.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Noop is the implementation selected when no cache backend is configured.
type Noop struct{}

var _ Cache = Noop{}

func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Noop) Set(context.Context, string, []byte, time.Duration) {}

// New selects a cache implementation from the configured backend URL. An empty
// URL or an unusable client degrades to Noop rather than failing startup.
func New(redisURL string, logger *logrus.Logger) Cache {
	if redisURL == "" {
		if logger != nil {
			logger.Info("cache backend not configured, caching disabled")
		}
		return Noop{}
	}

	backed, err := NewRedis(redisURL, logger)
	if err != nil {
		if logger != nil {
			logger.WithField("error", err.Error()).Warn("cache backend unavailable, caching disabled")
		}
		return Noop{}
	}

	return backed
}
