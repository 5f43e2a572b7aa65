package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const connectProbeTimeout = 5 * time.Second

// Redis implements Cache on top of a Redis backend.
type Redis struct {
	client redis.Cmdable
	logger *logrus.Logger
}

var _ Cache = (*Redis)(nil)

// NewRedis constructs a Redis-backed cache from a connection URL. The
// connection itself is established lazily; an unreachable server at startup is
// logged but does not fail construction.
func NewRedis(url string, logger *logrus.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "parsing redis url")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectProbeTimeout)
	defer cancel()
	if pingErr := client.Ping(ctx).Err(); pingErr != nil && logger != nil {
		logger.WithField("error", pingErr.Error()).Warn("cache backend not reachable yet, continuing")
	}

	return &Redis{client: client, logger: logger}, nil
}

// NewRedisFromClient wraps an existing client, mainly for tests.
func NewRedisFromClient(client redis.Cmdable, logger *logrus.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.logSoftFailure(key, err, "cache read failed, treating as miss")
		return nil, false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logSoftFailure(key, err, "cache write failed, skipping")
	}
}

func (r *Redis) logSoftFailure(key string, err error, message string) {
	if r.logger == nil {
		return
	}
	r.logger.WithFields(logrus.Fields{
		"key":   key,
		"error": err.Error(),
	}).Warn(message)
}
