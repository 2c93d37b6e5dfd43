// Package rediscache layers Redis in front of the durable Postgres stores
// for the latency-sensitive paths: the audio cache hot layer and the voice
// clone cooldown.
package rediscache

import (
	"context"
	"errors"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const audioKeyPrefix = "tts:audio:"

// layeredAudioCache fronts a durable cache with Redis. Reads try Redis
// first, fall through to the durable store and re-warm Redis on the way
// back. Both layers hold immutable values, so write races are harmless.
type layeredAudioCache struct {
	client *redis.Client
	ttl    time.Duration
	inner  domain.AudioCacheRepository
}

// NewLayeredAudioCache wraps the durable cache with a Redis hot layer.
// Redis failures degrade to the durable store; they never fail a request.
func NewLayeredAudioCache(client *redis.Client, ttl time.Duration, inner domain.AudioCacheRepository) domain.AudioCacheRepository {
	return &layeredAudioCache{client: client, ttl: ttl, inner: inner}
}

func (c *layeredAudioCache) Get(ctx context.Context, key string) ([]byte, error) {
	audio, err := c.client.Get(ctx, audioKeyPrefix+key).Bytes()
	if err == nil {
		return audio, nil
	}
	if !errors.Is(err, redis.Nil) {
		logger.Log.Warn("Audio cache redis read failed, falling back to durable store", "error", err)
	}

	audio, err = c.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// Re-warm the hot layer. Best effort.
	if err := c.client.Set(ctx, audioKeyPrefix+key, audio, c.ttl).Err(); err != nil {
		logger.Log.Warn("Audio cache redis re-warm failed", "key", key, "error", err)
	}
	return audio, nil
}

func (c *layeredAudioCache) Put(ctx context.Context, key string, audio []byte, req domain.SynthesisRequest) error {
	if err := c.inner.Put(ctx, key, audio, req); err != nil {
		return err
	}
	if err := c.client.Set(ctx, audioKeyPrefix+key, audio, c.ttl).Err(); err != nil {
		logger.Log.Warn("Audio cache redis write failed", "key", key, "error", err)
	}
	return nil
}
