package rediscache

import (
	"context"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const cloneKeyPrefix = "rl:voiceclone:"

// voiceCloneLimiter enforces the per-user clone cooldown with SET NX EX: the
// key lives exactly one cooldown window, and of two concurrent attempts only
// one SET succeeds. Redis errors fall back to the durable repository rather
// than failing open.
type voiceCloneLimiter struct {
	client   *redis.Client
	fallback domain.VoiceCloneRepository
}

// NewVoiceCloneLimiter wraps the durable cooldown repository with Redis.
func NewVoiceCloneLimiter(client *redis.Client, fallback domain.VoiceCloneRepository) domain.VoiceCloneRepository {
	return &voiceCloneLimiter{client: client, fallback: fallback}
}

func (l *voiceCloneLimiter) TryRecord(ctx context.Context, userID string, now time.Time, cooldown time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, cloneKeyPrefix+userID, now.Format(time.RFC3339), cooldown).Result()
	if err != nil {
		logger.Log.Warn("Voice clone limiter redis unavailable, using durable fallback", "error", err)
		return l.fallback.TryRecord(ctx, userID, now, cooldown)
	}
	return ok, nil
}
