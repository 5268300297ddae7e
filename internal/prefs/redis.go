package prefs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"pushrender/internal/constants"
	"pushrender/internal/logger"
)

// RedisStore reads the sound preference from redis. A missing key or an
// unreachable redis resolves to the configured default.
type RedisStore struct {
	client       *redis.Client
	defaultValue bool
	logger       logger.Logger
}

func NewRedisStore(client *redis.Client, defaultValue bool, log logger.Logger) *RedisStore {
	return &RedisStore{
		client:       client,
		defaultValue: defaultValue,
		logger:       log,
	}
}

func (s *RedisStore) SoundEnabled(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	val, err := s.client.Get(ctx, constants.CacheKeySoundEnabled).Result()
	if err == redis.Nil {
		return s.defaultValue
	}
	if err != nil {
		s.logger.WarnwCtx(ctx, "Sound preference lookup failed, using default",
			"error", err,
			"default", s.defaultValue,
		)
		return s.defaultValue
	}

	return val == "1" || val == "true"
}

// SetSoundEnabled persists the preference. Exposed for operational
// tooling; the renderer itself only ever reads.
func (s *RedisStore) SetSoundEnabled(ctx context.Context, enabled bool) error {
	val := "0"
	if enabled {
		val = "1"
	}
	return s.client.Set(ctx, constants.CacheKeySoundEnabled, val, 0).Err()
}
